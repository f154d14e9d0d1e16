package render

// The three placeholder tokens recognized by Render. Replacement is literal,
// so these exact strings are matched anywhere they appear in a template.
const (
	TokenNum   = "PROBLEM_NUM"
	TokenTitle = "PROBLEM_TITLE"
	TokenFocus = "PROBLEM_FOCUS"
)

// DefaultTemplate is the built-in exercise document, used for every entry
// that has no override on disk. Code samples use indented blocks so the
// template can stay a single raw string.
const DefaultTemplate = `# Problem PROBLEM_NUM: PROBLEM_TITLE - Hands-On Exercises

**Focus**: PROBLEM_FOCUS

## Before You Start

Make sure the workspace for this problem is initialized:

    terraform init

Keep the problem statement in this directory open while you work.

## Exercise 1: Warm-Up

Before writing any configuration, sketch the resources you expect to
create and how they relate to each other.

- Identify the input variables you will need
- Decide which derived values belong in locals instead
- Note any data sources the configuration depends on

## Exercise 2: Build It

Implement the configuration for problem PROBLEM_NUM. Work in small steps
and run a plan after every change:

    terraform validate
    terraform plan

Do not apply until the plan shows exactly the changes you intended.

## Exercise 3: Break It, Then Fix It

Introduce a deliberate mistake (a wrong type, a missing required argument,
a dependency cycle) and read the error output in full before fixing it.
Understanding the failure modes is the point of PROBLEM_TITLE.

## Success Criteria

- terraform validate passes with no warnings
- terraform plan is clean after an apply
- You can explain every line of the configuration to someone else

## Cleanup

    terraform destroy

Leave the directory in a state where the next run starts from scratch.
`
