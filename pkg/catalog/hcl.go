package catalog

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// fileVariables decodes only the optional top-level variables map, in a
// first pass, so later expressions can reference the values as var.<name>.
// Variable values must be literal strings.
type fileVariables struct {
	Variables map[string]string `hcl:"variables,optional"`
	Remain    hcl.Body          `hcl:",remain"`
}

type problemBlock struct {
	ID    string `hcl:"id,label"`
	Title string `hcl:"title"`
	Focus string `hcl:"focus,optional"`
}

type fileRoot struct {
	Problems []*problemBlock `hcl:"problem,block"`
	Remain   hcl.Body        `hcl:",remain"`
}

// LoadFile parses an HCL catalog file into an ordered list of entries.
// Entries keep the order of their problem blocks in the file. A file looks
// like:
//
//	variables = {
//	  track = "Terraform"
//	}
//
//	problem "11" {
//	  title = "Conditional Logic"
//	  focus = "Dynamic resource creation patterns in ${var.track}"
//	}
func LoadFile(path string) ([]Entry, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", path, diags)
	}

	var fv fileVariables
	if diags = gohcl.DecodeBody(file.Body, nil, &fv); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode catalog variables in %s: %w", path, diags)
	}

	vars := make(map[string]cty.Value, len(fv.Variables))
	for name, val := range fv.Variables {
		vars[name] = cty.StringVal(val)
	}
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{"var": cty.ObjectVal(vars)},
	}

	var root fileRoot
	if diags = gohcl.DecodeBody(file.Body, evalCtx, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode catalog file %s: %w", path, diags)
	}

	entries := make([]Entry, 0, len(root.Problems))
	for _, p := range root.Problems {
		entries = append(entries, Entry{ID: p.ID, Title: p.Title, Focus: p.Focus})
	}

	if err := Validate(entries); err != nil {
		return nil, fmt.Errorf("invalid catalog file %s: %w", path, err)
	}
	return entries, nil
}
