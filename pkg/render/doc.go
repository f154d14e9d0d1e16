/*
Package render turns catalog entries into exercise documents.

Rendering is deliberately not a template engine: a template is plain text
containing up to three literal marker tokens (PROBLEM_NUM, PROBLEM_TITLE,
PROBLEM_FOCUS) which are replaced verbatim, case-sensitively, and in a
single pass. Substituted values are never re-scanned for further tokens,
and text that is not a token passes through untouched.

The Renderer ships with a built-in default template and can load overrides
from a templates directory on disk, with hot-reloading via Refresh.
*/
package render
