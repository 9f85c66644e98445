package lint

import (
	"quill/internal/diag"
	"quill/internal/parser"
)

// CheckSource parses src and lints the result. Parse errors are returned
// alone: a partial tree produces misleading scope reports.
func CheckSource(src string, opts Options) []diag.Diagnostic {
	prog, diags := parser.Parse(src)
	if len(diags) > 0 {
		return diags
	}
	return RunWithOptions(prog, opts)
}
