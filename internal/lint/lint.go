// Package lint checks a program for binding mistakes without running it.
package lint

import (
	"quill/internal/ast"
	"quill/internal/diag"
)

const (
	CodeUndefined     = "QL0001"
	CodeConstAssign   = "QL0002"
	CodeRedeclaration = "QL0003"
	CodeShadowing     = "QL0004"
	CodeUnused        = "QL0005"
)

type Options struct {
	CheckShadowing bool
	CheckUnused    bool
}

func DefaultOptions() Options {
	return Options{CheckShadowing: true, CheckUnused: true}
}

type Linter struct {
	opts Options
}

func New() *Linter {
	return &Linter{opts: DefaultOptions()}
}

func NewWithOptions(opts Options) *Linter {
	return &Linter{opts: opts}
}

func Run(program *ast.Program) []diag.Diagnostic {
	return New().Run(program)
}

func RunWithOptions(program *ast.Program, opts Options) []diag.Diagnostic {
	return NewWithOptions(opts).Run(program)
}

// Run returns the diagnostics for program ordered by position.
func (l *Linter) Run(program *ast.Program) []diag.Diagnostic {
	if program == nil {
		return nil
	}
	r := &Runner{sc: newScope(nil), opts: l.opts}
	r.walkProgram(program)
	diag.Sort(r.diags)
	return r.diags
}

// HasErrors reports whether any diagnostic is an error.
func HasErrors(diags []diag.Diagnostic) bool {
	return diag.Count(diags, diag.SeverityError) > 0
}
