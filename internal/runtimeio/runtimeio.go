// Package runtimeio answers terminal questions for the CLI: whether a stream
// is interactive and whether console output should be coloured.
package runtimeio

import (
	"errors"
	"io"
	"os"

	"golang.org/x/term"
)

var ErrNotInteractive = errors.New("stdin is not a terminal")

type fder interface {
	Fd() uintptr
}

// IsTerminal reports whether v is a file attached to a terminal.
func IsTerminal(v any) bool {
	f, ok := v.(fder)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func IsInteractive() bool {
	return IsTerminal(os.Stdin)
}

// RequireInteractive fails when stdin is piped, so the REPL can refuse to
// read scripts line by line.
func RequireInteractive() error {
	if !IsInteractive() {
		return ErrNotInteractive
	}
	return nil
}

// UseColor resolves a color mode (auto, always, never) for w. Auto colours
// terminals unless NO_COLOR is set.
func UseColor(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return IsTerminal(w)
}

// Width returns the terminal width of w, or fallback when unknown.
func Width(w io.Writer, fallback int) int {
	f, ok := w.(fder)
	if !ok {
		return fallback
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return fallback
	}
	return width
}
