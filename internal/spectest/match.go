package spectest

import (
	"fmt"
	"strings"

	"quill/internal/sink"
)

func NormalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

// MatchOutput compares records by severity and text. Texts are compared with
// normalized newlines so fixtures written on Windows still match.
func MatchOutput(got, want []sink.Record) (bool, string) {
	n := min(len(got), len(want))
	for i := 0; i < n; i++ {
		g, w := got[i], want[i]
		if g.Severity != w.Severity || NormalizeNewlines(g.Text) != NormalizeNewlines(w.Text) {
			return false, fmt.Sprintf("record %d mismatch: expected %s, got %s", i+1, w, g)
		}
	}
	switch {
	case len(got) > len(want):
		return false, fmt.Sprintf("unexpected record %d: %s", n+1, got[n])
	case len(got) < len(want):
		return false, fmt.Sprintf("missing record %d: %s", n+1, want[n])
	}
	return true, ""
}
