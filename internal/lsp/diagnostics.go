package lsp

import (
	"strings"
	"unicode/utf16"

	"quill/internal/diag"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// toLspPosition converts a 1-based byte position into a 0-based UTF-16
// position within text.
func toLspPosition(lines []string, line1, col1 int) protocol.Position {
	line := uint32(0)
	if line1 > 0 {
		line = uint32(line1 - 1)
	}
	var lineText string
	if int(line) < len(lines) {
		lineText = lines[line]
	}
	return protocol.Position{Line: line, Character: byteColToUTF16(lineText, col1)}
}

func byteColToUTF16(lineText string, byteCol int) uint32 {
	if byteCol <= 1 {
		return 0
	}
	limit := byteCol - 1
	var count uint32
	if limit > len(lineText) {
		count = uint32(limit - len(lineText))
		limit = len(lineText)
	}
	for _, r := range lineText[:limit] {
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		count += uint32(n)
	}
	return count
}

func ToLspDiagnostics(text string, ds []diag.Diagnostic) []protocol.Diagnostic {
	lines := strings.Split(text, "\n")
	out := make([]protocol.Diagnostic, 0, len(ds))
	for _, d := range ds {
		start := toLspPosition(lines, d.Range.Line, d.Range.Col)
		end := start
		if d.Range.Length > 0 {
			end.Character = start.Character + uint32(d.Range.Length)
		} else {
			end.Character = start.Character + 1
		}

		severity := protocol.DiagnosticSeverityError
		switch d.Severity {
		case diag.SeverityWarning:
			severity = protocol.DiagnosticSeverityWarning
		case diag.SeverityInfo:
			severity = protocol.DiagnosticSeverityInformation
		}

		pd := protocol.Diagnostic{
			Range:    protocol.Range{Start: start, End: end},
			Severity: &severity,
			Source:   ptrString("quill"),
			Message:  d.Message,
		}
		if d.Code != "" {
			code := protocol.IntegerOrString{Value: d.Code}
			pd.Code = &code
		}
		out = append(out, pd)
	}
	return out
}

func ptrString(s string) *string { return &s }
