package lsp

import (
	"strings"

	"quill/internal/ast"
	"quill/internal/parser"
	"quill/internal/token"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Symbols lists the declarations of a document in source order, nested
// scopes included.
func Symbols(text string) []protocol.DocumentSymbol {
	out := []protocol.DocumentSymbol{}
	prog, _ := parser.Parse(text)
	if prog == nil {
		return out
	}
	lines := strings.Split(text, "\n")
	ast.Inspect(prog, func(n ast.Node) bool {
		let, ok := n.(*ast.LetStatement)
		if !ok || let == nil || let.Name == nil {
			return true
		}
		kind := protocol.SymbolKindVariable
		if !let.Mutable {
			kind = protocol.SymbolKindConstant
		}
		sym := protocol.DocumentSymbol{
			Name:           let.Name.Value,
			Kind:           kind,
			Range:          tokenRange(lines, let.Token, len(let.String())),
			SelectionRange: tokenRange(lines, let.Name.Token, len(let.Name.Value)),
		}
		if let.Type != nil {
			sym.Detail = ptrString(let.Type.Value)
		}
		out = append(out, sym)
		return true
	})
	return out
}

// tokenRange spans length bytes from tok on its line, in UTF-16 units.
func tokenRange(lines []string, tok token.Token, length int) protocol.Range {
	if length <= 0 {
		length = 1
	}
	return protocol.Range{
		Start: toLspPosition(lines, tok.Line, tok.Col),
		End:   toLspPosition(lines, tok.Line, tok.Col+length),
	}
}
