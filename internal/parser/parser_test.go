package parser

import (
	"strings"
	"testing"

	"quill/internal/ast"
	"quill/internal/lexer"
	"quill/internal/sink"
	"quill/internal/token"
)

func parse(t *testing.T, input string) *ast.Program {
	t.Helper()
	l := lexer.New(input)
	p := New(l)
	prog := p.ParseProgram()
	if len(p.Errors()) > 0 {
		for _, e := range p.Errors() {
			t.Error(e)
		}
		t.Fatalf("parser had %d errors", len(p.Errors()))
	}
	return prog
}

func TestParseConformanceScript_NoErrors(t *testing.T) {
	input := `// conformance script
let x = 0;
const limit: number = 10;
for (let i = 0; i < limit; i++) {
  console.log(i);
}
console.warn("Hello, warn!");
console.error("Hello, error!");
const big = 10879879879879879879879879898798701087987987987987987987987989879870 + 5879;
console.log(big)
/* trailing block comment */
`

	prog := parse(t, input)
	if len(prog.Statements) != 7 {
		t.Fatalf("expected 7 statements, got %d", len(prog.Statements))
	}

	if _, ok := prog.Statements[2].(*ast.ForStatement); !ok {
		t.Fatalf("expected for statement, got %T", prog.Statements[2])
	}
	warn, ok := prog.Statements[3].(*ast.OutputStatement)
	if !ok {
		t.Fatalf("expected output statement, got %T", prog.Statements[3])
	}
	if warn.Severity != sink.Warn || warn.Method != "warn" {
		t.Fatalf("expected warn output, got %s/%s", warn.Method, warn.Severity)
	}
}

func TestParseLetStatements(t *testing.T) {
	tests := []struct {
		input   string
		name    string
		mutable bool
		typ     string
		value   string
	}{
		{"let x = 5", "x", true, "", "5"},
		{"const y = true", "y", false, "", "true"},
		{"let n: number = 5 + 1", "n", true, "number", "(5 + 1)"},
		{"const s: string = 'hi'", "s", false, "string", "'hi'"},
	}

	for i, tt := range tests {
		prog := parse(t, tt.input)
		let, ok := prog.Statements[0].(*ast.LetStatement)
		if !ok {
			t.Fatalf("tests[%d] expected let statement, got %T", i, prog.Statements[0])
		}
		if let.Name.Value != tt.name || let.Mutable != tt.mutable {
			t.Fatalf("tests[%d] got name=%q mutable=%v", i, let.Name.Value, let.Mutable)
		}
		gotType := ""
		if let.Type != nil {
			gotType = let.Type.Value
		}
		if gotType != tt.typ {
			t.Fatalf("tests[%d] expected type %q, got %q", i, tt.typ, gotType)
		}
		if let.Value.String() != tt.value {
			t.Fatalf("tests[%d] expected value %q, got %q", i, tt.value, let.Value.String())
		}
	}
}

func TestParseAssignments(t *testing.T) {
	tests := []struct {
		input string
		op    token.Type
		arith string
	}{
		{"x = 1", token.ASSIGN, ""},
		{"x += 1", token.PLUS_ASSIGN, "+"},
		{"x -= 1", token.MINUS_ASSIGN, "-"},
		{"x *= 1", token.STAR_ASSIGN, "*"},
		{"x /= 1", token.SLASH_ASSIGN, "/"},
		{"x %= 1", token.PERCENT_ASSIGN, "%"},
		{"x++", token.INC, "+"},
		{"x--", token.DEC, "-"},
	}

	for i, tt := range tests {
		prog := parse(t, tt.input)
		as, ok := prog.Statements[0].(*ast.AssignStatement)
		if !ok {
			t.Fatalf("tests[%d] expected assign statement, got %T", i, prog.Statements[0])
		}
		if as.Op != tt.op {
			t.Fatalf("tests[%d] expected op %q, got %q", i, tt.op, as.Op)
		}
		if as.ArithmeticOp() != tt.arith {
			t.Fatalf("tests[%d] expected arithmetic op %q, got %q", i, tt.arith, as.ArithmeticOp())
		}
		if (tt.op == token.INC || tt.op == token.DEC) != (as.Value == nil) {
			t.Fatalf("tests[%d] unexpected value %v", i, as.Value)
		}
	}
}

func TestParseOperatorPrecedence(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"a + b * c", "(a + (b * c))"},
		{"a - b - c", "((a - b) - c)"},
		{"a % b / c", "((a % b) / c)"},
		{"-a * b", "((-a) * b)"},
		{"!t == f", "((!t) == f)"},
		{"a < b == c > d", "((a < b) == (c > d))"},
		{"a <= b != c >= d", "((a <= b) != (c >= d))"},
		{"a || b && c", "(a || (b && c))"},
		{"a && b || c && d", "((a && b) || (c && d))"},
		{"a == b && c != d", "((a == b) && (c != d))"},
		{"(a + b) * c", "((a + b) * c)"},
		{"-(a + b)", "(-(a + b))"},
		{"a +\n b", "(a + b)"},
	}

	for i, tt := range tests {
		prog := parse(t, tt.input)
		if len(prog.Statements) != 1 {
			t.Fatalf("tests[%d] expected 1 statement, got %d", i, len(prog.Statements))
		}
		if got := prog.Statements[0].String(); got != tt.expected {
			t.Fatalf("tests[%d] expected %q, got %q", i, tt.expected, got)
		}
	}
}

func TestParseOutputStatements(t *testing.T) {
	tests := []struct {
		input  string
		method string
		sev    sink.Severity
		args   int
	}{
		{`console.log()`, "log", sink.Info, 0},
		{`console.info(1)`, "info", sink.Info, 1},
		{`console.warn("a", x, 1 + 2)`, "warn", sink.Warn, 3},
		{"console.error(\n  \"a\",\n  b,\n)", "error", sink.Error, 2},
	}

	for i, tt := range tests {
		prog := parse(t, tt.input)
		out, ok := prog.Statements[0].(*ast.OutputStatement)
		if !ok {
			t.Fatalf("tests[%d] expected output statement, got %T", i, prog.Statements[0])
		}
		if out.Method != tt.method || out.Severity != tt.sev || len(out.Args) != tt.args {
			t.Fatalf("tests[%d] got method=%s sev=%s args=%d", i, out.Method, out.Severity, len(out.Args))
		}
	}
}

func TestParseForStatement(t *testing.T) {
	prog := parse(t, "for (let i = 0; i < 3; i++) console.log(i)")
	fs, ok := prog.Statements[0].(*ast.ForStatement)
	if !ok {
		t.Fatalf("expected for statement, got %T", prog.Statements[0])
	}
	if _, ok := fs.Init.(*ast.LetStatement); !ok {
		t.Fatalf("expected let init, got %T", fs.Init)
	}
	if fs.Cond.String() != "(i < 3)" {
		t.Fatalf("unexpected cond %q", fs.Cond.String())
	}
	if fs.Post.String() != "i++" {
		t.Fatalf("unexpected post %q", fs.Post.String())
	}
	if len(fs.Body.Statements) != 1 {
		t.Fatalf("expected single-statement body wrapped in a block, got %d", len(fs.Body.Statements))
	}

	prog = parse(t, "for (;;) {}")
	fs = prog.Statements[0].(*ast.ForStatement)
	if fs.Init != nil || fs.Cond != nil || fs.Post != nil {
		t.Fatalf("expected empty header, got %s", fs.String())
	}
}

func TestParseIfElseChain(t *testing.T) {
	input := `if (a < 1) {
  console.log("one")
} else if (a < 2) {
  console.log("two")
} else {
  console.log("many")
}`
	prog := parse(t, input)
	is, ok := prog.Statements[0].(*ast.IfStatement)
	if !ok {
		t.Fatalf("expected if statement, got %T", prog.Statements[0])
	}
	elseIf, ok := is.Alternative.(*ast.IfStatement)
	if !ok {
		t.Fatalf("expected else-if, got %T", is.Alternative)
	}
	if _, ok := elseIf.Alternative.(*ast.BlockStatement); !ok {
		t.Fatalf("expected final else block, got %T", elseIf.Alternative)
	}
}

func TestParseIfSingleStatement(t *testing.T) {
	prog := parse(t, "if (ok) x = 1; else x = 2\nconsole.log(x)")
	if len(prog.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.Statements))
	}
	is := prog.Statements[0].(*ast.IfStatement)
	if len(is.Consequence.Statements) != 1 {
		t.Fatalf("expected consequence with 1 statement")
	}
}

func TestParseWhileAndBlock(t *testing.T) {
	prog := parse(t, "while (i < 3) { i++ }\n{ let y = 1 }")
	if _, ok := prog.Statements[0].(*ast.WhileStatement); !ok {
		t.Fatalf("expected while, got %T", prog.Statements[0])
	}
	if _, ok := prog.Statements[1].(*ast.BlockStatement); !ok {
		t.Fatalf("expected block, got %T", prog.Statements[1])
	}
}

func TestParseIntegerLiteralKeepsText(t *testing.T) {
	prog := parse(t, "let v = 12ab")
	lit, ok := prog.Statements[0].(*ast.LetStatement).Value.(*ast.IntegerLiteral)
	if !ok {
		t.Fatalf("expected integer literal")
	}
	if lit.Literal != "12ab" {
		t.Fatalf("expected raw literal 12ab, got %q", lit.Literal)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"let x;", "missing initializer"},
		{"let x", "missing initializer"},
		{"const y: number;", "missing initializer"},
		{"console.debug(1)", `unknown console method "debug"`},
		{"console.log(1", "expected ')'"},
		{"let = 5", "expected 'IDENT'"},
		{"x = ", "expected expression"},
		{"let a = 1 2", "after statement"},
		{"if (x) else y = 1\n", "unexpected 'else'"},
		{"if (x) {\n", "unterminated block"},
		{"for (let i = 0; i < 3; let j = 1) {}", "declaration not allowed"},
		{"a & b", "illegal token"},
		{`console.log("open`, "illegal token"},
		{"}", "unexpected '}'"},
	}

	for i, tt := range tests {
		l := lexer.New(tt.input)
		p := New(l)
		_ = p.ParseProgram()

		if len(p.Errors()) == 0 {
			t.Fatalf("tests[%d] expected parser errors for input: %q", i, tt.input)
		}
		if !strings.Contains(p.Errors()[0], tt.want) {
			t.Fatalf("tests[%d] expected first error to contain %q, got %q", i, tt.want, p.Errors()[0])
		}
		d := p.Diagnostics()[0]
		if d.Code != Code || d.Range.Line < 1 {
			t.Fatalf("tests[%d] bad diagnostic %+v", i, d)
		}
	}
}

func TestParseErrorPosition(t *testing.T) {
	_, diags := Parse("let a = 1\nconsole.trace(a)")
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
	if diags[0].Range.Line != 2 || diags[0].Range.Col != 9 || diags[0].Range.Length != 5 {
		t.Fatalf("unexpected range %+v", diags[0].Range)
	}
}
