// Package repl runs an interactive session that keeps one environment across
// inputs.
package repl

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/chzyer/readline"
	"github.com/jedib0t/go-pretty/v6/table"

	"quill/internal/ast"
	"quill/internal/evaluator"
	"quill/internal/object"
	"quill/internal/parser"
	"quill/internal/sink"
)

const (
	prompt1 = "quill> "
	prompt2 = "...> "
)

type Options struct {
	Out    io.Writer
	ErrOut io.Writer
	// Sink receives console records. Defaults to a Console on Out/ErrOut.
	Sink        sink.Sink
	Styles      *sink.Styles
	Logger      *slog.Logger
	Trace       bool
	HistoryFile string
}

// Session evaluates REPL input. Lines are buffered until braces and
// parentheses balance.
type Session struct {
	opts   Options
	interp *evaluator.Interpreter
	buf    strings.Builder
	bal    balance
}

func NewSession(opts Options) *Session {
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.ErrOut == nil {
		opts.ErrOut = opts.Out
	}
	if opts.Styles == nil {
		opts.Styles = sink.NewStyles(false)
	}
	if opts.Sink == nil {
		opts.Sink = sink.NewConsole(opts.Out, opts.ErrOut, false)
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	s := &Session{opts: opts}
	s.reset()
	return s
}

func (s *Session) reset() {
	s.interp = evaluator.New(s.opts.Sink,
		evaluator.WithLogger(s.opts.Logger),
		evaluator.WithTrace(s.opts.Trace),
		evaluator.WithFile("<repl>"),
	)
	s.buf.Reset()
	s.bal = balance{}
}

func (s *Session) Env() *object.Environment { return s.interp.Env() }

// Feed handles one input line. more is true while a construct is still open;
// quit is true after .exit.
func (s *Session) Feed(line string) (more, quit bool) {
	trim := strings.TrimSpace(line)
	if s.buf.Len() == 0 {
		if trim == "" {
			return false, false
		}
		if strings.HasPrefix(trim, ".") {
			return false, s.dotCommand(trim)
		}
	}

	s.buf.WriteString(line)
	s.buf.WriteString("\n")
	s.bal.update(line)
	if s.bal.open() {
		return true, false
	}

	src := s.buf.String()
	s.buf.Reset()
	s.bal = balance{}
	s.Exec(src)
	return false, false
}

// Exec runs src in the session environment. A trailing expression statement
// has its value printed.
func (s *Session) Exec(src string) {
	prog, diags := parser.Parse(src)
	if len(diags) > 0 {
		for _, d := range diags {
			s.errorf("parse error: %d:%d: %s", d.Range.Line, d.Range.Col, d.Message)
		}
		return
	}

	var last *ast.ExpressionStatement
	if n := len(prog.Statements); n > 0 {
		if es, ok := prog.Statements[n-1].(*ast.ExpressionStatement); ok {
			last = es
			prog = &ast.Program{Statements: prog.Statements[:n-1]}
		}
	}
	if err := s.interp.Run(prog); err != nil {
		s.errorf("%s", err)
		return
	}
	if last == nil {
		return
	}
	v, err := s.interp.Eval(last.Expression)
	if err != nil {
		s.errorf("%s", err)
		return
	}
	_, _ = fmt.Fprintln(s.opts.Out, object.Render(v))
}

func (s *Session) errorf(format string, args ...any) {
	_, _ = fmt.Fprintln(s.opts.ErrOut, s.opts.Styles.Error.Render(fmt.Sprintf(format, args...)))
}

func (s *Session) dotCommand(line string) bool {
	parts := strings.Fields(line)
	switch strings.ToLower(parts[0]) {
	case ".quit", ".exit":
		return true
	case ".help":
		printHelp(s.opts.Out)
	case ".vars":
		s.printVars()
	case ".reset":
		s.reset()
		_, _ = fmt.Fprintln(s.opts.Out, s.opts.Styles.Muted.Render("environment cleared"))
	default:
		s.errorf("Unknown command: %s (type .help for commands)", parts[0])
	}
	return false
}

func (s *Session) printVars() {
	bindings := s.interp.Env().Bindings()
	if len(bindings) == 0 {
		_, _ = fmt.Fprintln(s.opts.Out, s.opts.Styles.Muted.Render("no bindings"))
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(s.opts.Out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Name", "Kind", "Type", "Value"})
	for _, b := range bindings {
		kind := "const"
		if b.Mutable {
			kind = "let"
		}
		t.AppendRow(table.Row{b.Name, kind, strings.ToLower(string(b.Value.Type())), object.Render(b.Value)})
	}
	t.Render()
}

func printHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .vars           List the bindings of the session
  .reset          Drop every binding
  .quit / .exit   Exit the REPL

Tips:
  - Blocks and argument lists may span lines
  - A trailing expression prints its value
  - Use arrow keys to navigate history
`
	_, _ = fmt.Fprintln(w, help)
}

func completer() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".vars"),
		readline.PcItem(".reset"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
		readline.PcItem("console.log("),
		readline.PcItem("console.warn("),
		readline.PcItem("console.error("),
	)
}

// Start runs the readline loop until EOF or .exit.
func Start(opts Options) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt1,
		HistoryFile:     opts.HistoryFile,
		AutoComplete:    completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".exit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	s := NewSession(opts)
	_, _ = fmt.Fprintln(s.opts.Out, "Quill REPL")
	_, _ = fmt.Fprintln(s.opts.Out, "Type .help for commands, .exit to exit")

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			s.buf.Reset()
			s.bal = balance{}
			rl.SetPrompt(prompt1)
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		more, quit := s.Feed(line)
		if quit {
			return nil
		}
		if more {
			rl.SetPrompt(prompt2)
		} else {
			rl.SetPrompt(prompt1)
		}
	}
}
