package sink

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles holds the severity styles shared by the console sink and the CLI
// diagnostic printer.
type Styles struct {
	Info    lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
	Bold    lipgloss.Style

	color bool
}

func NewStyles(color bool) *Styles {
	// Tabs in program output are data, not layout.
	base := lipgloss.NewStyle().TabWidth(lipgloss.NoTabConversion)
	if !color {
		return &Styles{Info: base, Warning: base, Error: base, Muted: base, Bold: base}
	}
	return &Styles{
		Info:    base,
		Warning: base.Foreground(lipgloss.Color("11")),
		Error:   base.Foreground(lipgloss.Color("9")).Bold(true),
		Muted:   base.Foreground(lipgloss.Color("8")),
		Bold:    base.Bold(true),
		color:   true,
	}
}

// Paint renders text line by line so multi-line records are not padded to a
// block. Without colour the text is returned untouched.
func (s *Styles) Paint(sev Severity, text string) string {
	if !s.color {
		return text
	}
	style := s.For(sev)
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = style.Render(l)
	}
	return strings.Join(lines, "\n")
}

func (s *Styles) For(sev Severity) lipgloss.Style {
	switch sev {
	case Warn:
		return s.Warning
	case Error:
		return s.Error
	default:
		return s.Info
	}
}

// Console writes info records to out and warn/error records to errOut, one
// line each.
type Console struct {
	out    io.Writer
	errOut io.Writer
	styles *Styles
}

func NewConsole(out, errOut io.Writer, color bool) *Console {
	return &Console{out: out, errOut: errOut, styles: NewStyles(color)}
}

func (c *Console) Emit(sev Severity, text string) {
	w := c.out
	if sev != Info {
		w = c.errOut
	}
	fmt.Fprintln(w, c.styles.Paint(sev, text))
}

// JSONLines writes one JSON object per record. After the first write error
// every later record is dropped and Err reports the failure.
type JSONLines struct {
	enc *json.Encoder
	err error
}

func NewJSONLines(w io.Writer) *JSONLines {
	return &JSONLines{enc: json.NewEncoder(w)}
}

func (j *JSONLines) Emit(sev Severity, text string) {
	if j.err != nil {
		return
	}
	if err := j.enc.Encode(Record{Severity: sev, Text: text}); err != nil {
		j.err = fmt.Errorf("write record: %w", err)
	}
}

func (j *JSONLines) Err() error { return j.err }

// Logger forwards records to a structured logger.
type Logger struct {
	log *slog.Logger
}

func NewLogger(log *slog.Logger) *Logger { return &Logger{log: log} }

func (l *Logger) Emit(sev Severity, text string) {
	switch sev {
	case Warn:
		l.log.Warn(text, "source", "console")
	case Error:
		l.log.Error(text, "source", "console")
	default:
		l.log.Info(text, "source", "console")
	}
}
