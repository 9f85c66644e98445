// Package sink receives the records produced by output statements.
package sink

import (
	"fmt"
	"strings"
	"sync"
)

type Severity int

const (
	Info Severity = iota
	Warn
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warn:
		return "warn"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info", "log":
		return Info, nil
	case "warn", "warning":
		return Warn, nil
	case "error":
		return Error, nil
	default:
		return Info, fmt.Errorf("unknown severity %q", s)
	}
}

func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Severity) UnmarshalText(b []byte) error {
	v, err := ParseSeverity(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ConsoleMethods maps the recognised console methods to their severity.
var ConsoleMethods = map[string]Severity{
	"log":   Info,
	"info":  Info,
	"warn":  Warn,
	"error": Error,
}

// Sink is the destination of output records. Emit is called once per output
// statement, in execution order.
type Sink interface {
	Emit(sev Severity, text string)
}

// Failer is implemented by sinks that can lose records to a write error.
type Failer interface {
	Err() error
}

// Err returns the write error of s, if it reports one.
func Err(s Sink) error {
	if f, ok := s.(Failer); ok {
		return f.Err()
	}
	return nil
}

type Tee []Sink

// NewTee fans every record out to sinks, in order.
func NewTee(sinks ...Sink) Tee { return Tee(sinks) }

func (t Tee) Emit(sev Severity, text string) {
	for _, s := range t {
		s.Emit(sev, text)
	}
}

// Err returns the first write error among the fanned-out sinks.
func (t Tee) Err() error {
	for _, s := range t {
		if err := Err(s); err != nil {
			return err
		}
	}
	return nil
}

type Record struct {
	Severity Severity `json:"severity" yaml:"severity"`
	Text     string   `json:"text" yaml:"text"`
}

func (r Record) String() string { return r.Severity.String() + ": " + r.Text }

// Recorder keeps every record in memory.
type Recorder struct {
	mu      sync.Mutex
	records []Record
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Emit(sev Severity, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, Record{Severity: sev, Text: text})
}

func (r *Recorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}

func (r *Recorder) Texts() []string {
	recs := r.Records()
	out := make([]string, len(recs))
	for i, rec := range recs {
		out[i] = rec.Text
	}
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.records = nil
	r.mu.Unlock()
}
