// Package spectest runs YAML conformance fixtures through the parser and the
// evaluator and compares the emitted console records.
package spectest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"quill/internal/sink"
)

// ParseError is the expected error name for fixtures whose source must not
// parse.
const ParseError = "ParseError"

// Fixture is one conformance case. Source is inline; File names a script
// relative to the fixture file and wins when both are set.
type Fixture struct {
	Name          string        `yaml:"name"`
	Source        string        `yaml:"source"`
	File          string        `yaml:"file"`
	Output        []sink.Record `yaml:"output"`
	Error         string        `yaml:"error"`
	ErrorContains string        `yaml:"error_contains"`

	// Path is the fixture file the case came from.
	Path string `yaml:"-"`
}

// LoadFile decodes every YAML document in path as a fixture.
func LoadFile(path string) ([]Fixture, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	var out []Fixture
	for i := 0; ; i++ {
		var f Fixture
		if err := dec.Decode(&f); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%s: document %d: %w", path, i+1, err)
		}
		f.Path = path
		if f.Name == "" {
			f.Name = fmt.Sprintf("%s#%d", strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)), i+1)
		}
		if f.File != "" {
			src, err := os.ReadFile(filepath.Join(filepath.Dir(path), f.File))
			if err != nil {
				return nil, fmt.Errorf("%s: fixture %q: %w", path, f.Name, err)
			}
			f.Source = string(src)
		}
		out = append(out, f)
	}
	return out, nil
}

// LoadDir loads every *.yaml and *.yml file in dir, in file name order.
func LoadDir(dir string) ([]Fixture, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		m, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		paths = append(paths, m...)
	}
	sort.Strings(paths)

	var out []Fixture
	for _, p := range paths {
		fs, err := LoadFile(p)
		if err != nil {
			return nil, err
		}
		out = append(out, fs...)
	}
	return out, nil
}
