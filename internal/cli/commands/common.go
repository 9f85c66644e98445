// Package commands holds the quill subcommands.
package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"quill/internal/config"
	"quill/internal/diag"
	"quill/internal/lsp"
	"quill/internal/runtimeio"
	"quill/internal/sink"
)

// ErrReported means the command already printed its failure; the caller
// should only set the exit status.
var ErrReported = errors.New("errors reported")

func cfgFrom(cmd *cobra.Command) *config.Config {
	if cfg := config.FromContext(cmd.Context()); cfg != nil {
		return cfg
	}
	return &config.Config{
		Output:   config.OutputText,
		Color:    config.ColorNever,
		LogLevel: "warn",
		Lint:     config.LintConfig{Shadowing: true, Unused: true},
	}
}

func loggerFrom(cmd *cobra.Command) *slog.Logger {
	return config.GetLogger(cmd.Context())
}

func stylesFor(cmd *cobra.Command, w io.Writer) *sink.Styles {
	return sink.NewStyles(runtimeio.UseColor(cfgFrom(cmd).Color, w))
}

// newSink builds the console sink selected by the output key.
func newSink(cmd *cobra.Command) sink.Sink {
	cfg := cfgFrom(cmd)
	switch cfg.Output {
	case config.OutputJSON:
		return sink.NewJSONLines(cmd.OutOrStdout())
	case config.OutputLog:
		// Records are program output: stdout, at every severity, whatever
		// log_level says about diagnostics.
		h := slog.NewTextHandler(cmd.OutOrStdout(), &slog.HandlerOptions{Level: slog.LevelInfo})
		return sink.NewLogger(slog.New(h))
	default:
		color := runtimeio.UseColor(cfg.Color, cmd.OutOrStdout())
		return sink.NewConsole(cmd.OutOrStdout(), cmd.ErrOrStderr(), color)
	}
}

func readScript(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read error: %w", err)
	}
	return string(b), nil
}

// printDiagnostics writes diags in path:line:col form and reports whether any
// is an error.
func printDiagnostics(cmd *cobra.Command, path string, diags []diag.Diagnostic) bool {
	w := cmd.ErrOrStderr()
	styles := stylesFor(cmd, w)
	hadErrors := false
	for _, d := range diags {
		style := styles.Warning
		switch d.Severity {
		case diag.SeverityError:
			style = styles.Error
			hadErrors = true
		case diag.SeverityInfo:
			style = styles.Info
		}
		_, _ = fmt.Fprintln(w, style.Render(d.Format(path)))
	}
	return hadErrors
}

func isScript(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range lsp.SourceExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// collectScripts expands directories into the scripts they contain. Files
// named explicitly are kept whatever their extension.
func collectScripts(targets []string) ([]string, error) {
	var files []string
	for _, target := range targets {
		info, err := os.Stat(target)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, target)
			continue
		}

		err = filepath.WalkDir(target, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				base := filepath.Base(path)
				if base == ".git" || base == "node_modules" {
					return filepath.SkipDir
				}
				return nil
			}
			if isScript(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}
