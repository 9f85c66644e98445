package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"quill/internal/evaluator"
	"quill/internal/parser"
	"quill/internal/sink"
)

// debounceDelay coalesces the burst of events editors emit on save.
const debounceDelay = 100 * time.Millisecond

// RunOptions holds options for the run command.
type RunOptions struct {
	Watch bool
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run <file> [debug]",
		Short: "Run a script",
		Long: `Parse and execute a script. Console records go to stdout (log, info)
and stderr (warn, error) unless --output selects json or log.

A trailing "debug" argument is the same as --debug.`,
		Example: `  quill run examples/all.js
  quill run main.ts --output json
  quill run main.ts --watch --trace`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 2 && args[1] != "debug" {
				return fmt.Errorf("unexpected argument %q", args[1])
			}
			if opts.Watch {
				return watchScript(cmd, args[0])
			}
			return runScript(cmd, args[0])
		},
	}

	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-run the script whenever it changes")
	cmd.Flags().StringP("output", "o", "", "Console output format (text|json|log)")
	cmd.Flags().Bool("trace", false, "Log statements and scope changes at debug level")

	_ = cmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json", "log"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runScript(cmd *cobra.Command, path string) error {
	src, err := readScript(path)
	if err != nil {
		return err
	}
	prog, diags := parser.Parse(src)
	if len(diags) > 0 {
		printDiagnostics(cmd, path, diags)
		return ErrReported
	}

	cfg := cfgFrom(cmd)
	log := loggerFrom(cmd)
	log.Debug("run", "file", path, "statements", len(prog.Statements))

	out := newSink(cmd)
	// A traced run also logs each record, so records and statement traces
	// interleave in the diagnostic log.
	if cfg.Trace && log.Enabled(cmd.Context(), slog.LevelDebug) {
		out = sink.NewTee(out, sink.NewLogger(log))
	}

	in := evaluator.New(out,
		evaluator.WithLogger(log),
		evaluator.WithTrace(cfg.Trace),
		evaluator.WithFile(path),
	)
	runErr := in.Run(prog)
	if err := sink.Err(out); err != nil {
		return err
	}
	if runErr != nil {
		styles := stylesFor(cmd, cmd.ErrOrStderr())
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), styles.Error.Render(runErr.Error()))
		return ErrReported
	}
	return nil
}

func watchScript(cmd *cobra.Command, path string) error {
	ctx := cmd.Context()
	log := loggerFrom(cmd)
	styles := stylesFor(cmd, cmd.ErrOrStderr())

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Editors often replace the file, so watch the directory.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	rerun := func() {
		if err := runScript(cmd, path); err != nil && !errors.Is(err, ErrReported) {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), styles.Error.Render(err.Error()))
		}
	}
	rerun()

	trigger := make(chan struct{}, 1)
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if name, err := filepath.Abs(event.Name); err != nil || name != abs {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, func() {
				select {
				case trigger <- struct{}{}:
				default:
				}
			})
		case <-trigger:
			log.Info("change detected", "file", path)
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), styles.Muted.Render(fmt.Sprintf("--- %s changed, re-running", filepath.Base(path))))
			rerun()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", "error", err)
		}
	}
}
