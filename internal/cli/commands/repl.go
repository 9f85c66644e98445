package commands

import (
	"bufio"

	"github.com/spf13/cobra"

	"quill/internal/repl"
	"quill/internal/runtimeio"
)

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session",
		Long: `Start a read-eval-print loop. Bindings persist across inputs; a trailing
expression prints its value. Piped input is evaluated line by line without
line editing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := cfgFrom(cmd)
			opts := repl.Options{
				Out:         cmd.OutOrStdout(),
				ErrOut:      cmd.ErrOrStderr(),
				Sink:        newSink(cmd),
				Styles:      stylesFor(cmd, cmd.ErrOrStderr()),
				Logger:      loggerFrom(cmd),
				Trace:       cfg.Trace,
				HistoryFile: cfg.HistoryFile,
			}
			if runtimeio.IsTerminal(cmd.InOrStdin()) {
				return repl.Start(opts)
			}

			s := repl.NewSession(opts)
			sc := bufio.NewScanner(cmd.InOrStdin())
			for sc.Scan() {
				if _, quit := s.Feed(sc.Text()); quit {
					return nil
				}
			}
			return sc.Err()
		},
	}

	cmd.Flags().StringP("output", "o", "", "Console output format (text|json|log)")
	cmd.Flags().Bool("trace", false, "Log statements and scope changes at debug level")

	return cmd
}
