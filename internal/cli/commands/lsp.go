package commands

import (
	"github.com/spf13/cobra"
	"github.com/tliron/glsp/server"

	"quill/internal/lsp"
)

// NewLSPCommand creates the lsp command.
func NewLSPCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Start the language server on stdio",
		Long: `Start the language server for editor integration. It publishes parse
and lint diagnostics for .js, .ts and .quill documents.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLSP(version, cmd)
		},
	}
}

func runLSP(version string, cmd *cobra.Command) error {
	s := lsp.NewServer(version, loggerFrom(cmd))
	s.SetLintOptions(cfgFrom(cmd).LintOptions())
	handler := s.Handler()
	return server.NewServer(&handler, lsp.Name, false).RunStdio()
}
