package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"quill/internal/lexer"
	"quill/internal/parser"
)

// NewTokensCommand creates the tokens command.
func NewTokensCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <file>",
		Short: "Print the token stream of a script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readScript(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, tok := range lexer.Tokenize(src) {
				_, _ = fmt.Fprintf(w, "%4d:%-3d  %-10s  %q\n", tok.Line, tok.Col, tok.Type, tok.Literal)
			}
			return nil
		},
	}
}

// NewASTCommand creates the ast command.
func NewASTCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ast <file>",
		Short: "Print the parsed program of a script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readScript(args[0])
			if err != nil {
				return err
			}
			prog, diags := parser.Parse(src)
			if len(diags) > 0 {
				printDiagnostics(cmd, args[0], diags)
				return ErrReported
			}
			for _, st := range prog.Statements {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), st.String())
			}
			return nil
		},
	}
}
