package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"quill/internal/diag"
	"quill/internal/lint"
)

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file|dir>...",
		Short: "Report parse and binding errors without running",
		Long: `Parse and lint scripts. Directories are searched for .js, .ts and .quill
files. Exits non-zero when any error is reported; warnings alone pass.

The shadowing and unused checks follow the lint section of quill.yaml.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := collectScripts(args)
			if err != nil {
				return err
			}
			sort.Strings(files)

			opts := cfgFrom(cmd).LintOptions()
			hadErrors := false
			warnings := 0
			for _, path := range files {
				src, err := readScript(path)
				if err != nil {
					return err
				}
				diags := lint.CheckSource(src, opts)
				warnings += diag.Count(diags, diag.SeverityWarning)
				if printDiagnostics(cmd, path, diags) {
					hadErrors = true
				}
			}
			loggerFrom(cmd).Debug("check", "files", len(files), "errors", hadErrors, "warnings", warnings)
			if hadErrors {
				return ErrReported
			}
			if len(files) == 0 {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "no scripts found")
			}
			return nil
		},
	}
}
