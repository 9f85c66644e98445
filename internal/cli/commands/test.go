package commands

import (
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"quill/internal/spectest"
)

// TestOptions holds options for the test command.
type TestOptions struct {
	Parallel int
	Verbose  bool
}

// NewTestCommand creates the test command.
func NewTestCommand() *cobra.Command {
	opts := &TestOptions{}

	cmd := &cobra.Command{
		Use:   "test [dir]...",
		Short: "Run conformance fixtures",
		Long: `Load every *.yaml fixture in the given directories (default: testdata)
and compare the console records and error of each case.`,
		Example: `  quill test internal/spectest/testdata
  quill test fixtures --parallel 1 --verbose`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"testdata"}
			}
			var fixtures []spectest.Fixture
			for _, dir := range args {
				fs, err := spectest.LoadDir(dir)
				if err != nil {
					return err
				}
				fixtures = append(fixtures, fs...)
			}
			if len(fixtures) == 0 {
				return fmt.Errorf("no fixtures found in %v", args)
			}

			results, err := spectest.RunAll(cmd.Context(), fixtures, opts.Parallel)
			if err != nil {
				return err
			}
			renderResults(cmd, results, opts.Verbose)
			if spectest.Failed(results) > 0 {
				return ErrReported
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.Parallel, "parallel", "p", runtime.NumCPU(), "Fixtures to run at once")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "List passing fixtures too")

	return cmd
}

func renderResults(cmd *cobra.Command, results []spectest.Result, verbose bool) {
	w := cmd.OutOrStdout()
	styles := stylesFor(cmd, w)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Fixture", "File", "Status", "Time", "Detail"})
	rows := 0
	for _, r := range results {
		if r.Pass && !verbose {
			continue
		}
		status := styles.Info.Render("PASS")
		if !r.Pass {
			status = styles.Error.Render("FAIL")
		}
		t.AppendRow(table.Row{r.Fixture.Name, filepath.Base(r.Fixture.Path), status, r.Duration.Round(time.Microsecond).String(), r.Reason})
		rows++
	}
	if rows > 0 {
		t.Render()
	}

	failed := spectest.Failed(results)
	summary := fmt.Sprintf("%d passed, %d failed, %d total", len(results)-failed, failed, len(results))
	if failed > 0 {
		summary = styles.Error.Render(summary)
	} else {
		summary = styles.Bold.Render(summary)
	}
	_, _ = fmt.Fprintln(w, summary)
}
