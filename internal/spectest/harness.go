package spectest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"quill/internal/diag"
	"quill/internal/evaluator"
	"quill/internal/parser"
	"quill/internal/sink"
)

type Result struct {
	Fixture  Fixture
	Records  []sink.Record
	ErrName  string
	ErrMsg   string
	Pass     bool
	Reason   string
	Duration time.Duration
}

// Run parses and evaluates one fixture against a fresh environment.
func Run(f Fixture) Result {
	start := time.Now()
	res := Result{Fixture: f}

	prog, diags := parser.Parse(f.Source)
	if len(diags) > 0 {
		res.ErrName = ParseError
		res.ErrMsg = fmt.Sprintf("%d:%d: %s", diags[0].Range.Line, diags[0].Range.Col, diags[0].Message)
	} else {
		rec := sink.NewRecorder()
		err := evaluator.New(rec, evaluator.WithFile(f.Name)).Run(prog)
		res.Records = rec.Records()
		if err != nil {
			res.ErrName, res.ErrMsg = errorName(err), err.Error()
		}
	}

	res.Pass, res.Reason = check(f, res)
	res.Duration = time.Since(start)
	return res
}

func errorName(err error) string {
	var de *diag.Error
	if errors.As(err, &de) {
		return de.Kind.String()
	}
	return "Error"
}

func check(f Fixture, res Result) (bool, string) {
	if ok, reason := MatchOutput(res.Records, f.Output); !ok {
		return false, reason
	}
	if f.Error == "" && res.ErrName != "" {
		return false, fmt.Sprintf("unexpected error: %s", res.ErrMsg)
	}
	if f.Error != "" && res.ErrName != f.Error {
		if res.ErrName == "" {
			return false, fmt.Sprintf("expected %s, got none", f.Error)
		}
		return false, fmt.Sprintf("expected %s, got %s: %s", f.Error, res.ErrName, res.ErrMsg)
	}
	if f.ErrorContains != "" && !strings.Contains(res.ErrMsg, f.ErrorContains) {
		return false, fmt.Sprintf("error message mismatch: expected to contain %q, got %q", f.ErrorContains, res.ErrMsg)
	}
	return true, ""
}

// RunAll runs fixtures with at most parallelism in flight and returns the
// results in input order. Cancelling ctx stops fixtures that have not started.
func RunAll(ctx context.Context, fixtures []Fixture, parallelism int) ([]Result, error) {
	if parallelism <= 0 {
		parallelism = 1
	}
	results := make([]Result, len(fixtures))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, f := range fixtures {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = Run(f)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Failed counts the results that did not pass.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.Pass {
			n++
		}
	}
	return n
}
