package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quill/internal/cli/commands"
	"quill/internal/testutil"
)

type result struct {
	stdout string
	stderr string
	err    error
}

func execute(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	return executeContext(context.Background(), t, stdin, &testutil.SyncBuffer{}, &testutil.SyncBuffer{}, args...)
}

func executeContext(ctx context.Context, t *testing.T, stdin string, out, errOut *testutil.SyncBuffer, args ...string) result {
	t.Helper()
	cmd := NewRootCmd()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return result{stdout: out.String(), stderr: errOut.String(), err: err}
}

// isolate moves the test into an empty directory so no quill.yaml or
// QUILL_* variable leaks in.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, kv := range os.Environ() {
		if name, _, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(name, "QUILL_") {
			t.Setenv(name, "")
			require.NoError(t, os.Unsetenv(name))
		}
	}
	return dir
}

func writeScript(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestVersion(t *testing.T) {
	isolate(t)
	res := execute(t, "", "version")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "quill v"+Version)
}

func TestRunSplitsStreams(t *testing.T) {
	dir := isolate(t)
	path := writeScript(t, dir, "main.js", `let x = 2
console.log("x is", x)
console.warn("careful")
console.error("bad")
`)
	res := execute(t, "", "run", path)
	require.NoError(t, res.err)
	assert.Equal(t, "x is 2\n", res.stdout)
	assert.Contains(t, res.stderr, "careful\n")
	assert.Contains(t, res.stderr, "bad\n")
}

func TestRunJSONOutput(t *testing.T) {
	dir := isolate(t)
	path := writeScript(t, dir, "main.ts", "console.log(1)\nconsole.warn(2)\n")
	res := execute(t, "", "run", path, "--output", "json")
	require.NoError(t, res.err)
	assert.Equal(t, `{"severity":"info","text":"1"}`+"\n"+`{"severity":"warn","text":"2"}`+"\n", res.stdout)
}

type closedPipe struct{}

func (closedPipe) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestRunJSONOutputWriteError(t *testing.T) {
	dir := isolate(t)
	path := writeScript(t, dir, "main.js", "console.log(1)\nconsole.log(2)\n")

	cmd := NewRootCmd()
	cmd.SetOut(closedPipe{})
	cmd.SetErr(&testutil.SyncBuffer{})
	cmd.SetArgs([]string{"run", path, "-o", "json"})
	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, commands.ErrReported)
	assert.Contains(t, err.Error(), "broken pipe")
}

func TestRunLogOutput(t *testing.T) {
	dir := isolate(t)
	path := writeScript(t, dir, "main.js", "console.error('boom')\n")
	res := execute(t, "", "run", "-o", "log", path)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "level=ERROR msg=boom source=console")
}

func TestRunFailures(t *testing.T) {
	dir := isolate(t)
	tests := []struct {
		name   string
		src    string
		stdout string
		stderr string
	}{
		{"runtime error", "console.log(1)\nconst c = 1\nc = 2\n", "1\n", "main.js:3:1: ImmutableAssignmentError"},
		{"parse error", "let = 1\n", "", "main.js:1:5: error QP0001"},
		{"malformed literal", "let v = 12ab\n", "", "MalformedLiteralError: malformed integer literal \"12ab\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScript(t, dir, "main.js", tt.src)
			res := execute(t, "", "run", path)
			require.ErrorIs(t, res.err, commands.ErrReported)
			assert.Equal(t, tt.stdout, res.stdout)
			assert.Contains(t, res.stderr, tt.stderr)
		})
	}
}

func TestRunDebugArgument(t *testing.T) {
	dir := isolate(t)
	path := writeScript(t, dir, "main.js", "for (let i = 0; i < 1; i++) {}\nconsole.log(\"done\")\n")

	res := execute(t, "", "run", path, "debug", "--trace")
	require.NoError(t, res.err)
	assert.Equal(t, "done\n", res.stdout)
	assert.Contains(t, res.stderr, "msg=exec")
	assert.Contains(t, res.stderr, "stmt=ForStatement")
	assert.Contains(t, res.stderr, "run_id=")
	assert.Contains(t, res.stderr, "level=INFO msg=done", "records are logged next to traces")
	assert.Contains(t, res.stderr, "source=console")

	res = execute(t, "", "run", path, "--trace")
	require.NoError(t, res.err)
	assert.NotContains(t, res.stderr, "msg=exec", "trace logs are debug level")
	assert.NotContains(t, res.stderr, "source=console")

	res = execute(t, "", "run", path, "verbose")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), `unexpected argument "verbose"`)
}

func TestRunMissingFile(t *testing.T) {
	isolate(t)
	res := execute(t, "", "run", "nope.js")
	require.Error(t, res.err)
	assert.NotErrorIs(t, res.err, commands.ErrReported)
	assert.Contains(t, res.err.Error(), "read error")
}

func TestConfigFileApplies(t *testing.T) {
	dir := isolate(t)
	writeScript(t, dir, "quill.yaml", "output: json\n")
	path := writeScript(t, dir, "main.js", "console.log(7)\n")

	res := execute(t, "", "run", path)
	require.NoError(t, res.err)
	assert.Equal(t, `{"severity":"info","text":"7"}`+"\n", res.stdout)

	res = execute(t, "", "run", path, "--output", "text")
	require.NoError(t, res.err)
	assert.Equal(t, "7\n", res.stdout)

	writeScript(t, dir, "quill.yaml", "output: xml\n")
	res = execute(t, "", "run", path)
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "invalid output")
}

func TestCheck(t *testing.T) {
	dir := isolate(t)
	writeScript(t, dir, "ok.js", "let a = 1\n{ let b = a\nconsole.log(b) }\n")
	writeScript(t, dir, "warn.ts", "let a = 1\n{ let a = 2\nconsole.log(a) }\n")
	writeScript(t, dir, "notes.txt", "not a script")

	res := execute(t, "", "check", dir)
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "warn.ts:2:7: warning QL0004")
	assert.NotContains(t, res.stderr, "ok.js")

	writeScript(t, dir, "bad.quill", "const c = 1\nc = 2\n")
	res = execute(t, "", "check", dir)
	require.ErrorIs(t, res.err, commands.ErrReported)
	assert.Contains(t, res.stderr, "bad.quill:2:1: error QL0002")

	writeScript(t, dir, "quill.yaml", "lint:\n  shadowing: false\n")
	res = execute(t, "", "check", filepath.Join(dir, "warn.ts"))
	require.NoError(t, res.err)
	assert.Empty(t, res.stderr)
}

func TestTokensAndAST(t *testing.T) {
	dir := isolate(t)
	path := writeScript(t, dir, "main.js", "let x = 1 + 2 * 3\n")

	res := execute(t, "", "tokens", path)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, `   1:1    LET         "let"`)
	assert.Contains(t, res.stdout, "EOF")

	res = execute(t, "", "ast", path)
	require.NoError(t, res.err)
	assert.Equal(t, "let x = (1 + (2 * 3))\n", res.stdout)
}

func TestTestCommand(t *testing.T) {
	fixtures, err := filepath.Abs(filepath.Join("..", "spectest", "testdata"))
	require.NoError(t, err)
	dir := isolate(t)

	res := execute(t, "", "test", fixtures, "--parallel", "2")
	require.NoError(t, res.err, res.stdout)
	assert.Contains(t, res.stdout, "0 failed")

	writeScript(t, dir, "broken.yaml", "name: wrong output\nsource: console.log(1)\noutput:\n  - {severity: info, text: \"2\"}\n")
	res = execute(t, "", "test", dir)
	require.ErrorIs(t, res.err, commands.ErrReported)
	assert.Contains(t, res.stdout, "wrong output")
	assert.Contains(t, res.stdout, "FAIL")
	assert.Contains(t, res.stdout, "0 passed, 1 failed, 1 total")
}

func TestREPLPiped(t *testing.T) {
	isolate(t)
	res := execute(t, "let a = 2\nfor (let i = 0; i < 2; i++) {\n  a *= 3\n}\na + 0\nconsole.log(a)\n.exit\nconsole.log(99)\n", "repl")
	require.NoError(t, res.err)
	assert.Equal(t, "18\n18\n", res.stdout)
}

func TestRunWatch(t *testing.T) {
	dir := isolate(t)
	path := writeScript(t, dir, "main.js", "console.log(1)\n")

	ctx, cancel := context.WithCancel(context.Background())
	out, errOut := &testutil.SyncBuffer{}, &testutil.SyncBuffer{}
	done := make(chan result, 1)
	go func() {
		done <- executeContext(ctx, t, "", out, errOut, "run", "--watch", path)
	}()

	require.Eventually(t, func() bool { return out.String() == "1\n" }, 5*time.Second, 20*time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("console.log(2)\n"), 0o644))
	require.Eventually(t, func() bool { return strings.HasSuffix(out.String(), "2\n") }, 5*time.Second, 20*time.Millisecond)
	assert.Contains(t, errOut.String(), "main.js changed")

	cancel()
	select {
	case res := <-done:
		require.NoError(t, res.err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}
