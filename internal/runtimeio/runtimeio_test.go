package runtimeio

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUseColor(t *testing.T) {
	var buf bytes.Buffer
	assert.True(t, UseColor("always", &buf))
	assert.False(t, UseColor("never", &buf))
	assert.False(t, UseColor("auto", &buf), "buffers are never terminals")
}

func TestUseColorRegularFile(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	defer f.Close()

	assert.False(t, IsTerminal(f))
	assert.False(t, UseColor("auto", f))
	t.Setenv("NO_COLOR", "1")
	assert.True(t, UseColor("always", f))
}

func TestWidthFallback(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, 80, Width(&buf, 80))

	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, 100, Width(f, 100))
}
