package debug

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogDisabledWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	EnableWriter(&buf)
	Disable()

	Log("pad", "hit %s", "bd")
	assert.Empty(t, buf.String())
}

func TestLogFormatsCategory(t *testing.T) {
	var buf bytes.Buffer
	EnableWriter(&buf)
	defer Disable()

	Log("pad", "hit %s", "bd")
	line := buf.String()
	assert.Contains(t, line, "pad")
	assert.True(t, strings.HasSuffix(line, "hit bd\n"))
}

func TestLogEvery(t *testing.T) {
	var buf bytes.Buffer
	EnableWriter(&buf)
	defer Disable()

	for i := 0; i < 10; i++ {
		LogEvery(5, "midi", "led flush")
	}
	assert.Equal(t, 2, strings.Count(buf.String(), "led flush"))
}

func TestEnableCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "debug.log")
	require.NoError(t, Enable(path))
	Log("engine", "ready")
	Disable()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "debug log started")
	assert.Contains(t, string(data), "ready")
}
