package common

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCrashFile(t *testing.T) {
	dir := t.TempDir()

	path := WriteCrashFile(dir, "boom", GetStackTrace())
	require.NotEmpty(t, path)
	assert.True(t, strings.HasPrefix(path, dir))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "FYDE CRASH REPORT")
	assert.Contains(t, string(data), "boom")
	assert.Contains(t, string(data), "TestWriteCrashFile")
}
