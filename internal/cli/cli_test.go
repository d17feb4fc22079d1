package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractGlobalFlags(t *testing.T) {
	gf, rest, err := extractGlobalFlags([]string{"--todo", "/tmp/tasks", "today", "--tz=UTC"})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/tasks", gf.Todo)
	assert.Equal(t, "UTC", gf.TZ)
	assert.Equal(t, []string{"today"}, rest)
}

func TestExtractGlobalFlagsMissingValue(t *testing.T) {
	_, _, err := extractGlobalFlags([]string{"today", "--tz"})
	assert.Error(t, err)
}

func TestRunUnknownCommand(t *testing.T) {
	assert.Equal(t, ExitUsage, Run([]string{"frobnicate"}))
}

func TestRunViewOnEmptyDir(t *testing.T) {
	code := Run([]string{"--todo", t.TempDir(), "--tz", "UTC", "today"})
	assert.Equal(t, ExitOK, code)
}

func TestRunHelp(t *testing.T) {
	assert.Equal(t, ExitOK, Run([]string{"help"}))
}
