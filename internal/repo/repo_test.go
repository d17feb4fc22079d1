package repo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestScanPartitionsByCompletion(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Work.md", "# Work\n- [ ] open one [due:: 2026-08-24]\n- [x] closed one\nnot a task\n")

	set := Scan(dir)
	require.Len(t, set.Incomplete, 1)
	require.Len(t, set.Completed, 1)
	assert.Equal(t, "open one", set.Incomplete[0].Title)
	assert.Equal(t, "Work", set.Incomplete[0].Source)
	assert.Empty(t, set.Errors)
}

func TestScanRecursesAndSkipsOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "top.md", "- [ ] top task\n")
	writeFile(t, dir, filepath.Join("nested", "deep.txt"), "- [ ] deep task\n")
	writeFile(t, dir, "image.png", "- [ ] not scanned\n")

	set := Scan(dir)
	require.Len(t, set.Incomplete, 2)
	titles := []string{set.Incomplete[0].Title, set.Incomplete[1].Title}
	assert.Contains(t, titles, "top task")
	assert.Contains(t, titles, "deep task")
}

func TestScanBadFileDoesNotAbort(t *testing.T) {
	dir := t.TempDir()
	// A dangling symlink fails to open regardless of privileges,
	// exercising the skip-and-record path.
	require.NoError(t, os.Symlink(filepath.Join(dir, "gone"), filepath.Join(dir, "trap.md")))
	writeFile(t, dir, "good.md", "- [ ] survivor\n")

	set := Scan(dir)
	require.Len(t, set.Incomplete, 1)
	assert.Equal(t, "survivor", set.Incomplete[0].Title)
	assert.NotEmpty(t, set.Errors)
}

func TestScanMissingRootIsEmptyNotFatal(t *testing.T) {
	set := Scan(filepath.Join(t.TempDir(), "nope"))
	assert.True(t, set.Empty())
	assert.NotEmpty(t, set.Errors)
}
