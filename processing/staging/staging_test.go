package staging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newArea(t *testing.T) *Area {
	t.Helper()
	return NewArea(filepath.Join(t.TempDir(), "staging"), zerolog.Nop())
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestStageFilePreservesFilename(t *testing.T) {
	area := newArea(t)

	src := filepath.Join(t.TempDir(), "котик фото (1).jpg")
	write(t, src, "pixels")

	staged, err := area.StageFile(src)
	require.NoError(t, err)

	assert.Equal(t, "котик фото (1).jpg", filepath.Base(staged))
	data, err := os.ReadFile(staged)
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(data))
}

func TestStageFileOverwritesPreviousCopy(t *testing.T) {
	area := newArea(t)
	dir := t.TempDir()

	src := filepath.Join(dir, "same.jpg")
	write(t, src, "first")
	_, err := area.StageFile(src)
	require.NoError(t, err)

	write(t, src, "second")
	staged, err := area.StageFile(src)
	require.NoError(t, err)

	data, err := os.ReadFile(staged)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestStageFileMissingSource(t *testing.T) {
	area := newArea(t)
	_, err := area.StageFile(filepath.Join(t.TempDir(), "gone.jpg"))
	assert.Error(t, err)
}

func TestStageFolderFiltersExtensions(t *testing.T) {
	area := newArea(t)
	src := t.TempDir()

	write(t, filepath.Join(src, "a.jpg"), "a")
	write(t, filepath.Join(src, "b.txt"), "b")
	write(t, filepath.Join(src, "c.PNG"), "c")
	write(t, filepath.Join(src, "d.jpeg"), "d")
	write(t, filepath.Join(src, "e.bmp"), "e")
	write(t, filepath.Join(src, "f.gif"), "f")

	staged, count, err := area.StageFolder(src)
	require.NoError(t, err)

	// extension matching is case-insensitive, so c.PNG is included
	assert.Equal(t, 4, count)

	entries, err := os.ReadDir(staged)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"a.jpg", "c.PNG", "d.jpeg", "e.bmp"}, names)
}

func TestStageFolderIsNotRecursive(t *testing.T) {
	area := newArea(t)
	src := t.TempDir()

	write(t, filepath.Join(src, "top.jpg"), "top")
	sub := filepath.Join(src, "nested")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	write(t, filepath.Join(sub, "deep.jpg"), "deep")

	_, count, err := area.StageFolder(src)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStageFolderClearsPreviousBatch(t *testing.T) {
	area := newArea(t)

	first := t.TempDir()
	write(t, filepath.Join(first, "old.jpg"), "old")
	_, _, err := area.StageFolder(first)
	require.NoError(t, err)

	second := t.TempDir()
	write(t, filepath.Join(second, "new.jpg"), "new")
	staged, count, err := area.StageFolder(second)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = os.Stat(filepath.Join(staged, "old.jpg"))
	assert.True(t, os.IsNotExist(err), "stale files must not leak into a new batch")
}

func TestStageFolderNoImages(t *testing.T) {
	area := newArea(t)
	src := t.TempDir()
	write(t, filepath.Join(src, "notes.txt"), "text")

	_, _, err := area.StageFolder(src)
	assert.ErrorIs(t, err, ErrNoImages)
}

func TestStageFolderRejectsFile(t *testing.T) {
	area := newArea(t)
	src := filepath.Join(t.TempDir(), "file.jpg")
	write(t, src, "x")

	_, _, err := area.StageFolder(src)
	assert.Error(t, err)
}

func TestCleanupIdempotent(t *testing.T) {
	area := newArea(t)

	src := filepath.Join(t.TempDir(), "x.jpg")
	write(t, src, "x")
	_, err := area.StageFile(src)
	require.NoError(t, err)

	area.Cleanup()
	_, err = os.Stat(area.Root())
	assert.True(t, os.IsNotExist(err))

	assert.NotPanics(t, func() { area.Cleanup() })
}

func TestIsImage(t *testing.T) {
	assert.True(t, IsImage("a.jpg"))
	assert.True(t, IsImage("a.JPG"))
	assert.True(t, IsImage("a.PnG"))
	assert.False(t, IsImage("a.tiff"))
	assert.False(t, IsImage("jpg"))
}
