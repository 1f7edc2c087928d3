package storage_test

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/thumbnailer/internal/storage"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	backend, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	path := "user-1/images/photo.jpg"
	testData := "Hello, World! This is test image data."

	err = backend.Save(path, strings.NewReader(testData))
	require.NoError(t, err)

	exists, err := backend.Exists(path)
	require.NoError(t, err)
	assert.True(t, exists, "file should exist after saving")

	rc, err := backend.Open(path)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, testData, string(data))

	err = backend.Delete(path)
	require.NoError(t, err)

	exists, err = backend.Exists(path)
	require.NoError(t, err)
	assert.False(t, exists, "file should not exist after deletion")

	_, err = backend.Open(path)
	assert.ErrorIs(t, err, storage.ErrNotExist)
}

func TestLocalStorageOverwrite(t *testing.T) {
	backend, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, backend.Save("a/b.png", strings.NewReader("first")))
	require.NoError(t, backend.Save("a/b.png", strings.NewReader("second")))

	data, err := storage.ReadAll(backend, "a/b.png")
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestLocalStorageDeleteMissingIsNoop(t *testing.T) {
	backend, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, backend.Delete("nobody/images/missing.jpg"))
}

func TestLocalStorageRejectsEscapingPaths(t *testing.T) {
	backend, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, path := range []string{"", "../outside.jpg", "a/../../outside.jpg", "..", `a\b.jpg`} {
		err := backend.Save(path, strings.NewReader("x"))
		assert.ErrorIs(t, err, storage.ErrInvalidPath, "path %q", path)

		_, err = backend.Exists(path)
		assert.ErrorIs(t, err, storage.ErrInvalidPath, "path %q", path)
	}
}

func TestLocalStorageDirectoryIsNotAFile(t *testing.T) {
	backend, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, backend.Save("u/images/x.jpg", strings.NewReader("x")))

	exists, err := backend.Exists("u/images")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = backend.Open("u/images")
	assert.ErrorIs(t, err, storage.ErrNotExist)
}

func TestLocalStorageList(t *testing.T) {
	backend, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, backend.Save("u1/images/a.jpg", strings.NewReader("a")))
	require.NoError(t, backend.Save("u1/images/a_200px_thumbnail.jpg", strings.NewReader("b")))
	require.NoError(t, backend.Save("u2/images/c.jpg", strings.NewReader("c")))

	paths, err := backend.List("u1/images/")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"u1/images/a.jpg", "u1/images/a_200px_thumbnail.jpg"}, paths)

	paths, err = backend.List("nobody/images/")
	require.NoError(t, err)
	assert.Empty(t, paths)
}
