package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSaveUpload(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)

	path, err := store.SaveUpload(strings.NewReader("audio bytes"), ".mp3")
	if err != nil {
		t.Fatalf("SaveUpload error: %v", err)
	}

	assert.Equal(t, dir, filepath.Dir(path), "upload must land in the store directory")
	assert.True(t, strings.HasSuffix(path, ".mp3"), "extension must be preserved")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read saved upload: %v", err)
	}
	assert.Equal(t, "audio bytes", string(data))
}

func TestSaveUploadUniqueNames(t *testing.T) {
	store := NewFileStore(t.TempDir())

	first, err := store.SaveUpload(strings.NewReader("a"), ".jpg")
	if err != nil {
		t.Fatalf("SaveUpload error: %v", err)
	}
	second, err := store.SaveUpload(strings.NewReader("b"), ".jpg")
	if err != nil {
		t.Fatalf("SaveUpload error: %v", err)
	}

	assert.NotEqual(t, first, second)
}

func TestNewOutputPath(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)

	first := store.NewOutputPath()
	second := store.NewOutputPath()

	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasSuffix(first, ".mp4"))
	assert.Equal(t, dir, filepath.Dir(first))
	assert.False(t, store.Exists(first), "output path must not be pre-created")
}

func TestRemoveMissingFileIsNotAnError(t *testing.T) {
	store := NewFileStore(t.TempDir())
	assert.NoError(t, store.Remove(filepath.Join(store.Dir(), "absent.mp4")))
}

func TestSize(t *testing.T) {
	store := NewFileStore(t.TempDir())

	path, err := store.SaveUpload(strings.NewReader("12345"), ".bin")
	if err != nil {
		t.Fatalf("SaveUpload error: %v", err)
	}

	size, err := store.Size(path)
	if err != nil {
		t.Fatalf("Size error: %v", err)
	}
	assert.Equal(t, int64(5), size)

	if _, err := store.Size(filepath.Join(store.Dir(), "absent.bin")); err == nil {
		t.Error("expected error for missing file")
	}
}
