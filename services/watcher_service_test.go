package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanAndIndexDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte(parisText), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tiny.txt"), []byte("short"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blob.dat"), []byte{0x00, 0x01, 0x02}, 0644))

	store := &memoryStore{}
	watcher := NewWatcherService(newTestIndexing(store), store)
	ctx := context.Background()

	watcher.ScanAndIndexDirectory(ctx, dir)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "only the sufficiently long supported file should be indexed")

	hits, err := store.Query(ctx, hashVector(parisText), 10, "file:notes.txt")
	require.NoError(t, err)
	require.Len(t, hits, 1)

	// Rescanning clears each file's previous entries first, so the count is
	// stable instead of doubling.
	watcher.ScanAndIndexDirectory(ctx, dir)
	count, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestFileSource(t *testing.T) {
	assert.Equal(t, "file:notes.txt", FileSource("/var/data/drop/notes.txt"))
}
