package services

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/pagerag/backend/models"
)

// WatcherService keeps a drop folder in sync with the vector collection:
// supported files are indexed under source "file:<name>", re-indexed on
// change, and removed from the collection when deleted.
type WatcherService struct {
	indexing IndexingService
	store    VectorStore
}

func NewWatcherService(indexing IndexingService, store VectorStore) *WatcherService {
	return &WatcherService{
		indexing: indexing,
		store:    store,
	}
}

// FileSource is the source tag for a file indexed from the drop folder.
func FileSource(path string) string {
	return "file:" + filepath.Base(path)
}

// ScanAndIndexDirectory walks dirPath and indexes every supported file. Each
// file's previous entries are cleared first, so rescans are idempotent.
func (s *WatcherService) ScanAndIndexDirectory(ctx context.Context, dirPath string) {
	log.Printf("INDEXER: Starting directory scan for: %s", dirPath)

	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || DetectFileKind(path) == KindUnsupported {
			return nil
		}
		if err := s.indexFile(ctx, path); err != nil {
			log.Printf("INDEXER ERROR: Failed to index file %s: %v", path, err)
		}
		return nil
	})
	if err != nil {
		log.Printf("INDEXER ERROR: Error walking the path %s: %v", dirPath, err)
	}
	log.Println("INDEXER: Directory scan finished.")
}

// WatchDirectory starts a long-running process to mirror file changes into
// the collection in real time. It blocks until ctx is cancelled.
func (s *WatcherService) WatchDirectory(ctx context.Context, dirPath string) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("WATCHER ERROR: Failed to create file watcher: %v", err)
		return
	}
	defer watcher.Close()

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if DetectFileKind(event.Name) == KindUnsupported {
					continue
				}

				// Editors often write via a temp file and rename, so Create
				// and Write are handled the same way.
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					log.Printf("WATCHER: File modified/created: %s. Re-indexing...", event.Name)
					if err := s.indexFile(ctx, event.Name); err != nil {
						log.Printf("WATCHER ERROR: Failed to index file %s: %v", event.Name, err)
					}
				} else if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					log.Printf("WATCHER: File removed/renamed: %s. Removing from index...", event.Name)
					if err := s.store.DeleteBySource(ctx, FileSource(event.Name)); err != nil {
						log.Printf("WATCHER ERROR: Failed to delete records for %s: %v", event.Name, err)
					}
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("WATCHER ERROR: %v", err)
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Printf("WATCHER: Watching directory: %s", dirPath)
	if err := watcher.Add(dirPath); err != nil {
		log.Printf("WATCHER ERROR: Failed to add path to watcher: %v", err)
	}

	<-ctx.Done()
	log.Println("WATCHER: Context cancelled, shutting down watcher.")
}

// indexFile extracts a file's text and pushes it through the indexing
// pipeline with a source-scoped clear, replacing any previous entries for
// that file. Files whose content is below the minimum length are skipped.
func (s *WatcherService) indexFile(ctx context.Context, path string) error {
	text, err := ExtractTextFromFile(path)
	if err != nil {
		return err
	}

	_, err = s.indexing.IndexText(ctx, models.IndexRequest{
		Text:          text,
		Source:        FileSource(path),
		ClearPrevious: true,
		ClearScope:    models.ClearScopeSource,
	})
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		log.Printf("INDEXER: Skipping %s: %v", path, vErr)
		return nil
	}
	return err
}
