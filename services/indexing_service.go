package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/pagerag/backend/models"
)

// DefaultSource tags chunks indexed without an explicit source.
const DefaultSource = "manual"

// IndexingService coordinates the indexing pipeline:
// Validate -> Chunk -> Embed -> (ClearPrevious?) -> Upsert.
type IndexingService interface {
	IndexText(ctx context.Context, req models.IndexRequest) (*models.IndexResponse, error)
}

type indexingServiceImpl struct {
	chunker   *Chunker
	embedder  EmbeddingService
	store     VectorStore
	indexName string
}

// NewIndexingService creates the indexing orchestrator. indexName is only
// echoed in responses; the store owns the actual collection handle.
func NewIndexingService(chunker *Chunker, embedder EmbeddingService, store VectorStore, indexName string) IndexingService {
	return &indexingServiceImpl{
		chunker:   chunker,
		embedder:  embedder,
		store:     store,
		indexName: indexName,
	}
}

// IndexText implements IndexingService. The clear-then-upsert sequence is not
// transactional: a query arriving between the two observes a transiently
// empty collection. Idempotent re-run is the recovery path.
func (s *indexingServiceImpl) IndexText(ctx context.Context, req models.IndexRequest) (*models.IndexResponse, error) {
	source := strings.TrimSpace(req.Source)
	if source == "" {
		source = DefaultSource
	}

	chunks, err := s.chunker.Chunk(req.Text)
	if err != nil {
		return nil, err
	}
	log.Printf("SERVICE: Split %d characters from %q into %d chunks", len(req.Text), source, len(chunks))

	vectors, err := s.embedder.Embed(ctx, chunks)
	if err != nil {
		return nil, err
	}

	cleared := false
	if req.ClearPrevious {
		switch req.ClearScope {
		case "", models.ClearScopeAll:
			log.Printf("SERVICE: Clearing all previous content from the collection")
			err = s.store.DeleteAll(ctx)
		case models.ClearScopeSource:
			log.Printf("SERVICE: Clearing previous content for source %q", source)
			err = s.store.DeleteBySource(ctx, source)
		default:
			return nil, validationErrorf("unknown clearScope %q", req.ClearScope)
		}
		if err != nil {
			return nil, err
		}
		cleared = true
	}

	// Ids combine a per-call uuid with the chunk order, so racing calls can
	// never collide and each call remains additive.
	callID := uuid.New().String()
	entries := make([]Entry, len(chunks))
	for i, chunk := range chunks {
		entries[i] = Entry{
			ID:     fmt.Sprintf("%s-%d", callID, i),
			Vector: vectors[i],
			Source: source,
			Text:   chunk,
		}
	}

	if err := s.store.Upsert(ctx, entries); err != nil {
		return nil, err
	}
	log.Printf("SERVICE: Indexed %d chunks from %q", len(entries), source)

	return &models.IndexResponse{
		OK:              true,
		IndexedChunks:   len(entries),
		IndexName:       s.indexName,
		ClearedPrevious: cleared,
	}, nil
}
