package services

import (
	"context"
	"log"
	"strings"

	"github.com/pagerag/backend/models"
)

// QueryService coordinates the question-answering pipeline:
// Validate -> EmbedQuery -> Retrieve -> AssembleContext -> Generate.
type QueryService interface {
	Query(ctx context.Context, req models.QueryRequest) (*models.QueryResponse, error)
}

type queryServiceImpl struct {
	embedder      EmbeddingService
	store         VectorStore
	generator     GenerationService
	topK          int
	maxContextLen int
}

// NewQueryService creates the query orchestrator. topK bounds retrieval,
// maxContextLen bounds the assembled prompt context in characters.
func NewQueryService(embedder EmbeddingService, store VectorStore, generator GenerationService, topK, maxContextLen int) QueryService {
	return &queryServiceImpl{
		embedder:      embedder,
		store:         store,
		generator:     generator,
		topK:          topK,
		maxContextLen: maxContextLen,
	}
}

func (s *queryServiceImpl) Query(ctx context.Context, req models.QueryRequest) (*models.QueryResponse, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, validationErrorf("query must not be empty")
	}

	vector, err := s.embedder.EmbedOne(ctx, query)
	if err != nil {
		return nil, err
	}

	hits, err := s.store.Query(ctx, vector, s.topK, req.FilterBySource)
	if err != nil {
		return nil, err
	}

	if len(hits) == 0 {
		log.Printf("SERVICE: No relevant chunks for query %q", query)
		return &models.QueryResponse{
			Answer:    noContentAnswer(req.FilterBySource != ""),
			Retrieved: []models.RetrievedChunk{},
		}, nil
	}

	prompt := BuildPrompt(hits, query, s.maxContextLen)
	answer, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	retrieved := make([]models.RetrievedChunk, len(hits))
	for i, hit := range hits {
		retrieved[i] = models.RetrievedChunk{
			ID:    hit.ID,
			Score: hit.Score,
			Metadata: models.ChunkMetadata{
				Source: hit.Source,
				Text:   hit.Text,
			},
		}
	}

	return &models.QueryResponse{
		Answer:    answer,
		Retrieved: retrieved,
	}, nil
}
