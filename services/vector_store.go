package services

import (
	"context"
	"encoding/json"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
)

// Entry is one persisted vector record: a chunk id, its embedding, and the
// {source, text} metadata echoed back on retrieval.
type Entry struct {
	ID     string
	Vector []float32
	Source string
	Text   string
}

// Retrieved is a single similarity hit. Higher scores are more similar.
type Retrieved struct {
	ID     string
	Score  float32
	Source string
	Text   string
}

// VectorStore abstracts the remote vector collection. It is the sole owner of
// persisted entries; orchestrators hold no durable state.
type VectorStore interface {
	// Upsert overwrites entries by id.
	Upsert(ctx context.Context, entries []Entry) error
	// Query returns at most k entries ordered by descending score. An empty
	// source means no filter; otherwise only entries whose source tag equals
	// it exactly are eligible.
	Query(ctx context.Context, vector []float32, k int, source string) ([]Retrieved, error)
	// DeleteBySource removes every entry tagged with the given source.
	DeleteBySource(ctx context.Context, source string) error
	// DeleteAll removes every entry in the collection. Destructive and
	// non-reversible.
	DeleteAll(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}

type chromaStore struct {
	collection chromago.Collection
}

// NewChromaStore wraps a Chroma collection as a VectorStore.
func NewChromaStore(collection chromago.Collection) VectorStore {
	return &chromaStore{collection: collection}
}

func (s *chromaStore) Upsert(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	ids := make([]chromago.DocumentID, len(entries))
	texts := make([]string, len(entries))
	embs := make([]embeddings.Embedding, len(entries))
	metas := make([]chromago.DocumentMetadata, len(entries))
	for i, entry := range entries {
		ids[i] = chromago.DocumentID(entry.ID)
		texts[i] = entry.Text
		embs[i] = embeddings.NewEmbeddingFromFloat32(entry.Vector)
		metas[i] = chromago.NewDocumentMetadata(
			chromago.NewStringAttribute("source", entry.Source),
		)
	}

	err := s.collection.Upsert(ctx,
		chromago.WithIDs(ids...),
		chromago.WithTexts(texts...),
		chromago.WithEmbeddings(embs...),
		chromago.WithMetadatas(metas...),
	)
	if err != nil {
		return &UpstreamError{Service: "vector store", Err: err}
	}
	return nil
}

func (s *chromaStore) Query(ctx context.Context, vector []float32, k int, source string) ([]Retrieved, error) {
	queryEmbedding := embeddings.NewEmbeddingFromFloat32(vector)

	var (
		results chromago.QueryResult
		err     error
	)
	if source != "" {
		results, err = s.collection.Query(ctx,
			chromago.WithQueryEmbeddings(queryEmbedding),
			chromago.WithNResults(k),
			chromago.WithWhereQuery(chromago.EqString("source", source)),
		)
	} else {
		results, err = s.collection.Query(ctx,
			chromago.WithQueryEmbeddings(queryEmbedding),
			chromago.WithNResults(k),
		)
	}
	if err != nil {
		return nil, &UpstreamError{Service: "vector store", Err: err}
	}

	idGroups := results.GetIDGroups()
	documentGroups := results.GetDocumentsGroups()
	metadataGroups := results.GetMetadatasGroups()
	distanceGroups := results.GetDistancesGroups()
	if len(idGroups) == 0 {
		return nil, nil
	}

	hits := make([]Retrieved, 0, len(idGroups[0]))
	for i, id := range idGroups[0] {
		hit := Retrieved{ID: string(id)}
		if len(documentGroups) > 0 && i < len(documentGroups[0]) {
			hit.Text = documentGroups[0][i].ContentString()
		}
		if len(metadataGroups) > 0 && i < len(metadataGroups[0]) {
			hit.Source = metadataSource(metadataGroups[0][i])
		}
		// Chroma reports cosine distance in ascending order; flip it into a
		// descending similarity score.
		if len(distanceGroups) > 0 && i < len(distanceGroups[0]) {
			hit.Score = 1 - float32(distanceGroups[0][i])
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

func (s *chromaStore) DeleteBySource(ctx context.Context, source string) error {
	err := s.collection.Delete(ctx,
		chromago.WithWhereDelete(chromago.EqString("source", source)),
	)
	if err != nil {
		return &UpstreamError{Service: "vector store", Err: err}
	}
	return nil
}

func (s *chromaStore) DeleteAll(ctx context.Context) error {
	// Chroma has no delete-everything call, so collect all ids first.
	results, err := s.collection.Get(ctx)
	if err != nil {
		return &UpstreamError{Service: "vector store", Err: err}
	}
	ids := results.GetIDs()
	if len(ids) == 0 {
		return nil
	}
	if err := s.collection.Delete(ctx, chromago.WithIDsDelete(ids...)); err != nil {
		return &UpstreamError{Service: "vector store", Err: err}
	}
	return nil
}

func (s *chromaStore) Count(ctx context.Context) (int, error) {
	count, err := s.collection.Count(ctx)
	if err != nil {
		return 0, &UpstreamError{Service: "vector store", Err: err}
	}
	return int(count), nil
}

// metadataSource pulls the source tag out of a document metadata. The
// DocumentMetadata struct exposes no map accessor, so round-trip it through
// JSON.
func metadataSource(meta chromago.DocumentMetadata) string {
	if meta == nil {
		return ""
	}
	jsonBytes, err := json.Marshal(meta)
	if err != nil {
		return ""
	}
	var metaMap map[string]any
	if err := json.Unmarshal(jsonBytes, &metaMap); err != nil {
		return ""
	}
	source, _ := metaMap["source"].(string)
	return source
}
