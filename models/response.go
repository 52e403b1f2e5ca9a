package models

// IndexResponse reports the outcome of POST /index.
type IndexResponse struct {
	OK              bool   `json:"ok"`
	IndexedChunks   int    `json:"indexedChunks"`
	IndexName       string `json:"indexName,omitempty"`
	ClearedPrevious bool   `json:"clearedPrevious"`
	Error           string `json:"error,omitempty"`
}

// ChunkMetadata is the per-chunk metadata stored alongside each vector and
// echoed back on retrieval.
type ChunkMetadata struct {
	Source string `json:"source"`
	Text   string `json:"text"`
}

// RetrievedChunk is a single similarity hit, scored between 0 and 1.
type RetrievedChunk struct {
	ID       string        `json:"id"`
	Score    float32       `json:"score"`
	Metadata ChunkMetadata `json:"metadata"`
}

// QueryResponse is the payload returned by POST /query. Retrieved is ordered
// by descending score and is empty when nothing relevant was found.
type QueryResponse struct {
	Answer    string           `json:"answer"`
	Retrieved []RetrievedChunk `json:"retrieved"`
}

// HealthProviders reports per-dependency reachability and the configured
// model identifiers.
type HealthProviders struct {
	Embeddings      string `json:"embeddings"`
	VectorStore     string `json:"vector_store"`
	EmbeddingModel  string `json:"embedding_model"`
	GenerationModel string `json:"generation_model"`
}

// HealthResponse is the payload returned by GET /health.
type HealthResponse struct {
	Status    string          `json:"status"`
	Providers HealthProviders `json:"providers"`
}
