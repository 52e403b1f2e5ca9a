package services

import (
	"os"
	"strconv"
)

// Config holds every tunable the service reads at startup. Model identifiers
// live here rather than at call sites because they gate vector dimensionality
// compatibility with the collection.
type Config struct {
	Port            string
	ChromaURL       string
	CollectionName  string
	OllamaBaseURL   string
	EmbeddingModel  string
	GeminiAPIKey    string
	GenerationModel string

	// WatchDir, when non-empty, enables the drop-folder indexer.
	WatchDir string

	MaxChunkLen    int
	MinTextLen     int
	TopK           int
	MaxContextLen  int
	EmbedBatchSize int
}

// LoadConfig reads configuration from the environment. A missing credential
// or collection name is a ConfigurationError and should abort startup.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:            envOr("PORT", "3000"),
		ChromaURL:       envOr("CHROMA_URL", "http://localhost:8000"),
		CollectionName:  envOr("CHROMA_COLLECTION", "rag"),
		OllamaBaseURL:   envOr("OLLAMA_BASE_URL", "http://localhost:11434"),
		EmbeddingModel:  envOr("EMBEDDING_MODEL", "nomic-embed-text:v1.5"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		GenerationModel: envOr("GENERATION_MODEL", "gemini-2.5-flash"),
		WatchDir:        os.Getenv("WATCH_DIR"),
		MaxChunkLen:     envIntOr("MAX_CHUNK_LEN", 2000),
		MinTextLen:      envIntOr("MIN_TEXT_LEN", 20),
		TopK:            envIntOr("TOP_K", 4),
		MaxContextLen:   envIntOr("MAX_CONTEXT_LEN", 8000),
		EmbedBatchSize:  envIntOr("EMBED_BATCH_SIZE", 16),
	}

	if cfg.GeminiAPIKey == "" {
		return nil, &ConfigurationError{Reason: "GEMINI_API_KEY is not set"}
	}
	if cfg.CollectionName == "" {
		return nil, &ConfigurationError{Reason: "CHROMA_COLLECTION must not be empty"}
	}
	if cfg.MaxChunkLen <= cfg.MinTextLen {
		return nil, &ConfigurationError{Reason: "MAX_CHUNK_LEN must be greater than MIN_TEXT_LEN"}
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
