package services

import (
	"context"
	"time"

	"github.com/pagerag/backend/models"
)

const healthProbeTimeout = 5 * time.Second

// HealthService probes the remote dependencies: a tiny embedding call for the
// model endpoint and a count for the vector store.
type HealthService struct {
	embedder        EmbeddingService
	store           VectorStore
	generationModel string
}

func NewHealthService(embedder EmbeddingService, store VectorStore, generationModel string) *HealthService {
	return &HealthService{
		embedder:        embedder,
		store:           store,
		generationModel: generationModel,
	}
}

// Check never fails; unreachable dependencies are reported as disconnected
// and degrade the overall status.
func (h *HealthService) Check(ctx context.Context) *models.HealthResponse {
	probeCtx, cancel := context.WithTimeout(ctx, healthProbeTimeout)
	defer cancel()

	embeddingsStatus := "connected"
	if _, err := h.embedder.EmbedOne(probeCtx, "ping"); err != nil {
		embeddingsStatus = "disconnected"
	}

	storeStatus := "connected"
	if _, err := h.store.Count(probeCtx); err != nil {
		storeStatus = "disconnected"
	}

	status := "ok"
	if embeddingsStatus != "connected" || storeStatus != "connected" {
		status = "degraded"
	}

	return &models.HealthResponse{
		Status: status,
		Providers: models.HealthProviders{
			Embeddings:      embeddingsStatus,
			VectorStore:     storeStatus,
			EmbeddingModel:  h.embedder.ModelID(),
			GenerationModel: h.generationModel,
		},
	}
}
