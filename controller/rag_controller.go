package controller

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pagerag/backend/models"
	"github.com/pagerag/backend/services"
)

// RAGController handles the HTTP requests for the RAG API. It maps the
// service error taxonomy to HTTP responses so no raw failure leaks past the
// boundary.
type RAGController struct {
	indexing services.IndexingService
	query    services.QueryService
	health   *services.HealthService
}

// NewRAGController is called from main.go to inject the service dependencies.
func NewRAGController(indexing services.IndexingService, query services.QueryService, health *services.HealthService) *RAGController {
	return &RAGController{
		indexing: indexing,
		query:    query,
		health:   health,
	}
}

// IndexText is the Gin handler for POST /index.
func (c *RAGController) IndexText(ctx *gin.Context) {
	var req models.IndexRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, models.IndexResponse{OK: false, Error: "invalid request body: " + err.Error()})
		return
	}

	resp, err := c.indexing.IndexText(ctx.Request.Context(), req)
	if err != nil {
		var vErr *services.ValidationError
		if errors.As(err, &vErr) {
			ctx.JSON(http.StatusBadRequest, models.IndexResponse{OK: false, Error: vErr.Error()})
			return
		}
		var uErr *services.UpstreamError
		if errors.As(err, &uErr) {
			log.Printf("CONTROLLER: Index upstream failure: %v", uErr)
			ctx.JSON(http.StatusBadGateway, models.IndexResponse{OK: false, Error: uErr.Error()})
			return
		}
		log.Printf("CONTROLLER: Index internal failure: %v", err)
		ctx.JSON(http.StatusInternalServerError, models.IndexResponse{OK: false, Error: "failed to index content"})
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// QueryRAG is the Gin handler for POST /query. Upstream failures become an
// error answer with an empty retrieved list rather than a 5xx.
func (c *RAGController) QueryRAG(ctx *gin.Context) {
	var req models.QueryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, models.QueryResponse{
			Answer:    "Invalid request body: " + err.Error(),
			Retrieved: []models.RetrievedChunk{},
		})
		return
	}

	resp, err := c.query.Query(ctx.Request.Context(), req)
	if err != nil {
		var vErr *services.ValidationError
		if errors.As(err, &vErr) {
			ctx.JSON(http.StatusBadRequest, models.QueryResponse{
				Answer:    vErr.Error(),
				Retrieved: []models.RetrievedChunk{},
			})
			return
		}
		log.Printf("CONTROLLER: Query failure: %v", err)
		ctx.JSON(http.StatusOK, models.QueryResponse{
			Answer:    "Sorry, I could not answer that question right now: " + err.Error(),
			Retrieved: []models.RetrievedChunk{},
		})
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// Health is the Gin handler for GET /health.
func (c *RAGController) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.health.Check(ctx.Request.Context()))
}
