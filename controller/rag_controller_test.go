package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagerag/backend/models"
	"github.com/pagerag/backend/services"
)

type stubIndexing struct {
	resp *models.IndexResponse
	err  error
}

func (s *stubIndexing) IndexText(context.Context, models.IndexRequest) (*models.IndexResponse, error) {
	return s.resp, s.err
}

type stubQuery struct {
	resp *models.QueryResponse
	err  error
}

func (s *stubQuery) Query(context.Context, models.QueryRequest) (*models.QueryResponse, error) {
	return s.resp, s.err
}

func newTestRouter(indexing services.IndexingService, query services.QueryService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	ctrl := NewRAGController(indexing, query, nil)
	router := gin.New()
	router.POST("/index", ctrl.IndexText)
	router.POST("/query", ctrl.QueryRAG)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestIndexEndpointSuccess(t *testing.T) {
	router := newTestRouter(&stubIndexing{resp: &models.IndexResponse{
		OK:            true,
		IndexedChunks: 3,
		IndexName:     "rag",
	}}, &stubQuery{})

	rec := doJSON(t, router, "/index", models.IndexRequest{Text: "some long enough text here", Source: "doc"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.IndexResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, 3, resp.IndexedChunks)
}

func TestIndexEndpointValidationFailure(t *testing.T) {
	router := newTestRouter(&stubIndexing{err: &services.ValidationError{Reason: "text too short"}}, &stubQuery{})

	rec := doJSON(t, router, "/index", models.IndexRequest{Text: "tiny"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp models.IndexResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.OK)
	assert.Contains(t, resp.Error, "too short")
}

func TestIndexEndpointUpstreamFailure(t *testing.T) {
	router := newTestRouter(&stubIndexing{err: &services.UpstreamError{
		Service: "vector store",
		Err:     errors.New("connection refused"),
	}}, &stubQuery{})

	rec := doJSON(t, router, "/index", models.IndexRequest{Text: "some long enough text here"})
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var resp models.IndexResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.OK)
	assert.NotEmpty(t, resp.Error)
}

func TestQueryEndpointSuccess(t *testing.T) {
	router := newTestRouter(&stubIndexing{}, &stubQuery{resp: &models.QueryResponse{
		Answer: "The capital of France is Paris.",
		Retrieved: []models.RetrievedChunk{
			{ID: "c-0", Score: 0.91, Metadata: models.ChunkMetadata{Source: "test-doc", Text: "Paris is the capital of France."}},
		},
	}})

	rec := doJSON(t, router, "/query", models.QueryRequest{Query: "What is the capital of France?"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.QueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Answer, "Paris")
	require.Len(t, resp.Retrieved, 1)
	assert.Equal(t, "test-doc", resp.Retrieved[0].Metadata.Source)
}

func TestQueryEndpointValidationFailure(t *testing.T) {
	router := newTestRouter(&stubIndexing{}, &stubQuery{err: &services.ValidationError{Reason: "query must not be empty"}})

	rec := doJSON(t, router, "/query", models.QueryRequest{Query: ""})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp models.QueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Answer)
	assert.Empty(t, resp.Retrieved)
}

func TestQueryEndpointUpstreamFailureBecomesAnswer(t *testing.T) {
	router := newTestRouter(&stubIndexing{}, &stubQuery{err: &services.UpstreamError{
		Service: "generation",
		Err:     errors.New("quota exceeded"),
	}})

	rec := doJSON(t, router, "/query", models.QueryRequest{Query: "anything"})
	require.Equal(t, http.StatusOK, rec.Code, "upstream failures must not leak as 5xx on the query path")

	var resp models.QueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Answer, "could not answer")
	assert.Empty(t, resp.Retrieved)
}
