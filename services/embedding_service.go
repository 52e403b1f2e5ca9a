package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/pagerag/backend/models"
)

// RetryPolicy controls backoff for transient embedding failures. It is
// injected so tests can substitute a zero-delay policy.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Jitter      bool
}

// DefaultRetryPolicy retries rate-limit and server errors three times with
// exponential backoff.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts: 3,
	BaseDelay:   2 * time.Second,
	MaxDelay:    32 * time.Second,
	Jitter:      true,
}

// delay returns the backoff before the given zero-based retry attempt.
func (p RetryPolicy) delay(attempt int) time.Duration {
	d := p.BaseDelay << attempt
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	if p.Jitter && d >= 4 {
		d += time.Duration(rand.Int63n(int64(d) / 4))
	}
	return d
}

// EmbeddingService converts texts into fixed-dimension vectors, one per
// input, order-preserving. A call either yields a vector for every input or
// fails entirely.
type EmbeddingService interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedOne(ctx context.Context, text string) ([]float32, error)
	ModelID() string
}

// embedMaxParallel bounds concurrent sub-batch requests within one call.
const embedMaxParallel = 4

type ollamaEmbedder struct {
	httpClient *http.Client
	baseURL    string
	model      string
	batchSize  int
	retry      RetryPolicy
}

// NewOllamaEmbedder creates an EmbeddingService backed by an
// Ollama-compatible /api/embed endpoint.
func NewOllamaEmbedder(client *http.Client, baseURL, model string, batchSize int, retry RetryPolicy) EmbeddingService {
	if batchSize < 1 {
		batchSize = 1
	}
	return &ollamaEmbedder{
		httpClient: client,
		baseURL:    baseURL,
		model:      model,
		batchSize:  batchSize,
		retry:      retry,
	}
}

func (e *ollamaEmbedder) ModelID() string {
	return e.model
}

func (e *ollamaEmbedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// Embed splits texts into sub-batches, embeds them with bounded concurrency,
// and reassembles the vectors in input order.
func (e *ollamaEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, validationErrorf("no texts to embed")
	}

	results := make([][]float32, len(texts))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	sem := make(chan struct{}, embedMaxParallel)

	for start := 0; start < len(texts); start += e.batchSize {
		end := start + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		wg.Add(1)
		go func(start int, batch []string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			vectors, err := e.embedBatchWithRetry(ctx, batch)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			copy(results[start:start+len(vectors)], vectors)
		}(start, texts[start:end])
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

// embedBatchWithRetry retries transient failures per the policy, carrying the
// last underlying error when attempts are exhausted.
func (e *ollamaEmbedder) embedBatchWithRetry(ctx context.Context, batch []string) ([][]float32, error) {
	attempts := e.retry.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(e.retry.delay(attempt - 1)):
			case <-ctx.Done():
				return nil, &UpstreamError{Service: "embedding", Err: ctx.Err()}
			}
		}

		vectors, transient, err := e.embedBatch(ctx, batch)
		if err == nil {
			return vectors, nil
		}
		lastErr = err
		if !transient {
			break
		}
	}
	return nil, &UpstreamError{Service: "embedding", Err: lastErr}
}

// embedBatch performs one /api/embed call. The boolean reports whether the
// failure is worth retrying (network error, rate limit, server error).
func (e *ollamaEmbedder) embedBatch(ctx context.Context, batch []string) ([][]float32, bool, error) {
	reqBody, err := json.Marshal(models.OllamaEmbedRequest{
		Model: e.model,
		Input: batch,
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to marshal embed request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/embed", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, false, fmt.Errorf("failed to create embed request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, true, fmt.Errorf("failed to call embedding api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		transient := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, transient, fmt.Errorf("embedding api returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var embedResp models.OllamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, false, fmt.Errorf("failed to decode embed response: %w", err)
	}
	if len(embedResp.Embeddings) != len(batch) {
		return nil, false, fmt.Errorf("embedding api returned %d vectors for %d inputs", len(embedResp.Embeddings), len(batch))
	}
	return embedResp.Embeddings, false, nil
}
