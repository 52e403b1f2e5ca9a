package services

import (
	"context"
	"hash/fnv"
	"math"
	"sort"
	"strings"
	"sync"
)

// hashVector is a deterministic bag-of-words embedding so tests get stable,
// meaningful cosine similarities without a model.
func hashVector(text string) []float32 {
	vec := make([]float32, 32)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?\"'()")
		if word == "" {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(word))
		vec[h.Sum32()%32]++
	}
	return vec
}

func cosine(a, b []float32) float32 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

type fakeEmbedder struct {
	err error
}

func (e *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = hashVector(text)
	}
	return vectors, nil
}

func (e *fakeEmbedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *fakeEmbedder) ModelID() string { return "fake-embed" }

// memoryStore is an in-memory VectorStore with cosine ranking, standing in
// for the remote collection.
type memoryStore struct {
	mu      sync.Mutex
	entries []Entry
}

func (m *memoryStore) Upsert(_ context.Context, entries []Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, entry := range entries {
		replaced := false
		for i := range m.entries {
			if m.entries[i].ID == entry.ID {
				m.entries[i] = entry
				replaced = true
				break
			}
		}
		if !replaced {
			m.entries = append(m.entries, entry)
		}
	}
	return nil
}

func (m *memoryStore) Query(_ context.Context, vector []float32, k int, source string) ([]Retrieved, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var hits []Retrieved
	for _, entry := range m.entries {
		if source != "" && entry.Source != source {
			continue
		}
		hits = append(hits, Retrieved{
			ID:     entry.ID,
			Score:  cosine(vector, entry.Vector),
			Source: entry.Source,
			Text:   entry.Text,
		})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (m *memoryStore) DeleteBySource(_ context.Context, source string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.entries[:0]
	for _, entry := range m.entries {
		if entry.Source != source {
			kept = append(kept, entry)
		}
	}
	m.entries = kept
	return nil
}

func (m *memoryStore) DeleteAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
	return nil
}

func (m *memoryStore) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries), nil
}

// fakeGenerator answers from whatever context made it into the prompt.
type fakeGenerator struct {
	err error
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	if strings.Contains(prompt, "Paris") {
		return "The capital of France is Paris.", nil
	}
	return "I don't know.", nil
}

func (g *fakeGenerator) ModelID() string { return "fake-gen" }
