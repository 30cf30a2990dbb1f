package index

import (
	"context"
	"math"
	"sort"
	"sync"
)

// MemoryStore is a brute-force cosine-distance store. It backs tests and
// local development without a database.
type MemoryStore struct {
	embed Embedder

	mu      sync.RWMutex
	docs    []Document
	vectors [][]float32
}

func NewMemoryStore(embed Embedder) *MemoryStore {
	return &MemoryStore{embed: embed}
}

func (s *MemoryStore) Add(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	// Embed everything before touching state so a failure leaves the
	// store unchanged.
	vectors := make([][]float32, len(docs))
	for i, d := range docs {
		v, err := s.embed.GenerateEmbedding(ctx, d.Content)
		if err != nil {
			return &WriteError{Op: "add", Err: err}
		}
		vectors[i] = v
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = append(s.docs, docs...)
	s.vectors = append(s.vectors, vectors...)
	return nil
}

func (s *MemoryStore) DeleteByCV(ctx context.Context, cvID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := s.docs[:0]
	vectors := s.vectors[:0]
	for i, d := range s.docs {
		if d.Meta.CVID != cvID {
			docs = append(docs, d)
			vectors = append(vectors, s.vectors[i])
		}
	}
	s.docs = docs
	s.vectors = vectors
	return nil
}

func (s *MemoryStore) Query(ctx context.Context, text string, topK int, filter Filter) ([]Result, error) {
	if topK <= 0 {
		topK = 5
	}

	qv, err := s.embed.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []Result
	for i, d := range s.docs {
		if filter.Type != "" && d.Meta.Type != filter.Type {
			continue
		}
		if filter.CVID != "" && d.Meta.CVID != filter.CVID {
			continue
		}
		results = append(results, Result{
			Document: d,
			Distance: 1 - cosineSimilarity(qv, s.vectors[i]),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Count returns the number of stored documents matching the filter.
func (s *MemoryStore) Count(filter Filter) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, d := range s.docs {
		if filter.Type != "" && d.Meta.Type != filter.Type {
			continue
		}
		if filter.CVID != "" && d.Meta.CVID != filter.CVID {
			continue
		}
		n++
	}
	return n
}

func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
