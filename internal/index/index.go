// Package index implements the shared embedding index: a single collection of
// retrievable documents across all CVs, distinguished only by metadata
// filters. Backends share one contract so the retrieval tools never care
// which store is configured.
package index

import (
	"context"
	"fmt"
	"math"
)

// Document types stored in the collection.
const (
	TypeChunk   = "chunk"
	TypeSummary = "summary"
)

// Embedder turns text into a vector. The index is constructed with one fixed
// embedder; mixing embedding spaces inside a collection is not supported.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// Metadata tags every indexed document. CVID and Type drive filtering; the
// rest is carried for display in tool output.
type Metadata struct {
	CVID            string  `json:"cv_id"`
	Type            string  `json:"type"`
	Filename        string  `json:"filename"`
	CandidateName   string  `json:"candidate_name,omitempty"`
	YearsExperience float64 `json:"years_experience,omitempty"`
	Page            int     `json:"page,omitempty"`
	StartOffset     int     `json:"start_offset,omitempty"`
}

// Document is one unit of retrievable text.
type Document struct {
	ID      string
	Content string
	Meta    Metadata
}

// Result is a ranked query hit. Distance is ascending: smaller is more
// similar.
type Result struct {
	Document
	Distance float64
}

// Filter restricts a query by exact metadata match. Zero values mean no
// constraint on that field.
type Filter struct {
	Type string
	CVID string
}

// Store is the embedding index contract.
//
// Add appends documents, embedding each through the fixed embedder; callers
// must not assume partial success on error. DeleteByCV removes every document
// tagged with the id and is idempotent. Query returns up to topK documents
// ranked by ascending embedding distance.
type Store interface {
	Add(ctx context.Context, docs []Document) error
	DeleteByCV(ctx context.Context, cvID string) error
	Query(ctx context.Context, text string, topK int, filter Filter) ([]Result, error)
}

// WriteError wraps a failed index mutation. The whole ingestion attempt is
// safe to retry after one.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("index %s: %v", e.Op, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// SimilarityPercent converts an embedding distance into a display percentage.
// This is an approximation for human consumption, not a calibrated
// probability.
func SimilarityPercent(distance float64) float64 {
	return math.Max(0, (1-distance)*100)
}
