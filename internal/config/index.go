package config

import (
	"os"
	"sync"
)

// IndexConfig selects the Embedding Index backend. All documents live in a
// single collection; per-CV separation is done via metadata filters only.
type IndexConfig struct {
	Backend string // "pgvector" (default), "qdrant" or "memory"
	// Collection names the qdrant collection. The pgvector backend keeps
	// its collection in the fixed cv_documents table instead.
	Collection string
	QdrantAddr string
}

var (
	indexConfig *IndexConfig
	indexOnce   sync.Once
)

func LoadIndexConfig() *IndexConfig {
	indexOnce.Do(func() {
		backend := os.Getenv("INDEX_BACKEND")
		if backend == "" {
			backend = "pgvector"
		}
		collection := os.Getenv("INDEX_COLLECTION")
		if collection == "" {
			collection = "cv_embeddings"
		}
		qdrantAddr := os.Getenv("QDRANT_ADDR")
		if qdrantAddr == "" {
			qdrantAddr = "localhost:6334"
		}
		indexConfig = &IndexConfig{
			Backend:    backend,
			Collection: collection,
			QdrantAddr: qdrantAddr,
		}
	})
	return indexConfig
}
