package rag

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultChunkSize is the target span length in characters.
	DefaultChunkSize = 1000
	// DefaultChunkOverlap is the character overlap between adjacent spans.
	DefaultChunkOverlap = 200
)

// Chunk is one contiguous span of CV text with stable position metadata.
// Page is 1-based; StartOffset is the rune offset within that page.
type Chunk struct {
	Text        string
	Page        int
	StartOffset int
}

// ChunkPages splits ordered page texts into overlapping spans. Splitting is
// deterministic: identical input and parameters always produce byte-identical
// spans, which re-ingestion relies on.
func ChunkPages(pages []string, size, overlap int) ([]Chunk, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("overlap %d must be in [0, %d)", overlap, size)
	}

	var chunks []Chunk
	for pageIdx, page := range pages {
		chunks = append(chunks, chunkPage(page, pageIdx+1, size, overlap)...)
	}
	return chunks, nil
}

func chunkPage(page string, pageNum, size, overlap int) []Chunk {
	if strings.TrimSpace(page) == "" {
		return nil
	}

	runes := []rune(page)

	var chunks []Chunk
	for start := 0; start < len(runes); {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		// Prefer to end on a whitespace boundary so words stay intact,
		// but never shrink below the overlap window.
		if end < len(runes) {
			if cut := lastSpace(runes[start:end]); cut > overlap {
				end = start + cut
			}
		}

		text := string(runes[start:end])
		if strings.TrimSpace(text) != "" {
			chunks = append(chunks, Chunk{
				Text:        text,
				Page:        pageNum,
				StartOffset: start,
			})
		}

		if end == len(runes) {
			break
		}
		// Advance relative to the actual end so a shortened span never
		// opens a gap: adjacent spans always share exactly overlap runes.
		start = end - overlap
	}
	return chunks
}

// lastSpace returns the index just past the last whitespace rune, or -1.
func lastSpace(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		switch runes[i] {
		case ' ', '\n', '\t':
			return i + 1
		}
	}
	return -1
}

// RuneLen reports the rune count of a span, which position math is based on.
func (c Chunk) RuneLen() int {
	return utf8.RuneCountInString(c.Text)
}
