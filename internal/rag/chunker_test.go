package rag

import (
	"strings"
	"testing"
)

func TestChunkPagesDeterministic(t *testing.T) {
	pages := []string{
		strings.Repeat("golang developer with cloud experience ", 50),
		strings.Repeat("previously worked on data pipelines ", 40),
	}

	first, err := ChunkPages(pages, 200, 40)
	if err != nil {
		t.Fatalf("ChunkPages: %v", err)
	}
	second, err := ChunkPages(pages, 200, 40)
	if err != nil {
		t.Fatalf("ChunkPages: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("chunk %d differs:\n%q\nvs\n%q", i, first[i], second[i])
		}
	}
}

func TestChunkPagesRejectsBadOverlap(t *testing.T) {
	cases := []struct {
		name          string
		size, overlap int
	}{
		{"overlap equals size", 100, 100},
		{"overlap exceeds size", 100, 150},
		{"negative overlap", 100, -1},
		{"zero size", 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ChunkPages([]string{"some text"}, tc.size, tc.overlap); err == nil {
				t.Fatalf("expected error for size=%d overlap=%d", tc.size, tc.overlap)
			}
		})
	}
}

func TestChunkPagesPositionMetadata(t *testing.T) {
	pages := []string{
		strings.Repeat("first page text ", 30),
		strings.Repeat("second page text ", 30),
	}

	chunks, err := ChunkPages(pages, 100, 20)
	if err != nil {
		t.Fatalf("ChunkPages: %v", err)
	}
	if len(chunks) < 4 {
		t.Fatalf("expected multiple chunks per page, got %d", len(chunks))
	}

	sawPage2 := false
	for _, c := range chunks {
		if c.Page != 1 && c.Page != 2 {
			t.Fatalf("unexpected page %d", c.Page)
		}
		if c.Page == 2 {
			sawPage2 = true
		}
		if c.StartOffset < 0 {
			t.Fatalf("negative start offset %d", c.StartOffset)
		}
		page := []rune(pages[c.Page-1])
		got := string(page[c.StartOffset : c.StartOffset+c.RuneLen()])
		if got != c.Text {
			t.Fatalf("offset %d on page %d does not address chunk text", c.StartOffset, c.Page)
		}
	}
	if !sawPage2 {
		t.Fatal("no chunk attributed to page 2")
	}
}

func TestChunkPagesOverlap(t *testing.T) {
	// A single long word-free page forces exact step arithmetic.
	page := strings.Repeat("x", 250)
	chunks, err := ChunkPages([]string{page}, 100, 20)
	if err != nil {
		t.Fatalf("ChunkPages: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		if got := chunks[i].StartOffset - chunks[i-1].StartOffset; got != 80 {
			t.Fatalf("step between chunks %d and %d is %d, want 80", i-1, i, got)
		}
	}
}

func TestChunkPagesCoverEveryRune(t *testing.T) {
	// A word boundary far before the window's end used to shorten a span
	// without moving the next start back, losing the tail of the window.
	// A long unbroken run after an early space is the worst case.
	pages := []string{
		strings.Repeat("a", 249) + " " + strings.Repeat("b", 1200),
		strings.Repeat("skill ", 400) + strings.Repeat("c", 900),
	}

	chunks, err := ChunkPages(pages, DefaultChunkSize, DefaultChunkOverlap)
	if err != nil {
		t.Fatalf("ChunkPages: %v", err)
	}

	for pageIdx, page := range pages {
		covered := make([]bool, len([]rune(page)))
		for _, c := range chunks {
			if c.Page != pageIdx+1 {
				continue
			}
			for i := c.StartOffset; i < c.StartOffset+c.RuneLen(); i++ {
				covered[i] = true
			}
		}
		for i, ok := range covered {
			if !ok {
				t.Fatalf("page %d rune %d appears in no chunk", pageIdx+1, i)
			}
		}
	}
}

func TestChunkPagesAdjacentSpansOverlap(t *testing.T) {
	page := strings.Repeat("a", 249) + " " + strings.Repeat("b", 1200)
	chunks, err := ChunkPages([]string{page}, 1000, 200)
	if err != nil {
		t.Fatalf("ChunkPages: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		prevEnd := chunks[i-1].StartOffset + chunks[i-1].RuneLen()
		if chunks[i].StartOffset > prevEnd-200 {
			t.Fatalf("chunks %d and %d share fewer than 200 runes: prev ends %d, next starts %d",
				i-1, i, prevEnd, chunks[i].StartOffset)
		}
	}
}

func TestChunkPagesSkipsBlankPages(t *testing.T) {
	chunks, err := ChunkPages([]string{"", "   \n\t  ", "real content here"}, 100, 20)
	if err != nil {
		t.Fatalf("ChunkPages: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Page != 3 {
		t.Fatalf("chunk attributed to page %d, want 3", chunks[0].Page)
	}
}
