package util

import (
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// ExtractionError marks a document as unreadable: corrupt file, encrypted
// content, or no recoverable text. Fatal for the CV, not retried.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// ExtractPDFText extracts text from a PDF, preserving page boundaries for
// later page-level citation. Returns the full concatenated text and the
// ordered per-page texts.
func ExtractPDFText(path string) (string, []string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", nil, &ExtractionError{Path: path, Err: fmt.Errorf("open PDF: %w", err)}
	}
	defer doc.Close()

	pages := make([]string, 0, doc.NumPage())
	var lastErr error
	for n := 0; n < doc.NumPage(); n++ {
		text, err := doc.Text(n)
		if err != nil {
			lastErr = fmt.Errorf("page %d: %w", n+1, err)
			pages = append(pages, "")
			continue
		}
		pages = append(pages, strings.TrimSpace(text))
	}

	full := strings.TrimSpace(strings.Join(pages, "\n\n"))
	if full == "" {
		if lastErr != nil {
			return "", nil, &ExtractionError{Path: path, Err: lastErr}
		}
		return "", nil, &ExtractionError{Path: path, Err: fmt.Errorf("no extractable text")}
	}

	return full, pages, nil
}
