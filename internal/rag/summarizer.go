package rag

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// JSONGenerator produces schema-constrained JSON from prompts. Satisfied by
// the Gemini and OpenRouter services.
type JSONGenerator interface {
	GenerateJSON(ctx context.Context, systemPrompt, userPrompt string, schema *genai.Schema) (string, error)
}

// SummarizationError means the model output failed schema validation even
// after a retry. Fatal for the CV; chunks already indexed remain searchable.
type SummarizationError struct {
	Err error
}

func (e *SummarizationError) Error() string {
	return fmt.Sprintf("summarize CV: %v", e.Err)
}

func (e *SummarizationError) Unwrap() error {
	return e.Err
}

// Summarizer turns full CV text into a CVSummary via constrained generation.
type Summarizer struct {
	llm    JSONGenerator
	logger *zap.Logger
}

func NewSummarizer(llm JSONGenerator, logger *zap.Logger) *Summarizer {
	return &Summarizer{llm: llm, logger: logger}
}

// Summarize generates the structured summary. A schema-validation failure is
// retried once with the same input before surfacing a SummarizationError.
func (s *Summarizer) Summarize(ctx context.Context, cvText string) (*CVSummary, error) {
	userPrompt := "CV_TEXT:\n" + cvText

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		raw, err := s.llm.GenerateJSON(ctx, summarySystemPrompt, userPrompt, cvSummarySchema())
		if err != nil {
			return nil, &SummarizationError{Err: err}
		}

		summary, err := parseSummary(raw)
		if err == nil {
			return summary, nil
		}

		lastErr = err
		s.logger.Warn("summary failed schema validation",
			zap.Int("attempt", attempt+1), zap.Error(err))
	}

	return nil, &SummarizationError{Err: lastErr}
}

func parseSummary(raw string) (*CVSummary, error) {
	var summary CVSummary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		return nil, fmt.Errorf("parse summary JSON: %w", err)
	}
	summary.Normalize()
	if err := summary.Validate(); err != nil {
		return nil, err
	}
	return &summary, nil
}
