package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// MatchScoringError means the schema-constrained scoring output was
// malformed. Propagated to the caller; no Application is persisted.
type MatchScoringError struct {
	Err error
}

func (e *MatchScoringError) Error() string {
	return fmt.Sprintf("match score: %v", e.Err)
}

func (e *MatchScoringError) Unwrap() error {
	return e.Err
}

// PositionDetails is the scorer's view of a position. Only these fields and
// the CV summary may influence the score.
type PositionDetails struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	SkillsNeeded     []string `json:"skills_needed"`
	Seniority        string   `json:"seniority"`
	Responsibilities string   `json:"responsibilities"`
}

// Scorer produces a bounded match score for one CV summary against one
// position.
type Scorer struct {
	llm    JSONGenerator
	logger *zap.Logger
}

func NewScorer(llm JSONGenerator, logger *zap.Logger) *Scorer {
	return &Scorer{llm: llm, logger: logger}
}

// Score returns {score in [0,100], explanation ≤50 words, matched skills}.
func (s *Scorer) Score(ctx context.Context, summary *CVSummary, position PositionDetails) (*MatchScore, error) {
	summaryJSON, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return nil, &MatchScoringError{Err: fmt.Errorf("marshal summary: %w", err)}
	}
	positionJSON, err := json.MarshalIndent(position, "", "  ")
	if err != nil {
		return nil, &MatchScoringError{Err: fmt.Errorf("marshal position: %w", err)}
	}

	userPrompt := fmt.Sprintf("CV SUMMARY:\n%s\n\nPOSITION DETAILS:\n%s", summaryJSON, positionJSON)

	raw, err := s.llm.GenerateJSON(ctx, matchScoreSystemPrompt, userPrompt, matchScoreSchema())
	if err != nil {
		return nil, &MatchScoringError{Err: err}
	}

	var score MatchScore
	if err := json.Unmarshal([]byte(raw), &score); err != nil {
		return nil, &MatchScoringError{Err: fmt.Errorf("parse score JSON: %w", err)}
	}

	if score.Score < 0 {
		score.Score = 0
	}
	if score.Score > 100 {
		score.Score = 100
	}
	score.Explanation = truncateWords(score.Explanation, 50)
	score.MatchedSkills = filterMatchedSkills(score.MatchedSkills, summary.Skills, position.SkillsNeeded)

	s.logger.Info("scored candidate",
		zap.Float64("score", score.Score),
		zap.Int("matched_skills", len(score.MatchedSkills)))
	return &score, nil
}

// filterMatchedSkills keeps only skills that actually appear in the CV or
// the position requirements, so a hallucinated skill never reaches the
// Application record. Matching is case-insensitive; the model's casing is
// preserved.
func filterMatchedSkills(matched, cvSkills, neededSkills []string) []string {
	allowed := make(map[string]struct{}, len(cvSkills)+len(neededSkills))
	for _, s := range cvSkills {
		allowed[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	for _, s := range neededSkills {
		allowed[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}

	kept := make([]string, 0, len(matched))
	for _, s := range matched {
		if _, ok := allowed[strings.ToLower(strings.TrimSpace(s))]; ok {
			kept = append(kept, s)
		}
	}
	return kept
}

// truncateWords bounds the explanation so it fits a fixed-width column.
func truncateWords(s string, limit int) string {
	words := strings.Fields(s)
	if len(words) <= limit {
		return strings.TrimSpace(s)
	}
	return strings.Join(words[:limit], " ")
}
