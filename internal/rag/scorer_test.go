package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// capturingGenerator records the prompts it was asked to complete.
type capturingGenerator struct {
	response   string
	userPrompt string
}

func (c *capturingGenerator) GenerateJSON(ctx context.Context, systemPrompt, userPrompt string, schema *genai.Schema) (string, error) {
	c.userPrompt = userPrompt
	return c.response, nil
}

func TestScoreParsesResult(t *testing.T) {
	gen := &stubGenerator{responses: []string{
		`{"score":82.5,"explanation":"Strong Python and Django overlap with the role.","matched_skills":["Python","Django"]}`,
	}}
	scorer := NewScorer(gen, zap.NewNop())

	years := 5.0
	summary := &CVSummary{Name: "Alice", YearsExperience: &years, Skills: []string{"Python", "Django"}}
	position := PositionDetails{Title: "Backend Engineer", SkillsNeeded: []string{"Python", "Django", "AWS"}}

	score, err := scorer.Score(context.Background(), summary, position)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if score.Score != 82.5 {
		t.Fatalf("score = %v", score.Score)
	}
	if len(score.MatchedSkills) != 2 {
		t.Fatalf("matched_skills = %v", score.MatchedSkills)
	}
}

func TestScoreClampsToRange(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want float64
	}{
		{"above ceiling", `{"score":150,"explanation":"x","matched_skills":[]}`, 100},
		{"below floor", `{"score":-20,"explanation":"x","matched_skills":[]}`, 0},
		{"in range", `{"score":55,"explanation":"x","matched_skills":[]}`, 55},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			scorer := NewScorer(&stubGenerator{responses: []string{tc.raw}}, zap.NewNop())
			score, err := scorer.Score(context.Background(), &CVSummary{}, PositionDetails{})
			if err != nil {
				t.Fatalf("Score: %v", err)
			}
			if score.Score != tc.want {
				t.Fatalf("score = %v, want %v", score.Score, tc.want)
			}
		})
	}
}

func TestScoreTruncatesLongExplanation(t *testing.T) {
	long := strings.Repeat("word ", 80)
	gen := &stubGenerator{responses: []string{
		`{"score":50,"explanation":"` + strings.TrimSpace(long) + `","matched_skills":[]}`,
	}}
	scorer := NewScorer(gen, zap.NewNop())

	score, err := scorer.Score(context.Background(), &CVSummary{}, PositionDetails{})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if got := len(strings.Fields(score.Explanation)); got > 50 {
		t.Fatalf("explanation has %d words, want at most 50", got)
	}
}

func TestScoreNormalizesNilMatchedSkills(t *testing.T) {
	gen := &stubGenerator{responses: []string{`{"score":10,"explanation":"weak match"}`}}
	scorer := NewScorer(gen, zap.NewNop())

	score, err := scorer.Score(context.Background(), &CVSummary{}, PositionDetails{})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if score.MatchedSkills == nil {
		t.Fatal("matched_skills is nil")
	}
}

func TestScoreDropsSkillsOutsideBothInputs(t *testing.T) {
	gen := &stubGenerator{responses: []string{
		`{"score":60,"explanation":"ok","matched_skills":["python","Terraform","Rust"]}`,
	}}
	scorer := NewScorer(gen, zap.NewNop())

	summary := &CVSummary{Skills: []string{"Python", "Go"}}
	position := PositionDetails{SkillsNeeded: []string{"Go", "Terraform"}}

	score, err := scorer.Score(context.Background(), summary, position)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	// "Rust" appears in neither input and must be dropped; case-insensitive
	// matches survive with the model's casing.
	if len(score.MatchedSkills) != 2 {
		t.Fatalf("matched_skills = %v, want python and Terraform", score.MatchedSkills)
	}
	for _, s := range score.MatchedSkills {
		if s == "Rust" {
			t.Fatalf("hallucinated skill kept: %v", score.MatchedSkills)
		}
	}
	if score.MatchedSkills[0] != "python" || score.MatchedSkills[1] != "Terraform" {
		t.Fatalf("matched_skills = %v", score.MatchedSkills)
	}
}

func TestScoreMalformedOutput(t *testing.T) {
	scorer := NewScorer(&stubGenerator{responses: []string{`not json at all`}}, zap.NewNop())

	_, err := scorer.Score(context.Background(), &CVSummary{}, PositionDetails{})
	var scoreErr *MatchScoringError
	if !errors.As(err, &scoreErr) {
		t.Fatalf("error = %v, want MatchScoringError", err)
	}
}

func TestScoreGeneratorFailure(t *testing.T) {
	scorer := NewScorer(&stubGenerator{err: errors.New("quota exhausted")}, zap.NewNop())

	_, err := scorer.Score(context.Background(), &CVSummary{}, PositionDetails{})
	var scoreErr *MatchScoringError
	if !errors.As(err, &scoreErr) {
		t.Fatalf("error = %v, want MatchScoringError", err)
	}
}

func TestScorePromptContainsBothInputs(t *testing.T) {
	gen := &capturingGenerator{response: `{"score":70,"explanation":"ok","matched_skills":[]}`}
	scorer := NewScorer(gen, zap.NewNop())

	summary := &CVSummary{Name: "Carol", Skills: []string{"Go"}}
	position := PositionDetails{Title: "Platform Engineer", SkillsNeeded: []string{"Go", "Kubernetes"}}
	if _, err := scorer.Score(context.Background(), summary, position); err != nil {
		t.Fatalf("Score: %v", err)
	}

	if !strings.Contains(gen.userPrompt, "Carol") {
		t.Fatal("summary missing from prompt")
	}
	if !strings.Contains(gen.userPrompt, "Platform Engineer") {
		t.Fatal("position missing from prompt")
	}
}
