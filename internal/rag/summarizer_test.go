package rag

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// stubGenerator replays canned JSON responses in order.
type stubGenerator struct {
	responses []string
	err       error
	calls     int
}

func (s *stubGenerator) GenerateJSON(ctx context.Context, systemPrompt, userPrompt string, schema *genai.Schema) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	i := s.calls - 1
	if i >= len(s.responses) {
		i = len(s.responses) - 1
	}
	return s.responses[i], nil
}

func TestSummarizeExtractsProfile(t *testing.T) {
	gen := &stubGenerator{responses: []string{
		`{"name":"Alice Johnson","current_title":"Backend Engineer","years_experience":5,` +
			`"skills":["Python","Django","PostgreSQL"],"education":["M.Sc. Computer Science"],` +
			`"certifications":[],"work_history":["Backend Engineer at Acme"],"emails":["alice@example.com"]}`,
	}}
	s := NewSummarizer(gen, zap.NewNop())

	summary, err := s.Summarize(context.Background(),
		"Alice Johnson. Backend Engineer with 5 years of Python and Django. M.Sc. Computer Science.")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	if summary.Name != "Alice Johnson" {
		t.Fatalf("name = %q", summary.Name)
	}
	if summary.YearsExperience == nil || *summary.YearsExperience != 5 {
		t.Fatalf("years_experience = %v, want 5", summary.YearsExperience)
	}
	wantSkills := map[string]bool{"Python": true, "Django": true}
	for _, skill := range summary.Skills {
		delete(wantSkills, skill)
	}
	if len(wantSkills) != 0 {
		t.Fatalf("skills %v missing from %v", wantSkills, summary.Skills)
	}
	if len(summary.Education) != 1 || summary.Education[0] != "M.Sc. Computer Science" {
		t.Fatalf("education = %v", summary.Education)
	}
}

func TestSummarizeNormalizesNilLists(t *testing.T) {
	gen := &stubGenerator{responses: []string{
		`{"name":"Bob","current_title":"","years_experience":null}`,
	}}
	s := NewSummarizer(gen, zap.NewNop())

	summary, err := s.Summarize(context.Background(), "Bob's very short CV")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if summary.YearsExperience != nil {
		t.Fatalf("years_experience = %v, want nil", *summary.YearsExperience)
	}
	for name, list := range map[string][]string{
		"skills":         summary.Skills,
		"education":      summary.Education,
		"certifications": summary.Certifications,
		"work_history":   summary.WorkHistory,
		"emails":         summary.Emails,
	} {
		if list == nil {
			t.Fatalf("%s is nil after normalization", name)
		}
	}
}

func TestSummarizeRetriesOnceOnBadOutput(t *testing.T) {
	gen := &stubGenerator{responses: []string{
		`{not json`,
		`{"name":"Carol","skills":["Go"]}`,
	}}
	s := NewSummarizer(gen, zap.NewNop())

	summary, err := s.Summarize(context.Background(), "Carol, Go developer")
	if err != nil {
		t.Fatalf("Summarize after retry: %v", err)
	}
	if gen.calls != 2 {
		t.Fatalf("generator called %d times, want 2", gen.calls)
	}
	if summary.Name != "Carol" {
		t.Fatalf("name = %q", summary.Name)
	}
}

func TestSummarizeFailsAfterSecondBadOutput(t *testing.T) {
	gen := &stubGenerator{responses: []string{`broken`, `still broken`}}
	s := NewSummarizer(gen, zap.NewNop())

	_, err := s.Summarize(context.Background(), "some cv")
	var sumErr *SummarizationError
	if !errors.As(err, &sumErr) {
		t.Fatalf("error = %v, want SummarizationError", err)
	}
	if gen.calls != 2 {
		t.Fatalf("generator called %d times, want 2", gen.calls)
	}
}

func TestSummarizeGeneratorErrorIsNotRetried(t *testing.T) {
	gen := &stubGenerator{err: errors.New("model unavailable")}
	s := NewSummarizer(gen, zap.NewNop())

	_, err := s.Summarize(context.Background(), "some cv")
	var sumErr *SummarizationError
	if !errors.As(err, &sumErr) {
		t.Fatalf("error = %v, want SummarizationError", err)
	}
	if gen.calls != 1 {
		t.Fatalf("generator called %d times, want 1", gen.calls)
	}
}

func TestSummarizeRejectsOutOfRangeYears(t *testing.T) {
	gen := &stubGenerator{responses: []string{`{"name":"Dave","years_experience":120}`}}
	s := NewSummarizer(gen, zap.NewNop())

	if _, err := s.Summarize(context.Background(), "Dave's cv"); err == nil {
		t.Fatal("expected validation error for 120 years of experience")
	}
}
