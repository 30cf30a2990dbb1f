package rag

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/recruvia/cv-insight/internal/index"
	"github.com/recruvia/cv-insight/internal/model"
	"go.uber.org/zap"
)

// keywordEmbedder maps known keywords onto orthogonal axes so similarity is
// predictable without a model.
type keywordEmbedder struct{}

func (keywordEmbedder) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	v := make([]float32, 3)
	lower := strings.ToLower(text)
	if strings.Contains(lower, "python") {
		v[0] = 1
	}
	if strings.Contains(lower, "java") {
		v[1] = 1
	}
	if strings.Contains(lower, "kubernetes") {
		v[2] = 1
	}
	if v[0] == 0 && v[1] == 0 && v[2] == 0 {
		v[2] = 0.1
	}
	return v, nil
}

type stubLister struct {
	cvs []model.CV
}

func (s *stubLister) ListWithSummaries(ctx context.Context) ([]model.CV, error) {
	return s.cvs, nil
}

func seedToolset(t *testing.T) *Toolset {
	t.Helper()
	store := index.NewMemoryStore(keywordEmbedder{})
	docs := []index.Document{
		{ID: "1", Content: "Alice profile: python backend", Meta: index.Metadata{
			CVID: "cv-alice", Type: index.TypeSummary, Filename: "alice.pdf", CandidateName: "Alice"}},
		{ID: "2", Content: "Bob profile: java services", Meta: index.Metadata{
			CVID: "cv-bob", Type: index.TypeSummary, Filename: "bob.pdf", CandidateName: "Bob"}},
		{ID: "3", Content: "built python data pipelines", Meta: index.Metadata{
			CVID: "cv-alice", Type: index.TypeChunk, Filename: "alice.pdf", Page: 1}},
		{ID: "4", Content: "deployed java apps on kubernetes", Meta: index.Metadata{
			CVID: "cv-bob", Type: index.TypeChunk, Filename: "bob.pdf", Page: 2}},
	}
	if err := store.Add(context.Background(), docs); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return NewToolset(store, &stubLister{}, zap.NewNop())
}

func TestSearchSummariesReturnsOnlySummaries(t *testing.T) {
	tools := seedToolset(t)

	out, err := tools.SearchSummaries(context.Background(), "python developer", 10)
	if err != nil {
		t.Fatalf("SearchSummaries: %v", err)
	}
	if !strings.Contains(out, "candidate(s)") {
		t.Fatalf("missing header in output:\n%s", out)
	}
	if !strings.Contains(out, "Name: Alice") {
		t.Fatalf("Alice's summary not in output:\n%s", out)
	}
	if strings.Contains(out, "data pipelines") {
		t.Fatalf("chunk content leaked into summary search:\n%s", out)
	}
}

func TestSearchSummariesRanksBestMatchFirst(t *testing.T) {
	tools := seedToolset(t)

	out, err := tools.SearchSummaries(context.Background(), "java", 10)
	if err != nil {
		t.Fatalf("SearchSummaries: %v", err)
	}
	bob := strings.Index(out, "Name: Bob")
	alice := strings.Index(out, "Name: Alice")
	if bob == -1 {
		t.Fatalf("Bob missing from output:\n%s", out)
	}
	if alice != -1 && bob > alice {
		t.Fatalf("Bob should rank above Alice for a java query:\n%s", out)
	}
}

func TestSearchDetailsScopedToCV(t *testing.T) {
	tools := seedToolset(t)

	out, err := tools.SearchDetails(context.Background(), "kubernetes", "cv-bob", 5)
	if err != nil {
		t.Fatalf("SearchDetails: %v", err)
	}
	if !strings.Contains(out, "cv-bob") {
		t.Fatalf("cv-bob missing from scoped output:\n%s", out)
	}
	if strings.Contains(out, "cv-alice") {
		t.Fatalf("scoped search leaked another CV:\n%s", out)
	}
	if !strings.Contains(out, "Page 2") {
		t.Fatalf("page metadata missing:\n%s", out)
	}
}

func TestSearchDetailsGroupsByCV(t *testing.T) {
	tools := seedToolset(t)

	out, err := tools.SearchDetails(context.Background(), "python java kubernetes", "", 10)
	if err != nil {
		t.Fatalf("SearchDetails: %v", err)
	}
	if strings.Count(out, "CV ID: cv-alice") != 1 {
		t.Fatalf("cv-alice should appear as exactly one group:\n%s", out)
	}
	if strings.Count(out, "CV ID: cv-bob") != 1 {
		t.Fatalf("cv-bob should appear as exactly one group:\n%s", out)
	}
}

func TestSearchDetailsNoResults(t *testing.T) {
	store := index.NewMemoryStore(keywordEmbedder{})
	tools := NewToolset(store, &stubLister{}, zap.NewNop())

	out, err := tools.SearchDetails(context.Background(), "anything", "", 5)
	if err != nil {
		t.Fatalf("SearchDetails: %v", err)
	}
	if !strings.Contains(out, "No detailed information found") {
		t.Fatalf("unexpected empty-result message:\n%s", out)
	}
}

func TestListAllRendersSummariesAndPlaceholders(t *testing.T) {
	years := 7.0
	processed := model.CV{
		ID:         uuid.New(),
		Filename:   "alice.pdf",
		Status:     model.CVStatusProcessed,
		UploadedAt: time.Now(),
		Summary: &model.CVSummary{
			CandidateName:   "Alice",
			YearsExperience: &years,
			SummaryJSON: `{"name":"Alice","current_title":"Backend Engineer","years_experience":7,` +
				`"skills":["Python"],"education":[],"certifications":[],"work_history":[],"emails":[]}`,
		},
	}
	pending := model.CV{
		ID:         uuid.New(),
		Filename:   "bob.pdf",
		Status:     model.CVStatusProcessing,
		UploadedAt: time.Now(),
	}

	store := index.NewMemoryStore(keywordEmbedder{})
	tools := NewToolset(store, &stubLister{cvs: []model.CV{processed, pending}}, zap.NewNop())

	out, err := tools.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if !strings.Contains(out, "Total CVs in system: 2") {
		t.Fatalf("missing total count:\n%s", out)
	}
	if !strings.Contains(out, "Candidate Name: Alice") {
		t.Fatalf("processed CV summary not rendered:\n%s", out)
	}
	if !strings.Contains(out, "Status: Processing or no summary available") {
		t.Fatalf("placeholder missing for unprocessed CV:\n%s", out)
	}
}

func TestDispatchValidatesArguments(t *testing.T) {
	tools := seedToolset(t)
	ctx := context.Background()

	if _, err := tools.dispatch(ctx, "delete_all_cvs", nil); err == nil {
		t.Fatal("unknown tool must be rejected")
	}
	if _, err := tools.dispatch(ctx, toolSearchSummaries, map[string]any{}); err == nil {
		t.Fatal("missing query must be rejected")
	}
	if _, err := tools.dispatch(ctx, toolSearchSummaries, map[string]any{"query": 42}); err == nil {
		t.Fatal("non-string query must be rejected")
	}
	if _, err := tools.dispatch(ctx, toolSearchDetails, map[string]any{
		"query": "python", "top_k": float64(3),
	}); err != nil {
		t.Fatalf("valid dispatch failed: %v", err)
	}
	if _, err := tools.dispatch(ctx, toolListAll, nil); err != nil {
		t.Fatalf("list dispatch failed: %v", err)
	}
}
