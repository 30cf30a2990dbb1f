package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/recruvia/cv-insight/internal/model"
	"github.com/recruvia/cv-insight/internal/rag"
	"go.uber.org/zap"
)

type stubSummaryFinder struct {
	summary *model.CVSummary
}

func (s *stubSummaryFinder) FindSummaryByCV(ctx context.Context, cvID uuid.UUID) (*model.CVSummary, error) {
	if s.summary == nil {
		return nil, errors.New("not found")
	}
	return s.summary, nil
}

type stubPositionStore struct {
	position *model.Position
	existing *model.Application
	created  *model.Application
}

func (s *stubPositionStore) FindByID(ctx context.Context, id uuid.UUID) (*model.Position, error) {
	if s.position == nil {
		return nil, errors.New("not found")
	}
	return s.position, nil
}

func (s *stubPositionStore) FindApplication(ctx context.Context, positionID, cvID uuid.UUID) (*model.Application, error) {
	return s.existing, nil
}

func (s *stubPositionStore) CreateApplication(ctx context.Context, app *model.Application) error {
	s.created = app
	return nil
}

type stubScorer struct {
	score     *rag.MatchScore
	err       error
	positions []rag.PositionDetails
}

func (s *stubScorer) Score(ctx context.Context, summary *rag.CVSummary, position rag.PositionDetails) (*rag.MatchScore, error) {
	s.positions = append(s.positions, position)
	if s.err != nil {
		return nil, s.err
	}
	return s.score, nil
}

func matchFixture(scorer MatchScorer) (*MatchUsecase, *stubPositionStore) {
	summaries := &stubSummaryFinder{summary: &model.CVSummary{
		CVID:          uuid.New(),
		CandidateName: "Alice",
		SummaryJSON:   `{"name":"Alice","skills":["Go","Kubernetes"]}`,
	}}
	positions := &stubPositionStore{position: &model.Position{
		ID:           uuid.New(),
		Title:        "Platform Engineer",
		SkillsNeeded: "Go, Kubernetes, Terraform",
		Seniority:    "senior",
	}}
	return NewMatchUsecase(summaries, positions, scorer, zap.NewNop()), positions
}

func TestApplyRecordsApplication(t *testing.T) {
	scorer := &stubScorer{score: &rag.MatchScore{
		Score:         78,
		Explanation:   "Go and Kubernetes overlap.",
		MatchedSkills: []string{"Go", "Kubernetes"},
	}}
	uc, positions := matchFixture(scorer)

	app, err := uc.Apply(context.Background(), uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if app.MatchScore != 78 {
		t.Fatalf("match score = %v", app.MatchScore)
	}
	if positions.created == nil {
		t.Fatal("application not persisted")
	}

	var skills []string
	if err := json.Unmarshal([]byte(app.MatchedSkills), &skills); err != nil {
		t.Fatalf("matched skills not valid JSON: %v", err)
	}
	if len(skills) != 2 {
		t.Fatalf("matched skills = %v", skills)
	}

	// The scorer must only see the position fields, skills split out.
	pos := scorer.positions[0]
	if pos.Title != "Platform Engineer" || len(pos.SkillsNeeded) != 3 {
		t.Fatalf("scorer saw %+v", pos)
	}
}

func TestApplyRejectsDuplicate(t *testing.T) {
	scorer := &stubScorer{score: &rag.MatchScore{Score: 50}}
	uc, positions := matchFixture(scorer)
	positions.existing = &model.Application{ID: uuid.New()}

	_, err := uc.Apply(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, ErrAlreadyApplied) {
		t.Fatalf("error = %v, want ErrAlreadyApplied", err)
	}
	if len(scorer.positions) != 0 {
		t.Fatal("scorer must not run for a duplicate application")
	}
}

func TestApplyRequiresProcessedCV(t *testing.T) {
	scorer := &stubScorer{score: &rag.MatchScore{Score: 50}}
	uc := NewMatchUsecase(&stubSummaryFinder{}, &stubPositionStore{}, scorer, zap.NewNop())

	_, err := uc.Apply(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, ErrCVNotProcessed) {
		t.Fatalf("error = %v, want ErrCVNotProcessed", err)
	}
}

func TestApplyScoringFailureWritesNothing(t *testing.T) {
	scorer := &stubScorer{err: &rag.MatchScoringError{Err: errors.New("malformed output")}}
	uc, positions := matchFixture(scorer)

	_, err := uc.Apply(context.Background(), uuid.New(), uuid.New())
	var scoreErr *rag.MatchScoringError
	if !errors.As(err, &scoreErr) {
		t.Fatalf("error = %v, want MatchScoringError", err)
	}
	if positions.created != nil {
		t.Fatal("no application may be recorded when scoring fails")
	}
}
