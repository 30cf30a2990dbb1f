package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/recruvia/cv-insight/internal/model"
	"github.com/recruvia/cv-insight/internal/rag"
	"go.uber.org/zap"
)

var (
	ErrAlreadyApplied = errors.New("an application for this CV and position already exists")
	ErrCVNotProcessed = errors.New("CV has no summary yet; ingest it before applying")
)

// MatchScorer produces the fit score for a summary/position pair.
type MatchScorer interface {
	Score(ctx context.Context, summary *rag.CVSummary, position rag.PositionDetails) (*rag.MatchScore, error)
}

// SummaryFinder loads the structured summary of a processed CV.
type SummaryFinder interface {
	FindSummaryByCV(ctx context.Context, cvID uuid.UUID) (*model.CVSummary, error)
}

// PositionStore is the slice of the position repository the match flow needs.
type PositionStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Position, error)
	FindApplication(ctx context.Context, positionID, cvID uuid.UUID) (*model.Application, error)
	CreateApplication(ctx context.Context, app *model.Application) error
}

// MatchUsecase scores a CV against a position and records the result as an
// application. Each (position, CV) pair is scored at most once.
type MatchUsecase struct {
	summaries SummaryFinder
	positions PositionStore
	scorer    MatchScorer
	logger    *zap.Logger
}

func NewMatchUsecase(summaries SummaryFinder, positions PositionStore, scorer MatchScorer, logger *zap.Logger) *MatchUsecase {
	return &MatchUsecase{
		summaries: summaries,
		positions: positions,
		scorer:    scorer,
		logger:    logger,
	}
}

// Apply scores cvID against positionID and persists the application. No
// application row is written when scoring fails, so a retry starts clean.
func (uc *MatchUsecase) Apply(ctx context.Context, positionID, cvID uuid.UUID) (*model.Application, error) {
	existing, err := uc.positions.FindApplication(ctx, positionID, cvID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyApplied
	}

	record, err := uc.summaries.FindSummaryByCV(ctx, cvID)
	if err != nil || record == nil {
		return nil, ErrCVNotProcessed
	}
	var summary rag.CVSummary
	if err := json.Unmarshal([]byte(record.SummaryJSON), &summary); err != nil {
		return nil, fmt.Errorf("decode stored summary for CV %s: %w", cvID, err)
	}
	summary.Normalize()

	position, err := uc.positions.FindByID(ctx, positionID)
	if err != nil {
		return nil, fmt.Errorf("position %s not found: %w", positionID, err)
	}

	score, err := uc.scorer.Score(ctx, &summary, rag.PositionDetails{
		Title:            position.Title,
		Description:      position.Description,
		SkillsNeeded:     position.Skills(),
		Seniority:        position.Seniority,
		Responsibilities: position.Responsibilities,
	})
	if err != nil {
		uc.logger.Error("match scoring failed",
			zap.String("cv_id", cvID.String()),
			zap.String("position_id", positionID.String()),
			zap.Error(err))
		return nil, err
	}

	matchedSkills, err := json.Marshal(score.MatchedSkills)
	if err != nil {
		return nil, fmt.Errorf("encode matched skills: %w", err)
	}

	app := &model.Application{
		PositionID:    positionID,
		CVID:          cvID,
		MatchScore:    score.Score,
		Explanation:   score.Explanation,
		MatchedSkills: string(matchedSkills),
	}
	if err := uc.positions.CreateApplication(ctx, app); err != nil {
		return nil, err
	}

	uc.logger.Info("application recorded",
		zap.String("cv_id", cvID.String()),
		zap.String("position_id", positionID.String()),
		zap.Float64("score", score.Score))
	return app, nil
}
