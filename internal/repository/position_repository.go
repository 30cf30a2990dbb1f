package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/recruvia/cv-insight/internal/model"
	"gorm.io/gorm"
)

type PositionRepository struct {
	db *gorm.DB
}

func NewPositionRepository(db *gorm.DB) *PositionRepository {
	return &PositionRepository{db}
}

func (r *PositionRepository) Create(ctx context.Context, position *model.Position) error {
	return r.db.WithContext(ctx).Create(position).Error
}

func (r *PositionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Position, error) {
	var position model.Position
	err := r.db.WithContext(ctx).First(&position, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &position, nil
}

func (r *PositionRepository) List(ctx context.Context) ([]model.Position, error) {
	var positions []model.Position
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&positions).Error
	return positions, err
}

func (r *PositionRepository) CreateApplication(ctx context.Context, app *model.Application) error {
	return r.db.WithContext(ctx).Create(app).Error
}

// FindApplication returns the application for a (position, cv) pair, or nil.
func (r *PositionRepository) FindApplication(ctx context.Context, positionID, cvID uuid.UUID) (*model.Application, error) {
	var app model.Application
	err := r.db.WithContext(ctx).
		First(&app, "position_id = ? AND cv_id = ?", positionID, cvID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *PositionRepository) ListApplications(ctx context.Context, positionID uuid.UUID) ([]model.Application, error) {
	var apps []model.Application
	err := r.db.WithContext(ctx).
		Where("position_id = ?", positionID).
		Order("match_score DESC").
		Find(&apps).Error
	return apps, err
}
