package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/recruvia/cv-insight/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CVRepository struct {
	db *gorm.DB
}

func NewCVRepository(db *gorm.DB) *CVRepository {
	return &CVRepository{db}
}

func (r *CVRepository) Create(ctx context.Context, cv *model.CV) error {
	return r.db.WithContext(ctx).Create(cv).Error
}

func (r *CVRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.CV, error) {
	var cv model.CV
	err := r.db.WithContext(ctx).Preload("Summary").First(&cv, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &cv, nil
}

// FindByHash returns the CV with the given content hash, or nil when no
// duplicate exists.
func (r *CVRepository) FindByHash(ctx context.Context, hash string) (*model.CV, error) {
	var cv model.CV
	err := r.db.WithContext(ctx).First(&cv, "content_hash = ?", hash).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cv, nil
}

func (r *CVRepository) List(ctx context.Context, page, pageSize int) ([]model.CV, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.CV{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var cvs []model.CV
	err := r.db.WithContext(ctx).
		Preload("Summary").
		Order("uploaded_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&cvs).Error
	return cvs, total, err
}

// ListWithSummaries returns every CV with its summary preloaded, newest
// upload first. Backs the list_all_cvs retrieval tool.
func (r *CVRepository) ListWithSummaries(ctx context.Context) ([]model.CV, error) {
	var cvs []model.CV
	err := r.db.WithContext(ctx).
		Preload("Summary").
		Order("uploaded_at DESC").
		Find(&cvs).Error
	return cvs, err
}

// UpdateStatus writes the processing status and error field. Only the
// ingestion orchestrator calls this.
func (r *CVRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status, processingError string) error {
	return r.db.WithContext(ctx).Model(&model.CV{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":           status,
			"processing_error": processingError,
		}).Error
}

// UpsertSummary replaces the CV's summary row if one exists; re-ingestion
// must not create duplicates.
func (r *CVRepository) UpsertSummary(ctx context.Context, summary *model.CVSummary) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cv_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"candidate_name", "current_title", "years_experience", "summary_json", "updated_at",
		}),
	}).Create(summary).Error
}

func (r *CVRepository) FindSummaryByCV(ctx context.Context, cvID uuid.UUID) (*model.CVSummary, error) {
	var summary model.CVSummary
	err := r.db.WithContext(ctx).First(&summary, "cv_id = ?", cvID).Error
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// Delete removes the CV row and its summary. Callers must purge the
// embedding index for this id first; index rows must never outlive the CV.
func (r *CVRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cv_id = ?", id).Delete(&model.CVSummary{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.CV{}, "id = ?", id).Error
	})
}
