package model

import (
	"time"

	"github.com/google/uuid"
)

// Processing lifecycle of an uploaded CV. Status transitions are written only
// by the ingestion orchestrator.
const (
	CVStatusUnprocessed = "unprocessed"
	CVStatusProcessing  = "processing"
	CVStatusProcessed   = "processed"
	CVStatusFailed      = "failed"
)

type CV struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Filename        string     `gorm:"type:varchar(255)" json:"filename"`
	StoredPath      string     `gorm:"type:varchar(512)" json:"-"`
	FileSize        int64      `json:"file_size"`
	ContentHash     string     `gorm:"type:varchar(64);index" json:"content_hash"`
	OwnerID         string     `gorm:"type:varchar(255);index;default:anonymous" json:"owner_id"`
	Status          string     `gorm:"type:varchar(20);default:unprocessed" json:"status"`
	ProcessingError string     `gorm:"type:text" json:"processing_error,omitempty"`
	UploadedAt      time.Time  `gorm:"autoCreateTime" json:"uploaded_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	Summary         *CVSummary `gorm:"foreignKey:CVID;constraint:OnDelete:CASCADE" json:"summary,omitempty"`
}

func (CV) TableName() string {
	return "cvs"
}

// CVSummary is the structured, LLM-derived summary of one CV (1:1). It exists
// only for processed CVs and is replaced, never appended, on re-ingestion.
type CVSummary struct {
	ID              uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CVID            uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"cv_id"`
	CandidateName   string    `gorm:"type:varchar(255)" json:"candidate_name"`
	CurrentTitle    string    `gorm:"type:varchar(255)" json:"current_title"`
	YearsExperience *float64  `json:"years_experience"`
	SummaryJSON     string    `gorm:"type:jsonb" json:"summary_json"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (CVSummary) TableName() string {
	return "cv_summaries"
}
