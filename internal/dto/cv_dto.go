package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/recruvia/cv-insight/internal/model"
)

type CVDTO struct {
	ID              uuid.UUID `json:"id"`
	Filename        string    `json:"filename"`
	Status          string    `json:"status"` // unprocessed | processing | processed | failed
	ProcessingError string    `json:"processing_error,omitempty"`
	CandidateName   string    `json:"candidate_name,omitempty"`
	CurrentTitle    string    `json:"current_title,omitempty"`
	YearsExperience *float64  `json:"years_experience,omitempty"`
	UploadedAt      time.Time `json:"uploaded_at"`
}

func NewCVDTO(cv *model.CV) CVDTO {
	out := CVDTO{
		ID:              cv.ID,
		Filename:        cv.Filename,
		Status:          cv.Status,
		ProcessingError: cv.ProcessingError,
		UploadedAt:      cv.UploadedAt,
	}
	if cv.Summary != nil {
		out.CandidateName = cv.Summary.CandidateName
		out.CurrentTitle = cv.Summary.CurrentTitle
		out.YearsExperience = cv.Summary.YearsExperience
	}
	return out
}

func NewCVDTOs(cvs []model.CV) []CVDTO {
	out := make([]CVDTO, len(cvs))
	for i := range cvs {
		out[i] = NewCVDTO(&cvs[i])
	}
	return out
}
