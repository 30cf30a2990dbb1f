package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/recruvia/cv-insight/internal/model"
)

type PositionRequest struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	SkillsNeeded     []string `json:"skills_needed"`
	Seniority        string   `json:"seniority"`
	Responsibilities string   `json:"responsibilities"`
}

type ApplicationDTO struct {
	ID            uuid.UUID `json:"id"`
	PositionID    uuid.UUID `json:"position_id"`
	CVID          uuid.UUID `json:"cv_id"`
	MatchScore    float64   `json:"match_score"`
	Explanation   string    `json:"explanation"`
	MatchedSkills string    `json:"matched_skills"`
	Status        string    `json:"status"`
	AppliedAt     time.Time `json:"applied_at"`
}

func NewApplicationDTO(app *model.Application) ApplicationDTO {
	return ApplicationDTO{
		ID:            app.ID,
		PositionID:    app.PositionID,
		CVID:          app.CVID,
		MatchScore:    app.MatchScore,
		Explanation:   app.Explanation,
		MatchedSkills: app.MatchedSkills,
		Status:        app.Status,
		AppliedAt:     app.AppliedAt,
	}
}

func NewApplicationDTOs(apps []model.Application) []ApplicationDTO {
	out := make([]ApplicationDTO, len(apps))
	for i := range apps {
		out[i] = NewApplicationDTO(&apps[i])
	}
	return out
}
