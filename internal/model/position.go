package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Position struct {
	ID               uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title            string    `gorm:"type:varchar(200)" json:"title"`
	Description      string    `gorm:"type:text" json:"description"`
	SkillsNeeded     string    `gorm:"type:text" json:"skills_needed"` // comma-separated
	Seniority        string    `gorm:"type:varchar(20)" json:"seniority"`
	Location         string    `gorm:"type:varchar(100)" json:"location"`
	EmploymentType   string    `gorm:"type:varchar(20)" json:"employment_type"`
	IsRemote         bool      `json:"is_remote"`
	Responsibilities string    `gorm:"type:text" json:"responsibilities"`
	ClosingDate      *time.Time `json:"closing_date"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (Position) TableName() string {
	return "positions"
}

// Skills splits the comma-separated skill list, dropping empty entries.
func (p *Position) Skills() []string {
	if p.SkillsNeeded == "" {
		return []string{}
	}
	parts := strings.Split(p.SkillsNeeded, ",")
	skills := make([]string, 0, len(parts))
	for _, s := range parts {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}

const (
	ApplicationStatusPending  = "Pending"
	ApplicationStatusReviewed = "Reviewed"
	ApplicationStatusAccepted = "Accepted"
	ApplicationStatusRejected = "Rejected"
)

// Application links one CV to one Position, at most once per pair, and carries
// the match scorer output.
type Application struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PositionID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_position_cv" json:"position_id"`
	CVID          uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_position_cv" json:"cv_id"`
	MatchScore    float64   `json:"match_score"`
	Explanation   string    `gorm:"type:varchar(255)" json:"explanation"`
	MatchedSkills string    `gorm:"type:jsonb;default:'[]'" json:"matched_skills"`
	Status        string    `gorm:"type:varchar(20);default:Pending" json:"status"`
	AppliedAt     time.Time `gorm:"autoCreateTime" json:"applied_at"`
}

func (Application) TableName() string {
	return "applications"
}
