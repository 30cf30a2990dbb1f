// Package rag holds the retrieval-and-reasoning core: chunking, structured
// summarization, retrieval tools, the conversational agent and the match
// scorer. It knows nothing about HTTP or task dispatch.
package rag

import (
	"fmt"

	"google.golang.org/genai"
)

// CVSummary is the fixed-schema structured summary extracted from one CV.
// YearsExperience stays nil when the CV does not state it; the system never
// fabricates a number. List fields are never nil.
type CVSummary struct {
	Name            string   `json:"name"`
	CurrentTitle    string   `json:"current_title"`
	YearsExperience *float64 `json:"years_experience"`
	Skills          []string `json:"skills"`
	Education       []string `json:"education"`
	Certifications  []string `json:"certifications"`
	WorkHistory     []string `json:"work_history"`
	Emails          []string `json:"emails"`
}

// Normalize replaces nil lists with empty ones to simplify downstream joins.
func (s *CVSummary) Normalize() {
	if s.Skills == nil {
		s.Skills = []string{}
	}
	if s.Education == nil {
		s.Education = []string{}
	}
	if s.Certifications == nil {
		s.Certifications = []string{}
	}
	if s.WorkHistory == nil {
		s.WorkHistory = []string{}
	}
	if s.Emails == nil {
		s.Emails = []string{}
	}
}

// Validate enforces the schema constraints the model is asked to follow.
func (s *CVSummary) Validate() error {
	if s.YearsExperience != nil && (*s.YearsExperience < 0 || *s.YearsExperience > 80) {
		return fmt.Errorf("years_experience %v out of range", *s.YearsExperience)
	}
	return nil
}

// MatchScore is the schema-constrained match-scoring output.
type MatchScore struct {
	Score         float64  `json:"score"`
	Explanation   string   `json:"explanation"`
	MatchedSkills []string `json:"matched_skills"`
}

func listOfStrings(description string) *genai.Schema {
	return &genai.Schema{
		Type:        genai.TypeArray,
		Items:       &genai.Schema{Type: genai.TypeString},
		Description: description,
	}
}

// cvSummarySchema constrains the summarizer's output shape.
func cvSummarySchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"name":             {Type: genai.TypeString, Nullable: genai.Ptr(true), Description: "Candidate name if available"},
			"current_title":    {Type: genai.TypeString, Nullable: genai.Ptr(true), Description: "Current job title"},
			"years_experience": {Type: genai.TypeNumber, Nullable: genai.Ptr(true), Description: "Total years of experience"},
			"skills":           listOfStrings("Candidate's skills, short strings"),
			"education":        listOfStrings("Education entries"),
			"certifications":   listOfStrings("Certifications"),
			"work_history":     listOfStrings("Work history entries"),
			"emails":           listOfStrings("Email addresses found in the CV"),
		},
	}
}

// matchScoreSchema constrains the scorer's output shape.
func matchScoreSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"score":          {Type: genai.TypeNumber, Description: "Match score from 0 to 100"},
			"explanation":    {Type: genai.TypeString, Description: "Explanation in 50 words or fewer"},
			"matched_skills": listOfStrings("Skills present in both the CV and the position requirements"),
		},
		Required: []string{"score", "explanation", "matched_skills"},
	}
}
