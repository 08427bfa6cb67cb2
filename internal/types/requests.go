package types

import (
	"fmt"
	"strings"

	"essaylens/internal/errors"
)

const (
	DefaultQuestion  = "자기소개서"
	DefaultMaxLength = 1000
)

// AnalysisRequest is the body of both analysis endpoints
type AnalysisRequest struct {
	Organization string `json:"organization"`
	Position     string `json:"position"`
	Question     string `json:"question"`
	Answer       string `json:"answer"`
	MaxLength    int    `json:"maxLength"`
}

// Normalize trims the free-text fields and fills defaults in place.
func (r *AnalysisRequest) Normalize() {
	r.Organization = strings.TrimSpace(r.Organization)
	r.Position = strings.TrimSpace(r.Position)
	r.Question = strings.TrimSpace(r.Question)
	r.Answer = strings.TrimSpace(r.Answer)
	if r.Question == "" {
		r.Question = DefaultQuestion
	}
	if r.MaxLength == 0 {
		r.MaxLength = DefaultMaxLength
	}
}

// Validate checks a normalized request.
func (r *AnalysisRequest) Validate() error {
	var missing []string
	if r.Organization == "" {
		missing = append(missing, "organization")
	}
	if r.Position == "" {
		missing = append(missing, "position")
	}
	if r.Answer == "" {
		missing = append(missing, "answer")
	}
	if len(missing) > 0 {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("required fields are empty: %s", strings.Join(missing, ", ")), nil)
	}
	if r.MaxLength <= 0 {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("maxLength must be greater than 0, got %d", r.MaxLength), nil)
	}
	return nil
}

// Skill is one extracted skill with its category
type Skill struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

// MatchResult compares extracted skills with requirements
type MatchResult struct {
	Matched []string `json:"matched"`
	Missing []string `json:"missing"`
	Score   float64  `json:"score"`
}

type SkillAnalysisRequest struct {
	Text         string   `json:"text"`
	Requirements []string `json:"requirements,omitempty"`
}

type SkillAnalysisResponse struct {
	Skills      []Skill             `json:"skills"`
	Summary     map[string][]string `json:"summary"`
	MatchResult *MatchResult        `json:"match_result,omitempty"`
}

type ResumeParseRequest struct {
	Text            string   `json:"text"`
	JobRequirements []string `json:"job_requirements,omitempty"`
}

// ResumeSection is one detected block of a resume such as education
type ResumeSection struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type ResumeParseResponse struct {
	Sections     []ResumeSection     `json:"sections"`
	Skills       []Skill             `json:"skills"`
	SkillSummary map[string][]string `json:"skill_summary"`
	MatchResult  *MatchResult        `json:"match_result,omitempty"`
}

// HealthResponse is the backend liveness payload
type HealthResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

// UploadResponse carries the text extracted from an uploaded PDF
type UploadResponse struct {
	Text string `json:"text"`
}

// InterviewQuestionFilter narrows the interview question catalogue.
// Zero values mean "no filter".
type InterviewQuestionFilter struct {
	QuestionType string
	Category     string
	Difficulty   int
	Limit        int
}

// Validate enforces the backend's accepted ranges.
func (f InterviewQuestionFilter) Validate() error {
	if f.Difficulty != 0 && (f.Difficulty < 1 || f.Difficulty > 5) {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("difficulty must be between 1 and 5, got %d", f.Difficulty), nil)
	}
	if f.Limit != 0 && (f.Limit < 1 || f.Limit > 100) {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("limit must be between 1 and 100, got %d", f.Limit), nil)
	}
	return nil
}

// Query renders the non-zero filters as query parameters.
func (f InterviewQuestionFilter) Query() map[string]string {
	q := make(map[string]string)
	if f.QuestionType != "" {
		q["question_type"] = f.QuestionType
	}
	if f.Category != "" {
		q["category"] = f.Category
	}
	if f.Difficulty != 0 {
		q["difficulty"] = fmt.Sprintf("%d", f.Difficulty)
	}
	if f.Limit != 0 {
		q["limit"] = fmt.Sprintf("%d", f.Limit)
	}
	return q
}
