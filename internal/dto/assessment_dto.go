package dto

import "time"

type DistributionRequest struct {
	MCQ        int `json:"mcq" binding:"min=0,max=100"`
	Coding     int `json:"coding" binding:"min=0,max=100"`
	Subjective int `json:"subjective" binding:"min=0,max=100"`
}

// CreateAssessmentRequest is the admin request for a new assessment config.
type CreateAssessmentRequest struct {
	Title          string              `json:"title" binding:"required"`
	Description    string              `json:"description,omitempty"`
	Skills         []string            `json:"skills" binding:"required,min=1"`
	Difficulty     string              `json:"difficulty" binding:"required,oneof=easy medium hard"`
	TotalQuestions int                 `json:"total_questions" binding:"required,gt=0"`
	Distribution   DistributionRequest `json:"distribution" binding:"required"`
	DurationSec    int                 `json:"duration_sec" binding:"required,gt=0"`
	PassingScore   float64             `json:"passing_score" binding:"min=0,max=100"`
}

type AssessmentResponse struct {
	ID             uint                `json:"id"`
	Title          string              `json:"title"`
	Description    string              `json:"description,omitempty"`
	Skills         []string            `json:"skills"`
	Difficulty     string              `json:"difficulty"`
	TotalQuestions int                 `json:"total_questions"`
	Distribution   DistributionRequest `json:"distribution"`
	DurationSec    int                 `json:"duration_sec"`
	PassingScore   float64             `json:"passing_score"`
	CreatedAt      time.Time           `json:"created_at"`
}
