package dto

import (
	"time"

	"github.com/lshigami/Caracal/internal/model"
)

// StartAttemptRequest begins a timed attempt for a candidate.
type StartAttemptRequest struct {
	CandidateID string `json:"candidate_id" binding:"required"`
}

type StartAttemptResponse struct {
	AttemptID   uint                `json:"attempt_id"`
	StartedAt   time.Time           `json:"started_at"`
	DurationSec int                 `json:"duration_sec"`
	Questions   []CandidateQuestion `json:"questions"`
}

// RecordAnswerRequest records (or revises) one answer. For mcq questions the
// value is the selected option index as a string.
type RecordAnswerRequest struct {
	QuestionID uint   `json:"question_id" binding:"required"`
	Value      string `json:"value"`
}

type AttemptSummary struct {
	ID           uint       `json:"id"`
	AssessmentID uint       `json:"assessment_id"`
	CandidateID  string     `json:"candidate_id"`
	Status       string     `json:"status"`
	StartedAt    time.Time  `json:"started_at"`
	SubmittedAt  *time.Time `json:"submitted_at,omitempty"`
}

// ReportResponse is the candidate-facing report for a submitted attempt.
type ReportResponse struct {
	AttemptID uint         `json:"attempt_id"`
	Report    model.Report `json:"report"`
}

type LeaderboardEntryResponse struct {
	CandidateID    string  `json:"candidate_id"`
	Score          float64 `json:"score"`
	Rank           int     `json:"rank"`
	Percentile     float64 `json:"percentile"`
	TimeEfficiency float64 `json:"time_efficiency"`
}

type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}
