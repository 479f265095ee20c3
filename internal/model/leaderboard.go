package model

import (
	"time"

	"gorm.io/gorm"
)

// LeaderboardEntry is one candidate's best standing for an assessment.
// Rank and percentile are recomputed across the assessment whenever a new
// attempt finalizes.
type LeaderboardEntry struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	AssessmentID   uint           `json:"assessment_id" gorm:"not null;index;uniqueIndex:idx_board_candidate"`
	CandidateID    string         `json:"candidate_id" gorm:"not null;index;uniqueIndex:idx_board_candidate"`
	AttemptID      uint           `json:"attempt_id" gorm:"not null"`
	Score          float64        `json:"score"` // overall percentage of the best attempt
	Rank           int            `json:"rank"`
	Percentile     float64        `json:"percentile"`
	TimeEfficiency float64        `json:"time_efficiency"` // questions answered per minute
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}
