package model

import (
	"time"

	"gorm.io/gorm"
)

// Answer is the latest recorded response for one question of an attempt.
// Revising an answer before submission overwrites Value and bumps Revisions;
// after submission the row is frozen.
type Answer struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	AttemptID    uint           `json:"attempt_id" gorm:"not null;index;uniqueIndex:idx_attempt_question"`
	QuestionID   uint           `json:"question_id" gorm:"not null;index;uniqueIndex:idx_attempt_question"`
	Value        string         `json:"value" gorm:"type:text;not null"`
	SubmittedAt  time.Time      `json:"submitted_at" gorm:"not null"`
	TimeSpentSec float64        `json:"time_spent_sec"` // delta from the previous event on this attempt
	Revisions    int            `json:"revisions"`      // number of overwrites before submission
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
