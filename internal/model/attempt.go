package model

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptSubmitted  AttemptStatus = "submitted"
)

// Attempt is one candidate's instance of taking a generated assessment.
// The question set is frozen at start; answers accumulate until submission
// flips the status, after which nothing about the attempt changes.
type Attempt struct {
	ID            uint            `gorm:"primarykey" json:"id"`
	AssessmentID  uint            `json:"assessment_id" gorm:"not null;index"`
	Assessment    Assessment      `json:"assessment,omitempty" gorm:"foreignKey:AssessmentID"`
	CandidateID   string          `json:"candidate_id" gorm:"not null;index"`
	Seed          int64           `json:"-"` // shuffle seed, kept so the presentation order can be reproduced
	QuestionOrder json.RawMessage `json:"question_order" gorm:"type:jsonb;not null"` // ordered question IDs
	Status        AttemptStatus   `json:"status" gorm:"default:'in_progress';index"`
	StartedAt     time.Time       `json:"started_at" gorm:"not null"`
	SubmittedAt   *time.Time      `json:"submitted_at,omitempty"`
	Report        json.RawMessage `json:"report,omitempty" gorm:"type:jsonb"` // built once at finalize
	Answers       []Answer        `json:"answers,omitempty" gorm:"foreignKey:AttemptID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (a *Attempt) QuestionIDs() ([]uint, error) {
	var ids []uint
	if err := json.Unmarshal(a.QuestionOrder, &ids); err != nil {
		return nil, fmt.Errorf("attempt %d question order: %w", a.ID, err)
	}
	return ids, nil
}

func (a *Attempt) SetQuestionIDs(ids []uint) error {
	raw, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("marshal question order: %w", err)
	}
	a.QuestionOrder = raw
	return nil
}
