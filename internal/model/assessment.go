package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

var ErrInvalidConfig = errors.New("invalid assessment config")

// Distribution is the percentage split of question types. Must sum to 100.
type Distribution struct {
	MCQ        int `json:"mcq"`
	Coding     int `json:"coding"`
	Subjective int `json:"subjective"`
}

// Assessment is the configuration an attempt is generated from. The question
// set itself is drawn per attempt; the config only constrains it.
type Assessment struct {
	ID                     uint            `gorm:"primarykey" json:"id"`
	Title                  string          `json:"title" gorm:"not null;uniqueIndex"`
	Description            string          `json:"description,omitempty"`
	Skills                 json.RawMessage `json:"skills" gorm:"type:jsonb;not null"`
	Difficulty             Difficulty      `json:"difficulty" gorm:"not null"`
	TotalQuestions         int             `json:"total_questions" gorm:"not null"`
	DistributionMCQ        int             `json:"distribution_mcq" gorm:"not null"`
	DistributionCoding     int             `json:"distribution_coding" gorm:"not null"`
	DistributionSubjective int             `json:"distribution_subjective" gorm:"not null"`
	DurationSec            int             `json:"duration_sec" gorm:"not null"`
	PassingScore           float64         `json:"passing_score" gorm:"not null"` // percentage, 0-100
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
	DeletedAt              gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (a *Assessment) Distribution() Distribution {
	return Distribution{
		MCQ:        a.DistributionMCQ,
		Coding:     a.DistributionCoding,
		Subjective: a.DistributionSubjective,
	}
}

func (a *Assessment) SkillList() ([]string, error) {
	var skills []string
	if err := json.Unmarshal(a.Skills, &skills); err != nil {
		return nil, fmt.Errorf("%w: skills column: %v", ErrInvalidConfig, err)
	}
	return skills, nil
}

func (a *Assessment) SetSkills(skills []string) error {
	raw, err := json.Marshal(skills)
	if err != nil {
		return fmt.Errorf("marshal skills: %w", err)
	}
	a.Skills = raw
	return nil
}

// Validate rejects a config before any attempt can be generated from it.
func (a *Assessment) Validate() error {
	if a.TotalQuestions <= 0 {
		return fmt.Errorf("%w: total questions must be positive, got %d", ErrInvalidConfig, a.TotalQuestions)
	}
	if sum := a.DistributionMCQ + a.DistributionCoding + a.DistributionSubjective; sum != 100 {
		return fmt.Errorf("%w: distribution percentages sum to %d, want 100", ErrInvalidConfig, sum)
	}
	if a.DistributionMCQ < 0 || a.DistributionCoding < 0 || a.DistributionSubjective < 0 {
		return fmt.Errorf("%w: distribution percentages cannot be negative", ErrInvalidConfig)
	}
	if a.DurationSec <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %d", ErrInvalidConfig, a.DurationSec)
	}
	if a.PassingScore < 0 || a.PassingScore > 100 {
		return fmt.Errorf("%w: passing score %.1f out of range [0,100]", ErrInvalidConfig, a.PassingScore)
	}
	switch a.Difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
	default:
		return fmt.Errorf("%w: unknown difficulty %q", ErrInvalidConfig, a.Difficulty)
	}
	skills, err := a.SkillList()
	if err != nil {
		return err
	}
	if len(skills) == 0 {
		return fmt.Errorf("%w: at least one skill is required", ErrInvalidConfig)
	}
	return nil
}
