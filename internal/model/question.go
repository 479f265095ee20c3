package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type QuestionType string

const (
	QuestionMCQ        QuestionType = "mcq"
	QuestionCoding     QuestionType = "coding"
	QuestionSubjective QuestionType = "subjective"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

var ErrInvalidQuestion = errors.New("invalid question")

// Question is a tagged variant: Type selects which payload shape is stored
// in the Payload JSON column. Payload contents are validated at construction
// time via Validate, never trusted at scoring time.
type Question struct {
	ID         uint            `gorm:"primarykey" json:"id"`
	Type       QuestionType    `json:"type" gorm:"not null;index"`
	Skill      string          `json:"skill" gorm:"not null;index"`
	Difficulty Difficulty      `json:"difficulty" gorm:"not null;index"`
	Text       string          `json:"text" gorm:"type:text;not null"`
	Points     int             `json:"points" gorm:"not null"`
	Payload    json.RawMessage `json:"payload" gorm:"type:jsonb;not null"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	DeletedAt  gorm.DeletedAt  `gorm:"index" json:"-"`
}

// MCQPayload is the payload shape for Type == "mcq".
type MCQPayload struct {
	Options []string `json:"options"`
	Correct int      `json:"correct"` // index into Options
}

// TestCase is one coding test case. Hidden cases count toward the score but
// their input/expected values are never sent to the candidate.
type TestCase struct {
	Input    string `json:"input"`
	Expected string `json:"expected"`
	IsHidden bool   `json:"is_hidden"`
}

// CodingPayload is the payload shape for Type == "coding".
type CodingPayload struct {
	Language  string     `json:"language"`
	Template  string     `json:"template"`
	TestCases []TestCase `json:"test_cases"`
}

// Rubric holds the deterministic scoring criteria for subjective answers.
type Rubric struct {
	Keywords     []string `json:"keywords"`
	MinimumWords int      `json:"minimum_words"`
}

// SubjectivePayload is the payload shape for Type == "subjective".
type SubjectivePayload struct {
	Rubric Rubric `json:"rubric"`
}

func (q *Question) MCQ() (*MCQPayload, error) {
	if q.Type != QuestionMCQ {
		return nil, fmt.Errorf("%w: question %d is %s, not mcq", ErrInvalidQuestion, q.ID, q.Type)
	}
	var p MCQPayload
	if err := json.Unmarshal(q.Payload, &p); err != nil {
		return nil, fmt.Errorf("%w: question %d payload: %v", ErrInvalidQuestion, q.ID, err)
	}
	return &p, nil
}

func (q *Question) Coding() (*CodingPayload, error) {
	if q.Type != QuestionCoding {
		return nil, fmt.Errorf("%w: question %d is %s, not coding", ErrInvalidQuestion, q.ID, q.Type)
	}
	var p CodingPayload
	if err := json.Unmarshal(q.Payload, &p); err != nil {
		return nil, fmt.Errorf("%w: question %d payload: %v", ErrInvalidQuestion, q.ID, err)
	}
	return &p, nil
}

func (q *Question) Subjective() (*SubjectivePayload, error) {
	if q.Type != QuestionSubjective {
		return nil, fmt.Errorf("%w: question %d is %s, not subjective", ErrInvalidQuestion, q.ID, q.Type)
	}
	var p SubjectivePayload
	if err := json.Unmarshal(q.Payload, &p); err != nil {
		return nil, fmt.Errorf("%w: question %d payload: %v", ErrInvalidQuestion, q.ID, err)
	}
	return &p, nil
}

// Validate enforces the question invariants: points > 0, a known type, and a
// well-formed payload for that type (valid correct index, at least one test
// case, a non-empty rubric keyword set is allowed to be empty but present).
func (q *Question) Validate() error {
	if q.Points <= 0 {
		return fmt.Errorf("%w: points must be positive, got %d", ErrInvalidQuestion, q.Points)
	}
	if q.Skill == "" {
		return fmt.Errorf("%w: skill is required", ErrInvalidQuestion)
	}
	switch q.Difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
	default:
		return fmt.Errorf("%w: unknown difficulty %q", ErrInvalidQuestion, q.Difficulty)
	}

	switch q.Type {
	case QuestionMCQ:
		p, err := q.MCQ()
		if err != nil {
			return err
		}
		if len(p.Options) < 2 {
			return fmt.Errorf("%w: mcq needs at least 2 options, got %d", ErrInvalidQuestion, len(p.Options))
		}
		if p.Correct < 0 || p.Correct >= len(p.Options) {
			return fmt.Errorf("%w: mcq correct index %d out of range [0,%d)", ErrInvalidQuestion, p.Correct, len(p.Options))
		}
	case QuestionCoding:
		p, err := q.Coding()
		if err != nil {
			return err
		}
		if p.Language == "" {
			return fmt.Errorf("%w: coding question needs a language", ErrInvalidQuestion)
		}
		if len(p.TestCases) == 0 {
			return fmt.Errorf("%w: coding question needs at least 1 test case", ErrInvalidQuestion)
		}
	case QuestionSubjective:
		p, err := q.Subjective()
		if err != nil {
			return err
		}
		if p.Rubric.MinimumWords < 0 {
			return fmt.Errorf("%w: rubric minimum word count cannot be negative", ErrInvalidQuestion)
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidQuestion, q.Type)
	}
	return nil
}

// SetPayload marshals the given payload struct into the JSON column.
func (q *Question) SetPayload(payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal question payload: %w", err)
	}
	q.Payload = raw
	return nil
}
