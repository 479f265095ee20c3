package dto

import (
	"time"

	"github.com/lshigami/Caracal/internal/model"
)

// MCQPayloadRequest mirrors model.MCQPayload for admin question creation.
type MCQPayloadRequest struct {
	Options []string `json:"options" binding:"required,min=2"`
	Correct *int     `json:"correct" binding:"required,min=0"`
}

type TestCaseRequest struct {
	Input    string `json:"input"`
	Expected string `json:"expected"`
	IsHidden bool   `json:"is_hidden"`
}

type CodingPayloadRequest struct {
	Language  string            `json:"language" binding:"required"`
	Template  string            `json:"template"`
	TestCases []TestCaseRequest `json:"test_cases" binding:"required,min=1,dive"`
}

type RubricRequest struct {
	Keywords     []string `json:"keywords"`
	MinimumWords int      `json:"minimum_words" binding:"min=0"`
}

type SubjectivePayloadRequest struct {
	Rubric RubricRequest `json:"rubric"`
}

// CreateQuestionRequest is the admin request for adding a bank question.
// Exactly one payload matching Type must be set.
type CreateQuestionRequest struct {
	Type       string                    `json:"type" binding:"required,oneof=mcq coding subjective"`
	Skill      string                    `json:"skill" binding:"required"`
	Difficulty string                    `json:"difficulty" binding:"required,oneof=easy medium hard"`
	Text       string                    `json:"text" binding:"required"`
	Points     int                       `json:"points" binding:"required,gt=0"`
	MCQ        *MCQPayloadRequest        `json:"mcq,omitempty"`
	Coding     *CodingPayloadRequest     `json:"coding,omitempty"`
	Subjective *SubjectivePayloadRequest `json:"subjective,omitempty"`
}

// QuestionResponse is the admin view: full payload included.
type QuestionResponse struct {
	ID         uint      `json:"id"`
	Type       string    `json:"type"`
	Skill      string    `json:"skill"`
	Difficulty string    `json:"difficulty"`
	Text       string    `json:"text"`
	Points     int       `json:"points"`
	Payload    any       `json:"payload"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CandidateTestCase exposes only the visible test case IO.
type CandidateTestCase struct {
	Input    string `json:"input"`
	Expected string `json:"expected"`
}

// CandidateQuestion is the redacted view sent to a candidate during an
// attempt: no correct index, no hidden test case IO, no rubric keywords.
type CandidateQuestion struct {
	ID               uint                `json:"id"`
	Type             string              `json:"type"`
	Skill            string              `json:"skill"`
	Difficulty       string              `json:"difficulty"`
	Text             string              `json:"text"`
	Points           int                 `json:"points"`
	Options          []string            `json:"options,omitempty"`
	Language         string              `json:"language,omitempty"`
	Template         string              `json:"template,omitempty"`
	VisibleTestCases []CandidateTestCase `json:"visible_test_cases,omitempty"`
	HiddenTestCases  int                 `json:"hidden_test_cases,omitempty"`
	MinimumWords     int                 `json:"minimum_words,omitempty"`
}

// NewCandidateQuestion redacts a bank question for candidate presentation.
func NewCandidateQuestion(q *model.Question) (CandidateQuestion, error) {
	out := CandidateQuestion{
		ID:         q.ID,
		Type:       string(q.Type),
		Skill:      q.Skill,
		Difficulty: string(q.Difficulty),
		Text:       q.Text,
		Points:     q.Points,
	}
	switch q.Type {
	case model.QuestionMCQ:
		p, err := q.MCQ()
		if err != nil {
			return out, err
		}
		out.Options = p.Options
	case model.QuestionCoding:
		p, err := q.Coding()
		if err != nil {
			return out, err
		}
		out.Language = p.Language
		out.Template = p.Template
		for _, tc := range p.TestCases {
			if tc.IsHidden {
				out.HiddenTestCases++
				continue
			}
			out.VisibleTestCases = append(out.VisibleTestCases, CandidateTestCase{Input: tc.Input, Expected: tc.Expected})
		}
	case model.QuestionSubjective:
		p, err := q.Subjective()
		if err != nil {
			return out, err
		}
		out.MinimumWords = p.Rubric.MinimumWords
	}
	return out, nil
}
