package service

import (
	"testing"

	"github.com/lshigami/Caracal/internal/dto"
	"github.com/lshigami/Caracal/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestCreateQuestionPerType(t *testing.T) {
	svc := NewBankService(newFakeQuestionRepo(), newFakeAssessmentRepo())

	tests := []struct {
		name string
		req  dto.CreateQuestionRequest
	}{
		{
			name: "mcq",
			req: dto.CreateQuestionRequest{
				Type: "mcq", Skill: "js", Difficulty: "easy", Text: "pick one", Points: 2,
				MCQ: &dto.MCQPayloadRequest{Options: []string{"a", "b", "c"}, Correct: intPtr(1)},
			},
		},
		{
			name: "coding",
			req: dto.CreateQuestionRequest{
				Type: "coding", Skill: "go", Difficulty: "medium", Text: "implement it", Points: 9,
				Coding: &dto.CodingPayloadRequest{
					Language:  "go",
					Template:  "package main",
					TestCases: []dto.TestCaseRequest{{Input: "1", Expected: "2"}, {Input: "3", Expected: "4", IsHidden: true}},
				},
			},
		},
		{
			name: "subjective",
			req: dto.CreateQuestionRequest{
				Type: "subjective", Skill: "design", Difficulty: "hard", Text: "explain", Points: 10,
				Subjective: &dto.SubjectivePayloadRequest{Rubric: dto.RubricRequest{Keywords: []string{"schema"}, MinimumWords: 50}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.CreateQuestion(tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.req.Type, resp.Type)
			assert.Equal(t, tt.req.Points, resp.Points)
			assert.NotNil(t, resp.Payload)
		})
	}

	listed, err := svc.ListQuestions()
	require.NoError(t, err)
	assert.Len(t, listed, 3)
}

func TestCreateQuestionRejectsMismatchedPayload(t *testing.T) {
	svc := NewBankService(newFakeQuestionRepo(), newFakeAssessmentRepo())

	tests := []struct {
		name string
		req  dto.CreateQuestionRequest
	}{
		{
			name: "mcq without payload",
			req:  dto.CreateQuestionRequest{Type: "mcq", Skill: "js", Difficulty: "easy", Text: "pick", Points: 2},
		},
		{
			name: "coding without payload",
			req:  dto.CreateQuestionRequest{Type: "coding", Skill: "go", Difficulty: "easy", Text: "code", Points: 5},
		},
		{
			name: "mcq with out-of-range correct index",
			req: dto.CreateQuestionRequest{
				Type: "mcq", Skill: "js", Difficulty: "easy", Text: "pick", Points: 2,
				MCQ: &dto.MCQPayloadRequest{Options: []string{"a", "b"}, Correct: intPtr(5)},
			},
		},
		{
			name: "coding with no test cases",
			req: dto.CreateQuestionRequest{
				Type: "coding", Skill: "go", Difficulty: "easy", Text: "code", Points: 5,
				Coding: &dto.CodingPayloadRequest{Language: "go"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateQuestion(tt.req)
			assert.ErrorIs(t, err, model.ErrInvalidQuestion)
		})
	}
}

func TestCreateAssessmentRoundTrip(t *testing.T) {
	svc := NewBankService(newFakeQuestionRepo(), newFakeAssessmentRepo())

	resp, err := svc.CreateAssessment(dto.CreateAssessmentRequest{
		Title:          "backend screen",
		Skills:         []string{"go", "sql"},
		Difficulty:     "medium",
		TotalQuestions: 10,
		Distribution:   dto.DistributionRequest{MCQ: 50, Coding: 30, Subjective: 20},
		DurationSec:    1800,
		PassingScore:   60,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "sql"}, resp.Skills)
	assert.Equal(t, dto.DistributionRequest{MCQ: 50, Coding: 30, Subjective: 20}, resp.Distribution)

	fetched, err := svc.GetAssessment(resp.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.Title, fetched.Title)

	listed, err := svc.ListAssessments()
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestCreateAssessmentRejectsBadDistribution(t *testing.T) {
	svc := NewBankService(newFakeQuestionRepo(), newFakeAssessmentRepo())

	_, err := svc.CreateAssessment(dto.CreateAssessmentRequest{
		Title:          "broken",
		Skills:         []string{"go"},
		Difficulty:     "medium",
		TotalQuestions: 10,
		Distribution:   dto.DistributionRequest{MCQ: 50, Coding: 30, Subjective: 10},
		DurationSec:    1800,
		PassingScore:   60,
	})
	assert.ErrorIs(t, err, model.ErrInvalidConfig)
}

func TestCandidateQuestionRedaction(t *testing.T) {
	coding := codingQuestion(7, "go", 9, 3)
	redacted, err := dto.NewCandidateQuestion(&coding)
	require.NoError(t, err)
	assert.Len(t, redacted.VisibleTestCases, 2)
	assert.Equal(t, 1, redacted.HiddenTestCases)

	mcq := mcqQuestion(8, "js", 2, 1, "a", "b", "c")
	redactedMCQ, err := dto.NewCandidateQuestion(&mcq)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, redactedMCQ.Options)

	subjective := subjectiveQuestion(9, "design", 10, []string{"secret", "keywords"}, 50)
	redactedSubj, err := dto.NewCandidateQuestion(&subjective)
	require.NoError(t, err)
	assert.Equal(t, 50, redactedSubj.MinimumWords)
}
