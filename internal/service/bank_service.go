package service

import (
	"encoding/json"
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/lshigami/Caracal/internal/dto"
	"github.com/lshigami/Caracal/internal/model"
	"github.com/lshigami/Caracal/internal/repository"
	"github.com/rs/zerolog/log"
)

// BankService is the admin surface for the question bank and assessment
// configs. All invariants are enforced here, before anything is persisted.
type BankService interface {
	CreateQuestion(req dto.CreateQuestionRequest) (*dto.QuestionResponse, error)
	ListQuestions() ([]dto.QuestionResponse, error)
	CreateAssessment(req dto.CreateAssessmentRequest) (*dto.AssessmentResponse, error)
	ListAssessments() ([]dto.AssessmentResponse, error)
	GetAssessment(id uint) (*dto.AssessmentResponse, error)
}

type bankService struct {
	questionRepo   repository.QuestionRepository
	assessmentRepo repository.AssessmentRepository
}

func NewBankService(questionRepo repository.QuestionRepository, assessmentRepo repository.AssessmentRepository) BankService {
	return &bankService{questionRepo: questionRepo, assessmentRepo: assessmentRepo}
}

func (s *bankService) CreateQuestion(req dto.CreateQuestionRequest) (*dto.QuestionResponse, error) {
	q := &model.Question{
		Type:       model.QuestionType(req.Type),
		Skill:      req.Skill,
		Difficulty: model.Difficulty(req.Difficulty),
		Text:       req.Text,
		Points:     req.Points,
	}

	var payload any
	switch q.Type {
	case model.QuestionMCQ:
		if req.MCQ == nil {
			return nil, fmt.Errorf("%w: mcq payload is required for type mcq", model.ErrInvalidQuestion)
		}
		payload = model.MCQPayload{Options: req.MCQ.Options, Correct: *req.MCQ.Correct}
	case model.QuestionCoding:
		if req.Coding == nil {
			return nil, fmt.Errorf("%w: coding payload is required for type coding", model.ErrInvalidQuestion)
		}
		cases := make([]model.TestCase, len(req.Coding.TestCases))
		for i, tc := range req.Coding.TestCases {
			cases[i] = model.TestCase{Input: tc.Input, Expected: tc.Expected, IsHidden: tc.IsHidden}
		}
		payload = model.CodingPayload{Language: req.Coding.Language, Template: req.Coding.Template, TestCases: cases}
	case model.QuestionSubjective:
		if req.Subjective == nil {
			return nil, fmt.Errorf("%w: subjective payload is required for type subjective", model.ErrInvalidQuestion)
		}
		payload = model.SubjectivePayload{Rubric: model.Rubric{
			Keywords:     req.Subjective.Rubric.Keywords,
			MinimumWords: req.Subjective.Rubric.MinimumWords,
		}}
	}
	if err := q.SetPayload(payload); err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if err := s.questionRepo.Create(q); err != nil {
		log.Error().Err(err).Str("type", req.Type).Msg("CreateQuestion: failed to persist question")
		return nil, fmt.Errorf("create question: %w", err)
	}
	log.Info().Uint("questionID", q.ID).Str("type", req.Type).Str("skill", req.Skill).Msg("Question created")
	return questionResponse(q)
}

func (s *bankService) ListQuestions() ([]dto.QuestionResponse, error) {
	questions, err := s.questionRepo.FindAll()
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	out := make([]dto.QuestionResponse, 0, len(questions))
	for i := range questions {
		resp, err := questionResponse(&questions[i])
		if err != nil {
			log.Warn().Err(err).Uint("questionID", questions[i].ID).Msg("ListQuestions: skipping question with bad payload")
			continue
		}
		out = append(out, *resp)
	}
	return out, nil
}

func questionResponse(q *model.Question) (*dto.QuestionResponse, error) {
	var resp dto.QuestionResponse
	if err := copier.Copy(&resp, q); err != nil {
		return nil, fmt.Errorf("map question response: %w", err)
	}
	resp.Type = string(q.Type)
	resp.Difficulty = string(q.Difficulty)

	var payload any
	if err := json.Unmarshal(q.Payload, &payload); err != nil {
		return nil, fmt.Errorf("decode payload for question %d: %w", q.ID, err)
	}
	resp.Payload = payload
	return &resp, nil
}

func (s *bankService) CreateAssessment(req dto.CreateAssessmentRequest) (*dto.AssessmentResponse, error) {
	a := &model.Assessment{
		Title:                  req.Title,
		Description:            req.Description,
		Difficulty:             model.Difficulty(req.Difficulty),
		TotalQuestions:         req.TotalQuestions,
		DistributionMCQ:        req.Distribution.MCQ,
		DistributionCoding:     req.Distribution.Coding,
		DistributionSubjective: req.Distribution.Subjective,
		DurationSec:            req.DurationSec,
		PassingScore:           req.PassingScore,
	}
	if err := a.SetSkills(req.Skills); err != nil {
		return nil, err
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}

	if err := s.assessmentRepo.Create(a); err != nil {
		log.Error().Err(err).Str("title", req.Title).Msg("CreateAssessment: failed to persist assessment")
		return nil, fmt.Errorf("create assessment: %w", err)
	}
	log.Info().Uint("assessmentID", a.ID).Str("title", a.Title).Msg("Assessment created")
	return assessmentResponse(a)
}

func (s *bankService) ListAssessments() ([]dto.AssessmentResponse, error) {
	assessments, err := s.assessmentRepo.FindAll()
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	out := make([]dto.AssessmentResponse, 0, len(assessments))
	for i := range assessments {
		resp, err := assessmentResponse(&assessments[i])
		if err != nil {
			log.Warn().Err(err).Uint("assessmentID", assessments[i].ID).Msg("ListAssessments: skipping assessment with bad skills column")
			continue
		}
		out = append(out, *resp)
	}
	return out, nil
}

func (s *bankService) GetAssessment(id uint) (*dto.AssessmentResponse, error) {
	a, err := s.assessmentRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("assessment %d: %w", id, err)
	}
	return assessmentResponse(a)
}

func assessmentResponse(a *model.Assessment) (*dto.AssessmentResponse, error) {
	var resp dto.AssessmentResponse
	if err := copier.Copy(&resp, a); err != nil {
		return nil, fmt.Errorf("map assessment response: %w", err)
	}
	resp.Difficulty = string(a.Difficulty)
	resp.Distribution = dto.DistributionRequest{
		MCQ:        a.DistributionMCQ,
		Coding:     a.DistributionCoding,
		Subjective: a.DistributionSubjective,
	}
	skills, err := a.SkillList()
	if err != nil {
		return nil, err
	}
	resp.Skills = skills
	return &resp, nil
}
