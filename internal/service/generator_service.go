package service

import (
	"fmt"
	"math/rand"

	"github.com/lshigami/Caracal/internal/model"
	"github.com/lshigami/Caracal/internal/repository"
	"github.com/rs/zerolog/log"
)

// GeneratorService builds the frozen, ordered question set for one attempt.
type GeneratorService interface {
	// Generate returns exactly assessment.TotalQuestions questions drawn from
	// the bank per the type distribution, uniformly shuffled by seed. The same
	// seed and bank contents reproduce the same order.
	Generate(assessment *model.Assessment, seed int64) ([]model.Question, error)
}

type generatorService struct {
	questionRepo repository.QuestionRepository
}

func NewGeneratorService(questionRepo repository.QuestionRepository) GeneratorService {
	return &generatorService{questionRepo: questionRepo}
}

func (s *generatorService) Generate(assessment *model.Assessment, seed int64) ([]model.Question, error) {
	if err := assessment.Validate(); err != nil {
		return nil, err
	}
	skills, err := assessment.SkillList()
	if err != nil {
		return nil, err
	}

	// Floor the mcq and coding counts; the subjective bucket absorbs the
	// rounding remainder so the total is exact.
	total := assessment.TotalQuestions
	dist := assessment.Distribution()
	mcqCount := total * dist.MCQ / 100
	codingCount := total * dist.Coding / 100
	subjectiveCount := total - mcqCount - codingCount

	questions := make([]model.Question, 0, total)
	for _, req := range []struct {
		qType model.QuestionType
		count int
	}{
		{model.QuestionMCQ, mcqCount},
		{model.QuestionCoding, codingCount},
		{model.QuestionSubjective, subjectiveCount},
	} {
		batch, err := s.questionRepo.FetchByType(req.qType, req.count, skills, assessment.Difficulty)
		if err != nil {
			log.Warn().Err(err).Str("type", string(req.qType)).Int("count", req.count).
				Uint("assessmentID", assessment.ID).Msg("Generate: question bank could not supply request")
			return nil, fmt.Errorf("generate assessment %d: %w", assessment.ID, err)
		}
		questions = append(questions, batch...)
	}

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})
	return questions, nil
}
