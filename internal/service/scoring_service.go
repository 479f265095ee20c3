package service

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/lshigami/Caracal/config"
	"github.com/lshigami/Caracal/internal/model"
	"github.com/rs/zerolog/log"
)

// ScoringService scores a frozen question set against a frozen answer set.
// Given identical inputs and an identical code runner verdict it always
// produces the identical breakdown; it never mutates either input.
type ScoringService interface {
	Score(ctx context.Context, questions []model.Question, answers map[uint]model.Answer, passingScore float64) model.ScoreBreakdown
}

type scoringService struct {
	runner         CodeRunnerService
	sandboxTimeout time.Duration
}

func NewScoringService(runner CodeRunnerService, cfg *config.Config) ScoringService {
	return &scoringService{runner: runner, sandboxTimeout: cfg.Sandbox.Timeout}
}

// trunc2 truncates toward zero at 2 decimal places. All fractional
// per-question scores go through this so scoring stays bit-deterministic.
func trunc2(v float64) float64 {
	return math.Trunc(v*100) / 100
}

func (s *scoringService) Score(ctx context.Context, questions []model.Question, answers map[uint]model.Answer, passingScore float64) model.ScoreBreakdown {
	breakdown := model.ScoreBreakdown{
		SectionScores: make(map[model.QuestionType]float64),
		SkillScores:   make(map[string]float64),
	}

	sectionEarned := make(map[model.QuestionType]float64)
	sectionPoints := make(map[model.QuestionType]float64)
	skillRatioSum := make(map[string]float64)
	skillCount := make(map[string]int)

	for i := range questions {
		q := &questions[i]
		points := float64(q.Points)
		breakdown.MaxPossible += points
		sectionPoints[q.Type] += points
		skillCount[q.Skill]++

		score := 0.0
		if ans, ok := answers[q.ID]; ok {
			score = s.scoreQuestion(ctx, q, ans.Value)
		}
		breakdown.TotalScore += score
		sectionEarned[q.Type] += score
		if points > 0 {
			skillRatioSum[q.Skill] += score / points
		}
	}

	for qType, points := range sectionPoints {
		if points > 0 {
			breakdown.SectionScores[qType] = 100 * sectionEarned[qType] / points
		} else {
			breakdown.SectionScores[qType] = 0
		}
	}
	for skill, count := range skillCount {
		if count > 0 {
			breakdown.SkillScores[skill] = 100 * skillRatioSum[skill] / float64(count)
		}
	}

	// Empty or zero-point paper scores 0 and never passes; no NaN leaks out.
	if breakdown.MaxPossible > 0 {
		breakdown.OverallPercentage = 100 * breakdown.TotalScore / breakdown.MaxPossible
		breakdown.IsPassed = breakdown.OverallPercentage >= passingScore
	}
	return breakdown
}

func (s *scoringService) scoreQuestion(ctx context.Context, q *model.Question, value string) float64 {
	switch q.Type {
	case model.QuestionMCQ:
		return s.scoreMCQ(q, value)
	case model.QuestionCoding:
		return s.scoreCoding(ctx, q, value)
	case model.QuestionSubjective:
		return s.scoreSubjective(q, value)
	default:
		log.Warn().Uint("questionID", q.ID).Str("type", string(q.Type)).Msg("scoreQuestion: unknown question type, scoring 0")
		return 0
	}
}

// scoreMCQ awards full points only when the answer parses as the correct
// option index. Anything else, including empty or malformed input, scores 0.
func (s *scoringService) scoreMCQ(q *model.Question, value string) float64 {
	payload, err := q.MCQ()
	if err != nil {
		log.Warn().Err(err).Uint("questionID", q.ID).Msg("scoreMCQ: malformed payload, scoring 0")
		return 0
	}
	selected, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	if selected == payload.Correct {
		return float64(q.Points)
	}
	return 0
}

// scoreCoding runs the test cases through the sandbox under a timeout and
// awards points proportionally to passed cases, truncated to 2 decimals.
// Hidden cases count in both numerator and denominator. A runner error or
// timeout scores the whole question 0 rather than failing the pipeline.
func (s *scoringService) scoreCoding(ctx context.Context, q *model.Question, value string) float64 {
	payload, err := q.Coding()
	if err != nil {
		log.Warn().Err(err).Uint("questionID", q.ID).Msg("scoreCoding: malformed payload, scoring 0")
		return 0
	}
	if strings.TrimSpace(value) == "" {
		return 0
	}

	runCtx, cancel := context.WithTimeout(ctx, s.sandboxTimeout)
	defer cancel()

	results, err := s.runner.Run(runCtx, payload.Language, value, payload.TestCases)
	if err != nil {
		log.Warn().Err(err).Uint("questionID", q.ID).Msg("scoreCoding: code runner unavailable, counting all test cases as failed")
		return 0
	}

	passed := 0
	for _, r := range results {
		if r.Passed && r.Index >= 0 && r.Index < len(payload.TestCases) {
			passed++
		}
	}
	total := len(payload.TestCases)
	if total == 0 {
		return 0
	}
	return trunc2(float64(q.Points) * float64(passed) / float64(total))
}

// scoreSubjective applies the deterministic rubric heuristic: +2 per matched
// keyword (case-insensitive substring, counted once per keyword), +2 for
// meeting the minimum word count, capped at the question's points.
func (s *scoringService) scoreSubjective(q *model.Question, value string) float64 {
	payload, err := q.Subjective()
	if err != nil {
		log.Warn().Err(err).Uint("questionID", q.ID).Msg("scoreSubjective: malformed payload, scoring 0")
		return 0
	}
	if strings.TrimSpace(value) == "" {
		return 0
	}

	lowered := strings.ToLower(value)
	score := 0
	for _, keyword := range payload.Rubric.Keywords {
		if keyword == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(keyword)) {
			score += 2
		}
	}
	if payload.Rubric.MinimumWords > 0 && len(strings.Fields(value)) >= payload.Rubric.MinimumWords {
		score += 2
	}
	if score > q.Points {
		return float64(q.Points)
	}
	return float64(score)
}
