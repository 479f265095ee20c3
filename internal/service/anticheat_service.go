package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/lshigami/Caracal/config"
	"github.com/lshigami/Caracal/internal/model"
	"github.com/rs/zerolog/log"
)

// minPatternAnswers is the smallest sample where uniform mcq choices or
// zero-revision free text stop looking like chance.
const minPatternAnswers = 3

// AttemptSnapshot is the immutable view of a finished attempt handed to the
// analyzer: the frozen question set, the frozen answers, the timing window,
// and the corpus of other candidates' free-text answers for plagiarism
// comparison.
type AttemptSnapshot struct {
	Questions    []model.Question
	Answers      map[uint]model.Answer
	TimeTakenSec float64
	DurationSec  int
	Corpus       []string
}

// AntiCheatService produces advisory cheating-risk flags. It never blocks
// submission, never alters scores, and degrades to flag=false with a warning
// when a collaborator is unavailable.
type AntiCheatService interface {
	Analyze(ctx context.Context, snapshot AttemptSnapshot) model.CheatFlags
}

type antiCheatService struct {
	similarity SimilarityService
	cfg        *config.Config
}

func NewAntiCheatService(similarity SimilarityService, cfg *config.Config) AntiCheatService {
	return &antiCheatService{similarity: similarity, cfg: cfg}
}

func (s *antiCheatService) Analyze(ctx context.Context, snapshot AttemptSnapshot) model.CheatFlags {
	flags := model.CheatFlags{}
	flags.TimeAnomaly = s.detectTimeAnomaly(snapshot)
	flags.AnswerPattern = s.detectAnswerPattern(snapshot)
	flags.Plagiarism = s.detectPlagiarism(ctx, snapshot, &flags)
	return flags
}

// detectTimeAnomaly flags per-question times below the plausible minimum and
// total times outside the allotted window.
func (s *antiCheatService) detectTimeAnomaly(snapshot AttemptSnapshot) bool {
	minPerAnswer := s.cfg.Assessment.MinSecondsPerAnswer
	answered := 0
	for _, ans := range snapshot.Answers {
		answered++
		if ans.TimeSpentSec >= 0 && ans.TimeSpentSec < minPerAnswer {
			return true
		}
	}
	if snapshot.DurationSec > 0 && snapshot.TimeTakenSec > float64(snapshot.DurationSec) {
		return true
	}
	if answered > 0 && snapshot.TimeTakenSec < minPerAnswer*float64(answered) {
		return true
	}
	return false
}

// detectAnswerPattern flags suspicious uniformity: the same option index on
// every mcq answer, or zero revision activity on every free-text answer.
func (s *antiCheatService) detectAnswerPattern(snapshot AttemptSnapshot) bool {
	mcqSelections := make([]int, 0, len(snapshot.Answers))
	freeTextCount := 0
	freeTextRevised := false

	for i := range snapshot.Questions {
		q := &snapshot.Questions[i]
		ans, ok := snapshot.Answers[q.ID]
		if !ok {
			continue
		}
		switch q.Type {
		case model.QuestionMCQ:
			if sel, err := strconv.Atoi(strings.TrimSpace(ans.Value)); err == nil {
				mcqSelections = append(mcqSelections, sel)
			}
		case model.QuestionCoding, model.QuestionSubjective:
			freeTextCount++
			if ans.Revisions > 0 {
				freeTextRevised = true
			}
		}
	}

	if len(mcqSelections) >= minPatternAnswers {
		uniform := true
		for _, sel := range mcqSelections[1:] {
			if sel != mcqSelections[0] {
				uniform = false
				break
			}
		}
		if uniform {
			return true
		}
	}
	if freeTextCount >= minPatternAnswers && !freeTextRevised {
		return true
	}
	return false
}

// detectPlagiarism delegates to the similarity collaborator per free-text
// answer and applies the configured threshold. A collaborator failure is a
// missing signal: flag stays false and the warning is carried on the flags.
func (s *antiCheatService) detectPlagiarism(ctx context.Context, snapshot AttemptSnapshot, flags *model.CheatFlags) bool {
	if len(snapshot.Corpus) == 0 {
		return false
	}
	threshold := s.cfg.Assessment.SimilarityThreshold

	for i := range snapshot.Questions {
		q := &snapshot.Questions[i]
		if q.Type == model.QuestionMCQ {
			continue
		}
		ans, ok := snapshot.Answers[q.ID]
		if !ok || strings.TrimSpace(ans.Value) == "" {
			continue
		}

		cmpCtx, cancel := context.WithTimeout(ctx, s.cfg.Assessment.SimilarityTimeout)
		sim, err := s.similarity.Compare(cmpCtx, ans.Value, snapshot.Corpus)
		cancel()
		if err != nil {
			log.Warn().Err(err).Uint("questionID", q.ID).Msg("Analyze: similarity collaborator unavailable, plagiarism signal skipped")
			flags.Warnings = append(flags.Warnings, "similarity check unavailable for question "+strconv.FormatUint(uint64(q.ID), 10))
			continue
		}
		if sim >= threshold {
			log.Info().Uint("questionID", q.ID).Float64("similarity", sim).Msg("Analyze: answer over plagiarism threshold")
			return true
		}
	}
	return false
}
