package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lshigami/Caracal/internal/model"
	"github.com/lshigami/Caracal/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var (
	ErrAttemptNotFound      = errors.New("attempt not found")
	ErrQuestionNotInAttempt = errors.New("question is not part of this attempt")
	ErrAttemptNotSubmitted  = errors.New("attempt has not been submitted")
)

// AttemptService owns the attempt lifecycle: start freezes a generated
// question set, answers accumulate until submission, and Finalize runs the
// scoring/anti-cheat/report pipeline exactly once per attempt.
type AttemptService interface {
	StartAttempt(assessmentID uint, candidateID string) (*model.Attempt, []model.Question, error)
	// RecordAnswer overwrites any prior answer for the question. After
	// submission it is a silent no-op, never an error, so a late retry from a
	// second tab cannot fail a candidate.
	RecordAnswer(attemptID, questionID uint, value string) error
	// Finalize flips the submission latch. Only the first call runs the
	// pipeline; later calls return the stored report.
	Finalize(ctx context.Context, attemptID uint) (*model.Report, error)
	GetReport(attemptID uint) (*model.Report, error)
	GetAttemptsFor(assessmentID uint, candidateID string) ([]model.Attempt, error)
	// FinalizeExpired submits every live attempt whose time window has
	// elapsed, through the same path as a manual submit.
	FinalizeExpired(ctx context.Context)
}

// liveAttempt is the in-process aggregate for one in-flight attempt. All
// candidate writes for the attempt serialize on its mutex, which gives
// last-write-wins per question across tabs and devices.
type liveAttempt struct {
	mu         sync.Mutex
	attempt    *model.Attempt
	assessment *model.Assessment
	questions  []model.Question
	byID       map[uint]*model.Question
	answers    map[uint]*model.Answer
	lastEvent  time.Time
	submitted  bool
	report     *model.Report
}

type attemptService struct {
	assessmentRepo repository.AssessmentRepository
	questionRepo   repository.QuestionRepository
	attemptRepo    repository.AttemptRepository
	answerRepo     repository.AnswerRepository
	generator      GeneratorService
	scoring        ScoringService
	antiCheat      AntiCheatService
	reports        ReportService
	leaderboard    LeaderboardService
	clock          Clock

	mu   sync.Mutex
	live map[uint]*liveAttempt
}

func NewAttemptService(
	assessmentRepo repository.AssessmentRepository,
	questionRepo repository.QuestionRepository,
	attemptRepo repository.AttemptRepository,
	answerRepo repository.AnswerRepository,
	generator GeneratorService,
	scoring ScoringService,
	antiCheat AntiCheatService,
	reports ReportService,
	leaderboard LeaderboardService,
	clock Clock,
) AttemptService {
	return &attemptService{
		assessmentRepo: assessmentRepo,
		questionRepo:   questionRepo,
		attemptRepo:    attemptRepo,
		answerRepo:     answerRepo,
		generator:      generator,
		scoring:        scoring,
		antiCheat:      antiCheat,
		reports:        reports,
		leaderboard:    leaderboard,
		clock:          clock,
		live:           make(map[uint]*liveAttempt),
	}
}

func (s *attemptService) StartAttempt(assessmentID uint, candidateID string) (*model.Attempt, []model.Question, error) {
	assessment, err := s.assessmentRepo.FindByID(assessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("assessment %d: %w", assessmentID, err)
		}
		return nil, nil, fmt.Errorf("load assessment %d: %w", assessmentID, err)
	}

	now := s.clock.Now()
	seed := now.UnixNano()
	questions, err := s.generator.Generate(assessment, seed)
	if err != nil {
		// Generation failure means no attempt is created at all.
		return nil, nil, err
	}

	ids := make([]uint, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}

	attempt := &model.Attempt{
		AssessmentID: assessmentID,
		CandidateID:  candidateID,
		Seed:         seed,
		Status:       model.AttemptInProgress,
		StartedAt:    now,
	}
	if err := attempt.SetQuestionIDs(ids); err != nil {
		return nil, nil, err
	}
	if err := s.attemptRepo.Create(attempt); err != nil {
		log.Error().Err(err).Uint("assessmentID", assessmentID).Msg("StartAttempt: failed to persist attempt")
		return nil, nil, fmt.Errorf("create attempt: %w", err)
	}

	la := &liveAttempt{
		attempt:    attempt,
		assessment: assessment,
		questions:  questions,
		byID:       make(map[uint]*model.Question, len(questions)),
		answers:    make(map[uint]*model.Answer),
		lastEvent:  now,
	}
	for i := range questions {
		la.byID[questions[i].ID] = &questions[i]
	}

	s.mu.Lock()
	s.live[attempt.ID] = la
	s.mu.Unlock()

	log.Info().Uint("attemptID", attempt.ID).Uint("assessmentID", assessmentID).
		Str("candidateID", candidateID).Int("questions", len(questions)).Msg("Attempt started")
	return attempt, questions, nil
}

func (s *attemptService) RecordAnswer(attemptID, questionID uint, value string) error {
	la, err := s.liveFor(attemptID)
	if err != nil {
		return err
	}

	la.mu.Lock()
	defer la.mu.Unlock()

	if la.submitted {
		// One-way latch: post-submission writes are dropped without error.
		log.Info().Uint("attemptID", attemptID).Uint("questionID", questionID).Msg("RecordAnswer: attempt already submitted, ignoring write")
		return nil
	}
	if _, ok := la.byID[questionID]; !ok {
		return fmt.Errorf("%w: question %d, attempt %d", ErrQuestionNotInAttempt, questionID, attemptID)
	}

	now := s.clock.Now()
	timeSpent := now.Sub(la.lastEvent).Seconds()
	if timeSpent < 0 {
		timeSpent = 0
	}

	ans, exists := la.answers[questionID]
	if exists {
		ans.Value = value
		ans.SubmittedAt = now
		ans.TimeSpentSec = timeSpent
		ans.Revisions++
	} else {
		ans = &model.Answer{
			AttemptID:    attemptID,
			QuestionID:   questionID,
			Value:        value,
			SubmittedAt:  now,
			TimeSpentSec: timeSpent,
		}
		la.answers[questionID] = ans
	}

	if err := s.answerRepo.Upsert(ans); err != nil {
		log.Error().Err(err).Uint("attemptID", attemptID).Uint("questionID", questionID).Msg("RecordAnswer: failed to persist answer")
		return fmt.Errorf("persist answer: %w", err)
	}
	la.lastEvent = now
	return nil
}

func (s *attemptService) Finalize(ctx context.Context, attemptID uint) (*model.Report, error) {
	la, err := s.liveFor(attemptID)
	if err != nil {
		return nil, err
	}

	la.mu.Lock()
	defer la.mu.Unlock()

	// Compare-and-swap on the submitted latch: only the first caller runs the
	// pipeline, everyone else gets the stored artifact.
	if la.submitted {
		if la.report != nil {
			return la.report, nil
		}
		return s.loadStoredReport(attemptID)
	}
	la.submitted = true

	now := s.clock.Now()
	timeTaken := now.Sub(la.attempt.StartedAt).Seconds()

	answers := make(map[uint]model.Answer, len(la.answers))
	for qid, ans := range la.answers {
		answers[qid] = *ans
	}

	breakdown := s.scoring.Score(ctx, la.questions, answers, la.assessment.PassingScore)

	corpus, err := s.answerRepo.FindTextValuesForAssessment(la.attempt.AssessmentID, attemptID)
	if err != nil {
		log.Warn().Err(err).Uint("attemptID", attemptID).Msg("Finalize: could not load plagiarism corpus, continuing without it")
		corpus = nil
	}
	flags := s.antiCheat.Analyze(ctx, AttemptSnapshot{
		Questions:    la.questions,
		Answers:      answers,
		TimeTakenSec: timeTaken,
		DurationSec:  la.assessment.DurationSec,
		Corpus:       corpus,
	})

	report := s.reports.Build(breakdown, flags, timeTaken)

	la.attempt.Status = model.AttemptSubmitted
	la.attempt.SubmittedAt = &now
	if raw, err := json.Marshal(report); err == nil {
		la.attempt.Report = raw
	} else {
		log.Error().Err(err).Uint("attemptID", attemptID).Msg("Finalize: failed to marshal report")
	}
	if err := s.attemptRepo.Update(la.attempt); err != nil {
		// The latch already flipped; the candidate still gets their report.
		log.Error().Err(err).Uint("attemptID", attemptID).Msg("Finalize: failed to persist submitted attempt")
	}

	if err := s.leaderboard.RecordResult(la.attempt.AssessmentID, la.attempt.CandidateID, attemptID,
		breakdown.OverallPercentage, len(answers), timeTaken); err != nil {
		log.Warn().Err(err).Uint("attemptID", attemptID).Msg("Finalize: leaderboard update failed")
	}

	la.report = &report

	s.mu.Lock()
	delete(s.live, attemptID)
	s.mu.Unlock()

	log.Info().Uint("attemptID", attemptID).Float64("overall", breakdown.OverallPercentage).
		Bool("passed", breakdown.IsPassed).Msg("Attempt finalized")
	return &report, nil
}

func (s *attemptService) GetReport(attemptID uint) (*model.Report, error) {
	return s.loadStoredReport(attemptID)
}

func (s *attemptService) GetAttemptsFor(assessmentID uint, candidateID string) ([]model.Attempt, error) {
	return s.attemptRepo.FindAllByAssessmentAndCandidate(assessmentID, candidateID)
}

func (s *attemptService) FinalizeExpired(ctx context.Context) {
	now := s.clock.Now()

	s.mu.Lock()
	expired := make([]uint, 0)
	for id, la := range s.live {
		deadline := la.attempt.StartedAt.Add(time.Duration(la.assessment.DurationSec) * time.Second)
		if !now.Before(deadline) {
			expired = append(expired, id)
		}
	}
	s.mu.Unlock()

	for _, id := range expired {
		log.Info().Uint("attemptID", id).Msg("Attempt time window elapsed, submitting with recorded answers")
		if _, err := s.Finalize(ctx, id); err != nil {
			log.Error().Err(err).Uint("attemptID", id).Msg("FinalizeExpired: failed to finalize attempt")
		}
	}
}

func (s *attemptService) loadStoredReport(attemptID uint) (*model.Report, error) {
	attempt, err := s.attemptRepo.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrAttemptNotFound, attemptID)
		}
		return nil, fmt.Errorf("load attempt %d: %w", attemptID, err)
	}
	if attempt.Status != model.AttemptSubmitted || len(attempt.Report) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrAttemptNotSubmitted, attemptID)
	}
	var report model.Report
	if err := json.Unmarshal(attempt.Report, &report); err != nil {
		return nil, fmt.Errorf("decode report for attempt %d: %w", attemptID, err)
	}
	return &report, nil
}

// liveFor returns the in-process aggregate for the attempt, rehydrating it
// from storage when this process has not seen the attempt yet.
func (s *attemptService) liveFor(attemptID uint) (*liveAttempt, error) {
	s.mu.Lock()
	la, ok := s.live[attemptID]
	s.mu.Unlock()
	if ok {
		return la, nil
	}

	attempt, err := s.attemptRepo.FindByIDWithAnswers(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrAttemptNotFound, attemptID)
		}
		return nil, fmt.Errorf("load attempt %d: %w", attemptID, err)
	}

	assessment := &attempt.Assessment
	if assessment.ID == 0 {
		assessment, err = s.assessmentRepo.FindByID(attempt.AssessmentID)
		if err != nil {
			return nil, fmt.Errorf("load assessment %d: %w", attempt.AssessmentID, err)
		}
	}

	ids, err := attempt.QuestionIDs()
	if err != nil {
		return nil, err
	}
	fetched, err := s.questionRepo.FindByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("load questions for attempt %d: %w", attemptID, err)
	}
	fetchedByID := make(map[uint]model.Question, len(fetched))
	for _, q := range fetched {
		fetchedByID[q.ID] = q
	}
	// Restore the frozen presentation order.
	questions := make([]model.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := fetchedByID[id]; ok {
			questions = append(questions, q)
		} else {
			log.Warn().Uint("attemptID", attemptID).Uint("questionID", id).Msg("liveFor: question missing from bank, dropping from rehydrated set")
		}
	}

	la = &liveAttempt{
		attempt:    attempt,
		assessment: assessment,
		questions:  questions,
		byID:       make(map[uint]*model.Question, len(questions)),
		answers:    make(map[uint]*model.Answer, len(attempt.Answers)),
		lastEvent:  attempt.StartedAt,
		submitted:  attempt.Status == model.AttemptSubmitted,
	}
	for i := range questions {
		la.byID[questions[i].ID] = &questions[i]
	}
	for i := range attempt.Answers {
		ans := attempt.Answers[i]
		la.answers[ans.QuestionID] = &ans
		if ans.SubmittedAt.After(la.lastEvent) {
			la.lastEvent = ans.SubmittedAt
		}
	}

	s.mu.Lock()
	if existing, ok := s.live[attemptID]; ok {
		la = existing
	} else if !la.submitted {
		s.live[attemptID] = la
	}
	s.mu.Unlock()
	return la, nil
}
