package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lshigami/Caracal/config"
	"github.com/lshigami/Caracal/internal/model"
	"github.com/lshigami/Caracal/internal/repository"
	"gorm.io/gorm"
)

func testConfig() *config.Config {
	return &config.Config{
		Sandbox: config.Sandbox{URL: "http://sandbox.test", Timeout: 5 * time.Second},
		Assessment: config.Assessment{
			StrengthThreshold:   75,
			WeaknessThreshold:   50,
			SimilarityThreshold: 0.8,
			MinSecondsPerAnswer: 5,
			SimilarityTimeout:   5 * time.Second,
		},
	}
}

// fakeClock hands out a controllable time and advances on demand.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func mcqQuestion(id uint, skill string, points, correct int, options ...string) model.Question {
	if len(options) == 0 {
		options = []string{"a", "b", "c"}
	}
	q := model.Question{ID: id, Type: model.QuestionMCQ, Skill: skill, Difficulty: model.DifficultyMedium, Text: "pick one", Points: points}
	if err := q.SetPayload(model.MCQPayload{Options: options, Correct: correct}); err != nil {
		panic(err)
	}
	return q
}

func codingQuestion(id uint, skill string, points, testCases int) model.Question {
	cases := make([]model.TestCase, testCases)
	for i := range cases {
		cases[i] = model.TestCase{Input: fmt.Sprintf("in%d", i), Expected: fmt.Sprintf("out%d", i), IsHidden: i%2 == 1}
	}
	q := model.Question{ID: id, Type: model.QuestionCoding, Skill: skill, Difficulty: model.DifficultyMedium, Text: "write code", Points: points}
	if err := q.SetPayload(model.CodingPayload{Language: "go", Template: "package main", TestCases: cases}); err != nil {
		panic(err)
	}
	return q
}

func subjectiveQuestion(id uint, skill string, points int, keywords []string, minWords int) model.Question {
	q := model.Question{ID: id, Type: model.QuestionSubjective, Skill: skill, Difficulty: model.DifficultyMedium, Text: "explain", Points: points}
	if err := q.SetPayload(model.SubjectivePayload{Rubric: model.Rubric{Keywords: keywords, MinimumWords: minWords}}); err != nil {
		panic(err)
	}
	return q
}

// fakeRunner returns a canned verdict per source string, or a global error.
type fakeRunner struct {
	err      error
	verdicts map[string][]TestCaseResult
}

func (r *fakeRunner) Run(_ context.Context, _ string, source string, testCases []model.TestCase) ([]TestCaseResult, error) {
	if r.err != nil {
		return nil, r.err
	}
	if v, ok := r.verdicts[source]; ok {
		return v, nil
	}
	results := make([]TestCaseResult, len(testCases))
	for i := range results {
		results[i] = TestCaseResult{Index: i, Passed: false}
	}
	return results, nil
}

func passFirstN(n, total int) []TestCaseResult {
	results := make([]TestCaseResult, total)
	for i := range results {
		results[i] = TestCaseResult{Index: i, Passed: i < n}
	}
	return results
}

// fakeSimilarity returns one fixed score, or an error, for every comparison.
type fakeSimilarity struct {
	score float64
	err   error
	calls int
}

func (s *fakeSimilarity) Compare(context.Context, string, []string) (float64, error) {
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	return s.score, nil
}

// fakeQuestionRepo serves FetchByType from an in-memory bank grouped by type.
type fakeQuestionRepo struct {
	bank map[model.QuestionType][]model.Question
}

func newFakeQuestionRepo(questions ...model.Question) *fakeQuestionRepo {
	repo := &fakeQuestionRepo{bank: make(map[model.QuestionType][]model.Question)}
	for _, q := range questions {
		repo.bank[q.Type] = append(repo.bank[q.Type], q)
	}
	return repo
}

func (r *fakeQuestionRepo) Create(q *model.Question) error {
	r.bank[q.Type] = append(r.bank[q.Type], *q)
	return nil
}

func (r *fakeQuestionRepo) FindByID(id uint) (*model.Question, error) {
	for _, qs := range r.bank {
		for i := range qs {
			if qs[i].ID == id {
				q := qs[i]
				return &q, nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeQuestionRepo) FindByIDs(ids []uint) ([]model.Question, error) {
	want := make(map[uint]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []model.Question
	for _, qs := range r.bank {
		for _, q := range qs {
			if want[q.ID] {
				out = append(out, q)
			}
		}
	}
	return out, nil
}

func (r *fakeQuestionRepo) FindAll() ([]model.Question, error) {
	var out []model.Question
	for _, qs := range r.bank {
		out = append(out, qs...)
	}
	return out, nil
}

func (r *fakeQuestionRepo) FetchByType(qType model.QuestionType, count int, skills []string, difficulty model.Difficulty) ([]model.Question, error) {
	if count == 0 {
		return nil, nil
	}
	skillSet := make(map[string]bool, len(skills))
	for _, s := range skills {
		skillSet[s] = true
	}
	var out []model.Question
	for _, q := range r.bank[qType] {
		if q.Difficulty == difficulty && skillSet[q.Skill] {
			out = append(out, q)
		}
		if len(out) == count {
			break
		}
	}
	if len(out) < count {
		return nil, fmt.Errorf("%w: need %d %s questions, bank has %d", repository.ErrInsufficientQuestions, count, qType, len(out))
	}
	return out, nil
}

func (r *fakeQuestionRepo) Update(*model.Question) error { return nil }
func (r *fakeQuestionRepo) Delete(uint) error            { return nil }

type fakeAssessmentRepo struct {
	byID map[uint]*model.Assessment
}

func newFakeAssessmentRepo(assessments ...*model.Assessment) *fakeAssessmentRepo {
	repo := &fakeAssessmentRepo{byID: make(map[uint]*model.Assessment)}
	for _, a := range assessments {
		repo.byID[a.ID] = a
	}
	return repo
}

func (r *fakeAssessmentRepo) Create(a *model.Assessment) error {
	if a.ID == 0 {
		a.ID = uint(len(r.byID) + 1)
	}
	r.byID[a.ID] = a
	return nil
}

func (r *fakeAssessmentRepo) FindByID(id uint) (*model.Assessment, error) {
	a, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (r *fakeAssessmentRepo) FindAll() ([]model.Assessment, error) {
	out := make([]model.Assessment, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, *a)
	}
	return out, nil
}

func (r *fakeAssessmentRepo) Update(a *model.Assessment) error { r.byID[a.ID] = a; return nil }
func (r *fakeAssessmentRepo) Delete(id uint) error             { delete(r.byID, id); return nil }

type fakeAttemptRepo struct {
	mu     sync.Mutex
	nextID uint
	byID   map[uint]*model.Attempt
}

func newFakeAttemptRepo() *fakeAttemptRepo {
	return &fakeAttemptRepo{nextID: 1, byID: make(map[uint]*model.Attempt)}
}

func (r *fakeAttemptRepo) Create(a *model.Attempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = r.nextID
	r.nextID++
	stored := *a
	r.byID[a.ID] = &stored
	return nil
}

func (r *fakeAttemptRepo) Update(a *model.Attempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *a
	r.byID[a.ID] = &stored
	return nil
}

func (r *fakeAttemptRepo) FindByID(id uint) (*model.Attempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *a
	return &copied, nil
}

func (r *fakeAttemptRepo) FindByIDWithAnswers(id uint) (*model.Attempt, error) {
	return r.FindByID(id)
}

func (r *fakeAttemptRepo) FindAllByAssessmentAndCandidate(assessmentID uint, candidateID string) ([]model.Attempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Attempt
	for _, a := range r.byID {
		if a.AssessmentID == assessmentID && a.CandidateID == candidateID {
			out = append(out, *a)
		}
	}
	return out, nil
}

type fakeAnswerRepo struct {
	mu     sync.Mutex
	byKey  map[string]*model.Answer
	corpus []string
}

func newFakeAnswerRepo() *fakeAnswerRepo {
	return &fakeAnswerRepo{byKey: make(map[string]*model.Answer)}
}

func answerKey(attemptID, questionID uint) string {
	return fmt.Sprintf("%d/%d", attemptID, questionID)
}

func (r *fakeAnswerRepo) Upsert(a *model.Answer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *a
	r.byKey[answerKey(a.AttemptID, a.QuestionID)] = &stored
	return nil
}

func (r *fakeAnswerRepo) FindByAttemptID(attemptID uint) ([]model.Answer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Answer
	for _, a := range r.byKey {
		if a.AttemptID == attemptID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAnswerRepo) FindTextValuesForAssessment(uint, uint) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.corpus, nil
}

func (r *fakeAnswerRepo) stored(attemptID, questionID uint) *model.Answer {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byKey[answerKey(attemptID, questionID)]
	if !ok {
		return nil
	}
	copied := *a
	return &copied
}

type fakeLeaderboardRepo struct {
	mu      sync.Mutex
	entries map[string]*model.LeaderboardEntry
}

func newFakeLeaderboardRepo() *fakeLeaderboardRepo {
	return &fakeLeaderboardRepo{entries: make(map[string]*model.LeaderboardEntry)}
}

func boardKey(assessmentID uint, candidateID string) string {
	return fmt.Sprintf("%d/%s", assessmentID, candidateID)
}

func (r *fakeLeaderboardRepo) Upsert(e *model.LeaderboardEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *e
	r.entries[boardKey(e.AssessmentID, e.CandidateID)] = &stored
	return nil
}

func (r *fakeLeaderboardRepo) FindByAssessment(assessmentID uint) ([]model.LeaderboardEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.LeaderboardEntry
	for _, e := range r.entries {
		if e.AssessmentID == assessmentID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeLeaderboardRepo) FindByAssessmentAndCandidate(assessmentID uint, candidateID string) (*model.LeaderboardEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[boardKey(assessmentID, candidateID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *e
	return &copied, nil
}

func (r *fakeLeaderboardRepo) SaveAll(entries []model.LeaderboardEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range entries {
		stored := entries[i]
		r.entries[boardKey(stored.AssessmentID, stored.CandidateID)] = &stored
	}
	return nil
}
