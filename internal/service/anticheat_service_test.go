package service

import (
	"context"
	"errors"
	"testing"

	"github.com/lshigami/Caracal/internal/model"
	"github.com/stretchr/testify/assert"
)

func snapshotAnswers(answers ...model.Answer) map[uint]model.Answer {
	out := make(map[uint]model.Answer, len(answers))
	for _, a := range answers {
		out[a.QuestionID] = a
	}
	return out
}

func TestDetectTimeAnomaly(t *testing.T) {
	svc := NewAntiCheatService(&fakeSimilarity{}, testConfig())

	tests := []struct {
		name     string
		snapshot AttemptSnapshot
		want     bool
	}{
		{
			name: "plausible pacing",
			snapshot: AttemptSnapshot{
				Answers: snapshotAnswers(
					model.Answer{QuestionID: 1, TimeSpentSec: 40},
					model.Answer{QuestionID: 2, TimeSpentSec: 90},
				),
				TimeTakenSec: 300,
				DurationSec:  600,
			},
			want: false,
		},
		{
			name: "single answer below the plausible minimum",
			snapshot: AttemptSnapshot{
				Answers: snapshotAnswers(
					model.Answer{QuestionID: 1, TimeSpentSec: 40},
					model.Answer{QuestionID: 2, TimeSpentSec: 1.2},
				),
				TimeTakenSec: 300,
				DurationSec:  600,
			},
			want: true,
		},
		{
			name: "total exceeds the allotted window",
			snapshot: AttemptSnapshot{
				Answers:      snapshotAnswers(model.Answer{QuestionID: 1, TimeSpentSec: 40}),
				TimeTakenSec: 700,
				DurationSec:  600,
			},
			want: true,
		},
		{
			name: "total implausibly short for the answer count",
			snapshot: AttemptSnapshot{
				Answers: snapshotAnswers(
					model.Answer{QuestionID: 1, TimeSpentSec: 6},
					model.Answer{QuestionID: 2, TimeSpentSec: 6},
				),
				TimeTakenSec: 8,
				DurationSec:  600,
			},
			want: true,
		},
		{
			name:     "no answers at all",
			snapshot: AttemptSnapshot{TimeTakenSec: 10, DurationSec: 600},
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := svc.Analyze(context.Background(), tt.snapshot)
			assert.Equal(t, tt.want, flags.TimeAnomaly)
		})
	}
}

func TestDetectAnswerPattern(t *testing.T) {
	svc := NewAntiCheatService(&fakeSimilarity{}, testConfig())
	mcqs := []model.Question{
		mcqQuestion(1, "js", 2, 0),
		mcqQuestion(2, "js", 2, 1),
		mcqQuestion(3, "js", 2, 2),
	}
	freeText := []model.Question{
		subjectiveQuestion(10, "design", 10, []string{"schema"}, 10),
		codingQuestion(11, "go", 9, 2),
		subjectiveQuestion(12, "design", 10, []string{"index"}, 10),
	}

	safeTimes := func(answers map[uint]model.Answer) map[uint]model.Answer {
		for id, a := range answers {
			a.TimeSpentSec = 60
			answers[id] = a
		}
		return answers
	}

	tests := []struct {
		name      string
		questions []model.Question
		answers   map[uint]model.Answer
		want      bool
	}{
		{
			name:      "identical option on every mcq",
			questions: mcqs,
			answers: snapshotAnswers(
				model.Answer{QuestionID: 1, Value: "2"},
				model.Answer{QuestionID: 2, Value: "2"},
				model.Answer{QuestionID: 3, Value: "2"},
			),
			want: true,
		},
		{
			name:      "varied mcq selections",
			questions: mcqs,
			answers: snapshotAnswers(
				model.Answer{QuestionID: 1, Value: "0"},
				model.Answer{QuestionID: 2, Value: "1"},
				model.Answer{QuestionID: 3, Value: "2"},
			),
			want: false,
		},
		{
			name:      "two uniform mcqs are below the sample floor",
			questions: mcqs[:2],
			answers: snapshotAnswers(
				model.Answer{QuestionID: 1, Value: "1"},
				model.Answer{QuestionID: 2, Value: "1"},
			),
			want: false,
		},
		{
			name:      "zero revisions across all free text",
			questions: freeText,
			answers: snapshotAnswers(
				model.Answer{QuestionID: 10, Value: "pasted essay"},
				model.Answer{QuestionID: 11, Value: "pasted code"},
				model.Answer{QuestionID: 12, Value: "another paste"},
			),
			want: true,
		},
		{
			name:      "free text with revision activity",
			questions: freeText,
			answers: snapshotAnswers(
				model.Answer{QuestionID: 10, Value: "essay", Revisions: 2},
				model.Answer{QuestionID: 11, Value: "code"},
				model.Answer{QuestionID: 12, Value: "notes"},
			),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := svc.Analyze(context.Background(), AttemptSnapshot{
				Questions:    tt.questions,
				Answers:      safeTimes(tt.answers),
				TimeTakenSec: 400,
				DurationSec:  600,
			})
			assert.Equal(t, tt.want, flags.AnswerPattern)
		})
	}
}

func TestDetectPlagiarism(t *testing.T) {
	question := subjectiveQuestion(1, "design", 10, []string{"schema"}, 10)
	snapshot := AttemptSnapshot{
		Questions:    []model.Question{question},
		Answers:      snapshotAnswers(model.Answer{QuestionID: 1, Value: "a schema essay", TimeSpentSec: 120}),
		TimeTakenSec: 400,
		DurationSec:  600,
		Corpus:       []string{"a schema essay from another candidate"},
	}

	t.Run("over the threshold", func(t *testing.T) {
		svc := NewAntiCheatService(&fakeSimilarity{score: 0.93}, testConfig())
		flags := svc.Analyze(context.Background(), snapshot)
		assert.True(t, flags.Plagiarism)
	})

	t.Run("under the threshold", func(t *testing.T) {
		svc := NewAntiCheatService(&fakeSimilarity{score: 0.4}, testConfig())
		flags := svc.Analyze(context.Background(), snapshot)
		assert.False(t, flags.Plagiarism)
		assert.Empty(t, flags.Warnings)
	})

	t.Run("mcq answers are never compared", func(t *testing.T) {
		similarity := &fakeSimilarity{score: 1.0}
		svc := NewAntiCheatService(similarity, testConfig())
		flags := svc.Analyze(context.Background(), AttemptSnapshot{
			Questions:    []model.Question{mcqQuestion(1, "js", 2, 0)},
			Answers:      snapshotAnswers(model.Answer{QuestionID: 1, Value: "0", TimeSpentSec: 30}),
			TimeTakenSec: 400,
			DurationSec:  600,
			Corpus:       []string{"corpus entry"},
		})
		assert.False(t, flags.Plagiarism)
		assert.Zero(t, similarity.calls)
	})

	t.Run("empty corpus skips the collaborator", func(t *testing.T) {
		similarity := &fakeSimilarity{score: 1.0}
		svc := NewAntiCheatService(similarity, testConfig())
		noCorpus := snapshot
		noCorpus.Corpus = nil
		flags := svc.Analyze(context.Background(), noCorpus)
		assert.False(t, flags.Plagiarism)
		assert.Zero(t, similarity.calls)
	})
}

func TestAnalyzeDegradesWhenCollaboratorFails(t *testing.T) {
	svc := NewAntiCheatService(&fakeSimilarity{err: errors.New("upstream down")}, testConfig())
	flags := svc.Analyze(context.Background(), AttemptSnapshot{
		Questions:    []model.Question{subjectiveQuestion(1, "design", 10, []string{"schema"}, 10)},
		Answers:      snapshotAnswers(model.Answer{QuestionID: 1, Value: "an essay", TimeSpentSec: 120}),
		TimeTakenSec: 400,
		DurationSec:  600,
		Corpus:       []string{"corpus entry"},
	})

	assert.False(t, flags.Plagiarism, "missing signal maps to flag=false")
	assert.NotEmpty(t, flags.Warnings, "the degraded check is reported, not fatal")
}
