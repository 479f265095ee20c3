package service

import (
	"fmt"
	"sort"

	"github.com/lshigami/Caracal/config"
	"github.com/lshigami/Caracal/internal/model"
)

// ReportService composes the final candidate report from the derived scoring
// and anti-cheat artifacts. Deterministic: identical inputs build the
// identical report.
type ReportService interface {
	Build(scores model.ScoreBreakdown, flags model.CheatFlags, timeTakenSec float64) model.Report
}

type reportService struct {
	strengthThreshold float64
	weaknessThreshold float64
}

func NewReportService(cfg *config.Config) ReportService {
	return &reportService{
		strengthThreshold: cfg.Assessment.StrengthThreshold,
		weaknessThreshold: cfg.Assessment.WeaknessThreshold,
	}
}

func (s *reportService) Build(scores model.ScoreBreakdown, flags model.CheatFlags, timeTakenSec float64) model.Report {
	report := model.Report{
		Scores:       scores,
		Flags:        flags,
		TimeTakenSec: timeTakenSec,
		Strengths:    []string{},
		Weaknesses:   []string{},
	}

	skills := make([]string, 0, len(scores.SkillScores))
	for skill := range scores.SkillScores {
		skills = append(skills, skill)
	}
	sort.Strings(skills)

	for _, skill := range skills {
		pct := scores.SkillScores[skill]
		switch {
		case pct >= s.strengthThreshold:
			report.Strengths = append(report.Strengths, skill)
		case pct < s.weaknessThreshold:
			report.Weaknesses = append(report.Weaknesses, skill)
		}
	}

	report.Recommendations = recommendationsFor(report.Weaknesses, scores.SkillScores)
	return report
}

// recommendationsFor is templated text per weak skill, not free-form
// generation, so the same weakness set always yields the same output.
func recommendationsFor(weaknesses []string, skillScores map[string]float64) []string {
	recs := make([]string, 0, len(weaknesses))
	for _, skill := range weaknesses {
		recs = append(recs, fmt.Sprintf("Review %s fundamentals: this attempt scored %.0f%% in that skill.", skill, skillScores[skill]))
	}
	return recs
}
