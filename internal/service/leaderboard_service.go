package service

import (
	"fmt"
	"sort"

	"github.com/lshigami/Caracal/internal/model"
	"github.com/lshigami/Caracal/internal/repository"
	"github.com/rs/zerolog/log"
)

// LeaderboardService maintains per-assessment standings. Each candidate keeps
// their best attempt; ranks and percentiles are recomputed across the whole
// assessment when a result lands.
type LeaderboardService interface {
	RecordResult(assessmentID uint, candidateID string, attemptID uint, overallPercentage float64, questionsAnswered int, timeTakenSec float64) error
	GetStandings(assessmentID uint) ([]model.LeaderboardEntry, error)
}

type leaderboardService struct {
	repo repository.LeaderboardRepository
}

func NewLeaderboardService(repo repository.LeaderboardRepository) LeaderboardService {
	return &leaderboardService{repo: repo}
}

func (s *leaderboardService) RecordResult(assessmentID uint, candidateID string, attemptID uint, overallPercentage float64, questionsAnswered int, timeTakenSec float64) error {
	entry := model.LeaderboardEntry{
		AssessmentID: assessmentID,
		CandidateID:  candidateID,
		AttemptID:    attemptID,
		Score:        overallPercentage,
	}
	if timeTakenSec > 0 {
		entry.TimeEfficiency = float64(questionsAnswered) / (timeTakenSec / 60)
	}

	existing, err := s.repo.FindByAssessmentAndCandidate(assessmentID, candidateID)
	if err == nil && existing.Score > entry.Score {
		// Keep the better attempt; still recompute ranks since others may have moved.
		return s.recomputeRanks(assessmentID)
	}

	if err := s.repo.Upsert(&entry); err != nil {
		return fmt.Errorf("leaderboard upsert for assessment %d: %w", assessmentID, err)
	}
	return s.recomputeRanks(assessmentID)
}

func (s *leaderboardService) recomputeRanks(assessmentID uint) error {
	entries, err := s.repo.FindByAssessment(assessmentID)
	if err != nil {
		return fmt.Errorf("leaderboard load for assessment %d: %w", assessmentID, err)
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Score > entries[j].Score })

	total := len(entries)
	for i := range entries {
		entries[i].Rank = i + 1
		entries[i].Percentile = float64(total-i-1) / float64(total) * 100
	}
	if err := s.repo.SaveAll(entries); err != nil {
		return fmt.Errorf("leaderboard save for assessment %d: %w", assessmentID, err)
	}
	log.Info().Uint("assessmentID", assessmentID).Int("entries", total).Msg("Leaderboard ranks recomputed")
	return nil
}

func (s *leaderboardService) GetStandings(assessmentID uint) ([]model.LeaderboardEntry, error) {
	entries, err := s.repo.FindByAssessment(assessmentID)
	if err != nil {
		return nil, fmt.Errorf("leaderboard standings for assessment %d: %w", assessmentID, err)
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Rank < entries[j].Rank })
	return entries, nil
}
