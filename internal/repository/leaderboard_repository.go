package repository

import (
	"github.com/lshigami/Caracal/internal/model"
	"gorm.io/gorm"
)

type LeaderboardRepository interface {
	Upsert(entry *model.LeaderboardEntry) error
	FindByAssessment(assessmentID uint) ([]model.LeaderboardEntry, error)
	FindByAssessmentAndCandidate(assessmentID uint, candidateID string) (*model.LeaderboardEntry, error)
	SaveAll(entries []model.LeaderboardEntry) error
}

type leaderboardRepository struct {
	db *gorm.DB
}

func NewLeaderboardRepository(db *gorm.DB) LeaderboardRepository {
	return &leaderboardRepository{db: db}
}

func (r *leaderboardRepository) Upsert(entry *model.LeaderboardEntry) error {
	existing, err := r.FindByAssessmentAndCandidate(entry.AssessmentID, entry.CandidateID)
	if err == gorm.ErrRecordNotFound {
		return r.db.Create(entry).Error
	}
	if err != nil {
		return err
	}
	entry.ID = existing.ID
	entry.CreatedAt = existing.CreatedAt
	return r.db.Save(entry).Error
}

func (r *leaderboardRepository) FindByAssessment(assessmentID uint) ([]model.LeaderboardEntry, error) {
	var entries []model.LeaderboardEntry
	err := r.db.Where("assessment_id = ?", assessmentID).Order("score DESC").Find(&entries).Error
	return entries, err
}

func (r *leaderboardRepository) FindByAssessmentAndCandidate(assessmentID uint, candidateID string) (*model.LeaderboardEntry, error) {
	var entry model.LeaderboardEntry
	err := r.db.Where("assessment_id = ? AND candidate_id = ?", assessmentID, candidateID).First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *leaderboardRepository) SaveAll(entries []model.LeaderboardEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.Save(&entries).Error
}
