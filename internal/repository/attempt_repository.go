package repository

import (
	"github.com/lshigami/Caracal/internal/model"
	"gorm.io/gorm"
)

type AttemptRepository interface {
	Create(attempt *model.Attempt) error
	Update(attempt *model.Attempt) error
	FindByID(id uint) (*model.Attempt, error)
	FindByIDWithAnswers(id uint) (*model.Attempt, error)
	FindAllByAssessmentAndCandidate(assessmentID uint, candidateID string) ([]model.Attempt, error)
}

type attemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) Create(attempt *model.Attempt) error {
	return r.db.Create(attempt).Error
}

func (r *attemptRepository) Update(attempt *model.Attempt) error {
	return r.db.Save(attempt).Error
}

func (r *attemptRepository) FindByID(id uint) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.db.First(&attempt, id).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindByIDWithAnswers(id uint) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.db.
		Preload("Assessment").
		Preload("Answers").
		First(&attempt, id).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindAllByAssessmentAndCandidate(assessmentID uint, candidateID string) ([]model.Attempt, error) {
	var attempts []model.Attempt
	query := r.db.Where("assessment_id = ?", assessmentID)
	if candidateID != "" {
		query = query.Where("candidate_id = ?", candidateID)
	}
	err := query.Order("started_at DESC").Find(&attempts).Error
	return attempts, err
}
