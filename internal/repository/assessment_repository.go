package repository

import (
	"github.com/lshigami/Caracal/internal/model"
	"gorm.io/gorm"
)

type AssessmentRepository interface {
	Create(assessment *model.Assessment) error
	FindByID(id uint) (*model.Assessment, error)
	FindAll() ([]model.Assessment, error)
	Update(assessment *model.Assessment) error
	Delete(id uint) error
}

type assessmentRepository struct {
	db *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) AssessmentRepository {
	return &assessmentRepository{db: db}
}

func (r *assessmentRepository) Create(assessment *model.Assessment) error {
	return r.db.Create(assessment).Error
}

func (r *assessmentRepository) FindByID(id uint) (*model.Assessment, error) {
	var assessment model.Assessment
	if err := r.db.First(&assessment, id).Error; err != nil {
		return nil, err
	}
	return &assessment, nil
}

func (r *assessmentRepository) FindAll() ([]model.Assessment, error) {
	var assessments []model.Assessment
	if err := r.db.Order("created_at desc").Find(&assessments).Error; err != nil {
		return nil, err
	}
	return assessments, nil
}

func (r *assessmentRepository) Update(assessment *model.Assessment) error {
	return r.db.Save(assessment).Error
}

func (r *assessmentRepository) Delete(id uint) error {
	return r.db.Delete(&model.Assessment{}, id).Error
}
