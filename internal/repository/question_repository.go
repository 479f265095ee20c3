package repository

import (
	"errors"
	"fmt"

	"github.com/lshigami/Caracal/internal/model"
	"gorm.io/gorm"
)

// ErrInsufficientQuestions is returned when the bank cannot supply the
// requested count for a type/skill/difficulty filter.
var ErrInsufficientQuestions = errors.New("insufficient questions in bank")

// QuestionRepository is the question bank accessor.
type QuestionRepository interface {
	Create(question *model.Question) error
	FindByID(id uint) (*model.Question, error)
	FindByIDs(ids []uint) ([]model.Question, error)
	FindAll() ([]model.Question, error)
	// FetchByType returns exactly count questions matching the filter, or
	// ErrInsufficientQuestions if the bank is undersupplied.
	FetchByType(qType model.QuestionType, count int, skills []string, difficulty model.Difficulty) ([]model.Question, error)
	Update(question *model.Question) error
	Delete(id uint) error
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) Create(question *model.Question) error {
	return r.db.Create(question).Error
}

func (r *questionRepository) FindByID(id uint) (*model.Question, error) {
	var question model.Question
	if err := r.db.First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionRepository) FindByIDs(ids []uint) ([]model.Question, error) {
	var questions []model.Question
	if err := r.db.Where("id IN ?", ids).Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepository) FindAll() ([]model.Question, error) {
	var questions []model.Question
	if err := r.db.Order("created_at desc").Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepository) FetchByType(qType model.QuestionType, count int, skills []string, difficulty model.Difficulty) ([]model.Question, error) {
	if count == 0 {
		return nil, nil
	}
	var questions []model.Question
	err := r.db.
		Where("type = ? AND difficulty = ? AND skill IN ?", qType, difficulty, skills).
		Limit(count).
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	if len(questions) < count {
		return nil, fmt.Errorf("%w: need %d %s questions, bank has %d", ErrInsufficientQuestions, count, qType, len(questions))
	}
	return questions, nil
}

func (r *questionRepository) Update(question *model.Question) error {
	return r.db.Save(question).Error
}

func (r *questionRepository) Delete(id uint) error {
	return r.db.Delete(&model.Question{}, id).Error
}
