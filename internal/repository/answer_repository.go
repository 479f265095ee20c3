package repository

import (
	"github.com/lshigami/Caracal/internal/model"
	"gorm.io/gorm"
)

type AnswerRepository interface {
	// Upsert writes the latest value for one attempt/question pair.
	Upsert(answer *model.Answer) error
	FindByAttemptID(attemptID uint) ([]model.Answer, error)
	// FindTextValuesForAssessment returns the free-text answer values from
	// other attempts of the same assessment, used as the plagiarism corpus.
	FindTextValuesForAssessment(assessmentID uint, excludeAttemptID uint) ([]string, error)
}

type answerRepository struct {
	db *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &answerRepository{db: db}
}

func (r *answerRepository) Upsert(answer *model.Answer) error {
	var existing model.Answer
	err := r.db.Where("attempt_id = ? AND question_id = ?", answer.AttemptID, answer.QuestionID).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return r.db.Create(answer).Error
	}
	if err != nil {
		return err
	}
	answer.ID = existing.ID
	answer.CreatedAt = existing.CreatedAt
	return r.db.Save(answer).Error
}

func (r *answerRepository) FindByAttemptID(attemptID uint) ([]model.Answer, error) {
	var answers []model.Answer
	if err := r.db.Where("attempt_id = ?", attemptID).Order("submitted_at ASC").Find(&answers).Error; err != nil {
		return nil, err
	}
	return answers, nil
}

func (r *answerRepository) FindTextValuesForAssessment(assessmentID uint, excludeAttemptID uint) ([]string, error) {
	var values []string
	err := r.db.Model(&model.Answer{}).
		Joins("JOIN attempts ON attempts.id = answers.attempt_id").
		Joins("JOIN questions ON questions.id = answers.question_id").
		Where("attempts.assessment_id = ? AND answers.attempt_id <> ?", assessmentID, excludeAttemptID).
		Where("questions.type IN ?", []model.QuestionType{model.QuestionCoding, model.QuestionSubjective}).
		Where("answers.deleted_at IS NULL AND attempts.deleted_at IS NULL").
		Pluck("answers.value", &values).Error
	if err != nil {
		return nil, err
	}
	return values, nil
}
