package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/examind-dev/examind-api/internal/models"
)

// QuestionRepository defines persistence operations for the question bank.
type QuestionRepository interface {
	ListBySubject(ctx context.Context, subjectID uint, includePlaceholders bool) ([]models.Question, error)
	GetOwned(ctx context.Context, id, tenantID uint) (models.Question, error)
	CreateBatch(ctx context.Context, questions []models.Question) error
	Update(ctx context.Context, question *models.Question) error
	Delete(ctx context.Context, id, tenantID uint) error
}

type questionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository instantiates a GORM-backed repository.
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) ListBySubject(ctx context.Context, subjectID uint, includePlaceholders bool) ([]models.Question, error) {
	query := r.db.WithContext(ctx).Where("subject_id = ?", subjectID)
	if !includePlaceholders {
		query = query.Where("placeholder = ?", false)
	}

	var questions []models.Question
	if err := query.Order("seq ASC, id ASC").Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepository) GetOwned(ctx context.Context, id, tenantID uint) (models.Question, error) {
	var question models.Question
	if err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&question).Error; err != nil {
		return models.Question{}, err
	}
	return question, nil
}

func (r *questionRepository) CreateBatch(ctx context.Context, questions []models.Question) error {
	return r.db.WithContext(ctx).Create(&questions).Error
}

func (r *questionRepository) Update(ctx context.Context, question *models.Question) error {
	return r.db.WithContext(ctx).Save(question).Error
}

func (r *questionRepository) Delete(ctx context.Context, id, tenantID uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Delete(&models.Question{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
