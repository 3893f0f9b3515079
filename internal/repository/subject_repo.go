package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/examind-dev/examind-api/internal/models"
)

// SubjectRepository defines persistence operations for subjects. Every
// query is scoped to the owning tenant.
type SubjectRepository interface {
	ListByTenant(ctx context.Context, tenantID uint) ([]models.Subject, error)
	GetByID(ctx context.Context, id uint) (models.Subject, error)
	GetOwned(ctx context.Context, id, tenantID uint) (models.Subject, error)
	Update(ctx context.Context, subject *models.Subject) error
	DeleteCascade(ctx context.Context, id, tenantID uint) error
}

type subjectRepository struct {
	db *gorm.DB
}

// NewSubjectRepository instantiates a GORM-backed repository.
func NewSubjectRepository(db *gorm.DB) SubjectRepository {
	return &subjectRepository{db: db}
}

func (r *subjectRepository) ListByTenant(ctx context.Context, tenantID uint) ([]models.Subject, error) {
	var subjects []models.Subject
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&subjects).Error; err != nil {
		return nil, err
	}
	return subjects, nil
}

func (r *subjectRepository) GetByID(ctx context.Context, id uint) (models.Subject, error) {
	var subject models.Subject
	if err := r.db.WithContext(ctx).First(&subject, id).Error; err != nil {
		return models.Subject{}, err
	}
	return subject, nil
}

func (r *subjectRepository) GetOwned(ctx context.Context, id, tenantID uint) (models.Subject, error) {
	var subject models.Subject
	if err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&subject).Error; err != nil {
		return models.Subject{}, err
	}
	return subject, nil
}

func (r *subjectRepository) Update(ctx context.Context, subject *models.Subject) error {
	return r.db.WithContext(ctx).Save(subject).Error
}

// DeleteCascade removes the subject together with its questions, sessions
// and results in one transaction.
func (r *subjectRepository) DeleteCascade(ctx context.Context, id, tenantID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND tenant_id = ?", id, tenantID).Delete(&models.Subject{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Where("subject_id = ?", id).Delete(&models.Question{}).Error; err != nil {
			return err
		}
		if err := tx.Where("subject_id = ?", id).Delete(&models.Session{}).Error; err != nil {
			return err
		}
		return tx.Where("subject_id = ?", id).Delete(&models.Result{}).Error
	})
}
