package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/examind-dev/examind-api/internal/models"
)

// CandidateRepository defines persistence operations for candidates.
type CandidateRepository interface {
	ListByTenant(ctx context.Context, tenantID uint) ([]models.Candidate, error)
	GetByID(ctx context.Context, id uint) (models.Candidate, error)
	GetOwned(ctx context.Context, id, tenantID uint) (models.Candidate, error)
	GetByEmail(ctx context.Context, email string) (models.Candidate, error)
	Delete(ctx context.Context, id, tenantID uint) error
}

type candidateRepository struct {
	db *gorm.DB
}

// NewCandidateRepository instantiates a GORM-backed repository.
func NewCandidateRepository(db *gorm.DB) CandidateRepository {
	return &candidateRepository{db: db}
}

func (r *candidateRepository) ListByTenant(ctx context.Context, tenantID uint) ([]models.Candidate, error) {
	var candidates []models.Candidate
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&candidates).Error; err != nil {
		return nil, err
	}
	return candidates, nil
}

func (r *candidateRepository) GetByID(ctx context.Context, id uint) (models.Candidate, error) {
	var candidate models.Candidate
	if err := r.db.WithContext(ctx).First(&candidate, id).Error; err != nil {
		return models.Candidate{}, err
	}
	return candidate, nil
}

func (r *candidateRepository) GetOwned(ctx context.Context, id, tenantID uint) (models.Candidate, error) {
	var candidate models.Candidate
	if err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&candidate).Error; err != nil {
		return models.Candidate{}, err
	}
	return candidate, nil
}

func (r *candidateRepository) GetByEmail(ctx context.Context, email string) (models.Candidate, error) {
	var candidate models.Candidate
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&candidate).Error; err != nil {
		return models.Candidate{}, err
	}
	return candidate, nil
}

func (r *candidateRepository) Delete(ctx context.Context, id, tenantID uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Delete(&models.Candidate{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
