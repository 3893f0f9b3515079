package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/examind-dev/examind-api/internal/models"
)

// ResultRepository defines persistence operations for graded results.
type ResultRepository interface {
	Create(ctx context.Context, result *models.Result) error
	GetByPublicID(ctx context.Context, publicID string) (models.Result, error)
	GetOwned(ctx context.Context, id, tenantID uint) (models.Result, error)
	GetBySession(ctx context.Context, sessionID uint) (models.Result, error)
	ListForTenant(ctx context.Context, tenantID uint) ([]models.Result, error)
	Delete(ctx context.Context, id, tenantID uint) error
}

type resultRepository struct {
	db *gorm.DB
}

// NewResultRepository instantiates a GORM-backed repository.
func NewResultRepository(db *gorm.DB) ResultRepository {
	return &resultRepository{db: db}
}

func (r *resultRepository) Create(ctx context.Context, result *models.Result) error {
	return r.db.WithContext(ctx).Create(result).Error
}

// GetByPublicID looks up a result strictly by the candidate's opaque public
// identifier. Internal primary keys are deliberately not an accepted lookup
// path here; this backs the unauthenticated verification route.
func (r *resultRepository) GetByPublicID(ctx context.Context, publicID string) (models.Result, error) {
	var result models.Result
	if err := r.db.WithContext(ctx).
		Where("candidate_public_id = ?", publicID).
		Order("created_at DESC").
		First(&result).Error; err != nil {
		return models.Result{}, err
	}
	return result, nil
}

func (r *resultRepository) GetOwned(ctx context.Context, id, tenantID uint) (models.Result, error) {
	var result models.Result
	if err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&result).Error; err != nil {
		return models.Result{}, err
	}
	return result, nil
}

func (r *resultRepository) GetBySession(ctx context.Context, sessionID uint) (models.Result, error) {
	var result models.Result
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&result).Error; err != nil {
		return models.Result{}, err
	}
	return result, nil
}

func (r *resultRepository) ListForTenant(ctx context.Context, tenantID uint) ([]models.Result, error) {
	var results []models.Result
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *resultRepository) Delete(ctx context.Context, id, tenantID uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Delete(&models.Result{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
