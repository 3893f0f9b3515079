package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/examind-dev/examind-api/internal/models"
)

// ProctorEventFilter narrows telemetry queries. TenantID is mandatory;
// queries without an owner are not representable.
type ProctorEventFilter struct {
	TenantID    uint
	SessionID   *uint
	CandidateID *uint
}

// ProctorEventRepository defines persistence operations for proctoring
// telemetry. Events are append-only.
type ProctorEventRepository interface {
	Create(ctx context.Context, event *models.ProctorEvent) error
	ListForTenant(ctx context.Context, filter ProctorEventFilter) ([]models.ProctorEvent, error)
	GetOwned(ctx context.Context, id, tenantID uint) (models.ProctorEvent, error)
	Delete(ctx context.Context, id, tenantID uint) error
}

type proctorEventRepository struct {
	db *gorm.DB
}

// NewProctorEventRepository instantiates a GORM-backed repository.
func NewProctorEventRepository(db *gorm.DB) ProctorEventRepository {
	return &proctorEventRepository{db: db}
}

func (r *proctorEventRepository) Create(ctx context.Context, event *models.ProctorEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *proctorEventRepository) ListForTenant(ctx context.Context, filter ProctorEventFilter) ([]models.ProctorEvent, error) {
	query := r.db.WithContext(ctx).Model(&models.ProctorEvent{}).
		Preload("Candidate").
		Where("tenant_id = ?", filter.TenantID)

	if filter.SessionID != nil {
		query = query.Where("session_id = ?", *filter.SessionID)
	}
	if filter.CandidateID != nil {
		query = query.Where("candidate_id = ?", *filter.CandidateID)
	}

	var events []models.ProctorEvent
	if err := query.Order("captured_at ASC, id ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *proctorEventRepository) GetOwned(ctx context.Context, id, tenantID uint) (models.ProctorEvent, error) {
	var event models.ProctorEvent
	if err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&event).Error; err != nil {
		return models.ProctorEvent{}, err
	}
	return event, nil
}

func (r *proctorEventRepository) Delete(ctx context.Context, id, tenantID uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Delete(&models.ProctorEvent{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
