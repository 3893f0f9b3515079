package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/examind-dev/examind-api/internal/models"
)

// ErrQuotaExceeded signals that a capped tenant already owns as many
// resources of the requested kind as its tier allows.
var ErrQuotaExceeded = errors.New("tenant quota exceeded")

// TenantRepository defines persistence operations for tenants and the
// quota-gated creation of owned resources.
type TenantRepository interface {
	GetByID(ctx context.Context, id uint) (models.Tenant, error)
	GetByEmail(ctx context.Context, email string) (models.Tenant, error)
	Create(ctx context.Context, tenant *models.Tenant) error
	UpdateStatus(ctx context.Context, id uint, status string) error
	CountOwned(ctx context.Context, tenantID uint, kind string) (int64, error)
	CreateOwned(ctx context.Context, tenant models.Tenant, kind string, record interface{}) (int64, error)
}

type tenantRepository struct {
	db *gorm.DB
}

// NewTenantRepository instantiates a GORM-backed repository.
func NewTenantRepository(db *gorm.DB) TenantRepository {
	return &tenantRepository{db: db}
}

func (r *tenantRepository) GetByID(ctx context.Context, id uint) (models.Tenant, error) {
	var tenant models.Tenant
	if err := r.db.WithContext(ctx).First(&tenant, id).Error; err != nil {
		return models.Tenant{}, err
	}
	return tenant, nil
}

func (r *tenantRepository) GetByEmail(ctx context.Context, email string) (models.Tenant, error) {
	var tenant models.Tenant
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&tenant).Error; err != nil {
		return models.Tenant{}, err
	}
	return tenant, nil
}

func (r *tenantRepository) Create(ctx context.Context, tenant *models.Tenant) error {
	return r.db.WithContext(ctx).Create(tenant).Error
}

func (r *tenantRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	return r.db.WithContext(ctx).Model(&models.Tenant{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()}).Error
}

func (r *tenantRepository) CountOwned(ctx context.Context, tenantID uint, kind string) (int64, error) {
	var count int64
	err := r.ownedQuery(ctx, r.db, tenantID, kind).Count(&count).Error
	return count, err
}

// CreateOwned inserts a quota-governed resource inside one transaction with
// the quota count. Capped creations take a FOR UPDATE lock on the tenant
// row, serializing concurrent transactions for the same tenant so the count
// they read is the count they commit against. The count is still re-checked
// after the insert and the transaction rolled back on overshoot, which also
// covers dialects without row locks. Returns the owned count after a
// successful insert.
func (r *tenantRepository) CreateOwned(ctx context.Context, tenant models.Tenant, kind string, record interface{}) (int64, error) {
	limit := tenant.QuotaFor(kind)

	var used int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if limit >= 0 {
			if rowLocksSupported(tx.Dialector.Name()) {
				var locked models.Tenant
				if err := tx.WithContext(ctx).
					Clauses(clause.Locking{Strength: "UPDATE"}).
					First(&locked, tenant.ID).Error; err != nil {
					return err
				}
			}

			var before int64
			if err := r.ownedQuery(ctx, tx, tenant.ID, kind).Count(&before).Error; err != nil {
				return err
			}
			if before >= int64(limit) {
				return ErrQuotaExceeded
			}
		}

		if err := tx.Create(record).Error; err != nil {
			return err
		}

		if err := r.ownedQuery(ctx, tx, tenant.ID, kind).Count(&used).Error; err != nil {
			return err
		}
		if limit >= 0 && used > int64(limit) {
			return ErrQuotaExceeded
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return used, nil
}

// rowLocksSupported reports whether the dialect honors SELECT ... FOR
// UPDATE. sqlite has no row locks; its single-writer transactions serialize
// on their own.
func rowLocksSupported(dialect string) bool {
	return dialect != "sqlite"
}

func (r *tenantRepository) ownedQuery(ctx context.Context, tx *gorm.DB, tenantID uint, kind string) *gorm.DB {
	switch kind {
	case models.ResourceKindCandidate:
		return tx.WithContext(ctx).Model(&models.Candidate{}).Where("tenant_id = ?", tenantID)
	default:
		return tx.WithContext(ctx).Model(&models.Subject{}).Where("tenant_id = ?", tenantID)
	}
}
