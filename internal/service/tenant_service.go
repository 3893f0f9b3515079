package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/examind-dev/examind-api/internal/dto"
	"github.com/examind-dev/examind-api/internal/models"
	"github.com/examind-dev/examind-api/internal/observability"
	"github.com/examind-dev/examind-api/internal/repository"
)

// ErrTenantNotFound indicates the acting identity does not map to a tenant.
var ErrTenantNotFound = errors.New("tenant not found")

// ErrTenantExpired indicates a trial tenant past its expiry timestamp
// attempted a mutating operation.
var ErrTenantExpired = errors.New("tenant trial period expired")

// ErrQuotaExceeded indicates a capped tenant hit its resource limit.
var ErrQuotaExceeded = errors.New("resource quota exceeded")

// TenantService resolves acting identities to their owning tenant and
// enforces tier quotas on resource creation.
type TenantService interface {
	ResolveOwner(ctx context.Context, tenantID uint) (models.Tenant, error)
	RequireActive(ctx context.Context, tenantID uint) (models.Tenant, error)
	CreateOwned(ctx context.Context, tenant models.Tenant, kind string, record interface{}) error
	Overview(ctx context.Context, tenantID uint) (dto.TenantOverviewResponse, error)
}

type tenantService struct {
	tenants repository.TenantRepository
	logger  zerolog.Logger
	now     func() time.Time
}

// NewTenantService constructs a TenantService instance.
func NewTenantService(tenants repository.TenantRepository, logger zerolog.Logger) TenantService {
	return &tenantService{
		tenants: tenants,
		logger:  logger.With().Str("component", "tenant_service").Logger(),
		now:     time.Now,
	}
}

// ResolveOwner loads the tenant and, as a read-side effect, flips trial
// tenants past their expiry to the expired status.
func (s *tenantService) ResolveOwner(ctx context.Context, tenantID uint) (models.Tenant, error) {
	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Tenant{}, ErrTenantNotFound
		}
		return models.Tenant{}, err
	}

	if tenant.Status != models.TenantStatusExpired && tenant.IsExpired(s.now()) {
		if err := s.tenants.UpdateStatus(ctx, tenant.ID, models.TenantStatusExpired); err != nil {
			s.logger.Error().Err(err).Uint("tenant_id", tenant.ID).Msg("failed to mark tenant expired")
		} else {
			tenant.Status = models.TenantStatusExpired
			s.logger.Info().Uint("tenant_id", tenant.ID).Msg("trial tenant marked expired")
		}
	}

	return tenant, nil
}

// RequireActive resolves the tenant and rejects expired trials. Use for
// every mutating operation.
func (s *tenantService) RequireActive(ctx context.Context, tenantID uint) (models.Tenant, error) {
	tenant, err := s.ResolveOwner(ctx, tenantID)
	if err != nil {
		return models.Tenant{}, err
	}
	if tenant.Status == models.TenantStatusExpired || tenant.IsExpired(s.now()) {
		return models.Tenant{}, ErrTenantExpired
	}
	return tenant, nil
}

// CreateOwned creates a quota-governed resource atomically with the quota
// check. Denials are counted and logged with the resource kind and cap.
func (s *tenantService) CreateOwned(ctx context.Context, tenant models.Tenant, kind string, record interface{}) error {
	used, err := s.tenants.CreateOwned(ctx, tenant, kind, record)
	if err != nil {
		if errors.Is(err, repository.ErrQuotaExceeded) {
			observability.QuotaDenials().WithLabelValues(kind).Inc()
			s.logger.Warn().
				Uint("tenant_id", tenant.ID).
				Str("resource_kind", kind).
				Int("quota", tenant.QuotaFor(kind)).
				Msg("quota exceeded")
			return ErrQuotaExceeded
		}
		return err
	}

	if limit := tenant.QuotaFor(kind); limit >= 0 && used > int64(limit) {
		// Concurrency overshoot is tolerated but must stay visible.
		s.logger.Warn().
			Uint("tenant_id", tenant.ID).
			Str("resource_kind", kind).
			Int64("used", used).
			Int("quota", limit).
			Msg("quota overshoot detected")
	}

	return nil
}

func (s *tenantService) Overview(ctx context.Context, tenantID uint) (dto.TenantOverviewResponse, error) {
	tenant, err := s.ResolveOwner(ctx, tenantID)
	if err != nil {
		return dto.TenantOverviewResponse{}, err
	}

	subjects, err := s.tenants.CountOwned(ctx, tenant.ID, models.ResourceKindSubject)
	if err != nil {
		return dto.TenantOverviewResponse{}, err
	}
	candidates, err := s.tenants.CountOwned(ctx, tenant.ID, models.ResourceKindCandidate)
	if err != nil {
		return dto.TenantOverviewResponse{}, err
	}

	return dto.NewTenantOverviewResponse(tenant, subjects, candidates), nil
}
