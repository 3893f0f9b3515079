package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/examind-dev/examind-api/internal/dto"
	"github.com/examind-dev/examind-api/internal/models"
	"github.com/examind-dev/examind-api/internal/repository"
)

// ErrCandidateNotFound indicates the candidate is absent or owned by
// another tenant.
var ErrCandidateNotFound = errors.New("candidate not found")

// ErrEmailTaken indicates a candidate with the same email already exists.
var ErrEmailTaken = errors.New("email already registered")

// CandidateService manages candidate enrollment.
type CandidateService interface {
	List(ctx context.Context, tenantID uint) ([]dto.CandidateResponse, error)
	Create(ctx context.Context, tenantID uint, payload dto.CandidateCreateRequest) (dto.CandidateResponse, error)
	Delete(ctx context.Context, id, tenantID uint) error
}

type candidateService struct {
	candidates repository.CandidateRepository
	subjects   repository.SubjectRepository
	tenants    TenantService
	validator  *validator.Validate
	logger     zerolog.Logger
}

// NewCandidateService constructs a CandidateService instance.
func NewCandidateService(candidates repository.CandidateRepository, subjects repository.SubjectRepository, tenants TenantService, validate *validator.Validate, logger zerolog.Logger) CandidateService {
	return &candidateService{
		candidates: candidates,
		subjects:   subjects,
		tenants:    tenants,
		validator:  validate,
		logger:     logger.With().Str("component", "candidate_service").Logger(),
	}
}

func (s *candidateService) List(ctx context.Context, tenantID uint) ([]dto.CandidateResponse, error) {
	if _, err := s.tenants.ResolveOwner(ctx, tenantID); err != nil {
		return nil, err
	}

	candidates, err := s.candidates.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return dto.NewCandidateResponseSlice(candidates), nil
}

func (s *candidateService) Create(ctx context.Context, tenantID uint, payload dto.CandidateCreateRequest) (dto.CandidateResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CandidateResponse{}, err
	}

	tenant, err := s.tenants.RequireActive(ctx, tenantID)
	if err != nil {
		return dto.CandidateResponse{}, err
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if _, err := s.candidates.GetByEmail(ctx, email); err == nil {
		return dto.CandidateResponse{}, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.CandidateResponse{}, err
	}

	subject, err := s.subjects.GetOwned(ctx, payload.SubjectID, tenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CandidateResponse{}, ErrSubjectNotFound
		}
		return dto.CandidateResponse{}, err
	}

	candidate := models.Candidate{
		TenantID:         tenant.ID,
		SubjectID:        subject.ID,
		Name:             payload.Name,
		Email:            email,
		PublicID:         newCandidatePublicID(),
		SubjectName:      subject.Name,
		TimeLimitMinutes: subject.TimeLimitMinutes,
	}

	if err := s.tenants.CreateOwned(ctx, tenant, models.ResourceKindCandidate, &candidate); err != nil {
		return dto.CandidateResponse{}, err
	}

	s.logger.Info().
		Uint("candidate_id", candidate.ID).
		Uint("tenant_id", tenant.ID).
		Uint("subject_id", subject.ID).
		Msg("candidate enrolled")

	return dto.NewCandidateResponse(candidate), nil
}

func (s *candidateService) Delete(ctx context.Context, id, tenantID uint) error {
	if _, err := s.tenants.RequireActive(ctx, tenantID); err != nil {
		return err
	}

	if err := s.candidates.Delete(ctx, id, tenantID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCandidateNotFound
		}
		return err
	}

	s.logger.Info().Uint("candidate_id", id).Msg("candidate deleted")
	return nil
}

// newCandidatePublicID mints the opaque identifier used for unauthenticated
// result verification. It must stay non-guessable, so it derives from a
// random UUID rather than any sequential key.
func newCandidatePublicID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("C-%s", strings.ToUpper(raw[:12]))
}
