package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/examind-dev/examind-api/internal/dto"
	"github.com/examind-dev/examind-api/internal/models"
	"github.com/examind-dev/examind-api/internal/repository"
)

// ErrSubjectNotFound indicates the subject is absent or owned by another
// tenant.
var ErrSubjectNotFound = errors.New("subject not found")

// SubjectService manages subjects and their exam windows.
type SubjectService interface {
	List(ctx context.Context, tenantID uint) ([]dto.SubjectResponse, error)
	Create(ctx context.Context, tenantID uint, payload dto.SubjectCreateRequest) (dto.SubjectResponse, error)
	UpdateTimer(ctx context.Context, id, tenantID uint, payload dto.SubjectTimerUpdateRequest) (dto.SubjectResponse, error)
	Schedule(ctx context.Context, id, tenantID uint, payload dto.WindowScheduleRequest) (dto.SubjectResponse, error)
	ClearSchedule(ctx context.Context, id, tenantID uint) (dto.SubjectResponse, error)
	Delete(ctx context.Context, id, tenantID uint) error
}

type subjectService struct {
	subjects  repository.SubjectRepository
	tenants   TenantService
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewSubjectService constructs a SubjectService instance.
func NewSubjectService(subjects repository.SubjectRepository, tenants TenantService, validate *validator.Validate, logger zerolog.Logger) SubjectService {
	return &subjectService{
		subjects:  subjects,
		tenants:   tenants,
		validator: validate,
		logger:    logger.With().Str("component", "subject_service").Logger(),
		now:       time.Now,
	}
}

func (s *subjectService) List(ctx context.Context, tenantID uint) ([]dto.SubjectResponse, error) {
	if _, err := s.tenants.ResolveOwner(ctx, tenantID); err != nil {
		return nil, err
	}

	subjects, err := s.subjects.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return dto.NewSubjectResponseSlice(subjects, s.now()), nil
}

func (s *subjectService) Create(ctx context.Context, tenantID uint, payload dto.SubjectCreateRequest) (dto.SubjectResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubjectResponse{}, err
	}

	tenant, err := s.tenants.RequireActive(ctx, tenantID)
	if err != nil {
		return dto.SubjectResponse{}, err
	}

	timeLimit := payload.TimeLimitMinutes
	if timeLimit <= 0 {
		timeLimit = 60
	}

	subject := models.Subject{
		TenantID:         tenant.ID,
		Name:             payload.Name,
		Code:             payload.Code,
		TimeLimitMinutes: timeLimit,
	}

	if err := s.tenants.CreateOwned(ctx, tenant, models.ResourceKindSubject, &subject); err != nil {
		return dto.SubjectResponse{}, err
	}

	s.logger.Info().Uint("subject_id", subject.ID).Uint("tenant_id", tenant.ID).Msg("subject created")

	return dto.NewSubjectResponse(subject, s.now()), nil
}

func (s *subjectService) UpdateTimer(ctx context.Context, id, tenantID uint, payload dto.SubjectTimerUpdateRequest) (dto.SubjectResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubjectResponse{}, err
	}

	subject, err := s.getOwnedActive(ctx, id, tenantID)
	if err != nil {
		return dto.SubjectResponse{}, err
	}

	subject.TimeLimitMinutes = payload.TimeLimitMinutes
	if err := s.subjects.Update(ctx, &subject); err != nil {
		return dto.SubjectResponse{}, err
	}

	s.logger.Info().Uint("subject_id", subject.ID).Int("time_limit_minutes", subject.TimeLimitMinutes).Msg("subject timer updated")

	return dto.NewSubjectResponse(subject, s.now()), nil
}

func (s *subjectService) Schedule(ctx context.Context, id, tenantID uint, payload dto.WindowScheduleRequest) (dto.SubjectResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubjectResponse{}, err
	}

	subject, err := s.getOwnedActive(ctx, id, tenantID)
	if err != nil {
		return dto.SubjectResponse{}, err
	}

	start := payload.Start
	duration := payload.DurationMinutes
	subject.WindowStart = &start
	subject.WindowDurationMinutes = &duration

	if err := s.subjects.Update(ctx, &subject); err != nil {
		return dto.SubjectResponse{}, err
	}

	s.logger.Info().
		Uint("subject_id", subject.ID).
		Time("window_start", start).
		Int("window_duration_minutes", duration).
		Msg("exam window scheduled")

	return dto.NewSubjectResponse(subject, s.now()), nil
}

func (s *subjectService) ClearSchedule(ctx context.Context, id, tenantID uint) (dto.SubjectResponse, error) {
	subject, err := s.getOwnedActive(ctx, id, tenantID)
	if err != nil {
		return dto.SubjectResponse{}, err
	}

	subject.WindowStart = nil
	subject.WindowDurationMinutes = nil
	if err := s.subjects.Update(ctx, &subject); err != nil {
		return dto.SubjectResponse{}, err
	}

	s.logger.Info().Uint("subject_id", subject.ID).Msg("exam window cleared")

	return dto.NewSubjectResponse(subject, s.now()), nil
}

func (s *subjectService) Delete(ctx context.Context, id, tenantID uint) error {
	if _, err := s.tenants.RequireActive(ctx, tenantID); err != nil {
		return err
	}

	if err := s.subjects.DeleteCascade(ctx, id, tenantID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubjectNotFound
		}
		return err
	}

	s.logger.Info().Uint("subject_id", id).Uint("tenant_id", tenantID).Msg("subject deleted with cascade")
	return nil
}

func (s *subjectService) getOwnedActive(ctx context.Context, id, tenantID uint) (models.Subject, error) {
	if _, err := s.tenants.RequireActive(ctx, tenantID); err != nil {
		return models.Subject{}, err
	}

	subject, err := s.subjects.GetOwned(ctx, id, tenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Subject{}, ErrSubjectNotFound
		}
		return models.Subject{}, err
	}
	return subject, nil
}
