package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/examind-dev/examind-api/internal/dto"
	"github.com/examind-dev/examind-api/internal/models"
	"github.com/examind-dev/examind-api/internal/observability"
	"github.com/examind-dev/examind-api/internal/repository"
)

// ErrSessionNotActive indicates telemetry arrived for a session that is not
// running.
var ErrSessionNotActive = errors.New("session is not active")

// ErrProctorEventNotFound indicates the event is absent or owned by another
// tenant.
var ErrProctorEventNotFound = errors.New("proctor event not found")

// ErrUnsupportedFrameType indicates the uploaded frame is not an image.
var ErrUnsupportedFrameType = errors.New("unsupported frame type")

// FrameStore persists proctoring frames in a content store and returns a
// reference. Destroy is best-effort cleanup.
type FrameStore interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
	Destroy(ctx context.Context, url string) error
}

// ProctorService ingests proctoring telemetry for active sessions and
// exposes tenant-scoped views of it.
type ProctorService interface {
	Ingest(ctx context.Context, candidateID uint, payload dto.ProctorIngestRequest, frame *multipart.FileHeader) (dto.ProctorIngestResponse, error)
	ListForTenant(ctx context.Context, tenantID uint, filter dto.ProctorEventFilter) ([]dto.ProctorEventResponse, error)
	Delete(ctx context.Context, eventID, tenantID uint) error
}

type proctorService struct {
	events        repository.ProctorEventRepository
	sessions      repository.SessionRepository
	tenants       TenantService
	frames        FrameStore
	signaler      ChangeSignaler
	validator     *validator.Validate
	uploadTimeout time.Duration
	logger        zerolog.Logger
	tracer        trace.Tracer
	now           func() time.Time
}

// NewProctorService constructs a ProctorService instance.
func NewProctorService(
	events repository.ProctorEventRepository,
	sessions repository.SessionRepository,
	tenants TenantService,
	frames FrameStore,
	signaler ChangeSignaler,
	validate *validator.Validate,
	uploadTimeout time.Duration,
	logger zerolog.Logger,
) ProctorService {
	if signaler == nil {
		signaler = NopSignaler{}
	}
	if uploadTimeout <= 0 {
		uploadTimeout = 10 * time.Second
	}
	return &proctorService{
		events:        events,
		sessions:      sessions,
		tenants:       tenants,
		frames:        frames,
		signaler:      signaler,
		validator:     validate,
		uploadTimeout: uploadTimeout,
		logger:        logger.With().Str("component", "proctor_service").Logger(),
		tracer:        otel.Tracer("github.com/examind-dev/examind-api/internal/service/proctor"),
		now:           time.Now,
	}
}

func (s *proctorService) Ingest(ctx context.Context, candidateID uint, payload dto.ProctorIngestRequest, frame *multipart.FileHeader) (dto.ProctorIngestResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProctorIngestResponse{}, err
	}
	if frame == nil {
		return dto.ProctorIngestResponse{}, fmt.Errorf("proctor frame is required")
	}

	spanCtx, span := s.tracer.Start(ctx, "proctor.ingest", trace.WithAttributes(
		attribute.Int64("session.id", int64(payload.SessionID)),
	))
	defer span.End()
	ctx = spanCtx

	session, err := s.sessions.GetByID(ctx, payload.SessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProctorIngestResponse{}, ErrSessionNotFound
		}
		return dto.ProctorIngestResponse{}, err
	}
	if session.CandidateID != candidateID {
		return dto.ProctorIngestResponse{}, ErrOwnershipMismatch
	}
	if session.State != models.SessionStateActive {
		return dto.ProctorIngestResponse{}, ErrSessionNotActive
	}

	if err := validateFrameType(frame); err != nil {
		return dto.ProctorIngestResponse{}, err
	}

	imageURL, err := s.uploadFrame(ctx, session, frame)
	if err != nil {
		return dto.ProctorIngestResponse{}, err
	}

	event := models.ProctorEvent{
		SessionID:   session.ID,
		CandidateID: session.CandidateID,
		TenantID:    session.TenantID,
		ImageURL:    imageURL,
		TabWarnings: payload.TabWarnings,
		StrikeCount: payload.StrikeCount,
		CapturedAt:  s.now(),
	}

	if err := s.events.Create(ctx, &event); err != nil {
		return dto.ProctorIngestResponse{}, err
	}

	observability.ProctorFramesIngested().Inc()
	s.signaler.Changed(ctx, session.TenantID, SignalKindProctor)

	return dto.ProctorIngestResponse{
		EventID:    event.ID,
		ImageURL:   event.ImageURL,
		CapturedAt: event.CapturedAt,
	}, nil
}

func (s *proctorService) ListForTenant(ctx context.Context, tenantID uint, filter dto.ProctorEventFilter) ([]dto.ProctorEventResponse, error) {
	if _, err := s.tenants.ResolveOwner(ctx, tenantID); err != nil {
		return nil, err
	}

	events, err := s.events.ListForTenant(ctx, repository.ProctorEventFilter{
		TenantID:    tenantID,
		SessionID:   filter.SessionID,
		CandidateID: filter.CandidateID,
	})
	if err != nil {
		return nil, err
	}
	return dto.NewProctorEventResponseSlice(events), nil
}

// Delete removes the event record and then tries to destroy the backing
// image. A failed unlink is logged but never rolls back the metadata
// deletion.
func (s *proctorService) Delete(ctx context.Context, eventID, tenantID uint) error {
	if _, err := s.tenants.RequireActive(ctx, tenantID); err != nil {
		return err
	}

	event, err := s.events.GetOwned(ctx, eventID, tenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProctorEventNotFound
		}
		return err
	}

	if err := s.events.Delete(ctx, eventID, tenantID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProctorEventNotFound
		}
		return err
	}

	if s.frames != nil {
		if err := s.frames.Destroy(ctx, event.ImageURL); err != nil {
			s.logger.Warn().Err(err).Str("image_url", event.ImageURL).Msg("failed to destroy proctor frame")
		}
	}

	s.logger.Info().Uint("event_id", eventID).Uint("tenant_id", tenantID).Msg("proctor event deleted")
	return nil
}

// uploadFrame pushes the frame to the content store under its own timeout
// so a slow store cannot stall the request indefinitely.
func (s *proctorService) uploadFrame(ctx context.Context, session models.Session, frame *multipart.FileHeader) (string, error) {
	reader, err := frame.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open frame: %w", err)
	}
	defer reader.Close()

	uploadCtx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
	defer cancel()

	name := fmt.Sprintf("session-%d-%d", session.ID, s.now().UnixNano())
	url, err := s.frames.Upload(uploadCtx, name, reader)
	if err != nil {
		return "", fmt.Errorf("failed to store frame: %w", err)
	}
	return url, nil
}

func validateFrameType(frame *multipart.FileHeader) error {
	reader, err := frame.Open()
	if err != nil {
		return fmt.Errorf("failed to open frame: %w", err)
	}
	defer reader.Close()

	mime, err := mimetype.DetectReader(reader)
	if err != nil {
		return fmt.Errorf("failed to detect frame type: %w", err)
	}

	allowed := []string{"image/jpeg", "image/png", "image/webp"}
	for _, a := range allowed {
		if mime.Is(a) {
			return nil
		}
	}

	return fmt.Errorf("%w: %s", ErrUnsupportedFrameType, mime.String())
}
