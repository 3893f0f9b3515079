package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/examind-dev/examind-api/internal/dto"
	"github.com/examind-dev/examind-api/internal/service"
	"github.com/examind-dev/examind-api/internal/utils"
)

// ProctorHandler wires proctoring telemetry routes. Ingestion is
// candidate-facing, review and deletion are tenant-facing.
type ProctorHandler struct {
	service service.ProctorService
	logger  zerolog.Logger
}

// NewProctorHandler constructs the handler.
func NewProctorHandler(service service.ProctorService, logger zerolog.Logger) *ProctorHandler {
	return &ProctorHandler{
		service: service,
		logger:  logger.With().Str("component", "proctor_handler").Logger(),
	}
}

// RegisterIngest attaches the candidate-facing ingestion endpoint.
func (h *ProctorHandler) RegisterIngest(router fiber.Router) {
	router.Post("/events", h.ingest)
}

// RegisterReview attaches the tenant-facing review endpoints.
func (h *ProctorHandler) RegisterReview(router fiber.Router) {
	router.Get("/events", h.list)
	router.Delete("/events/:id", h.delete)
}

func (h *ProctorHandler) ingest(c *fiber.Ctx) error {
	var payload dto.ProctorIngestRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	frame, err := c.FormFile("frame")
	if err != nil {
		frame = nil
	}

	event, err := h.service.Ingest(c.Context(), userIDFromContext(c), payload, frame)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "telemetry recorded", event)
}

func (h *ProctorHandler) list(c *fiber.Ctx) error {
	sessionID, err := parseQueryUint(c, "session_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	candidateID, err := parseQueryUint(c, "candidate_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	filter := dto.ProctorEventFilter{SessionID: sessionID, CandidateID: candidateID}

	events, err := h.service.ListForTenant(c.Context(), tenantIDFromContext(c), filter)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "telemetry retrieved", events)
}

func (h *ProctorHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Context(), id, tenantIDFromContext(c)); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "telemetry deleted", fiber.Map{"id": id})
}

func (h *ProctorHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrProctorEventNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "proctor event not found")
	case errors.Is(err, service.ErrSessionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "session not found")
	case errors.Is(err, service.ErrTenantNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "tenant not found")
	case errors.Is(err, service.ErrTenantExpired):
		return utils.SendError(c, fiber.StatusForbidden, "trial period expired")
	case errors.Is(err, service.ErrOwnershipMismatch):
		return utils.SendError(c, fiber.StatusForbidden, "session does not belong to candidate")
	case errors.Is(err, service.ErrSessionNotActive):
		return utils.SendError(c, fiber.StatusConflict, "session is not active")
	case errors.Is(err, service.ErrUnsupportedFrameType):
		return utils.SendError(c, fiber.StatusBadRequest, "unsupported frame type")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
