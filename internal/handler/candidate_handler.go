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

// CandidateHandler wires candidate roster HTTP routes.
type CandidateHandler struct {
	service service.CandidateService
	logger  zerolog.Logger
}

// NewCandidateHandler constructs the handler.
func NewCandidateHandler(service service.CandidateService, logger zerolog.Logger) *CandidateHandler {
	return &CandidateHandler{
		service: service,
		logger:  logger.With().Str("component", "candidate_handler").Logger(),
	}
}

// Register attaches candidate endpoints to the router group.
func (h *CandidateHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Delete("/:id", h.delete)
}

func (h *CandidateHandler) list(c *fiber.Ctx) error {
	candidates, err := h.service.List(c.Context(), tenantIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "candidates retrieved", candidates)
}

func (h *CandidateHandler) create(c *fiber.Ctx) error {
	var payload dto.CandidateCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	candidate, err := h.service.Create(c.Context(), tenantIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "candidate registered", candidate)
}

func (h *CandidateHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Context(), id, tenantIDFromContext(c)); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "candidate deleted", fiber.Map{"id": id})
}

func (h *CandidateHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrCandidateNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "candidate not found")
	case errors.Is(err, service.ErrSubjectNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "subject not found")
	case errors.Is(err, service.ErrTenantNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "tenant not found")
	case errors.Is(err, service.ErrTenantExpired):
		return utils.SendError(c, fiber.StatusForbidden, "trial period expired")
	case errors.Is(err, service.ErrQuotaExceeded):
		return utils.SendError(c, fiber.StatusForbidden, "candidate quota exceeded")
	case errors.Is(err, service.ErrEmailTaken):
		return utils.SendError(c, fiber.StatusConflict, "email already registered")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
