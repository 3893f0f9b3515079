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

// SubjectHandler wires subject HTTP routes.
type SubjectHandler struct {
	service service.SubjectService
	logger  zerolog.Logger
}

// NewSubjectHandler constructs the handler.
func NewSubjectHandler(service service.SubjectService, logger zerolog.Logger) *SubjectHandler {
	return &SubjectHandler{
		service: service,
		logger:  logger.With().Str("component", "subject_handler").Logger(),
	}
}

// Register attaches subject endpoints to the router group.
func (h *SubjectHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Patch("/:id/timer", h.updateTimer)
	router.Put("/:id/schedule", h.schedule)
	router.Delete("/:id/schedule", h.clearSchedule)
	router.Delete("/:id", h.delete)
}

func (h *SubjectHandler) list(c *fiber.Ctx) error {
	subjects, err := h.service.List(c.Context(), tenantIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "subjects retrieved", subjects)
}

func (h *SubjectHandler) create(c *fiber.Ctx) error {
	var payload dto.SubjectCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	subject, err := h.service.Create(c.Context(), tenantIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "subject created", subject)
}

func (h *SubjectHandler) updateTimer(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SubjectTimerUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	subject, err := h.service.UpdateTimer(c.Context(), id, tenantIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "subject timer updated", subject)
}

func (h *SubjectHandler) schedule(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.WindowScheduleRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	subject, err := h.service.Schedule(c.Context(), id, tenantIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "exam window scheduled", subject)
}

func (h *SubjectHandler) clearSchedule(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	subject, err := h.service.ClearSchedule(c.Context(), id, tenantIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "exam window cleared", subject)
}

func (h *SubjectHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Context(), id, tenantIDFromContext(c)); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "subject deleted", fiber.Map{"id": id})
}

func (h *SubjectHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrSubjectNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "subject not found")
	case errors.Is(err, service.ErrTenantNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "tenant not found")
	case errors.Is(err, service.ErrTenantExpired):
		return utils.SendError(c, fiber.StatusForbidden, "trial period expired")
	case errors.Is(err, service.ErrQuotaExceeded):
		return utils.SendError(c, fiber.StatusForbidden, "subject quota exceeded")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
