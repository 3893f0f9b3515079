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

// QuestionHandler wires question bank HTTP routes.
type QuestionHandler struct {
	service service.QuestionService
	logger  zerolog.Logger
}

// NewQuestionHandler constructs the handler.
func NewQuestionHandler(service service.QuestionService, logger zerolog.Logger) *QuestionHandler {
	return &QuestionHandler{
		service: service,
		logger:  logger.With().Str("component", "question_handler").Logger(),
	}
}

// Register attaches question endpoints to the router group.
func (h *QuestionHandler) Register(router fiber.Router) {
	router.Get("/subjects/:subjectId/questions", h.listBySubject)
	router.Post("/subjects/:subjectId/questions", h.upload)
	router.Patch("/questions/:id", h.update)
	router.Delete("/questions/:id", h.delete)
}

func (h *QuestionHandler) listBySubject(c *fiber.Ctx) error {
	subjectID, err := parseUintParam(c, "subjectId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	questions, err := h.service.ListBySubject(c.Context(), subjectID, tenantIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "questions retrieved", questions)
}

func (h *QuestionHandler) upload(c *fiber.Ctx) error {
	subjectID, err := parseUintParam(c, "subjectId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.QuestionUploadRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	questions, err := h.service.Upload(c.Context(), subjectID, tenantIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "questions uploaded", questions)
}

func (h *QuestionHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.QuestionUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	question, err := h.service.Update(c.Context(), id, tenantIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "question updated", question)
}

func (h *QuestionHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Context(), id, tenantIDFromContext(c)); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "question deleted", fiber.Map{"id": id})
}

func (h *QuestionHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrQuestionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "question not found")
	case errors.Is(err, service.ErrSubjectNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "subject not found")
	case errors.Is(err, service.ErrTenantNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "tenant not found")
	case errors.Is(err, service.ErrTenantExpired):
		return utils.SendError(c, fiber.StatusForbidden, "trial period expired")
	case errors.Is(err, service.ErrCorrectOptionMismatch):
		return utils.SendError(c, fiber.StatusBadRequest, service.ErrCorrectOptionMismatch.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
