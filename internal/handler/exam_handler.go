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

// ExamHandler wires candidate-facing exam session routes.
type ExamHandler struct {
	service service.ExamService
	logger  zerolog.Logger
}

// NewExamHandler constructs the handler.
func NewExamHandler(service service.ExamService, logger zerolog.Logger) *ExamHandler {
	return &ExamHandler{
		service: service,
		logger:  logger.With().Str("component", "exam_handler").Logger(),
	}
}

// Register attaches exam session endpoints to the router group.
func (h *ExamHandler) Register(router fiber.Router) {
	router.Post("/sessions", h.start)
	router.Get("/sessions/:id/questions", h.questions)
	router.Post("/sessions/:id/submit", h.submit)
}

func (h *ExamHandler) start(c *fiber.Ctx) error {
	session, err := h.service.Start(c.Context(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "session started", session)
}

func (h *ExamHandler) questions(c *fiber.Ctx) error {
	sessionID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	questions, err := h.service.Questions(c.Context(), sessionID, userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "questions retrieved", questions)
}

func (h *ExamHandler) submit(c *fiber.Ctx) error {
	sessionID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Submit(c.Context(), sessionID, userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission graded", result)
}

func (h *ExamHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrCandidateNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "candidate not found")
	case errors.Is(err, service.ErrSubjectNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "subject not found")
	case errors.Is(err, service.ErrSessionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "session not found")
	case errors.Is(err, service.ErrTenantNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "tenant not found")
	case errors.Is(err, service.ErrTenantExpired):
		return utils.SendError(c, fiber.StatusForbidden, "trial period expired")
	case errors.Is(err, service.ErrOwnershipMismatch):
		return utils.SendError(c, fiber.StatusForbidden, "session does not belong to candidate")
	case errors.Is(err, service.ErrWindowNotOpen):
		return utils.SendError(c, fiber.StatusForbidden, "exam window has not started")
	case errors.Is(err, service.ErrWindowExpired):
		return utils.SendError(c, fiber.StatusForbidden, "exam window has expired")
	case errors.Is(err, service.ErrAlreadySubmitted):
		return utils.SendError(c, fiber.StatusConflict, "session already submitted")
	case errors.Is(err, service.ErrSessionNotActive):
		return utils.SendError(c, fiber.StatusConflict, "session is not active")
	case errors.Is(err, service.ErrEmptyQuestionSet):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, "subject has no gradable questions")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
