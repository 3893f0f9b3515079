package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/examind-dev/examind-api/internal/service"
	"github.com/examind-dev/examind-api/internal/utils"
)

// ResultHandler wires result HTTP routes. Verification is public, the rest
// is tenant-scoped.
type ResultHandler struct {
	service service.ResultService
	logger  zerolog.Logger
}

// NewResultHandler constructs the handler.
func NewResultHandler(service service.ResultService, logger zerolog.Logger) *ResultHandler {
	return &ResultHandler{
		service: service,
		logger:  logger.With().Str("component", "result_handler").Logger(),
	}
}

// RegisterPublic attaches the unauthenticated verification endpoint.
func (h *ResultHandler) RegisterPublic(router fiber.Router) {
	router.Get("/verify/:publicId", h.verify)
}

// RegisterTenant attaches the tenant-facing result endpoints.
func (h *ResultHandler) RegisterTenant(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.detail)
	router.Delete("/:id", h.delete)
}

func (h *ResultHandler) verify(c *fiber.Ctx) error {
	publicID := strings.TrimSpace(c.Params("publicId"))
	if publicID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "public id is required")
	}

	result, err := h.service.VerifyByPublicID(c.Context(), publicID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "result verified", result)
}

func (h *ResultHandler) list(c *fiber.Ctx) error {
	results, err := h.service.ListForTenant(c.Context(), tenantIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "results retrieved", results)
}

func (h *ResultHandler) detail(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.GetDetailed(c.Context(), id, tenantIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "result retrieved", result)
}

func (h *ResultHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Context(), id, tenantIDFromContext(c)); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "result deleted", fiber.Map{"id": id})
}

func (h *ResultHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrResultNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "result not found")
	case errors.Is(err, service.ErrTenantNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "tenant not found")
	case errors.Is(err, service.ErrTenantExpired):
		return utils.SendError(c, fiber.StatusForbidden, "trial period expired")
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
