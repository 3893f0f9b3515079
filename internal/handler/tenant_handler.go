package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/examind-dev/examind-api/internal/service"
	"github.com/examind-dev/examind-api/internal/utils"
)

// TenantHandler exposes the tenant account overview.
type TenantHandler struct {
	service service.TenantService
	logger  zerolog.Logger
}

// NewTenantHandler constructs the handler.
func NewTenantHandler(service service.TenantService, logger zerolog.Logger) *TenantHandler {
	return &TenantHandler{
		service: service,
		logger:  logger.With().Str("component", "tenant_handler").Logger(),
	}
}

// Register attaches tenant endpoints to the router group.
func (h *TenantHandler) Register(router fiber.Router) {
	router.Get("/overview", h.overview)
}

func (h *TenantHandler) overview(c *fiber.Ctx) error {
	overview, err := h.service.Overview(c.Context(), tenantIDFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTenantNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "tenant not found")
		default:
			h.logger.Error().Err(err).Msg("internal server error")
			return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
		}
	}

	return utils.SendSuccess(c, "tenant overview retrieved", overview)
}
