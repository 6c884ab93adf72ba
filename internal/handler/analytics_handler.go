package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/inkwell-labs/inkwell-admin-api/internal/service"
	"github.com/inkwell-labs/inkwell-admin-api/internal/utils"
)

const defaultTimeRangeDays = 7

// AnalyticsHandler exposes the staff, blog and writer analytics endpoints.
type AnalyticsHandler struct {
	staffAnalytics service.StaffAnalyticsService
	blogAnalytics  service.BlogAnalyticsService
	logger         zerolog.Logger
}

// NewAnalyticsHandler constructs the handler.
func NewAnalyticsHandler(staffAnalytics service.StaffAnalyticsService, blogAnalytics service.BlogAnalyticsService, logger zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		staffAnalytics: staffAnalytics,
		blogAnalytics:  blogAnalytics,
		logger:         logger.With().Str("component", "analytics_handler").Logger(),
	}
}

// Register attaches analytics routes to the router group.
func (h *AnalyticsHandler) Register(router fiber.Router) {
	router.Get("/staff", h.staff)
	router.Get("/blog", h.blog)
	router.Get("/writers", h.writers)
}

func (h *AnalyticsHandler) staff(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	days, err := parseTimeRange(c, "timeRange", defaultTimeRangeDays)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid timeRange parameter")
	}

	staffID, err := parseQueryInt(c, "staffId")
	if err != nil || staffID < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid staffId parameter")
	}

	if staffID > 0 {
		detail, err := h.staffAnalytics.StaffDetail(c.Context(), uint(staffID), days)
		if err != nil {
			return sendServiceError(c, logger, err, "Failed to fetch staff analytics data")
		}
		return utils.SendSuccess(c, "staff analytics", detail)
	}

	overview, err := h.staffAnalytics.Overview(c.Context(), days)
	if err != nil {
		return sendServiceError(c, logger, err, "Failed to fetch staff analytics data")
	}
	return utils.SendSuccess(c, "staff analytics", overview)
}

func (h *AnalyticsHandler) blog(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	days, err := parseTimeRange(c, "timeRange", defaultTimeRangeDays)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid timeRange parameter")
	}

	analytics, err := h.blogAnalytics.BlogAnalytics(c.Context(), days)
	if err != nil {
		return sendServiceError(c, logger, err, "failed to fetch blog analytics")
	}
	return utils.SendSuccess(c, "blog analytics", analytics)
}

func (h *AnalyticsHandler) writers(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	days, err := parseTimeRange(c, "timeRange", defaultTimeRangeDays)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid timeRange parameter")
	}

	analytics, err := h.blogAnalytics.WriterAnalytics(c.Context(), days)
	if err != nil {
		return sendServiceError(c, logger, err, "failed to fetch writer analytics")
	}
	return utils.SendSuccess(c, "writer analytics", analytics)
}
