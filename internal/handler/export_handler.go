package handler

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/inkwell-labs/inkwell-admin-api/internal/service"
	"github.com/inkwell-labs/inkwell-admin-api/internal/utils"
)

// ExportHandler serves CSV downloads of activity and post performance.
type ExportHandler struct {
	exports service.ExportService
	logger  zerolog.Logger
	now     func() time.Time
}

// NewExportHandler constructs the handler.
func NewExportHandler(exports service.ExportService, logger zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		exports: exports,
		logger:  logger.With().Str("component", "export_handler").Logger(),
		now:     time.Now,
	}
}

// Register attaches export routes to the router group.
func (h *ExportHandler) Register(router fiber.Router) {
	router.Get("/activity", h.activity)
	router.Get("/posts", h.posts)
}

func (h *ExportHandler) activity(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	days, err := parseTimeRange(c, "days", defaultTimeRangeDays)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid days parameter")
	}

	var staffID *uint
	rawStaffID, err := parseQueryInt(c, "staffId")
	if err != nil || rawStaffID < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid staffId parameter")
	}
	if rawStaffID > 0 {
		id := uint(rawStaffID)
		staffID = &id
	}

	payload, err := h.exports.ActivityCSV(c.Context(), days, staffID)
	if err != nil {
		return sendServiceError(c, logger, err, "failed to export activity")
	}

	return h.sendCSV(c, fmt.Sprintf("activity-export-%s.csv", h.now().UTC().Format("2006-01-02")), payload)
}

func (h *ExportHandler) posts(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	days, err := parseTimeRange(c, "timeRange", defaultTimeRangeDays)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid timeRange parameter")
	}

	payload, err := h.exports.PostPerformanceCSV(c.Context(), days)
	if err != nil {
		return sendServiceError(c, logger, err, "failed to export post performance")
	}

	return h.sendCSV(c, fmt.Sprintf("post-performance-%s.csv", h.now().UTC().Format("2006-01-02")), payload)
}

func (h *ExportHandler) sendCSV(c *fiber.Ctx, filename string, payload []byte) error {
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(payload)
}
