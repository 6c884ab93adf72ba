package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/inkwell-labs/inkwell-admin-api/internal/service"
	"github.com/inkwell-labs/inkwell-admin-api/internal/utils"
)

const (
	defaultActivityDays  = 7
	defaultActivityLimit = 50
)

// ActivityHandler exposes the merged activity log feed.
type ActivityHandler struct {
	activity service.ActivityService
	logger   zerolog.Logger
	now      func() time.Time
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(activity service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		activity: activity,
		logger:   logger.With().Str("component", "activity_handler").Logger(),
		now:      time.Now,
	}
}

// Register attaches the activity log route to the router group.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Get("/activity-logs", h.list)
}

func (h *ActivityHandler) list(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	days, err := parseTimeRange(c, "days", defaultActivityDays)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid days parameter")
	}

	limit, err := parseQueryInt(c, "limit")
	if err != nil || limit < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit parameter")
	}
	if limit == 0 {
		limit = defaultActivityLimit
	}

	now := h.now()
	events, err := h.activity.ListPlatformActivity(c.Context(), now.AddDate(0, 0, -days), now, limit)
	if err != nil {
		return sendServiceError(c, logger, err, "failed to fetch activity logs")
	}
	return utils.SendSuccess(c, "activity logs", events)
}
