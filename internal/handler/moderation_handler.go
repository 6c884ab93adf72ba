package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/inkwell-labs/inkwell-admin-api/internal/dto"
	"github.com/inkwell-labs/inkwell-admin-api/internal/models"
	"github.com/inkwell-labs/inkwell-admin-api/internal/repository"
	"github.com/inkwell-labs/inkwell-admin-api/internal/service"
	"github.com/inkwell-labs/inkwell-admin-api/internal/utils"
)

// ModerationHandler exposes the staff moderation endpoints. The acting staff
// member is resolved from the JWT subject on every call so audit records
// carry a verified actor, not a client-supplied one.
type ModerationHandler struct {
	moderation service.ModerationService
	staff      repository.StaffRepository
	logger     zerolog.Logger
}

// NewModerationHandler constructs the handler.
func NewModerationHandler(moderation service.ModerationService, staff repository.StaffRepository, logger zerolog.Logger) *ModerationHandler {
	return &ModerationHandler{
		moderation: moderation,
		staff:      staff,
		logger:     logger.With().Str("component", "moderation_handler").Logger(),
	}
}

// Register attaches moderation routes to the router group.
func (h *ModerationHandler) Register(router fiber.Router) {
	blogs := router.Group("/blogs")
	blogs.Post("/:id/approve", h.transition(h.moderationApprove))
	blogs.Post("/:id/reject", h.transition(h.moderationReject))
	blogs.Post("/:id/repost", h.transition(h.moderationRepost))
	blogs.Post("/:id/trash", h.transition(h.moderationTrash))
	blogs.Post("/:id/restore", h.transition(h.moderationRestoreBlog))

	reviews := router.Group("/reviews")
	reviews.Post("/:id/hide", h.transition(h.moderationHide))
	reviews.Post("/:id/restore", h.transition(h.moderationRestoreReview))
	reviews.Post("/:id/reply", h.reply)

	tools := router.Group("/tools")
	tools.Post("", h.createTool)
	tools.Put("/:id", h.updateTool)
	tools.Delete("/:id", h.deleteTool)
}

type moderationFunc func(ctx context.Context, actor models.StaffMember, id uint, req dto.ModerationRequest) (dto.ModerationResult, error)

func (h *ModerationHandler) moderationApprove(ctx context.Context, actor models.StaffMember, id uint, req dto.ModerationRequest) (dto.ModerationResult, error) {
	return h.moderation.ApproveBlog(ctx, actor, id, req)
}

func (h *ModerationHandler) moderationReject(ctx context.Context, actor models.StaffMember, id uint, req dto.ModerationRequest) (dto.ModerationResult, error) {
	return h.moderation.RejectBlog(ctx, actor, id, req)
}

func (h *ModerationHandler) moderationRepost(ctx context.Context, actor models.StaffMember, id uint, req dto.ModerationRequest) (dto.ModerationResult, error) {
	return h.moderation.RepostBlog(ctx, actor, id, req)
}

func (h *ModerationHandler) moderationTrash(ctx context.Context, actor models.StaffMember, id uint, req dto.ModerationRequest) (dto.ModerationResult, error) {
	return h.moderation.TrashBlog(ctx, actor, id, req)
}

func (h *ModerationHandler) moderationRestoreBlog(ctx context.Context, actor models.StaffMember, id uint, req dto.ModerationRequest) (dto.ModerationResult, error) {
	return h.moderation.RestoreBlog(ctx, actor, id, req)
}

func (h *ModerationHandler) moderationHide(ctx context.Context, actor models.StaffMember, id uint, req dto.ModerationRequest) (dto.ModerationResult, error) {
	return h.moderation.HideReview(ctx, actor, id, req)
}

func (h *ModerationHandler) moderationRestoreReview(ctx context.Context, actor models.StaffMember, id uint, req dto.ModerationRequest) (dto.ModerationResult, error) {
	return h.moderation.RestoreReview(ctx, actor, id, req)
}

func (h *ModerationHandler) transition(action moderationFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		logger := requestLogger(h.logger, c)

		id, err := parseParamUint(c, "id")
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid id parameter")
		}

		var req dto.ModerationRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
			}
		}

		actor, ok := h.resolveActor(c)
		if !ok {
			return nil
		}

		result, err := action(c.Context(), actor, id, req)
		if err != nil {
			return sendServiceError(c, logger, err, "failed to apply moderation action")
		}
		return utils.SendSuccess(c, "moderation action applied", result)
	}
}

func (h *ModerationHandler) reply(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	id, err := parseParamUint(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid id parameter")
	}

	var req dto.ReviewReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	actor, ok := h.resolveActor(c)
	if !ok {
		return nil
	}

	result, err := h.moderation.ReplyToReview(c.Context(), actor, id, req)
	if err != nil {
		return sendServiceError(c, logger, err, "failed to reply to review")
	}
	return utils.SendSuccess(c, "reply posted", result)
}

func (h *ModerationHandler) createTool(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	var req dto.ToolCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	actor, ok := h.resolveActor(c)
	if !ok {
		return nil
	}

	result, err := h.moderation.CreateTool(c.Context(), actor, req)
	if err != nil {
		return sendServiceError(c, logger, err, "failed to create tool")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "tool created", result)
}

func (h *ModerationHandler) updateTool(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	id, err := parseParamUint(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid id parameter")
	}

	var req dto.ToolUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	actor, ok := h.resolveActor(c)
	if !ok {
		return nil
	}

	result, err := h.moderation.UpdateTool(c.Context(), actor, id, req)
	if err != nil {
		return sendServiceError(c, logger, err, "failed to update tool")
	}
	return utils.SendSuccess(c, "tool updated", result)
}

func (h *ModerationHandler) deleteTool(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	id, err := parseParamUint(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid id parameter")
	}

	var req dto.ModerationRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
		}
	}

	actor, ok := h.resolveActor(c)
	if !ok {
		return nil
	}

	result, err := h.moderation.DeleteTool(c.Context(), actor, id, req)
	if err != nil {
		return sendServiceError(c, logger, err, "failed to delete tool")
	}
	return utils.SendSuccess(c, "tool deleted", result)
}

// resolveActor loads the authenticated staff member. On failure it writes
// the error response itself and reports ok=false.
func (h *ModerationHandler) resolveActor(c *fiber.Ctx) (models.StaffMember, bool) {
	actorID := userIDFromContext(c)
	if actorID == 0 {
		_ = utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		return models.StaffMember{}, false
	}

	actor, err := h.staff.GetByID(c.Context(), actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = utils.SendError(c, fiber.StatusForbidden, "staff account required")
			return models.StaffMember{}, false
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to resolve acting staff member")
		_ = utils.SendError(c, fiber.StatusInternalServerError, "failed to resolve staff account")
		return models.StaffMember{}, false
	}
	return actor, true
}
