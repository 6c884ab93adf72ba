package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/inkwell-labs/inkwell-admin-api/internal/models"
)

func seedPendingBlog(t *testing.T, db *gorm.DB, id uint) models.Blog {
	t.Helper()
	blog := models.Blog{ID: id, Title: "Pending Post", Status: models.BlogStatusPending, AuthorID: 99}
	require.NoError(t, db.Create(&blog).Error)
	return blog
}

func TestApproveBlogEndpoint(t *testing.T) {
	db := openHandlerDB(t, "h_mod_approve")
	app := newTestApp(t, db)

	manager := seedHandlerStaff(t, db, 1, "ola", models.RoleManager)
	blog := seedPendingBlog(t, db, 1)

	resp := send(t, app, testRequest{
		method: http.MethodPost,
		path:   "/api/admin/moderation/blogs/1/approve",
		userID: manager.ID,
		role:   models.RoleManager,
		body:   strings.NewReader(`{"reason":"well sourced"}`),
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	payload := decodeEnvelope(t, resp)
	var result struct {
		TargetType string `json:"target_type"`
		TargetID   uint   `json:"target_id"`
		Status     string `json:"status"`
		Audit      struct {
			Action string `json:"action"`
			Reason string `json:"reason"`
		} `json:"audit"`
	}
	require.NoError(t, json.Unmarshal(payload.Data, &result))
	require.Equal(t, models.TargetBlog, result.TargetType)
	require.Equal(t, blog.ID, result.TargetID)
	require.Equal(t, models.BlogStatusPublished, result.Status)
	require.Equal(t, models.ActionApproved, result.Audit.Action)
	require.Equal(t, "well sourced", result.Audit.Reason)

	var updated models.Blog
	require.NoError(t, db.First(&updated, blog.ID).Error)
	require.Equal(t, models.BlogStatusPublished, updated.Status)

	// Approving again conflicts with the new state.
	resp = send(t, app, testRequest{
		method: http.MethodPost,
		path:   "/api/admin/moderation/blogs/1/approve",
		userID: manager.ID,
		role:   models.RoleManager,
	})
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestModerationUnknownBlog(t *testing.T) {
	db := openHandlerDB(t, "h_mod_missing")
	app := newTestApp(t, db)
	manager := seedHandlerStaff(t, db, 1, "pia", models.RoleManager)

	resp := send(t, app, testRequest{
		method: http.MethodPost,
		path:   "/api/admin/moderation/blogs/404/reject",
		userID: manager.ID,
		role:   models.RoleManager,
	})
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestModerationRequiresIdentity(t *testing.T) {
	db := openHandlerDB(t, "h_mod_auth")
	app := newTestApp(t, db)
	seedPendingBlog(t, db, 1)

	// Role passes RBAC but no subject is present.
	resp := send(t, app, testRequest{
		method: http.MethodPost,
		path:   "/api/admin/moderation/blogs/1/approve",
		role:   models.RoleManager,
	})
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// Subject exists in the token but not in the staff table.
	resp = send(t, app, testRequest{
		method: http.MethodPost,
		path:   "/api/admin/moderation/blogs/1/approve",
		userID: 77,
		role:   models.RoleManager,
	})
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// No role at all never reaches the handler.
	resp = send(t, app, testRequest{
		method: http.MethodPost,
		path:   "/api/admin/moderation/blogs/1/approve",
	})
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestReviewReplyEndpoint(t *testing.T) {
	db := openHandlerDB(t, "h_mod_reply")
	app := newTestApp(t, db)

	writer := seedHandlerStaff(t, db, 1, "quin", models.RoleWriter)
	review := models.Review{ID: 1, ToolID: 2, AuthorName: "Visitor", Rating: 3, Status: models.ReviewStatusVisible}
	require.NoError(t, db.Create(&review).Error)

	resp := send(t, app, testRequest{
		method: http.MethodPost,
		path:   "/api/admin/moderation/reviews/1/reply",
		userID: writer.ID,
		role:   models.RoleWriter,
		body:   strings.NewReader(`{"body":"Thanks, fixed in the latest update."}`),
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var replies []models.ReviewReply
	require.NoError(t, db.Find(&replies).Error)
	require.Len(t, replies, 1)
	require.Equal(t, writer.ID, replies[0].ReplierID)

	// Validation failures surface as 400.
	resp = send(t, app, testRequest{
		method: http.MethodPost,
		path:   "/api/admin/moderation/reviews/1/reply",
		userID: writer.ID,
		role:   models.RoleWriter,
		body:   strings.NewReader(`{"body":""}`),
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestToolEndpoints(t *testing.T) {
	db := openHandlerDB(t, "h_mod_tools")
	app := newTestApp(t, db)
	admin := seedHandlerStaff(t, db, 1, "rae", models.RoleAdmin)

	resp := send(t, app, testRequest{
		method: http.MethodPost,
		path:   "/api/admin/moderation/tools",
		userID: admin.ID,
		role:   models.RoleAdmin,
		body:   strings.NewReader(`{"name":"Outline Builder","slug":"outline-builder","category":"writing"}`),
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	payload := decodeEnvelope(t, resp)
	var created struct {
		TargetID uint   `json:"target_id"`
		Status   string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(payload.Data, &created))
	require.Equal(t, models.ToolStatusActive, created.Status)

	resp = send(t, app, testRequest{
		method: http.MethodPut,
		path:   "/api/admin/moderation/tools/1",
		userID: admin.ID,
		role:   models.RoleAdmin,
		body:   strings.NewReader(`{"status":"archived"}`),
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var tool models.Tool
	require.NoError(t, db.First(&tool, created.TargetID).Error)
	require.Equal(t, models.ToolStatusArchived, tool.Status)

	// Status outside the allowed set is rejected by validation.
	resp = send(t, app, testRequest{
		method: http.MethodPut,
		path:   "/api/admin/moderation/tools/1",
		userID: admin.ID,
		role:   models.RoleAdmin,
		body:   strings.NewReader(`{"status":"retired"}`),
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = send(t, app, testRequest{
		method: http.MethodDelete,
		path:   "/api/admin/moderation/tools/1",
		userID: admin.ID,
		role:   models.RoleAdmin,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	err := db.First(&models.Tool{}, created.TargetID).Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
