package handler

import (
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-labs/inkwell-admin-api/internal/models"
)

func TestActivityExportEndpoint(t *testing.T) {
	db := openHandlerDB(t, "h_export_activity")
	app := newTestApp(t, db)

	manager := seedHandlerStaff(t, db, 1, "kim", models.RoleManager)
	record := models.AuditRecord{
		ActorID:    manager.ID,
		ActorName:  manager.Name,
		ActorRole:  manager.Role,
		Action:     models.ActionApproved,
		TargetType: models.TargetBlog,
		TargetID:   1,
		CreatedAt:  time.Now().UTC().Add(-time.Hour),
	}
	require.NoError(t, db.Create(&record).Error)

	resp := send(t, app, testRequest{
		method: http.MethodGet,
		path:   "/api/admin/exports/activity?days=7",
		userID: manager.ID,
		role:   models.RoleManager,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/csv")
	require.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "attachment")
	require.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), ".csv")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	text := string(body)
	require.True(t, strings.HasPrefix(text, "\uFEFF"))
	require.Contains(t, text, "Staff Name")

	lines := strings.Split(strings.TrimSpace(text), "\n")
	require.Len(t, lines, 2)
}

func TestActivityExportForStaffMember(t *testing.T) {
	db := openHandlerDB(t, "h_export_staff")
	app := newTestApp(t, db)
	manager := seedHandlerStaff(t, db, 1, "lee", models.RoleManager)

	resp := send(t, app, testRequest{
		method: http.MethodGet,
		path:   "/api/admin/exports/activity?days=7&staffId=404",
		userID: manager.ID,
		role:   models.RoleManager,
	})
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestPostExportEndpoint(t *testing.T) {
	db := openHandlerDB(t, "h_export_posts")
	app := newTestApp(t, db)
	manager := seedHandlerStaff(t, db, 1, "mia", models.RoleManager)

	resp := send(t, app, testRequest{
		method: http.MethodGet,
		path:   "/api/admin/exports/posts?timeRange=30",
		userID: manager.ID,
		role:   models.RoleManager,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	// Header-only file when no posts exist in the window.
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	require.Len(t, lines, 1)
	require.Contains(t, lines[0], "Engagement Rate (%)")
}

func TestExportsForbiddenForWriter(t *testing.T) {
	db := openHandlerDB(t, "h_export_rbac")
	app := newTestApp(t, db)
	writer := seedHandlerStaff(t, db, 1, "noa", models.RoleWriter)

	resp := send(t, app, testRequest{
		method: http.MethodGet,
		path:   "/api/admin/exports/activity",
		userID: writer.ID,
		role:   models.RoleWriter,
	})
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
