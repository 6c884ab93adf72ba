package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/inkwell-labs/inkwell-admin-api/internal/middleware"
	"github.com/inkwell-labs/inkwell-admin-api/internal/models"
	"github.com/inkwell-labs/inkwell-admin-api/internal/repository"
	"github.com/inkwell-labs/inkwell-admin-api/internal/service"
)

func openHandlerDB(t *testing.T, name string) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.StaffMember{},
		&models.Blog{},
		&models.Tool{},
		&models.Review{},
		&models.ReviewReply{},
		&models.AuditRecord{},
	))
	return db
}

// stubAuth stands in for the JWT middleware: the test request declares its
// identity through headers instead of a signed token.
func stubAuth(c *fiber.Ctx) error {
	if raw := c.Get("X-Test-User"); raw != "" {
		if id, err := strconv.Atoi(raw); err == nil {
			c.Locals("user_id", uint(id))
		}
	}
	if role := c.Get("X-Test-Role"); role != "" {
		c.Locals("user_role", role)
	}
	return c.Next()
}

// newTestApp wires the handlers into the same route layout the router uses.
func newTestApp(t *testing.T, db *gorm.DB) *fiber.App {
	t.Helper()

	logger := zerolog.Nop()

	staffRepo := repository.NewStaffRepository(db)
	blogRepo := repository.NewBlogRepository(db)
	toolRepo := repository.NewToolRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	auditRepo := repository.NewAuditRecordRepository(db)

	activityService := service.NewActivityService(auditRepo, staffRepo, blogRepo, toolRepo, reviewRepo, nil, time.Minute, logger)
	staffAnalytics := service.NewStaffAnalyticsService(activityService, staffRepo, blogRepo, reviewRepo, nil, time.Minute, logger)
	blogAnalytics := service.NewBlogAnalyticsService(blogRepo, staffRepo, nil, time.Minute, logger)
	validate := validator.New(validator.WithRequiredStructEnabled())
	moderationService := service.NewModerationService(blogRepo, reviewRepo, toolRepo, auditRepo, nil, validate, logger)
	exportService := service.NewExportService(activityService, staffRepo, blogRepo, toolRepo, reviewRepo, logger)

	app := fiber.New()
	admin := app.Group("/api/admin", stubAuth)

	analytics := admin.Group("/analytics", middleware.RequireRole("manager", "admin"))
	NewAnalyticsHandler(staffAnalytics, blogAnalytics, logger).Register(analytics)

	NewActivityHandler(activityService, logger).Register(admin)

	exports := admin.Group("/exports", middleware.RequireRole("manager", "admin"))
	NewExportHandler(exportService, logger).Register(exports)

	moderation := admin.Group("/moderation", middleware.RequireRole("writer", "manager", "admin"))
	NewModerationHandler(moderationService, staffRepo, logger).Register(moderation)

	return app
}

func seedHandlerStaff(t *testing.T, db *gorm.DB, id uint, name, role string) models.StaffMember {
	t.Helper()
	member := models.StaffMember{
		ID:     id,
		Name:   name,
		Email:  fmt.Sprintf("%s@inkwell.test", name),
		Role:   role,
		Status: models.StaffStatusActive,
	}
	require.NoError(t, db.Create(&member).Error)
	return member
}

type testRequest struct {
	method string
	path   string
	userID uint
	role   string
	body   io.Reader
}

func send(t *testing.T, app *fiber.App, req testRequest) *http.Response {
	t.Helper()

	httpReq := httptest.NewRequest(req.method, req.path, req.body)
	if req.body != nil {
		httpReq.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if req.userID != 0 {
		httpReq.Header.Set("X-Test-User", strconv.FormatUint(uint64(req.userID), 10))
	}
	if req.role != "" {
		httpReq.Header.Set("X-Test-Role", req.role)
	}

	resp, err := app.Test(httpReq, -1)
	require.NoError(t, err)
	return resp
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	defer resp.Body.Close()

	var payload envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return payload
}
