package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-labs/inkwell-admin-api/internal/service"
)

func TestActivityStreamRequiresUpgrade(t *testing.T) {
	stream := service.NewActivityStreamService(nil, "", nil, zerolog.Nop())

	app := fiber.New()
	group := app.Group("/activity")
	NewActivityStreamHandler(stream, zerolog.Nop()).Register(group)

	req := httptest.NewRequest(http.MethodGet, "/activity/live", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}
