package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"

	"walk-tracker-system/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

// The validation paths below fail before any DB access, so nil-DB services are
// enough to exercise the HTTP contract.
func newTestApp() *fiber.App {
	app := fiber.New()
	SetupWalkRoutes(app, services.NewStatsService(nil), services.NewAchievementService(nil))
	return app
}

func TestSubmitWalkRequiresUserContext(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest("POST", "/user/walks", strings.NewReader(`{"distance_km":2}`))
	req.Header.Set("Content-Type", "application/json")
	// No X-User-ID — the gateway did not forward auth context

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestSubmitWalkRejectsNonPositiveDistance(t *testing.T) {
	app := newTestApp()

	for _, body := range []string{
		`{"distance_km":0}`,
		`{"distance_km":-1.5}`,
	} {
		req := httptest.NewRequest("POST", "/user/walks", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-User-ID", "7b60bbf1-55c3-43cf-a3d9-85bf99f17e2c")

		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	}
}

func TestSubmitWalkRejectsMalformedDate(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest("POST", "/user/walks",
		strings.NewReader(`{"distance_km":2,"walked_on":"March 5th"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "7b60bbf1-55c3-43cf-a3d9-85bf99f17e2c")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSubmitWalkRejectsInvalidJSON(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest("POST", "/user/walks", strings.NewReader(`{"distance_km":`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "7b60bbf1-55c3-43cf-a3d9-85bf99f17e2c")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
