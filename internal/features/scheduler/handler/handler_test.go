package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pronto-sync/internal/features/scheduler/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTicker is a mock implementation of Ticker
type MockTicker struct {
	mock.Mock
}

func (m *MockTicker) Trigger(ctx context.Context) service.TickReport {
	return m.Called(ctx).Get(0).(service.TickReport)
}

func setupApp(ticker *MockTicker, token string) *fiber.App {
	app := fiber.New()
	NewCronHandler(ticker, token).RegisterRoutes(app)
	return app
}

func TestCronHandler_Tick(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		ticker := new(MockTicker)
		app := setupApp(ticker, "s3cret")

		at := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
		ticker.On("Trigger", mock.Anything).Return(service.TickReport{
			At:          at,
			NumberFetch: &service.StepResult{OrderID: 4, Outcome: "succeeded"},
		}).Once()

		req := httptest.NewRequest(http.MethodPost, "/cron/tick", nil)
		req.Header.Set(CronTokenHeader, "s3cret")
		resp, err := app.Test(req)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var report service.TickReport
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
		require.NotNil(t, report.NumberFetch)
		assert.Equal(t, int64(4), report.NumberFetch.OrderID)
		ticker.AssertExpectations(t)
	})

	t.Run("WrongToken", func(t *testing.T) {
		ticker := new(MockTicker)
		app := setupApp(ticker, "s3cret")

		req := httptest.NewRequest(http.MethodPost, "/cron/tick", nil)
		req.Header.Set(CronTokenHeader, "guess")
		resp, err := app.Test(req)

		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		ticker.AssertNotCalled(t, "Trigger", mock.Anything)
	})

	t.Run("DisabledWithoutToken", func(t *testing.T) {
		ticker := new(MockTicker)
		app := setupApp(ticker, "")

		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/cron/tick", nil))

		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		ticker.AssertNotCalled(t, "Trigger", mock.Anything)
	})
}
