package handler

import (
	"context"
	"crypto/subtle"
	"net/http"

	"pronto-sync/internal/core/server"
	"pronto-sync/internal/features/scheduler/service"

	"github.com/gofiber/fiber/v2"
)

// CronTokenHeader carries the shared secret of external tick requests.
const CronTokenHeader = "X-Cron-Token"

// Ticker runs one scheduler pass.
type Ticker interface {
	Trigger(ctx context.Context) service.TickReport
}

// CronHandler exposes the periodic tick to an external cron.
type CronHandler struct {
	ticker Ticker
	token  string
}

// NewCronHandler creates a new CronHandler. An empty token disables the endpoint.
func NewCronHandler(ticker Ticker, token string) *CronHandler {
	return &CronHandler{
		ticker: ticker,
		token:  token,
	}
}

// RegisterRoutes mounts the tick endpoint.
func (h *CronHandler) RegisterRoutes(app fiber.Router) {
	app.Post("/cron/tick", h.Tick)
}

// Tick handles POST /cron/tick.
// @Summary Run one scheduler tick
// @Description Fetches at most one order number, polls one shipment at the checkpoints, advances one approval timer and redelivers one queued alert.
// @Tags scheduler
// @Produce json
// @Security CronToken
// @Success 200 {object} service.TickReport
// @Failure 403 {object} server.ErrorResponse
// @Router /cron/tick [post]
func (h *CronHandler) Tick(c *fiber.Ctx) error {
	given := c.Get(CronTokenHeader)
	if h.token == "" || subtle.ConstantTimeCompare([]byte(given), []byte(h.token)) != 1 {
		return c.Status(http.StatusForbidden).JSON(server.ErrorResponse{
			Message: "invalid cron token",
			RayID:   server.RayID(c),
		})
	}

	report := h.ticker.Trigger(server.Context(c))
	return c.Status(http.StatusOK).JSON(report)
}
