package handler

import (
	"net/http"
	"strconv"

	"pronto-sync/internal/core/apperror"
	"pronto-sync/internal/core/retry"
	"pronto-sync/internal/core/server"
	syncdomain "pronto-sync/internal/features/sync/domain"
	"pronto-sync/internal/features/sync/ports"

	"github.com/gofiber/fiber/v2"
)

// SyncHandler handles storefront webhooks and administrator sync actions.
type SyncHandler struct {
	processing ports.ProcessingService
	admin      ports.AdminService
}

// NewSyncHandler creates a new SyncHandler.
func NewSyncHandler(processing ports.ProcessingService, admin ports.AdminService) *SyncHandler {
	return &SyncHandler{
		processing: processing,
		admin:      admin,
	}
}

// ProcessingEventRequest is the body of the order-processing webhook.
type ProcessingEventRequest struct {
	OrderID int64 `json:"order_id" validate:"required,gt=0"`
}

// ActionResponse reports the result of an administrator action.
type ActionResponse struct {
	OrderID int64  `json:"order_id"`
	State   string `json:"state"`
	Message string `json:"message"`
}

// RegisterRoutes mounts the webhook on app and the admin actions on admin.
func (h *SyncHandler) RegisterRoutes(app fiber.Router, admin fiber.Router) {
	app.Post("/webhooks/orders/processing", h.OrderProcessing)
	admin.Get("/orders/:id", h.Status)
	admin.Post("/orders/:id/sync", h.ManualSync)
	admin.Post("/orders/:id/fetch", h.ManualFetch)
}

// OrderProcessing handles POST /webhooks/orders/processing.
// @Summary Order reached processing
// @Description Imports the order, runs the international approval gate and submits admitted orders to Pronto. Replays are harmless.
// @Tags sync
// @Accept json
// @Produce json
// @Param request body ProcessingEventRequest true "Order event"
// @Success 200 {object} syncdomain.ProcessingResult
// @Failure 400 {object} server.ErrorResponse
// @Failure 409 {object} server.ErrorResponse
// @Failure 502 {object} server.ErrorResponse
// @Failure 504 {object} server.ErrorResponse
// @Router /webhooks/orders/processing [post]
func (h *SyncHandler) OrderProcessing(c *fiber.Ctx) error {
	var req ProcessingEventRequest
	if err := c.BodyParser(&req); err != nil {
		return server.Error(c, apperror.Validation("invalid request body"))
	}
	if err := server.Validate(req); err != nil {
		return server.Error(c, err)
	}

	result, err := h.processing.OnOrderReachedProcessing(server.Context(c), req.OrderID)
	if err != nil {
		return server.Error(c, err)
	}

	return c.Status(http.StatusOK).JSON(result)
}

// ManualSync handles POST /admin/orders/:id/sync.
// @Summary Send an order to Pronto
// @Description Submits an order that has no Pronto transaction yet, importing it from the storefront when needed.
// @Tags admin
// @Produce json
// @Security AdminBasicAuth
// @Param id path int true "Order ID"
// @Success 200 {object} ActionResponse
// @Failure 400 {object} server.ErrorResponse
// @Failure 409 {object} server.ErrorResponse
// @Failure 502 {object} server.ErrorResponse
// @Router /admin/orders/{id}/sync [post]
func (h *SyncHandler) ManualSync(c *fiber.Ctx) error {
	orderID, err := orderIDParam(c)
	if err != nil {
		return server.Error(c, err)
	}

	state, err := h.admin.ManualSync(server.Context(c), orderID)
	if err != nil {
		return server.Error(c, err)
	}

	return c.Status(http.StatusOK).JSON(ActionResponse{
		OrderID: orderID,
		State:   string(state),
		Message: "Order sent to Pronto",
	})
}

// ManualFetch handles POST /admin/orders/:id/fetch.
// @Summary Fetch the Pronto order number
// @Description Polls Pronto now, ignoring the post-submit delay and the attempt cap. 202 means Pronto has no number yet.
// @Tags admin
// @Produce json
// @Security AdminBasicAuth
// @Param id path int true "Order ID"
// @Success 200 {object} ActionResponse
// @Success 202 {object} ActionResponse
// @Failure 400 {object} server.ErrorResponse
// @Failure 409 {object} server.ErrorResponse
// @Failure 504 {object} server.ErrorResponse
// @Router /admin/orders/{id}/fetch [post]
func (h *SyncHandler) ManualFetch(c *fiber.Ctx) error {
	orderID, err := orderIDParam(c)
	if err != nil {
		return server.Error(c, err)
	}

	outcome, err := h.admin.ManualFetch(server.Context(c), orderID)
	if err != nil && outcome == retry.Retrying {
		// Pronto answered but has no number yet.
		return c.Status(http.StatusAccepted).JSON(ActionResponse{
			OrderID: orderID,
			State:   outcome.String(),
			Message: err.Error(),
		})
	}
	if err != nil {
		return server.Error(c, err)
	}

	return c.Status(http.StatusOK).JSON(ActionResponse{
		OrderID: orderID,
		State:   outcome.String(),
		Message: "Pronto order number received",
	})
}

// Status handles GET /admin/orders/:id.
// @Summary Order sync status
// @Description Returns the stored order with its sync, shipment and approval states and the raw metadata.
// @Tags admin
// @Produce json
// @Security AdminBasicAuth
// @Param id path int true "Order ID"
// @Success 200 {object} syncdomain.StatusView
// @Failure 400 {object} server.ErrorResponse
// @Failure 404 {object} server.ErrorResponse
// @Router /admin/orders/{id} [get]
func (h *SyncHandler) Status(c *fiber.Ctx) error {
	orderID, err := orderIDParam(c)
	if err != nil {
		return server.Error(c, err)
	}

	var view *syncdomain.StatusView
	view, err = h.admin.Status(server.Context(c), orderID)
	if err != nil {
		return server.Error(c, err)
	}

	return c.Status(http.StatusOK).JSON(view)
}

func orderIDParam(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.Validation("invalid order id %q", c.Params("id"))
	}
	return id, nil
}
