package handler

import (
	"bytes"
	"html/template"
	"net/http"
	"strconv"

	"pronto-sync/internal/core/apperror"
	"pronto-sync/internal/core/logger"
	"pronto-sync/internal/core/server"
	"pronto-sync/internal/features/approval/domain"
	"pronto-sync/internal/features/approval/ports"
	orders "pronto-sync/internal/features/orders/domain"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var pageTmpl = template.Must(template.New("dealer_page").Parse(`<!DOCTYPE html>
<html><head><title>Order #{{.OrderID}}</title></head>
<body style="font-family:Arial,sans-serif">
<h2>Order #{{.OrderID}}</h2>
<p>{{.Message}}</p>
{{if .RayID}}<p style="color:#777">Reference: {{.RayID}}</p>{{end}}
</body></html>`))

type page struct {
	OrderID string
	Message string
	RayID   string
}

// DealerHandler serves the accept/decline links sent to dealers.
type DealerHandler struct {
	service ports.DecisionService
}

// NewDealerHandler creates a new DealerHandler.
func NewDealerHandler(service ports.DecisionService) *DealerHandler {
	return &DealerHandler{
		service: service,
	}
}

// RegisterRoutes mounts the dealer endpoint.
func (h *DealerHandler) RegisterRoutes(app fiber.Router) {
	app.Get("/dealer/orders/:id/:action", h.HandleAction)
}

// HandleAction handles GET /dealer/orders/:id/:action?token=...
// @Summary Record a dealer decision
// @Description Target of the signed accept/decline links emailed to dealers. Renders an HTML confirmation page.
// @Tags dealer
// @Produce html
// @Param id path int true "Order ID"
// @Param action path string true "Decision" Enums(accept, decline)
// @Param token query string true "Signed single-use action token"
// @Success 200 {string} string "Confirmation page"
// @Failure 400 {string} string "Invalid link"
// @Failure 403 {string} string "Expired or used link"
// @Failure 409 {string} string "Decision already recorded"
// @Router /dealer/orders/{id}/{action} [get]
func (h *DealerHandler) HandleAction(c *fiber.Ctx) error {
	rawID := c.Params("id")
	orderID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || orderID <= 0 {
		return h.render(c, http.StatusBadRequest, rawID, "This link is not valid.")
	}

	action, err := domain.ParseAction(c.Params("action"))
	if err != nil {
		return h.render(c, http.StatusBadRequest, rawID, "This link is not valid.")
	}

	token := c.Query("token")
	if token == "" {
		return h.render(c, http.StatusForbidden, rawID, "This link is missing its signature.")
	}

	state, err := h.service.HandleAction(server.Context(c), orderID, action, token)
	if err != nil {
		return h.render(c, apperror.HTTPStatus(err), rawID, failureMessage(err, state))
	}

	return h.render(c, http.StatusOK, rawID, successMessage(state))
}

func (h *DealerHandler) render(c *fiber.Ctx, status int, orderID, message string) error {
	data := page{OrderID: orderID, Message: message}
	if status != http.StatusOK {
		data.RayID = server.RayID(c)
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		logger.Get().Error("Failed to render dealer page", zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(server.ErrorResponse{
			Message: "Internal Server Error",
			RayID:   server.RayID(c),
		})
	}

	c.Type("html", "utf-8")
	return c.Status(status).Send(buf.Bytes())
}

func successMessage(state orders.GateState) string {
	switch state {
	case orders.GateAccepted:
		return "Thank you. You accepted this order; please ship it to the customer within 48 hours."
	case orders.GateDeclined:
		return "Thank you. The order will be shipped from head office."
	default:
		return "Your answer was recorded."
	}
}

func failureMessage(err error, state orders.GateState) string {
	switch apperror.HTTPStatus(err) {
	case http.StatusConflict:
		if state == orders.GateAccepted || state == orders.GateDeclined || state == orders.GateTimedOut {
			return "A decision for this order was already recorded (" + string(state) + ")."
		}
		return "This order is no longer waiting for a decision."
	case http.StatusForbidden:
		return "This link has expired or was already used."
	case http.StatusNotFound:
		return "This order could not be found."
	default:
		return "Something went wrong. Please try again later."
	}
}
