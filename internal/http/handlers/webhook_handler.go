package handlers

import (
	"encoding/json"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/repos"

	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v81"
)

type WebhookHandler struct {
	Orders *repos.OrderRepo
}

// Handle consumes payment-gateway events. A completed checkout session moves
// the tagged order to PAID; everything else is acknowledged and ignored.
func (h *WebhookHandler) Handle(c *fiber.Ctx) error {
	var event stripe.Event
	if err := json.Unmarshal(c.Body(), &event); err != nil {
		applog.Error(c, "webhook.decode", err, nil)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad payload"})
	}

	if event.Type != "checkout.session.completed" {
		applog.Info(c, "webhook.ignored", map[string]any{"event_type": string(event.Type)})
		return c.JSON(fiber.Map{"message": "event type not handled"})
	}

	var cs stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
		applog.Error(c, "webhook.session.decode", err, nil)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad payload"})
	}

	orderID := cs.Metadata["order_id"]
	if orderID == "" {
		applog.Security(c, "webhook.missing_order", nil)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing order id"})
	}

	if _, _, err := h.Orders.Get(orderID); err != nil {
		applog.Security(c, "webhook.unknown_order", map[string]any{"order_id": orderID})
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown order"})
	}
	if err := h.Orders.UpdateStatus(orderID, domain.OrderPaid); err != nil {
		applog.Error(c, "webhook.order.paid", err, map[string]any{"order_id": orderID})
		return c.Status(500).JSON(fiber.Map{"error": "update failed"})
	}

	applog.Audit(c, "order.paid", map[string]any{"order_id": orderID})
	return c.SendStatus(fiber.StatusOK)
}
