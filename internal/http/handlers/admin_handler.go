package handlers

import (
	"strconv"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/repos"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	Orders *repos.OrderRepo
	Prods  *repos.ProductRepo
}

func (h *AdminHandler) OrdersPage(c *fiber.Ctx) error {
	orders, err := h.Orders.ListLatest(100)
	if err != nil {
		applog.Error(c, "admin.orders", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load orders"})
	}
	return render(c, "admin_orders", fiber.Map{"Orders": orders})
}

func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	id := c.Params("id")
	status := c.FormValue("status")
	if !domain.ValidOrderStatus(status) {
		return c.Status(fiber.StatusBadRequest).SendString("unknown status")
	}
	if err := h.Orders.UpdateStatus(id, status); err != nil {
		applog.Error(c, "admin.order.status", err, map[string]any{"order_id": id})
		return c.Status(500).SendString("update failed")
	}
	applog.Audit(c, "admin.order.status", map[string]any{"order_id": id, "status": status})
	return c.Redirect("/admin/orders")
}

// UpdateProduct adjusts stock and/or discount; the discount is bound-checked
// into [0,100] before it reaches the database.
func (h *AdminHandler) UpdateProduct(c *fiber.Ctx) error {
	id := c.Params("id")

	if raw := c.FormValue("quantity"); raw != "" {
		qty, err := strconv.Atoi(raw)
		if err != nil || qty < 0 {
			return c.Status(fiber.StatusBadRequest).SendString("invalid quantity")
		}
		if err := h.Prods.SetStock(id, qty); err != nil {
			applog.Error(c, "admin.product.stock", err, map[string]any{"product": id})
			return c.Status(500).SendString("update failed")
		}
	}

	if raw := c.FormValue("discount"); raw != "" {
		d, ok := validate.Discount(raw)
		if !ok {
			return c.Status(fiber.StatusBadRequest).SendString("discount must be between 0 and 100")
		}
		if err := h.Prods.SetDiscount(id, d); err != nil {
			applog.Error(c, "admin.product.discount", err, map[string]any{"product": id})
			return c.Status(500).SendString("update failed")
		}
	}

	applog.Audit(c, "admin.product.update", map[string]any{"product": id})
	return c.Redirect("/admin/orders")
}
