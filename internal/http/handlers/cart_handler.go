package handlers

import (
	"fmt"
	"strconv"

	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
	html "github.com/gofiber/template/html/v2"
)

type CartHandler struct {
	Cart  *services.CartService
	Views *html.Engine
}

func isAJAX(c *fiber.Ctx) bool {
	return c.Get("X-Requested-With") == "XMLHttpRequest"
}

// respond sends the JSON envelope for AJAX callers (message, refreshed cart
// component HTML, total quantity) and redirects everyone else back.
func (h *CartHandler) respond(c *fiber.Ctx, message string) error {
	if !isAJAX(c) {
		if ref := c.Get("Referer"); ref != "" {
			return c.Redirect(ref)
		}
		return c.Redirect("/cart")
	}

	view, err := h.Cart.View(cartOwner(c))
	if err != nil {
		applog.Error(c, "cart.view", err, nil)
		return c.Status(500).JSON(fiber.Map{"message": "Could not load your cart"})
	}
	tok, _ := c.Locals("CSRFToken").(string)
	component, err := renderPartial(h.Views, "partials/cart", fiber.Map{"Cart": view, "CSRFToken": tok})
	if err != nil {
		applog.Error(c, "cart.render", err, nil)
		return c.Status(500).JSON(fiber.Map{"message": "Could not load your cart"})
	}
	return c.JSON(fiber.Map{
		"message":             message,
		"cart_component_html": component,
		"total_quantity":      view.TotalQuantity,
	})
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	view, err := h.Cart.View(cartOwner(c))
	if err != nil {
		applog.Error(c, "cart.view", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load your cart"})
	}
	return render(c, "cart", fiber.Map{"Cart": view})
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	slug, ok := validate.Slug(c.Params("product_slug"))
	if !ok {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "This item is no longer available"})
	}
	qty := validate.Qty(c.FormValue("qty", "1"))

	p, err := h.Cart.Add(cartOwner(c), slug, qty)
	if err != nil {
		applog.Error(c, "cart.add", err, map[string]any{"product": slug})
		return c.Status(404).Render("notfound", fiber.Map{"Message": "This item is no longer available"})
	}
	applog.Info(c, "cart.add", map[string]any{"product": p.ID, "qty": qty})
	return h.respond(c, fmt.Sprintf("%s added to your cart.", p.Name))
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("invalid cart item")
	}
	if err := h.Cart.Remove(cartOwner(c), id); err != nil {
		applog.Error(c, "cart.remove", err, map[string]any{"line": id})
		return c.Status(500).SendString("Could not update your cart")
	}
	return h.respond(c, "Item removed from your cart.")
}

// ChangeQuantity handles the +/- buttons; hitting zero removes the line.
func (h *CartHandler) ChangeQuantity(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("invalid cart item")
	}
	delta := 1
	if c.FormValue("op") == "dec" {
		delta = -1
	}
	if err := h.Cart.ChangeQuantity(cartOwner(c), id, delta); err != nil {
		applog.Error(c, "cart.change", err, map[string]any{"line": id})
		return c.Status(500).SendString("Could not update your cart")
	}
	return h.respond(c, "Cart updated.")
}
