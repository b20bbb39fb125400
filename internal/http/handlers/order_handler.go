package handlers

import (
	"errors"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/repos"
	"storefront/internal/services"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type OrderHandler struct {
	Cart     *services.CartService
	Checkout *services.CheckoutService
	Orders   *repos.OrderRepo
	Auth     *services.AuthService
}

// CheckoutForm shows the shipping/contact form, prefilled from the profile.
func (h *OrderHandler) CheckoutForm(c *fiber.Ctx) error {
	u, _ := c.Locals("user").(*domain.User)
	view, err := h.Cart.View(domain.UserOwner(u.ID))
	if err != nil {
		applog.Error(c, "checkout.load", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load your cart"})
	}
	if len(view.Lines) == 0 {
		return render(c, "checkout", fiber.Map{"Cart": view, "Err": "Your cart is empty."})
	}
	return render(c, "checkout", fiber.Map{"Cart": view, "Contact": services.Contact{
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
	}})
}

func (h *OrderHandler) contactFromForm(c *fiber.Ctx) (services.Contact, string) {
	first, ok := validate.Name(c.FormValue("first_name"))
	if !ok {
		return services.Contact{}, "first name"
	}
	last, ok := validate.Name(c.FormValue("last_name"))
	if !ok {
		return services.Contact{}, "last name"
	}
	email, ok := validate.Email(c.FormValue("email"))
	if !ok {
		return services.Contact{}, "email"
	}
	phone, ok := validate.Phone(c.FormValue("phone_number"))
	if !ok {
		return services.Contact{}, "phone number"
	}
	address, ok := validate.Address(c.FormValue("address"))
	if !ok {
		return services.Contact{}, "address"
	}
	return services.Contact{
		FirstName:   first,
		LastName:    last,
		Email:       email,
		PhoneNumber: phone,
		Address:     address,
	}, ""
}

// Place runs the checkout transaction and redirects to the hosted payment
// page. Stock failures roll everything back; a gateway failure after commit
// leaves the order recorded and is reported instead.
func (h *OrderHandler) Place(c *fiber.Ctx) error {
	u, _ := c.Locals("user").(*domain.User)

	contact, badField := h.contactFromForm(c)
	if badField != "" {
		applog.Security(c, "validation.fail", map[string]any{"field": badField})
		return c.Status(fiber.StatusBadRequest).Render("checkout", fiber.Map{
			"Err": "Please check the " + badField + " field.",
		})
	}

	result, err := h.Checkout.Checkout(u.ID, contact)
	switch {
	case errors.Is(err, services.ErrEmptyCart):
		return c.Status(fiber.StatusBadRequest).Render("checkout", fiber.Map{
			"Err": "Your cart is empty. There is nothing to order.",
		})
	case err != nil:
		var stockErr repos.InsufficientStockError
		if errors.As(err, &stockErr) {
			applog.Info(c, "order.stock.insufficient", map[string]any{"product": stockErr.Product})
			view, verr := h.Cart.View(domain.UserOwner(u.ID))
			if verr != nil {
				view = services.CartView{}
			}
			return c.Status(fiber.StatusBadRequest).Render("checkout", fiber.Map{
				"Cart":    view,
				"Contact": contact,
				"Err":     "Not enough stock for " + stockErr.Product + ". Please adjust the quantity.",
			})
		}
		if result.OrderID != "" {
			// Order committed but the payment session could not be opened.
			applog.Error(c, "order.payment_session", err, map[string]any{"order_id": result.OrderID})
			return c.Status(fiber.StatusBadGateway).Render("notfound", fiber.Map{
				"Message": "Your order was recorded but the payment page could not be opened. Please try paying from your order history.",
			})
		}
		applog.Error(c, "order.place", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not place your order"})
	}

	applog.Audit(c, "order.place", map[string]any{"order_id": result.OrderID})
	return c.Redirect(result.RedirectURL, fiber.StatusSeeOther)
}

// Success is the payment-gateway return page. The order id travels in the
// tagged success URL rather than in ambient session state.
func (h *OrderHandler) Success(c *fiber.Ctx) error {
	orderID := c.Query("order")
	if orderID == "" {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Order not found"})
	}
	o, items, err := h.Orders.Get(orderID)
	if err != nil {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Order not found"})
	}
	u, _ := c.Locals("user").(*domain.User)
	if u == nil || o.UserID != u.ID {
		applog.Security(c, "access.denied.order", map[string]any{"order_id": orderID})
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Order not found"})
	}
	return render(c, "order_success", fiber.Map{"Order": o, "Items": items})
}

func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	return render(c, "order_cancel", fiber.Map{})
}
