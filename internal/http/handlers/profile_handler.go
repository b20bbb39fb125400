package handlers

import (
	"strconv"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/repos"
	"storefront/internal/services"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

const historyPageSize = 5

type ProfileHandler struct {
	Auth   *services.AuthService
	Orders *repos.OrderRepo
}

// Show renders the profile form plus the paginated order history.
func (h *ProfileHandler) Show(c *fiber.Ctx) error {
	u, _ := c.Locals("user").(*domain.User)

	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	total, err := h.Orders.CountByUser(u.ID)
	if err != nil {
		applog.Error(c, "profile.orders.count", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load your orders"})
	}
	totalPages := (total + historyPageSize - 1) / historyPageSize
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}

	history, err := h.Orders.ListByUser(u.ID, historyPageSize, (page-1)*historyPageSize)
	if err != nil {
		applog.Error(c, "profile.orders", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load your orders"})
	}

	return render(c, "profile", fiber.Map{
		"Orders":     history,
		"Page":       page,
		"TotalPages": totalPages,
	})
}

func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	u, _ := c.Locals("user").(*domain.User)

	username, ok := validate.Username(c.FormValue("username"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).Render("profile", fiber.Map{"Err": "Invalid username"})
	}
	email, ok := validate.Email(c.FormValue("email"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).Render("profile", fiber.Map{"Err": "Invalid email"})
	}
	phone := c.FormValue("phone_number")
	if phone != "" {
		if _, ok := validate.Phone(phone); !ok {
			return c.Status(fiber.StatusBadRequest).Render("profile", fiber.Map{"Err": "Invalid phone number"})
		}
	}

	updated := *u
	updated.Username = username
	updated.Email = email
	updated.FirstName = c.FormValue("first_name")
	updated.LastName = c.FormValue("last_name")
	updated.PhoneNumber = phone

	if err := h.Auth.UpdateProfile(&updated); err != nil {
		applog.Error(c, "profile.update", err, nil)
		return c.Status(fiber.StatusBadRequest).Render("profile", fiber.Map{"Err": "Could not update the profile. The username or email may be taken."})
	}
	applog.Audit(c, "profile.update", map[string]any{"user": u.ID})
	return c.Redirect("/profile")
}
