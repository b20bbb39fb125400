package handlers

import (
	"time"

	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	Auth *services.AuthService
	Cart *services.CartService
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, "login", fiber.Map{"Err": ""})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := ensureSID(c)
	pass := c.FormValue("password")
	email, ok := validate.Email(c.FormValue("email"))
	if !ok {
		applog.Security(c, "auth.login.fail", map[string]any{"email": c.FormValue("email"), "reason": "bad_format"})
		return c.Status(401).Render("login", fiber.Map{"Err": "Invalid email or password"})
	}

	u, err := h.Auth.Login(sid, email, pass)
	if err != nil {
		applog.Security(c, "auth.login.fail", map[string]any{"email": email})
		return c.Status(401).Render("login", fiber.Map{"Err": "Invalid email or password"})
	}

	// Best-effort cart reconciliation: a merge failure must never block the
	// login, so it is logged and swallowed.
	if err := h.Cart.MergeOnLogin(sid, u.ID); err != nil {
		applog.Error(c, "cart.merge.fail", err, map[string]any{"user": u.ID})
	}

	applog.Audit(c, "auth.login.success", map[string]any{"email": email})
	if next := c.Query("next"); next != "" && next[0] == '/' {
		return c.Redirect(next)
	}
	return c.Redirect("/")
}

func (h *AuthHandler) RegisterForm(c *fiber.Ctx) error {
	return render(c, "register", fiber.Map{"Err": ""})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	sid := ensureSID(c)

	username, ok := validate.Username(c.FormValue("username"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).Render("register", fiber.Map{"Err": "Username must be 3-30 letters, digits, '.' or '_'"})
	}
	email, ok := validate.Email(c.FormValue("email"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).Render("register", fiber.Map{"Err": "Enter a valid email address"})
	}
	if !validate.Password(c.FormValue("password")) {
		return c.Status(fiber.StatusBadRequest).Render("register", fiber.Map{"Err": "Password must be 8+ characters with letters and digits"})
	}

	u, err := h.Auth.Register(sid, services.Registration{
		Username:  username,
		Email:     email,
		FirstName: c.FormValue("first_name"),
		LastName:  c.FormValue("last_name"),
		Password:  c.FormValue("password"),
	})
	if err != nil {
		applog.Error(c, "auth.register.fail", err, map[string]any{"email": email})
		return c.Status(fiber.StatusBadRequest).Render("register", fiber.Map{"Err": "Could not create the account. The username or email may be taken."})
	}

	// Registration logs the user in, so the anonymous cart merges here too.
	if err := h.Cart.MergeOnLogin(sid, u.ID); err != nil {
		applog.Error(c, "cart.merge.fail", err, map[string]any{"user": u.ID})
	}

	applog.Audit(c, "auth.register.success", map[string]any{"email": email})
	return c.Redirect("/")
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	_ = h.Auth.Logout(sid)
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   false,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	applog.Audit(c, "auth.logout", map[string]any{"sid": sid})
	return c.Redirect("/")
}
