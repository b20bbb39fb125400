package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"

	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/http/handlers"
	"storefront/internal/payments"
	"storefront/internal/repos"
	"storefront/internal/services"
)

func newTestApp(t *testing.T) (*fiber.App, *sqlx.DB) {
	t.Helper()
	cfg := config.Config{DBDSN: ":memory:", Domain: "http://localhost:8080", Currency: "usd"}
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	authSvc := &services.AuthService{Users: repos.NewUserRepo(db)}
	authH := &handlers.AuthHandler{Auth: authSvc}

	engine := html.New("../../../web/templates", ".html")
	app := fiber.New(fiber.Config{Views: engine})
	app.Server().MaxRequestBodySize = 1 << 20
	app.Use(requestid.New())
	app.Use(func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := authSvc.CurrentUser(sid); err == nil && u != nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	})
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/payments/webhook"
		},
	}))

	deps := handlers.NewDeps(db, cfg, engine, authSvc, payments.Disabled{})
	authH.Cart = deps.CartHandler.Cart

	app.Get("/catalog", deps.CatalogHandler.List)
	app.Get("/product/:product_slug", deps.ProductHandler.Detail)
	app.Get("/cart", deps.CartHandler.View)
	app.Post("/cart/add/:product_slug", deps.CartHandler.Add)
	app.Get("/checkout", handlers.RequireUser(authSvc), deps.OrderHandler.CheckoutForm)
	app.Get("/login", authH.LoginForm)
	app.Post("/login", authH.Login)
	app.Post("/payments/webhook", deps.WebhookHandler.Handle)

	return app, db
}

func extractCookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// csrfToken primes the csrf cookie via a GET page.
func csrfToken(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", "/login", nil))
	if err != nil {
		t.Fatal(err)
	}
	tok := extractCookie(resp, "csrf_")
	if tok == "" {
		t.Fatal("csrf token missing")
	}
	return tok
}

func TestCartAdd_AJAXEnvelope(t *testing.T) {
	app, _ := newTestApp(t)
	tok := csrfToken(t, app)

	form := strings.NewReader("csrf=" + tok + "&qty=2")
	req := httptest.NewRequest("POST", "/cart/add/iphone-14", form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.AddCookie(&http.Cookie{Name: "csrf_", Value: tok})

	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("want 200, got %d body=%s", resp.StatusCode, body)
	}

	var envelope struct {
		Message           string `json:"message"`
		CartComponentHTML string `json:"cart_component_html"`
		TotalQuantity     int    `json:"total_quantity"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(envelope.Message, "IPhone 14") {
		t.Fatalf("message should name the product, got %q", envelope.Message)
	}
	if envelope.TotalQuantity != 2 {
		t.Fatalf("want total_quantity 2, got %d", envelope.TotalQuantity)
	}
	if !strings.Contains(envelope.CartComponentHTML, "IPhone 14") {
		t.Fatal("cart component should list the product")
	}
}

// A first-contact visitor has no sid cookie yet; the add and the envelope in
// the same request must resolve to the single minted session, and the cookie
// handed back must own the stored line.
func TestCartAdd_FirstContactUsesOneSession(t *testing.T) {
	app, db := newTestApp(t)
	tok := csrfToken(t, app)

	form := strings.NewReader("csrf=" + tok + "&qty=1")
	req := httptest.NewRequest("POST", "/cart/add/wireless-buds", form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.AddCookie(&http.Cookie{Name: "csrf_", Value: tok})

	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	var envelope struct {
		TotalQuantity int `json:"total_quantity"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatal(err)
	}
	if envelope.TotalQuantity != 1 {
		t.Fatalf("envelope should see the line just added, got total_quantity %d", envelope.TotalQuantity)
	}

	sid := extractCookie(resp, "sid")
	if sid == "" {
		t.Fatal("sid cookie not set")
	}
	lines, err := repos.NewCartRepo(db).Lines(domain.SessionOwner(sid))
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 1 || lines[0].Slug != "wireless-buds" {
		t.Fatalf("the returned sid must own the stored line, got %+v", lines)
	}
}

func TestCartAdd_NonAJAXRedirectsBack(t *testing.T) {
	app, _ := newTestApp(t)
	tok := csrfToken(t, app)

	form := strings.NewReader("csrf=" + tok)
	req := httptest.NewRequest("POST", "/cart/add/iphone-14", form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", "/product/iphone-14")
	req.AddCookie(&http.Cookie{Name: "csrf_", Value: tok})

	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("want 302, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/product/iphone-14" {
		t.Fatalf("should bounce back to the referer, got %q", loc)
	}
}

func TestCatalogSearch_CaseInsensitive(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/catalog?q=iphone", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "IPhone 14") {
		t.Fatal("search for 'iphone' should find IPhone 14")
	}
}

func TestCatalogSearch_RejectsBadQuery(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/catalog?q=%3Cscript%3E", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", resp.StatusCode)
	}
}

func TestProductDetail_UnknownSlugIs404(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/product/no-such-item", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("want 404, got %d", resp.StatusCode)
	}
}

func TestCheckout_RequiresLogin(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/checkout", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("want redirect, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/login" {
		t.Fatalf("want /login, got %q", loc)
	}
}
