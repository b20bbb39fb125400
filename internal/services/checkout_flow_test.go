package services_test

import (
	"errors"
	"strings"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/payments"
	"storefront/internal/repos"
	"storefront/internal/services"
)

// fakeGateway records the request it received and returns a canned result.
type fakeGateway struct {
	req payments.CheckoutRequest
	url string
	err error
}

func (g *fakeGateway) CreateSession(req payments.CheckoutRequest) (string, error) {
	g.req = req
	return g.url, g.err
}

func contact() services.Contact {
	return services.Contact{
		FirstName:   "Demo",
		LastName:    "User",
		Email:       "demo@storefront.test",
		PhoneNumber: "+1 301 555 0100",
		Address:     "1 Main St",
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	db := memdb(t)
	gw := &fakeGateway{url: "https://pay.example/session"}
	svc := services.NewCheckoutService(repos.NewCartRepo(db), repos.NewOrderRepo(db), gw, "http://localhost:8080", "usd")

	_, err := svc.Checkout("u-demo", contact())
	if !errors.Is(err, services.ErrEmptyCart) {
		t.Fatalf("want ErrEmptyCart, got %v", err)
	}
}

func TestCheckout_OpensSessionAfterCommit(t *testing.T) {
	db := memdb(t)
	cart := newCartService(db)
	gw := &fakeGateway{url: "https://pay.example/session"}
	svc := services.NewCheckoutService(repos.NewCartRepo(db), repos.NewOrderRepo(db), gw, "http://localhost:8080", "usd")

	// Leather Case: 24.50 at 50% off -> 12.25 each, 1225 cents.
	if _, err := cart.Add(domain.UserOwner("u-demo"), "leather-case", 3); err != nil {
		t.Fatal(err)
	}

	result, err := svc.Checkout("u-demo", contact())
	if err != nil {
		t.Fatal(err)
	}
	if result.RedirectURL != "https://pay.example/session" {
		t.Fatalf("bad redirect: %s", result.RedirectURL)
	}

	if gw.req.Currency != "usd" {
		t.Fatalf("bad currency: %s", gw.req.Currency)
	}
	if len(gw.req.Items) != 1 {
		t.Fatalf("want 1 line item, got %d", len(gw.req.Items))
	}
	it := gw.req.Items[0]
	if it.Name != "Leather Case" || it.UnitAmount != 1225 || it.Quantity != 3 {
		t.Fatalf("bad line item: %+v", it)
	}
	if !strings.Contains(gw.req.SuccessURL, "/order-success?order="+result.OrderID) {
		t.Fatalf("success URL should carry the order id, got %s", gw.req.SuccessURL)
	}

	// The order was committed before the gateway call.
	o, _, err := repos.NewOrderRepo(db).Get(result.OrderID)
	if err != nil {
		t.Fatal(err)
	}
	if o.Status != domain.OrderCreated {
		t.Fatalf("want CREATED, got %s", o.Status)
	}
}

func TestCheckout_GatewayFailureKeepsOrder(t *testing.T) {
	db := memdb(t)
	cart := newCartService(db)
	gw := &fakeGateway{err: errors.New("gateway down")}
	orders := repos.NewOrderRepo(db)
	svc := services.NewCheckoutService(repos.NewCartRepo(db), orders, gw, "http://localhost:8080", "usd")

	if _, err := cart.Add(domain.UserOwner("u-demo"), "pixel-8", 1); err != nil {
		t.Fatal(err)
	}

	result, err := svc.Checkout("u-demo", contact())
	if err == nil {
		t.Fatal("gateway failure should surface")
	}
	if result.OrderID == "" {
		t.Fatal("the committed order id must be returned with the error")
	}
	o, _, err := orders.Get(result.OrderID)
	if err != nil {
		t.Fatal(err)
	}
	if o.Status != domain.OrderCreated {
		t.Fatalf("order should stay CREATED, got %s", o.Status)
	}
}

func TestCheckout_InsufficientStockSurfaces(t *testing.T) {
	db := memdb(t)
	cart := newCartService(db)
	gw := &fakeGateway{url: "https://pay.example/session"}
	svc := services.NewCheckoutService(repos.NewCartRepo(db), repos.NewOrderRepo(db), gw, "http://localhost:8080", "usd")

	// Portable Speaker has 15 in stock.
	owner := domain.UserOwner("u-demo")
	if _, err := cart.Add(owner, "portable-speaker", 10); err != nil {
		t.Fatal(err)
	}
	if _, err := cart.Add(owner, "portable-speaker", 10); err != nil {
		t.Fatal(err)
	}

	_, err := svc.Checkout("u-demo", contact())
	var stockErr repos.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("want InsufficientStockError, got %v", err)
	}
	if gw.req.OrderID != "" {
		t.Fatal("gateway must not be called when the transaction rolls back")
	}

	// The cart survives so the user can adjust it.
	v, err := cart.View(owner)
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Lines) != 1 || v.Lines[0].Quantity != 20 {
		t.Fatalf("cart must be unchanged, got %+v", v.Lines)
	}
}
