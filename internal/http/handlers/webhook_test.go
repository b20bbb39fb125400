package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/repos"
)

func TestWebhook_CompletedSessionMarksOrderPaid(t *testing.T) {
	app, db := newTestApp(t)
	carts := repos.NewCartRepo(db)
	orders := repos.NewOrderRepo(db)

	if err := carts.Upsert(domain.UserOwner("u-demo"), "p-case", 1); err != nil {
		t.Fatal(err)
	}
	if _, err := orders.PlaceFromCart(repos.OrderDraft{
		ID: "o-wh-1", UserID: "u-demo", FirstName: "Demo", LastName: "User",
		Email: "demo@storefront.test", PhoneNumber: "+1 301 555 0100", Address: "1 Main St",
	}); err != nil {
		t.Fatal(err)
	}

	payload := `{"type":"checkout.session.completed","data":{"object":{"metadata":{"order_id":"o-wh-1"}}}}`
	req := httptest.NewRequest("POST", "/payments/webhook", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}

	o, _, err := orders.Get("o-wh-1")
	if err != nil {
		t.Fatal(err)
	}
	if o.Status != domain.OrderPaid {
		t.Fatalf("want PAID, got %s", o.Status)
	}
}

func TestWebhook_IgnoresOtherEventTypes(t *testing.T) {
	app, _ := newTestApp(t)

	payload := `{"type":"invoice.created","data":{"object":{}}}`
	req := httptest.NewRequest("POST", "/payments/webhook", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unhandled events are acknowledged, want 200, got %d", resp.StatusCode)
	}
}

func TestWebhook_UnknownOrderIs404(t *testing.T) {
	app, _ := newTestApp(t)

	payload := `{"type":"checkout.session.completed","data":{"object":{"metadata":{"order_id":"o-nope"}}}}`
	req := httptest.NewRequest("POST", "/payments/webhook", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("want 404, got %d", resp.StatusCode)
	}
}
