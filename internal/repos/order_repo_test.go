package repos_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/repos"
)

func draftFor(userID string) repos.OrderDraft {
	return repos.OrderDraft{
		ID:          "o-1",
		UserID:      userID,
		FirstName:   "Demo",
		LastName:    "User",
		Email:       "demo@storefront.test",
		PhoneNumber: "+1 301 555 0100",
		Address:     "1 Main St",
	}
}

func TestPlaceFromCart_DecrementsStockAndSnapshotsSellPrice(t *testing.T) {
	db := memdb(t)
	carts := repos.NewCartRepo(db)
	orders := repos.NewOrderRepo(db)
	prods := repos.NewProductRepo(db)
	user := domain.UserOwner("u-demo")

	// Pixel 8: 699.00 at 10% off, 8 in stock.
	if err := carts.Upsert(user, "p-pixel8", 2); err != nil {
		t.Fatal(err)
	}

	items, err := orders.PlaceFromCart(draftFor("u-demo"))
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("want 1 item, got %d", len(items))
	}
	if !items[0].Price.Equal(decimal.RequireFromString("629.1")) {
		t.Fatalf("snapshot should be the sell price, got %s", items[0].Price)
	}
	if items[0].Quantity != 2 {
		t.Fatalf("want quantity 2, got %d", items[0].Quantity)
	}

	p, err := prods.Get("p-pixel8")
	if err != nil {
		t.Fatal(err)
	}
	if p.Quantity != 6 {
		t.Fatalf("want stock 6, got %d", p.Quantity)
	}

	lines, _ := carts.Lines(user)
	if len(lines) != 0 {
		t.Fatal("cart should be empty after checkout")
	}

	o, got, err := orders.Get("o-1")
	if err != nil {
		t.Fatal(err)
	}
	if o.Status != domain.OrderCreated {
		t.Fatalf("want status CREATED, got %s", o.Status)
	}
	if len(got) != 1 || got[0].Name != "Pixel 8" {
		t.Fatalf("bad persisted items: %+v", got)
	}
}

func TestPlaceFromCart_InsufficientStockRollsEverythingBack(t *testing.T) {
	db := memdb(t)
	carts := repos.NewCartRepo(db)
	orders := repos.NewOrderRepo(db)
	prods := repos.NewProductRepo(db)
	user := domain.UserOwner("u-demo")

	// Portable Speaker has 15 in stock; ask for more.
	if err := carts.Upsert(user, "p-speaker", 20); err != nil {
		t.Fatal(err)
	}

	_, err := orders.PlaceFromCart(draftFor("u-demo"))
	var stockErr repos.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("want InsufficientStockError, got %v", err)
	}
	if stockErr.Product != "Portable Speaker" {
		t.Fatalf("error should name the product, got %q", stockErr.Product)
	}

	// Nothing committed: stock, cart and orders are untouched.
	p, _ := prods.Get("p-speaker")
	if p.Quantity != 15 {
		t.Fatalf("stock must be unchanged, got %d", p.Quantity)
	}
	lines, _ := carts.Lines(user)
	if len(lines) != 1 || lines[0].Quantity != 20 {
		t.Fatalf("cart must be unchanged, got %+v", lines)
	}
	n, _ := orders.CountByUser("u-demo")
	if n != 0 {
		t.Fatalf("no order should exist, got %d", n)
	}
}

func TestOrderHistory_TotalsAndPagination(t *testing.T) {
	db := memdb(t)
	carts := repos.NewCartRepo(db)
	orders := repos.NewOrderRepo(db)
	user := domain.UserOwner("u-demo")

	// Leather Case: 24.50 at 50% off -> 12.25 each.
	if err := carts.Upsert(user, "p-case", 2); err != nil {
		t.Fatal(err)
	}
	if _, err := orders.PlaceFromCart(draftFor("u-demo")); err != nil {
		t.Fatal(err)
	}

	history, err := orders.ListByUser("u-demo", 5, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 {
		t.Fatalf("want 1 entry, got %d", len(history))
	}
	if !history[0].Total.Equal(decimal.RequireFromString("24.50")) {
		t.Fatalf("want total 24.50, got %s", history[0].Total)
	}

	n, err := orders.CountByUser("u-demo")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("want count 1, got %d", n)
	}
}

func TestUpdateStatus(t *testing.T) {
	db := memdb(t)
	carts := repos.NewCartRepo(db)
	orders := repos.NewOrderRepo(db)

	if err := carts.Upsert(domain.UserOwner("u-demo"), "p-iphone14", 1); err != nil {
		t.Fatal(err)
	}
	if _, err := orders.PlaceFromCart(draftFor("u-demo")); err != nil {
		t.Fatal(err)
	}
	if err := orders.UpdateStatus("o-1", domain.OrderPaid); err != nil {
		t.Fatal(err)
	}
	o, _, err := orders.Get("o-1")
	if err != nil {
		t.Fatal(err)
	}
	if o.Status != domain.OrderPaid {
		t.Fatalf("want PAID, got %s", o.Status)
	}
}
