package domain

import "github.com/shopspring/decimal"

type Category struct {
	ID   string `db:"id"`
	Name string `db:"name"`
	Slug string `db:"slug"`
}

type Product struct {
	ID          string          `db:"id"`
	CategoryID  string          `db:"category_id"`
	Name        string          `db:"name"`
	Slug        string          `db:"slug"`
	Description string          `db:"description"`
	Price       decimal.Decimal `db:"price"`
	Discount    decimal.Decimal `db:"discount"` // percent, kept in [0,100]
	Quantity    int             `db:"quantity"`
	Active      bool            `db:"active"`
	CreatedAt   string          `db:"created_at"`
}

var hundred = decimal.NewFromInt(100)

// SellPrice is the price after discount, rounded to 2 decimals.
// A non-positive discount never changes the price.
func (p Product) SellPrice() decimal.Decimal {
	if p.Discount.LessThanOrEqual(decimal.Zero) {
		return p.Price
	}
	factor := decimal.NewFromInt(1).Sub(p.Discount.Div(hundred))
	return p.Price.Mul(factor).Round(2)
}

func (p Product) OnSale() bool {
	return p.Discount.GreaterThan(decimal.Zero)
}

const (
	OrderCreated   = "CREATED"
	OrderPaid      = "PAID"
	OrderOnWay     = "ON_WAY"
	OrderDelivered = "DELIVERED"
)

func ValidOrderStatus(s string) bool {
	switch s {
	case OrderCreated, OrderPaid, OrderOnWay, OrderDelivered:
		return true
	}
	return false
}

type Order struct {
	ID          string `db:"id"`
	UserID      string `db:"user_id"` // empty once the owning user is deleted
	FirstName   string `db:"first_name"`
	LastName    string `db:"last_name"`
	Email       string `db:"email"`
	PhoneNumber string `db:"phone_number"`
	Address     string `db:"address"`
	Status      string `db:"status"`
	CreatedAt   string `db:"created_at"`
}

type OrderItem struct {
	OrderID   string          `db:"order_id"`
	ProductID string          `db:"product_id"`
	Name      string          `db:"name"`
	Price     decimal.Decimal `db:"price"` // sell price at purchase time
	Quantity  int             `db:"quantity"`
}
