package payments

import "errors"

// LineItem is one purchasable line handed to the hosted checkout page.
// UnitAmount is in the currency's minor units (cents).
type LineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

// CheckoutRequest describes the payment session to open after an order has
// been committed. SuccessURL and CancelURL are already tagged with the order.
type CheckoutRequest struct {
	OrderID    string
	Currency   string
	Items      []LineItem
	SuccessURL string
	CancelURL  string
}

// Gateway opens a hosted checkout session and returns its redirect URL.
type Gateway interface {
	CreateSession(req CheckoutRequest) (string, error)
}

// Disabled stands in when no gateway credentials are configured. Orders still
// commit; opening the payment session fails.
type Disabled struct{}

func (Disabled) CreateSession(CheckoutRequest) (string, error) {
	return "", errors.New("payment gateway not configured")
}
