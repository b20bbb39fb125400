package services

import (
	"errors"
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/payments"
	"storefront/internal/repos"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrEmptyCart = errors.New("cart is empty")

type Contact struct {
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	Address     string
}

type CheckoutService struct {
	Carts    *repos.CartRepo
	Orders   *repos.OrderRepo
	Gateway  payments.Gateway
	Domain   string
	Currency string
}

func NewCheckoutService(carts *repos.CartRepo, orders *repos.OrderRepo, gw payments.Gateway, domainURL, currency string) *CheckoutService {
	return &CheckoutService{Carts: carts, Orders: orders, Gateway: gw, Domain: domainURL, Currency: currency}
}

// CheckoutResult carries the committed order id and, when the gateway call
// succeeded, the redirect URL for the hosted payment page.
type CheckoutResult struct {
	OrderID     string
	RedirectURL string
}

var minorUnits = decimal.NewFromInt(100)

// Checkout converts the user's cart into an order and opens a payment session.
// The order, its item snapshots, the stock decrements and the cart wipe are
// one transaction; the gateway call happens only after that commits, so a
// gateway failure leaves a CREATED order behind rather than rolling back.
func (s *CheckoutService) Checkout(userID string, contact Contact) (CheckoutResult, error) {
	lines, err := s.Carts.Lines(domain.UserOwner(userID))
	if err != nil {
		return CheckoutResult{}, err
	}
	if len(lines) == 0 {
		return CheckoutResult{}, ErrEmptyCart
	}

	draft := repos.OrderDraft{
		ID:          uuid.NewString(),
		UserID:      userID,
		FirstName:   contact.FirstName,
		LastName:    contact.LastName,
		Email:       contact.Email,
		PhoneNumber: contact.PhoneNumber,
		Address:     contact.Address,
	}
	items, err := s.Orders.PlaceFromCart(draft)
	if err != nil {
		return CheckoutResult{}, err
	}

	req := payments.CheckoutRequest{
		OrderID:    draft.ID,
		Currency:   s.Currency,
		Items:      make([]payments.LineItem, 0, len(items)),
		SuccessURL: fmt.Sprintf("%s/order-success?order=%s", s.Domain, draft.ID),
		CancelURL:  fmt.Sprintf("%s/order-cancel?order=%s", s.Domain, draft.ID),
	}
	for _, it := range items {
		req.Items = append(req.Items, payments.LineItem{
			Name:       it.Name,
			UnitAmount: it.Price.Mul(minorUnits).IntPart(),
			Quantity:   int64(it.Quantity),
		})
	}

	url, err := s.Gateway.CreateSession(req)
	if err != nil {
		// The order is already committed; surface the failure without undoing it.
		return CheckoutResult{OrderID: draft.ID}, fmt.Errorf("payment session for order %s: %w", draft.ID, err)
	}
	return CheckoutResult{OrderID: draft.ID, RedirectURL: url}, nil
}
