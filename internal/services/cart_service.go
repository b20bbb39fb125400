package services

import (
	"storefront/internal/domain"
	"storefront/internal/repos"

	"github.com/shopspring/decimal"
)

type CartService struct {
	Carts *repos.CartRepo
	Prods *repos.ProductRepo
}

func NewCartService(carts *repos.CartRepo, prods *repos.ProductRepo) *CartService {
	return &CartService{Carts: carts, Prods: prods}
}

// Add puts a product in the owner's cart; repeat adds increment the line.
func (s *CartService) Add(o domain.CartOwner, productSlug string, qty int) (domain.Product, error) {
	if qty < 1 {
		qty = 1
	}
	p, err := s.Prods.BySlug(productSlug)
	if err != nil {
		return domain.Product{}, err
	}
	return p, s.Carts.Upsert(o, p.ID, qty)
}

type CartView struct {
	Lines         []repos.CartLine
	TotalQuantity int
	TotalPrice    decimal.Decimal
}

func (s *CartService) View(o domain.CartOwner) (CartView, error) {
	lines, err := s.Carts.Lines(o)
	if err != nil {
		return CartView{}, err
	}
	v := CartView{Lines: lines, TotalPrice: decimal.Zero}
	for _, l := range lines {
		v.TotalQuantity += l.Quantity
		v.TotalPrice = v.TotalPrice.Add(l.Subtotal())
	}
	return v, nil
}

// ChangeQuantity adjusts a line by delta; reaching zero removes the line.
// A missing line is a no-op.
func (s *CartService) ChangeQuantity(o domain.CartOwner, lineID int64, delta int) error {
	return s.Carts.AdjustQuantity(o, lineID, delta)
}

// Remove deletes a line; missing rows are a no-op.
func (s *CartService) Remove(o domain.CartOwner, lineID int64) error {
	return s.Carts.Delete(o, lineID)
}

// MergeOnLogin folds the anonymous cart into the user's. Callers treat a
// failure as best-effort: log it and let the login proceed.
func (s *CartService) MergeOnLogin(sessionKey, userID string) error {
	if sessionKey == "" {
		return nil
	}
	return s.Carts.MergeOnLogin(sessionKey, userID)
}
