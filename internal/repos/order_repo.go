package repos

import (
	"fmt"

	"storefront/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

// InsufficientStockError names the product that could not be fulfilled so the
// user-facing message can point at it.
type InsufficientStockError struct {
	Product string
}

func (e InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q", e.Product)
}

// OrderDraft is the submitted shipping/contact data for a new order.
type OrderDraft struct {
	ID          string
	UserID      string
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	Address     string
}

// PlaceFromCart converts the user's cart into an order atomically: the order
// row, per-line stock decrements, order-item snapshots and the cart wipe all
// commit or roll back together. The stock check is a guarded decrement
// (quantity >= wanted in the UPDATE), so concurrent checkouts cannot oversell.
// Returns the snapshotted items for the payment session.
func (r *OrderRepo) PlaceFromCart(draft OrderDraft) ([]domain.OrderItem, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
		INSERT INTO orders(id, user_id, first_name, last_name, email, phone_number, address, status)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)
	`, draft.ID, draft.UserID, draft.FirstName, draft.LastName, draft.Email, draft.PhoneNumber, draft.Address, domain.OrderCreated); err != nil {
		return nil, err
	}

	type line struct {
		ProductID string          `db:"product_id"`
		Name      string          `db:"name"`
		Price     decimal.Decimal `db:"price"`
		Discount  decimal.Decimal `db:"discount"`
		Quantity  int             `db:"quantity"`
	}
	var lines []line
	if err := tx.Select(&lines, `
		SELECT ci.product_id, p.name, p.price, p.discount, ci.quantity
		FROM cart_items ci JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = ?
		ORDER BY ci.id
	`, draft.UserID); err != nil {
		return nil, err
	}

	items := make([]domain.OrderItem, 0, len(lines))
	for _, l := range lines {
		res, err := tx.Exec(`
			UPDATE products SET quantity = quantity - ?
			WHERE id = ? AND quantity >= ?
		`, l.Quantity, l.ProductID, l.Quantity)
		if err != nil {
			return nil, err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil, InsufficientStockError{Product: l.Name}
		}

		sell := domain.Product{Price: l.Price, Discount: l.Discount}.SellPrice()
		if _, err := tx.Exec(`
			INSERT INTO order_items(order_id, product_id, name, price, quantity)
			VALUES(?, ?, ?, ?, ?)
		`, draft.ID, l.ProductID, l.Name, sell.String(), l.Quantity); err != nil {
			return nil, err
		}
		items = append(items, domain.OrderItem{
			OrderID:   draft.ID,
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     sell,
			Quantity:  l.Quantity,
		})
	}

	if _, err := tx.Exec(`DELETE FROM cart_items WHERE user_id = ?`, draft.UserID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *OrderRepo) Get(orderID string) (domain.Order, []domain.OrderItem, error) {
	var o domain.Order
	if err := r.db.Get(&o, `
		SELECT id, COALESCE(user_id,'') AS user_id, first_name, last_name, email,
		       phone_number, address, status, COALESCE(created_at,'') AS created_at
		FROM orders WHERE id = ?
	`, orderID); err != nil {
		return domain.Order{}, nil, err
	}

	var items []domain.OrderItem
	if err := r.db.Select(&items, `
		SELECT order_id, COALESCE(product_id,'') AS product_id, name, price, quantity
		FROM order_items WHERE order_id = ? ORDER BY name
	`, orderID); err != nil {
		return domain.Order{}, nil, err
	}

	return o, items, nil
}

// HistoryEntry is one order on the profile page, with its precomputed total.
type HistoryEntry struct {
	Order domain.Order
	Items []domain.OrderItem
	Total decimal.Decimal
}

func (e HistoryEntry) computeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range e.Items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total.Round(2)
}

// ListByUser returns the user's orders newest first, paginated, each with its
// item snapshots and total.
func (r *OrderRepo) ListByUser(userID string, limit, offset int) ([]HistoryEntry, error) {
	var orders []domain.Order
	if err := r.db.Select(&orders, `
		SELECT id, COALESCE(user_id,'') AS user_id, first_name, last_name, email,
		       phone_number, address, status, COALESCE(created_at,'') AS created_at
		FROM orders
		WHERE user_id = ?
		ORDER BY datetime(created_at) DESC, id DESC
		LIMIT ? OFFSET ?
	`, userID, limit, offset); err != nil {
		return nil, err
	}

	out := make([]HistoryEntry, 0, len(orders))
	for _, o := range orders {
		var items []domain.OrderItem
		if err := r.db.Select(&items, `
			SELECT order_id, COALESCE(product_id,'') AS product_id, name, price, quantity
			FROM order_items WHERE order_id = ? ORDER BY name
		`, o.ID); err != nil {
			return nil, err
		}
		e := HistoryEntry{Order: o, Items: items}
		e.Total = e.computeTotal()
		out = append(out, e)
	}
	return out, nil
}

func (r *OrderRepo) CountByUser(userID string) (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM orders WHERE user_id = ?`, userID)
	return n, err
}

func (r *OrderRepo) UpdateStatus(orderID, status string) error {
	_, err := r.db.Exec(`UPDATE orders SET status = ? WHERE id = ?`, status, orderID)
	return err
}

func (r *OrderRepo) ListLatest(limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []domain.Order
	err := r.db.Select(&out, `
		SELECT id, COALESCE(user_id,'') AS user_id, first_name, last_name, email,
		       phone_number, address, status, COALESCE(created_at,'') AS created_at
		FROM orders
		ORDER BY datetime(created_at) DESC, id DESC
		LIMIT ?
	`, limit)
	return out, err
}
