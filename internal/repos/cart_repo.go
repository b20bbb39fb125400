package repos

import (
	"database/sql"

	"storefront/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

// CartLine is a cart row joined with its product's live pricing.
type CartLine struct {
	ID        int64           `db:"id"`
	ProductID string          `db:"product_id"`
	Name      string          `db:"name"`
	Slug      string          `db:"slug"`
	Quantity  int             `db:"quantity"`
	Price     decimal.Decimal `db:"price"`
	Discount  decimal.Decimal `db:"discount"`
	StockQty  int             `db:"stock_qty"`
}

func (l CartLine) SellPrice() decimal.Decimal {
	return domain.Product{Price: l.Price, Discount: l.Discount}.SellPrice()
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.SellPrice().Mul(decimal.NewFromInt(int64(l.Quantity))).Round(2)
}

func ownerClause(o domain.CartOwner) (string, any) {
	if o.Anonymous() {
		return `session_key = ?`, o.SessionKey
	}
	return `user_id = ?`, o.UserID
}

// Upsert creates the (owner, product) line or adds qty to the existing one.
func (r *CartRepo) Upsert(o domain.CartOwner, productID string, qty int) error {
	if o.Anonymous() {
		_, err := r.db.Exec(`
			INSERT INTO cart_items(session_key, product_id, quantity)
			VALUES(?, ?, ?)
			ON CONFLICT(session_key, product_id) WHERE session_key IS NOT NULL
			DO UPDATE SET quantity = quantity + excluded.quantity
		`, o.SessionKey, productID, qty)
		return err
	}
	_, err := r.db.Exec(`
		INSERT INTO cart_items(user_id, product_id, quantity)
		VALUES(?, ?, ?)
		ON CONFLICT(user_id, product_id) WHERE user_id IS NOT NULL
		DO UPDATE SET quantity = quantity + excluded.quantity
	`, o.UserID, productID, qty)
	return err
}

func (r *CartRepo) Lines(o domain.CartOwner) ([]CartLine, error) {
	clause, arg := ownerClause(o)
	lines := []CartLine{}
	err := r.db.Select(&lines, `
	  SELECT ci.id, ci.product_id, p.name, p.slug, ci.quantity, p.price, p.discount,
	         p.quantity AS stock_qty
	  FROM cart_items ci JOIN products p ON p.id = ci.product_id
	  WHERE ci.`+clause+`
	  ORDER BY ci.id
	`, arg)
	return lines, err
}

// SetQuantity updates a line the owner holds; qty <= 0 removes the line.
func (r *CartRepo) SetQuantity(o domain.CartOwner, lineID int64, qty int) error {
	clause, arg := ownerClause(o)
	if qty <= 0 {
		_, err := r.db.Exec(`DELETE FROM cart_items WHERE id = ? AND `+clause, lineID, arg)
		return err
	}
	_, err := r.db.Exec(`UPDATE cart_items SET quantity = ? WHERE id = ? AND `+clause, qty, lineID, arg)
	return err
}

// AdjustQuantity applies a relative change to a line the owner holds, guarded
// on the live quantity so concurrent +/- clicks cannot lose each other's
// writes. A line reaching zero is removed (the DELETE runs first because the
// quantity CHECK forbids passing through zero); a missing line is a no-op.
func (r *CartRepo) AdjustQuantity(o domain.CartOwner, lineID int64, delta int) error {
	clause, arg := ownerClause(o)
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM cart_items WHERE id = ? AND `+clause+` AND quantity + ? <= 0`,
		lineID, arg, delta); err != nil {
		return err
	}
	if _, err := tx.Exec(`UPDATE cart_items SET quantity = quantity + ? WHERE id = ? AND `+clause,
		delta, lineID, arg); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes a line if the owner holds it; a missing row is a no-op.
func (r *CartRepo) Delete(o domain.CartOwner, lineID int64) error {
	clause, arg := ownerClause(o)
	_, err := r.db.Exec(`DELETE FROM cart_items WHERE id = ? AND `+clause, lineID, arg)
	return err
}

func (r *CartRepo) Clear(o domain.CartOwner) error {
	clause, arg := ownerClause(o)
	_, err := r.db.Exec(`DELETE FROM cart_items WHERE `+clause, arg)
	return err
}

// MergeOnLogin folds the anonymous session's lines into the user's cart:
// quantities add up for products the user already carries, new lines copy
// over, and the anonymous lines are deleted afterwards. One transaction.
func (r *CartRepo) MergeOnLogin(sessionKey, userID string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	type line struct {
		ProductID string `db:"product_id"`
		Quantity  int    `db:"quantity"`
	}
	var lines []line
	if err := tx.Select(&lines, `SELECT product_id, quantity FROM cart_items WHERE session_key = ?`, sessionKey); err != nil {
		return err
	}
	if len(lines) == 0 {
		return tx.Commit()
	}

	for _, l := range lines {
		var existing int64
		err := tx.Get(&existing, `SELECT id FROM cart_items WHERE user_id = ? AND product_id = ?`, userID, l.ProductID)
		switch {
		case err == sql.ErrNoRows:
			if _, err := tx.Exec(`INSERT INTO cart_items(user_id, product_id, quantity) VALUES(?,?,?)`,
				userID, l.ProductID, l.Quantity); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if _, err := tx.Exec(`UPDATE cart_items SET quantity = quantity + ? WHERE id = ?`,
				l.Quantity, existing); err != nil {
				return err
			}
		}
	}

	if _, err := tx.Exec(`DELETE FROM cart_items WHERE session_key = ?`, sessionKey); err != nil {
		return err
	}

	return tx.Commit()
}
