package repos

import (
	"strings"

	"storefront/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

// ListFilter carries the optional catalog query parameters. Zero values mean
// "no filter"; Sort must already be whitelisted by the caller.
type ListFilter struct {
	Query        string
	CategorySlug string
	OnSale       bool
	Sort         string
}

const productCols = `id, category_id, name, slug, description, price, discount, quantity, active,
    COALESCE(created_at,'') AS created_at`

func (r *ProductRepo) Get(id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `SELECT `+productCols+` FROM products WHERE id = ?`, id)
	return p, err
}

func (r *ProductRepo) BySlug(slug string) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `SELECT `+productCols+` FROM products WHERE slug = ? AND active = 1`, slug)
	return p, err
}

func filterClause(f ListFilter) (string, []any) {
	where := `active = 1`
	args := []any{}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		where += ` AND (LOWER(name) LIKE ? OR LOWER(description) LIKE ?)`
		args = append(args, "%"+q+"%", "%"+q+"%")
	}
	if f.CategorySlug != "" {
		where += ` AND category_id IN (SELECT id FROM categories WHERE slug = ?)`
		args = append(args, f.CategorySlug)
	}
	if f.OnSale {
		where += ` AND discount > 0`
	}
	return where, args
}

// orderClause maps a whitelisted sort key to SQL; everything else falls back
// to id ASC, and id always tie-breaks so pagination is stable.
func orderClause(sort string) string {
	switch sort {
	case "price":
		return `price ASC, id ASC`
	case "-price":
		return `price DESC, id ASC`
	case "name":
		return `LOWER(name) ASC, id ASC`
	case "-name":
		return `LOWER(name) DESC, id ASC`
	}
	return `id ASC`
}

func (r *ProductRepo) List(f ListFilter, limit, offset int) ([]domain.Product, error) {
	where, args := filterClause(f)
	query := `SELECT ` + productCols + ` FROM products WHERE ` + where +
		` ORDER BY ` + orderClause(f.Sort) + ` LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	var out []domain.Product
	err := r.db.Select(&out, query, args...)
	return out, err
}

func (r *ProductRepo) Count(f ListFilter) (int, error) {
	where, args := filterClause(f)
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM products WHERE `+where, args...)
	return n, err
}

// SetStock is the admin stock adjustment.
func (r *ProductRepo) SetStock(id string, qty int) error {
	_, err := r.db.Exec(`UPDATE products SET quantity = ? WHERE id = ?`, qty, id)
	return err
}

// SetDiscount expects a bound-checked discount percent.
func (r *ProductRepo) SetDiscount(id string, d decimal.Decimal) error {
	_, err := r.db.Exec(`UPDATE products SET discount = ? WHERE id = ?`, d.String(), id)
	return err
}
