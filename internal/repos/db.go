package repos

import (
	"log"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Seed demo catalog if the DB is empty (idempotent; safe on every start)
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}
	if err := seedUsers(db); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Categories
CREATE TABLE IF NOT EXISTS categories(
  id   TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  slug TEXT NOT NULL UNIQUE
);

-- Products
CREATE TABLE IF NOT EXISTS products(
  id          TEXT PRIMARY KEY,
  category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE RESTRICT,
  name        TEXT NOT NULL,
  slug        TEXT NOT NULL UNIQUE,
  description TEXT NOT NULL DEFAULT '',
  price       NUMERIC NOT NULL CHECK (price >= 0),
  discount    NUMERIC NOT NULL DEFAULT 0 CHECK (discount >= 0 AND discount <= 100),
  quantity    INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
  active      INTEGER NOT NULL DEFAULT 1,
  created_at  TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category_id);
CREATE INDEX IF NOT EXISTS idx_products_name     ON products(LOWER(name));

-- Users & sessions
CREATE TABLE IF NOT EXISTS users(
  id            TEXT PRIMARY KEY,
  username      TEXT NOT NULL UNIQUE,
  email         TEXT NOT NULL UNIQUE,
  first_name    TEXT NOT NULL DEFAULT '',
  last_name     TEXT NOT NULL DEFAULT '',
  phone_number  TEXT NOT NULL DEFAULT '',
  password_hash TEXT NOT NULL,
  role          TEXT NOT NULL DEFAULT 'USER' CHECK (role IN ('USER','ADMIN')),
  created_at    TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS sessions(
  id         TEXT PRIMARY KEY,             -- same value as the 'sid' cookie
  user_id    TEXT NULL REFERENCES users(id) ON DELETE CASCADE,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen  TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);

-- Cart lines: owned by a user OR an anonymous session key, never both.
CREATE TABLE IF NOT EXISTS cart_items(
  id          INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id     TEXT NULL REFERENCES users(id) ON DELETE CASCADE,
  session_key TEXT NULL,
  product_id  TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  quantity    INTEGER NOT NULL CHECK (quantity >= 1),
  created_at  TEXT DEFAULT CURRENT_TIMESTAMP,
  CHECK ((user_id IS NULL) <> (session_key IS NULL))
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_cart_user_product
  ON cart_items(user_id, product_id) WHERE user_id IS NOT NULL;
CREATE UNIQUE INDEX IF NOT EXISTS idx_cart_session_product
  ON cart_items(session_key, product_id) WHERE session_key IS NOT NULL;

-- Orders keep going after user deletion; items are priced snapshots.
CREATE TABLE IF NOT EXISTS orders(
  id           TEXT PRIMARY KEY,
  user_id      TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  first_name   TEXT NOT NULL,
  last_name    TEXT NOT NULL,
  email        TEXT NOT NULL,
  phone_number TEXT NOT NULL,
  address      TEXT NOT NULL,
  status       TEXT NOT NULL DEFAULT 'CREATED'
               CHECK (status IN ('CREATED','PAID','ON_WAY','DELIVERED')),
  created_at   TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_orders_user       ON orders(user_id);
CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at);

CREATE TABLE IF NOT EXISTS order_items(
  order_id   TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  product_id TEXT NULL REFERENCES products(id) ON DELETE SET NULL,
  name       TEXT NOT NULL,
  price      NUMERIC NOT NULL,
  quantity   INTEGER NOT NULL CHECK (quantity >= 1)
);
CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM categories`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo categories/products")

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	tx.MustExec(`INSERT INTO categories(id,name,slug) VALUES
	  ('cat-phones','Smartphones','smartphones'),
	  ('cat-audio','Audio','audio'),
	  ('cat-access','Accessories','accessories')`)

	tx.MustExec(`INSERT INTO products(id,category_id,name,slug,description,price,discount,quantity) VALUES
	  ('p-iphone14','cat-phones','IPhone 14','iphone-14','6.1-inch display, A15 chip',899.00,0,12),
	  ('p-pixel8','cat-phones','Pixel 8','pixel-8','Compact flagship with great camera',699.00,10,8),
	  ('p-buds','cat-audio','Wireless Buds','wireless-buds','In-ear buds with noise cancelling',129.90,25,30),
	  ('p-speaker','cat-audio','Portable Speaker','portable-speaker','Water-resistant bluetooth speaker',59.99,0,15),
	  ('p-case','cat-access','Leather Case','leather-case','Slim case for 6.1-inch phones',24.50,50,40)`)

	return tx.Commit()
}

// seedUsers ensures one USER and one ADMIN exist (idempotent).
func seedUsers(db *sqlx.DB) error {
	type u struct {
		ID, Username, Email, Role, Hash string
	}
	mk := func(id, username, email, role, raw string) u {
		h, _ := bcrypt.GenerateFromPassword([]byte(raw), 12)
		return u{ID: id, Username: username, Email: email, Role: role, Hash: string(h)}
	}

	users := []u{
		mk("u-demo", "demo", "demo@storefront.test", "USER", "Passw0rd!"),
		mk("u-admin", "admin", "admin@storefront.test", "ADMIN", "Passw0rd!"),
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		if _, err := tx.Exec(`
			INSERT INTO users(id,username,email,password_hash,role)
			VALUES(?,?,?,?,?)
			ON CONFLICT(email) DO NOTHING
		`, x.ID, x.Username, x.Email, x.Hash, x.Role); err != nil {
			return err
		}
	}

	return tx.Commit()
}
