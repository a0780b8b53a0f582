package core_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// setupTestDB connects to the dedicated test database, truncates every
// table, and seeds two users with a customer, vendor and product each.
// User 1 (alice) is the owner under test; user 2 (bob) exists to prove
// cross-user isolation.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE invoice_items, invoices, purchase_order_items, purchase_orders,
		               expenses, products, customers, vendors, accounts, user_roles, users CASCADE;

		INSERT INTO users (id, username, email, password_hash) VALUES
		(1, 'alice', 'alice@example.com', 'x'),
		(2, 'bob',   'bob@example.com',   'x');
		SELECT setval('users_id_seq', 2);

		INSERT INTO user_roles (user_id, role) VALUES (1, 'user'), (2, 'user');

		INSERT INTO customers (id, user_id, name, email) VALUES
		(1, 1, 'Acme Corp',  'billing@acme.test'),
		(2, 2, 'Bob Client', 'client@bob.test');
		SELECT setval('customers_id_seq', 2);

		INSERT INTO vendors (id, user_id, name, email) VALUES
		(1, 1, 'Paper Supply Co', 'sales@papersupply.test'),
		(2, 2, 'Bob Vendor',      'vendor@bob.test');
		SELECT setval('vendors_id_seq', 2);

		INSERT INTO products (id, user_id, name, sku, unit_price, stock_quantity) VALUES
		(1, 1, 'Widget',     'WID-1', 50.00, 100),
		(2, 1, 'Consulting', NULL,    120.00, 0);
		SELECT setval('products_id_seq', 2);
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}

	return pool
}
