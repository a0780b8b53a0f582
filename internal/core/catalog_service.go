package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type productService struct {
	pool *pgxpool.Pool
}

// NewProductService constructs a ProductService backed by PostgreSQL.
func NewProductService(pool *pgxpool.Pool) ProductService {
	return &productService{pool: pool}
}

const productColumns = "id, user_id, name, description, sku, unit_price, stock_quantity, created_at"

func scanProduct(row pgx.Row) (*Product, error) {
	p := &Product{}
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.SKU,
		&p.UnitPrice, &p.StockQuantity, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *productService) CreateProduct(ctx context.Context, ownerID int, in ProductInput) (*Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	p, err := scanProduct(s.pool.QueryRow(ctx, `
		INSERT INTO products (user_id, name, description, sku, unit_price, stock_quantity)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+productColumns,
		ownerID, in.Name, toPtr(in.Description), toPtr(in.SKU), in.UnitPrice, in.StockQuantity,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("product sku %q: %w", in.SKU, ErrConflict)
		}
		return nil, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

func (s *productService) GetProduct(ctx context.Context, ownerID, productID int) (*Product, error) {
	p, err := scanProduct(s.pool.QueryRow(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = $1", productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("product %d: %w", productID, ErrNotFound)
		}
		return nil, fmt.Errorf("get product %d: %w", productID, err)
	}
	if p.UserID != ownerID {
		return nil, fmt.Errorf("product %d: %w", productID, ErrForbidden)
	}
	return p, nil
}

func (s *productService) ListProducts(ctx context.Context, ownerID int) ([]Product, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+productColumns+" FROM products WHERE user_id = $1 ORDER BY name", ownerID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (s *productService) UpdateProduct(ctx context.Context, ownerID, productID int, in ProductInput) (*Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := s.GetProduct(ctx, ownerID, productID); err != nil {
		return nil, err
	}
	p, err := scanProduct(s.pool.QueryRow(ctx, `
		UPDATE products
		SET name = $1, description = $2, sku = $3, unit_price = $4, stock_quantity = $5
		WHERE id = $6 AND user_id = $7
		RETURNING `+productColumns,
		in.Name, toPtr(in.Description), toPtr(in.SKU), in.UnitPrice, in.StockQuantity,
		productID, ownerID,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("product sku %q: %w", in.SKU, ErrConflict)
		}
		return nil, fmt.Errorf("update product %d: %w", productID, err)
	}
	return p, nil
}

func (s *productService) DeleteProduct(ctx context.Context, ownerID, productID int) error {
	if _, err := s.GetProduct(ctx, ownerID, productID); err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx,
		"DELETE FROM products WHERE id = $1 AND user_id = $2", productID, ownerID,
	); err != nil {
		return fmt.Errorf("delete product %d: %w", productID, err)
	}
	return nil
}
