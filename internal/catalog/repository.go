package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/marketplace-cart-go/internal/cart"
)

// DBPool matches the methods from *pgxpool.Pool that we use.
type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const productsByIDSQL = `
SELECT id, name, description, category, price::text, images, sizes, store_name, free_shipping
FROM products
WHERE id = ANY($1)`

// PostgresCatalog resolves product snapshots from the products table.
type PostgresCatalog struct {
	pool DBPool
}

func NewPostgresCatalog(pool DBPool) *PostgresCatalog {
	return &PostgresCatalog{pool: pool}
}

// Products returns the snapshots found for ids. Missing ids are simply absent.
func (c *PostgresCatalog) Products(ctx context.Context, ids []string) (map[string]cart.Product, error) {
	out := make(map[string]cart.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := c.pool.Query(ctx, productsByIDSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p     cart.Product
			price string
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &price, &p.Images, &p.Sizes, &p.StoreName, &p.FreeShipping); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.Price, err = decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("parse price of %s: %w", p.ID, err)
		}
		out[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return out, nil
}
