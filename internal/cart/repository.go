package cart

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// Row is one persisted cart line without its product snapshot.
type Row struct {
	ID        string
	ProductID string
	Quantity  int
	Size      string
}

// Repository is the server-persisted cart store, scoped by user id.
type Repository interface {
	List(ctx context.Context, userID string) ([]Row, error)
	AddQuantity(ctx context.Context, userID, productID, size string, quantity int) error
	SetQuantity(ctx context.Context, userID, productID, size string, quantity int) error
	Delete(ctx context.Context, userID, productID, size string) error
	DeleteAll(ctx context.Context, userID string) error
	MoveSize(ctx context.Context, userID, productID, fromSize, toSize string, quantity int) error
}

type repo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repo{db: db}
}

const (
	listRowsSQL = `SELECT id, product_id, quantity, size FROM cart_items WHERE user_id = $1 ORDER BY created_at, id`

	addQuantitySQL = `
INSERT INTO cart_items (id, user_id, product_id, quantity, size)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (user_id, product_id, COALESCE(size, '')) DO UPDATE
SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = NOW()`

	setQuantitySQL = `
INSERT INTO cart_items (id, user_id, product_id, quantity, size)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (user_id, product_id, COALESCE(size, '')) DO UPDATE
SET quantity = EXCLUDED.quantity, updated_at = NOW()`

	deleteRowSQL = `DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2 AND size IS NOT DISTINCT FROM $3`

	deleteAllSQL = `DELETE FROM cart_items WHERE user_id = $1`
)

func (r *repo) List(ctx context.Context, userID string) ([]Row, error) {
	rows, err := r.db.QueryContext(ctx, listRowsSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("query cart items: %w", err)
	}
	defer rows.Close()

	out := []Row{}
	for rows.Next() {
		var (
			row  Row
			size sql.NullString
		)
		if err := rows.Scan(&row.ID, &row.ProductID, &row.Quantity, &size); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		row.Size = size.String
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart items: %w", err)
	}
	return out, nil
}

func (r *repo) AddQuantity(ctx context.Context, userID, productID, size string, quantity int) error {
	if _, err := r.db.ExecContext(ctx, addQuantitySQL, uuid.NewString(), userID, productID, quantity, nullSize(size)); err != nil {
		return fmt.Errorf("add cart item: %w", err)
	}
	return nil
}

func (r *repo) SetQuantity(ctx context.Context, userID, productID, size string, quantity int) error {
	if _, err := r.db.ExecContext(ctx, setQuantitySQL, uuid.NewString(), userID, productID, quantity, nullSize(size)); err != nil {
		return fmt.Errorf("set cart item quantity: %w", err)
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, userID, productID, size string) error {
	if _, err := r.db.ExecContext(ctx, deleteRowSQL, userID, productID, nullSize(size)); err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	return nil
}

func (r *repo) DeleteAll(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, deleteAllSQL, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// MoveSize deletes the fromSize row and adds quantity to the toSize row in one transaction,
// so a failure leaves the old row in place.
func (r *repo) MoveSize(ctx context.Context, userID, productID, fromSize, toSize string, quantity int) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin move size: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, deleteRowSQL, userID, productID, nullSize(fromSize)); err != nil {
		return fmt.Errorf("delete old size: %w", err)
	}
	if _, err = tx.ExecContext(ctx, addQuantitySQL, uuid.NewString(), userID, productID, quantity, nullSize(toSize)); err != nil {
		return fmt.Errorf("add new size: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit move size: %w", err)
	}
	return nil
}

func nullSize(size string) sql.NullString {
	return sql.NullString{String: size, Valid: size != ""}
}
