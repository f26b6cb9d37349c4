package checkout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ledger stores vendor orders. Each order and its lines are written in one transaction.
type Ledger interface {
	CreateOrder(ctx context.Context, o *VendorOrder) error
	UpdateStatus(ctx context.Context, orderID string, status Status) error
	GetOrder(ctx context.Context, orderID string) (*VendorOrder, error)
}

type ledger struct {
	db *sql.DB
}

func NewLedger(db *sql.DB) Ledger {
	return &ledger{db: db}
}

const (
	insertOrderSQL = `INSERT INTO orders (id, vendor_name, customer, customer_details, total, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	insertOrderItemSQL = `INSERT INTO order_items (id, order_id, product_id, quantity, price, size)
VALUES ($1, $2, $3, $4, $5, $6)`

	updateStatusSQL = `UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`

	selectOrderSQL = `SELECT id, vendor_name, customer, customer_details, total::text, status, created_at
FROM orders WHERE id = $1`

	selectOrderItemsSQL = `SELECT id, product_id, quantity, price::text, size
FROM order_items WHERE order_id = $1 ORDER BY id`
)

func (l *ledger) CreateOrder(ctx context.Context, o *VendorOrder) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, insertOrderSQL,
		o.ID, o.VendorName, o.Customer, o.CustomerDetails, o.Total.StringFixed(2), string(o.Status), o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range o.Lines {
		it := &o.Lines[i]
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		it.OrderID = o.ID
		_, err = tx.ExecContext(ctx, insertOrderItemSQL,
			it.ID, o.ID, it.ProductID, it.Quantity, it.UnitPrice.StringFixed(2), sql.NullString{String: it.Size, Valid: it.Size != ""})
		if err != nil {
			return fmt.Errorf("insert order_item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (l *ledger) UpdateStatus(ctx context.Context, orderID string, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("invalid order status %q", status)
	}
	res, err := l.db.ExecContext(ctx, updateStatusSQL, string(status), orderID)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if n == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (l *ledger) GetOrder(ctx context.Context, orderID string) (*VendorOrder, error) {
	var (
		o      VendorOrder
		total  string
		status string
	)
	err := l.db.QueryRowContext(ctx, selectOrderSQL, orderID).
		Scan(&o.ID, &o.VendorName, &o.Customer, &o.CustomerDetails, &total, &status, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("select order: %w", err)
	}
	o.Status = Status(status)
	if o.Total, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("parse order total: %w", err)
	}

	rows, err := l.db.QueryContext(ctx, selectOrderItemsSQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("select order_items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			it    OrderLine
			price string
			size  sql.NullString
		)
		if err := rows.Scan(&it.ID, &it.ProductID, &it.Quantity, &price, &size); err != nil {
			return nil, fmt.Errorf("scan order_item: %w", err)
		}
		if it.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parse item price: %w", err)
		}
		it.OrderID = o.ID
		it.Size = size.String
		o.Lines = append(o.Lines, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order_items: %w", err)
	}
	return &o, nil
}
