package checkout

import (
	"context"
	"io"
	"log"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/marketplace-cart-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/marketplace-cart-go/internal/pii"
)

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func testCodec(t *testing.T) *pii.Codec {
	t.Helper()
	ring, err := pii.NewKeyring("k1", map[string]string{"k1": "test-secret"})
	require.NoError(t, err)
	return pii.NewCodec(ring)
}

func line(id, store, price string, qty int, size string, sizes ...string) cart.Line {
	return cart.Line{
		Product: cart.Product{
			ID:        id,
			Name:      "Product " + id,
			Price:     decimal.RequireFromString(price),
			StoreName: store,
			Sizes:     sizes,
		},
		Quantity: qty,
		Size:     size,
	}
}

func validContact() ContactBundle {
	return ContactBundle{
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Email:      "ada@example.com",
		Phone:      "+47 555 01234",
		Address:    "1 Analytical Way",
		City:       "Oslo",
		Region:     "Oslo",
		PostalCode: "0150",
		Country:    "NO",
	}
}

// fakeLedger records writes; createFn decides per order whether the write fails.
type fakeLedger struct {
	mu       sync.Mutex
	created  []VendorOrder
	statuses map[string]Status
	createFn func(o *VendorOrder) error
	updateFn func(orderID string, status Status) error
}

func (f *fakeLedger) CreateOrder(_ context.Context, o *VendorOrder) error {
	if f.createFn != nil {
		if err := f.createFn(o); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, *o)
	return nil
}

func (f *fakeLedger) UpdateStatus(_ context.Context, orderID string, status Status) error {
	if f.updateFn != nil {
		if err := f.updateFn(orderID, status); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statuses == nil {
		f.statuses = map[string]Status{}
	}
	f.statuses[orderID] = status
	return nil
}

func (f *fakeLedger) writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}
