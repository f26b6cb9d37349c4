package integration

import (
	"context"
	"database/sql"
	"io"
	"log"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/marketplace-cart-go/internal/cart"
)

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func seedProducts(t *testing.T, database *sql.DB) {
	t.Helper()
	_, err := database.Exec(`
INSERT INTO products (id, name, price, sizes, store_name) VALUES
	('shirt', 'Shirt', 20.00, '{S,M,L}', 'Acme'),
	('cap', 'Cap', 12.00, '{}', 'Acme'),
	('mug', 'Mug', 7.50, '{}', 'Pottery')`)
	require.NoError(t, err)
}

func localStore(t *testing.T, name string) *cart.LocalStore {
	t.Helper()
	store, err := cart.OpenLocalStore(filepath.Join(t.TempDir(), name), discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newEngine(t *testing.T, name string, remote cart.Repository, catalog cart.Catalog, changes cart.ChangeSubscriber) *cart.Engine {
	t.Helper()
	e := cart.NewEngine(localStore(t, name), remote, catalog, changes, discardLogger())
	t.Cleanup(e.Close)
	return e
}

type lineView struct {
	ProductID string
	Size      string
	Quantity  int
}

func view(lines []cart.Line) []lineView {
	out := make([]lineView, 0, len(lines))
	for _, l := range lines {
		out = append(out, lineView{ProductID: l.Product.ID, Size: l.Size, Quantity: l.Quantity})
	}
	return out
}

func lookup(t *testing.T, catalog cart.Catalog, ids ...string) map[string]cart.Product {
	t.Helper()
	products, err := catalog.Products(context.Background(), ids)
	require.NoError(t, err)
	require.Len(t, products, len(ids))
	return products
}
