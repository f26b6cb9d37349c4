package cart

import (
	"context"
	"io"
	"log"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocalStore(t *testing.T) *LocalStore {
	t.Helper()

	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	s, err := NewLocalStore(db, log.New(io.Discard, "", 0))
	require.NoError(t, err)
	return s
}

func TestLocalStore_LoadMissingSlotIsEmpty(t *testing.T) {
	s := newTestLocalStore(t)

	lines, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, lines)
	assert.NotNil(t, lines)
}

func TestLocalStore_SaveThenLoad(t *testing.T) {
	s := newTestLocalStore(t)
	ctx := context.Background()

	saved := []Line{
		{Product: product("p1", "Acme", "12.50", "S", "M"), Quantity: 2, Size: "M"},
		{Product: product("p2", "Other", "3"), Quantity: 1},
	}
	require.NoError(t, s.Save(ctx, saved))
	require.NoError(t, s.Save(ctx, saved[:1]))

	lines, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "p1", lines[0].Product.ID)
	assert.Equal(t, "Acme", lines[0].Product.StoreName)
	assert.Equal(t, []string{"S", "M"}, lines[0].Product.Sizes)
	assert.Equal(t, "12.5", lines[0].Product.Price.String())
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, "M", lines[0].Size)
}

func TestLocalStore_CorruptSlotIsEmpty(t *testing.T) {
	s := newTestLocalStore(t)
	ctx := context.Background()

	_, err := s.db.ExecContext(ctx, `INSERT INTO local_slots (key, value) VALUES (?, ?)`, LocalSlotKey, "{not json")
	require.NoError(t, err)

	lines, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestLocalStore_Delete(t *testing.T) {
	s := newTestLocalStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, []Line{{Product: product("p1", "A", "1"), Quantity: 1}}))
	require.NoError(t, s.Delete(ctx))

	lines, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, lines)
}
