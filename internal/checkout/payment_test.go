package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/marketplace-cart-go/internal/cart"
)

type fakeSession struct {
	lines   []cart.Line
	cleared int
}

func (s *fakeSession) Lines() []cart.Line { return s.lines }

func (s *fakeSession) Clear(context.Context) {
	s.cleared++
	s.lines = nil
}

func TestPaymentFlow_OrderRequestedThenApproved(t *testing.T) {
	session := &fakeSession{lines: []cart.Line{line("a1", "A", "10", 1, ""), line("b1", "B", "20", 1, "")}}
	ledger := &fakeLedger{}
	flow := NewPaymentFlow(session, NewDecomposer(ledger, testCodec(t), discardLogger(), DecomposerOptions{}), discardLogger())
	ctx := context.Background()

	amount, err := flow.OnOrderRequested(ctx, validContact())
	require.NoError(t, err)
	assert.Equal(t, "38.39", amount)
	assert.Equal(t, 2, ledger.writes())
	assert.Zero(t, session.cleared, "order request must not clear the cart")

	flow.OnApproved(ctx)
	assert.Equal(t, 1, session.cleared)
}

func TestPaymentFlow_FailureLeavesCart(t *testing.T) {
	session := &fakeSession{lines: []cart.Line{line("a1", "A", "10", 1, "")}}
	flow := NewPaymentFlow(session, NewDecomposer(&fakeLedger{}, testCodec(t), discardLogger(), DecomposerOptions{}), discardLogger())

	flow.OnFailed(context.Background(), errors.New("card declined"))

	assert.Zero(t, session.cleared)
	assert.Len(t, session.lines, 1)
}

func TestPaymentFlow_RejectedCheckoutReturnsNoAmount(t *testing.T) {
	session := &fakeSession{}
	flow := NewPaymentFlow(session, NewDecomposer(&fakeLedger{}, testCodec(t), discardLogger(), DecomposerOptions{}), discardLogger())

	amount, err := flow.OnOrderRequested(context.Background(), validContact())
	require.ErrorIs(t, err, ErrIncompleteSelection)
	assert.Empty(t, amount)
}
