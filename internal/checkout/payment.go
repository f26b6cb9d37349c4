package checkout

import (
	"context"
	"log"

	"github.com/andreasstove999/ecommerce-system/marketplace-cart-go/internal/cart"
)

// CartSession is the cart the payment flow settles. *cart.Engine satisfies it.
type CartSession interface {
	Lines() []cart.Line
	Clear(ctx context.Context)
}

// PaymentFlow wires the payment widget callbacks to the decomposer and the cart.
type PaymentFlow struct {
	cart       CartSession
	decomposer *Decomposer
	logger     *log.Logger
}

func NewPaymentFlow(session CartSession, decomposer *Decomposer, logger *log.Logger) *PaymentFlow {
	return &PaymentFlow{cart: session, decomposer: decomposer, logger: logger}
}

// OnOrderRequested writes the vendor orders for the current cart and returns the
// amount to charge.
func (f *PaymentFlow) OnOrderRequested(ctx context.Context, contact ContactBundle) (string, error) {
	lines := f.cart.Lines()
	orders, err := f.decomposer.Decompose(ctx, lines, contact)
	if err != nil {
		return "", err
	}
	f.logger.Printf("created %d vendor orders", len(orders))
	return Summarize(lines).Amount(), nil
}

// OnApproved empties the cart once the payment is captured.
func (f *PaymentFlow) OnApproved(ctx context.Context) {
	f.cart.Clear(ctx)
}

// OnFailed leaves the cart and any written orders untouched.
func (f *PaymentFlow) OnFailed(_ context.Context, cause error) {
	f.logger.Printf("payment failed: %v", cause)
}
