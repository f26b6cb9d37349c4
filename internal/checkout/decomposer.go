package checkout

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/andreasstove999/ecommerce-system/marketplace-cart-go/internal/cart"
)

type DecomposerOptions struct {
	// MaxConcurrency bounds parallel vendor writes. Values below 1 mean one at a time.
	MaxConcurrency int
	// CompensatePartial cancels the vendor orders that were written when another vendor fails.
	CompensatePartial bool
}

// Decomposer splits a cart into one pending order per vendor.
type Decomposer struct {
	ledger OrderWriter
	codec  ContactCodec
	logger *log.Logger
	opts   DecomposerOptions
	now    func() time.Time
}

// OrderWriter is the part of Ledger the decomposer needs.
type OrderWriter interface {
	CreateOrder(ctx context.Context, o *VendorOrder) error
	UpdateStatus(ctx context.Context, orderID string, status Status) error
}

func NewDecomposer(ledger OrderWriter, codec ContactCodec, logger *log.Logger, opts DecomposerOptions) *Decomposer {
	if opts.MaxConcurrency < 1 {
		opts.MaxConcurrency = 1
	}
	return &Decomposer{
		ledger: ledger,
		codec:  codec,
		logger: logger,
		opts:   opts,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Validate checks the cart and contact without writing anything.
func Validate(lines []cart.Line, contact ContactBundle) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: cart is empty", ErrIncompleteSelection)
	}
	for _, l := range lines {
		if l.Product.HasSizes() && l.Size == "" {
			return fmt.Errorf("%w: choose a size for %s", ErrIncompleteSelection, l.Product.Name)
		}
	}
	if missing := contact.missingFields(); len(missing) > 0 {
		return fmt.Errorf("%w: missing %v", ErrIncompleteContact, missing)
	}
	return nil
}

type vendorGroup struct {
	vendor string
	lines  []cart.Line
}

// groupByVendor partitions lines by store name in first-occurrence order.
func groupByVendor(lines []cart.Line) []vendorGroup {
	var groups []vendorGroup
	index := map[string]int{}
	for _, l := range lines {
		i, ok := index[l.Product.StoreName]
		if !ok {
			i = len(groups)
			index[l.Product.StoreName] = i
			groups = append(groups, vendorGroup{vendor: l.Product.StoreName})
		}
		groups[i].lines = append(groups[i].lines, l)
	}
	return groups
}

// Decompose validates, encrypts the contact once and writes one order per vendor.
// It never touches the cart. If some vendor writes fail the result is a
// *PartialCheckoutError; nothing is rolled back unless compensation is enabled.
func (d *Decomposer) Decompose(ctx context.Context, lines []cart.Line, contact ContactBundle) ([]VendorOrder, error) {
	if err := Validate(lines, contact); err != nil {
		return nil, err
	}

	sealed, err := EncryptContact(d.codec, contact)
	if err != nil {
		return nil, err
	}

	groups := groupByVendor(lines)
	orders := make([]VendorOrder, len(groups))
	errs := make([]error, len(groups))
	createdAt := d.now()

	for i, g := range groups {
		orders[i] = buildOrder(g, contact.DisplayName(), sealed, createdAt)
	}

	var eg errgroup.Group
	eg.SetLimit(d.opts.MaxConcurrency)
	for i := range orders {
		i := i
		eg.Go(func() error {
			if err := d.ledger.CreateOrder(ctx, &orders[i]); err != nil {
				errs[i] = err
			}
			return nil
		})
	}
	_ = eg.Wait()

	var (
		created []VendorOrder
		failed  []VendorFailure
	)
	for i, o := range orders {
		if errs[i] != nil {
			d.logger.Printf("create order for vendor %q: %v", o.VendorName, errs[i])
			failed = append(failed, VendorFailure{Vendor: o.VendorName, Err: errs[i]})
			continue
		}
		created = append(created, o)
	}
	if len(failed) == 0 {
		return created, nil
	}

	perr := &PartialCheckoutError{Created: created, Failed: failed}
	if d.opts.CompensatePartial {
		perr.Compensated = d.compensate(ctx, perr.Created)
	}
	return nil, perr
}

func buildOrder(g vendorGroup, customer, sealed string, createdAt time.Time) VendorOrder {
	o := VendorOrder{
		ID:              uuid.NewString(),
		VendorName:      g.vendor,
		Customer:        customer,
		CustomerDetails: sealed,
		Total:           decimal.Zero,
		Status:          StatusPending,
		CreatedAt:       createdAt,
	}
	for _, l := range g.lines {
		o.Total = o.Total.Add(l.Subtotal())
		o.Lines = append(o.Lines, OrderLine{
			ID:        uuid.NewString(),
			OrderID:   o.ID,
			ProductID: l.Product.ID,
			Quantity:  l.Quantity,
			UnitPrice: l.Product.Price,
			Size:      l.Size,
		})
	}
	return o
}

// compensate marks created orders cancelled. It reports whether all of them were.
func (d *Decomposer) compensate(ctx context.Context, created []VendorOrder) bool {
	ok := true
	for i := range created {
		if err := d.ledger.UpdateStatus(ctx, created[i].ID, StatusCancelled); err != nil {
			d.logger.Printf("cancel order %s for vendor %q: %v", created[i].ID, created[i].VendorName, err)
			ok = false
			continue
		}
		created[i].Status = StatusCancelled
	}
	return ok
}
