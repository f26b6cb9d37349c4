package checkout

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrIncompleteSelection = errors.New("cart selection incomplete")
	ErrIncompleteContact   = errors.New("contact details incomplete")
	ErrPersistence         = errors.New("order persistence failed")
	ErrPartialCheckout     = errors.New("checkout partially failed")
	ErrOrderNotFound       = errors.New("order not found")
)

// VendorFailure is one vendor whose order could not be written.
type VendorFailure struct {
	Vendor string
	Err    error
}

// PartialCheckoutError reports that some vendor orders were written and others were not.
// Created holds the orders that exist in the ledger; when Compensated is true they were
// marked cancelled afterwards.
type PartialCheckoutError struct {
	Created     []VendorOrder
	Failed      []VendorFailure
	Compensated bool
}

func (e *PartialCheckoutError) Error() string {
	names := make([]string, 0, len(e.Failed))
	for _, f := range e.Failed {
		names = append(names, fmt.Sprintf("%s (%v)", f.Vendor, f.Err))
	}
	return fmt.Sprintf("checkout partially failed: %d created, %d failed: %s",
		len(e.Created), len(e.Failed), strings.Join(names, ", "))
}

func (e *PartialCheckoutError) Unwrap() []error {
	return []error{ErrPartialCheckout, ErrPersistence}
}

// FailedVendors lists the vendor names that were not written.
func (e *PartialCheckoutError) FailedVendors() []string {
	out := make([]string, 0, len(e.Failed))
	for _, f := range e.Failed {
		out = append(out, f.Vendor)
	}
	return out
}
