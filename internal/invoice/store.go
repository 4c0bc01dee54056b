package invoice

import (
	"context"
	"errors"
)

var (
	ErrNotFound           = errors.New("invoice: not found")
	ErrValidation         = errors.New("invoice: invalid request")
	ErrNoEligiblePayments = errors.New("invoice: no eligible payments")
	ErrConflict           = errors.New("invoice: payment already invoiced")
)

// ListOpts paginates admin-side invoice listings.
type ListOpts struct {
	ProviderID string
	Limit      int
	Offset     int
}

// Store is the persistence contract for invoices.
//
// Create must be atomic with respect to payment claims: either the invoice
// and every one of its payment claims commit together, or nothing does.
// A payment claimed by an existing invoice fails the whole Create with
// ErrConflict; this is what makes concurrent issuance partition payments
// instead of double-billing them.
type Store interface {
	// NextNumber draws the next value from the global invoice counter.
	NextNumber(ctx context.Context) (int64, error)

	Create(ctx context.Context, inv Invoice) error
	Get(ctx context.Context, id string) (Invoice, error)

	// ClaimedPaymentIDs reports which of the provider's payments already
	// belong to an invoice.
	ClaimedPaymentIDs(ctx context.Context, providerID string) (map[string]struct{}, error)

	// ListByProvider returns invoices ordered by issued_at descending.
	ListByProvider(ctx context.Context, providerID string) ([]Invoice, error)

	// List pages through all invoices, newest first, and returns the total
	// count for the filter.
	List(ctx context.Context, opts ListOpts) ([]Invoice, int, error)
}
