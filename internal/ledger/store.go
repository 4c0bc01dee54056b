package ledger

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("ledger: payment not found")
	ErrValidation   = errors.New("ledger: invalid payment")
	ErrNotCompleted = errors.New("ledger: payment not completed")
)

// Store is the persistence contract for payments.
//
// Creation is append-only. The only permitted mutations are the one-way
// completion/release flips and the per-provider visibility flag; both mark
// operations are idempotent so callers may safely retry.
type Store interface {
	Insert(ctx context.Context, p Payment) error
	Get(ctx context.Context, id string) (Payment, error)

	// ListByProvider returns payments ordered by created_at ascending.
	// includeHidden must be true for all balance/invoice computations;
	// hidden is a display concern only.
	ListByProvider(ctx context.Context, providerID string, includeHidden bool) ([]Payment, error)

	// MarkCompleted flips service_completed. Already-completed payments are
	// returned unchanged.
	MarkCompleted(ctx context.Context, id string, at time.Time) (Payment, error)

	// MarkReleased flips released_to_provider. Fails with ErrNotCompleted when
	// the service has not been completed. Already-released payments are
	// returned unchanged.
	MarkReleased(ctx context.Context, id string, at time.Time) (Payment, error)

	// SetHidden toggles visibility for the given provider-owned payments and
	// returns the number of records actually changed.
	SetHidden(ctx context.Context, providerID string, ids []string, hidden bool) (int, error)
}
