package withdrawal

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound            = errors.New("withdrawal: not found")
	ErrValidation          = errors.New("withdrawal: invalid request")
	ErrInsufficientBalance = errors.New("withdrawal: insufficient available balance")
	ErrIllegalTransition   = errors.New("withdrawal: illegal status transition")
	ErrConflict            = errors.New("withdrawal: concurrent modification")
)

// Store is the persistence contract for withdrawal requests.
type Store interface {
	Insert(ctx context.Context, w Withdrawal) error
	Get(ctx context.Context, id string) (Withdrawal, error)

	// ListByProvider returns withdrawals ordered by created_at descending,
	// newest first.
	ListByProvider(ctx context.Context, providerID string) ([]Withdrawal, error)

	// UpdateStatus performs a compare-and-set from→to flip. ErrConflict means
	// the row moved out of `from` concurrently; callers re-read and re-check.
	UpdateStatus(ctx context.Context, id string, from, to Status, at time.Time) (Withdrawal, error)

	// Delete removes the given provider-owned withdrawals regardless of status
	// and returns the number of rows actually removed. Deleting approved or
	// completed records restores balance by derivation; no compensating write
	// is needed.
	Delete(ctx context.Context, providerID string, ids []string) (int, error)

	// DeleteAllForProvider removes every withdrawal of a provider.
	DeleteAllForProvider(ctx context.Context, providerID string) (int, error)

	// SumCountedAgainstBalance totals approved and completed withdrawals.
	SumCountedAgainstBalance(ctx context.Context, providerID string) (decimal.Decimal, error)
}
