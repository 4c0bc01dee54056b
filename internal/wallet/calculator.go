package wallet

import (
	"context"
	"errors"

	"healthpay-platform/internal/ledger"

	"github.com/shopspring/decimal"
)

// ErrNotFound distinguishes an unknown provider (no payment history at all)
// from a zero-balance provider, which gets a zeroed snapshot.
var ErrNotFound = errors.New("wallet: provider has no payment history")

// PaymentSource reads the authoritative payment ledger.
// Balance math must always include soft-hidden payments.
type PaymentSource interface {
	ListByProvider(ctx context.Context, providerID string, includeHidden bool) ([]ledger.Payment, error)
}

// WithdrawalSource reports the total of withdrawals that count against the
// available balance (approved and completed only; pending never counts).
type WithdrawalSource interface {
	SumCountedAgainstBalance(ctx context.Context, providerID string) (decimal.Decimal, error)
}

// Calculator derives wallet snapshots. It is a pure function of its two
// sources, holds no state and is safe for concurrent use; callers that need
// a consistent snapshot relative to concurrent mutations invoke it inside
// the per-provider serialization boundary.
type Calculator struct {
	payments    PaymentSource
	withdrawals WithdrawalSource
}

func NewCalculator(payments PaymentSource, withdrawals WithdrawalSource) *Calculator {
	return &Calculator{payments: payments, withdrawals: withdrawals}
}

// Snapshot computes the wallet view defined above.
func (c *Calculator) Snapshot(ctx context.Context, providerID string) (Snapshot, error) {
	if providerID == "" {
		return Snapshot{}, ErrNotFound
	}

	payments, err := c.payments.ListByProvider(ctx, providerID, true)
	if err != nil {
		return Snapshot{}, err
	}
	if len(payments) == 0 {
		return Snapshot{}, ErrNotFound
	}

	snap := Snapshot{
		ProviderID:       providerID,
		TotalEarnings:    decimal.Zero,
		AvailableBalance: decimal.Zero,
		PendingBalance:   decimal.Zero,
	}
	for _, p := range payments {
		snap.TotalServices++
		if p.ServiceCompleted {
			snap.CompletedServices++
		}
		switch {
		case p.ReleasedToProvider:
			snap.TotalEarnings = snap.TotalEarnings.Add(p.Amount)
		case p.ServiceCompleted:
			snap.PendingBalance = snap.PendingBalance.Add(p.Amount)
		}
	}

	withdrawn, err := c.withdrawals.SumCountedAgainstBalance(ctx, providerID)
	if err != nil {
		return Snapshot{}, err
	}
	snap.AvailableBalance = snap.TotalEarnings.Sub(withdrawn)

	return snap, nil
}

// AvailableBalance is the balance-check entry point for the withdrawal
// manager. Unknown providers report zero rather than an error: a provider
// without history simply has nothing to withdraw.
func (c *Calculator) AvailableBalance(ctx context.Context, providerID string) (decimal.Decimal, error) {
	snap, err := c.Snapshot(ctx, providerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return snap.AvailableBalance, nil
}
