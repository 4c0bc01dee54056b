package wallet

import (
	"context"
	"errors"
	"testing"
	"time"

	"healthpay-platform/internal/ledger"

	"github.com/shopspring/decimal"
)

type stubWithdrawals struct {
	sum decimal.Decimal
}

func (s stubWithdrawals) SumCountedAgainstBalance(ctx context.Context, providerID string) (decimal.Decimal, error) {
	return s.sum, nil
}

func seedPayments(t *testing.T, store *ledger.MemoryStore, amounts []int64, completed, released bool) {
	t.Helper()
	ctx := context.Background()
	now := time.Unix(1700000000, 0).UTC()
	for i, amt := range amounts {
		p := ledger.Payment{
			ID:          string(rune('a'+i)) + "-pay",
			ProviderID:  "prov-1",
			ServiceName: "Consultation",
			PatientName: "Sam",
			Amount:      decimal.NewFromInt(amt),
			CreatedAt:   now,
		}
		if err := store.Insert(ctx, p); err != nil {
			t.Fatalf("insert: %v", err)
		}
		if completed {
			if _, err := store.MarkCompleted(ctx, p.ID, now); err != nil {
				t.Fatalf("complete: %v", err)
			}
		}
		if released {
			if _, err := store.MarkReleased(ctx, p.ID, now); err != nil {
				t.Fatalf("release: %v", err)
			}
		}
	}
}

func TestSnapshot_SumsReleasedPayments(t *testing.T) {
	store := ledger.NewMemoryStore()
	seedPayments(t, store, []int64{2000, 3000, 4000}, true, true)

	calc := NewCalculator(store, stubWithdrawals{sum: decimal.Zero})
	snap, err := calc.Snapshot(context.Background(), "prov-1")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	if !snap.TotalEarnings.Equal(decimal.NewFromInt(9000)) {
		t.Fatalf("total earnings = %s, want 9000", snap.TotalEarnings)
	}
	if !snap.AvailableBalance.Equal(decimal.NewFromInt(9000)) {
		t.Fatalf("available = %s, want 9000", snap.AvailableBalance)
	}
	if !snap.PendingBalance.IsZero() {
		t.Fatalf("pending = %s, want 0", snap.PendingBalance)
	}
	if snap.TotalServices != 3 || snap.CompletedServices != 3 {
		t.Fatalf("service counts = %d/%d, want 3/3", snap.CompletedServices, snap.TotalServices)
	}
}

func TestSnapshot_CompletedUnreleasedIsPending(t *testing.T) {
	store := ledger.NewMemoryStore()
	seedPayments(t, store, []int64{1500}, true, false)

	calc := NewCalculator(store, stubWithdrawals{sum: decimal.Zero})
	snap, err := calc.Snapshot(context.Background(), "prov-1")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	if !snap.PendingBalance.Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("pending = %s, want 1500", snap.PendingBalance)
	}
	if !snap.TotalEarnings.IsZero() || !snap.AvailableBalance.IsZero() {
		t.Fatalf("unreleased payments must not earn: %+v", snap)
	}
}

func TestSnapshot_ApprovedWithdrawalsReduceAvailable(t *testing.T) {
	store := ledger.NewMemoryStore()
	seedPayments(t, store, []int64{2000, 3000, 4000}, true, true)

	calc := NewCalculator(store, stubWithdrawals{sum: decimal.NewFromInt(5000)})
	snap, err := calc.Snapshot(context.Background(), "prov-1")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	if !snap.AvailableBalance.Equal(decimal.NewFromInt(4000)) {
		t.Fatalf("available = %s, want 4000", snap.AvailableBalance)
	}
	// Earnings are historical and never shrink with withdrawals.
	if !snap.TotalEarnings.Equal(decimal.NewFromInt(9000)) {
		t.Fatalf("total earnings = %s, want 9000", snap.TotalEarnings)
	}
}

func TestSnapshot_UnknownProvider(t *testing.T) {
	calc := NewCalculator(ledger.NewMemoryStore(), stubWithdrawals{sum: decimal.Zero})

	if _, err := calc.Snapshot(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// Balance checks treat unknown providers as zero instead.
	avail, err := calc.AvailableBalance(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("available: %v", err)
	}
	if !avail.IsZero() {
		t.Fatalf("available = %s, want 0", avail)
	}
}

func TestSnapshot_IncludesHiddenPayments(t *testing.T) {
	store := ledger.NewMemoryStore()
	seedPayments(t, store, []int64{2000}, true, true)
	ctx := context.Background()

	if _, err := store.SetHidden(ctx, "prov-1", []string{"a-pay"}, true); err != nil {
		t.Fatalf("hide: %v", err)
	}

	calc := NewCalculator(store, stubWithdrawals{sum: decimal.Zero})
	snap, err := calc.Snapshot(ctx, "prov-1")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if !snap.TotalEarnings.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("hidden payments must still count: %s", snap.TotalEarnings)
	}
}
