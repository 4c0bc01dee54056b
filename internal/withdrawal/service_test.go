package withdrawal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"healthpay-platform/internal/ledger"
	"healthpay-platform/internal/wallet"

	"github.com/shopspring/decimal"
)

// newTestService wires the real wallet calculator against in-memory stores so
// the balance maths in these tests is the production derivation, not a stub.
func newTestService(t *testing.T, releasedAmounts ...int64) (*Service, *MemoryStore, *wallet.Calculator) {
	t.Helper()
	ctx := context.Background()
	now := time.Unix(1700000000, 0).UTC()

	payments := ledger.NewMemoryStore()
	for i, amt := range releasedAmounts {
		id := fmt.Sprintf("pay-%d", i)
		p := ledger.Payment{
			ID:          id,
			ProviderID:  "prov-1",
			ServiceName: "Consultation",
			PatientName: "Sam",
			Amount:      decimal.NewFromInt(amt),
			CreatedAt:   now,
		}
		if err := payments.Insert(ctx, p); err != nil {
			t.Fatalf("insert payment: %v", err)
		}
		if _, err := payments.MarkCompleted(ctx, id, now); err != nil {
			t.Fatalf("complete payment: %v", err)
		}
		if _, err := payments.MarkReleased(ctx, id, now); err != nil {
			t.Fatalf("release payment: %v", err)
		}
	}

	store := NewMemoryStore()
	calc := wallet.NewCalculator(payments, store)
	svc := NewService(store, calc, ledger.NewProviderSerializer(nil, 0), nil)
	svc.clock = func() time.Time { return now }
	return svc, store, calc
}

func submit(t *testing.T, svc *Service, amount int64) Withdrawal {
	t.Helper()
	w, err := svc.Submit(context.Background(), Request{
		ProviderID:    "prov-1",
		Amount:        decimal.NewFromInt(amount),
		PaymentMethod: "bank_transfer",
		AccountNumber: "000111222",
		AccountName:   "Dr. Sam",
	})
	if err != nil {
		t.Fatalf("submit %d: %v", amount, err)
	}
	return w
}

func TestSubmit_RejectsInvalidInput(t *testing.T) {
	svc, _, _ := newTestService(t, 9000)
	ctx := context.Background()

	cases := []Request{
		{ProviderID: "", Amount: decimal.NewFromInt(100), PaymentMethod: "bank_transfer", AccountNumber: "1", AccountName: "a"},
		{ProviderID: "prov-1", Amount: decimal.Zero, PaymentMethod: "bank_transfer", AccountNumber: "1", AccountName: "a"},
		{ProviderID: "prov-1", Amount: decimal.NewFromInt(-10), PaymentMethod: "bank_transfer", AccountNumber: "1", AccountName: "a"},
		{ProviderID: "prov-1", Amount: decimal.NewFromInt(100), PaymentMethod: "", AccountNumber: "1", AccountName: "a"},
		{ProviderID: "prov-1", Amount: decimal.NewFromInt(100), PaymentMethod: "bank_transfer", AccountNumber: "", AccountName: "a"},
		{ProviderID: "prov-1", Amount: decimal.NewFromInt(100), PaymentMethod: "bank_transfer", AccountNumber: "1", AccountName: ""},
	}
	for i, req := range cases {
		if _, err := svc.Submit(ctx, req); !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d: expected ErrValidation, got %v", i, err)
		}
	}
}

func TestSubmit_RejectsOverdraw(t *testing.T) {
	svc, _, _ := newTestService(t, 9000)

	if _, err := svc.Submit(context.Background(), Request{
		ProviderID:    "prov-1",
		Amount:        decimal.NewFromInt(9001),
		PaymentMethod: "bank_transfer",
		AccountNumber: "000111222",
		AccountName:   "Dr. Sam",
	}); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
}

func TestLifecycle_PendingDoesNotReserveFunds(t *testing.T) {
	svc, _, calc := newTestService(t, 2000, 3000, 4000)
	ctx := context.Background()

	w := submit(t, svc, 5000)

	avail, err := calc.AvailableBalance(ctx, "prov-1")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if !avail.Equal(decimal.NewFromInt(9000)) {
		t.Fatalf("pending must not reserve funds: available = %s", avail)
	}

	if _, err := svc.Transition(ctx, w.ID, StatusApproved); err != nil {
		t.Fatalf("approve: %v", err)
	}

	avail, _ = calc.AvailableBalance(ctx, "prov-1")
	if !avail.Equal(decimal.NewFromInt(4000)) {
		t.Fatalf("approved must count against balance: available = %s", avail)
	}
}

func TestTransition_LegalMovesOnly(t *testing.T) {
	svc, _, _ := newTestService(t, 9000)
	ctx := context.Background()

	w := submit(t, svc, 1000)

	// pending→completed skips approval.
	if _, err := svc.Transition(ctx, w.ID, StatusCompleted); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}

	if _, err := svc.Transition(ctx, w.ID, StatusApproved); err != nil {
		t.Fatalf("approve: %v", err)
	}
	// Approval twice is illegal, not idempotent.
	if _, err := svc.Transition(ctx, w.ID, StatusApproved); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition on repeat, got %v", err)
	}
	// approved→rejected is illegal.
	if _, err := svc.Transition(ctx, w.ID, StatusRejected); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}

	if _, err := svc.Transition(ctx, w.ID, StatusCompleted); err != nil {
		t.Fatalf("complete: %v", err)
	}
	// completed is terminal.
	if _, err := svc.Transition(ctx, w.ID, StatusPending); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}
}

func TestTransition_RejectionIsTerminal(t *testing.T) {
	svc, _, calc := newTestService(t, 9000)
	ctx := context.Background()

	w := submit(t, svc, 1000)
	if _, err := svc.Transition(ctx, w.ID, StatusRejected); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if _, err := svc.Transition(ctx, w.ID, StatusApproved); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}

	// Rejected withdrawals never count against balance.
	avail, _ := calc.AvailableBalance(ctx, "prov-1")
	if !avail.Equal(decimal.NewFromInt(9000)) {
		t.Fatalf("available = %s, want 9000", avail)
	}
}

func TestTransition_ApprovalRechecksBalance(t *testing.T) {
	svc, _, _ := newTestService(t, 9000)
	ctx := context.Background()

	// Both pass the submit-time check because pending reserves nothing.
	w1 := submit(t, svc, 5000)
	w2 := submit(t, svc, 5000)

	if _, err := svc.Transition(ctx, w1.ID, StatusApproved); err != nil {
		t.Fatalf("first approve: %v", err)
	}
	// Only 4000 remains; approving the second would drive the balance negative.
	if _, err := svc.Transition(ctx, w2.ID, StatusApproved); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
}

func TestSubmit_ConcurrentRequestsSerialize(t *testing.T) {
	svc, _, _ := newTestService(t, 9000)
	ctx := context.Background()

	// Two racing requests of 6000 against a 9000 balance: at most one may win
	// approval later, and both must observe a consistent balance at submit.
	const racers = 2
	errs := make([]error, racers)
	ids := make([]string, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w, err := svc.Submit(ctx, Request{
				ProviderID:    "prov-1",
				Amount:        decimal.NewFromInt(6000),
				PaymentMethod: "bank_transfer",
				AccountNumber: "000111222",
				AccountName:   "Dr. Sam",
			})
			errs[i], ids[i] = err, w.ID
		}(i)
	}
	wg.Wait()

	// Submits may both succeed (pending reserves nothing), but approval is the
	// commit point and must admit exactly one.
	approved := 0
	for i := 0; i < racers; i++ {
		if errs[i] != nil {
			continue
		}
		if _, err := svc.Transition(ctx, ids[i], StatusApproved); err == nil {
			approved++
		} else if !errors.Is(err, ErrInsufficientBalance) {
			t.Fatalf("unexpected approve error: %v", err)
		}
	}
	if approved != 1 {
		t.Fatalf("expected exactly one approval to commit, got %d", approved)
	}
}

func TestDelete_RestoresBalanceByDerivation(t *testing.T) {
	svc, _, calc := newTestService(t, 9000)
	ctx := context.Background()

	w := submit(t, svc, 5000)
	if _, err := svc.Transition(ctx, w.ID, StatusApproved); err != nil {
		t.Fatalf("approve: %v", err)
	}

	n, err := svc.Delete(ctx, "prov-1", w.ID)
	if err != nil || n != 1 {
		t.Fatalf("expected 1 deleted, got %d (%v)", n, err)
	}

	avail, _ := calc.AvailableBalance(ctx, "prov-1")
	if !avail.Equal(decimal.NewFromInt(9000)) {
		t.Fatalf("deleting an approved withdrawal must restore funds: %s", avail)
	}

	// Retrying the deletion is a no-op with count 0.
	n, err = svc.Delete(ctx, "prov-1", w.ID)
	if err != nil || n != 0 {
		t.Fatalf("expected 0 on retry, got %d (%v)", n, err)
	}
}

func TestDelete_ScopedToOwningProvider(t *testing.T) {
	svc, _, _ := newTestService(t, 9000)
	ctx := context.Background()

	w := submit(t, svc, 1000)

	n, err := svc.Delete(ctx, "prov-other", w.ID)
	if err != nil || n != 0 {
		t.Fatalf("foreign provider must not delete: got %d (%v)", n, err)
	}
	if _, err := svc.Get(ctx, w.ID); err != nil {
		t.Fatalf("withdrawal should survive: %v", err)
	}
}

func TestDeleteAll_WipesHistory(t *testing.T) {
	svc, _, _ := newTestService(t, 9000)
	ctx := context.Background()

	submit(t, svc, 1000)
	submit(t, svc, 2000)

	n, err := svc.DeleteAll(ctx, "prov-1")
	if err != nil || n != 2 {
		t.Fatalf("expected 2 deleted, got %d (%v)", n, err)
	}

	list, err := svc.List(ctx, "prov-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty history, got %d", len(list))
	}
}
