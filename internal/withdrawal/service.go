package withdrawal

import (
	"context"
	"strings"
	"time"

	"healthpay-platform/internal/ledger"
	"healthpay-platform/internal/notify"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceSource exposes the provider's spendable balance. Implementations
// must report zero for unknown providers.
type BalanceSource interface {
	AvailableBalance(ctx context.Context, providerID string) (decimal.Decimal, error)
}

// Service manages the withdrawal request lifecycle.
//
// Balance invariant: available_balance >= 0 at all times. Both the request
// path and the pending→approved transition re-derive the balance inside the
// per-provider serialization boundary, so two racing requests can never both
// commit against the same funds.
type Service struct {
	store      Store
	balance    BalanceSource
	serializer *ledger.ProviderSerializer
	events     notify.Publisher
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(store Store, balance BalanceSource, serializer *ledger.ProviderSerializer, events notify.Publisher) *Service {
	return &Service{
		store:      store,
		balance:    balance,
		serializer: serializer,
		events:     events,
		clock:      time.Now,
	}
}

type Request struct {
	ProviderID    string          `json:"provider_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	AccountNumber string          `json:"account_number"`
	AccountName   string          `json:"account_name"`
}

func (r Request) validate() error {
	if strings.TrimSpace(r.ProviderID) == "" {
		return ErrValidation
	}
	if !r.Amount.IsPositive() {
		return ErrValidation
	}
	if strings.TrimSpace(r.PaymentMethod) == "" ||
		strings.TrimSpace(r.AccountNumber) == "" ||
		strings.TrimSpace(r.AccountName) == "" {
		return ErrValidation
	}
	return nil
}

// Submit validates the request, checks the available balance under the
// provider's serialization boundary and creates a pending withdrawal.
// Pending requests do not reserve funds.
func (s *Service) Submit(ctx context.Context, req Request) (Withdrawal, error) {
	if err := req.validate(); err != nil {
		return Withdrawal{}, err
	}

	release, err := s.serializer.Serialize(ctx, req.ProviderID)
	if err != nil {
		return Withdrawal{}, err
	}
	defer release()

	avail, err := s.balance.AvailableBalance(ctx, req.ProviderID)
	if err != nil {
		return Withdrawal{}, err
	}
	if req.Amount.GreaterThan(avail) {
		return Withdrawal{}, ErrInsufficientBalance
	}

	now := s.clock().UTC()
	w := Withdrawal{
		ID:            uuid.NewString(),
		ProviderID:    req.ProviderID,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		AccountNumber: req.AccountNumber,
		AccountName:   req.AccountName,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.Insert(ctx, w); err != nil {
		return Withdrawal{}, err
	}

	s.publishUpdate(ctx, w)
	return w, nil
}

func (s *Service) Get(ctx context.Context, id string) (Withdrawal, error) {
	if id == "" {
		return Withdrawal{}, ErrValidation
	}
	return s.store.Get(ctx, id)
}

// List returns the provider's withdrawal history, newest first.
func (s *Service) List(ctx context.Context, providerID string) ([]Withdrawal, error) {
	if providerID == "" {
		return nil, ErrValidation
	}
	return s.store.ListByProvider(ctx, providerID)
}

// Transition moves a withdrawal to the target status.
//
// Legal moves are pending→approved, pending→rejected and approved→completed;
// anything else fails with ErrIllegalTransition, including repeats of a move
// already applied. Approval is the moment the amount starts counting against
// the balance, so it re-checks funds under the serialization boundary.
func (s *Service) Transition(ctx context.Context, id string, to Status) (Withdrawal, error) {
	if id == "" || !ValidStatus(to) {
		return Withdrawal{}, ErrValidation
	}

	cur, err := s.store.Get(ctx, id)
	if err != nil {
		return Withdrawal{}, err
	}
	if !CanTransition(cur.Status, to) {
		return Withdrawal{}, ErrIllegalTransition
	}

	release, err := s.serializer.Serialize(ctx, cur.ProviderID)
	if err != nil {
		return Withdrawal{}, err
	}
	defer release()

	if to == StatusApproved {
		avail, err := s.balance.AvailableBalance(ctx, cur.ProviderID)
		if err != nil {
			return Withdrawal{}, err
		}
		if cur.Amount.GreaterThan(avail) {
			return Withdrawal{}, ErrInsufficientBalance
		}
	}

	w, err := s.store.UpdateStatus(ctx, id, cur.Status, to, s.clock().UTC())
	if err != nil {
		return Withdrawal{}, err
	}

	s.publishUpdate(ctx, w)
	return w, nil
}

// Delete removes a single provider-owned withdrawal regardless of status.
// Deleting an approved or completed record restores the balance implicitly:
// the next balance derivation no longer sees it. Unknown ids are a no-op.
func (s *Service) Delete(ctx context.Context, providerID, id string) (int, error) {
	return s.BulkDelete(ctx, providerID, []string{id})
}

// BulkDelete removes a set of provider-owned withdrawals and returns the
// number actually removed.
func (s *Service) BulkDelete(ctx context.Context, providerID string, ids []string) (int, error) {
	if providerID == "" || len(ids) == 0 {
		return 0, ErrValidation
	}
	n, err := s.store.Delete(ctx, providerID, ids)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.publishProviderUpdate(ctx, providerID)
	}
	return n, nil
}

// DeleteAll wipes the provider's entire withdrawal history.
func (s *Service) DeleteAll(ctx context.Context, providerID string) (int, error) {
	if providerID == "" {
		return 0, ErrValidation
	}
	n, err := s.store.DeleteAllForProvider(ctx, providerID)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.publishProviderUpdate(ctx, providerID)
	}
	return n, nil
}

func (s *Service) publishUpdate(ctx context.Context, w Withdrawal) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, notify.Event{
		Type:       notify.EventWithdrawalUpdated,
		ProviderID: w.ProviderID,
		Payload: notify.WithdrawalUpdatedPayload{
			ProviderID:   w.ProviderID,
			WithdrawalID: w.ID,
			Status:       string(w.Status),
		},
	})
}

func (s *Service) publishProviderUpdate(ctx context.Context, providerID string) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, notify.Event{
		Type:       notify.EventWithdrawalUpdated,
		ProviderID: providerID,
		Payload: notify.WithdrawalUpdatedPayload{
			ProviderID: providerID,
			Status:     "deleted",
		},
	})
}
