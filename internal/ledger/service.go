package ledger

import (
	"context"
	"strings"
	"time"

	"healthpay-platform/internal/notify"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service owns the authoritative payment ledger.
//
// Money invariants:
// - Payments are append-only; amounts never change after creation.
// - released_to_provider implies service_completed (enforced by the store).
// - Soft-hide is a display flag only; balances and invoice eligibility always
//   read hidden payments too.
type Service struct {
	store  Store
	events notify.Publisher
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(store Store, events notify.Publisher) *Service {
	return &Service{store: store, events: events, clock: time.Now}
}

type RecordRequest struct {
	ProviderID  string          `json:"provider_id"`
	ServiceID   string          `json:"service_id,omitempty"`
	ServiceName string          `json:"service_name"`
	PatientID   string          `json:"patient_id,omitempty"`
	PatientName string          `json:"patient_name"`
	Amount      decimal.Decimal `json:"amount"`
}

// Record appends a new payment in its initial state (not completed, not
// released, visible).
func (s *Service) Record(ctx context.Context, req RecordRequest) (Payment, error) {
	if strings.TrimSpace(req.ProviderID) == "" {
		return Payment{}, ErrValidation
	}
	if strings.TrimSpace(req.ServiceName) == "" || strings.TrimSpace(req.PatientName) == "" {
		return Payment{}, ErrValidation
	}
	if !req.Amount.IsPositive() {
		return Payment{}, ErrValidation
	}

	p := Payment{
		ID:          uuid.NewString(),
		ProviderID:  req.ProviderID,
		ServiceID:   req.ServiceID,
		ServiceName: req.ServiceName,
		PatientID:   req.PatientID,
		PatientName: req.PatientName,
		Amount:      req.Amount,
		CreatedAt:   s.clock().UTC(),
	}
	if err := s.store.Insert(ctx, p); err != nil {
		return Payment{}, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, paymentID string) (Payment, error) {
	if paymentID == "" {
		return Payment{}, ErrValidation
	}
	return s.store.Get(ctx, paymentID)
}

// MarkCompleted flips the service-completed flag. Safe to retry.
func (s *Service) MarkCompleted(ctx context.Context, paymentID string) (Payment, error) {
	if paymentID == "" {
		return Payment{}, ErrValidation
	}
	return s.store.MarkCompleted(ctx, paymentID, s.clock().UTC())
}

// MarkReleased flips the released-to-provider flag and notifies the
// provider's open sessions. The event is a cache-invalidation hint only;
// subscribers must re-fetch authoritative state.
func (s *Service) MarkReleased(ctx context.Context, paymentID string) (Payment, error) {
	if paymentID == "" {
		return Payment{}, ErrValidation
	}
	p, err := s.store.MarkReleased(ctx, paymentID, s.clock().UTC())
	if err != nil {
		return Payment{}, err
	}
	if s.events != nil {
		s.events.Publish(ctx, notify.Event{
			Type:       notify.EventPaymentReleased,
			ProviderID: p.ProviderID,
			Payload: notify.PaymentReleasedPayload{
				ProviderID:  p.ProviderID,
				Amount:      p.Amount.String(),
				ServiceName: p.ServiceName,
			},
		})
	}
	return p, nil
}

// History lists the provider's payments with soft-hidden records filtered out.
func (s *Service) History(ctx context.Context, providerID string) ([]Payment, error) {
	if providerID == "" {
		return nil, ErrValidation
	}
	return s.store.ListByProvider(ctx, providerID, false)
}

// SoftHide removes a single payment from the provider's history view.
// Returns the number of records actually hidden (0 or 1); hiding an unknown
// or already-hidden id is not an error.
func (s *Service) SoftHide(ctx context.Context, providerID, paymentID string) (int, error) {
	return s.BulkSoftHide(ctx, providerID, []string{paymentID})
}

// BulkSoftHide hides a set of payments from the provider's history view.
func (s *Service) BulkSoftHide(ctx context.Context, providerID string, paymentIDs []string) (int, error) {
	if providerID == "" || len(paymentIDs) == 0 {
		return 0, ErrValidation
	}
	return s.store.SetHidden(ctx, providerID, paymentIDs, true)
}
