package invoice

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"healthpay-platform/internal/ledger"
	"healthpay-platform/internal/notify"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentSource reads the payment ledger. Eligibility always includes
// soft-hidden payments.
type PaymentSource interface {
	ListByProvider(ctx context.Context, providerID string, includeHidden bool) ([]ledger.Payment, error)
}

// Service issues immutable settlement invoices over released payments.
//
// Eligible set: released payments not yet claimed by any invoice. Issuance
// runs inside the per-provider serialization boundary and the store's atomic
// claim, so concurrent issuance partitions payments across invoices; no
// payment ever appears twice.
type Service struct {
	store      Store
	payments   PaymentSource
	serializer *ledger.ProviderSerializer
	events     notify.Publisher
	// numberPrefix forms invoice numbers as <prefix>-NNNNNN.
	numberPrefix string
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(store Store, payments PaymentSource, serializer *ledger.ProviderSerializer, events notify.Publisher, numberPrefix string) *Service {
	if numberPrefix == "" {
		numberPrefix = "INV"
	}
	return &Service{
		store:        store,
		payments:     payments,
		serializer:   serializer,
		events:       events,
		numberPrefix: numberPrefix,
		clock:        time.Now,
	}
}

type IssueRequest struct {
	ProviderID   string `json:"provider_id"`
	ProviderName string `json:"provider_name"`
	ProviderType string `json:"provider_type"`
	// CommissionPercent in [0, 100].
	CommissionPercent decimal.Decimal `json:"commission_percent"`
	Notes             string          `json:"notes,omitempty"`
}

var oneHundred = decimal.NewFromInt(100)

// Issue generates an invoice covering every currently eligible payment of the
// provider. Returns ErrNoEligiblePayments when nothing is available to bill.
func (s *Service) Issue(ctx context.Context, req IssueRequest) (Invoice, error) {
	if strings.TrimSpace(req.ProviderID) == "" {
		return Invoice{}, ErrValidation
	}
	if req.CommissionPercent.IsNegative() || req.CommissionPercent.GreaterThan(oneHundred) {
		return Invoice{}, ErrValidation
	}

	release, err := s.serializer.Serialize(ctx, req.ProviderID)
	if err != nil {
		return Invoice{}, err
	}
	defer release()

	eligible, err := s.eligiblePayments(ctx, req.ProviderID)
	if err != nil {
		return Invoice{}, err
	}
	if len(eligible) == 0 {
		return Invoice{}, ErrNoEligiblePayments
	}

	inv := buildInvoice(req, eligible, s.clock().UTC())

	number, err := s.store.NextNumber(ctx)
	if err != nil {
		return Invoice{}, err
	}
	inv.ID = uuid.NewString()
	inv.InvoiceNumber = fmt.Sprintf("%s-%06d", s.numberPrefix, number)

	if err := s.store.Create(ctx, inv); err != nil {
		return Invoice{}, err
	}

	if s.events != nil {
		s.events.Publish(ctx, notify.Event{
			Type:       notify.EventInvoiceIssued,
			ProviderID: inv.ProviderID,
			Payload: notify.InvoiceIssuedPayload{
				ProviderID:       inv.ProviderID,
				InvoiceNumber:    inv.InvoiceNumber,
				Subtotal:         inv.Subtotal.String(),
				CommissionAmount: inv.CommissionAmount.String(),
				NetTotal:         inv.NetTotal.String(),
			},
		})
	}
	return inv, nil
}

func (s *Service) Get(ctx context.Context, id string) (Invoice, error) {
	if id == "" {
		return Invoice{}, ErrValidation
	}
	return s.store.Get(ctx, id)
}

// ListByProvider returns the provider's invoices, newest first.
func (s *Service) ListByProvider(ctx context.Context, providerID string) ([]Invoice, error) {
	if providerID == "" {
		return nil, ErrValidation
	}
	return s.store.ListByProvider(ctx, providerID)
}

// List pages through all invoices for the back office.
func (s *Service) List(ctx context.Context, opts ListOpts) ([]Invoice, int, error) {
	if opts.Limit <= 0 || opts.Limit > 100 {
		opts.Limit = 50
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	return s.store.List(ctx, opts)
}

// eligiblePayments returns released, not-yet-invoiced payments ordered by
// completion date ascending.
func (s *Service) eligiblePayments(ctx context.Context, providerID string) ([]ledger.Payment, error) {
	all, err := s.payments.ListByProvider(ctx, providerID, true)
	if err != nil {
		return nil, err
	}
	claimed, err := s.store.ClaimedPaymentIDs(ctx, providerID)
	if err != nil {
		return nil, err
	}

	var out []ledger.Payment
	for _, p := range all {
		if !p.ReleasedToProvider {
			continue
		}
		if _, taken := claimed[p.ID]; taken {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := out[i].CreatedAt, out[j].CreatedAt
		if out[i].CompletionDate != nil {
			ti = *out[i].CompletionDate
		}
		if out[j].CompletionDate != nil {
			tj = *out[j].CompletionDate
		}
		return ti.Before(tj)
	})
	return out, nil
}

// buildInvoice computes the commission split.
//
// The authoritative totals are computed at invoice level:
// commission_amount = round2(subtotal * pct / 100), net_total = subtotal −
// commission_amount. Per-item commissions are rounded the same way and the
// residual rounding drift is folded into the last item, so the item columns
// sum exactly to the invoice totals.
func buildInvoice(req IssueRequest, payments []ledger.Payment, issuedAt time.Time) Invoice {
	subtotal := decimal.Zero
	for _, p := range payments {
		subtotal = subtotal.Add(p.Amount)
	}
	commission := subtotal.Mul(req.CommissionPercent).Div(oneHundred).Round(2)
	netTotal := subtotal.Sub(commission)

	items := make([]Item, 0, len(payments))
	paymentIDs := make([]string, 0, len(payments))
	itemCommissionSum := decimal.Zero
	for i, p := range payments {
		itemCommission := p.Amount.Mul(req.CommissionPercent).Div(oneHundred).Round(2)
		if i == len(payments)-1 {
			itemCommission = commission.Sub(itemCommissionSum)
		}
		itemCommissionSum = itemCommissionSum.Add(itemCommission)

		items = append(items, Item{
			PaymentID:             p.ID,
			ServiceID:             p.ServiceID,
			ServiceName:           p.ServiceName,
			PatientName:           p.PatientName,
			OriginalAmount:        p.Amount,
			AdminCommissionAmount: itemCommission,
			NetAmount:             p.Amount.Sub(itemCommission),
			CompletionDate:        p.CompletionDate,
			ReleaseDate:           p.ReleaseDate,
		})
		paymentIDs = append(paymentIDs, p.ID)
	}

	return Invoice{
		ProviderID:           req.ProviderID,
		ProviderName:         req.ProviderName,
		ProviderType:         req.ProviderType,
		Items:                items,
		Subtotal:             subtotal,
		CommissionPercentage: req.CommissionPercent,
		CommissionAmount:     commission,
		NetTotal:             netTotal,
		PaymentIDs:           paymentIDs,
		Notes:                req.Notes,
		IssuedAt:             issuedAt,
	}
}
