package notify

import "context"

// Events are cache-invalidation hints for open UI sessions. Delivery is
// best-effort and at-most-once; payloads must never be treated as the source
// of truth for balance-critical values. Every view re-fetches authoritative
// state on receipt (and on mount), so a missed event cannot cause permanent
// staleness.

type EventType string

const (
	EventPaymentReleased   EventType = "payment_released"
	EventInvoiceIssued     EventType = "invoice_issued"
	EventWithdrawalUpdated EventType = "withdrawal_updated"
)

type Event struct {
	Type       EventType `json:"type"`
	ProviderID string    `json:"provider_id"`
	Payload    any       `json:"payload,omitempty"`
}

type PaymentReleasedPayload struct {
	ProviderID  string `json:"provider_id"`
	Amount      string `json:"amount"`
	ServiceName string `json:"service_name"`
}

type InvoiceIssuedPayload struct {
	ProviderID       string `json:"provider_id"`
	InvoiceNumber    string `json:"invoice_number"`
	Subtotal         string `json:"subtotal"`
	CommissionAmount string `json:"commission_amount"`
	NetTotal         string `json:"net_total"`
}

type WithdrawalUpdatedPayload struct {
	ProviderID   string `json:"provider_id"`
	WithdrawalID string `json:"withdrawal_id,omitempty"`
	Status       string `json:"status,omitempty"`
}

// Publisher is the minimal emit contract used by the ledger services.
// Publishing never blocks the mutating request.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Broker is the full broadcaster contract: publish plus provider- and
// admin-scoped subscriptions.
type Broker interface {
	Publisher
	Subscribe(providerID string) *Subscription
	SubscribeAll() *Subscription
}
