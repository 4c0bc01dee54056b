package wallet

import "github.com/shopspring/decimal"

// Snapshot is the derived wallet view for one provider. It is never stored;
// every value is recomputed from the payment ledger and withdrawal history at
// call time.
//
// Invariants:
// - total_earnings      = Σ amount of released payments
// - pending_balance     = Σ amount of completed-but-unreleased payments
// - available_balance   = total_earnings − Σ approved/completed withdrawals
// - available_balance  >= 0 (enforced by the withdrawal manager)
type Snapshot struct {
	ProviderID string `json:"provider_id"`

	TotalEarnings    decimal.Decimal `json:"total_earnings"`
	AvailableBalance decimal.Decimal `json:"available_balance"`
	PendingBalance   decimal.Decimal `json:"pending_balance"`

	TotalServices     int `json:"total_services"`
	CompletedServices int `json:"completed_services"`
}
