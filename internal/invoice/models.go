package invoice

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is one line of an invoice, frozen from a released payment at issue
// time. The commission split must reconcile exactly:
// original_amount = admin_commission_amount + net_amount.
type Item struct {
	PaymentID             string          `json:"payment_id" db:"payment_id"`
	ServiceID             string          `json:"service_id,omitempty" db:"service_id"`
	ServiceName           string          `json:"service_name" db:"service_name"`
	PatientName           string          `json:"patient_name" db:"patient_name"`
	OriginalAmount        decimal.Decimal `json:"original_amount" db:"original_amount"`
	AdminCommissionAmount decimal.Decimal `json:"admin_commission_amount" db:"admin_commission_amount"`
	NetAmount             decimal.Decimal `json:"net_amount" db:"net_amount"`
	CompletionDate        *time.Time      `json:"completion_date,omitempty" db:"completion_date"`
	ReleaseDate           *time.Time      `json:"release_date,omitempty" db:"release_date"`
}

// Invoice is an immutable settlement document. Totals reconcile exactly:
// subtotal = commission_amount + net_total, and the item net amounts sum to
// net_total with rounding drift folded into the final item.
type Invoice struct {
	ID            string `json:"id" db:"id"`
	InvoiceNumber string `json:"invoice_number" db:"invoice_number"`

	ProviderID   string `json:"provider_id" db:"provider_id"`
	ProviderName string `json:"provider_name" db:"provider_name"`
	ProviderType string `json:"provider_type" db:"provider_type"`

	Items []Item `json:"items"`

	Subtotal             decimal.Decimal `json:"subtotal" db:"subtotal"`
	CommissionPercentage decimal.Decimal `json:"commission_percentage" db:"commission_percentage"`
	CommissionAmount     decimal.Decimal `json:"commission_amount" db:"commission_amount"`
	NetTotal             decimal.Decimal `json:"net_total" db:"net_total"`

	// PaymentIDs duplicates the item payment ids for cheap claim lookups.
	PaymentIDs []string `json:"payment_ids" db:"payment_ids"`

	Notes    string    `json:"notes,omitempty" db:"notes"`
	IssuedAt time.Time `json:"issued_at" db:"issued_at"`
}
