package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is one billable service instance recorded against a provider.
//
// Invariants:
// - released_to_provider implies service_completed.
// - A payment is immutable once created except for the completion/release
//   flips (one-way, date-stamped) and the soft-hide flag.
// - Soft-hide affects history display only; it never changes balance or
//   invoice eligibility.
type Payment struct {
	ID         string `json:"id" db:"id"`
	ProviderID string `json:"provider_id" db:"provider_id"`

	ServiceID   string `json:"service_id,omitempty" db:"service_id"`
	ServiceName string `json:"service_name" db:"service_name"`
	PatientID   string `json:"patient_id,omitempty" db:"patient_id"`
	PatientName string `json:"patient_name" db:"patient_name"`

	// Amount is the full billed amount in the platform currency unit.
	Amount decimal.Decimal `json:"amount" db:"amount"`

	ServiceCompleted   bool `json:"service_completed" db:"service_completed"`
	ReleasedToProvider bool `json:"released_to_provider" db:"released_to_provider"`

	CompletionDate *time.Time `json:"completion_date,omitempty" db:"completion_date"`
	ReleaseDate    *time.Time `json:"release_date,omitempty" db:"release_date"`

	// Hidden removes the payment from the provider's history view only.
	Hidden bool `json:"hidden" db:"hidden"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
