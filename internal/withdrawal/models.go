package withdrawal

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusCompleted Status = "completed"
	StatusRejected  Status = "rejected"
)

// legal transitions: pending→approved, pending→rejected, approved→completed.
// completed and rejected are terminal.
var legalTransitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusCompleted},
}

func CanTransition(from, to Status) bool {
	for _, s := range legalTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusApproved, StatusCompleted, StatusRejected:
		return true
	}
	return false
}

// CountsAgainstBalance reports whether a withdrawal in this status reduces the
// provider's available balance. Pending requests never do; rejection returns
// the reservation implicitly because nothing was ever reserved.
func CountsAgainstBalance(s Status) bool {
	return s == StatusApproved || s == StatusCompleted
}

type Withdrawal struct {
	ID            string          `json:"id" db:"id"`
	ProviderID    string          `json:"provider_id" db:"provider_id"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	PaymentMethod string          `json:"payment_method" db:"payment_method"`
	AccountNumber string          `json:"account_number" db:"account_number"`
	AccountName   string          `json:"account_name" db:"account_name"`
	Status        Status          `json:"status" db:"status"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}
