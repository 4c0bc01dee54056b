package audit

import "time"

type Action string

const (
	ActionPaymentRecorded     Action = "payment_recorded"
	ActionPaymentCompleted    Action = "payment_completed"
	ActionPaymentReleased     Action = "payment_released"
	ActionPaymentHidden       Action = "payment_hidden"
	ActionWithdrawalRequested Action = "withdrawal_requested"
	ActionWithdrawalMoved     Action = "withdrawal_status_changed"
	ActionWithdrawalDeleted   Action = "withdrawal_deleted"
	ActionInvoiceIssued       Action = "invoice_issued"
	ActionRuleCreated         Action = "commission_rule_created"
	ActionRuleRetired         Action = "commission_rule_retired"
)

// Entry is one immutable line of the admin audit trail. Entries are
// append-only and written best effort; a failed audit write never fails the
// underlying operation.
type Entry struct {
	ID         string `json:"id" db:"id"`
	Action     Action `json:"action" db:"action"`
	ProviderID string `json:"provider_id,omitempty" db:"provider_id"`

	ActorUserID string `json:"actor_user_id,omitempty" db:"actor_user_id"`
	ActorRole   string `json:"actor_role,omitempty" db:"actor_role"`

	// SubjectID points at the affected record (payment, withdrawal, invoice
	// or rule id depending on Action).
	SubjectID string `json:"subject_id,omitempty" db:"subject_id"`
	Detail    string `json:"detail,omitempty" db:"detail"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
