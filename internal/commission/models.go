package commission

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProviderType enumerates the marketplace provider categories a commission
// rule can target.
type ProviderType string

const (
	TypeDoctor     ProviderType = "doctor"
	TypeClinic     ProviderType = "clinic"
	TypeLaboratory ProviderType = "laboratory"
	TypePharmacy   ProviderType = "pharmacy"
)

func ValidProviderType(t ProviderType) bool {
	switch t {
	case TypeDoctor, TypeClinic, TypeLaboratory, TypePharmacy:
		return true
	}
	return false
}

type RuleStatus string

const (
	RuleActive  RuleStatus = "active"
	RuleRetired RuleStatus = "retired"
)

// Rule is an effective-dated commission percentage for one provider type.
// When several rules overlap at a point in time, the most recently effective
// one wins.
type Rule struct {
	ID            string          `json:"id" db:"id"`
	ProviderType  ProviderType    `json:"provider_type" db:"provider_type"`
	Percent       decimal.Decimal `json:"percent" db:"percent"`
	EffectiveFrom time.Time       `json:"effective_from" db:"effective_from"`
	EffectiveTo   *time.Time      `json:"effective_to,omitempty" db:"effective_to"`
	Status        RuleStatus      `json:"status" db:"status"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// AppliesAt reports whether the rule is in force at the given instant.
func (r Rule) AppliesAt(at time.Time) bool {
	if r.Status != RuleActive {
		return false
	}
	if at.Before(r.EffectiveFrom) {
		return false
	}
	if r.EffectiveTo != nil && !at.Before(*r.EffectiveTo) {
		return false
	}
	return true
}
