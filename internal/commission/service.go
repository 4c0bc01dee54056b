package commission

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// Service resolves the commission percentage applied at invoice issuance.
//
// Resolution order: explicit request override, then the active effective-dated
// rule for the provider type, then the platform-wide default.
type Service struct {
	repo           Repository
	defaultPercent decimal.Decimal
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(repo Repository, defaultPercent decimal.Decimal) *Service {
	return &Service{repo: repo, defaultPercent: defaultPercent, clock: time.Now}
}

func validPercent(p decimal.Decimal) bool {
	return !p.IsNegative() && !p.GreaterThan(oneHundred)
}

// ResolvePercent returns the percentage to apply for the provider type right
// now. A non-nil override wins unconditionally but must still be in range.
func (s *Service) ResolvePercent(ctx context.Context, providerType ProviderType, override *decimal.Decimal) (decimal.Decimal, error) {
	if override != nil {
		if !validPercent(*override) {
			return decimal.Zero, ErrValidation
		}
		return *override, nil
	}

	if ValidProviderType(providerType) {
		rule, ok, err := s.repo.ActiveRule(ctx, providerType, s.clock().UTC())
		if err != nil {
			return decimal.Zero, err
		}
		if ok {
			return rule.Percent, nil
		}
	}
	return s.defaultPercent, nil
}

type CreateRuleRequest struct {
	ProviderType  ProviderType    `json:"provider_type"`
	Percent       decimal.Decimal `json:"percent"`
	EffectiveFrom time.Time       `json:"effective_from"`
	EffectiveTo   *time.Time      `json:"effective_to,omitempty"`
}

// CreateRule installs a new effective-dated rule.
func (s *Service) CreateRule(ctx context.Context, req CreateRuleRequest) (Rule, error) {
	if !ValidProviderType(req.ProviderType) || !validPercent(req.Percent) {
		return Rule{}, ErrValidation
	}

	now := s.clock().UTC()
	effectiveFrom := req.EffectiveFrom
	if effectiveFrom.IsZero() {
		effectiveFrom = now
	}
	if req.EffectiveTo != nil && !req.EffectiveTo.After(effectiveFrom) {
		return Rule{}, ErrValidation
	}

	rule := Rule{
		ID:            uuid.NewString(),
		ProviderType:  req.ProviderType,
		Percent:       req.Percent,
		EffectiveFrom: effectiveFrom,
		EffectiveTo:   req.EffectiveTo,
		Status:        RuleActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Insert(ctx, rule); err != nil {
		return Rule{}, err
	}
	return rule, nil
}

func (s *Service) ListRules(ctx context.Context) ([]Rule, error) {
	return s.repo.List(ctx)
}

// RetireRule takes a rule out of force immediately.
func (s *Service) RetireRule(ctx context.Context, id string) (Rule, error) {
	if id == "" {
		return Rule{}, ErrValidation
	}
	return s.repo.Retire(ctx, id, s.clock().UTC())
}
