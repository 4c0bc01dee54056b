package commission

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound   = errors.New("commission: rule not found")
	ErrValidation = errors.New("commission: invalid rule")
)

type Repository interface {
	Insert(ctx context.Context, r Rule) error
	Get(ctx context.Context, id string) (Rule, error)

	// ActiveRule returns the rule in force for the provider type at the given
	// instant, preferring the most recently effective one. The boolean is
	// false when no rule applies.
	ActiveRule(ctx context.Context, providerType ProviderType, at time.Time) (Rule, bool, error)

	// List returns every rule, newest effective first.
	List(ctx context.Context) ([]Rule, error)

	// Retire marks a rule inactive.
	Retire(ctx context.Context, id string, at time.Time) (Rule, error)
}
