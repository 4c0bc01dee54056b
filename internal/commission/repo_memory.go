package commission

import (
	"context"
	"sort"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu    sync.RWMutex
	rules map[string]*Rule
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{rules: make(map[string]*Rule)}
}

func (r *MemoryRepo) Insert(ctx context.Context, rule Rule) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if rule.ID == "" {
		return ErrValidation
	}
	if _, exists := r.rules[rule.ID]; exists {
		return ErrValidation
	}
	cp := rule
	r.rules[rule.ID] = &cp
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Rule, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	rule, ok := r.rules[id]
	if !ok {
		return Rule{}, ErrNotFound
	}
	return *rule, nil
}

func (r *MemoryRepo) ActiveRule(ctx context.Context, providerType ProviderType, at time.Time) (Rule, bool, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best *Rule
	for _, rule := range r.rules {
		if rule.ProviderType != providerType || !rule.AppliesAt(at) {
			continue
		}
		if best == nil || rule.EffectiveFrom.After(best.EffectiveFrom) {
			best = rule
		}
	}
	if best == nil {
		return Rule{}, false, nil
	}
	return *best, true, nil
}

func (r *MemoryRepo) List(ctx context.Context) ([]Rule, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Rule, 0, len(r.rules))
	for _, rule := range r.rules {
		out = append(out, *rule)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EffectiveFrom.After(out[j].EffectiveFrom) })
	return out, nil
}

func (r *MemoryRepo) Retire(ctx context.Context, id string, at time.Time) (Rule, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	rule, ok := r.rules[id]
	if !ok {
		return Rule{}, ErrNotFound
	}
	rule.Status = RuleRetired
	rule.UpdatedAt = at
	return *rule, nil
}
