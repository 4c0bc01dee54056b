package audit

import (
	"context"
	"sync"
)

type MemoryRepo struct {
	mu      sync.Mutex
	entries []Entry
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

func (r *MemoryRepo) Append(ctx context.Context, e Entry) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.ID == "" || e.Action == "" {
		return ErrValidation
	}
	r.entries = append(r.entries, e)
	return nil
}

func (r *MemoryRepo) ListByProvider(ctx context.Context, providerID string, limit int) ([]Entry, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Entry
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].ProviderID != providerID {
			continue
		}
		out = append(out, r.entries[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
