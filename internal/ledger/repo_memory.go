package ledger

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory payment store useful for tests and early
// development. It preserves insertion order and the same flip semantics as
// the Postgres store.
//
// NOTE: This is not intended for production; replace with PostgresStore.
type MemoryStore struct {
	mu       sync.Mutex
	payments map[string]*Payment
	order    []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{payments: make(map[string]*Payment)}
}

func (s *MemoryStore) Insert(ctx context.Context, p Payment) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		return ErrValidation
	}
	if _, exists := s.payments[p.ID]; exists {
		return ErrValidation
	}
	cp := p
	s.payments[p.ID] = &cp
	s.order = append(s.order, p.ID)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (Payment, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[id]
	if !ok {
		return Payment{}, ErrNotFound
	}
	return *p, nil
}

func (s *MemoryStore) ListByProvider(ctx context.Context, providerID string, includeHidden bool) ([]Payment, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Payment
	for _, id := range s.order {
		p := s.payments[id]
		if p.ProviderID != providerID {
			continue
		}
		if p.Hidden && !includeHidden {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (s *MemoryStore) MarkCompleted(ctx context.Context, id string, at time.Time) (Payment, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[id]
	if !ok {
		return Payment{}, ErrNotFound
	}
	if p.ServiceCompleted {
		return *p, nil
	}
	p.ServiceCompleted = true
	t := at
	p.CompletionDate = &t
	return *p, nil
}

func (s *MemoryStore) MarkReleased(ctx context.Context, id string, at time.Time) (Payment, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[id]
	if !ok {
		return Payment{}, ErrNotFound
	}
	if p.ReleasedToProvider {
		return *p, nil
	}
	if !p.ServiceCompleted {
		return Payment{}, ErrNotCompleted
	}
	p.ReleasedToProvider = true
	t := at
	p.ReleaseDate = &t
	return *p, nil
}

func (s *MemoryStore) SetHidden(ctx context.Context, providerID string, ids []string, hidden bool) (int, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for _, id := range ids {
		p, ok := s.payments[id]
		if !ok || p.ProviderID != providerID {
			continue
		}
		if p.Hidden == hidden {
			continue
		}
		p.Hidden = hidden
		changed++
	}
	return changed, nil
}
