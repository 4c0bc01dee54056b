package withdrawal

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// MemoryStore mirrors PostgresStore semantics for tests and early development.
type MemoryStore struct {
	mu          sync.Mutex
	withdrawals map[string]*Withdrawal
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{withdrawals: make(map[string]*Withdrawal)}
}

func (s *MemoryStore) Insert(ctx context.Context, w Withdrawal) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	if w.ID == "" {
		return ErrValidation
	}
	if _, exists := s.withdrawals[w.ID]; exists {
		return ErrValidation
	}
	cp := w
	s.withdrawals[w.ID] = &cp
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (Withdrawal, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.withdrawals[id]
	if !ok {
		return Withdrawal{}, ErrNotFound
	}
	return *w, nil
}

func (s *MemoryStore) ListByProvider(ctx context.Context, providerID string) ([]Withdrawal, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Withdrawal
	for _, w := range s.withdrawals {
		if w.ProviderID == providerID {
			out = append(out, *w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) UpdateStatus(ctx context.Context, id string, from, to Status, at time.Time) (Withdrawal, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.withdrawals[id]
	if !ok {
		return Withdrawal{}, ErrNotFound
	}
	if w.Status != from {
		return Withdrawal{}, ErrConflict
	}
	w.Status = to
	w.UpdatedAt = at
	return *w, nil
}

func (s *MemoryStore) Delete(ctx context.Context, providerID string, ids []string) (int, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for _, id := range ids {
		w, ok := s.withdrawals[id]
		if !ok || w.ProviderID != providerID {
			continue
		}
		delete(s.withdrawals, id)
		deleted++
	}
	return deleted, nil
}

func (s *MemoryStore) DeleteAllForProvider(ctx context.Context, providerID string) (int, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for id, w := range s.withdrawals {
		if w.ProviderID == providerID {
			delete(s.withdrawals, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *MemoryStore) SumCountedAgainstBalance(ctx context.Context, providerID string) (decimal.Decimal, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := decimal.Zero
	for _, w := range s.withdrawals {
		if w.ProviderID == providerID && CountsAgainstBalance(w.Status) {
			sum = sum.Add(w.Amount)
		}
	}
	return sum, nil
}
