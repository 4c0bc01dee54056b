package invoice

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore mirrors PostgresStore semantics for tests and early development,
// including the all-or-nothing payment claim in Create.
type MemoryStore struct {
	mu       sync.Mutex
	invoices map[string]*Invoice
	// claimed maps payment id -> invoice id, globally unique.
	claimed map[string]string
	counter int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		invoices: make(map[string]*Invoice),
		claimed:  make(map[string]string),
	}
}

func (s *MemoryStore) NextNumber(ctx context.Context) (int64, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counter++
	return s.counter, nil
}

func (s *MemoryStore) Create(ctx context.Context, inv Invoice) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	if inv.ID == "" || len(inv.PaymentIDs) == 0 {
		return ErrValidation
	}
	if _, exists := s.invoices[inv.ID]; exists {
		return ErrValidation
	}
	for _, pid := range inv.PaymentIDs {
		if _, taken := s.claimed[pid]; taken {
			return ErrConflict
		}
	}
	for _, pid := range inv.PaymentIDs {
		s.claimed[pid] = inv.ID
	}
	cp := inv
	cp.Items = append([]Item(nil), inv.Items...)
	cp.PaymentIDs = append([]string(nil), inv.PaymentIDs...)
	s.invoices[inv.ID] = &cp
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (Invoice, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invoices[id]
	if !ok {
		return Invoice{}, ErrNotFound
	}
	return copyInvoice(inv), nil
}

func (s *MemoryStore) ClaimedPaymentIDs(ctx context.Context, providerID string) (map[string]struct{}, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]struct{})
	for pid, invID := range s.claimed {
		if s.invoices[invID].ProviderID == providerID {
			out[pid] = struct{}{}
		}
	}
	return out, nil
}

func (s *MemoryStore) ListByProvider(ctx context.Context, providerID string) ([]Invoice, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Invoice
	for _, inv := range s.invoices {
		if inv.ProviderID == providerID {
			out = append(out, copyInvoice(inv))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *MemoryStore) List(ctx context.Context, opts ListOpts) ([]Invoice, int, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []Invoice
	for _, inv := range s.invoices {
		if opts.ProviderID != "" && inv.ProviderID != opts.ProviderID {
			continue
		}
		all = append(all, copyInvoice(inv))
	}
	sortNewestFirst(all)

	total := len(all)
	if opts.Offset >= total {
		return nil, total, nil
	}
	all = all[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(all) {
		all = all[:opts.Limit]
	}
	return all, total, nil
}

func copyInvoice(inv *Invoice) Invoice {
	cp := *inv
	cp.Items = append([]Item(nil), inv.Items...)
	cp.PaymentIDs = append([]string(nil), inv.PaymentIDs...)
	return cp
}

func sortNewestFirst(invs []Invoice) {
	sort.Slice(invs, func(i, j int) bool {
		if !invs[i].IssuedAt.Equal(invs[j].IssuedAt) {
			return invs[i].IssuedAt.After(invs[j].IssuedAt)
		}
		return invs[i].InvoiceNumber > invs[j].InvoiceNumber
	})
}
