package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/seatbill/seatbill/internal/domain/payment"
	ierr "github.com/seatbill/seatbill/internal/errors"
	"github.com/seatbill/seatbill/internal/types"
)

// InMemoryPaymentStore implements payment.Repository over a map.
type InMemoryPaymentStore struct {
	mu       sync.RWMutex
	payments map[string]*payment.Payment

	// CreateErr, when set, is returned by Create.
	CreateErr error
}

func NewInMemoryPaymentStore() *InMemoryPaymentStore {
	return &InMemoryPaymentStore{
		payments: make(map[string]*payment.Payment),
	}
}

func (r *InMemoryPaymentStore) Create(ctx context.Context, p *payment.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CreateErr != nil {
		return r.CreateErr
	}
	if _, exists := r.payments[p.ID]; exists {
		return ierr.NewErrorf("payment %s already exists", p.ID).
			Mark(ierr.ErrAlreadyExists)
	}
	r.payments[p.ID] = p
	return nil
}

func (r *InMemoryPaymentStore) Get(ctx context.Context, id string) (*payment.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.payments[id]
	if !exists || p.Status != types.StatusPublished {
		return nil, ierr.NewErrorf("payment %s not found", id).
			Mark(ierr.ErrNotFound)
	}
	return p, nil
}

func (r *InMemoryPaymentStore) Update(ctx context.Context, p *payment.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.payments[p.ID]; !exists {
		return ierr.NewErrorf("payment %s not found", p.ID).
			Mark(ierr.ErrNotFound)
	}
	r.payments[p.ID] = p
	return nil
}

func (r *InMemoryPaymentStore) ListByOrg(ctx context.Context, orgID string) ([]*payment.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*payment.Payment, 0)
	for _, p := range r.payments {
		if p.OrgID == orgID && p.Status == types.StatusPublished {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *InMemoryPaymentStore) TxSnapshot() any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snapshot := make(map[string]payment.Payment, len(r.payments))
	for id, p := range r.payments {
		snapshot[id] = *p
	}
	return snapshot
}

func (r *InMemoryPaymentStore) TxRestore(snapshot any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	saved := snapshot.(map[string]payment.Payment)
	r.payments = make(map[string]*payment.Payment, len(saved))
	for id, p := range saved {
		p := p
		r.payments[id] = &p
	}
}

func (r *InMemoryPaymentStore) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments = make(map[string]*payment.Payment)
	r.CreateErr = nil
}
