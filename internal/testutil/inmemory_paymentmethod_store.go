package testutil

import (
	"context"
	"sync"

	"github.com/seatbill/seatbill/internal/domain/paymentmethod"
	ierr "github.com/seatbill/seatbill/internal/errors"
	"github.com/seatbill/seatbill/internal/types"
)

// InMemoryPaymentMethodStore implements paymentmethod.Repository over a map.
type InMemoryPaymentMethodStore struct {
	mu      sync.RWMutex
	methods map[string]*paymentmethod.PaymentMethod
}

func NewInMemoryPaymentMethodStore() *InMemoryPaymentMethodStore {
	return &InMemoryPaymentMethodStore{
		methods: make(map[string]*paymentmethod.PaymentMethod),
	}
}

func (r *InMemoryPaymentMethodStore) Create(ctx context.Context, m *paymentmethod.PaymentMethod) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.methods[m.ID]; exists {
		return ierr.NewErrorf("payment method %s already exists", m.ID).
			Mark(ierr.ErrAlreadyExists)
	}
	r.methods[m.ID] = m
	return nil
}

func (r *InMemoryPaymentMethodStore) GetPrimary(ctx context.Context, orgID string) (*paymentmethod.PaymentMethod, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.methods {
		if m.OrgID == orgID && m.Primary && m.Status == types.StatusPublished {
			return m, nil
		}
	}
	return nil, nil
}

func (r *InMemoryPaymentMethodStore) TxSnapshot() any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snapshot := make(map[string]paymentmethod.PaymentMethod, len(r.methods))
	for id, m := range r.methods {
		snapshot[id] = *m
	}
	return snapshot
}

func (r *InMemoryPaymentMethodStore) TxRestore(snapshot any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	saved := snapshot.(map[string]paymentmethod.PaymentMethod)
	r.methods = make(map[string]*paymentmethod.PaymentMethod, len(saved))
	for id, m := range saved {
		m := m
		r.methods[id] = &m
	}
}

func (r *InMemoryPaymentMethodStore) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.methods = make(map[string]*paymentmethod.PaymentMethod)
}
