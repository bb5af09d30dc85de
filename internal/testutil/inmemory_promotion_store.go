package testutil

import (
	"context"
	"sync"

	"github.com/seatbill/seatbill/internal/domain/promotion"
	ierr "github.com/seatbill/seatbill/internal/errors"
	"github.com/seatbill/seatbill/internal/types"
)

// InMemoryPromotionStore implements promotion.Repository over a map keyed
// by the code string.
type InMemoryPromotionStore struct {
	mu    sync.RWMutex
	codes map[string]*promotion.Code

	// GetErr, when set, is returned by GetByCode regardless of input.
	GetErr error
}

func NewInMemoryPromotionStore() *InMemoryPromotionStore {
	return &InMemoryPromotionStore{
		codes: make(map[string]*promotion.Code),
	}
}

func (r *InMemoryPromotionStore) Create(ctx context.Context, code *promotion.Code) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.codes[code.Code]; exists {
		return ierr.NewErrorf("promotion code %s already exists", code.Code).
			Mark(ierr.ErrAlreadyExists)
	}
	r.codes[code.Code] = code
	return nil
}

func (r *InMemoryPromotionStore) GetByCode(ctx context.Context, code string) (*promotion.Code, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.GetErr != nil {
		return nil, r.GetErr
	}
	promo, exists := r.codes[code]
	if !exists || promo.Status != types.StatusPublished {
		return nil, ierr.NewErrorf("promotion code %s not found", code).
			Mark(ierr.ErrNotFound)
	}
	return promo, nil
}

func (r *InMemoryPromotionStore) TxSnapshot() any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snapshot := make(map[string]promotion.Code, len(r.codes))
	for code, promo := range r.codes {
		snapshot[code] = *promo
	}
	return snapshot
}

func (r *InMemoryPromotionStore) TxRestore(snapshot any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	saved := snapshot.(map[string]promotion.Code)
	r.codes = make(map[string]*promotion.Code, len(saved))
	for code, promo := range saved {
		promo := promo
		r.codes[code] = &promo
	}
}

func (r *InMemoryPromotionStore) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes = make(map[string]*promotion.Code)
	r.GetErr = nil
}
