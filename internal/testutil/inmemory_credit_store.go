package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/seatbill/seatbill/internal/domain/credit"
	ierr "github.com/seatbill/seatbill/internal/errors"
	"github.com/seatbill/seatbill/internal/types"
	"github.com/shopspring/decimal"
)

// InMemoryCreditStore implements credit.Repository over a map.
type InMemoryCreditStore struct {
	mu           sync.RWMutex
	transactions map[string]*credit.Transaction

	// CreateErr, when set, is returned by Create. Used to simulate
	// infrastructure failures mid-transition.
	CreateErr error

	// BalanceHook, when set, rewrites the balance Balance returns. Used
	// to simulate a concurrent writer between two reads of the same
	// organization's ledger.
	BalanceHook func(orgID string, balance decimal.Decimal) decimal.Decimal
}

func NewInMemoryCreditStore() *InMemoryCreditStore {
	return &InMemoryCreditStore{
		transactions: make(map[string]*credit.Transaction),
	}
}

func (r *InMemoryCreditStore) Create(ctx context.Context, txn *credit.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CreateErr != nil {
		return r.CreateErr
	}
	if _, exists := r.transactions[txn.ID]; exists {
		return ierr.NewErrorf("credit transaction %s already exists", txn.ID).
			Mark(ierr.ErrAlreadyExists)
	}
	r.transactions[txn.ID] = txn
	return nil
}

func (r *InMemoryCreditStore) Get(ctx context.Context, id string) (*credit.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	txn, exists := r.transactions[id]
	if !exists || txn.Status != types.StatusPublished {
		return nil, ierr.NewErrorf("credit transaction %s not found", id).
			Mark(ierr.ErrNotFound)
	}
	return txn, nil
}

func (r *InMemoryCreditStore) List(ctx context.Context, orgID string) ([]*credit.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*credit.Transaction, 0)
	for _, t := range r.transactions {
		if t.OrgID == orgID && t.Status == types.StatusPublished {
			result = append(result, t)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *InMemoryCreditStore) Balance(ctx context.Context, orgID string) (decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	balance := decimal.Zero
	for _, t := range r.transactions {
		if t.OrgID == orgID && t.Status == types.StatusPublished {
			balance = balance.Add(t.Amount)
		}
	}
	if r.BalanceHook != nil {
		balance = r.BalanceHook(orgID, balance)
	}
	return balance, nil
}

func (r *InMemoryCreditStore) TxSnapshot() any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snapshot := make(map[string]credit.Transaction, len(r.transactions))
	for id, t := range r.transactions {
		snapshot[id] = *t
	}
	return snapshot
}

func (r *InMemoryCreditStore) TxRestore(snapshot any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	saved := snapshot.(map[string]credit.Transaction)
	r.transactions = make(map[string]*credit.Transaction, len(saved))
	for id, t := range saved {
		t := t
		r.transactions[id] = &t
	}
}

func (r *InMemoryCreditStore) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transactions = make(map[string]*credit.Transaction)
	r.CreateErr = nil
	r.BalanceHook = nil
}
