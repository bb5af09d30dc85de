package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/seatbill/seatbill/internal/domain/subscription"
	ierr "github.com/seatbill/seatbill/internal/errors"
	"github.com/seatbill/seatbill/internal/types"
)

// InMemorySubscriptionStore implements subscription.Repository over maps.
// The current snapshot is derived the same way the SQL store derives it:
// latest published block joined with its published subscription.
type InMemorySubscriptionStore struct {
	mu            sync.RWMutex
	subscriptions map[string]*subscription.Subscription
	blocks        map[string]*subscription.Block
	occupiedSeats map[string]int64

	// CreateBlockErr, when set, is returned by CreateBlock. Used to
	// simulate infrastructure failures mid-transition.
	CreateBlockErr error
}

func NewInMemorySubscriptionStore() *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{
		subscriptions: make(map[string]*subscription.Subscription),
		blocks:        make(map[string]*subscription.Block),
		occupiedSeats: make(map[string]int64),
	}
}

// SetOccupiedSeats fixes the seat-assignment count reported for an
// organization.
func (r *InMemorySubscriptionStore) SetOccupiedSeats(orgID string, n int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.occupiedSeats[orgID] = n
}

func (r *InMemorySubscriptionStore) CreateSubscription(ctx context.Context, sub *subscription.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.subscriptions[sub.ID]; exists {
		return ierr.NewErrorf("subscription %s already exists", sub.ID).
			Mark(ierr.ErrAlreadyExists)
	}
	r.subscriptions[sub.ID] = sub
	return nil
}

func (r *InMemorySubscriptionStore) GetSubscription(ctx context.Context, id string) (*subscription.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sub, exists := r.subscriptions[id]
	if !exists || sub.Status != types.StatusPublished {
		return nil, ierr.NewErrorf("subscription %s not found", id).
			Mark(ierr.ErrNotFound)
	}
	// Return a copy so callers mutate their own row, as with the SQL store.
	out := *sub
	return &out, nil
}

func (r *InMemorySubscriptionStore) UpdateSubscription(ctx context.Context, sub *subscription.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.subscriptions[sub.ID]; !exists {
		return ierr.NewErrorf("subscription %s not found", sub.ID).
			Mark(ierr.ErrNotFound)
	}
	r.subscriptions[sub.ID] = sub
	return nil
}

func (r *InMemorySubscriptionStore) CreateBlock(ctx context.Context, block *subscription.Block) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CreateBlockErr != nil {
		return r.CreateBlockErr
	}
	if _, exists := r.blocks[block.ID]; exists {
		return ierr.NewErrorf("subscription block %s already exists", block.ID).
			Mark(ierr.ErrAlreadyExists)
	}
	r.blocks[block.ID] = block
	return nil
}

func (r *InMemorySubscriptionStore) GetBlock(ctx context.Context, id string) (*subscription.Block, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	block, exists := r.blocks[id]
	if !exists || block.Status != types.StatusPublished {
		return nil, ierr.NewErrorf("subscription block %s not found", id).
			Mark(ierr.ErrNotFound)
	}
	// Return a copy so callers mutate their own row, as with the SQL store.
	out := *block
	return &out, nil
}

func (r *InMemorySubscriptionStore) UpdateBlock(ctx context.Context, block *subscription.Block) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.blocks[block.ID]; !exists {
		return ierr.NewErrorf("subscription block %s not found", block.ID).
			Mark(ierr.ErrNotFound)
	}
	r.blocks[block.ID] = block
	return nil
}

func (r *InMemorySubscriptionStore) ListBlocks(ctx context.Context, orgID string) ([]*subscription.Block, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*subscription.Block, 0)
	for _, b := range r.blocks {
		if b.OrgID == orgID && b.Status == types.StatusPublished {
			result = append(result, b)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].StartedAt.Equal(result[j].StartedAt) {
			return result[i].StartedAt.After(result[j].StartedAt)
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *InMemorySubscriptionStore) GetCurrentSnapshot(ctx context.Context, orgID string, forUpdate bool) (*subscription.CurrentSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var head *subscription.Block
	for _, b := range r.blocks {
		if b.OrgID != orgID || b.Status != types.StatusPublished {
			continue
		}
		sub, ok := r.subscriptions[b.SubscriptionID]
		if !ok || sub.Status != types.StatusPublished {
			continue
		}
		if head == nil ||
			b.StartedAt.After(head.StartedAt) ||
			(b.StartedAt.Equal(head.StartedAt) && b.CreatedAt.After(head.CreatedAt)) {
			head = b
		}
	}
	if head == nil {
		return nil, nil
	}

	return &subscription.CurrentSnapshot{
		OrgID:          head.OrgID,
		SubscriptionID: head.SubscriptionID,
		HeadBlockID:    head.ID,
		Type:           head.Type,
		Seats:          head.Seats,
		OccupiedSeats:  r.occupiedSeats[orgID],
		PricePerSeat:   head.PricePerSeat,
		PromotionCode:  head.PromotionCode,
		StartedAt:      head.StartedAt,
		EndingAt:       head.EndingAt,
	}, nil
}

type subscriptionStoreSnapshot struct {
	subscriptions map[string]subscription.Subscription
	blocks        map[string]subscription.Block
	occupiedSeats map[string]int64
}

func (r *InMemorySubscriptionStore) TxSnapshot() any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snapshot := subscriptionStoreSnapshot{
		subscriptions: make(map[string]subscription.Subscription, len(r.subscriptions)),
		blocks:        make(map[string]subscription.Block, len(r.blocks)),
		occupiedSeats: make(map[string]int64, len(r.occupiedSeats)),
	}
	for id, sub := range r.subscriptions {
		snapshot.subscriptions[id] = *sub
	}
	for id, b := range r.blocks {
		snapshot.blocks[id] = *b
	}
	for org, n := range r.occupiedSeats {
		snapshot.occupiedSeats[org] = n
	}
	return snapshot
}

func (r *InMemorySubscriptionStore) TxRestore(snapshot any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	saved := snapshot.(subscriptionStoreSnapshot)
	r.subscriptions = make(map[string]*subscription.Subscription, len(saved.subscriptions))
	for id, sub := range saved.subscriptions {
		sub := sub
		r.subscriptions[id] = &sub
	}
	r.blocks = make(map[string]*subscription.Block, len(saved.blocks))
	for id, b := range saved.blocks {
		b := b
		r.blocks[id] = &b
	}
	r.occupiedSeats = make(map[string]int64, len(saved.occupiedSeats))
	for org, n := range saved.occupiedSeats {
		r.occupiedSeats[org] = n
	}
}

func (r *InMemorySubscriptionStore) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscriptions = make(map[string]*subscription.Subscription)
	r.blocks = make(map[string]*subscription.Block)
	r.occupiedSeats = make(map[string]int64)
	r.CreateBlockErr = nil
}
