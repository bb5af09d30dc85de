package subscription

import (
	"context"
)

// Repository defines the interface for subscription persistence operations.
// All methods participate in any transaction carried by the context.
type Repository interface {
	CreateSubscription(ctx context.Context, sub *Subscription) error
	GetSubscription(ctx context.Context, id string) (*Subscription, error)
	UpdateSubscription(ctx context.Context, sub *Subscription) error

	CreateBlock(ctx context.Context, block *Block) error
	GetBlock(ctx context.Context, id string) (*Block, error)
	UpdateBlock(ctx context.Context, block *Block) error
	ListBlocks(ctx context.Context, orgID string) ([]*Block, error)

	// GetCurrentSnapshot recomputes the organization's current
	// subscription view. With forUpdate set it locks the underlying head
	// rows for the duration of the surrounding transaction, guaranteeing
	// at most one in-flight billing transition per organization. Returns
	// nil (not an error) when the organization has no subscription.
	GetCurrentSnapshot(ctx context.Context, orgID string, forUpdate bool) (*CurrentSnapshot, error)
}
