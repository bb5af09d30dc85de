package payment

import (
	"context"
)

// Repository defines the interface for payment persistence operations.
type Repository interface {
	Create(ctx context.Context, p *Payment) error
	Get(ctx context.Context, id string) (*Payment, error)
	Update(ctx context.Context, p *Payment) error
	ListByOrg(ctx context.Context, orgID string) ([]*Payment, error)
}
