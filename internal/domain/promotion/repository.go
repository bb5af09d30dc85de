package promotion

import (
	"context"
)

// Repository defines the interface for promotion code lookup.
type Repository interface {
	Create(ctx context.Context, code *Code) error

	// GetByCode returns the code or a not-found error; expiry and
	// ownership checks are the caller's concern.
	GetByCode(ctx context.Context, code string) (*Code, error)
}
