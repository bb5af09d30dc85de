package paymentmethod

import (
	"context"
)

// Repository defines the interface for payment method lookup.
type Repository interface {
	Create(ctx context.Context, m *PaymentMethod) error

	// GetPrimary returns the organization's primary payment method, or
	// nil (not an error) when the organization has none on file.
	GetPrimary(ctx context.Context, orgID string) (*PaymentMethod, error)
}
