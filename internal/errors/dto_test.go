package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayMessage(t *testing.T) {
	err := NewError("seats below occupancy").
		WithHint("Organization has more occupied seats").
		Mark(ErrValidation)
	assert.Equal(t, "Organization has more occupied seats", DisplayMessage(err))

	// Without a hint the sentinel decides; raw error text stays internal.
	err = NewError("pq: connection refused").Mark(ErrDatabase)
	assert.Equal(t, "An unexpected error occurred", DisplayMessage(err))

	err = NewError("no subscription").Mark(ErrNotFound)
	assert.Equal(t, "The requested resource was not found", DisplayMessage(err))
}

func TestReportableDetails(t *testing.T) {
	err := NewError("seats below occupancy").
		WithReportableDetails(map[string]any{
			"requested_seats": 2,
			"occupied_seats":  5,
		}).
		Mark(ErrValidation)

	details := ReportableDetails(err)
	assert.Equal(t, float64(2), details["requested_seats"])
	assert.Equal(t, float64(5), details["occupied_seats"])

	assert.Nil(t, ReportableDetails(NewError("bare").Mark(ErrSystem)))
}

func TestNewErrorResponse(t *testing.T) {
	err := NewError("block is already paid").
		WithHint("A block can be billed at most once").
		WithReportableDetails(map[string]any{"block_id": "blk_1"}).
		Mark(ErrInvalidOperation)

	resp := NewErrorResponse(err)
	assert.False(t, resp.Success)
	assert.Equal(t, "A block can be billed at most once", resp.Error.Message)
	assert.Equal(t, "blk_1", resp.Error.Details["block_id"])
}
