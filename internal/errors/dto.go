package errors

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
)

// detailsPrefix tags safe-detail payloads carrying reportable JSON, so they
// can be told apart from format strings cockroachdb/errors records itself.
const detailsPrefix = "__json__:"

// ErrorResponse is the envelope every failed request returns.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// ErrorDetail carries the user-facing message and any reportable details
// attached along the error chain.
type ErrorDetail struct {
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// NewErrorResponse flattens an error chain into the response envelope.
func NewErrorResponse(err error) ErrorResponse {
	return ErrorResponse{
		Success: false,
		Error: ErrorDetail{
			Message: DisplayMessage(err),
			Details: ReportableDetails(err),
		},
	}
}

// DisplayMessage picks the user-facing message for an error: the first
// non-empty hint on the chain, else a generic message for the sentinel the
// error is marked with. Raw error text never reaches the client.
func DisplayMessage(err error) string {
	for _, hint := range errors.GetAllHints(err) {
		if hint = strings.TrimSpace(hint); hint != "" {
			return hint
		}
	}
	switch {
	case IsValidation(err):
		return "The request is invalid"
	case IsNotFound(err):
		return "The requested resource was not found"
	case IsAlreadyExists(err):
		return "The resource already exists"
	case IsInvalidOperation(err):
		return "The operation is not allowed in the current state"
	}
	return "An unexpected error occurred"
}

// ReportableDetails merges every reportable-details payload attached along
// the error chain into one map. Returns nil when the chain carries none.
func ReportableDetails(err error) map[string]any {
	details := make(map[string]any)
	for _, sdp := range errors.GetAllSafeDetails(err) {
		for _, payload := range sdp.SafeDetails {
			if !strings.HasPrefix(payload, detailsPrefix) {
				continue
			}
			var decoded map[string]any
			if json.Unmarshal([]byte(payload[len(detailsPrefix):]), &decoded) != nil {
				continue
			}
			for k, v := range decoded {
				details[k] = v
			}
		}
	}
	if len(details) == 0 {
		return nil
	}
	return details
}
