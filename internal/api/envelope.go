package api

import (
	"strconv"

	"github.com/danielgtaylor/huma/v2"
)

// envelopeVersion is the wire envelope version. Bump only with a client
// migration plan; clients key on the exact field name "v".
const envelopeVersion = 1

// Envelope is the uniform response wrapper for every JSON endpoint.
type Envelope struct {
	V       int    `json:"v" doc:"Envelope version"`
	Success bool   `json:"success" doc:"Whether the request succeeded"`
	Data    any    `json:"data,omitempty" doc:"Response payload"`
	Error   string `json:"error,omitempty" doc:"Error summary for failures"`
	Code    string `json:"code,omitempty" doc:"Machine-readable error code"`
	Message string `json:"message,omitempty" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

// EnvelopeTransformer wraps every response body in the versioned envelope.
// Registered as a huma transformer on the API config.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if apiErr, ok := v.(*APIError); ok {
		return &Envelope{
			V:       envelopeVersion,
			Success: false,
			Error:   apiErr.Message,
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		}, nil
	}

	if code, err := strconv.Atoi(status); err == nil && code >= 400 {
		if e, ok := v.(error); ok {
			return &Envelope{
				V:       envelopeVersion,
				Success: false,
				Error:   e.Error(),
			}, nil
		}
	}

	return &Envelope{
		V:       envelopeVersion,
		Success: true,
		Data:    v,
	}, nil
}
