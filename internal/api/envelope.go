package api

import (
	"strconv"

	"github.com/danielgtaylor/huma/v2"
)

// envelopeVersion is bumped only on breaking envelope changes. Clients
// check it before parsing the payload.
const envelopeVersion = 1

// successEnvelope wraps successful responses. Data is always present,
// null for responses without a body.
type successEnvelope struct {
	V       int  `json:"v"`
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// errorEnvelope wraps error responses.
type errorEnvelope struct {
	V       int  `json:"v"`
	Success bool `json:"success"`
	Error   any  `json:"error"`
}

// EnvelopeTransformer wraps every JSON response body in the versioned
// envelope shared with the web client. Raw bodies (CSV export, SSE)
// never pass through here.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if isErrorResponse(status, v) {
		return &errorEnvelope{
			V:       envelopeVersion,
			Success: false,
			Error:   v,
		}, nil
	}

	return &successEnvelope{
		V:       envelopeVersion,
		Success: true,
		Data:    v,
	}, nil
}

func isErrorResponse(status string, v any) bool {
	if _, ok := v.(huma.StatusError); ok {
		return true
	}
	if code, err := strconv.Atoi(status); err == nil && code >= 400 {
		return true
	}
	return false
}
