package api

import (
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// envelopeVersion is the wire version of the response envelope. Clients pin
// against it, so bump it only with a coordinated client release.
const envelopeVersion = 1

type envelope struct {
	V       int  `json:"v"`
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// EnvelopeTransformer wraps every successful response body in the shared
// envelope structure. Error bodies already carry their own shape and pass
// through untouched.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if _, ok := v.(huma.StatusError); ok {
		return v, nil
	}

	return &envelope{
		V:       envelopeVersion,
		Success: strings.HasPrefix(status, "2") || strings.HasPrefix(status, "3"),
		Data:    v,
	}, nil
}
