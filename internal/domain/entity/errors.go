package entity

import "errors"

var (
	// ErrProviderFailure is returned when the provider reports status false
	ErrProviderFailure = errors.New("provider reported failure")
	// ErrMalformedPayload is returned when a successful provider response has the wrong shape
	ErrMalformedPayload = errors.New("malformed provider payload")
	// ErrTableNotFound is returned when a station or train table does not exist
	ErrTableNotFound = errors.New("table not found")
	// ErrNotFound is returned when the provider has no data for the request
	ErrNotFound = errors.New("not found")
)
