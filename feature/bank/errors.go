package bank

import "errors"

var (
	// ErrInvalidRequest marks malformed input from a caller.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrStorageDisabled is returned by import and export when no object storage client is configured.
	ErrStorageDisabled = errors.New("object storage is not configured")
)
