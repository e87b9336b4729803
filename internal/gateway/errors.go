package gateway

import "errors"

var (
	// ErrNotFound maps to 404: the named identity or resource is absent.
	ErrNotFound = errors.New("gateway: not found")
	// ErrExists maps to 409: duplicate create.
	ErrExists = errors.New("gateway: already exists")
	// ErrInvalidData maps to 401: the request payload failed validation.
	ErrInvalidData = errors.New("gateway: invalid data")
	// ErrStore maps to 500: the credential store is unavailable or a
	// statement failed. Raw driver detail never leaves the service layer.
	ErrStore = errors.New("gateway: store failure")
)
