package auth

import "errors"

var (
	// ErrInvalidToken indicates the token failed validation.
	ErrInvalidToken = errors.New("auth: invalid token")
	// ErrInvalidCredentials indicates a failed login attempt. Unknown users
	// and wrong passwords surface identically.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrCredentialLookup indicates the identity record is unusable for
	// token issuance (e.g. malformed login duration).
	ErrCredentialLookup = errors.New("auth: credential lookup failed")
	// ErrUnauthorized indicates the caller lacks the required capability.
	ErrUnauthorized = errors.New("auth: unauthorized")
)
