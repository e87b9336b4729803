// Package gateway implements the access-controlled service layer: one
// operation set per resource, each composing token validation, capability
// checks and the credential store.
package gateway

import "time"

// User is an identity record in the credential store. The username is the
// immutable key, unique case-insensitively and stored lowercase.
// LoginDuration is the token lifetime in hours, kept as the raw stored
// string and parsed at token issuance.
type User struct {
	Username      string    `json:"p_username"`
	Name          string    `json:"p_name"`
	Email         string    `json:"p_email"`
	LoginDuration string    `json:"p_login_duration"`
	PasswordHash  string    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewUser is the create-user input. Password arrives in plaintext and is
// hashed before persistence.
type NewUser struct {
	Username      string
	Password      string
	Name          string
	Email         string
	LoginDuration string
}

// UserUpdate is a partial update: only non-nil fields overwrite.
type UserUpdate struct {
	Name          *string
	Email         *string
	LoginDuration *string
	Password      *string
}

// LogEntry is one audit trail row. The persisted layout is a contract
// external monitoring depends on; fields are truncated, never rejected,
// on overflow (username<=64, route<=64, parameters<=2000, result<=200,
// token<=255, ip<=60, method<=64).
type LogEntry struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	Route      string    `json:"route"`
	Parameters string    `json:"parameters"`
	Timestamp  time.Time `json:"timestamp"`
	Result     string    `json:"result"`
	Token      string    `json:"token"`
	IP         string    `json:"ip"`
	Method     string    `json:"method"`
}

// Version is the latest released application version for a platform.
type Version struct {
	Platform   string    `json:"p_platform"`
	Version    string    `json:"p_version"`
	URL        string    `json:"p_url"`
	Mandatory  bool      `json:"p_mandatory"`
	ReleasedAt time.Time `json:"released_at"`
}
