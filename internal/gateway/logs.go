package gateway

import (
	"context"
	"strings"
	"time"

	"posgate.io/internal/auth"
)

// Logs returns the most recent audit trail entries, admin-only.
func (s *Service) Logs(ctx context.Context, limit int) ([]LogEntry, error) {
	if _, err := s.require(ctx, func(p auth.Principal) bool {
		return p.Permissions.Admin
	}); err != nil {
		return nil, err
	}
	return s.store.ListLogs(ctx, limit)
}

// LogsByUser returns the audit trail for one identity, admin-only.
func (s *Service) LogsByUser(ctx context.Context, username string, limit int) ([]LogEntry, error) {
	if _, err := s.require(ctx, func(p auth.Principal) bool {
		return p.Permissions.Admin
	}); err != nil {
		return nil, err
	}
	return s.store.ListLogsByUser(ctx, strings.ToLower(strings.TrimSpace(username)), limit)
}

// DeleteLog removes one entry by id, admin-only. Deleting an absent id
// succeeds with zero rows affected.
func (s *Service) DeleteLog(ctx context.Context, id int64) (int64, error) {
	if _, err := s.require(ctx, func(p auth.Principal) bool {
		return p.Permissions.Admin
	}); err != nil {
		return 0, err
	}
	return s.store.DeleteLog(ctx, id)
}

// DeleteLogsByUser removes an identity's entries, optionally capped by
// count (limit <= 0 means no cap), admin-only. Idempotent: zero rows is
// success.
func (s *Service) DeleteLogsByUser(ctx context.Context, username string, limit int) (int64, error) {
	if _, err := s.require(ctx, func(p auth.Principal) bool {
		return p.Permissions.Admin
	}); err != nil {
		return 0, err
	}
	return s.store.DeleteLogsByUser(ctx, strings.ToLower(strings.TrimSpace(username)), limit)
}

// RecordLog appends an audit trail row. No capability gate: the transport
// boundary records every request outcome, including unauthenticated ones.
// Username and token default from the request context when unset.
func (s *Service) RecordLog(ctx context.Context, entry LogEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	if entry.Username == "" {
		if principal, ok := auth.PrincipalFromContext(ctx); ok {
			entry.Username = principal.Username()
		}
	}
	if entry.Token == "" {
		if token, ok := auth.TokenFromContext(ctx); ok {
			entry.Token = token
		}
	}
	return s.store.InsertLog(ctx, &entry)
}
