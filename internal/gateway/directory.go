package gateway

import (
	"context"
	"fmt"
	"strings"

	"posgate.io/internal/auth"
	"posgate.io/internal/directory"
)

// DirectoryLookup returns the LDAP attributes for an identity.
func (s *Service) DirectoryLookup(ctx context.Context, username string) (directory.Entry, error) {
	if _, err := s.require(ctx, func(p auth.Principal) bool {
		return p.Permissions.Admin || p.Permissions.Users || p.IsSelf(username)
	}); err != nil {
		return directory.Entry{}, err
	}
	if s.dir == nil {
		return directory.Entry{}, fmt.Errorf("%w: directory is not configured", ErrStore)
	}
	return s.dir.Lookup(ctx, strings.ToLower(strings.TrimSpace(username)))
}

// DirectoryModify replaces the display-name and mail attributes of an
// identity's LDAP entry.
func (s *Service) DirectoryModify(ctx context.Context, username string, name, email *string) error {
	if _, err := s.require(ctx, func(p auth.Principal) bool {
		return p.Permissions.Admin || p.Permissions.Users
	}); err != nil {
		return err
	}
	if s.dir == nil {
		return fmt.Errorf("%w: directory is not configured", ErrStore)
	}
	if name == nil && email == nil {
		return ErrInvalidData
	}
	return s.dir.ModifyAttributes(ctx, strings.ToLower(strings.TrimSpace(username)), name, email)
}
