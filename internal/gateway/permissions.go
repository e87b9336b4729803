package gateway

import (
	"context"
	"strings"

	"posgate.io/internal/auth"
	"posgate.io/internal/catalog"
)

// Grants returns the capability flags granted to username. Reading one's
// own grants is always allowed.
func (s *Service) Grants(ctx context.Context, username string) (auth.PermissionSet, error) {
	if _, err := s.require(ctx, func(p auth.Principal) bool {
		return p.Permissions.Admin || p.Permissions.Permissions || p.IsSelf(username)
	}); err != nil {
		return auth.PermissionSet{}, err
	}
	username = strings.ToLower(strings.TrimSpace(username))
	exists, err := s.store.UserExists(ctx, username)
	if err != nil {
		return auth.PermissionSet{}, err
	}
	if !exists {
		return auth.PermissionSet{}, ErrNotFound
	}
	grants, err := s.store.Grants(ctx, username)
	if err != nil {
		return auth.PermissionSet{}, err
	}
	return auth.PermissionSetFromGrants(grants), nil
}

// ReplaceGrants fully replaces username's capability flags
// (delete-all-then-insert-granted, one transaction).
func (s *Service) ReplaceGrants(ctx context.Context, username string, set auth.PermissionSet) error {
	if _, err := s.require(ctx, func(p auth.Principal) bool {
		return p.Permissions.Admin || p.Permissions.Permissions
	}); err != nil {
		return err
	}
	return s.store.ReplaceGrants(ctx, strings.ToLower(strings.TrimSpace(username)), set.Grants())
}

// StoreCodes lists the retail store codes known to the gateway.
func (s *Service) StoreCodes(ctx context.Context) ([]string, error) {
	if _, err := s.require(ctx, func(auth.Principal) bool { return true }); err != nil {
		return nil, err
	}
	out := make([]string, len(catalog.StoreCodes))
	copy(out, catalog.StoreCodes)
	return out, nil
}

// UserStoreAccess returns username's store-access grant.
func (s *Service) UserStoreAccess(ctx context.Context, username string) (auth.StoreAccess, error) {
	if _, err := s.require(ctx, func(p auth.Principal) bool {
		return p.Permissions.Admin || p.Permissions.Stores || p.IsSelf(username)
	}); err != nil {
		return auth.StoreAccess{}, err
	}
	return s.store.StoreAccess(ctx, strings.ToLower(strings.TrimSpace(username)))
}

// ReplaceUserStoreAccess fully replaces username's store-access grant.
// When the all-stores flag is set the explicit per-store rows are dropped.
func (s *Service) ReplaceUserStoreAccess(ctx context.Context, username string, access auth.StoreAccess) error {
	if _, err := s.require(ctx, func(p auth.Principal) bool {
		return p.Permissions.Admin || p.Permissions.Stores
	}); err != nil {
		return err
	}
	if access.AllStores {
		access.Stores = nil
	}
	return s.store.ReplaceStoreAccess(ctx, strings.ToLower(strings.TrimSpace(username)), access)
}
