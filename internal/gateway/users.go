package gateway

import (
	"context"
	"strings"

	"posgate.io/internal/auth"
	"posgate.io/internal/obs"
)

// ListUsers returns every identity record.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	if _, err := s.require(ctx, func(p auth.Principal) bool {
		return p.Permissions.Admin || p.Permissions.Users
	}); err != nil {
		return nil, err
	}
	return s.store.ListUsers(ctx)
}

// GetUser returns one identity record. Self-service exception: a user may
// always read their own record regardless of capability flags.
func (s *Service) GetUser(ctx context.Context, username string) (User, error) {
	if _, err := s.require(ctx, func(p auth.Principal) bool {
		return p.Permissions.Admin || p.Permissions.Users || p.IsSelf(username)
	}); err != nil {
		return User{}, err
	}
	return s.store.GetUser(ctx, strings.ToLower(strings.TrimSpace(username)))
}

// CreateUser creates an identity with a bcrypt-hashed password. Duplicate
// usernames (case-insensitive) fail with ErrExists.
func (s *Service) CreateUser(ctx context.Context, in NewUser) (User, error) {
	if _, err := s.require(ctx, func(p auth.Principal) bool {
		return p.Permissions.Admin || p.Permissions.Users
	}); err != nil {
		return User{}, err
	}
	username := strings.ToLower(strings.TrimSpace(in.Username))
	if username == "" || in.Password == "" {
		return User{}, ErrInvalidData
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return User{}, err
	}
	user := User{
		Username:      username,
		Name:          strings.TrimSpace(in.Name),
		Email:         strings.TrimSpace(in.Email),
		LoginDuration: strings.TrimSpace(in.LoginDuration),
		PasswordHash:  hash,
	}
	if err := s.store.CreateUser(ctx, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

// UpdateUser applies a partial update. Self-service exception: a user may
// edit their own record. A password change requires both a supplied new
// password and the admin capability; a non-admin caller's password field
// is silently dropped, not rejected.
func (s *Service) UpdateUser(ctx context.Context, username string, upd UserUpdate) (User, error) {
	principal, err := s.require(ctx, func(p auth.Principal) bool {
		return p.Permissions.Admin || p.Permissions.Users || p.IsSelf(username)
	})
	if err != nil {
		return User{}, err
	}
	username = strings.ToLower(strings.TrimSpace(username))

	stored := UserUpdate{
		Name:          upd.Name,
		Email:         upd.Email,
		LoginDuration: upd.LoginDuration,
	}
	if upd.Password != nil && *upd.Password != "" && principal.Permissions.Admin {
		hash, err := auth.HashPassword(*upd.Password)
		if err != nil {
			return User{}, err
		}
		stored.Password = &hash
	}

	user, err := s.store.UpdateUser(ctx, username, stored)
	if err != nil {
		return User{}, err
	}
	s.syncDirectory(ctx, username, upd.Name, upd.Email)
	return user, nil
}

// DeleteUser removes the identity and cascades to its permission and
// store-access grants in one transaction.
func (s *Service) DeleteUser(ctx context.Context, username string) error {
	if _, err := s.require(ctx, func(p auth.Principal) bool {
		return p.Permissions.Admin || p.Permissions.Users
	}); err != nil {
		return err
	}
	return s.store.DeleteUser(ctx, strings.ToLower(strings.TrimSpace(username)))
}

// syncDirectory mirrors name/email changes to the LDAP entry, best-effort:
// a directory outage must not fail the credential-store update that
// already committed.
func (s *Service) syncDirectory(ctx context.Context, username string, name, email *string) {
	if s.dir == nil || (name == nil && email == nil) {
		return
	}
	if err := s.dir.ModifyAttributes(ctx, username, name, email); err != nil {
		obs.LogRequest(map[string]any{
			"level":    "warn",
			"msg":      "directory sync failed",
			"username": username,
			"error":    err.Error(),
		})
	}
}
