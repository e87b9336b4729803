package gateway

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"posgate.io/internal/auth"
	"posgate.io/internal/directory"
)

// ImageStore is the external file-transfer collaborator.
type ImageStore interface {
	Download(ctx context.Context, name string) (io.ReadCloser, error)
	Upload(ctx context.Context, name string, r io.Reader) error
}

// Directory is the external LDAP collaborator.
type Directory interface {
	Lookup(ctx context.Context, username string) (directory.Entry, error)
	ModifyAttributes(ctx context.Context, username string, name, email *string) error
}

// Service is the access-controlled service layer. Every operation resolves
// the caller's principal from the request context, checks the required
// capability (authorization always runs before any mutating statement) and
// maps store failures to the gateway error taxonomy.
type Service struct {
	store  Store
	tokens *auth.TokenService
	images ImageStore
	dir    Directory
}

// Option configures Service.
type Option func(*Service)

// WithImageStore wires the SFTP-backed image collaborator.
func WithImageStore(images ImageStore) Option {
	return func(s *Service) { s.images = images }
}

// WithDirectory wires the LDAP collaborator.
func WithDirectory(dir Directory) Option {
	return func(s *Service) { s.dir = dir }
}

// New constructs the service layer.
func New(store Store, tokens *auth.TokenService, opts ...Option) *Service {
	s := &Service{store: store, tokens: tokens}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tokens exposes the token service for the transport boundary.
func (s *Service) Tokens() *auth.TokenService {
	return s.tokens
}

// Login authenticates username/password and issues a session token. An
// unknown user and a wrong password surface identically as
// auth.ErrInvalidCredentials; revealing which one failed would leak
// account existence.
func (s *Service) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || password == "" {
		return "", time.Time{}, auth.ErrInvalidCredentials
	}
	user, err := s.store.GetUser(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", time.Time{}, auth.ErrInvalidCredentials
		}
		return "", time.Time{}, err
	}
	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
		return "", time.Time{}, auth.ErrInvalidCredentials
	}
	return s.tokens.Issue(auth.Identity{
		Username:      user.Username,
		Name:          user.Name,
		Email:         user.Email,
		LoginDuration: user.LoginDuration,
	})
}

// Resolve loads the capability flags and store-access grant for an
// identity. The identity's existence is probed first; a token naming a
// user that no longer exists resolves to ErrNotFound.
func (s *Service) Resolve(ctx context.Context, username string) (auth.PermissionSet, auth.StoreAccess, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	exists, err := s.store.UserExists(ctx, username)
	if err != nil {
		return auth.PermissionSet{}, auth.StoreAccess{}, err
	}
	if !exists {
		return auth.PermissionSet{}, auth.StoreAccess{}, ErrNotFound
	}
	grants, err := s.store.Grants(ctx, username)
	if err != nil {
		return auth.PermissionSet{}, auth.StoreAccess{}, err
	}
	access, err := s.store.StoreAccess(ctx, username)
	if err != nil {
		return auth.PermissionSet{}, auth.StoreAccess{}, err
	}
	return auth.PermissionSetFromGrants(grants), access, nil
}

// require extracts the principal and applies an authorization predicate.
// The predicate spells out OR-combinations explicitly; admin is never
// implied to cover other capabilities.
func (s *Service) require(ctx context.Context, allow func(auth.Principal) bool) (auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return auth.Principal{}, auth.ErrUnauthorized
	}
	if !allow(principal) {
		return auth.Principal{}, auth.ErrUnauthorized
	}
	return principal, nil
}
