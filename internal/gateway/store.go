package gateway

import (
	"context"

	"posgate.io/internal/auth"
	"posgate.io/internal/catalog"
)

// Store describes the credential-store operations the service layer
// requires. Implementations translate driver failures into the gateway
// error taxonomy (ErrNotFound, ErrExists, ErrStore).
type Store interface {
	// Users. GetUser includes the password hash for login verification;
	// callers shape responses before returning them to the transport.
	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, username string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	UpdateUser(ctx context.Context, username string, upd UserUpdate) (User, error)
	// DeleteUser cascades: permission grants, store-access grants, then
	// the identity row, committed atomically.
	DeleteUser(ctx context.Context, username string) error
	UserExists(ctx context.Context, username string) (bool, error)

	// Permission grants: one row per granted capability.
	Grants(ctx context.Context, username string) ([]string, error)
	ReplaceGrants(ctx context.Context, username string, grants []string) error

	// Store-access grants.
	StoreAccess(ctx context.Context, username string) (auth.StoreAccess, error)
	ReplaceStoreAccess(ctx context.Context, username string, access auth.StoreAccess) error

	// Product inventory, read-only.
	SearchProducts(ctx context.Context, f catalog.Filter) ([]catalog.Product, error)

	// Audit trail.
	InsertLog(ctx context.Context, e *LogEntry) error
	ListLogs(ctx context.Context, limit int) ([]LogEntry, error)
	ListLogsByUser(ctx context.Context, username string, limit int) ([]LogEntry, error)
	DeleteLog(ctx context.Context, id int64) (int64, error)
	DeleteLogsByUser(ctx context.Context, username string, limit int) (int64, error)

	// Version checks.
	LatestVersion(ctx context.Context, platform string) (Version, error)
}
