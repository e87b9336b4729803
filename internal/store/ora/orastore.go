// Package ora is the Oracle-backed credential store. All statements use
// named binds; driver failures are mapped to the gateway error taxonomy
// at this boundary.
package ora

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "github.com/sijms/go-ora/v2"

	"posgate.io/internal/gateway"
)

// ORA-00001 is the unique constraint violation. The driver surfaces
// server errors as plain strings, so detection is by code prefix.
const oraUniqueViolation = "ORA-00001"

type Store struct {
	db             *sql.DB
	acquireTimeout time.Duration
}

var _ gateway.Store = (*Store)(nil)

// Option configures Store.
type Option func(*Store)

// WithAcquireTimeout bounds every statement with a deadline so a request
// against an exhausted connection pool fails instead of queueing forever.
func WithAcquireTimeout(d time.Duration) Option {
	return func(s *Store) { s.acquireTimeout = d }
}

// Open connects to the Oracle instance behind dsn with a fixed-size
// connection pool.
func Open(dsn string, poolSize int, opts ...Option) (*Store, error) {
	db, err := sql.Open("oracle", dsn)
	if err != nil {
		return nil, err
	}
	if poolSize <= 0 {
		poolSize = 10
	}
	db.SetMaxOpenConns(poolSize)
	db.SetMaxIdleConns(poolSize)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	s := &Store{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NewWithDB wraps an existing handle; used by tests.
func NewWithDB(db *sql.DB, opts ...Option) *Store {
	s := &Store{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

// opCtx derives the per-statement context. The deadline covers both the
// wait for a pooled connection and the statement itself.
func (s *Store) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.acquireTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.acquireTimeout)
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), oraUniqueViolation)
}
