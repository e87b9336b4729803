// Package directory reads and writes personnel attributes in the
// company LDAP tree. Lookups key on the login name (uid); writes are
// limited to the display name and mail attributes.
package directory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-ldap/ldap/v3"
)

// ErrNotFound is returned when no directory entry matches the username.
var ErrNotFound = errors.New("directory: entry not found")

// Entry is a directory record for one person.
type Entry struct {
	DN       string `json:"dn"`
	Username string `json:"p_username"`
	Name     string `json:"p_name"`
	Email    string `json:"p_email"`
}

// Config carries directory connection settings.
type Config struct {
	URL          string
	BindDN       string
	BindPassword string
	BaseDN       string
	PoolSize     int
	Timeout      time.Duration
}

// Service resolves and updates directory entries over a session pool.
type Service struct {
	pool   *Pool
	baseDN string
}

// NewService builds a Service that dials cfg.URL and binds with the
// service account on demand.
func NewService(cfg Config) *Service {
	dial := func(ctx context.Context) (Conn, error) {
		conn, err := ldap.DialURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("directory: dial %s: %w", cfg.URL, err)
		}
		if cfg.Timeout > 0 {
			conn.SetTimeout(cfg.Timeout)
		}
		if err := conn.Bind(cfg.BindDN, cfg.BindPassword); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("directory: bind %s: %w", cfg.BindDN, err)
		}
		return conn, nil
	}
	return &Service{pool: NewPool(cfg.PoolSize, dial), baseDN: cfg.BaseDN}
}

// NewServiceWithPool wires an existing pool; used by tests.
func NewServiceWithPool(pool *Pool, baseDN string) *Service {
	return &Service{pool: pool, baseDN: baseDN}
}

// Close releases all pooled sessions.
func (s *Service) Close() {
	s.pool.Close()
}

var entryAttributes = []string{"uid", "displayName", "cn", "mail"}

// Lookup returns the entry whose uid matches username.
func (s *Service) Lookup(ctx context.Context, username string) (Entry, error) {
	var entry Entry
	err := s.pool.Do(ctx, func(conn Conn) error {
		found, err := s.search(conn, username)
		if err != nil {
			return err
		}
		entry = found
		return nil
	})
	return entry, err
}

// ModifyAttributes replaces the display name and/or mail of the entry
// matching username. Nil fields are left untouched.
func (s *Service) ModifyAttributes(ctx context.Context, username string, name, email *string) error {
	return s.pool.Do(ctx, func(conn Conn) error {
		found, err := s.search(conn, username)
		if err != nil {
			return err
		}
		req := ldap.NewModifyRequest(found.DN, nil)
		if name != nil {
			req.Replace("displayName", []string{*name})
		}
		if email != nil {
			req.Replace("mail", []string{*email})
		}
		if err := conn.Modify(req); err != nil {
			return fmt.Errorf("directory: modify %s: %w", found.DN, err)
		}
		return nil
	})
}

func (s *Service) search(conn Conn, username string) (Entry, error) {
	filter := fmt.Sprintf("(uid=%s)", ldap.EscapeFilter(username))
	req := ldap.NewSearchRequest(
		s.baseDN,
		ldap.ScopeWholeSubtree, ldap.NeverDerefAliases, 1, 0, false,
		filter, entryAttributes, nil,
	)
	res, err := conn.Search(req)
	if err != nil {
		return Entry{}, fmt.Errorf("directory: search %s: %w", username, err)
	}
	if len(res.Entries) == 0 {
		return Entry{}, ErrNotFound
	}
	raw := res.Entries[0]
	entry := Entry{
		DN:       raw.DN,
		Username: raw.GetAttributeValue("uid"),
		Name:     raw.GetAttributeValue("displayName"),
		Email:    raw.GetAttributeValue("mail"),
	}
	if entry.Name == "" {
		entry.Name = raw.GetAttributeValue("cn")
	}
	return entry, nil
}
