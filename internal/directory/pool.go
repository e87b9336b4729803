package directory

import (
	"context"

	"github.com/go-ldap/ldap/v3"
)

// Conn is the subset of an LDAP session the directory layer uses.
type Conn interface {
	Search(req *ldap.SearchRequest) (*ldap.SearchResult, error)
	Modify(req *ldap.ModifyRequest) error
	Close() error
}

// DialFunc opens and binds a fresh directory session.
type DialFunc func(ctx context.Context) (Conn, error)

// Pool is a fixed-size session pool. Directory servers in this deployment
// expect one session per caller, so the default size is 1; the pool still
// guarantees at-most-one concurrent use per connection at any size.
// Sessions are dialed lazily and replaced by the holder on network
// failure (latch-and-replace).
type Pool struct {
	dial DialFunc
	// Buffered channel of slots; a nil element is an empty slot whose
	// session is dialed on demand.
	slots chan Conn
}

// NewPool creates a pool with size slots.
func NewPool(size int, dial DialFunc) *Pool {
	if size <= 0 {
		size = 1
	}
	p := &Pool{dial: dial, slots: make(chan Conn, size)}
	for i := 0; i < size; i++ {
		p.slots <- nil
	}
	return p
}

// Do runs op on a pooled session. On a network failure the holder closes
// the broken session, dials a replacement and retries op once; any other
// failure is returned as-is with the session kept.
func (p *Pool) Do(ctx context.Context, op func(Conn) error) error {
	conn, err := p.acquire(ctx)
	if err != nil {
		return err
	}

	err = op(conn)
	if err == nil {
		p.slots <- conn
		return nil
	}
	if !isNetworkError(err) {
		p.slots <- conn
		return err
	}

	_ = conn.Close()
	fresh, dialErr := p.dial(ctx)
	if dialErr != nil {
		p.slots <- nil
		return err
	}
	if retryErr := op(fresh); retryErr != nil {
		if isNetworkError(retryErr) {
			_ = fresh.Close()
			p.slots <- nil
		} else {
			p.slots <- fresh
		}
		return retryErr
	}
	p.slots <- fresh
	return nil
}

// Close drains the pool and closes every live session.
func (p *Pool) Close() {
	for i := 0; i < cap(p.slots); i++ {
		if conn := <-p.slots; conn != nil {
			_ = conn.Close()
		}
	}
}

func (p *Pool) acquire(ctx context.Context) (Conn, error) {
	select {
	case conn := <-p.slots:
		if conn != nil {
			return conn, nil
		}
		fresh, err := p.dial(ctx)
		if err != nil {
			p.slots <- nil
			return nil, err
		}
		return fresh, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func isNetworkError(err error) bool {
	return ldap.IsErrorWithCode(err, ldap.ErrorNetwork)
}
