// Package imagestore serves product images from an SFTP host. Files
// live flat under a configured root directory; names are validated so
// callers can never escape it.
package imagestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

var (
	// ErrFileNotFound is returned when the requested image does not exist.
	ErrFileNotFound = errors.New("imagestore: file not found")
	// ErrBadName is returned for names that would escape the image root.
	ErrBadName = errors.New("imagestore: invalid file name")
)

// Config carries SFTP connection settings.
type Config struct {
	Addr     string
	User     string
	Password string
	Root     string
	Timeout  time.Duration
}

// Client is a lazily connected SFTP image store. The underlying session
// is dialed on first use and redialed after a failure.
type Client struct {
	cfg Config

	mu   sync.Mutex
	ssh  *ssh.Client
	sftp *sftp.Client
}

// NewClient builds a Client; no connection is made until the first call.
func NewClient(cfg Config) *Client {
	if cfg.Root == "" {
		cfg.Root = "/images"
	}
	return &Client{cfg: cfg}
}

// Download opens the named image for reading. The returned ReadCloser
// must be closed by the caller.
func (c *Client) Download(ctx context.Context, name string) (io.ReadCloser, error) {
	name, err := safeName(name)
	if err != nil {
		return nil, err
	}
	conn, err := c.session(ctx)
	if err != nil {
		return nil, err
	}
	f, err := conn.Open(path.Join(c.cfg.Root, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrFileNotFound
		}
		c.drop()
		return nil, fmt.Errorf("imagestore: open %s: %w", name, err)
	}
	return f, nil
}

// Upload writes r to the named image, replacing any existing file.
func (c *Client) Upload(ctx context.Context, name string, r io.Reader) error {
	name, err := safeName(name)
	if err != nil {
		return err
	}
	conn, err := c.session(ctx)
	if err != nil {
		return err
	}
	f, err := conn.Create(path.Join(c.cfg.Root, name))
	if err != nil {
		c.drop()
		return fmt.Errorf("imagestore: create %s: %w", name, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		c.drop()
		return fmt.Errorf("imagestore: write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		c.drop()
		return fmt.Errorf("imagestore: close %s: %w", name, err)
	}
	return nil
}

// Close tears down the SFTP session if one is open.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var err error
	if c.sftp != nil {
		err = c.sftp.Close()
		c.sftp = nil
	}
	if c.ssh != nil {
		if cerr := c.ssh.Close(); err == nil {
			err = cerr
		}
		c.ssh = nil
	}
	return err
}

func (c *Client) session(ctx context.Context) (*sftp.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sftp != nil {
		return c.sftp, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sshCfg := &ssh.ClientConfig{
		User:            c.cfg.User,
		Auth:            []ssh.AuthMethod{ssh.Password(c.cfg.Password)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         c.cfg.Timeout,
	}
	sshConn, err := ssh.Dial("tcp", c.cfg.Addr, sshCfg)
	if err != nil {
		return nil, fmt.Errorf("imagestore: dial %s: %w", c.cfg.Addr, err)
	}
	sftpConn, err := sftp.NewClient(sshConn)
	if err != nil {
		_ = sshConn.Close()
		return nil, fmt.Errorf("imagestore: sftp handshake: %w", err)
	}
	c.ssh = sshConn
	c.sftp = sftpConn
	return c.sftp, nil
}

// drop discards the cached session so the next call redials.
func (c *Client) drop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sftp != nil {
		_ = c.sftp.Close()
		c.sftp = nil
	}
	if c.ssh != nil {
		_ = c.ssh.Close()
		c.ssh = nil
	}
}

// safeName rejects names that are empty, carry a path separator or try
// to traverse upward.
func safeName(name string) (string, error) {
	if name == "" {
		return "", ErrBadName
	}
	if strings.ContainsAny(name, "/\\") {
		return "", ErrBadName
	}
	if name == "." || name == ".." || strings.Contains(name, "..") {
		return "", ErrBadName
	}
	return name, nil
}
