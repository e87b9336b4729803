// Package config loads gateway configuration from environment variables,
// applying defaults so the rest of the service can rely on populated values.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	HTTP HTTPConfig
	DB   DBConfig
	Auth AuthConfig
	LDAP LDAPConfig
	SFTP SFTPConfig
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64
	RateBurst       int
	RatePerSec      int
}

// DBConfig holds credential-store (Oracle) settings. The pool is fixed-size:
// min connections equals max, sized at startup.
type DBConfig struct {
	DSN            string
	PoolSize       int
	AcquireTimeout time.Duration
}

// AuthConfig holds token signing settings. A single shared static secret
// signs every session token; there is no key rotation.
type AuthConfig struct {
	Secret string
	Issuer string
}

// LDAPConfig holds directory settings. PoolSize defaults to 1, matching the
// one-session-per-caller deployment model of the directory servers.
type LDAPConfig struct {
	URL          string
	BindDN       string
	BindPassword string
	BaseDN       string
	PoolSize     int
	Timeout      time.Duration
}

// SFTPConfig holds image-store transfer settings.
type SFTPConfig struct {
	Addr     string
	User     string
	Password string
	Root     string
}

// Load reads configuration from POSGATE_* environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		HTTP: loadHTTPConfig(),
		DB:   loadDBConfig(),
		Auth: loadAuthConfig(),
		LDAP: loadLDAPConfig(),
		SFTP: loadSFTPConfig(),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Auth.Secret) == "" {
		return errors.New("POSGATE_AUTH_SECRET is required")
	}
	if c.DB.PoolSize <= 0 {
		return fmt.Errorf("invalid pool size %d", c.DB.PoolSize)
	}
	return nil
}

func loadHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Addr:            getEnv("POSGATE_HTTP_ADDR", ":8080"),
		ReadTimeout:     getDuration("POSGATE_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getDuration("POSGATE_HTTP_WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:     getDuration("POSGATE_HTTP_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getDuration("POSGATE_HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		MaxBodyBytes:    getInt64("POSGATE_HTTP_MAX_BODY_BYTES", 8<<20),
		RateBurst:       getInt("POSGATE_HTTP_RATE_BURST", 50),
		RatePerSec:      getInt("POSGATE_HTTP_RATE_PER_SEC", 25),
	}
}

func loadDBConfig() DBConfig {
	return DBConfig{
		DSN:            os.Getenv("POSGATE_ORA_DSN"),
		PoolSize:       getInt("POSGATE_ORA_POOL_SIZE", 10),
		AcquireTimeout: getDuration("POSGATE_ORA_ACQUIRE_TIMEOUT", 10*time.Second),
	}
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		Secret: os.Getenv("POSGATE_AUTH_SECRET"),
		Issuer: getEnv("POSGATE_AUTH_ISSUER", "posgate"),
	}
}

func loadLDAPConfig() LDAPConfig {
	return LDAPConfig{
		URL:          os.Getenv("POSGATE_LDAP_URL"),
		BindDN:       os.Getenv("POSGATE_LDAP_BIND_DN"),
		BindPassword: os.Getenv("POSGATE_LDAP_BIND_PASSWORD"),
		BaseDN:       os.Getenv("POSGATE_LDAP_BASE_DN"),
		PoolSize:     getInt("POSGATE_LDAP_POOL_SIZE", 1),
		Timeout:      getDuration("POSGATE_LDAP_TIMEOUT", 10*time.Second),
	}
}

func loadSFTPConfig() SFTPConfig {
	return SFTPConfig{
		Addr:     os.Getenv("POSGATE_SFTP_ADDR"),
		User:     os.Getenv("POSGATE_SFTP_USER"),
		Password: os.Getenv("POSGATE_SFTP_PASSWORD"),
		Root:     getEnv("POSGATE_SFTP_ROOT", "/images"),
	}
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func getInt64(key string, def int64) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(os.Getenv(key)), 10, 64)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func getDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
