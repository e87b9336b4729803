package auth

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the subset of a user record the token service needs.
// LoginDuration is the raw hours value from the credential store; it is
// parsed at issuance time, not at load time.
type Identity struct {
	Username      string
	Name          string
	Email         string
	LoginDuration string
}

// Claims are the session token claims. Subject carries the lower-cased
// username.
type Claims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Username returns the identity the token was issued for.
func (c *Claims) Username() string {
	return c.Subject
}

// TokenService issues and validates signed session tokens. Tokens are
// HS256-signed with a single shared static secret. There is no
// server-side revocation: logout is a client-side cookie clear and a
// token stays valid until natural expiry.
type TokenService struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// TokenOption configures TokenService behavior.
type TokenOption func(*TokenService)

// WithIssuer overrides the token issuer claim.
func WithIssuer(issuer string) TokenOption {
	return func(s *TokenService) {
		if v := strings.TrimSpace(issuer); v != "" {
			s.issuer = v
		}
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) TokenOption {
	return func(s *TokenService) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewTokenService constructs a TokenService signing with secret.
func NewTokenService(secret string, opts ...TokenOption) (*TokenService, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("auth: token secret is required")
	}
	s := &TokenService{
		secret: []byte(secret),
		issuer: "posgate",
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue builds a signed session token for the identity. Expiry is issuance
// time plus the identity's login duration in hours; a duration that does
// not parse as a positive integer fails with ErrCredentialLookup.
func (s *TokenService) Issue(id Identity) (string, time.Time, error) {
	username := strings.ToLower(strings.TrimSpace(id.Username))
	if username == "" {
		return "", time.Time{}, ErrCredentialLookup
	}
	hours, err := strconv.Atoi(strings.TrimSpace(id.LoginDuration))
	if err != nil || hours <= 0 {
		return "", time.Time{}, ErrCredentialLookup
	}

	now := s.now().UTC()
	expiresAt := now.Add(time.Duration(hours) * time.Hour)
	claims := Claims{
		Name:  id.Name,
		Email: id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Validate reports whether the token is well-formed, carries a valid
// signature and has not expired. It fails closed: any parse or signature
// problem yields false, never an error. No clock-skew leeway is applied.
func (s *TokenService) Validate(token string) bool {
	token = strings.TrimSpace(token)
	if token == "" {
		return false
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, s.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	return err == nil && parsed.Valid
}

// Decode returns the embedded claims after a signature check only; expiry
// is not re-checked. Callers must gate on Validate before trusting the
// result for authorization decisions.
func (s *TokenService) Decode(token string) (*Claims, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, false
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, s.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, false
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || strings.TrimSpace(claims.Subject) == "" {
		return nil, false
	}
	return claims, true
}

func (s *TokenService) keyFunc(t *jwt.Token) (any, error) {
	if t.Method != jwt.SigningMethodHS256 {
		return nil, ErrInvalidToken
	}
	return s.secret, nil
}
