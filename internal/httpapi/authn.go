package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"posgate.io/internal/auth"
	"posgate.io/internal/gateway"
)

const (
	authHeader    = "Authorization"
	bearer        = "Bearer "
	sessionCookie = "session"
)

var publicPaths = []string{
	"/login",
	"/logout",
	"/health_check",
	"/metrics",
}

// withAuth authenticates every non-public request. The token may arrive
// as a bearer header or the session cookie. Validation gates expiry;
// claim decoding alone never does. Permissions and store access are
// resolved from the credential store on every request, so a grant change
// takes effect without reissuing tokens.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions || isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token := extractToken(r)
		if token == "" {
			writeError(w, r, http.StatusUnauthorized, "missing bearer token")
			return
		}
		tokens := a.svc.Tokens()
		if !tokens.Validate(token) {
			writeError(w, r, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		claims, ok := tokens.Decode(token)
		if !ok {
			writeError(w, r, http.StatusUnauthorized, "invalid token")
			return
		}

		perms, access, err := a.svc.Resolve(r.Context(), claims.Subject)
		if err != nil {
			if errors.Is(err, gateway.ErrNotFound) {
				writeError(w, r, http.StatusUnauthorized, "invalid token")
				return
			}
			writeError(w, r, http.StatusInternalServerError, "authentication error")
			return
		}

		principal := auth.Principal{
			Claims:      *claims,
			Permissions: perms,
			StoreAccess: access,
		}
		ctx := auth.ContextWithPrincipal(r.Context(), principal)
		ctx = auth.ContextWithToken(ctx, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get(authHeader))
	if header != "" && strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return strings.TrimSpace(header[len(bearer):])
	}
	if c, err := r.Cookie(sessionCookie); err == nil {
		return strings.TrimSpace(c.Value)
	}
	return ""
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}
