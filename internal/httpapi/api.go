// Package httpapi is the HTTP transport: routing, session handling,
// request middleware and the JSON rendering of the service layer.
package httpapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"posgate.io/internal/gateway"
	"posgate.io/internal/obs"
)

// API is the HTTP layer over the gateway service.
type API struct {
	router   *mux.Router
	svc      *gateway.Service
	validate *validator.Validate
	version  string

	maxBodyBytes int64
	rateBurst    int
	ratePerSec   int
}

// APIOption configures the transport.
type APIOption func(*API)

// WithMaxBodyBytes caps the request body size.
func WithMaxBodyBytes(n int64) APIOption {
	return func(a *API) {
		if n > 0 {
			a.maxBodyBytes = n
		}
	}
}

// WithRateLimit tunes the per-client token bucket.
func WithRateLimit(burst, perSecond int) APIOption {
	return func(a *API) {
		if burst > 0 && perSecond > 0 {
			a.rateBurst = burst
			a.ratePerSec = perSecond
		}
	}
}

// New builds the transport over svc.
func New(svc *gateway.Service, version string, opts ...APIOption) *API {
	a := &API{
		router:       mux.NewRouter(),
		svc:          svc,
		validate:     validator.New(),
		version:      version,
		maxBodyBytes: 10 << 20,
		rateBurst:    50,
		ratePerSec:   25,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.routes()
	return a
}

func (a *API) routes() {
	r := a.router

	r.HandleFunc("/health_check", a.handleHealthCheck).Methods(http.MethodGet)
	r.Handle("/metrics", obs.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/login", a.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/logout", a.handleLogout).Methods(http.MethodPost)

	r.HandleFunc("/users", a.handleListUsers).Methods(http.MethodGet)
	r.HandleFunc("/user", a.handleCreateUser).Methods(http.MethodPost)
	r.HandleFunc("/user/{username}", a.handleGetUser).Methods(http.MethodGet)
	r.HandleFunc("/user/{username}", a.handleUpdateUser).Methods(http.MethodPut)
	r.HandleFunc("/user/{username}", a.handleDeleteUser).Methods(http.MethodDelete)

	r.HandleFunc("/permissions/{username}", a.handleGetPermissions).Methods(http.MethodGet)
	r.HandleFunc("/permissions/{username}", a.handleReplacePermissions).Methods(http.MethodPost)

	r.HandleFunc("/stores", a.handleStoreCodes).Methods(http.MethodGet)
	r.HandleFunc("/stores", a.handleReplaceStoreAccess).Methods(http.MethodPost)
	r.HandleFunc("/stores/{username}", a.handleUserStoreAccess).Methods(http.MethodGet)

	r.HandleFunc("/products", a.handleSearchProducts).Methods(http.MethodPost)

	r.HandleFunc("/logs", a.handleListLogs).Methods(http.MethodGet)
	r.HandleFunc("/logs/user/{username}", a.handleLogsByUser).Methods(http.MethodGet)
	r.HandleFunc("/logs/user/{username}", a.handleDeleteLogsByUser).Methods(http.MethodDelete)
	r.HandleFunc("/logs/{id:[0-9]+}", a.handleDeleteLog).Methods(http.MethodDelete)

	r.HandleFunc("/version", a.handleVersionCheck).Methods(http.MethodPost)

	r.HandleFunc("/images/{file}", a.handleDownloadImage).Methods(http.MethodGet)
	r.HandleFunc("/upload", a.handleUploadImage).Methods(http.MethodPost)

	r.HandleFunc("/directory/{username}", a.handleDirectoryLookup).Methods(http.MethodGet)
	r.HandleFunc("/directory/{username}", a.handleDirectoryModify).Methods(http.MethodPut)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "resource not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})
}

// Handler assembles the middleware chain around the router. Order
// matters: the request id and logging wrap everything, auth runs before
// audit so the trail carries the resolved username.
func (a *API) Handler() http.Handler {
	h := a.withAudit(a.router)
	h = a.withAuth(h)
	h = MaxBodyBytes(h, a.maxBodyBytes)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

func (a *API) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": a.version,
	})
}
