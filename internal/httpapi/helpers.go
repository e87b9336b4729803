package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"posgate.io/internal/audit"
	"posgate.io/internal/auth"
	"posgate.io/internal/directory"
	"posgate.io/internal/gateway"
	"posgate.io/internal/imagestore"
	"posgate.io/internal/obs"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"error": msg,
	}
	if rid := audit.RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

// decodeJSON decodes a request body limited to the configured body cap.
// The MaxBodyBytes middleware applies the same cap; the reader here keeps
// the guarantee for any handler invoked outside the chain.
func (a *API) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, a.maxBodyBytes)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

// handleServiceError renders the gateway error taxonomy. Validation
// failures map to 401, matching what the deployed POS clients expect.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, r, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, auth.ErrUnauthorized), errors.Is(err, auth.ErrInvalidToken):
		writeError(w, r, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, gateway.ErrInvalidData):
		writeError(w, r, http.StatusUnauthorized, "invalid data")
	case errors.Is(err, gateway.ErrNotFound),
		errors.Is(err, directory.ErrNotFound),
		errors.Is(err, imagestore.ErrFileNotFound),
		errors.Is(err, imagestore.ErrBadName):
		writeError(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, gateway.ErrExists):
		writeError(w, r, http.StatusConflict, "already exists")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func parseLimit(raw string, def, max int) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return def, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 1 || val > max {
		return 0, errors.New("limit must be between 1 and " + strconv.Itoa(max))
	}
	return val, nil
}

// withAudit appends one audit trail row per API request after the
// handler completes. Health and metrics probes are excluded. A failed
// log write never fails the request it describes.
func (a *API) withAudit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health_check" || r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		entry := gateway.LogEntry{
			Route:      r.URL.Path,
			Parameters: r.URL.RawQuery,
			Result:     strconv.Itoa(sw.code),
			IP:         clientIP(r),
			Method:     r.Method,
		}
		if err := a.svc.RecordLog(r.Context(), entry); err != nil {
			obs.LogRequest(map[string]any{
				"level": "warn",
				"msg":   "audit trail write failed",
				"path":  r.URL.Path,
				"error": err.Error(),
			})
		}
	})
}
