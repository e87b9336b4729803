package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"posgate.io/internal/gateway"
)

type deletedResponse struct {
	Deleted int64 `json:"deleted"`
}

func (a *API) handleListLogs(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"), 100, 1000)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	entries, err := a.svc.Logs(r.Context(), limit)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if entries == nil {
		entries = []gateway.LogEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (a *API) handleLogsByUser(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	limit, err := parseLimit(r.URL.Query().Get("limit"), 100, 1000)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	entries, err := a.svc.LogsByUser(r.Context(), username, limit)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if entries == nil {
		entries = []gateway.LogEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleDeleteLog is idempotent: deleting an id that is already gone
// reports zero rows, not an error.
func (a *API) handleDeleteLog(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "id must be an integer")
		return
	}
	deleted, err := a.svc.DeleteLog(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deletedResponse{Deleted: deleted})
}

func (a *API) handleDeleteLogsByUser(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		val, err := strconv.Atoi(raw)
		if err != nil || val < 1 {
			writeError(w, r, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = val
	}
	deleted, err := a.svc.DeleteLogsByUser(r.Context(), username, limit)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deletedResponse{Deleted: deleted})
}
