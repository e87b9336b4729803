package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"posgate.io/internal/audit"
)

type directoryModifyRequest struct {
	Name  *string `json:"p_name"`
	Email *string `json:"p_email" validate:"omitempty,email"`
}

func (a *API) handleDirectoryLookup(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	entry, err := a.svc.DirectoryLookup(r.Context(), username)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (a *API) handleDirectoryModify(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	var req directoryModifyRequest
	if err := a.decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.validate.Struct(req); err != nil {
		writeError(w, r, http.StatusUnauthorized, "invalid data")
		return
	}

	if err := a.svc.DirectoryModify(r.Context(), username, req.Name, req.Email); err != nil {
		handleServiceError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "directory.modify", map[string]any{
		"target": username,
	})
	w.WriteHeader(http.StatusNoContent)
}
