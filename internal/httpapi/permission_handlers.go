package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"posgate.io/internal/audit"
	"posgate.io/internal/auth"
)

func (a *API) handleGetPermissions(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	set, err := a.svc.Grants(r.Context(), username)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (a *API) handleReplacePermissions(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	var req auth.PermissionSet
	if err := a.decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.svc.ReplaceGrants(r.Context(), username, req); err != nil {
		handleServiceError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "permissions.replace", map[string]any{
		"target": username,
		"grants": req.Grants(),
	})
	writeJSON(w, http.StatusOK, req)
}

type replaceStoreAccessRequest struct {
	Username  string   `json:"p_username" validate:"required"`
	AllStores bool     `json:"all_stores"`
	Stores    []string `json:"stores"`
}

func (a *API) handleStoreCodes(w http.ResponseWriter, r *http.Request) {
	codes, err := a.svc.StoreCodes(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stores": codes})
}

func (a *API) handleUserStoreAccess(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	access, err := a.svc.UserStoreAccess(r.Context(), username)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if access.Stores == nil {
		access.Stores = []string{}
	}
	writeJSON(w, http.StatusOK, access)
}

func (a *API) handleReplaceStoreAccess(w http.ResponseWriter, r *http.Request) {
	var req replaceStoreAccessRequest
	if err := a.decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.validate.Struct(req); err != nil {
		writeError(w, r, http.StatusUnauthorized, "invalid data")
		return
	}

	access := auth.StoreAccess{AllStores: req.AllStores, Stores: req.Stores}
	if err := a.svc.ReplaceUserStoreAccess(r.Context(), req.Username, access); err != nil {
		handleServiceError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "stores.replace", map[string]any{
		"target":     req.Username,
		"all_stores": req.AllStores,
		"count":      len(req.Stores),
	})
	writeJSON(w, http.StatusOK, access)
}
