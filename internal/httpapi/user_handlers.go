package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"posgate.io/internal/audit"
	"posgate.io/internal/gateway"
)

type createUserRequest struct {
	Username      string `json:"p_username" validate:"required"`
	Password      string `json:"p_password" validate:"required"`
	Name          string `json:"p_name"`
	Email         string `json:"p_email" validate:"omitempty,email"`
	LoginDuration string `json:"p_login_duration" validate:"required,numeric"`
}

type updateUserRequest struct {
	Name          *string `json:"p_name"`
	Email         *string `json:"p_email" validate:"omitempty,email"`
	LoginDuration *string `json:"p_login_duration" validate:"omitempty,numeric"`
	Password      *string `json:"p_password"`
}

func (a *API) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.svc.ListUsers(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if users == nil {
		users = []gateway.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (a *API) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := a.decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.validate.Struct(req); err != nil {
		writeError(w, r, http.StatusUnauthorized, "invalid data")
		return
	}

	user, err := a.svc.CreateUser(r.Context(), gateway.NewUser{
		Username:      req.Username,
		Password:      req.Password,
		Name:          req.Name,
		Email:         req.Email,
		LoginDuration: req.LoginDuration,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "user.create", map[string]any{
		"target": user.Username,
	})
	w.Header().Set("Location", "/user/"+user.Username)
	writeJSON(w, http.StatusCreated, user)
}

func (a *API) handleGetUser(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	user, err := a.svc.GetUser(r.Context(), username)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (a *API) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	var req updateUserRequest
	if err := a.decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.validate.Struct(req); err != nil {
		writeError(w, r, http.StatusUnauthorized, "invalid data")
		return
	}

	user, err := a.svc.UpdateUser(r.Context(), username, gateway.UserUpdate{
		Name:          req.Name,
		Email:         req.Email,
		LoginDuration: req.LoginDuration,
		Password:      req.Password,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "user.update", map[string]any{
		"target": user.Username,
	})
	writeJSON(w, http.StatusOK, user)
}

func (a *API) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	if err := a.svc.DeleteUser(r.Context(), username); err != nil {
		handleServiceError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "user.delete", map[string]any{
		"target": username,
	})
	w.WriteHeader(http.StatusNoContent)
}
