package httpapi

import (
	"net/http"
)

type versionCheckRequest struct {
	CurrentVersion string `json:"p_current_version"`
	Platform       string `json:"p_platform" validate:"required"`
}

type versionCheckResponse struct {
	Platform  string `json:"p_platform"`
	Version   string `json:"p_version"`
	URL       string `json:"p_url"`
	Mandatory bool   `json:"p_mandatory"`
	UpToDate  bool   `json:"up_to_date"`
}

// handleVersionCheck reports the latest released version for the caller's
// platform and whether the reported current version already matches it.
func (a *API) handleVersionCheck(w http.ResponseWriter, r *http.Request) {
	var req versionCheckRequest
	if err := a.decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.validate.Struct(req); err != nil {
		writeError(w, r, http.StatusUnauthorized, "invalid data")
		return
	}

	latest, err := a.svc.LatestVersion(r.Context(), req.Platform)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, versionCheckResponse{
		Platform:  latest.Platform,
		Version:   latest.Version,
		URL:       latest.URL,
		Mandatory: latest.Mandatory,
		UpToDate:  req.CurrentVersion == latest.Version,
	})
}
