package httpapi

import (
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/gorilla/mux"

	"posgate.io/internal/audit"
)

// handleDownloadImage streams the file as-is; content type derives from
// the extension.
func (a *API) handleDownloadImage(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["file"]
	rc, err := a.svc.DownloadImage(r.Context(), name)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	defer rc.Close()

	ctype := mime.TypeByExtension(path.Ext(name))
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ctype)
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, rc)
}

// handleUploadImage accepts a multipart form with one "file" part and
// stores it under a server-generated name.
func (a *API) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeError(w, r, http.StatusBadRequest, "multipart form is required")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "file part is required")
		return
	}
	defer file.Close()

	ext := strings.TrimPrefix(path.Ext(header.Filename), ".")
	name, err := a.svc.UploadImage(r.Context(), ext, file)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "image.upload", map[string]any{
		"file": name,
		"size": header.Size,
	})
	writeJSON(w, http.StatusCreated, map[string]string{"p_file": name})
}
