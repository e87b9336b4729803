package httpapi

import (
	"net/http"

	"posgate.io/internal/catalog"
)

type searchProductsResponse struct {
	Items []catalog.Product `json:"items"`
	Count int               `json:"count"`
}

// handleSearchProducts accepts the four optional filter fields. All
// empty is a valid request that returns zero rows.
func (a *API) handleSearchProducts(w http.ResponseWriter, r *http.Request) {
	var filter catalog.Filter
	if err := a.decodeJSON(w, r, &filter); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	items, err := a.svc.SearchProducts(r.Context(), filter)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, searchProductsResponse{Items: items, Count: len(items)})
}
