// Package catalog holds the product search filter, the dynamic query
// builder and the column-level redaction policy.
package catalog

import (
	"strings"
)

// StoreCodes is the fixed set of retail store codes the inventory table
// carries per-store columns for. The column layout in the credential store
// is derived from this list; changing it requires a schema migration.
var StoreCodes = []string{"C01", "C02", "C03", "C04", "C05"}

// StoreStock is the per-store slice of a product row. Fields are pointers
// so redaction can null them out in the response.
type StoreStock struct {
	Quantity  *float64 `json:"quantity"`
	Price     *float64 `json:"price"`
	Discount1 *float64 `json:"discount1"`
	Discount2 *float64 `json:"discount2"`
}

// Product is one inventory record. Descriptive columns are always visible
// to authenticated callers; Stores and AvgCost are subject to redaction.
type Product struct {
	ID          string                 `json:"p_id"`
	Ref         string                 `json:"p_ref"`
	Barcode     string                 `json:"p_barcode"`
	Description string                 `json:"p_description"`
	Brand       string                 `json:"p_brand"`
	Season      string                 `json:"p_season"`
	AvgCost     *float64               `json:"p_avg_cost"`
	Stores      map[string]*StoreStock `json:"stores"`
}

// Filter is the optional-field product search input. All four fields may
// be empty, in which case the search short-circuits to an empty result.
type Filter struct {
	Ref         string `json:"p_ref"`
	Barcode     string `json:"p_barcode"`
	ID          string `json:"p_id"`
	Description string `json:"p_description"`
}

// Empty reports whether no filter field carries a value.
func (f Filter) Empty() bool {
	return strings.TrimSpace(f.Ref) == "" &&
		strings.TrimSpace(f.Barcode) == "" &&
		strings.TrimSpace(f.ID) == "" &&
		strings.TrimSpace(f.Description) == ""
}
