package catalog

import "posgate.io/internal/auth"

// Redact applies the column-level visibility policy to fetched rows:
// per-store columns are nulled unless the caller's store-access grant
// covers that store, and the average-cost column is nulled unless the
// caller holds the cost capability. The allowed-store set and cost flag
// are resolved once per request, not per row.
func Redact(items []Product, access auth.StoreAccess, hasCost bool) {
	allowed := make(map[string]bool, len(StoreCodes))
	for _, code := range StoreCodes {
		allowed[code] = access.CanSee(code)
	}
	for i := range items {
		if !hasCost {
			items[i].AvgCost = nil
		}
		for code, stock := range items[i].Stores {
			if allowed[code] || stock == nil {
				continue
			}
			items[i].Stores[code] = nil
		}
	}
}
