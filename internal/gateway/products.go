package gateway

import (
	"context"

	"posgate.io/internal/auth"
	"posgate.io/internal/catalog"
)

// SearchProducts runs the filtered inventory search and applies the
// redaction policy to every row. An empty filter short-circuits to an
// empty result without touching the store; no matching rows is likewise
// an empty result, not an error.
func (s *Service) SearchProducts(ctx context.Context, f catalog.Filter) ([]catalog.Product, error) {
	principal, err := s.require(ctx, func(p auth.Principal) bool {
		return p.Permissions.Admin || p.Permissions.Query
	})
	if err != nil {
		return nil, err
	}
	if f.Empty() {
		return []catalog.Product{}, nil
	}
	items, err := s.store.SearchProducts(ctx, f)
	if err != nil {
		return nil, err
	}
	catalog.Redact(items, principal.StoreAccess, principal.Permissions.Cost)
	return items, nil
}
