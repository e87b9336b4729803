package ora

import (
	"context"
	"database/sql"
	"errors"

	"posgate.io/internal/catalog"
)

// SearchProducts runs the filter-derived query and assembles one Product
// per row with every store slice populated. Redaction happens upstream.
func (s *Store) SearchProducts(ctx context.Context, f catalog.Filter) ([]catalog.Product, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	query, args, ok := catalog.BuildQuery(f)
	if !ok {
		return []catalog.Product{}, nil
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []catalog.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

// scanProduct reads one row in catalog.SelectColumns order: seven
// descriptive columns, then four numeric columns per store code.
func scanProduct(rows *sql.Rows) (catalog.Product, error) {
	var (
		p                         catalog.Product
		ref, barcode, description sql.NullString
		brand, season             sql.NullString
		avgCost                   sql.NullFloat64
	)
	stocks := make([]sql.NullFloat64, len(catalog.StoreCodes)*4)

	dest := []any{&p.ID, &ref, &barcode, &description, &brand, &season, &avgCost}
	for i := range stocks {
		dest = append(dest, &stocks[i])
	}
	if err := rows.Scan(dest...); err != nil {
		return catalog.Product{}, err
	}

	p.Ref = ref.String
	p.Barcode = barcode.String
	p.Description = description.String
	p.Brand = brand.String
	p.Season = season.String
	p.AvgCost = nullableFloat(avgCost)

	p.Stores = make(map[string]*catalog.StoreStock, len(catalog.StoreCodes))
	for i, code := range catalog.StoreCodes {
		base := i * 4
		p.Stores[code] = &catalog.StoreStock{
			Quantity:  nullableFloat(stocks[base]),
			Price:     nullableFloat(stocks[base+1]),
			Discount1: nullableFloat(stocks[base+2]),
			Discount2: nullableFloat(stocks[base+3]),
		}
	}
	return p, nil
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
