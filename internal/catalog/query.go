package catalog

import (
	"database/sql"
	"strings"
)

// SelectColumns returns the full product column list in scan order:
// descriptive columns, average cost, then four columns per store code.
func SelectColumns() []string {
	cols := []string{"item_id", "item_ref", "barcode", "description", "brand", "season", "avg_cost"}
	for _, code := range StoreCodes {
		prefix := strings.ToLower(code)
		cols = append(cols,
			prefix+"_qty",
			prefix+"_price",
			prefix+"_disc1",
			prefix+"_disc2",
		)
	}
	return cols
}

// BuildQuery translates a filter into a parameterized SELECT. It returns
// ok=false for an empty filter: the caller must short-circuit to an empty
// result without touching the store.
//
// Predicate rules: every present field except barcode matches with LIKE
// when the value starts or ends with a '%' wildcard, equality otherwise.
// Barcode always matches as a substring regardless of wildcards in the
// input. Values are bound by name, never interpolated.
func BuildQuery(f Filter) (string, []any, bool) {
	if f.Empty() {
		return "", nil, false
	}

	var (
		preds []string
		args  []any
	)
	addField := func(column, bind, value string) {
		value = strings.TrimSpace(value)
		if value == "" {
			return
		}
		op := "="
		if strings.HasPrefix(value, "%") || strings.HasSuffix(value, "%") {
			op = "like"
		}
		preds = append(preds, column+" "+op+" :"+bind)
		args = append(args, sql.Named(bind, value))
	}

	addField("item_ref", "p_ref", f.Ref)
	addField("item_id", "p_id", f.ID)
	addField("description", "p_description", f.Description)

	if barcode := strings.TrimSpace(f.Barcode); barcode != "" {
		preds = append(preds, "barcode like '%' || :p_barcode || '%'")
		args = append(args, sql.Named("p_barcode", barcode))
	}

	query := "select " + strings.Join(SelectColumns(), ", ") +
		" from products where " + strings.Join(preds, " and ") +
		" order by item_id"
	return query, args, true
}
