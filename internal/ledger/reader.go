// Package ledger loads and mutates a user's expense records over a
// generic row store, normalizing the sheet's loose tabular data into
// core.ExpenseRecord values.
package ledger

import (
	"context"
	"fmt"
	"strings"

	"tripledger/internal/core"
	"tripledger/internal/sheets"
)

// Reader loads all expense rows for a user, optionally filtered by trip.
type Reader struct {
	store sheets.RowStore
	sheet string
}

func NewReader(store sheets.RowStore, sheet string) *Reader {
	return &Reader{store: store, sheet: sheet}
}

// Load returns the owner's records in sheet order. An empty store is not
// an error; a header missing username or amount is a SchemaError. Rows
// with an unparseable amount are kept with amount 0 rather than dropped.
func (r *Reader) Load(ctx context.Context, owner, trip string) ([]core.ExpenseRecord, error) {
	rows, err := r.store.ReadAll(ctx, r.sheet)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	idx := columnIndex(rows[0].Values)
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, &SchemaError{Column: col}
		}
	}

	var out []core.ExpenseRecord
	for _, row := range rows[1:] {
		if field(row.Values, idx, "username") != owner {
			continue
		}
		rec := parseRecord(row, idx)
		if trip != "" && rec.Trip != trip {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func parseRecord(row sheets.Row, idx map[string]int) core.ExpenseRecord {
	rec := core.ExpenseRecord{
		ID:          field(row.Values, idx, "id"),
		Owner:       field(row.Values, idx, "username"),
		Category:    field(row.Values, idx, "category"),
		Description: field(row.Values, idx, "description"),
		Currency:    field(row.Values, idx, "currency"),
		Location:    field(row.Values, idx, "location"),
		Trip:        field(row.Values, idx, "trip"),
		SharedWith:  parseSharedWith(field(row.Values, idx, "shared_with")),
		RowIndex:    row.Index,
	}
	if d, err := core.ParseDate(field(row.Values, idx, "date")); err == nil {
		rec.Date = d
	}
	rec.Amount = coerceAmount(field(row.Values, idx, "amount"))
	rec.Normalized = coerceAmount(field(row.Values, idx, "normalized_amount"))
	rec.SplitAmount = coerceAmount(field(row.Values, idx, "split_amount"))
	if strings.TrimSpace(rec.Trip) == "" {
		rec.Trip = core.TripGeneral
	}
	return rec
}

// coerceAmount turns a cell into Money; anything unparseable counts as 0.
func coerceAmount(s string) core.Money {
	cents, err := core.ParseDecimalToCents(s)
	if err != nil {
		return core.Money{}
	}
	return core.Money{Cents: cents}
}
