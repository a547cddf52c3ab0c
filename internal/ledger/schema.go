package ledger

import (
	"fmt"
	"strings"

	"tripledger/internal/core"
)

// Canonical expense sheet columns. Header lookup is case-insensitive, but
// this list is the single source of truth for what gets written.
var expenseHeader = []string{
	"id",
	"username",
	"date",
	"category",
	"description",
	"amount",
	"currency",
	"normalized_amount",
	"location",
	"trip",
	"shared_with",
	"split_amount",
}

// Columns every readable ledger must carry.
var requiredColumns = []string{"username", "amount"}

// SchemaError reports a required column missing from the sheet header.
type SchemaError struct {
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("required column %q missing from sheet header", e.Column)
}

// columnIndex maps normalized header names to their position. Header
// names are trimmed and lower-cased once at the store boundary; variants
// like "Username" or " AMOUNT " all resolve to the same column.
func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if _, ok := idx[name]; !ok {
			idx[name] = i
		}
	}
	return idx
}

func field(values []string, idx map[string]int, column string) string {
	i, ok := idx[column]
	if !ok || i >= len(values) {
		return ""
	}
	return strings.TrimSpace(values[i])
}

// marshalRow renders a record in canonical column order.
func marshalRow(rec core.ExpenseRecord) []string {
	return []string{
		rec.ID,
		rec.Owner,
		rec.Date.String(),
		rec.Category,
		rec.Description,
		rec.Amount.String(),
		rec.Currency,
		rec.Normalized.String(),
		rec.Location,
		rec.Trip,
		strings.Join(rec.SharedWith, ","),
		rec.SplitAmount.String(),
	}
}

func parseSharedWith(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
