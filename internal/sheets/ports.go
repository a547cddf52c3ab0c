package sheets

import (
	"context"
	"errors"
)

// ErrStoreUnavailable marks network or API failures against the backing
// row store. Callers log and abort the single operation; no retry.
var ErrStoreUnavailable = errors.New("row store unavailable")

// Row is one row of a worksheet. Index is the 1-based position within the
// sheet at read time and is not stable across concurrent mutations.
type Row struct {
	Index  int
	Values []string
}

// RowStore abstracts append/read/update/delete of rows in an external
// tabular store. There is no transactional guarantee across calls.
type RowStore interface {
	Append(ctx context.Context, sheet string, values []string) error
	ReadAll(ctx context.Context, sheet string) ([]Row, error)
	Update(ctx context.Context, sheet string, index int, values []string) error
	Delete(ctx context.Context, sheet string, index int) error
}

// Unavailable wraps err so that errors.Is(err, ErrStoreUnavailable) holds
// while keeping the underlying cause in the chain.
func Unavailable(err error) error {
	if err == nil {
		return nil
	}
	return errors.Join(ErrStoreUnavailable, err)
}
