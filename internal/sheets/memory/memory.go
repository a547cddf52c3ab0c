package memory

import (
	"context"
	"fmt"
	"sync"

	ports "tripledger/internal/sheets"
)

// Store is an in-memory RowStore used by tests and the local backend.
// Deleting a row shifts subsequent rows up, mirroring spreadsheet
// semantics.
type Store struct {
	mu      sync.Mutex
	sheets  map[string][][]string
	failing bool
}

var _ ports.RowStore = (*Store)(nil)

func New() *Store {
	return &Store{sheets: make(map[string][][]string)}
}

// Seed replaces the named sheet's contents, header row first.
func (s *Store) Seed(sheet string, rows [][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([][]string, len(rows))
	for i, r := range rows {
		cp[i] = append([]string(nil), r...)
	}
	s.sheets[sheet] = cp
}

// SetFailing makes every operation fail with ErrStoreUnavailable,
// simulating an unreachable backing service.
func (s *Store) SetFailing(failing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = failing
}

func (s *Store) Append(_ context.Context, sheet string, values []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return ports.Unavailable(fmt.Errorf("append to %s: store offline", sheet))
	}
	s.sheets[sheet] = append(s.sheets[sheet], append([]string(nil), values...))
	return nil
}

func (s *Store) ReadAll(_ context.Context, sheet string) ([]ports.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return nil, ports.Unavailable(fmt.Errorf("read %s: store offline", sheet))
	}
	rows := make([]ports.Row, 0, len(s.sheets[sheet]))
	for i, values := range s.sheets[sheet] {
		rows = append(rows, ports.Row{Index: i + 1, Values: append([]string(nil), values...)})
	}
	return rows, nil
}

func (s *Store) Update(_ context.Context, sheet string, index int, values []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return ports.Unavailable(fmt.Errorf("update %s: store offline", sheet))
	}
	rows := s.sheets[sheet]
	if index < 1 || index > len(rows) {
		return fmt.Errorf("update %s row %d: out of range (%d rows)", sheet, index, len(rows))
	}
	rows[index-1] = append([]string(nil), values...)
	return nil
}

func (s *Store) Delete(_ context.Context, sheet string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return ports.Unavailable(fmt.Errorf("delete from %s: store offline", sheet))
	}
	rows := s.sheets[sheet]
	if index < 1 || index > len(rows) {
		return fmt.Errorf("delete %s row %d: out of range (%d rows)", sheet, index, len(rows))
	}
	s.sheets[sheet] = append(rows[:index-1], rows[index:]...)
	return nil
}
