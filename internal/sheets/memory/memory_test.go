package memory

import (
	"context"
	"errors"
	"testing"

	ports "tripledger/internal/sheets"
)

func TestAppendAndReadAll(t *testing.T) {
	s := New()
	ctx := context.Background()

	if rows, err := s.ReadAll(ctx, "Expenses"); err != nil || len(rows) != 0 {
		t.Fatalf("empty sheet: rows=%v err=%v", rows, err)
	}

	if err := s.Append(ctx, "Expenses", []string{"id", "username", "amount"}); err != nil {
		t.Fatalf("append header: %v", err)
	}
	if err := s.Append(ctx, "Expenses", []string{"1", "alice", "10.00"}); err != nil {
		t.Fatalf("append row: %v", err)
	}

	rows, err := s.ReadAll(ctx, "Expenses")
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Index != 1 || rows[1].Index != 2 {
		t.Errorf("row indexes = %d, %d; want 1, 2", rows[0].Index, rows[1].Index)
	}
	if rows[1].Values[1] != "alice" {
		t.Errorf("row 2 owner = %q", rows[1].Values[1])
	}
}

func TestDeleteShiftsRows(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.Seed("Expenses", [][]string{
		{"id", "username"},
		{"a", "alice"},
		{"b", "bob"},
	})

	if err := s.Delete(ctx, "Expenses", 2); err != nil {
		t.Fatalf("delete: %v", err)
	}
	rows, _ := s.ReadAll(ctx, "Expenses")
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	// bob moved up into the deleted slot
	if rows[1].Index != 2 || rows[1].Values[0] != "b" {
		t.Errorf("row 2 = %+v, want shifted bob row", rows[1])
	}
}

func TestUpdateOutOfRange(t *testing.T) {
	s := New()
	if err := s.Update(context.Background(), "Expenses", 3, []string{"x"}); err == nil {
		t.Error("expected out of range error")
	}
}

func TestFailingStore(t *testing.T) {
	s := New()
	s.SetFailing(true)
	ctx := context.Background()

	if _, err := s.ReadAll(ctx, "Expenses"); !errors.Is(err, ports.ErrStoreUnavailable) {
		t.Errorf("ReadAll error = %v, want ErrStoreUnavailable", err)
	}
	if err := s.Append(ctx, "Expenses", []string{"x"}); !errors.Is(err, ports.ErrStoreUnavailable) {
		t.Errorf("Append error = %v, want ErrStoreUnavailable", err)
	}
}
