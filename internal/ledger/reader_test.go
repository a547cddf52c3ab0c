package ledger

import (
	"context"
	"errors"
	"testing"

	"tripledger/internal/core"
	"tripledger/internal/sheets/memory"
)

func TestLoadEmptyStore(t *testing.T) {
	r := NewReader(memory.New(), "Expenses")
	records, err := r.Load(context.Background(), "alice", "")
	if err != nil {
		t.Fatalf("Load on empty store: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
}

func TestLoadNormalizesHeaderCasing(t *testing.T) {
	store := memory.New()
	store.Seed("Expenses", [][]string{
		{" Username ", "Date", "Category", "Description", "AMOUNT", "Location"},
		{"alice", "2025-06-01", "Food", "lunch", "12.50", "Goa"},
		{"bob", "2025-06-01", "Food", "dinner", "20.00", "Goa"},
	})

	records, err := NewReader(store, "Expenses").Load(context.Background(), "alice", "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	rec := records[0]
	if rec.Owner != "alice" || rec.Amount.Cents != 1250 || rec.Location != "Goa" {
		t.Errorf("record = %+v", rec)
	}
	// header is row 1, first data row is row 2
	if rec.RowIndex != 2 {
		t.Errorf("RowIndex = %d, want 2", rec.RowIndex)
	}
	// no trip column: defaults to General
	if rec.Trip != core.TripGeneral {
		t.Errorf("Trip = %q, want %q", rec.Trip, core.TripGeneral)
	}
}

func TestLoadMissingRequiredColumn(t *testing.T) {
	store := memory.New()
	store.Seed("Expenses", [][]string{
		{"date", "category", "amount"},
		{"2025-06-01", "Food", "10.00"},
	})

	_, err := NewReader(store, "Expenses").Load(context.Background(), "alice", "")
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("error = %v, want SchemaError", err)
	}
	if schemaErr.Column != "username" {
		t.Errorf("missing column = %q, want username", schemaErr.Column)
	}
}

func TestLoadCoercesInvalidAmountToZero(t *testing.T) {
	store := memory.New()
	store.Seed("Expenses", [][]string{
		{"username", "amount", "category"},
		{"alice", "not-a-number", "Food"},
		{"alice", "15.00", "Food"},
	})

	records, err := NewReader(store, "Expenses").Load(context.Background(), "alice", "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Amount.Cents != 0 {
		t.Errorf("invalid amount coerced to %d, want 0", records[0].Amount.Cents)
	}
	if records[1].Amount.Cents != 1500 {
		t.Errorf("amount = %d, want 1500", records[1].Amount.Cents)
	}
}

func TestLoadFiltersByTrip(t *testing.T) {
	store := memory.New()
	store.Seed("Expenses", [][]string{
		{"username", "amount", "trip"},
		{"alice", "10.00", "Goa"},
		{"alice", "20.00", ""},
		{"alice", "30.00", "Alps"},
	})
	r := NewReader(store, "Expenses")

	goa, err := r.Load(context.Background(), "alice", "Goa")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(goa) != 1 || goa[0].Amount.Cents != 1000 {
		t.Errorf("Goa records = %+v", goa)
	}

	// blank trip cells belong to General
	general, err := r.Load(context.Background(), "alice", core.TripGeneral)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(general) != 1 || general[0].Amount.Cents != 2000 {
		t.Errorf("General records = %+v", general)
	}

	all, err := r.Load(context.Background(), "alice", "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("unfiltered records = %d, want 3", len(all))
	}
}

func TestLoadParsesSharedWith(t *testing.T) {
	store := memory.New()
	store.Seed("Expenses", [][]string{
		{"username", "amount", "shared_with", "split_amount"},
		{"alice", "90.00", "bob,carl", "30.00"},
	})
	records, err := NewReader(store, "Expenses").Load(context.Background(), "alice", "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	rec := records[0]
	if len(rec.SharedWith) != 2 || rec.SharedWith[0] != "bob" || rec.SharedWith[1] != "carl" {
		t.Errorf("SharedWith = %v", rec.SharedWith)
	}
	if rec.SplitAmount.Cents != 3000 {
		t.Errorf("SplitAmount = %d, want 3000", rec.SplitAmount.Cents)
	}
}
