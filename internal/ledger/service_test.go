package ledger

import (
	"context"
	"errors"
	"testing"

	"tripledger/internal/core"
	"tripledger/internal/rates"
	"tripledger/internal/sheets/memory"
)

// identityNormalizer treats every currency as the base currency.
type identityNormalizer struct{}

func (identityNormalizer) Normalize(_ context.Context, amount core.Money, _ string) (core.Money, error) {
	return amount, nil
}

// unavailableNormalizer simulates a missing rate for every currency.
type unavailableNormalizer struct{}

func (unavailableNormalizer) Normalize(context.Context, core.Money, string) (core.Money, error) {
	return core.Money{}, rates.ErrRateUnavailable
}

type capturedEvent struct {
	event, id, owner string
}

type fakePublisher struct {
	events []capturedEvent
}

func (p *fakePublisher) PublishExpenseEvent(_ context.Context, event, id, owner string) error {
	p.events = append(p.events, capturedEvent{event, id, owner})
	return nil
}

func newTestService(store *memory.Store) (*Service, *fakePublisher) {
	pub := &fakePublisher{}
	svc := NewService(store, identityNormalizer{}, pub, "Expenses")
	return svc, pub
}

func validRecord() core.ExpenseRecord {
	return core.ExpenseRecord{
		Owner:       "alice",
		Date:        core.NewDate(2025, 6, 1),
		Category:    "Food",
		Description: "lunch",
		Amount:      core.Money{Cents: 9000},
		Currency:    "INR",
		SharedWith:  []string{"bob", "carl"},
	}
}

func TestCreateWritesHeaderAndRow(t *testing.T) {
	store := memory.New()
	svc, pub := newTestService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, validRecord())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Error("Create did not assign an ID")
	}
	if created.Trip != core.TripGeneral {
		t.Errorf("Trip = %q, want default %q", created.Trip, core.TripGeneral)
	}
	if created.SplitAmount.Cents != 3000 {
		t.Errorf("SplitAmount = %d, want 3000", created.SplitAmount.Cents)
	}
	if created.Normalized.Cents != 9000 {
		t.Errorf("Normalized = %d, want 9000", created.Normalized.Cents)
	}

	rows, _ := store.ReadAll(ctx, "Expenses")
	if len(rows) != 2 {
		t.Fatalf("sheet has %d rows, want header + record", len(rows))
	}
	if rows[0].Values[0] != "id" || rows[0].Values[1] != "username" {
		t.Errorf("header = %v", rows[0].Values)
	}

	if len(pub.events) != 1 || pub.events[0].event != "expense.created" {
		t.Errorf("events = %+v", pub.events)
	}

	// round-trip through the reader
	records, err := svc.List(ctx, "alice", "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 1 || records[0].ID != created.ID {
		t.Errorf("List = %+v", records)
	}
}

func TestCreateRejectedWhenRateUnavailable(t *testing.T) {
	svc := NewService(memory.New(), unavailableNormalizer{}, nil, "Expenses")
	_, err := svc.Create(context.Background(), validRecord())
	if !errors.Is(err, rates.ErrRateUnavailable) {
		t.Errorf("Create error = %v, want ErrRateUnavailable", err)
	}
}

func TestUpdateLocatesRowByID(t *testing.T) {
	store := memory.New()
	svc, _ := newTestService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, validRecord())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	created.Description = "team dinner"
	created.Amount = core.Money{Cents: 12000}
	updated, err := svc.Update(ctx, created)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.SplitAmount.Cents != 4000 {
		t.Errorf("recomputed SplitAmount = %d, want 4000", updated.SplitAmount.Cents)
	}

	records, _ := svc.List(ctx, "alice", "")
	if len(records) != 1 || records[0].Description != "team dinner" {
		t.Errorf("after update: %+v", records)
	}
}

func TestUpdateAfterConcurrentDelete(t *testing.T) {
	store := memory.New()
	svc, _ := newTestService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, validRecord())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	// another session removes the row out from under us
	if err := store.Delete(ctx, "Expenses", 2); err != nil {
		t.Fatalf("simulated delete: %v", err)
	}

	if _, err := svc.Update(ctx, created); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("Update error = %v, want ErrRecordNotFound", err)
	}
}

func TestDeleteByID(t *testing.T) {
	store := memory.New()
	svc, pub := newTestService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, validRecord())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Delete(ctx, "alice", created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	records, _ := svc.List(ctx, "alice", "")
	if len(records) != 0 {
		t.Errorf("records after delete = %+v", records)
	}
	if len(pub.events) != 2 || pub.events[1].event != "expense.deleted" {
		t.Errorf("events = %+v", pub.events)
	}

	if err := svc.Delete(ctx, "alice", created.ID); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("second delete = %v, want ErrRecordNotFound", err)
	}
}

func TestDeleteRefusesForeignRecord(t *testing.T) {
	store := memory.New()
	svc, _ := newTestService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, validRecord())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Delete(ctx, "mallory", created.ID); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("Delete by non-owner = %v, want ErrRecordNotFound", err)
	}
}
