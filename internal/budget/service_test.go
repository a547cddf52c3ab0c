package budget

import (
	"context"
	"testing"

	"tripledger/internal/core"
	"tripledger/internal/sheets/memory"
)

func TestGetDefaultsToZero(t *testing.T) {
	store := memory.New()
	svc := NewService(store, "Budget")
	ctx := context.Background()

	tests := []struct {
		name string
		seed [][]string
	}{
		{name: "empty sheet", seed: nil},
		{name: "owner missing", seed: [][]string{
			{"username", "budget"},
			{"bob", "500.00"},
		}},
		{name: "malformed header", seed: [][]string{
			{"name", "value"},
			{"alice", "500.00"},
		}},
		{name: "unparseable value", seed: [][]string{
			{"username", "budget"},
			{"alice", "lots"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store.Seed("Budget", tt.seed)
			if got := svc.Get(ctx, "alice"); got.Cents != 0 {
				t.Errorf("Get = %d, want 0", got.Cents)
			}
		})
	}
}

func TestGetDefaultsToZeroWhenStoreUnavailable(t *testing.T) {
	store := memory.New()
	store.SetFailing(true)
	svc := NewService(store, "Budget")
	if got := svc.Get(context.Background(), "alice"); got.Cents != 0 {
		t.Errorf("Get with failing store = %d, want 0", got.Cents)
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	store := memory.New()
	svc := NewService(store, "Budget")
	ctx := context.Background()

	for _, cents := range []int64{0, 100, 100000, 123456} {
		amount := core.Money{Cents: cents}
		if err := svc.Set(ctx, "alice", amount); err != nil {
			t.Fatalf("Set(%d): %v", cents, err)
		}
		if got := svc.Get(ctx, "alice"); got != amount {
			t.Errorf("Get after Set(%d) = %d", cents, got.Cents)
		}
	}

	// repeated sets overwrite in place, no duplicate rows
	rows, _ := store.ReadAll(ctx, "Budget")
	if len(rows) != 2 {
		t.Errorf("sheet has %d rows, want header + one budget row", len(rows))
	}
}

func TestSetAppendsNewOwner(t *testing.T) {
	store := memory.New()
	svc := NewService(store, "Budget")
	ctx := context.Background()

	if err := svc.Set(ctx, "alice", core.Money{Cents: 100000}); err != nil {
		t.Fatalf("Set alice: %v", err)
	}
	if err := svc.Set(ctx, "bob", core.Money{Cents: 50000}); err != nil {
		t.Fatalf("Set bob: %v", err)
	}

	if got := svc.Get(ctx, "alice"); got.Cents != 100000 {
		t.Errorf("alice budget = %d", got.Cents)
	}
	if got := svc.Get(ctx, "bob"); got.Cents != 50000 {
		t.Errorf("bob budget = %d", got.Cents)
	}
}

func TestFirstMatchWinsOnDuplicates(t *testing.T) {
	store := memory.New()
	store.Seed("Budget", [][]string{
		{"username", "budget"},
		{"alice", "100.00"},
		{"alice", "900.00"},
	})
	svc := NewService(store, "Budget")
	if got := svc.Get(context.Background(), "alice"); got.Cents != 10000 {
		t.Errorf("Get = %d, want first match 10000", got.Cents)
	}
}

func TestSetRejectsNegative(t *testing.T) {
	svc := NewService(memory.New(), "Budget")
	if err := svc.Set(context.Background(), "alice", core.Money{Cents: -1}); err == nil {
		t.Error("expected error for negative budget")
	}
}
