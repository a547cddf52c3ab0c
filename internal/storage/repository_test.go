package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "tripledger.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestCreateAndGetUser(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u := User{ID: "u-1", Username: "alice", PasswordHash: "hash"}
	if err := repo.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	got, err := repo.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if got.ID != "u-1" || got.PasswordHash != "hash" {
		t.Errorf("user = %+v", got)
	}

	if _, err := repo.GetUserByUsername(ctx, "nobody"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("missing user error = %v, want ErrUserNotFound", err)
	}

	// duplicate username hits the unique constraint
	if err := repo.CreateUser(ctx, User{ID: "u-2", Username: "alice", PasswordHash: "x"}); err == nil {
		t.Error("expected error for duplicate username")
	}
}

func TestAuditLog(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	entries := []AuditEntry{
		{Event: "expense.created", RecordID: "r-1", Owner: "alice", OccurredAt: base},
		{Event: "expense.updated", RecordID: "r-1", Owner: "alice", OccurredAt: base.Add(time.Minute)},
		{Event: "expense.created", RecordID: "r-9", Owner: "bob", OccurredAt: base},
	}
	for _, e := range entries {
		if err := repo.AppendAudit(ctx, e); err != nil {
			t.Fatalf("AppendAudit: %v", err)
		}
	}

	got, err := repo.ListAuditByOwner(ctx, "alice", 10)
	if err != nil {
		t.Fatalf("ListAuditByOwner: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	// newest first
	if got[0].Event != "expense.updated" || got[1].Event != "expense.created" {
		t.Errorf("order = %s, %s", got[0].Event, got[1].Event)
	}

	limited, err := repo.ListAuditByOwner(ctx, "alice", 1)
	if err != nil {
		t.Fatalf("ListAuditByOwner limited: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("limited list has %d entries, want 1", len(limited))
	}
}
