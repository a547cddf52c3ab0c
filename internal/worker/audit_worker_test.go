package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"tripledger/internal/amqp"
	"tripledger/internal/storage"
)

type fakeAuditStore struct {
	entries []storage.AuditEntry
	err     error
}

func (f *fakeAuditStore) AppendAudit(_ context.Context, e storage.AuditEntry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, e)
	return nil
}

func TestHandleEvent(t *testing.T) {
	store := &fakeAuditStore{}
	w := NewAuditWorker(store)

	ts := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	msg := &amqp.ExpenseEventMessage{
		Event:     "expense.created",
		ID:        "rec-1",
		Owner:     "alice",
		Timestamp: ts,
	}

	if err := w.HandleEvent(context.Background(), msg); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	if len(store.entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(store.entries))
	}
	e := store.entries[0]
	if e.Event != "expense.created" || e.RecordID != "rec-1" || e.Owner != "alice" {
		t.Errorf("entry = %+v", e)
	}
	if !e.OccurredAt.Equal(ts) {
		t.Errorf("OccurredAt = %v, want %v", e.OccurredAt, ts)
	}
}

func TestHandleEventStoreFailure(t *testing.T) {
	store := &fakeAuditStore{err: errors.New("database is locked")}
	w := NewAuditWorker(store)

	msg := &amqp.ExpenseEventMessage{Event: "expense.deleted", ID: "rec-2", Owner: "bob"}
	if err := w.HandleEvent(context.Background(), msg); err == nil {
		t.Error("expected error when the store fails, so the message is requeued")
	}
}
