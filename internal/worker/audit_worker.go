// Package worker holds the background jobs: persisting the expense
// audit trail from AMQP and keeping exchange rates fresh.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"tripledger/internal/amqp"
	"tripledger/internal/storage"
)

// AuditStore is the subset of the storage repository the audit worker
// writes to.
type AuditStore interface {
	AppendAudit(ctx context.Context, e storage.AuditEntry) error
}

// AuditWorker persists expense mutation events into the SQLite audit log.
type AuditWorker struct {
	store AuditStore
}

func NewAuditWorker(store AuditStore) *AuditWorker {
	return &AuditWorker{store: store}
}

// HandleEvent processes a single expense event message from AMQP.
// A returned error requeues the message.
func (w *AuditWorker) HandleEvent(ctx context.Context, msg *amqp.ExpenseEventMessage) error {
	slog.InfoContext(ctx, "Processing expense event",
		"event", msg.Event,
		"record_id", msg.ID,
		"owner", msg.Owner)

	entry := storage.AuditEntry{
		Event:      msg.Event,
		RecordID:   msg.ID,
		Owner:      msg.Owner,
		OccurredAt: msg.Timestamp,
	}
	if err := w.store.AppendAudit(ctx, entry); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}

	return nil
}
