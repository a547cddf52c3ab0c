package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"tripledger/internal/core"
	"tripledger/internal/sheets"
)

// ErrRecordNotFound means the record ID could not be located in the store
// at mutation time, typically because another session deleted it.
var ErrRecordNotFound = errors.New("expense record not found")

// CurrencyNormalizer converts an amount into the base currency. A missing
// rate must surface as an error; the operation is rejected, never silently
// defaulted.
type CurrencyNormalizer interface {
	Normalize(ctx context.Context, amount core.Money, currency string) (core.Money, error)
}

// EventPublisher emits audit events for expense mutations. Publishing is
// best-effort; failures are logged and never fail the mutation.
type EventPublisher interface {
	PublishExpenseEvent(ctx context.Context, event, id, owner string) error
}

// Service is the write path of the ledger. Mutations locate rows by record
// ID at call time instead of trusting a previously computed row index, so a
// concurrent delete from another session yields ErrRecordNotFound rather
// than a silent write to the wrong row.
type Service struct {
	store      sheets.RowStore
	reader     *Reader
	normalizer CurrencyNormalizer
	events     EventPublisher
	sheet      string
	newID      func() string
}

func NewService(store sheets.RowStore, normalizer CurrencyNormalizer, events EventPublisher, sheet string) *Service {
	return &Service{
		store:      store,
		reader:     NewReader(store, sheet),
		normalizer: normalizer,
		events:     events,
		sheet:      sheet,
		newID:      uuid.NewString,
	}
}

// List returns the owner's records, optionally filtered by trip.
func (s *Service) List(ctx context.Context, owner, trip string) ([]core.ExpenseRecord, error) {
	return s.reader.Load(ctx, owner, trip)
}

// Create validates, normalizes and splits the record, then appends it.
// The stored record (ID assigned, derived fields filled) is returned.
func (s *Service) Create(ctx context.Context, rec core.ExpenseRecord) (core.ExpenseRecord, error) {
	prepared, err := s.prepare(ctx, rec)
	if err != nil {
		return core.ExpenseRecord{}, err
	}
	prepared.ID = s.newID()

	if err := s.ensureHeader(ctx); err != nil {
		return core.ExpenseRecord{}, err
	}
	if err := s.store.Append(ctx, s.sheet, marshalRow(prepared)); err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("append expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense created",
		"id", prepared.ID,
		"owner", prepared.Owner,
		"category", prepared.Category,
		"amount_cents", prepared.Amount.Cents,
		"trip", prepared.Trip)
	s.publish(ctx, "expense.created", prepared.ID, prepared.Owner)
	return prepared, nil
}

// Update rewrites the record in place. The row is located by ID at call
// time; a record deleted meanwhile yields ErrRecordNotFound.
func (s *Service) Update(ctx context.Context, rec core.ExpenseRecord) (core.ExpenseRecord, error) {
	if strings.TrimSpace(rec.ID) == "" {
		return core.ExpenseRecord{}, ErrRecordNotFound
	}
	prepared, err := s.prepare(ctx, rec)
	if err != nil {
		return core.ExpenseRecord{}, err
	}

	index, err := s.locate(ctx, rec.Owner, rec.ID)
	if err != nil {
		return core.ExpenseRecord{}, err
	}
	if err := s.store.Update(ctx, s.sheet, index, marshalRow(prepared)); err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("update expense %s: %w", rec.ID, err)
	}

	slog.InfoContext(ctx, "Expense updated", "id", prepared.ID, "owner", prepared.Owner, "row", index)
	s.publish(ctx, "expense.updated", prepared.ID, prepared.Owner)
	return prepared, nil
}

// Delete removes the owner's record with the given ID.
func (s *Service) Delete(ctx context.Context, owner, id string) error {
	index, err := s.locate(ctx, owner, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, s.sheet, index); err != nil {
		return fmt.Errorf("delete expense %s: %w", id, err)
	}

	slog.InfoContext(ctx, "Expense deleted", "id", id, "owner", owner, "row", index)
	s.publish(ctx, "expense.deleted", id, owner)
	return nil
}

// prepare fills the derived fields: default trip, normalized amount and
// the shared split. A conversion failure rejects the whole operation.
func (s *Service) prepare(ctx context.Context, rec core.ExpenseRecord) (core.ExpenseRecord, error) {
	if strings.TrimSpace(rec.Trip) == "" {
		rec.Trip = core.TripGeneral
	}
	if err := rec.Validate(); err != nil {
		return core.ExpenseRecord{}, err
	}

	normalized, err := s.normalizer.Normalize(ctx, rec.Amount, rec.Currency)
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("normalize %s: %w", rec.Currency, err)
	}
	rec.Normalized = normalized
	rec.SharedWith, rec.SplitAmount = core.Split(rec.Amount, rec.SharedWith)
	return rec, nil
}

// locate scans the sheet for the row holding the record ID and verifies
// ownership. The returned index is valid only until the next mutation.
func (s *Service) locate(ctx context.Context, owner, id string) (int, error) {
	rows, err := s.store.ReadAll(ctx, s.sheet)
	if err != nil {
		return 0, fmt.Errorf("locate expense %s: %w", id, err)
	}
	if len(rows) == 0 {
		return 0, ErrRecordNotFound
	}
	idx := columnIndex(rows[0].Values)
	if _, ok := idx["id"]; !ok {
		return 0, &SchemaError{Column: "id"}
	}
	for _, row := range rows[1:] {
		if field(row.Values, idx, "id") != id {
			continue
		}
		if field(row.Values, idx, "username") != owner {
			return 0, ErrRecordNotFound
		}
		return row.Index, nil
	}
	return 0, ErrRecordNotFound
}

// ensureHeader writes the canonical header when the sheet is empty.
func (s *Service) ensureHeader(ctx context.Context) error {
	rows, err := s.store.ReadAll(ctx, s.sheet)
	if err != nil {
		return fmt.Errorf("check sheet header: %w", err)
	}
	if len(rows) > 0 {
		return nil
	}
	if err := s.store.Append(ctx, s.sheet, expenseHeader); err != nil {
		return fmt.Errorf("write sheet header: %w", err)
	}
	return nil
}

func (s *Service) publish(ctx context.Context, event, id, owner string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishExpenseEvent(ctx, event, id, owner); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"event", event, "id", id, "error", err)
	}
}
