// Package budget stores the per-user budget scalar in its own worksheet.
package budget

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"tripledger/internal/core"
	"tripledger/internal/sheets"
)

var budgetHeader = []string{"username", "budget"}

// Service reads and upserts budget rows. Uniqueness is not enforced
// beyond a linear scan; with a corrupt store holding duplicate owners the
// first match wins.
type Service struct {
	store sheets.RowStore
	sheet string
}

func NewService(store sheets.RowStore, sheet string) *Service {
	return &Service{store: store, sheet: sheet}
}

// Get returns the owner's budget, or zero when the row is missing, the
// sheet is malformed, or the stored value does not parse. It never fails;
// a zero budget is always a safe read-path degradation.
func (s *Service) Get(ctx context.Context, owner string) core.Money {
	rec, ok := s.find(ctx, owner)
	if !ok {
		return core.Money{}
	}
	return rec.Amount
}

// Set upserts the owner's budget: overwrite in place when a row exists,
// append otherwise. An empty sheet gets the header first.
func (s *Service) Set(ctx context.Context, owner string, amount core.Money) error {
	if strings.TrimSpace(owner) == "" {
		return core.ErrEmptyOwner
	}
	if amount.Cents < 0 {
		return core.ErrInvalidAmount
	}

	rows, err := s.store.ReadAll(ctx, s.sheet)
	if err != nil {
		return fmt.Errorf("set budget: %w", err)
	}

	values := []string{owner, amount.String()}
	if len(rows) == 0 {
		if err := s.store.Append(ctx, s.sheet, budgetHeader); err != nil {
			return fmt.Errorf("write budget header: %w", err)
		}
		if err := s.store.Append(ctx, s.sheet, values); err != nil {
			return fmt.Errorf("append budget: %w", err)
		}
		return nil
	}

	if rec, ok := scan(rows, owner); ok {
		if err := s.store.Update(ctx, s.sheet, rec.RowIndex, values); err != nil {
			return fmt.Errorf("update budget: %w", err)
		}
		slog.InfoContext(ctx, "Budget updated", "owner", owner, "amount_cents", amount.Cents)
		return nil
	}

	if err := s.store.Append(ctx, s.sheet, values); err != nil {
		return fmt.Errorf("append budget: %w", err)
	}
	slog.InfoContext(ctx, "Budget set", "owner", owner, "amount_cents", amount.Cents)
	return nil
}

func (s *Service) find(ctx context.Context, owner string) (core.BudgetRecord, bool) {
	rows, err := s.store.ReadAll(ctx, s.sheet)
	if err != nil {
		slog.WarnContext(ctx, "Budget read failed, defaulting to zero", "owner", owner, "error", err)
		return core.BudgetRecord{}, false
	}
	return scan(rows, owner)
}

func scan(rows []sheets.Row, owner string) (core.BudgetRecord, bool) {
	if len(rows) == 0 {
		return core.BudgetRecord{}, false
	}
	userCol, amountCol := -1, -1
	for i, name := range rows[0].Values {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "username":
			if userCol < 0 {
				userCol = i
			}
		case "budget":
			if amountCol < 0 {
				amountCol = i
			}
		}
	}
	if userCol < 0 || amountCol < 0 {
		return core.BudgetRecord{}, false
	}
	for _, row := range rows[1:] {
		if userCol >= len(row.Values) || strings.TrimSpace(row.Values[userCol]) != owner {
			continue
		}
		rec := core.BudgetRecord{Owner: owner, RowIndex: row.Index}
		if amountCol < len(row.Values) {
			if cents, err := core.ParseDecimalToCents(row.Values[amountCol]); err == nil {
				rec.Amount = core.Money{Cents: cents}
			}
		}
		return rec, true
	}
	return core.BudgetRecord{}, false
}
