package core

import (
	"errors"
	"sort"
	"strings"
	"time"
)

// TripGeneral is the default trip label for expenses not tied to a trip.
const TripGeneral = "General"

// Categories accepted by the expense form.
var Categories = []string{"Flights", "Hotels", "Food", "Transport", "Miscellaneous"}

// Currencies offered by the expense form and the converter widget.
var Currencies = []string{"USD", "EUR", "INR", "GBP", "JPY", "AUD", "CAD", "CNY"}

type (
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// ExpenseRecord is one ledger row, normalized from the backing store.
	// RowIndex is the 1-based position of the row in the store at read time;
	// mutations locate rows by ID, not by RowIndex.
	ExpenseRecord struct {
		ID          string
		Owner       string
		Date        Date
		Category    string
		Description string
		Amount      Money
		Currency    string
		Normalized  Money // amount converted into the base currency
		Location    string
		Trip        string
		SharedWith  []string
		SplitAmount Money
		RowIndex    int
	}

	// BudgetRecord is one row of the budget sheet. One per user.
	BudgetRecord struct {
		Owner    string
		Amount   Money
		RowIndex int
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyOwner       = errors.New("empty owner")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCurrency    = errors.New("empty currency")
)

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO date as stored in the sheet.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e ExpenseRecord) Validate() error {
	if strings.TrimSpace(e.Owner) == "" {
		return ErrEmptyOwner
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Currency) == "" {
		return ErrEmptyCurrency
	}
	return nil
}

// SpentAmount is the figure aggregation works on: the normalized amount when
// conversion happened, the raw amount otherwise (currency == base).
func (e ExpenseRecord) SpentAmount() Money {
	if e.Normalized.Cents != 0 {
		return e.Normalized
	}
	return e.Amount
}

// Trips returns the distinct trip labels across records, always including
// the default "General", sorted for stable rendering.
func Trips(records []ExpenseRecord) []string {
	seen := map[string]struct{}{TripGeneral: {}}
	out := []string{TripGeneral}
	for _, r := range records {
		trip := strings.TrimSpace(r.Trip)
		if trip == "" {
			continue
		}
		if _, ok := seen[trip]; ok {
			continue
		}
		seen[trip] = struct{}{}
		out = append(out, trip)
	}
	sort.Strings(out)
	return out
}
