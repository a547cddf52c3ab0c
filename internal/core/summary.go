package core

import "github.com/shopspring/decimal"

// SpendStatus labels a category against the fixed budget-share threshold.
type SpendStatus string

const (
	StatusOK   SpendStatus = "OK"
	StatusHigh SpendStatus = "High"
)

// highSpendPercent is the share of budget above which a category is
// flagged "High". Fixed policy, not configurable.
const highSpendPercent = 30.0

// CategorySummary aggregates one category of a user's ledger.
// PercentOfBudget is only meaningful when PercentDefined is true; with a
// zero budget the percentage is undefined and rendered as "N/A".
type CategorySummary struct {
	Amount          Money
	PercentOfBudget float64
	PercentDefined  bool
	Status          SpendStatus
}

// Summary is the budget-vs-spend reconciliation of a ledger.
type Summary struct {
	TotalSpent Money
	Remaining  Money
	ByCategory map[string]CategorySummary
}

// Summarize aggregates normalized records against the budget. An empty
// record set yields zero totals and an empty category map.
func Summarize(records []ExpenseRecord, budget Money) Summary {
	byCategory := map[string]Money{}
	var total int64
	for _, r := range records {
		spent := r.SpentAmount()
		total += spent.Cents
		cat := r.Category
		byCategory[cat] = Money{Cents: byCategory[cat].Cents + spent.Cents}
	}

	s := Summary{
		TotalSpent: Money{Cents: total},
		Remaining:  Money{Cents: budget.Cents - total},
		ByCategory: make(map[string]CategorySummary, len(byCategory)),
	}
	for cat, amount := range byCategory {
		cs := CategorySummary{Amount: amount}
		if budget.Cents > 0 {
			pct := amount.Decimal().
				Div(budget.Decimal()).
				Mul(decimal.NewFromInt(100)).
				Round(2)
			cs.PercentOfBudget = pct.InexactFloat64()
			cs.PercentDefined = true
			if cs.PercentOfBudget <= highSpendPercent {
				cs.Status = StatusOK
			} else {
				cs.Status = StatusHigh
			}
		}
		s.ByCategory[cat] = cs
	}
	return s
}
