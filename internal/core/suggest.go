package core

// SuggestionKind classifies an expense against the user's history in the
// same category. Message wording is a presentation concern; templates map
// kinds to text.
type SuggestionKind int

const (
	SuggestionNone SuggestionKind = iota
	SuggestionFirstInCategory
	SuggestionTypicalSpend
	SuggestionAboveAverage
	SuggestionWellAboveAverage
)

func (k SuggestionKind) String() string {
	switch k {
	case SuggestionFirstInCategory:
		return "first-in-category"
	case SuggestionTypicalSpend:
		return "typical-spend"
	case SuggestionAboveAverage:
		return "above-average"
	case SuggestionWellAboveAverage:
		return "well-above-average"
	default:
		return "none"
	}
}

// Suggest classifies amount against the historical category average over
// priorCount earlier expenses. Pure function: no randomness, no I/O.
func Suggest(amount, historicalAvg Money, priorCount int) SuggestionKind {
	if amount.Cents <= 0 {
		return SuggestionNone
	}
	if priorCount == 0 || historicalAvg.Cents <= 0 {
		return SuggestionFirstInCategory
	}
	switch {
	case amount.Cents <= historicalAvg.Cents:
		return SuggestionTypicalSpend
	case amount.Cents <= 2*historicalAvg.Cents:
		return SuggestionAboveAverage
	default:
		return SuggestionWellAboveAverage
	}
}

// CategoryAverage returns the mean spent amount for a category, rounded to
// cents, plus the number of records considered.
func CategoryAverage(records []ExpenseRecord, category string) (Money, int) {
	var total int64
	var n int64
	for _, r := range records {
		if r.Category != category {
			continue
		}
		total += r.SpentAmount().Cents
		n++
	}
	if n == 0 {
		return Money{}, 0
	}
	// Half-up on the integer cent division.
	avg := (total + n/2) / n
	return Money{Cents: avg}, int(n)
}
