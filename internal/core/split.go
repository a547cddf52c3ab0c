package core

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Split divides an expense evenly across the payer plus the shared
// participants. With no participants the payer carries the full amount.
// The participant set is deduplicated; order is irrelevant. The per-share
// amount is rounded to two decimals, so per_share*(k+1) can drift from the
// total by at most k cents.
func Split(amount Money, participants []string) (sharedWith []string, perShare Money) {
	seen := map[string]struct{}{}
	for _, p := range participants {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		sharedWith = append(sharedWith, p)
	}
	if len(sharedWith) == 0 {
		return nil, amount
	}
	sort.Strings(sharedWith)

	heads := decimal.NewFromInt(int64(len(sharedWith) + 1))
	perShare = MoneyFromDecimal(amount.Decimal().Div(heads))
	return sharedWith, perShare
}
