package rates

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"tripledger/internal/core"
)

// Normalizer converts amounts into the base currency using a snapshot
// refreshed at most once per calendar day.
type Normalizer struct {
	provider Provider
	store    *FileStore
	base     string
	now      func() time.Time

	mu     sync.Mutex
	cached Snapshot
}

func NewNormalizer(provider Provider, store *FileStore, base string) *Normalizer {
	return &Normalizer{
		provider: provider,
		store:    store,
		base:     base,
		now:      time.Now,
	}
}

// Base returns the canonical currency everything is normalized into.
func (n *Normalizer) Base() string {
	return n.base
}

// RatesFor returns today's snapshot, fetching and persisting a new one
// when the cached snapshot is stale. On fetch failure the last persisted
// snapshot is served regardless of its age; with no snapshot at all an
// empty mapping comes back and conversions fail with ErrRateUnavailable.
func (n *Normalizer) RatesFor(ctx context.Context) Snapshot {
	n.mu.Lock()
	defer n.mu.Unlock()

	now := n.now()
	if n.cached.Fresh(now) {
		return n.cached
	}

	persisted, err := n.store.Load()
	if err != nil {
		slog.WarnContext(ctx, "Failed to load rates cache", "error", err)
	}
	if persisted.Fresh(now) {
		n.cached = persisted
		return persisted
	}

	fetched, err := n.provider.Fetch(ctx, n.base)
	if err == nil {
		snap := Snapshot{
			AsOf:  now.Format(dateLayout),
			Base:  n.base,
			Rates: fetched,
		}
		snap.Rates[n.base] = 1
		if err := n.store.Save(snap); err != nil {
			slog.WarnContext(ctx, "Failed to persist rates snapshot", "error", err)
		}
		n.cached = snap
		slog.InfoContext(ctx, "Exchange rates refreshed",
			"base", n.base, "as_of", snap.AsOf, "currencies", len(snap.Rates))
		return snap
	}

	slog.ErrorContext(ctx, "Rates fetch failed", "base", n.base, "error", err)
	if !persisted.IsZero() {
		slog.WarnContext(ctx, "Serving stale rates snapshot", "as_of", persisted.AsOf)
		return persisted
	}
	return Snapshot{Base: n.base, Rates: map[string]float64{}}
}

// Refresh forces a snapshot check; used by the daily refresh worker. An
// error comes back only when no snapshot at all could be served.
func (n *Normalizer) Refresh(ctx context.Context) error {
	snap := n.RatesFor(ctx)
	if len(snap.Rates) == 0 {
		return fmt.Errorf("refresh rates for %s: %w", n.base, ErrRateUnavailable)
	}
	return nil
}

// Normalize converts amount from currency into the base currency using
// today's snapshot.
func (n *Normalizer) Normalize(ctx context.Context, amount core.Money, currency string) (core.Money, error) {
	if currency == n.base {
		return amount, nil
	}
	snap := n.RatesFor(ctx)
	return Convert(amount, currency, n.base, snap.Rates)
}

// Convert divides amount by the currency's multiplier and rounds to two
// decimals. Identity when currency == base. A currency absent from the
// mapping fails with ErrRateUnavailable.
func Convert(amount core.Money, currency, base string, rs map[string]float64) (core.Money, error) {
	if currency == base {
		return amount, nil
	}
	rate, ok := rs[currency]
	if !ok || rate <= 0 {
		return core.Money{}, fmt.Errorf("no rate for %s: %w", currency, ErrRateUnavailable)
	}
	converted := amount.Decimal().Div(decimal.NewFromFloat(rate))
	return core.MoneyFromDecimal(converted), nil
}
