package worker

import (
	"context"
	"log/slog"
	"time"
)

// RatesRefresher re-fetches the daily exchange rate snapshot on a fixed
// interval so dashboard requests rarely pay the provider round trip.
type RatesRefresher struct {
	normalizer RatesSource
	interval   time.Duration
}

// RatesSource is implemented by the currency normalizer.
type RatesSource interface {
	Refresh(ctx context.Context) error
	Base() string
}

func NewRatesRefresher(normalizer RatesSource, interval time.Duration) *RatesRefresher {
	if interval <= 0 {
		interval = time.Hour
	}
	return &RatesRefresher{normalizer: normalizer, interval: interval}
}

// Run refreshes immediately, then on every tick until the context is
// cancelled. Refresh failures are logged and retried on the next tick;
// the normalizer keeps serving its last snapshot in the meantime.
func (r *RatesRefresher) Run(ctx context.Context) error {
	r.refresh(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping rates refresher", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *RatesRefresher) refresh(ctx context.Context) {
	if err := r.normalizer.Refresh(ctx); err != nil {
		slog.ErrorContext(ctx, "Failed to refresh exchange rates",
			"base", r.normalizer.Base(),
			"error", err)
		return
	}
	slog.InfoContext(ctx, "Exchange rates refreshed", "base", r.normalizer.Base())
}
