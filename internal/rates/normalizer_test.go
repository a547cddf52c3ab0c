package rates

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"tripledger/internal/core"
)

type fakeProvider struct {
	rates map[string]float64
	err   error
	calls int
}

func (p *fakeProvider) Fetch(context.Context, string) (map[string]float64, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	// copy: the normalizer mutates the returned map to pin the base rate
	out := make(map[string]float64, len(p.rates))
	for k, v := range p.rates {
		out[k] = v
	}
	return out, nil
}

func newTestNormalizer(t *testing.T, provider Provider) *Normalizer {
	t.Helper()
	store := NewFileStore(filepath.Join(t.TempDir(), "rates.json"))
	n := NewNormalizer(provider, store, "INR")
	n.now = func() time.Time { return time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC) }
	return n
}

func TestConvert(t *testing.T) {
	rs := map[string]float64{"USD": 0.012, "EUR": 0.011}

	t.Run("identity for base currency", func(t *testing.T) {
		got, err := Convert(core.Money{Cents: 12345}, "INR", "INR", rs)
		if err != nil || got.Cents != 12345 {
			t.Errorf("Convert = %v, %v; want identity", got, err)
		}
	})

	t.Run("known scenario", func(t *testing.T) {
		// 100 USD at 0.012 = 8333.33 INR
		got, err := Convert(core.Money{Cents: 10000}, "USD", "INR", rs)
		if err != nil {
			t.Fatalf("Convert: %v", err)
		}
		if got.Cents != 833333 {
			t.Errorf("Convert = %d cents, want 833333", got.Cents)
		}
	})

	t.Run("missing rate", func(t *testing.T) {
		_, err := Convert(core.Money{Cents: 100}, "GBP", "INR", rs)
		if !errors.Is(err, ErrRateUnavailable) {
			t.Errorf("Convert error = %v, want ErrRateUnavailable", err)
		}
	})

	t.Run("empty mapping", func(t *testing.T) {
		_, err := Convert(core.Money{Cents: 100}, "USD", "INR", map[string]float64{})
		if !errors.Is(err, ErrRateUnavailable) {
			t.Errorf("Convert error = %v, want ErrRateUnavailable", err)
		}
	})
}

func TestRatesForFetchesOncePerDay(t *testing.T) {
	provider := &fakeProvider{rates: map[string]float64{"USD": 0.012}}
	n := newTestNormalizer(t, provider)
	ctx := context.Background()

	first := n.RatesFor(ctx)
	if first.AsOf != "2025-06-15" {
		t.Errorf("AsOf = %q", first.AsOf)
	}
	if first.Rates["INR"] != 1 {
		t.Errorf("base rate = %v, want pinned to 1", first.Rates["INR"])
	}

	n.RatesFor(ctx)
	n.RatesFor(ctx)
	if provider.calls != 1 {
		t.Errorf("provider called %d times for same day, want 1", provider.calls)
	}
}

func TestRatesForFallsBackToStaleSnapshot(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "rates.json"))
	stale := Snapshot{AsOf: "2025-06-01", Base: "INR", Rates: map[string]float64{"USD": 0.013, "INR": 1}}
	if err := store.Save(stale); err != nil {
		t.Fatalf("seed stale snapshot: %v", err)
	}

	provider := &fakeProvider{err: errors.New("provider down")}
	n := NewNormalizer(provider, store, "INR")
	n.now = func() time.Time { return time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC) }

	snap := n.RatesFor(context.Background())
	if snap.AsOf != "2025-06-01" || snap.Rates["USD"] != 0.013 {
		t.Errorf("snapshot = %+v, want stale fallback", snap)
	}
}

func TestRatesForEmptyWhenNothingAvailable(t *testing.T) {
	provider := &fakeProvider{err: errors.New("provider down")}
	n := newTestNormalizer(t, provider)

	snap := n.RatesFor(context.Background())
	if !snap.IsZero() && len(snap.Rates) != 0 {
		t.Errorf("snapshot = %+v, want empty", snap)
	}

	// conversions must be rejected, not silently zeroed
	_, err := n.Normalize(context.Background(), core.Money{Cents: 100}, "USD")
	if !errors.Is(err, ErrRateUnavailable) {
		t.Errorf("Normalize error = %v, want ErrRateUnavailable", err)
	}
}

func TestNormalizeIdentitySkipsFetch(t *testing.T) {
	provider := &fakeProvider{rates: map[string]float64{"USD": 0.012}}
	n := newTestNormalizer(t, provider)

	got, err := n.Normalize(context.Background(), core.Money{Cents: 4200}, "INR")
	if err != nil || got.Cents != 4200 {
		t.Errorf("Normalize = %v, %v; want identity", got, err)
	}
	if provider.calls != 0 {
		t.Errorf("provider called %d times for base currency, want 0", provider.calls)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "nested", "rates.json"))

	empty, err := store.Load()
	if err != nil || !empty.IsZero() {
		t.Fatalf("Load before Save = %+v, %v", empty, err)
	}

	snap := Snapshot{AsOf: "2025-06-15", Base: "INR", Rates: map[string]float64{"USD": 0.012, "INR": 1}}
	if err := store.Save(snap); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.AsOf != snap.AsOf || loaded.Rates["USD"] != 0.012 {
		t.Errorf("Load = %+v, want %+v", loaded, snap)
	}
}
