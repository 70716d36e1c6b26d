// Package exchange resolves currency exchange rates for document valuation.
package exchange

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"almacen/pkg/logger"
)

// Provider returns the rate used to convert an amount in the given currency
// into the base currency for a document dated on the given day.
type Provider interface {
	Rate(ctx context.Context, currency string, date time.Time) (decimal.Decimal, error)
}

// RateSource fetches a raw exchange rate from an external origin
// (SUNAT endpoint, bank API, database table).
type RateSource interface {
	Fetch(ctx context.Context, currency string, date time.Time) (decimal.Decimal, error)
}

// StaticSource always returns a fixed rate. Used in tests and as a
// configuration-driven source when no live endpoint is available.
type StaticSource struct {
	Value decimal.Decimal
}

func (s StaticSource) Fetch(_ context.Context, _ string, _ time.Time) (decimal.Decimal, error) {
	return s.Value, nil
}

type cacheEntry struct {
	rate      decimal.Decimal
	fetchedAt time.Time
}

// CachedProvider wraps a RateSource with an in-memory TTL cache and a
// configured fallback rate. The base currency always resolves to 1.
// A source failure never surfaces as an error: the last cached rate is
// reused even past its TTL, and the configured fallback covers the cold
// case. Document registration must not stall on an unreachable origin.
type CachedProvider struct {
	source       RateSource
	baseCurrency string
	fallback     decimal.Decimal
	ttl          time.Duration
	now          func() time.Time

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// NewCachedProvider creates a provider over the given source.
func NewCachedProvider(source RateSource, baseCurrency string, fallback decimal.Decimal, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		source:       source,
		baseCurrency: baseCurrency,
		fallback:     fallback,
		ttl:          ttl,
		now:          time.Now,
		cache:        make(map[string]cacheEntry),
	}
}

// Rate implements Provider.
func (p *CachedProvider) Rate(ctx context.Context, currency string, date time.Time) (decimal.Decimal, error) {
	if currency == "" || currency == p.baseCurrency {
		return decimal.NewFromInt(1), nil
	}

	key := currency + "|" + date.Format("2006-01-02")

	p.mu.Lock()
	entry, ok := p.cache[key]
	p.mu.Unlock()
	if ok && p.now().Sub(entry.fetchedAt) < p.ttl {
		return entry.rate, nil
	}

	rate, err := p.source.Fetch(ctx, currency, date)
	if err != nil || !rate.IsPositive() {
		if ok {
			logger.Warn(ctx, "exchange rate fetch failed, reusing last known rate",
				"currency", currency, "date", date.Format("2006-01-02"), "rate", entry.rate, "error", err)
			return entry.rate, nil
		}
		logger.Warn(ctx, "exchange rate fetch failed, using fallback",
			"currency", currency, "date", date.Format("2006-01-02"), "fallback", p.fallback, "error", err)
		return p.fallback, nil
	}

	p.mu.Lock()
	p.cache[key] = cacheEntry{rate: rate, fetchedAt: p.now()}
	p.mu.Unlock()

	return rate, nil
}
