package exchange

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	rate  decimal.Decimal
	err   error
	calls int
}

func (s *countingSource) Fetch(_ context.Context, _ string, _ time.Time) (decimal.Decimal, error) {
	s.calls++
	return s.rate, s.err
}

func TestCachedProvider_BaseCurrencyIsOne(t *testing.T) {
	src := &countingSource{rate: decimal.RequireFromString("3.512")}
	p := NewCachedProvider(src, "PEN", decimal.RequireFromString("3.75"), time.Hour)

	rate, err := p.Rate(context.Background(), "PEN", time.Now())
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, 0, src.calls, "base currency must not hit the source")

	rate, err = p.Rate(context.Background(), "", time.Now())
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.NewFromInt(1)))
}

func TestCachedProvider_CachesWithinTTL(t *testing.T) {
	src := &countingSource{rate: decimal.RequireFromString("3.512")}
	p := NewCachedProvider(src, "PEN", decimal.RequireFromString("3.75"), time.Hour)

	clock := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return clock }

	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	rate, err := p.Rate(context.Background(), "USD", date)
	require.NoError(t, err)
	assert.True(t, rate.Equal(src.rate))
	assert.Equal(t, 1, src.calls)

	clock = clock.Add(30 * time.Minute)
	_, err = p.Rate(context.Background(), "USD", date)
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls, "second lookup within TTL must be served from cache")

	clock = clock.Add(31 * time.Minute)
	_, err = p.Rate(context.Background(), "USD", date)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls, "expired entry must be refetched")
}

func TestCachedProvider_DistinctDatesAreDistinctEntries(t *testing.T) {
	src := &countingSource{rate: decimal.RequireFromString("3.512")}
	p := NewCachedProvider(src, "PEN", decimal.RequireFromString("3.75"), time.Hour)

	_, _ = p.Rate(context.Background(), "USD", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	_, _ = p.Rate(context.Background(), "USD", time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 2, src.calls)
}

func TestCachedProvider_FallbackOnSourceError(t *testing.T) {
	src := &countingSource{err: errors.New("connection refused")}
	fallback := decimal.RequireFromString("3.75")
	p := NewCachedProvider(src, "PEN", fallback, time.Hour)

	rate, err := p.Rate(context.Background(), "USD", time.Now())
	require.NoError(t, err)
	assert.True(t, rate.Equal(fallback))

	// Failures are not cached: the next lookup retries the source.
	_, err = p.Rate(context.Background(), "USD", time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestCachedProvider_StaleEntryBeatsFallback(t *testing.T) {
	src := &countingSource{rate: decimal.RequireFromString("3.512")}
	p := NewCachedProvider(src, "PEN", decimal.RequireFromString("3.75"), time.Hour)

	clock := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return clock }

	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	_, err := p.Rate(context.Background(), "USD", date)
	require.NoError(t, err)

	// Entry expired and the source is down: the last known rate still
	// beats the configured fallback.
	clock = clock.Add(2 * time.Hour)
	src.err = errors.New("connection refused")
	rate, err := p.Rate(context.Background(), "USD", date)
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("3.512")), "got %s", rate)
}

func TestCachedProvider_FallbackOnNonPositiveRate(t *testing.T) {
	src := &countingSource{rate: decimal.Zero}
	fallback := decimal.RequireFromString("3.75")
	p := NewCachedProvider(src, "PEN", fallback, time.Hour)

	rate, err := p.Rate(context.Background(), "USD", time.Now())
	require.NoError(t, err)
	assert.True(t, rate.Equal(fallback))
}
