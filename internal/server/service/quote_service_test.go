package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"papertrade/internal/entity"
	"papertrade/internal/server/config"
	"papertrade/internal/server/dto"
	"papertrade/internal/server/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gorm.io/datatypes"
)

func newQuoteFixture() (QuoteService, *fakeProvider, *fakeSnapshots) {
	provider := newFakeProvider()
	snapshots := newFakeSnapshots()
	svc := NewQuoteService(&config.Config{}, provider, snapshots, nil, newTestLogger())
	return svc, provider, snapshots
}

func TestGetStockInfo(t *testing.T) {
	ctx := context.Background()

	t.Run("caches fresh quotes", func(t *testing.T) {
		svc, provider, _ := newQuoteFixture()
		provider.quotes["AAPL"] = &dto.StockInfo{Ticker: "AAPL", CurrentPrice: 150}

		info, err := svc.GetStockInfo(ctx, "aapl")
		require.NoError(t, err)
		assert.InDelta(t, 150, info.CurrentPrice, 1e-9)
		assert.Equal(t, 1, provider.calls)

		_, err = svc.GetStockInfo(ctx, "AAPL")
		require.NoError(t, err)
		assert.Equal(t, 1, provider.calls, "second read should hit the cache")
	})

	t.Run("serves stale data when the provider fails", func(t *testing.T) {
		provider := newFakeProvider()
		provider.quotes["AAPL"] = &dto.StockInfo{Ticker: "AAPL", CurrentPrice: 150}
		// Zero TTL so the fresh cache expires immediately.
		cfg := &config.Config{}
		cfg.Quotes.CacheTTL = "1ns"
		svc := NewQuoteService(cfg, provider, newFakeSnapshots(), nil, newTestLogger())

		_, err := svc.GetStockInfo(ctx, "AAPL")
		require.NoError(t, err)

		provider.err = errors.New("upstream timeout")
		info, err := svc.GetStockInfo(ctx, "AAPL")
		require.NoError(t, err)
		assert.InDelta(t, 150, info.CurrentPrice, 1e-9)
	})

	t.Run("falls back to the persisted snapshot", func(t *testing.T) {
		svc, provider, snapshots := newQuoteFixture()
		provider.err = errors.New("upstream timeout")

		data, err := json.Marshal(dto.StockInfo{Ticker: "AAPL", CurrentPrice: 140})
		require.NoError(t, err)
		snapshots.snapshots["AAPL"] = &entity.QuoteSnapshot{Ticker: "AAPL", Price: 140, Data: datatypes.JSON(data)}

		info, err := svc.GetStockInfo(ctx, "AAPL")
		require.NoError(t, err)
		assert.InDelta(t, 140, info.CurrentPrice, 1e-9)
	})

	t.Run("unknown symbol maps to not found", func(t *testing.T) {
		svc, _, _ := newQuoteFixture()
		_, err := svc.GetStockInfo(ctx, "ZZZZ")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("no fallback tiers means quote unavailable", func(t *testing.T) {
		svc, provider, _ := newQuoteFixture()
		provider.err = errors.New("upstream timeout")

		_, err := svc.GetStockInfo(ctx, "AAPL")
		assert.ErrorIs(t, err, ErrQuoteUnavailable)
	})

	t.Run("invalid ticker shape is rejected", func(t *testing.T) {
		svc, _, _ := newQuoteFixture()
		_, err := svc.GetStockInfo(ctx, "not a ticker!")
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestGetHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("returns bars for a valid period", func(t *testing.T) {
		svc, provider, _ := newQuoteFixture()
		provider.history["AAPL"] = []dto.HistoricalBar{
			{Date: "2026-08-26", Close: 149},
			{Date: "2026-08-27", Close: 150},
		}

		bars, err := svc.GetHistory(ctx, "AAPL", "1mo")
		require.NoError(t, err)
		assert.Len(t, bars, 2)
	})

	t.Run("invalid period is rejected", func(t *testing.T) {
		svc, _, _ := newQuoteFixture()
		_, err := svc.GetHistory(ctx, "AAPL", "7w")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown ticker yields empty series", func(t *testing.T) {
		svc, _, _ := newQuoteFixture()
		bars, err := svc.GetHistory(ctx, "ZZZZ", "1mo")
		require.NoError(t, err)
		assert.Empty(t, bars)
	})
}

func TestSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves a known ticker", func(t *testing.T) {
		svc, provider, _ := newQuoteFixture()
		provider.quotes["BRK.B"] = &dto.StockInfo{Ticker: "BRK.B", CurrentPrice: 400}

		results, err := svc.Search(ctx, "brk-b")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.InDelta(t, 400, results[0].CurrentPrice, 1e-9)
	})

	t.Run("no match is an empty result, not an error", func(t *testing.T) {
		svc, _, _ := newQuoteFixture()
		results, err := svc.Search(ctx, "ZZZZ")
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestCuratedLists(t *testing.T) {
	ctx := context.Background()

	t.Run("pads from backup data when the provider is down", func(t *testing.T) {
		svc, provider, _ := newQuoteFixture()
		provider.err = errors.New("upstream timeout")

		trending := svc.GetTrendingStocks(ctx)
		assert.Len(t, trending, 5)
		popular := svc.GetPopularStocks(ctx)
		assert.Len(t, popular, 5)
	})

	t.Run("market summary skips failed indices", func(t *testing.T) {
		svc, provider, _ := newQuoteFixture()
		provider.quotes["SPY"] = &dto.StockInfo{Ticker: "SPY", CurrentPrice: 520, Change: 2, ChangePercent: 0.4}

		summary, err := svc.GetMarketSummary(ctx)
		require.NoError(t, err)
		require.Len(t, summary, 1)
		assert.Equal(t, "SPY", summary[0].Symbol)
	})
}

func TestValidPeriodSet(t *testing.T) {
	for _, period := range []string{"1d", "5d", "1mo", "3mo", "6mo", "1y", "2y", "5y", "10y", "ytd", "max"} {
		assert.True(t, repository.ValidPeriod(period), period)
	}
	assert.False(t, repository.ValidPeriod("100y"))
}
