package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"papertrade/internal/server/config"
	"papertrade/internal/server/dto"
	"papertrade/internal/server/repository"
	"papertrade/pkg/common"
	"papertrade/pkg/logger"
	redisPkg "papertrade/pkg/redis"

	"github.com/patrickmn/go-cache"
	"github.com/robfig/cron/v3"
)

var tickerPattern = regexp.MustCompile(`^[A-Z][A-Z0-9.\-]{0,9}$`)

// NormalizeTicker upper-cases and trims a ticker and validates its shape.
func NormalizeTicker(ticker string) (string, error) {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	if !tickerPattern.MatchString(t) {
		return "", fmt.Errorf("%w: invalid ticker %q", ErrValidation, ticker)
	}
	return t, nil
}

// marketIndices are the ETFs tracked by the market summary.
var marketIndices = []struct {
	Symbol string
	Name   string
}{
	{"DIA", "Dow Jones (DIA)"},
	{"SPY", "S&P 500 (SPY)"},
	{"QQQ", "NASDAQ (QQQ)"},
	{"IWM", "Russell 2000 (IWM)"},
}

var trendingTickers = []string{"AAPL", "MSFT", "GOOGL", "TSLA", "NVDA"}
var popularTickers = []string{"AMZN", "META", "JPM", "V", "JNJ", "PG", "KO"}

// QuoteService is the cached boundary over the external quote provider.
// Every read consults the time-bounded cache first; a stale entry, the
// shared last-price store, and the persisted snapshot are served in that
// order when a fresh fetch fails.
type QuoteService interface {
	GetStockInfo(ctx context.Context, ticker string) (*dto.StockInfo, error)
	GetCurrentPrice(ctx context.Context, ticker string) (float64, error)
	GetHistory(ctx context.Context, ticker, period string) ([]dto.HistoricalBar, error)
	Search(ctx context.Context, query string) ([]dto.StockInfo, error)
	GetMarketSummary(ctx context.Context) ([]dto.MarketIndex, error)
	GetTrendingStocks(ctx context.Context) []dto.StockInfo
	GetPopularStocks(ctx context.Context) []dto.StockInfo
	StartRefresher() error
	StopRefresher()
}

// NewQuoteService creates a quote service. The redis client may be nil, in
// which case the shared last-price tier is skipped.
func NewQuoteService(
	cfg *config.Config,
	provider repository.YahooFinanceRepository,
	snapshots repository.QuoteSnapshotRepository,
	redisClient *redisPkg.Client,
	log *logger.Logger,
) QuoteService {
	ttl := 5 * time.Minute
	if cfg.Quotes.CacheTTL != "" {
		if parsed, err := time.ParseDuration(cfg.Quotes.CacheTTL); err == nil {
			ttl = parsed
		}
	}
	return &quoteService{
		cfg:       cfg,
		provider:  provider,
		snapshots: snapshots,
		redis:     redisClient,
		logger:    log,
		fresh:     cache.New(ttl, 2*ttl),
		stale:     cache.New(cache.NoExpiration, 0),
	}
}

type quoteService struct {
	cfg       *config.Config
	provider  repository.YahooFinanceRepository
	snapshots repository.QuoteSnapshotRepository
	redis     *redisPkg.Client
	logger    *logger.Logger
	fresh     *cache.Cache
	stale     *cache.Cache
	cron      *cron.Cron
}

// GetStockInfo returns quote data for a ticker, from cache when fresh. On
// provider failure a stale cache entry or persisted snapshot is served; a
// ticker the provider does not know returns ErrNotFound.
func (s *quoteService) GetStockInfo(ctx context.Context, ticker string) (*dto.StockInfo, error) {
	t, err := NormalizeTicker(ticker)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf(common.CacheKeyStockInfo, t)
	if cached, ok := s.fresh.Get(key); ok {
		return cached.(*dto.StockInfo), nil
	}

	info, err := s.provider.GetQuote(ctx, t)
	if err == nil {
		s.fresh.Set(key, info, cache.DefaultExpiration)
		s.stale.Set(key, info, cache.NoExpiration)
		s.storeLastPrice(ctx, t, info.CurrentPrice)
		s.storeSnapshot(ctx, t, info)
		return info, nil
	}
	if errors.Is(err, repository.ErrSymbolNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, t)
	}

	s.logger.ErrorContext(ctx, "Quote fetch failed, trying fallbacks",
		logger.StringField("ticker", t), logger.ErrorField(err))

	if staleEntry, ok := s.stale.Get(key); ok {
		return staleEntry.(*dto.StockInfo), nil
	}
	if snapshot, snapErr := s.snapshots.Find(ctx, t); snapErr == nil {
		var info dto.StockInfo
		if jsonErr := json.Unmarshal(snapshot.Data, &info); jsonErr == nil {
			return &info, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrQuoteUnavailable, t)
}

// GetCurrentPrice returns just the price, adding the shared last-price
// store as one more fallback tier after GetStockInfo's.
func (s *quoteService) GetCurrentPrice(ctx context.Context, ticker string) (float64, error) {
	info, err := s.GetStockInfo(ctx, ticker)
	if err == nil {
		return info.CurrentPrice, nil
	}
	if !errors.Is(err, ErrQuoteUnavailable) {
		return 0, err
	}

	if s.redis != nil {
		t, normErr := NormalizeTicker(ticker)
		if normErr == nil {
			key := fmt.Sprintf(common.RedisKeyLastPrice, t)
			if raw, redisErr := s.redis.HGet(ctx, key, "price").Result(); redisErr == nil {
				if price, parseErr := strconv.ParseFloat(raw, 64); parseErr == nil && price > 0 {
					return price, nil
				}
			}
		}
	}
	return 0, err
}

// GetHistory returns OHLCV bars oldest first. An unknown ticker or an
// unavailable series yields an empty slice, not an error.
func (s *quoteService) GetHistory(ctx context.Context, ticker, period string) ([]dto.HistoricalBar, error) {
	t, err := NormalizeTicker(ticker)
	if err != nil {
		return nil, err
	}
	if !repository.ValidPeriod(period) {
		return nil, fmt.Errorf("%w: invalid period %q", ErrValidation, period)
	}

	key := fmt.Sprintf(common.CacheKeyStockHistory, t, period)
	if cached, ok := s.fresh.Get(key); ok {
		return cached.([]dto.HistoricalBar), nil
	}

	bars, err := s.provider.GetHistory(ctx, t, period)
	if err != nil {
		if errors.Is(err, repository.ErrSymbolNotFound) {
			return nil, nil
		}
		s.logger.ErrorContext(ctx, "History fetch failed",
			logger.StringField("ticker", t), logger.StringField("period", period), logger.ErrorField(err))
		if staleEntry, ok := s.stale.Get(key); ok {
			return staleEntry.([]dto.HistoricalBar), nil
		}
		return nil, nil
	}

	s.fresh.Set(key, bars, cache.DefaultExpiration)
	s.stale.Set(key, bars, cache.NoExpiration)
	return bars, nil
}

// Search resolves a query to zero or more stocks. The provider is keyed by
// ticker, so alternates are tried the way the original lookup did: the raw
// symbol first, then dash-for-dot substitution.
func (s *quoteService) Search(ctx context.Context, query string) ([]dto.StockInfo, error) {
	t := strings.ToUpper(strings.TrimSpace(query))
	if t == "" {
		return nil, fmt.Errorf("%w: empty query", ErrValidation)
	}

	candidates := []string{t}
	if strings.Contains(t, "-") {
		candidates = append(candidates, strings.ReplaceAll(t, "-", "."))
	}

	for _, candidate := range candidates {
		info, err := s.GetStockInfo(ctx, candidate)
		if err == nil {
			hit := *info
			return []dto.StockInfo{hit}, nil
		}
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrValidation) {
			continue
		}
		return nil, err
	}
	return []dto.StockInfo{}, nil
}

// GetMarketSummary returns the tracked index ETFs. Indices the provider
// cannot serve are skipped rather than failing the summary.
func (s *quoteService) GetMarketSummary(ctx context.Context) ([]dto.MarketIndex, error) {
	if cached, ok := s.fresh.Get(common.CacheKeyMarketSummary); ok {
		return cached.([]dto.MarketIndex), nil
	}

	summary := make([]dto.MarketIndex, 0, len(marketIndices))
	for _, idx := range marketIndices {
		info, err := s.GetStockInfo(ctx, idx.Symbol)
		if err != nil {
			s.logger.DebugContext(ctx, "Skipping index in market summary",
				logger.StringField("symbol", idx.Symbol), logger.ErrorField(err))
			continue
		}
		summary = append(summary, dto.MarketIndex{
			Name:          idx.Name,
			Symbol:        idx.Symbol,
			Price:         info.CurrentPrice,
			Change:        info.Change,
			ChangePercent: info.ChangePercent,
		})
	}
	if len(summary) > 0 {
		s.fresh.Set(common.CacheKeyMarketSummary, summary, cache.DefaultExpiration)
	}
	return summary, nil
}

// GetTrendingStocks returns quote data for a fixed trending set, padded
// from static backup data when the provider cannot serve enough of them.
func (s *quoteService) GetTrendingStocks(ctx context.Context) []dto.StockInfo {
	return s.curatedList(ctx, common.CacheKeyTrending, trendingTickers, backupTrendingStocks)
}

// GetPopularStocks returns quote data for a fixed popular set, padded from
// static backup data when the provider cannot serve enough of them.
func (s *quoteService) GetPopularStocks(ctx context.Context) []dto.StockInfo {
	return s.curatedList(ctx, common.CacheKeyPopular, popularTickers, backupPopularStocks)
}

func (s *quoteService) curatedList(ctx context.Context, cacheKey string, tickers []string, backup []dto.StockInfo) []dto.StockInfo {
	if cached, ok := s.fresh.Get(cacheKey); ok {
		return cached.([]dto.StockInfo)
	}

	result := make([]dto.StockInfo, 0, 5)
	for _, t := range tickers {
		if len(result) >= 5 {
			break
		}
		info, err := s.GetStockInfo(ctx, t)
		if err != nil {
			continue
		}
		result = append(result, *info)
	}

	if len(result) < 3 {
		s.logger.InfoContext(ctx, "Insufficient live data for curated list, padding from backup",
			logger.StringField("list", cacheKey), logger.IntField("live", len(result)))
		seen := map[string]bool{}
		for _, info := range result {
			seen[info.Ticker] = true
		}
		for _, info := range backup {
			if len(result) >= 5 {
				break
			}
			if !seen[info.Ticker] {
				result = append(result, info)
			}
		}
	}

	s.fresh.Set(cacheKey, result, cache.DefaultExpiration)
	return result
}

// StartRefresher schedules periodic warming of the market summary and
// curated lists so dashboard reads rarely hit a cold cache.
func (s *quoteService) StartRefresher() error {
	interval := s.cfg.Quotes.RefreshInterval
	if interval == "" {
		interval = "5m"
	}

	s.cron = cron.New()
	_, err := s.cron.AddFunc("@every "+interval, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		if _, err := s.GetMarketSummary(ctx); err != nil {
			s.logger.Error("Market summary refresh failed", logger.ErrorField(err))
		}
		s.GetTrendingStocks(ctx)
		s.GetPopularStocks(ctx)
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// StopRefresher stops the refresh schedule, if started.
func (s *quoteService) StopRefresher() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *quoteService) storeLastPrice(ctx context.Context, ticker string, price float64) {
	if s.redis == nil || price <= 0 {
		return
	}
	key := fmt.Sprintf(common.RedisKeyLastPrice, ticker)
	pipe := s.redis.Pipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"price":     price,
		"timestamp": time.Now().Unix(),
	})
	pipe.Expire(ctx, key, 24*time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.ErrorContext(ctx, "Failed to store last price",
			logger.StringField("ticker", ticker), logger.ErrorField(err))
	}
}

func (s *quoteService) storeSnapshot(ctx context.Context, ticker string, info *dto.StockInfo) {
	if s.snapshots == nil {
		return
	}
	data, err := json.Marshal(info)
	if err != nil {
		return
	}
	if err := s.snapshots.Upsert(ctx, ticker, info.CurrentPrice, data); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist quote snapshot",
			logger.StringField("ticker", ticker), logger.ErrorField(err))
	}
}
