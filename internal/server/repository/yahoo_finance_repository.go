package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"papertrade/internal/server/config"
	"papertrade/internal/server/dto"
	"papertrade/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrSymbolNotFound is returned when the provider has no data for a ticker.
var ErrSymbolNotFound = errors.New("symbol not found")

// YahooFinanceRepository is the quote-provider boundary. It is the only
// component that talks to the upstream; everything above it goes through
// the quote service cache.
type YahooFinanceRepository interface {
	GetQuote(ctx context.Context, ticker string) (*dto.StockInfo, error)
	GetHistory(ctx context.Context, ticker, period string) ([]dto.HistoricalBar, error)
}

type yahooFinanceRepository struct {
	cfg            *config.Config
	log            *logger.Logger
	httpClient     *http.Client
	requestLimiter *rate.Limiter
}

// NewYahooFinanceRepository creates a rate-limited provider client with a
// bounded request timeout.
func NewYahooFinanceRepository(cfg *config.Config, log *logger.Logger) YahooFinanceRepository {
	timeout := 10 * time.Second
	if cfg.Quotes.RequestTimeout != "" {
		if parsed, err := time.ParseDuration(cfg.Quotes.RequestTimeout); err == nil {
			timeout = parsed
		}
	}
	perMinute := cfg.Quotes.MaxRequestPerMinute
	if perMinute <= 0 {
		perMinute = 60
	}
	secondsPerRequest := time.Minute / time.Duration(perMinute)
	return &yahooFinanceRepository{
		cfg:            cfg,
		log:            log,
		httpClient:     &http.Client{Timeout: timeout},
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
	}
}

// periodParams maps the public period names to provider range/interval
// pairs.
var periodParams = map[string][2]string{
	"1d":  {"1d", "5m"},
	"5d":  {"5d", "30m"},
	"1mo": {"1mo", "1d"},
	"3mo": {"3mo", "1d"},
	"6mo": {"6mo", "1d"},
	"1y":  {"1y", "1d"},
	"2y":  {"2y", "1wk"},
	"5y":  {"5y", "1wk"},
	"10y": {"10y", "1mo"},
	"ytd": {"ytd", "1d"},
	"max": {"max", "1mo"},
}

// ValidPeriod reports whether the given history period is supported.
func ValidPeriod(period string) bool {
	_, ok := periodParams[period]
	return ok
}

// GetQuote fetches the current quote plus fundamentals for a ticker.
// Fundamentals come from a second provider endpoint and are merged
// best-effort; their absence does not fail the quote.
func (r *yahooFinanceRepository) GetQuote(ctx context.Context, ticker string) (*dto.StockInfo, error) {
	chart, err := r.fetchChart(ctx, ticker, "1d", "1d")
	if err != nil {
		return nil, err
	}

	meta := chart.Chart.Result[0].Meta
	name := meta.LongName
	if name == "" {
		name = meta.ShortName
	}
	if name == "" {
		name = ticker
	}
	previousClose := meta.PreviousClose
	if previousClose == 0 {
		previousClose = meta.ChartPreviousClose
	}
	if previousClose <= 0 && meta.RegularMarketPrice > 0 {
		previousClose = meta.RegularMarketPrice
	}
	change := meta.RegularMarketPrice - previousClose
	changePercent := 0.0
	if previousClose > 0 {
		changePercent = change / previousClose * 100
	}
	exchange := meta.FullExchangeName
	if exchange == "" {
		exchange = meta.ExchangeName
	}

	info := &dto.StockInfo{
		Ticker:        ticker,
		Name:          name,
		Sector:        "Unknown",
		Industry:      "Unknown",
		CurrentPrice:  meta.RegularMarketPrice,
		PreviousClose: previousClose,
		Change:        change,
		ChangePercent: changePercent,
		Volume:        meta.RegularMarketVolume,
		YearLow:       meta.FiftyTwoWeekLow,
		YearHigh:      meta.FiftyTwoWeekHigh,
		Exchange:      exchange,
	}

	if err := r.mergeSummary(ctx, ticker, info); err != nil {
		r.log.DebugContext(ctx, "Quote summary unavailable, serving chart data only",
			logger.StringField("ticker", ticker), logger.ErrorField(err))
	}

	if info.CurrentPrice <= 0 {
		return nil, ErrSymbolNotFound
	}
	return info, nil
}

// GetHistory fetches OHLCV bars for the given period, oldest first. An
// unknown ticker or empty series returns ErrSymbolNotFound.
func (r *yahooFinanceRepository) GetHistory(ctx context.Context, ticker, period string) ([]dto.HistoricalBar, error) {
	params, ok := periodParams[period]
	if !ok {
		return nil, fmt.Errorf("unsupported period %q", period)
	}
	chart, err := r.fetchChart(ctx, ticker, params[0], params[1])
	if err != nil {
		return nil, err
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, ErrSymbolNotFound
	}
	quote := result.Indicators.Quote[0]

	bars := make([]dto.HistoricalBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) {
			break
		}
		bars = append(bars, dto.HistoricalBar{
			Date:   time.Unix(ts, 0).UTC().Format("2006-01-02"),
			Open:   at(quote.Open, i),
			High:   at(quote.High, i),
			Low:    at(quote.Low, i),
			Close:  at(quote.Close, i),
			Volume: atInt(quote.Volume, i),
		})
	}
	return bars, nil
}

func at(values []float64, i int) float64 {
	if i < len(values) {
		return values[i]
	}
	return 0
}

func atInt(values []int64, i int) int64 {
	if i < len(values) {
		return values[i]
	}
	return 0
}

func (r *yahooFinanceRepository) fetchChart(ctx context.Context, ticker, rng, interval string) (*dto.YahooChartResponse, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=%s",
		r.cfg.Quotes.ChartBaseURL, url.PathEscape(ticker), url.QueryEscape(rng), url.QueryEscape(interval))

	body, err := r.sendRequest(ctx, u)
	if err != nil {
		return nil, err
	}

	var chart dto.YahooChartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("failed to decode chart response: %w", err)
	}
	if chart.Chart.Error != nil {
		if chart.Chart.Error.Code == "Not Found" {
			return nil, ErrSymbolNotFound
		}
		return nil, fmt.Errorf("provider error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, ErrSymbolNotFound
	}
	return &chart, nil
}

func (r *yahooFinanceRepository) mergeSummary(ctx context.Context, ticker string, info *dto.StockInfo) error {
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=summaryProfile,summaryDetail,defaultKeyStatistics",
		r.cfg.Quotes.SummaryBaseURL, url.PathEscape(ticker))

	body, err := r.sendRequest(ctx, u)
	if err != nil {
		return err
	}

	var summary dto.YahooSummaryResponse
	if err := json.Unmarshal(body, &summary); err != nil {
		return fmt.Errorf("failed to decode summary response: %w", err)
	}
	if summary.QuoteSummary.Error != nil || len(summary.QuoteSummary.Result) == 0 {
		return ErrSymbolNotFound
	}

	result := summary.QuoteSummary.Result[0]
	if profile := result.SummaryProfile; profile != nil {
		if profile.Sector != "" {
			info.Sector = profile.Sector
		}
		if profile.Industry != "" {
			info.Industry = profile.Industry
		}
		info.Description = profile.LongBusinessSummary
	}
	if detail := result.SummaryDetail; detail != nil {
		info.PERatio = detail.TrailingPE.Value()
		info.DividendYield = detail.DividendYield.Value() * 100
		info.MarketCap = detail.MarketCap.Value()
		info.AvgVolume = int64(detail.AverageVolume.Value())
	}
	if stats := result.DefaultKeyStatistics; stats != nil {
		info.EPS = stats.TrailingEps.Value()
	}
	return nil
}

func (r *yahooFinanceRepository) sendRequest(ctx context.Context, u string) ([]byte, error) {
	fields := []zap.Field{
		zap.String("url", u),
		zap.Int("max_request_per_minute", r.cfg.Quotes.MaxRequestPerMinute),
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		fields = append(fields, zap.Error(err))
		r.log.ErrorContext(ctx, "Failed to wait for request limit", fields...)
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		fields = append(fields, zap.Error(err))
		r.log.ErrorContext(ctx, "Failed to create quote request", fields...)
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		fields = append(fields, zap.Error(err))
		r.log.ErrorContext(ctx, "Failed to send request to quote provider", fields...)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrSymbolNotFound
	}
	if resp.StatusCode != http.StatusOK {
		fields = append(fields, zap.Int("status_code", resp.StatusCode))
		r.log.ErrorContext(ctx, "Received non-OK response from quote provider", fields...)
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fields = append(fields, zap.Error(err))
		r.log.ErrorContext(ctx, "Failed to read quote provider response", fields...)
		return nil, err
	}
	return body, nil
}
