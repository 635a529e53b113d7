package http

import (
	"net/http"

	"papertrade/internal/server/dto"
	"papertrade/internal/server/service"
	"papertrade/pkg/logger"

	"github.com/labstack/echo/v4"
)

// StockHandler handles quote, history, search, and market overview
// requests.
type StockHandler struct {
	quoteService service.QuoteService
	logger       *logger.Logger
}

// NewStockHandler creates a new StockHandler.
func NewStockHandler(quoteService service.QuoteService, logger *logger.Logger) *StockHandler {
	return &StockHandler{quoteService: quoteService, logger: logger}
}

// RegisterRoutes registers the stock routes.
func (h *StockHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/stock/info/:ticker", h.Info)
	g.GET("/stock/price/:ticker", h.Price)
	g.GET("/stock/history/:ticker", h.History)
	g.GET("/stock/search", h.Search)
	g.GET("/market/summary", h.MarketSummary)
	g.GET("/market/trending", h.Trending)
	g.GET("/market/popular", h.Popular)
}

// Info returns quote data for one ticker.
func (h *StockHandler) Info(c echo.Context) error {
	info, err := h.quoteService.GetStockInfo(c.Request().Context(), c.Param("ticker"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK(info))
}

// Price returns the current price for one ticker.
func (h *StockHandler) Price(c echo.Context) error {
	ticker := c.Param("ticker")
	price, err := h.quoteService.GetCurrentPrice(c.Request().Context(), ticker)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK(dto.StockPriceResponse{Ticker: ticker, Price: price}))
}

// History returns OHLCV bars for a ticker and period.
func (h *StockHandler) History(c echo.Context) error {
	ticker := c.Param("ticker")
	period := c.QueryParam("period")
	if period == "" {
		period = "1mo"
	}

	bars, err := h.quoteService.GetHistory(c.Request().Context(), ticker, period)
	if err != nil {
		return respondError(c, err)
	}
	if len(bars) == 0 {
		return c.JSON(http.StatusNotFound, dto.Fail("No historical data available for "+ticker))
	}
	return c.JSON(http.StatusOK, dto.OK(dto.StockHistoryResponse{
		Ticker: ticker,
		Period: period,
		Data:   bars,
	}))
}

// Search resolves a query to matching stocks.
func (h *StockHandler) Search(c echo.Context) error {
	query := c.QueryParam("q")
	results, err := h.quoteService.Search(c.Request().Context(), query)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK(dto.StockSearchResponse{
		Query:   query,
		Count:   len(results),
		Results: results,
	}))
}

// MarketSummary returns the tracked index ETFs.
func (h *StockHandler) MarketSummary(c echo.Context) error {
	summary, err := h.quoteService.GetMarketSummary(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK(summary))
}

// Trending returns the trending stock list.
func (h *StockHandler) Trending(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.OK(h.quoteService.GetTrendingStocks(c.Request().Context())))
}

// Popular returns the popular stock list.
func (h *StockHandler) Popular(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.OK(h.quoteService.GetPopularStocks(c.Request().Context())))
}
