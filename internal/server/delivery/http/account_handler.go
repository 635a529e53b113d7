package http

import (
	"net/http"
	"strconv"

	"papertrade/internal/server/dto"
	"papertrade/internal/server/service"
	"papertrade/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AccountHandler handles portfolio valuation and cash movements.
type AccountHandler struct {
	portfolioService service.PortfolioService
	tradingService   service.TradingService
	logger           *logger.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(portfolioService service.PortfolioService, tradingService service.TradingService, logger *logger.Logger) *AccountHandler {
	return &AccountHandler{
		portfolioService: portfolioService,
		tradingService:   tradingService,
		logger:           logger,
	}
}

// RegisterRoutes registers the account routes.
func (h *AccountHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/portfolio", h.Portfolio)
	g.POST("/funds/deposit", h.Deposit)
	g.POST("/funds/withdraw", h.Withdraw)
	g.GET("/me/transactions", h.Transactions)
	g.GET("/me/cash-transactions", h.CashTransactions)
}

// Portfolio returns the authenticated user's valued portfolio.
func (h *AccountHandler) Portfolio(c echo.Context) error {
	summary, err := h.portfolioService.GetSummary(c.Request().Context(), authedUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK(summary))
}

// Deposit credits virtual cash.
func (h *AccountHandler) Deposit(c echo.Context) error {
	var req dto.CashRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.Fail("Invalid request payload"))
	}

	result, err := h.tradingService.Deposit(c.Request().Context(), authedUserID(c), req.Amount)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK(result))
}

// Withdraw debits virtual cash.
func (h *AccountHandler) Withdraw(c echo.Context) error {
	var req dto.CashRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.Fail("Invalid request payload"))
	}

	result, err := h.tradingService.Withdraw(c.Request().Context(), authedUserID(c), req.Amount)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK(result))
}

// Transactions lists recent trades, newest first.
func (h *AccountHandler) Transactions(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	txns, err := h.tradingService.ListTransactions(c.Request().Context(), authedUserID(c), limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK(txns))
}

// CashTransactions lists recent cash movements, newest first.
func (h *AccountHandler) CashTransactions(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	txns, err := h.tradingService.ListCashTransactions(c.Request().Context(), authedUserID(c), limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK(txns))
}
