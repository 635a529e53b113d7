package http

import (
	"net/http"

	"papertrade/internal/entity"
	"papertrade/internal/server/dto"
	"papertrade/internal/server/service"
	"papertrade/pkg/logger"

	"github.com/labstack/echo/v4"
)

// TradeHandler handles buy and sell orders.
type TradeHandler struct {
	tradingService service.TradingService
	logger         *logger.Logger
}

// NewTradeHandler creates a new TradeHandler.
func NewTradeHandler(tradingService service.TradingService, logger *logger.Logger) *TradeHandler {
	return &TradeHandler{tradingService: tradingService, logger: logger}
}

// RegisterRoutes registers the trade routes.
func (h *TradeHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/trade", h.Trade)
}

// Trade settles a buy or sell order depending on the requested action.
func (h *TradeHandler) Trade(c echo.Context) error {
	var req dto.TradeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.Fail("Invalid request payload"))
	}

	var result *dto.TradeResult
	var err error
	switch req.Action {
	case entity.TransactionTypeBuy:
		result, err = h.tradingService.ExecuteBuy(c.Request().Context(), authedUserID(c), &req)
	case entity.TransactionTypeSell:
		result, err = h.tradingService.ExecuteSell(c.Request().Context(), authedUserID(c), &req)
	default:
		return c.JSON(http.StatusBadRequest, dto.Fail("Action must be 'buy' or 'sell'"))
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK(result))
}
