package service

import (
	"context"

	"papertrade/internal/server/dto"
	"papertrade/internal/server/repository"
	"papertrade/pkg/logger"
)

// PortfolioService values a user's positions at current quotes.
type PortfolioService interface {
	GetSummary(ctx context.Context, userID uint) (*dto.PortfolioSummary, error)
}

// NewPortfolioService creates a portfolio service.
func NewPortfolioService(ledger repository.LedgerRepository, users repository.UserRepository, quotes QuoteService, log *logger.Logger) PortfolioService {
	return &portfolioService{
		ledger: ledger,
		users:  users,
		quotes: quotes,
		logger: log,
	}
}

type portfolioService struct {
	ledger repository.LedgerRepository
	users  repository.UserRepository
	quotes QuoteService
	logger *logger.Logger
}

// GetSummary values every holding at its current quote and aggregates with
// the cash balance. A holding whose quote cannot be refreshed is valued at
// its last observed price, or at its average buy price when no usable price
// was ever stored; one bad ticker never fails the summary.
func (s *portfolioService) GetSummary(ctx context.Context, userID uint) (*dto.PortfolioSummary, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	holdings, err := s.ledger.ListHoldings(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &dto.PortfolioSummary{
		CashBalance: user.Balance,
		Holdings:    make([]dto.HoldingSummary, 0, len(holdings)),
	}

	for i := range holdings {
		h := &holdings[i]
		price := h.CurrentPrice
		dayChange := 0.0
		dayChangePercent := 0.0

		info, quoteErr := s.quotes.GetStockInfo(ctx, h.Ticker)
		if quoteErr == nil && info.CurrentPrice > 0 {
			price = info.CurrentPrice
			dayChange = info.Change * h.Quantity
			dayChangePercent = info.ChangePercent
			if price != h.CurrentPrice {
				if err := s.ledger.UpdateHoldingPrice(ctx, h.ID, price); err != nil {
					s.logger.DebugContext(ctx, "Failed to persist refreshed holding price",
						logger.StringField("ticker", h.Ticker), logger.ErrorField(err))
				}
			}
		} else {
			if price <= 0 {
				price = h.AverageBuyPrice
			}
			if quoteErr != nil {
				s.logger.DebugContext(ctx, "Valuing holding at last known price",
					logger.StringField("ticker", h.Ticker), logger.ErrorField(quoteErr))
			}
		}

		marketValue := h.Quantity * price
		costBasis := h.CostBasis()
		profit := marketValue - costBasis
		profitPercent := 0.0
		if costBasis > 0 {
			profitPercent = profit / costBasis * 100
		}

		summary.Holdings = append(summary.Holdings, dto.HoldingSummary{
			Ticker:           h.Ticker,
			CompanyName:      h.CompanyName,
			Quantity:         h.Quantity,
			AveragePrice:     h.AverageBuyPrice,
			CurrentPrice:     price,
			MarketValue:      marketValue,
			CostBasis:        costBasis,
			Profit:           profit,
			ProfitPercent:    profitPercent,
			DayChange:        dayChange,
			DayChangePercent: dayChangePercent,
		})

		summary.PortfolioValue += marketValue
		summary.TotalProfitLoss += profit
		summary.DayChange += dayChange
	}

	summary.TotalAccountValue = summary.CashBalance + summary.PortfolioValue
	totalCost := summary.PortfolioValue - summary.TotalProfitLoss
	if totalCost > 0 {
		summary.TotalProfitLossPercent = summary.TotalProfitLoss / totalCost * 100
	}
	return summary, nil
}
