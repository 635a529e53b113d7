package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"papertrade/internal/entity"
	"papertrade/internal/server/config"
	"papertrade/internal/server/dto"
	"papertrade/internal/server/repository"
	"papertrade/pkg/logger"

	"gorm.io/gorm"
)

// quantityEpsilon guards float comparisons on share counts. A position
// within this of zero is treated as fully closed.
const quantityEpsilon = 1e-9

// TradingService settles buy and sell orders and records cash movements.
// Quote lookups happen before the database transaction opens so a slow or
// failing provider can never hold row locks.
type TradingService interface {
	ExecuteBuy(ctx context.Context, userID uint, req *dto.TradeRequest) (*dto.TradeResult, error)
	ExecuteSell(ctx context.Context, userID uint, req *dto.TradeRequest) (*dto.TradeResult, error)
	Deposit(ctx context.Context, userID uint, amount float64) (*dto.CashResult, error)
	Withdraw(ctx context.Context, userID uint, amount float64) (*dto.CashResult, error)
	ListTransactions(ctx context.Context, userID uint, limit int) ([]dto.TransactionResponse, error)
	ListCashTransactions(ctx context.Context, userID uint, limit int) ([]dto.CashTransactionResponse, error)
}

// NewTradingService creates a trading service.
func NewTradingService(cfg *config.Config, ledger repository.LedgerRepository, quotes QuoteService, log *logger.Logger) TradingService {
	tolerance := cfg.Trading.PriceTolerancePercent
	if tolerance <= 0 {
		tolerance = 5
	}
	return &tradingService{
		ledger:    ledger,
		quotes:    quotes,
		logger:    log,
		tolerance: tolerance,
	}
}

type tradingService struct {
	ledger    repository.LedgerRepository
	quotes    QuoteService
	logger    *logger.Logger
	tolerance float64
}

// resolveOrder validates an order and fixes its execution price and company
// name before settlement. When a fresh quote is available the client price
// must sit within the tolerance band around it; when the provider is down
// the client price is accepted as-is. Sells set allowUnknown so a position
// in a delisted ticker can still be closed.
func (s *tradingService) resolveOrder(ctx context.Context, req *dto.TradeRequest, allowUnknown bool) (ticker string, price float64, companyName string, err error) {
	ticker, err = NormalizeTicker(req.Ticker)
	if err != nil {
		return "", 0, "", err
	}
	if req.Quantity <= 0 {
		return "", 0, "", fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}

	companyName = ticker
	info, quoteErr := s.quotes.GetStockInfo(ctx, ticker)
	switch {
	case quoteErr == nil:
		companyName = info.Name
		if req.Price <= 0 {
			price = info.CurrentPrice
		} else {
			price = req.Price
			deviation := math.Abs(price-info.CurrentPrice) / info.CurrentPrice * 100
			if deviation > s.tolerance {
				return "", 0, "", fmt.Errorf("%w: price %.2f deviates %.1f%% from the current quote %.2f",
					ErrValidation, price, deviation, info.CurrentPrice)
			}
		}
	case errors.Is(quoteErr, ErrNotFound) && !allowUnknown:
		return "", 0, "", quoteErr
	case errors.Is(quoteErr, ErrQuoteUnavailable), errors.Is(quoteErr, ErrNotFound):
		if req.Price <= 0 {
			return "", 0, "", fmt.Errorf("%w: no price supplied and %v", ErrValidation, quoteErr)
		}
		price = req.Price
		s.logger.InfoContext(ctx, "Quote provider unavailable, settling at client price",
			logger.StringField("ticker", ticker), logger.Float64Field("price", price))
	default:
		return "", 0, "", quoteErr
	}
	return ticker, price, companyName, nil
}

// ExecuteBuy settles a purchase: the total cost is debited from the cash
// balance and the position's average buy price is re-weighted.
func (s *tradingService) ExecuteBuy(ctx context.Context, userID uint, req *dto.TradeRequest) (*dto.TradeResult, error) {
	ticker, price, companyName, err := s.resolveOrder(ctx, req, false)
	if err != nil {
		return nil, err
	}
	totalCost := price * req.Quantity

	var record entity.Transaction
	err = s.ledger.WithinTransaction(ctx, func(tx repository.LedgerRepository) error {
		user, err := tx.FindUserForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if user.Balance < totalCost {
			return fmt.Errorf("%w: order costs %.2f but balance is %.2f",
				ErrInsufficientFunds, totalCost, user.Balance)
		}

		holding, err := tx.FindHoldingForUpdate(ctx, userID, ticker)
		switch {
		case err == nil:
			newQuantity := holding.Quantity + req.Quantity
			holding.AverageBuyPrice = (holding.CostBasis() + totalCost) / newQuantity
			holding.Quantity = newQuantity
			holding.CurrentPrice = price
		case errors.Is(err, gorm.ErrRecordNotFound):
			holding = &entity.StockHolding{
				UserID:          userID,
				Ticker:          ticker,
				CompanyName:     companyName,
				Quantity:        req.Quantity,
				AverageBuyPrice: price,
				CurrentPrice:    price,
			}
		default:
			return err
		}
		if err := tx.SaveHolding(ctx, holding); err != nil {
			return err
		}
		if err := tx.UpdateBalance(ctx, userID, user.Balance-totalCost); err != nil {
			return err
		}

		record = entity.Transaction{
			UserID:          userID,
			Ticker:          ticker,
			TransactionType: entity.TransactionTypeBuy,
			Quantity:        req.Quantity,
			Price:           price,
			TotalAmount:     totalCost,
		}
		if req.MakePublic && req.Note != "" {
			post, err := s.createTradePost(ctx, tx, userID, &record, req.Note)
			if err != nil {
				return err
			}
			record.TradingPostID = &post.ID
		}
		return tx.CreateTransaction(ctx, &record)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Buy settled",
		logger.Field("user_id", userID),
		logger.StringField("ticker", ticker),
		logger.Float64Field("quantity", req.Quantity),
		logger.Float64Field("price", price))

	return &dto.TradeResult{
		Message: fmt.Sprintf("Successfully purchased %s shares of %s at $%.2f per share.",
			formatQuantity(req.Quantity), ticker, price),
		Transaction: dto.NewTransactionResponse(&record),
	}, nil
}

// ExecuteSell settles a sale: the proceeds are credited to the cash balance
// and the position shrinks, disappearing entirely when it reaches zero. The
// holding is re-checked under a row lock so concurrent sells cannot
// oversell.
func (s *tradingService) ExecuteSell(ctx context.Context, userID uint, req *dto.TradeRequest) (*dto.TradeResult, error) {
	ticker, price, _, err := s.resolveOrder(ctx, req, true)
	if err != nil {
		return nil, err
	}
	proceeds := price * req.Quantity

	var record entity.Transaction
	err = s.ledger.WithinTransaction(ctx, func(tx repository.LedgerRepository) error {
		user, err := tx.FindUserForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		holding, err := tx.FindHoldingForUpdate(ctx, userID, ticker)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: no position in %s", ErrInsufficientShares, ticker)
		}
		if err != nil {
			return err
		}
		if holding.Quantity+quantityEpsilon < req.Quantity {
			return fmt.Errorf("%w: position holds %s but order sells %s",
				ErrInsufficientShares, formatQuantity(holding.Quantity), formatQuantity(req.Quantity))
		}

		remaining := holding.Quantity - req.Quantity
		if remaining <= quantityEpsilon {
			if err := tx.DeleteHolding(ctx, holding.ID); err != nil {
				return err
			}
		} else {
			holding.Quantity = remaining
			holding.CurrentPrice = price
			if err := tx.SaveHolding(ctx, holding); err != nil {
				return err
			}
		}
		if err := tx.UpdateBalance(ctx, userID, user.Balance+proceeds); err != nil {
			return err
		}

		record = entity.Transaction{
			UserID:          userID,
			Ticker:          ticker,
			TransactionType: entity.TransactionTypeSell,
			Quantity:        req.Quantity,
			Price:           price,
			TotalAmount:     proceeds,
		}
		if req.MakePublic && req.Note != "" {
			post, err := s.createTradePost(ctx, tx, userID, &record, req.Note)
			if err != nil {
				return err
			}
			record.TradingPostID = &post.ID
		}
		return tx.CreateTransaction(ctx, &record)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Sell settled",
		logger.Field("user_id", userID),
		logger.StringField("ticker", ticker),
		logger.Float64Field("quantity", req.Quantity),
		logger.Float64Field("price", price))

	return &dto.TradeResult{
		Message: fmt.Sprintf("Successfully sold %s shares of %s at $%.2f per share.",
			formatQuantity(req.Quantity), ticker, price),
		Transaction: dto.NewTransactionResponse(&record),
	}, nil
}

// createTradePost publishes a trade as a feed post inside the settlement
// transaction, so a failed settlement never leaves an orphaned post. Posts
// are only created for trades that carry a note.
func (s *tradingService) createTradePost(ctx context.Context, tx repository.LedgerRepository, userID uint, record *entity.Transaction, note string) (*entity.TradingPost, error) {
	verb := "Bought"
	if record.TransactionType == entity.TransactionTypeSell {
		verb = "Sold"
	}
	post := &entity.TradingPost{
		UserID:    userID,
		Title:     fmt.Sprintf("%s %s", verb, record.Ticker),
		Content:   note,
		Ticker:    record.Ticker,
		TradeType: record.TransactionType,
		Quantity:  record.Quantity,
		Price:     record.Price,
		IsPublic:  true,
	}
	if err := tx.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Deposit credits virtual cash to the account.
func (s *tradingService) Deposit(ctx context.Context, userID uint, amount float64) (*dto.CashResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}

	var balance float64
	err := s.ledger.WithinTransaction(ctx, func(tx repository.LedgerRepository) error {
		user, err := tx.FindUserForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		balance = user.Balance + amount
		if err := tx.UpdateBalance(ctx, userID, balance); err != nil {
			return err
		}
		return tx.CreateCashTransaction(ctx, &entity.CashTransaction{
			UserID:          userID,
			TransactionType: entity.CashTransactionTypeDeposit,
			Amount:          amount,
		})
	})
	if err != nil {
		return nil, err
	}
	return &dto.CashResult{
		Message: fmt.Sprintf("Successfully deposited $%.2f.", amount),
		Balance: balance,
	}, nil
}

// Withdraw debits virtual cash from the account, never below zero.
func (s *tradingService) Withdraw(ctx context.Context, userID uint, amount float64) (*dto.CashResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}

	var balance float64
	err := s.ledger.WithinTransaction(ctx, func(tx repository.LedgerRepository) error {
		user, err := tx.FindUserForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if user.Balance < amount {
			return fmt.Errorf("%w: balance is %.2f", ErrInsufficientFunds, user.Balance)
		}
		balance = user.Balance - amount
		if err := tx.UpdateBalance(ctx, userID, balance); err != nil {
			return err
		}
		return tx.CreateCashTransaction(ctx, &entity.CashTransaction{
			UserID:          userID,
			TransactionType: entity.CashTransactionTypeWithdraw,
			Amount:          amount,
		})
	})
	if err != nil {
		return nil, err
	}
	return &dto.CashResult{
		Message: fmt.Sprintf("Successfully withdrew $%.2f.", amount),
		Balance: balance,
	}, nil
}

// ListTransactions returns the most recent trades, newest first.
func (s *tradingService) ListTransactions(ctx context.Context, userID uint, limit int) ([]dto.TransactionResponse, error) {
	limit = clampLimit(limit)
	txns, err := s.ledger.ListTransactions(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	result := make([]dto.TransactionResponse, 0, len(txns))
	for i := range txns {
		result = append(result, dto.NewTransactionResponse(&txns[i]))
	}
	return result, nil
}

// ListCashTransactions returns the most recent cash movements, newest first.
func (s *tradingService) ListCashTransactions(ctx context.Context, userID uint, limit int) ([]dto.CashTransactionResponse, error) {
	limit = clampLimit(limit)
	txns, err := s.ledger.ListCashTransactions(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	result := make([]dto.CashTransactionResponse, 0, len(txns))
	for _, t := range txns {
		result = append(result, dto.CashTransactionResponse{
			ID:              t.ID,
			TransactionType: t.TransactionType,
			Amount:          t.Amount,
			CreatedAt:       t.CreatedAt,
		})
	}
	return result, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 200 {
		return 200
	}
	return limit
}

func formatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}
