package service

import (
	"context"
	"testing"

	"papertrade/internal/entity"
	"papertrade/internal/server/config"
	"papertrade/internal/server/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTradingFixture(balance float64) (*tradingService, *fakeLedger, *fakeQuotes) {
	ledger := newFakeLedger(&entity.User{ID: 1, NetID: "alice", Balance: balance})
	quotes := newFakeQuotes()
	svc := NewTradingService(&config.Config{}, ledger, quotes, newTestLogger()).(*tradingService)
	return svc, ledger, quotes
}

func TestExecuteBuy(t *testing.T) {
	ctx := context.Background()

	t.Run("debits balance and opens position", func(t *testing.T) {
		svc, ledger, quotes := newTradingFixture(1000)
		quotes.setQuote("AAPL", 100)

		result, err := svc.ExecuteBuy(ctx, 1, &dto.TradeRequest{Ticker: "AAPL", Quantity: 3, Price: 100})
		require.NoError(t, err)

		assert.Equal(t, "Successfully purchased 3 shares of AAPL at $100.00 per share.", result.Message)
		assert.InDelta(t, 700, ledger.users[1].Balance, 1e-9)

		h := ledger.holding(1, "AAPL")
		require.NotNil(t, h)
		assert.InDelta(t, 3, h.Quantity, 1e-9)
		assert.InDelta(t, 100, h.AverageBuyPrice, 1e-9)
		assert.Equal(t, "AAPL Inc.", h.CompanyName)
	})

	t.Run("reweights average price on repeat buys", func(t *testing.T) {
		svc, ledger, quotes := newTradingFixture(10000)
		quotes.setQuote("MSFT", 100)

		_, err := svc.ExecuteBuy(ctx, 1, &dto.TradeRequest{Ticker: "MSFT", Quantity: 10, Price: 100})
		require.NoError(t, err)

		quotes.setQuote("MSFT", 200)
		_, err = svc.ExecuteBuy(ctx, 1, &dto.TradeRequest{Ticker: "MSFT", Quantity: 10, Price: 200})
		require.NoError(t, err)

		h := ledger.holding(1, "MSFT")
		require.NotNil(t, h)
		assert.InDelta(t, 20, h.Quantity, 1e-9)
		assert.InDelta(t, 150, h.AverageBuyPrice, 1e-9)
		assert.InDelta(t, 7000, ledger.users[1].Balance, 1e-9)
	})

	t.Run("insufficient funds leaves state unchanged", func(t *testing.T) {
		svc, ledger, quotes := newTradingFixture(100)
		quotes.setQuote("NVDA", 500)

		_, err := svc.ExecuteBuy(ctx, 1, &dto.TradeRequest{Ticker: "NVDA", Quantity: 1, Price: 500})
		require.ErrorIs(t, err, ErrInsufficientFunds)

		assert.InDelta(t, 100, ledger.users[1].Balance, 1e-9)
		assert.Nil(t, ledger.holding(1, "NVDA"))
		assert.Empty(t, ledger.txns)
	})

	t.Run("rejects price outside tolerance band", func(t *testing.T) {
		svc, _, quotes := newTradingFixture(10000)
		quotes.setQuote("AAPL", 100)

		_, err := svc.ExecuteBuy(ctx, 1, &dto.TradeRequest{Ticker: "AAPL", Quantity: 1, Price: 120})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("settles at client price when provider is down", func(t *testing.T) {
		svc, ledger, quotes := newTradingFixture(1000)
		quotes.errs["AAPL"] = ErrQuoteUnavailable

		_, err := svc.ExecuteBuy(ctx, 1, &dto.TradeRequest{Ticker: "AAPL", Quantity: 2, Price: 100})
		require.NoError(t, err)
		assert.InDelta(t, 800, ledger.users[1].Balance, 1e-9)
	})

	t.Run("unknown ticker is rejected", func(t *testing.T) {
		svc, _, _ := newTradingFixture(1000)

		_, err := svc.ExecuteBuy(ctx, 1, &dto.TradeRequest{Ticker: "ZZZZ", Quantity: 1, Price: 10})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("publishes a post when requested with a note", func(t *testing.T) {
		svc, ledger, quotes := newTradingFixture(1000)
		quotes.setQuote("AAPL", 100)

		result, err := svc.ExecuteBuy(ctx, 1, &dto.TradeRequest{Ticker: "AAPL", Quantity: 1, Price: 100, MakePublic: true, Note: "long term hold"})
		require.NoError(t, err)

		require.Len(t, ledger.posts, 1)
		assert.Equal(t, "Bought AAPL", ledger.posts[0].Title)
		assert.Equal(t, "long term hold", ledger.posts[0].Content)
		require.NotNil(t, result.Transaction.TradingPostID)
		assert.Equal(t, ledger.posts[0].ID, *result.Transaction.TradingPostID)
	})

	t.Run("no post without a note", func(t *testing.T) {
		svc, ledger, quotes := newTradingFixture(1000)
		quotes.setQuote("AAPL", 100)

		result, err := svc.ExecuteBuy(ctx, 1, &dto.TradeRequest{Ticker: "AAPL", Quantity: 1, Price: 100, MakePublic: true})
		require.NoError(t, err)

		assert.Empty(t, ledger.posts)
		assert.Nil(t, result.Transaction.TradingPostID)
	})
}

func TestExecuteSell(t *testing.T) {
	ctx := context.Background()

	t.Run("credits proceeds and shrinks position", func(t *testing.T) {
		svc, ledger, quotes := newTradingFixture(1000)
		quotes.setQuote("AAPL", 100)

		_, err := svc.ExecuteBuy(ctx, 1, &dto.TradeRequest{Ticker: "AAPL", Quantity: 5, Price: 100})
		require.NoError(t, err)

		_, err = svc.ExecuteSell(ctx, 1, &dto.TradeRequest{Ticker: "AAPL", Quantity: 2, Price: 100})
		require.NoError(t, err)

		h := ledger.holding(1, "AAPL")
		require.NotNil(t, h)
		assert.InDelta(t, 3, h.Quantity, 1e-9)
		assert.InDelta(t, 700, ledger.users[1].Balance, 1e-9)
	})

	t.Run("full round trip restores the balance", func(t *testing.T) {
		svc, ledger, quotes := newTradingFixture(1000)
		quotes.setQuote("AAPL", 50)

		_, err := svc.ExecuteBuy(ctx, 1, &dto.TradeRequest{Ticker: "AAPL", Quantity: 4, Price: 50})
		require.NoError(t, err)

		quotes.setQuote("AAPL", 75)
		_, err = svc.ExecuteSell(ctx, 1, &dto.TradeRequest{Ticker: "AAPL", Quantity: 4, Price: 75})
		require.NoError(t, err)

		// 1000 - 200 + 300
		assert.InDelta(t, 1100, ledger.users[1].Balance, 1e-9)
		assert.Nil(t, ledger.holding(1, "AAPL"), "position should be deleted at zero")
	})

	t.Run("insufficient shares leaves state unchanged", func(t *testing.T) {
		svc, ledger, quotes := newTradingFixture(1000)
		quotes.setQuote("AAPL", 100)

		_, err := svc.ExecuteBuy(ctx, 1, &dto.TradeRequest{Ticker: "AAPL", Quantity: 2, Price: 100})
		require.NoError(t, err)

		_, err = svc.ExecuteSell(ctx, 1, &dto.TradeRequest{Ticker: "AAPL", Quantity: 5, Price: 100})
		require.ErrorIs(t, err, ErrInsufficientShares)

		h := ledger.holding(1, "AAPL")
		require.NotNil(t, h)
		assert.InDelta(t, 2, h.Quantity, 1e-9)
		assert.InDelta(t, 800, ledger.users[1].Balance, 1e-9)
	})

	t.Run("selling with no position fails", func(t *testing.T) {
		svc, _, quotes := newTradingFixture(1000)
		quotes.setQuote("AAPL", 100)

		_, err := svc.ExecuteSell(ctx, 1, &dto.TradeRequest{Ticker: "AAPL", Quantity: 1, Price: 100})
		assert.ErrorIs(t, err, ErrInsufficientShares)
	})

	t.Run("closes a delisted position at the client price", func(t *testing.T) {
		svc, ledger, quotes := newTradingFixture(1000)
		quotes.setQuote("DLST", 40)

		_, err := svc.ExecuteBuy(ctx, 1, &dto.TradeRequest{Ticker: "DLST", Quantity: 5, Price: 40})
		require.NoError(t, err)

		delete(quotes.infos, "DLST")
		_, err = svc.ExecuteSell(ctx, 1, &dto.TradeRequest{Ticker: "DLST", Quantity: 5, Price: 40})
		require.NoError(t, err)

		assert.Nil(t, ledger.holding(1, "DLST"))
		assert.InDelta(t, 1000, ledger.users[1].Balance, 1e-9)
	})
}

func TestCashMovements(t *testing.T) {
	ctx := context.Background()

	t.Run("deposit credits balance and records movement", func(t *testing.T) {
		svc, ledger, _ := newTradingFixture(1000)

		result, err := svc.Deposit(ctx, 1, 250)
		require.NoError(t, err)
		assert.InDelta(t, 1250, result.Balance, 1e-9)
		require.Len(t, ledger.cashTxns, 1)
		assert.Equal(t, entity.CashTransactionTypeDeposit, ledger.cashTxns[0].TransactionType)
	})

	t.Run("withdraw cannot overdraw", func(t *testing.T) {
		svc, ledger, _ := newTradingFixture(100)

		_, err := svc.Withdraw(ctx, 1, 500)
		require.ErrorIs(t, err, ErrInsufficientFunds)
		assert.InDelta(t, 100, ledger.users[1].Balance, 1e-9)
		assert.Empty(t, ledger.cashTxns)
	})

	t.Run("non-positive amounts are rejected", func(t *testing.T) {
		svc, _, _ := newTradingFixture(100)

		_, err := svc.Deposit(ctx, 1, 0)
		assert.ErrorIs(t, err, ErrValidation)
		_, err = svc.Withdraw(ctx, 1, -5)
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestListTransactions(t *testing.T) {
	ctx := context.Background()
	svc, _, quotes := newTradingFixture(100000)
	quotes.setQuote("AAPL", 100)

	for i := 0; i < 3; i++ {
		_, err := svc.ExecuteBuy(ctx, 1, &dto.TradeRequest{Ticker: "AAPL", Quantity: 1, Price: 100})
		require.NoError(t, err)
	}

	txns, err := svc.ListTransactions(ctx, 1, 2)
	require.NoError(t, err)
	assert.Len(t, txns, 2)
}
