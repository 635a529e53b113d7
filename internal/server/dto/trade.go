package dto

import (
	"time"

	"papertrade/internal/entity"
)

// TradeRequest is one buy or sell order.
type TradeRequest struct {
	Ticker     string  `json:"ticker"`
	Action     string  `json:"action"`
	Quantity   float64 `json:"quantity"`
	Price      float64 `json:"price"`
	MakePublic bool    `json:"make_public"`
	Note       string  `json:"note"`
}

// TradeResult is the outcome of a settled order.
type TradeResult struct {
	Message     string              `json:"message"`
	Transaction TransactionResponse `json:"transaction"`
}

// TransactionResponse is the JSON view of a ledger transaction.
type TransactionResponse struct {
	ID              uint      `json:"id"`
	Ticker          string    `json:"ticker"`
	TransactionType string    `json:"transaction_type"`
	Quantity        float64   `json:"quantity"`
	Price           float64   `json:"price"`
	TotalAmount     float64   `json:"total_amount"`
	TradingPostID   *uint     `json:"trading_post_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewTransactionResponse maps an entity.Transaction.
func NewTransactionResponse(t *entity.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:              t.ID,
		Ticker:          t.Ticker,
		TransactionType: t.TransactionType,
		Quantity:        t.Quantity,
		Price:           t.Price,
		TotalAmount:     t.TotalAmount,
		TradingPostID:   t.TradingPostID,
		CreatedAt:       t.CreatedAt,
	}
}

// CashRequest is a deposit or withdrawal amount.
type CashRequest struct {
	Amount float64 `json:"amount"`
}

// CashTransactionResponse is the JSON view of a cash movement.
type CashTransactionResponse struct {
	ID              uint      `json:"id"`
	TransactionType string    `json:"transaction_type"`
	Amount          float64   `json:"amount"`
	CreatedAt       time.Time `json:"created_at"`
}

// CashResult reports the balance after a deposit or withdrawal.
type CashResult struct {
	Message string  `json:"message"`
	Balance float64 `json:"balance"`
}
