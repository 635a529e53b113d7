package entity

import "time"

const (
	TransactionTypeBuy  = "buy"
	TransactionTypeSell = "sell"
)

// Transaction is an immutable record of a single buy or sell.
type Transaction struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	Ticker          string    `gorm:"size:10;not null" json:"ticker"`
	TransactionType string    `gorm:"size:10;not null" json:"transaction_type"`
	Quantity        float64   `gorm:"not null" json:"quantity"`
	Price           float64   `gorm:"not null" json:"price"`
	TotalAmount     float64   `gorm:"not null" json:"total_amount"`
	TradingPostID   *uint     `json:"trading_post_id,omitempty"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}
