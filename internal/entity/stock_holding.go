package entity

import "time"

// StockHolding is a user's position in a single ticker. A row exists only
// while quantity is above zero.
type StockHolding struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;uniqueIndex:idx_holdings_user_ticker" json:"user_id"`
	Ticker          string    `gorm:"size:10;not null;uniqueIndex:idx_holdings_user_ticker" json:"ticker"`
	CompanyName     string    `gorm:"size:100;not null" json:"company_name"`
	Quantity        float64   `gorm:"not null;default:0" json:"quantity"`
	AverageBuyPrice float64   `gorm:"not null" json:"average_buy_price"`
	CurrentPrice    float64   `gorm:"not null" json:"current_price"`
	LastUpdated     time.Time `gorm:"autoUpdateTime" json:"last_updated"`
}

func (StockHolding) TableName() string {
	return "stock_holdings"
}

// MarketValue returns quantity times the last observed price.
func (h *StockHolding) MarketValue() float64 {
	return h.Quantity * h.CurrentPrice
}

// CostBasis returns quantity times the average buy price.
func (h *StockHolding) CostBasis() float64 {
	return h.Quantity * h.AverageBuyPrice
}
