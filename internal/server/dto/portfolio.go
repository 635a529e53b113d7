package dto

// HoldingSummary is the valued view of one position.
type HoldingSummary struct {
	Ticker           string  `json:"ticker"`
	CompanyName      string  `json:"company_name"`
	Quantity         float64 `json:"quantity"`
	AveragePrice     float64 `json:"average_price"`
	CurrentPrice     float64 `json:"current_price"`
	MarketValue      float64 `json:"market_value"`
	CostBasis        float64 `json:"cost_basis"`
	Profit           float64 `json:"profit"`
	ProfitPercent    float64 `json:"profit_percent"`
	DayChange        float64 `json:"day_change"`
	DayChangePercent float64 `json:"day_change_percent"`
}

// PortfolioSummary aggregates cash and positions. A failed quote for one
// holding degrades that row to its last known price; it never fails the
// whole summary.
type PortfolioSummary struct {
	CashBalance            float64          `json:"cash_balance"`
	PortfolioValue         float64          `json:"portfolio_value"`
	TotalAccountValue      float64          `json:"total_account_value"`
	Holdings               []HoldingSummary `json:"holdings"`
	TotalProfitLoss        float64          `json:"total_profit_loss"`
	TotalProfitLossPercent float64          `json:"total_profit_loss_percent"`
	DayChange              float64          `json:"day_change"`
}
