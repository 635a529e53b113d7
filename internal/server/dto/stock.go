package dto

// StockInfo is the normalized view of a quoted equity.
type StockInfo struct {
	Ticker        string  `json:"ticker"`
	Name          string  `json:"name"`
	Sector        string  `json:"sector"`
	Industry      string  `json:"industry"`
	CurrentPrice  float64 `json:"current_price"`
	PreviousClose float64 `json:"previous_close"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	MarketCap     float64 `json:"market_cap"`
	PERatio       float64 `json:"pe_ratio"`
	DividendYield float64 `json:"dividend_yield"`
	Volume        int64   `json:"volume"`
	AvgVolume     int64   `json:"avg_volume"`
	YearLow       float64 `json:"year_low"`
	YearHigh      float64 `json:"year_high"`
	EPS           float64 `json:"eps"`
	Exchange      string  `json:"exchange"`
	Description   string  `json:"description"`
}

// HistoricalBar is one OHLCV bar. Series are ordered oldest to newest.
type HistoricalBar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// MarketIndex is one tracked index ETF in the market summary.
type MarketIndex struct {
	Name          string  `json:"name"`
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
}

// StockSearchResponse wraps search hits with the original query.
type StockSearchResponse struct {
	Query   string      `json:"query"`
	Count   int         `json:"count"`
	Results []StockInfo `json:"results"`
}

// StockHistoryResponse wraps a bar series with its request parameters.
type StockHistoryResponse struct {
	Ticker string          `json:"ticker"`
	Period string          `json:"period"`
	Data   []HistoricalBar `json:"data"`
}

// StockPriceResponse is the minimal price-only view.
type StockPriceResponse struct {
	Ticker string  `json:"ticker"`
	Price  float64 `json:"price"`
}
