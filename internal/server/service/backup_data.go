package service

import "papertrade/internal/server/dto"

// Static fallback entries served when the provider cannot deliver enough
// live quotes for the curated dashboard lists. Prices are placeholders and
// are only shown when live data is unavailable.
var backupTrendingStocks = []dto.StockInfo{
	{Ticker: "AAPL", Name: "Apple Inc.", Sector: "Technology", Industry: "Consumer Electronics", CurrentPrice: 175.50, PreviousClose: 173.20, Change: 2.30, ChangePercent: 1.33, Exchange: "NMS"},
	{Ticker: "MSFT", Name: "Microsoft Corporation", Sector: "Technology", Industry: "Software - Infrastructure", CurrentPrice: 420.30, PreviousClose: 417.10, Change: 3.20, ChangePercent: 0.77, Exchange: "NMS"},
	{Ticker: "GOOGL", Name: "Alphabet Inc.", Sector: "Communication Services", Industry: "Internet Content & Information", CurrentPrice: 155.80, PreviousClose: 154.90, Change: 0.90, ChangePercent: 0.58, Exchange: "NMS"},
	{Ticker: "TSLA", Name: "Tesla, Inc.", Sector: "Consumer Cyclical", Industry: "Auto Manufacturers", CurrentPrice: 245.60, PreviousClose: 241.00, Change: 4.60, ChangePercent: 1.91, Exchange: "NMS"},
	{Ticker: "NVDA", Name: "NVIDIA Corporation", Sector: "Technology", Industry: "Semiconductors", CurrentPrice: 875.20, PreviousClose: 862.50, Change: 12.70, ChangePercent: 1.47, Exchange: "NMS"},
}

var backupPopularStocks = []dto.StockInfo{
	{Ticker: "AMZN", Name: "Amazon.com, Inc.", Sector: "Consumer Cyclical", Industry: "Internet Retail", CurrentPrice: 185.40, PreviousClose: 184.20, Change: 1.20, ChangePercent: 0.65, Exchange: "NMS"},
	{Ticker: "META", Name: "Meta Platforms, Inc.", Sector: "Communication Services", Industry: "Internet Content & Information", CurrentPrice: 505.75, PreviousClose: 501.30, Change: 4.45, ChangePercent: 0.89, Exchange: "NMS"},
	{Ticker: "JPM", Name: "JPMorgan Chase & Co.", Sector: "Financial Services", Industry: "Banks - Diversified", CurrentPrice: 198.50, PreviousClose: 197.80, Change: 0.70, ChangePercent: 0.35, Exchange: "NYQ"},
	{Ticker: "V", Name: "Visa Inc.", Sector: "Financial Services", Industry: "Credit Services", CurrentPrice: 275.30, PreviousClose: 274.10, Change: 1.20, ChangePercent: 0.44, Exchange: "NYQ"},
	{Ticker: "JNJ", Name: "Johnson & Johnson", Sector: "Healthcare", Industry: "Drug Manufacturers - General", CurrentPrice: 152.90, PreviousClose: 153.40, Change: -0.50, ChangePercent: -0.33, Exchange: "NYQ"},
}
