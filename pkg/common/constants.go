package common

const (
	RedisKeyLastPrice = "quotes:last_price:%s"

	CacheKeyStockInfo     = "stock_info:%s"
	CacheKeyStockHistory  = "stock_history:%s:%s"
	CacheKeyMarketSummary = "market_summary"
	CacheKeyTrending      = "trending_stocks"
	CacheKeyPopular       = "popular_stocks"
)
