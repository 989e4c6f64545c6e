package models

// MMarketSummary aggregates the current snapshots of all watched symbols.
type MMarketSummary struct {
	Time                string        `json:"time"`
	TotalSymbols        int           `json:"total_symbols"`
	TotalVolume         float64       `json:"total_volume"`
	Advancing           int           `json:"advancing"`
	Declining           int           `json:"declining"`
	Unchanged           int           `json:"unchanged"`
	AdvanceDeclineRatio float64       `json:"advance_decline_ratio"`
	AvgRSI              float64       `json:"avg_rsi"`
	TopGainers          []MIndicators `json:"top_gainers"`
	TopLosers           []MIndicators `json:"top_losers"`
	MarketSentiment     string        `json:"market_sentiment"`
}
