package models

// MMACD bundles the three MACD output values.
type MMACD struct {
	MACD      float64 `json:"macd"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

// MIndicators is the technical snapshot computed over a candle sequence.
// Pointer fields carry "not enough data" as null on the wire.
type MIndicators struct {
	Symbol             string   `json:"symbol"`
	Time               string   `json:"time"`
	SMA20              *float64 `json:"sma_20"`
	SMA50              *float64 `json:"sma_50"`
	EMA12              *float64 `json:"ema_12"`
	RSI14              *float64 `json:"rsi_14"`
	MACD               *MMACD   `json:"macd"`
	CurrentPrice       float64  `json:"current_price"`
	PriceChange        float64  `json:"price_change"`
	PriceChangePercent float64  `json:"price_change_percent"`
	AvgVolume          float64  `json:"avg_volume"`
	High24h            float64  `json:"high_24h"`
	Low24h             float64  `json:"low_24h"`
}
