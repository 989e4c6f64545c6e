package models

// MRawCandle is an OHLC bar as returned by the terminal bridge.
type MRawCandle struct {
	Time       int64   `json:"time"` // unix seconds, bar open time
	Open       float64 `json:"open"`
	High       float64 `json:"high"`
	Low        float64 `json:"low"`
	Close      float64 `json:"close"`
	TickVolume int64   `json:"tick_volume"`
	Spread     int     `json:"spread"`
	RealVolume int64   `json:"real_volume"`
}

// MCandle is a formatted OHLC bar ready for broadcast.
type MCandle struct {
	Time   string  `json:"time"` // ISO 8601
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
	Spread int     `json:"spread"`
}
