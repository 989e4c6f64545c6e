package models

// MAccountInfo mirrors the terminal's account snapshot.
type MAccountInfo struct {
	Login       int64   `json:"login"`
	Balance     float64 `json:"balance"`
	Equity      float64 `json:"equity"`
	Margin      float64 `json:"margin"`
	FreeMargin  float64 `json:"free_margin"`
	MarginLevel float64 `json:"margin_level"`
	Currency    string  `json:"currency"`
	Leverage    int     `json:"leverage"`
	Name        string  `json:"name"`
	Server      string  `json:"server"`
	Profit      float64 `json:"profit"`
}

// MSymbolInfo mirrors the terminal's instrument metadata.
type MSymbolInfo struct {
	Symbol            string  `json:"symbol"`
	Bid               float64 `json:"bid"`
	Ask               float64 `json:"ask"`
	Last              float64 `json:"last"`
	Volume            int64   `json:"volume"`
	Spread            int     `json:"spread"`
	Digits            int     `json:"digits"`
	Point             float64 `json:"point"`
	TradeContractSize float64 `json:"trade_contract_size"`
	TradeTickSize     float64 `json:"trade_tick_size"`
	TradeTickValue    float64 `json:"trade_tick_value"`
}
