package models

// MOrderBookLevel is a single price level of the synthesized book.
type MOrderBookLevel struct {
	Price  float64 `json:"price"`
	Volume float64 `json:"volume"`
}

// MOrderBook is the raw book shape produced by the terminal bridge.
type MOrderBook struct {
	Symbol string            `json:"symbol"`
	Time   string            `json:"time"`
	Bids   []MOrderBookLevel `json:"bids"`
	Asks   []MOrderBookLevel `json:"asks"`
	Spread float64           `json:"spread"`
}

// MOrderBookView is the formatted book with the derived mid price.
type MOrderBookView struct {
	Symbol   string            `json:"symbol"`
	Time     string            `json:"time"`
	Bids     []MOrderBookLevel `json:"bids"`
	Asks     []MOrderBookLevel `json:"asks"`
	Spread   float64           `json:"spread"`
	MidPrice float64           `json:"mid_price"`
}
