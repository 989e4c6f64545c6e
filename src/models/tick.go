package models

// MTick is a raw tick as delivered by the terminal bridge.
type MTick struct {
	Symbol  string  `json:"symbol"`
	Time    int64   `json:"time"` // unix seconds
	Bid     float64 `json:"bid"`
	Ask     float64 `json:"ask"`
	Last    float64 `json:"last"`
	Volume  int64   `json:"volume"`
	TimeMsc int64   `json:"time_msc"`
	Flags   int     `json:"flags"`
}

// Price returns the effective price of the tick (last if traded, bid otherwise).
func (t MTick) Price() float64 {
	if t.Last > 0 {
		return t.Last
	}
	return t.Bid
}

// MQuote is a formatted tick ready for broadcast, with the daily change
// computed against the reference price.
type MQuote struct {
	Symbol        string  `json:"symbol"`
	Bid           float64 `json:"bid"`
	Ask           float64 `json:"ask"`
	Last          float64 `json:"last"`
	Volume        int64   `json:"volume"`
	Time          string  `json:"time"` // ISO 8601
	Spread        float64 `json:"spread"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
}

// Price returns the effective price of the quote (last if traded, bid otherwise).
func (q MQuote) Price() float64 {
	if q.Last > 0 {
		return q.Last
	}
	return q.Bid
}
