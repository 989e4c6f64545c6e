package marketdata

import (
	"time"

	"mt5-gateway/src/models"
)

// -----------------------------------------------------------------------------
// Processor turns raw terminal payloads into the wire shapes clients receive.
// -----------------------------------------------------------------------------

type Processor struct {
	Refs  *ReferenceStore
	Cache *TTLCache
}

// -----------------------------------------------------------------------------

func NewProcessor(refs *ReferenceStore, cache *TTLCache) *Processor {
	return &Processor{
		Refs:  refs,
		Cache: cache,
	}
}

// -----------------------------------------------------------------------------

// FormatTick builds the client-facing quote for a raw tick, attaching spread
// and session change figures.
func (p *Processor) FormatTick(tick *models.MTick) *models.MQuote {
	price := tick.Price()
	change, changePercent := p.Refs.ComputeChange(tick.Symbol, price)

	return &models.MQuote{
		Symbol:        tick.Symbol,
		Bid:           tick.Bid,
		Ask:           tick.Ask,
		Last:          tick.Last,
		Volume:        tick.Volume,
		Time:          time.Unix(tick.Time, 0).UTC().Format(time.RFC3339),
		Spread:        tick.Ask - tick.Bid,
		Change:        change,
		ChangePercent: changePercent,
	}
}

// -----------------------------------------------------------------------------

// FormatCandles converts raw bars to wire candles, oldest first.
func (p *Processor) FormatCandles(raw []models.MRawCandle) []models.MCandle {
	candles := make([]models.MCandle, 0, len(raw))
	for _, bar := range raw {
		candles = append(candles, models.MCandle{
			Time:   time.Unix(bar.Time, 0).UTC().Format(time.RFC3339),
			Open:   bar.Open,
			High:   bar.High,
			Low:    bar.Low,
			Close:  bar.Close,
			Volume: bar.TickVolume,
			Spread: bar.Spread,
		})
	}
	return candles
}

// -----------------------------------------------------------------------------

// FormatOrderBook attaches the mid price derived from best bid and best ask.
func (p *Processor) FormatOrderBook(book *models.MOrderBook) *models.MOrderBookView {
	view := &models.MOrderBookView{
		Symbol: book.Symbol,
		Time:   book.Time,
		Bids:   book.Bids,
		Asks:   book.Asks,
		Spread: book.Spread,
	}

	var bestBid, bestAsk float64
	for _, level := range book.Bids {
		if level.Price > bestBid {
			bestBid = level.Price
		}
	}
	for _, level := range book.Asks {
		if bestAsk == 0 || level.Price < bestAsk {
			bestAsk = level.Price
		}
	}
	if bestBid > 0 && bestAsk > 0 {
		view.MidPrice = (bestBid + bestAsk) / 2
	}

	return view
}
