package analysis

import (
	"sort"
	"time"

	"mt5-gateway/src/analysis/core"
	"mt5-gateway/src/models"
)

// -----------------------------------------------------------------------------
// Analyzer computes technical snapshots and the market-wide summary from
// candle history. All methods are pure; callers own concurrency.
// -----------------------------------------------------------------------------

type Analyzer struct{}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// -----------------------------------------------------------------------------

// Snapshot computes the indicator set for symbol over candles (oldest first).
// Returns nil when no candles are available. Indicators that lack history
// come back as nil fields and serialize as null.
func (a *Analyzer) Snapshot(symbol string, candles []models.MRawCandle) *models.MIndicators {
	if len(candles) == 0 {
		return nil
	}

	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}

	snapshot := &models.MIndicators{
		Symbol:       symbol,
		Time:         time.Now().UTC().Format(time.RFC3339),
		CurrentPrice: closes[len(closes)-1],
	}

	if v, ok := core.SMA(closes, 20); ok {
		snapshot.SMA20 = &v
	}
	if v, ok := core.SMA(closes, 50); ok {
		snapshot.SMA50 = &v
	}
	if v, ok := core.EMA(closes, 12); ok {
		snapshot.EMA12 = &v
	}
	if v, ok := core.RSI(closes, 14); ok {
		snapshot.RSI14 = &v
	}
	if macd, sig, hist, ok := core.MACD(closes, 12, 26, 9); ok {
		snapshot.MACD = &models.MMACD{MACD: macd, Signal: sig, Histogram: hist}
	}

	if len(closes) >= 2 {
		prev := closes[len(closes)-2]
		snapshot.PriceChange = snapshot.CurrentPrice - prev
		if prev != 0 {
			snapshot.PriceChangePercent = snapshot.PriceChange / prev * 100
		}
	}

	// 24h range over the trailing 288 five-minute bars; with less history
	// only the latest bar is representative.
	if len(candles) >= 288 {
		window := candles[len(candles)-288:]
		snapshot.High24h = window[0].High
		snapshot.Low24h = window[0].Low
		for _, c := range window[1:] {
			if c.High > snapshot.High24h {
				snapshot.High24h = c.High
			}
			if c.Low < snapshot.Low24h {
				snapshot.Low24h = c.Low
			}
		}
	} else {
		last := candles[len(candles)-1]
		snapshot.High24h = last.High
		snapshot.Low24h = last.Low
	}

	volWindow := candles
	if len(volWindow) > 20 {
		volWindow = volWindow[len(volWindow)-20:]
	}
	totalVol := 0.0
	for _, c := range volWindow {
		totalVol += float64(c.TickVolume)
	}
	snapshot.AvgVolume = totalVol / float64(len(volWindow))

	return snapshot
}

// -----------------------------------------------------------------------------

// MarketSummary aggregates per-symbol snapshots into the market-wide view.
func (a *Analyzer) MarketSummary(snapshots []models.MIndicators) *models.MMarketSummary {
	summary := &models.MMarketSummary{
		Time:         time.Now().UTC().Format(time.RFC3339),
		TotalSymbols: len(snapshots),
	}

	rsiSum := 0.0
	rsiCount := 0

	for _, s := range snapshots {
		summary.TotalVolume += s.AvgVolume

		switch {
		case s.PriceChangePercent > 0:
			summary.Advancing++
		case s.PriceChangePercent < 0:
			summary.Declining++
		default:
			summary.Unchanged++
		}

		if s.RSI14 != nil {
			rsiSum += *s.RSI14
			rsiCount++
		}
	}

	if summary.Declining > 0 {
		summary.AdvanceDeclineRatio = float64(summary.Advancing) / float64(summary.Declining)
	} else {
		summary.AdvanceDeclineRatio = float64(summary.Advancing)
	}

	// Mean RSI drives sentiment; neutral 50 when no instrument has one
	if rsiCount > 0 {
		summary.AvgRSI = rsiSum / float64(rsiCount)
	} else {
		summary.AvgRSI = 50
	}

	// Only actual movers qualify: gainers strictly positive, losers strictly
	// negative, each list capped at five.
	gainers := make([]models.MIndicators, 0, len(snapshots))
	losers := make([]models.MIndicators, 0, len(snapshots))
	for _, s := range snapshots {
		switch {
		case s.PriceChangePercent > 0:
			gainers = append(gainers, s)
		case s.PriceChangePercent < 0:
			losers = append(losers, s)
		}
	}

	sort.Slice(gainers, func(i, j int) bool {
		return gainers[i].PriceChangePercent > gainers[j].PriceChangePercent
	})
	sort.Slice(losers, func(i, j int) bool {
		return losers[i].PriceChangePercent < losers[j].PriceChangePercent
	})

	if len(gainers) > 5 {
		gainers = gainers[:5]
	}
	if len(losers) > 5 {
		losers = losers[:5]
	}
	summary.TopGainers = gainers
	summary.TopLosers = losers

	switch {
	case summary.AvgRSI > 50:
		summary.MarketSentiment = "bullish"
	case summary.AvgRSI < 50:
		summary.MarketSentiment = "bearish"
	default:
		summary.MarketSentiment = "neutral"
	}

	return summary
}
