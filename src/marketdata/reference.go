package marketdata

import (
	"math"
	"sync"
)

// -----------------------------------------------------------------------------
// ReferenceStore keeps the per-symbol baseline price used to compute session
// change figures. The baseline is the close of the last completed daily bar
// when available; before that bar arrives, the first observed live price
// serves as a bootstrap baseline.
// -----------------------------------------------------------------------------

type ReferenceStore struct {
	mu        sync.RWMutex
	daily     map[string]float64
	firstSeen map[string]float64
}

// -----------------------------------------------------------------------------

func NewReferenceStore() *ReferenceStore {
	return &ReferenceStore{
		daily:     make(map[string]float64),
		firstSeen: make(map[string]float64),
	}
}

// -----------------------------------------------------------------------------

// SetDailyReference installs price as the daily reference for symbol. A new
// value within 0.1% of the current one is ignored to keep intraday change
// figures stable across repeated daily refreshes.
func (r *ReferenceStore) SetDailyReference(symbol string, price float64) {
	if price <= 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.daily[symbol]; ok && cur > 0 {
		if math.Abs(price-cur)/cur <= 0.001 {
			return
		}
	}
	r.daily[symbol] = price
}

// -----------------------------------------------------------------------------

// DailyReference returns the stored daily reference for symbol, if any.
func (r *ReferenceStore) DailyReference(symbol string) (float64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ref, ok := r.daily[symbol]
	return ref, ok
}

// -----------------------------------------------------------------------------

// ComputeChange returns the absolute and percentage change of price against
// the symbol's baseline. The daily reference wins over the first-seen price.
// The very first price observed for a symbol is captured as the first-seen
// baseline and reports a zero change.
func (r *ReferenceStore) ComputeChange(symbol string, price float64) (change, changePercent float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	baseline, ok := r.daily[symbol]
	if !ok || baseline <= 0 {
		baseline, ok = r.firstSeen[symbol]
		if !ok || baseline <= 0 {
			if price > 0 {
				r.firstSeen[symbol] = price
			}
			return 0, 0
		}
	}

	change = price - baseline
	changePercent = change / baseline * 100
	return change, changePercent
}

// -----------------------------------------------------------------------------

func (r *ReferenceStore) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.daily = make(map[string]float64)
	r.firstSeen = make(map[string]float64)
}
