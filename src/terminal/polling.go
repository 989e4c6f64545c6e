package terminal

import (
	"context"
	"sync"
	"time"

	"mt5-gateway/src/models"
)

// -----------------------------------------------------------------------------
// Tick polling. The bridge has no push channel, so watched symbols are polled
// on a short interval and only changed ticks are forwarded downstream.
// -----------------------------------------------------------------------------

func (t *BridgeTerminal) Ticks() <-chan models.MTick {
	return t.ticks
}

// -----------------------------------------------------------------------------

func (t *BridgeTerminal) SubscribeTicks(symbol string) {
	t.subMu.Lock()
	defer t.subMu.Unlock()

	if _, ok := t.subscribed[symbol]; ok {
		return
	}
	t.subscribed[symbol] = struct{}{}
	t.Logger.Debug("Polling started for %s", symbol)
}

// -----------------------------------------------------------------------------

func (t *BridgeTerminal) UnsubscribeTicks(symbol string) {
	t.subMu.Lock()
	defer t.subMu.Unlock()

	if _, ok := t.subscribed[symbol]; !ok {
		return
	}
	delete(t.subscribed, symbol)
	delete(t.lastTicks, symbol)
	t.Logger.Debug("Polling stopped for %s", symbol)
}

// -----------------------------------------------------------------------------

// StartPolling launches the tick poll loop. It stops when ctx is cancelled.
func (t *BridgeTerminal) StartPolling(ctx context.Context, wg *sync.WaitGroup) {
	interval := time.Duration(t.Config.Terminal.PollIntervalMs) * time.Millisecond

	wg.Add(1)
	go func() {
		defer wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		t.Logger.Info("Tick polling started (interval %v)", interval)

		for {
			select {
			case <-ctx.Done():
				t.Logger.Info("Tick polling stopped")
				return
			case <-ticker.C:
				t.pollOnce()
			}
		}
	}()
}

// -----------------------------------------------------------------------------

func (t *BridgeTerminal) pollOnce() {
	if !t.IsConnected() {
		return
	}

	t.subMu.RLock()
	symbols := make([]string, 0, len(t.subscribed))
	for symbol := range t.subscribed {
		symbols = append(symbols, symbol)
	}
	t.subMu.RUnlock()

	for _, symbol := range symbols {
		tick, err := t.GetCurrentTick(symbol)
		if err != nil {
			t.Logger.Warning("Poll failed for %s: %v", symbol, err)
			continue
		}

		t.subMu.Lock()
		last, seen := t.lastTicks[symbol]
		if seen && last.TimeMsc == tick.TimeMsc && last.Bid == tick.Bid && last.Ask == tick.Ask {
			t.subMu.Unlock()
			continue
		}
		t.lastTicks[symbol] = *tick
		t.subMu.Unlock()

		select {
		case t.ticks <- *tick:
		default:
			t.Logger.Warning("Tick channel full, dropping tick for %s", symbol)
		}
	}
}
