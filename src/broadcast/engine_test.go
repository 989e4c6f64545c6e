package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mt5-gateway/src/analysis"
	"mt5-gateway/src/logger"
	"mt5-gateway/src/marketdata"
	"mt5-gateway/src/models"
	"mt5-gateway/src/subscriptions"
	"mt5-gateway/src/utils"
)

// -----------------------------------------------------------------------------
// Fakes
// -----------------------------------------------------------------------------

type fakeTerminal struct {
	mu         sync.Mutex
	connected  bool
	symbols    map[string]bool
	tick       models.MTick
	candles    []models.MRawCandle
	polled     map[string]bool
	ticksCh    chan models.MTick
	account    models.MAccountInfo
	candlesErr error
}

func newFakeTerminal() *fakeTerminal {
	return &fakeTerminal{
		connected: true,
		symbols:   map[string]bool{"EURUSD": true, "XAUUSD": true},
		polled:    make(map[string]bool),
		ticksCh:   make(chan models.MTick, 16),
		account:   models.MAccountInfo{Login: 12345, Balance: 1000, Currency: "USD"},
	}
}

func (f *fakeTerminal) Connect() error { f.connected = true; return nil }
func (f *fakeTerminal) Disconnect()    { f.connected = false }
func (f *fakeTerminal) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeTerminal) GetAccountInfo() (*models.MAccountInfo, error) {
	a := f.account
	return &a, nil
}

func (f *fakeTerminal) GetSymbolInfo(symbol string) (*models.MSymbolInfo, error) {
	if !f.symbols[symbol] {
		return nil, fmt.Errorf("unknown symbol %s", symbol)
	}
	return &models.MSymbolInfo{Symbol: symbol}, nil
}

func (f *fakeTerminal) GetCurrentTick(symbol string) (*models.MTick, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.tick
	t.Symbol = symbol
	return &t, nil
}

func (f *fakeTerminal) GetCandles(symbol, timeframe string, count int) ([]models.MRawCandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.candlesErr != nil {
		return nil, f.candlesErr
	}
	return f.candles, nil
}

func (f *fakeTerminal) GetOrderBook(symbol string, depth int) (*models.MOrderBook, error) {
	return &models.MOrderBook{
		Symbol: symbol,
		Bids:   []models.MOrderBookLevel{{Price: 1.1000, Volume: 100}},
		Asks:   []models.MOrderBookLevel{{Price: 1.1002, Volume: 100}},
	}, nil
}

func (f *fakeTerminal) ListAllSymbols() ([]string, error) {
	return []string{"EURUSD", "XAUUSD"}, nil
}

func (f *fakeTerminal) SubscribeTicks(symbol string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polled[symbol] = true
}

func (f *fakeTerminal) UnsubscribeTicks(symbol string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.polled, symbol)
}

func (f *fakeTerminal) isPolled(symbol string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.polled[symbol]
}

func (f *fakeTerminal) Ticks() <-chan models.MTick { return f.ticksCh }

func (f *fakeTerminal) StartPolling(ctx context.Context, wg *sync.WaitGroup) {}

// -----------------------------------------------------------------------------

type emitted struct {
	clientID string // empty for broadcasts
	event    string
	data     interface{}
}

type fakeEmitter struct {
	mu      sync.Mutex
	events  []emitted
	clients int
}

func (f *fakeEmitter) EmitTo(clientID string, event string, data interface{}) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, emitted{clientID: clientID, event: event, data: data})
	return true
}

func (f *fakeEmitter) Broadcast(event string, data interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, emitted{event: event, data: data})
}

func (f *fakeEmitter) ClientCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clients
}

func (f *fakeEmitter) byEvent(event string) []emitted {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []emitted
	for _, e := range f.events {
		if e.event == event {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeEmitter) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = nil
}

// -----------------------------------------------------------------------------
// Setup
// -----------------------------------------------------------------------------

func testConfig() *models.MConfig {
	return &models.MConfig{
		Name:     "test-gateway",
		LogLevel: "CRITICAL",
		Broadcast: models.MBroadcastConfig{
			IntervalSeconds:       1,
			HealthIntervalSeconds: 1,
		},
		Market: models.MMarketConfig{
			DefaultTimeframe:    "M5",
			SupportedTimeframes: []string{"M1", "M5", "D1"},
			MaxCandles:          1000,
			CalendarMIC:         "xnys",
		},
	}
}

func newTestEngine(t *testing.T) (*Engine, *fakeTerminal, *fakeEmitter) {
	t.Helper()

	cfg := testConfig()
	log := logger.NewLogger(cfg.LogLevel, cfg.Name)
	term := newFakeTerminal()
	emitter := &fakeEmitter{clients: 1}

	engine := NewEngine(
		cfg,
		term,
		subscriptions.NewRegistry(),
		marketdata.NewProcessor(marketdata.NewReferenceStore(), marketdata.NewTTLCache(time.Minute)),
		analysis.NewAnalyzer(),
		utils.NewTradingCalendar(cfg.Market.CalendarMIC, log),
		log,
	)
	engine.SetEmitter(emitter)
	return engine, term, emitter
}

func raw(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

// -----------------------------------------------------------------------------
// Tests
// -----------------------------------------------------------------------------

func TestSubscribeFlow(t *testing.T) {
	engine, term, emitter := newTestEngine(t)
	term.tick = models.MTick{Bid: 1.1050, Ask: 1.1052}

	engine.HandleCommand("c1", "subscribe", raw(t, models.MSubscribeRequest{Symbol: "EURUSD"}))

	require.True(t, term.isPolled("EURUSD"))
	require.Equal(t, 1, engine.WatchedSymbolCount())

	subs := emitter.byEvent("subscribed")
	require.Len(t, subs, 1)
	require.Equal(t, "c1", subs[0].clientID)
	payload := subs[0].data.(models.MSubscribedEvent)
	require.Equal(t, "EURUSD", payload.Symbol)
	require.Equal(t, "M5", payload.Timeframe)

	// Initial data push includes the current tick
	ticks := emitter.byEvent("tick")
	require.Len(t, ticks, 1)

	// Second subscriber does not restart the feed but still gets the ack
	engine.HandleCommand("c2", "subscribe", raw(t, models.MSubscribeRequest{Symbol: "EURUSD"}))
	require.Equal(t, 1, engine.WatchedSymbolCount())
	require.Len(t, emitter.byEvent("subscribed"), 2)
}

func TestSubscribeUnknownSymbol(t *testing.T) {
	engine, term, emitter := newTestEngine(t)

	engine.HandleCommand("c1", "subscribe", raw(t, models.MSubscribeRequest{Symbol: "NOPE"}))

	errs := emitter.byEvent("error")
	require.Len(t, errs, 1)
	require.Equal(t, "Symbol NOPE not found", errs[0].data.(models.MErrorEvent).Message)
	require.False(t, term.isPolled("NOPE"))
}

func TestSubscribeMissingSymbol(t *testing.T) {
	engine, _, emitter := newTestEngine(t)

	engine.HandleCommand("c1", "subscribe", raw(t, models.MSubscribeRequest{}))

	errs := emitter.byEvent("error")
	require.Len(t, errs, 1)
	require.Equal(t, "Symbol is required", errs[0].data.(models.MErrorEvent).Message)
}

func TestUnsubscribeFlow(t *testing.T) {
	engine, term, emitter := newTestEngine(t)

	engine.HandleCommand("c1", "subscribe", raw(t, models.MSubscribeRequest{Symbol: "EURUSD"}))
	engine.HandleCommand("c1", "unsubscribe", raw(t, models.MUnsubscribeRequest{Symbol: "EURUSD"}))

	require.False(t, term.isPolled("EURUSD"))
	require.Len(t, emitter.byEvent("unsubscribed"), 1)

	// Unsubscribing again is an error
	engine.HandleCommand("c1", "unsubscribe", raw(t, models.MUnsubscribeRequest{Symbol: "EURUSD"}))
	errs := emitter.byEvent("error")
	require.Len(t, errs, 1)
	require.Equal(t, "Not subscribed to EURUSD", errs[0].data.(models.MErrorEvent).Message)
}

func TestClientDisconnectReleasesFeeds(t *testing.T) {
	engine, term, _ := newTestEngine(t)

	engine.HandleCommand("c1", "subscribe", raw(t, models.MSubscribeRequest{Symbol: "EURUSD"}))
	engine.HandleCommand("c2", "subscribe", raw(t, models.MSubscribeRequest{Symbol: "EURUSD"}))
	engine.HandleCommand("c1", "subscribe", raw(t, models.MSubscribeRequest{Symbol: "XAUUSD"}))

	engine.OnClientDisconnected("c1")

	// EURUSD still has c2; XAUUSD had only c1
	require.True(t, term.isPolled("EURUSD"))
	require.False(t, term.isPolled("XAUUSD"))
}

func TestHandleTickFanOut(t *testing.T) {
	engine, term, emitter := newTestEngine(t)
	term.tick = models.MTick{Bid: 1.1000, Ask: 1.1002}

	engine.HandleCommand("c1", "subscribe", raw(t, models.MSubscribeRequest{Symbol: "EURUSD"}))
	emitter.reset()

	engine.Processor.Refs.Clear()
	engine.Processor.Refs.SetDailyReference("EURUSD", 1.1000)

	engine.handleTick(&models.MTick{Symbol: "EURUSD", Bid: 1.1050, Ask: 1.1052})

	ticks := emitter.byEvent("tick")
	require.Len(t, ticks, 1)
	require.Equal(t, "c1", ticks[0].clientID)

	event := ticks[0].data.(models.MTickEvent)
	require.InDelta(t, 0.0050, event.Tick.Change, 1e-9)
	require.InDelta(t, 0.454545, event.Tick.ChangePercent, 1e-4)

	// Formatted tick lands in the cache
	cached, ok := engine.Processor.Cache.Get("tick:EURUSD")
	require.True(t, ok)
	require.InDelta(t, 1.1050, cached.(*models.MQuote).Bid, 1e-9)
}

func TestHandleTickNoSubscribers(t *testing.T) {
	engine, _, emitter := newTestEngine(t)

	engine.handleTick(&models.MTick{Symbol: "EURUSD", Bid: 1.1})
	require.Empty(t, emitter.byEvent("tick"))
}

func TestGetCandles(t *testing.T) {
	engine, term, emitter := newTestEngine(t)
	term.candles = []models.MRawCandle{
		{Time: 1700000000, Open: 1, High: 2, Low: 0.5, Close: 1.5, TickVolume: 10},
	}

	engine.HandleCommand("c1", "get_candles", raw(t, models.MCandlesRequest{Symbol: "EURUSD", Count: 50}))

	events := emitter.byEvent("candles")
	require.Len(t, events, 1)
	payload := events[0].data.(models.MCandlesEvent)
	require.Equal(t, "EURUSD", payload.Symbol)
	require.Equal(t, "M5", payload.Timeframe)
	require.Equal(t, 1, payload.Count)

	// Second call is served from cache even if the terminal fails
	term.mu.Lock()
	term.candlesErr = fmt.Errorf("bridge down")
	term.mu.Unlock()

	engine.HandleCommand("c1", "get_candles", raw(t, models.MCandlesRequest{Symbol: "EURUSD", Count: 50}))
	require.Len(t, emitter.byEvent("candles"), 2)
	require.Empty(t, emitter.byEvent("error"))
}

func TestGetOrderBook(t *testing.T) {
	engine, _, emitter := newTestEngine(t)

	engine.HandleCommand("c1", "get_order_book", raw(t, models.MOrderBookRequest{Symbol: "EURUSD"}))

	events := emitter.byEvent("order_book")
	require.Len(t, events, 1)
	payload := events[0].data.(models.MOrderBookEvent)
	require.InDelta(t, 1.1001, payload.OrderBook.MidPrice, 1e-9)
}

func TestGetSymbolsAndAccount(t *testing.T) {
	engine, _, emitter := newTestEngine(t)

	engine.HandleCommand("c1", "get_symbols", nil)
	symbols := emitter.byEvent("symbols")
	require.Len(t, symbols, 1)
	require.Equal(t, 2, symbols[0].data.(models.MSymbolsEvent).Count)

	engine.HandleCommand("c1", "get_account_info", nil)
	accounts := emitter.byEvent("account_info")
	require.Len(t, accounts, 1)
	require.EqualValues(t, 12345, accounts[0].data.(models.MAccountEvent).Account.Login)
}

func TestPingAndUnknownCommand(t *testing.T) {
	engine, _, emitter := newTestEngine(t)

	engine.HandleCommand("c1", "ping", nil)
	require.Len(t, emitter.byEvent("pong"), 1)

	engine.HandleCommand("c1", "warp_drive", nil)
	errs := emitter.byEvent("error")
	require.Len(t, errs, 1)
	require.Equal(t, "Unknown command: warp_drive", errs[0].data.(models.MErrorEvent).Message)
}

func TestConnectedGreeting(t *testing.T) {
	engine, _, emitter := newTestEngine(t)

	engine.OnClientConnected("c1")

	events := emitter.byEvent("connected")
	require.Len(t, events, 1)
	require.Equal(t, "c1", events[0].data.(models.MConnectedEvent).Sid)
}

func TestRolloverRunsWithoutClients(t *testing.T) {
	engine, term, emitter := newTestEngine(t)

	emitter.mu.Lock()
	emitter.clients = 0
	emitter.mu.Unlock()

	term.mu.Lock()
	term.candles = []models.MRawCandle{{Close: 1.0800}, {Close: 1.1000}, {Close: 1.1100}}
	term.mu.Unlock()

	engine.Registry.Subscribe("c1", "EURUSD")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	engine.Start(ctx)

	// One broadcast interval passes with nobody connected
	time.Sleep(1500 * time.Millisecond)
	cancel()
	engine.Stop()

	// The daily reference still advanced
	ref, ok := engine.Processor.Refs.DailyReference("EURUSD")
	require.True(t, ok)
	require.InDelta(t, 1.1000, ref, 1e-9)

	// But nothing was broadcast to the empty room
	require.Empty(t, emitter.byEvent("market_summary"))
	require.Empty(t, emitter.byEvent("account_update"))
}

func TestQuoteRefreshesDailyReference(t *testing.T) {
	engine, term, _ := newTestEngine(t)
	term.tick = models.MTick{Bid: 1.1050, Ask: 1.1052}
	term.candles = []models.MRawCandle{
		{Close: 1.0900}, {Close: 1.1000}, {Close: 1.1040},
	}

	quote, err := engine.Quote("EURUSD")
	require.NoError(t, err)

	// Reference is the close of the last completed daily bar
	ref, ok := engine.Processor.Refs.DailyReference("EURUSD")
	require.True(t, ok)
	require.InDelta(t, 1.1000, ref, 1e-9)
	require.InDelta(t, 0.0050, quote.Change, 1e-9)

	_, err = engine.Quote("NOPE")
	require.Error(t, err)
}
