package models

import "encoding/json"

// -----------------------------------------------------------------------------
// Wire frames
// -----------------------------------------------------------------------------

// MClientCommand is an inbound websocket frame.
type MClientCommand struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// MEvent is an outbound websocket frame.
type MEvent struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// -----------------------------------------------------------------------------
// Command payloads
// -----------------------------------------------------------------------------

type MSubscribeRequest struct {
	Symbol    string `json:"symbol"`
	Timeframe string `json:"timeframe"`
}

type MUnsubscribeRequest struct {
	Symbol string `json:"symbol"`
}

type MCandlesRequest struct {
	Symbol    string `json:"symbol"`
	Timeframe string `json:"timeframe"`
	Count     int    `json:"count"`
}

type MOrderBookRequest struct {
	Symbol string `json:"symbol"`
	Depth  int    `json:"depth"`
}

// -----------------------------------------------------------------------------
// Event payloads (Matches the wire protocol exactly)
// -----------------------------------------------------------------------------

type MConnectedEvent struct {
	Sid       string `json:"sid"`
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
}

type MSubscribedEvent struct {
	Symbol    string `json:"symbol"`
	Timeframe string `json:"timeframe"`
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
}

type MUnsubscribedEvent struct {
	Symbol    string `json:"symbol"`
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
}

type MErrorEvent struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type MTickEvent struct {
	Symbol    string `json:"symbol"`
	Tick      MQuote `json:"tick"`
	Timestamp string `json:"timestamp"`
}

type MCandlesEvent struct {
	Symbol    string    `json:"symbol"`
	Timeframe string    `json:"timeframe"`
	Candles   []MCandle `json:"candles"`
	Count     int       `json:"count"`
	Timestamp string    `json:"timestamp"`
}

type MOrderBookEvent struct {
	Symbol    string         `json:"symbol"`
	OrderBook MOrderBookView `json:"order_book"`
	Timestamp string         `json:"timestamp"`
}

type MIndicatorsEvent struct {
	Symbol     string      `json:"symbol"`
	Indicators MIndicators `json:"indicators"`
	Timestamp  string      `json:"timestamp"`
}

type MAccountEvent struct {
	Account   MAccountInfo `json:"account"`
	Timestamp string       `json:"timestamp"`
}

type MSymbolsEvent struct {
	Symbols   []string `json:"symbols"`
	Count     int      `json:"count"`
	Timestamp string   `json:"timestamp"`
}

type MMarketSummaryEvent struct {
	Summary   MMarketSummary `json:"summary"`
	Timestamp string         `json:"timestamp"`
}

type MHealthEvent struct {
	UpstreamConnected bool   `json:"upstream_connected"`
	ClientsConnected  int    `json:"clients_connected"`
	Timestamp         string `json:"timestamp"`
}

type MPongEvent struct {
	Timestamp  string `json:"timestamp"`
	ServerTime string `json:"server_time"`
}
