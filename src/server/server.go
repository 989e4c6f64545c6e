package server

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"mt5-gateway/src/interfaces"
	"mt5-gateway/src/logger"
	"mt5-gateway/src/models"

	"github.com/gin-gonic/gin"
)

const version = "1.0.0"

// -----------------------------------------------------------------------------
// GatewayServer
// -----------------------------------------------------------------------------

type GatewayServer struct {
	Config  *models.MConfig
	Logger  *logger.Logger
	Gateway interfaces.IGateway
	engine  *gin.Engine

	// WebSocket clients, keyed by client id
	clientsMu  sync.RWMutex
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewGatewayServer(cfg *models.MConfig, log *logger.Logger) *GatewayServer {
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &GatewayServer{
		Config:     cfg,
		Logger:     log,
		engine:     gin.Default(),
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}

	// Add CORS Middleware
	s.engine.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------

// SetGateway wires the broadcast engine in. Must be called before Start.
func (s *GatewayServer) SetGateway(gw interfaces.IGateway) {
	s.Gateway = gw
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *GatewayServer) setupRoutes() {
	s.engine.GET("/", s.getStatus)
	s.engine.GET("/health", s.getHealth)
	s.engine.GET("/quotes/:symbol", s.getQuote)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *GatewayServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on %s", addr)

	go s.handleWebsockets()

	return s.engine.Run(addr)
}

// -----------------------------------------------------------------------------

func (s *GatewayServer) Stop() error {
	s.clientsMu.Lock()
	for id, client := range s.clients {
		close(client.send)
		delete(s.clients, id)
	}
	s.clientsMu.Unlock()
	return nil
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *GatewayServer) getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":           s.Config.Name,
		"version":           version,
		"status":            "running",
		"clients_connected": s.ClientCount(),
		"timestamp":         time.Now().UTC().Format(time.RFC3339),
	})
}

// -----------------------------------------------------------------------------

func (s *GatewayServer) getHealth(c *gin.Context) {
	upstream := s.Gateway.UpstreamConnected()

	status := "healthy"
	if !upstream {
		status = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":             status,
		"upstream_connected": upstream,
		"clients_connected":  s.ClientCount(),
		"symbols_subscribed": s.Gateway.WatchedSymbolCount(),
	})
}

// -----------------------------------------------------------------------------

func (s *GatewayServer) getQuote(c *gin.Context) {
	symbol := c.Param("symbol")

	quote, err := s.Gateway.Quote(symbol)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol":        quote.Symbol,
		"bid":           quote.Bid,
		"ask":           quote.Ask,
		"last":          quote.Last,
		"price":         quote.Price(),
		"volume":        quote.Volume,
		"time":          quote.Time,
		"spread":        quote.Spread,
		"change":        quote.Change,
		"changePercent": quote.ChangePercent,
	})
}
