package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mt5-gateway/src/analysis"
	"mt5-gateway/src/broadcast"
	"mt5-gateway/src/config"
	"mt5-gateway/src/interfaces"
	"mt5-gateway/src/logger"
	"mt5-gateway/src/marketdata"
	"mt5-gateway/src/network"
	"mt5-gateway/src/server"
	"mt5-gateway/src/subscriptions"
	"mt5-gateway/src/terminal"
	"mt5-gateway/src/utils"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file
	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(cfg.LogLevel, cfg.Name)

	// Setup components
	var networkManager interfaces.INetworkManager = network.NewNetworkManager(cfg.MConfig, appLogger)
	var term interfaces.ITerminal = terminal.NewBridgeTerminal(cfg.MConfig, networkManager, appLogger)

	appLogger.Info("Connecting to terminal bridge at %s...", cfg.Terminal.Endpoint)
	if err := term.Connect(); err != nil {
		appLogger.Critical("Failed to connect to terminal: %v", err)
	}

	refs := marketdata.NewReferenceStore()
	cache := marketdata.NewTTLCache(time.Duration(cfg.Cache.TTLSeconds) * time.Second)
	processor := marketdata.NewProcessor(refs, cache)
	analyzer := analysis.NewAnalyzer()
	registry := subscriptions.NewRegistry()
	cal := utils.NewTradingCalendar(cfg.Market.CalendarMIC, appLogger)

	// Wire transport and engine together
	srv := server.NewGatewayServer(cfg.MConfig, appLogger)
	engine := broadcast.NewEngine(cfg.MConfig, term, registry, processor, analyzer, cal, appLogger)
	engine.SetEmitter(srv)
	srv.SetGateway(engine)

	// Start background loops
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine.Start(ctx)

	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Critical("Server failed: %v", err)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down...")
	cancel()
	engine.Stop()
	srv.Stop()
}
