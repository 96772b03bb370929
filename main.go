package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/Amongalen/albion-profit-calculator/internal/api"
	"github.com/Amongalen/albion-profit-calculator/internal/catalog"
	"github.com/Amongalen/albion-profit-calculator/internal/config"
	"github.com/Amongalen/albion-profit-calculator/internal/db"
	"github.com/Amongalen/albion-profit-calculator/internal/engine"
	"github.com/Amongalen/albion-profit-calculator/internal/logger"
	"github.com/Amongalen/albion-profit-calculator/internal/market"
)

var version = "dev"

func main() {
	port := flag.Int("port", 13370, "HTTP server port")
	dataDir := flag.String("data", "data", "catalog data directory")
	configPath := flag.String("config", "config.yaml", "optional YAML config file")
	dbPath := flag.String("db", "", "SQLite database path (default calculator.db)")
	flag.Parse()

	logger.Banner(version)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("Config", fmt.Sprintf("Failed to load: %v", err))
		os.Exit(1)
	}

	database, err := db.Open(*dbPath)
	if err != nil {
		logger.Error("DB", fmt.Sprintf("Failed to open database: %v", err))
		os.Exit(1)
	}
	defer database.Close()

	data, err := catalog.Load(*dataDir)
	if err != nil {
		logger.Error("Catalog", fmt.Sprintf("Load failed: %v", err))
		os.Exit(1)
	}

	client := market.NewClient(cfg)
	fetcher := market.NewFetcher(client, database, cfg)
	calc := engine.New(data, fetcher, database, cfg)

	// First computation in the background so the API comes up
	// immediately; restored batches stay served until it lands.
	go func() {
		refresh := func() {
			if err := calc.Refresh(context.Background()); err != nil {
				logger.Error("Engine", fmt.Sprintf("Refresh failed: %v", err))
			}
		}
		refresh()
		ticker := time.NewTicker(time.Duration(cfg.RefreshIntervalHours) * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			refresh()
		}
	}()

	srv := api.NewServer(data, calc)
	addr := fmt.Sprintf("127.0.0.1:%d", *port)
	logger.Server(addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		logger.Error("Server", fmt.Sprintf("Failed: %v", err))
		os.Exit(1)
	}
}
