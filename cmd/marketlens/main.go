package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"MarketLens/internal/cache"
	"MarketLens/internal/config"
	"MarketLens/internal/fetcher"
	"MarketLens/internal/janitor"
	"MarketLens/internal/recorder"
	"MarketLens/internal/server"
	"MarketLens/internal/service"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] MarketLens starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init fetcher
	var f fetcher.Fetcher
	if os.Getenv("MARKETLENS_OFFLINE") == "true" {
		f = &fetcher.MockFetcher{}
	} else {
		f = fetcher.NewYahooFetcher(cfg.Proxy)
	}
	log.Printf("[INFO] data source: %s", f.Name())

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Init cache and service
	store := cache.New(cfg.Cache.MaxEntries, cfg.Cache.MaxSizeMB)
	svc := service.New(f, store, rec, time.Duration(cfg.Cache.TTLMinutes)*time.Minute)
	svc.DescribeCache()

	// Init janitor
	if cfg.Cache.PurgeCron != "" {
		jan := janitor.New(svc)
		if err := jan.Register(cfg.Cache.PurgeCron); err != nil {
			log.Fatalf("[FATAL] register purge task: %v", err)
		}
		jan.Start()
		defer jan.Stop()
	}

	// Init HTTP server
	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: server.New(svc, cfg).Handler(),
	}
	go func() {
		log.Printf("[INFO] listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[FATAL] http server: %v", err)
		}
	}()

	log.Println("[INFO] MarketLens is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[WARN] http shutdown: %v", err)
	}
	log.Println("[INFO] MarketLens stopped")
}
