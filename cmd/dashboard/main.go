package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alphasignal-dashboard-go/internal/backend"
	"alphasignal-dashboard-go/internal/config"
	"alphasignal-dashboard-go/internal/database"
	"alphasignal-dashboard-go/internal/logger"
	"alphasignal-dashboard-go/internal/profiles"
	"alphasignal-dashboard-go/internal/wallet"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Open the local cache
	db, err := database.NewDatabase(cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to open cache database", zap.Error(err))
	}

	// Backend client and core state
	client := backend.NewClient(&cfg.Backend, log)
	hub := NewHub(log.Named("hub"))
	manager := profiles.NewManager(client, db, hub, log.Named("profiles"))

	// Render the last known state before the first fetch completes.
	if cached, err := db.LoadLastSnapshot(); err != nil {
		log.Warn("Failed to load cached profiles", zap.Error(err))
	} else if len(cached) > 0 {
		manager.Seed(cached)
		log.Info("Seeded profiles from local cache", zap.Int("count", len(cached)))
	}

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		log.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	// One-shot initial fetch; the backend may still be starting up.
	if err := manager.Refresh(ctx); err != nil {
		log.Warn("Initial profile fetch failed, serving cached state", zap.Error(err))
	}

	// Wallet/open-orders poll loop
	poller := wallet.NewPoller(client, time.Duration(cfg.Poll.WalletInterval)*time.Second, log.Named("wallet"))
	poller.OnRefresh = func() {
		hub.Notify(profiles.Notice{Kind: "wallet_refreshed", Title: "Wallet Refreshed"})
	}
	go poller.Run(ctx)
	defer poller.Stop()

	// Setup HTTP server
	mux := http.NewServeMux()

	apiHandler := NewAPIHandler(log.Named("api"), manager, poller, db, cfg.Defaults)
	apiHandler.Register(mux)
	mux.Handle("GET /api/events", hub)

	// Static file serving for the dashboard page.
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir("web/static"))))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "web/templates/index.html")
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown failed", zap.Error(err))
		}
	}()

	log.Info("Starting dashboard server", zap.String("address", addr))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("Dashboard server failed", zap.Error(err))
	}

	log.Info("Dashboard has been shut down.")
}
