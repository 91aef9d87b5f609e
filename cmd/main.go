package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"

	"marketbot/api"
	"marketbot/config"
	"marketbot/pkg/auction"
	"marketbot/pkg/bot"
	"marketbot/pkg/imaging"
	"marketbot/pkg/logger"
	"marketbot/service"
	"marketbot/storage/postgres"
	"marketbot/storage/redisstore"
)

func main() {
	// 1. Load Config
	cfg := config.Load()

	// 2. Initialize Logger
	log := logger.New(cfg.ServiceName, cfg.LoggerLevel)

	// 3. Pricing engine gets its knobs explicitly, not from ambient state
	defaultStep, err := decimal.NewFromString(cfg.DefaultBidStep)
	if err != nil {
		log.Error("invalid DEFAULT_BID_STEP", logger.Error(err))
		os.Exit(1)
	}
	engine := auction.New(defaultStep, cfg.CurrencySymbol)

	// 4. Initialize Shared Storage (Postgres)
	pgStore, err := postgres.New(context.Background(), cfg, engine, log)
	if err != nil {
		log.Error("Failed to connect to postgres", logger.Error(err))
		os.Exit(1)
	}
	defer pgStore.Close()

	// 5. Initialize Session Store (Redis)
	sessions, err := redisstore.New(context.Background(), cfg, log)
	if err != nil {
		log.Error("Failed to connect to redis", logger.Error(err))
		os.Exit(1)
	}
	defer sessions.Close()

	processor := imaging.NewDiskProcessor(cfg.UploadDir, cfg.UploadMaxBytes, log)
	svc := service.New(pgStore, sessions, engine, processor, cfg, log)

	log.Info("🚀 Marketplace backend is initializing...")

	// 6. HTTP API for the mini app
	server := api.NewServer(svc, pgStore, cfg, log)
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.AppPort),
		Handler: server,
	}
	go func() {
		log.Info("HTTP API is starting...", logger.Int("port", cfg.AppPort))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server stopped", logger.Error(err))
			os.Exit(1)
		}
	}()

	// 7. Telegram bot hands out the mini app link
	if cfg.TelegramBotToken != "" {
		marketBot, err := bot.New(&cfg, log)
		if err != nil {
			log.Error("Failed to initialize bot", logger.Error(err))
			os.Exit(1)
		}
		go marketBot.Start()
		defer marketBot.Stop()
	} else {
		log.Warning("TG_BOT_TOKEN is empty, bot disabled")
	}

	log.Info("🚀 Marketplace backend is now running.")

	// 8. Graceful Shutdown listener
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	log.Info("Shutting down...")
	if err := httpServer.Shutdown(context.Background()); err != nil {
		log.Error("HTTP shutdown error", logger.Error(err))
	}
}
