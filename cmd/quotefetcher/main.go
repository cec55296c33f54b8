package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/knowbot/knowledge-chatbot/internal/gemini"
	"github.com/knowbot/knowledge-chatbot/internal/quotes"
	"github.com/knowbot/knowledge-chatbot/pkg/config"
	"github.com/knowbot/knowledge-chatbot/pkg/logger"
	"github.com/knowbot/knowledge-chatbot/pkg/postgres"
)

// One-shot batch job: replaces the stored quote set with a fresh batch from
// the completion service. Intended to run from cron.
func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting quote fetch", "batch_size", cfg.Quotes.BatchSize, "model", cfg.Gemini.Model)

	if cfg.Gemini.APIKey == "" {
		slog.Error("GEMINI_API_KEY is not set")
		os.Exit(1)
	}

	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fetcher := quotes.NewFetcher(gemini.New(cfg.Gemini), quotes.NewStore(db), cfg.Quotes.BatchSize)
	saved, err := fetcher.Run(ctx)
	if err != nil {
		slog.Error("quote fetch failed", "error", err)
		os.Exit(1)
	}
	slog.Info("quote fetch complete", "saved", saved)
}
