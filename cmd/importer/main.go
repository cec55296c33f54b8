package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/knowbot/knowledge-chatbot/internal/importer"
	"github.com/knowbot/knowledge-chatbot/internal/knowledge"
	"github.com/knowbot/knowledge-chatbot/pkg/config"
	"github.com/knowbot/knowledge-chatbot/pkg/kafka"
	"github.com/knowbot/knowledge-chatbot/pkg/logger"
	"github.com/knowbot/knowledge-chatbot/pkg/metrics"
	"github.com/knowbot/knowledge-chatbot/pkg/postgres"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting importer", "topic", cfg.Kafka.Topics.KnowledgeImport)

	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownMetrics(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown error", "error", err)
			}
		}()
	}

	imp := importer.New(knowledge.NewStore(db), m)
	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.KnowledgeImport, imp.Handle)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return consumer.Start(gctx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("importer error", "error", err)
		os.Exit(1)
	}
	slog.Info("importer stopped")
}
