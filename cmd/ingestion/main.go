package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ingesthandler "github.com/knowbot/knowledge-chatbot/internal/ingestion/handler"
	"github.com/knowbot/knowledge-chatbot/internal/ingestion/publisher"
	"github.com/knowbot/knowledge-chatbot/pkg/config"
	"github.com/knowbot/knowledge-chatbot/pkg/kafka"
	"github.com/knowbot/knowledge-chatbot/pkg/logger"
	"github.com/knowbot/knowledge-chatbot/pkg/middleware"
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
	slog.Info("starting ingestion service",
		"port", cfg.Ingestion.Port,
		"topic", cfg.Kafka.Topics.KnowledgeImport,
		"max_records", cfg.Ingestion.MaxRecords,
	)

	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.KnowledgeImport)
	defer producer.Close()

	h := ingesthandler.New(publisher.New(producer), cfg.Ingestion.MaxRecords)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/knowledge", h.Import)
	mux.HandleFunc("GET /health", h.Health)

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Ingestion.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("ingestion service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("ingestion service stopped")
}
