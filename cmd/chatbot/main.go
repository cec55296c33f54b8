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
	"time"

	chat "github.com/knowbot/knowledge-chatbot/internal/chat"
	"github.com/knowbot/knowledge-chatbot/internal/chat/detector"
	"github.com/knowbot/knowledge-chatbot/internal/chat/guard"
	chathandler "github.com/knowbot/knowledge-chatbot/internal/chat/handler"
	"github.com/knowbot/knowledge-chatbot/internal/chat/retriever"
	"github.com/knowbot/knowledge-chatbot/internal/chat/similarity"
	"github.com/knowbot/knowledge-chatbot/internal/gemini"
	"github.com/knowbot/knowledge-chatbot/internal/knowledge"
	"github.com/knowbot/knowledge-chatbot/internal/quotes"
	"github.com/knowbot/knowledge-chatbot/pkg/config"
	"github.com/knowbot/knowledge-chatbot/pkg/health"
	"github.com/knowbot/knowledge-chatbot/pkg/logger"
	"github.com/knowbot/knowledge-chatbot/pkg/metrics"
	"github.com/knowbot/knowledge-chatbot/pkg/middleware"
	"github.com/knowbot/knowledge-chatbot/pkg/postgres"
	pkgredis "github.com/knowbot/knowledge-chatbot/pkg/redis"
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
	slog.Info("starting chatbot service", "port", cfg.Server.Port, "model", cfg.Gemini.Model)

	if cfg.Gemini.APIKey == "" {
		slog.Warn("GEMINI_API_KEY is not set, completion calls will be rejected upstream")
	}

	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var redisClient *pkgredis.Client
	redisClient, err = pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, rate/repeat guard disabled", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
		slog.Info("rate/repeat guard enabled",
			"addr", cfg.Redis.Addr,
			"per_minute", cfg.Guard.PerMinute,
			"per_day", cfg.Guard.PerDay,
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	store := knowledge.NewStore(db)
	if m != nil {
		if n, err := store.Count(ctx); err == nil {
			m.KnowledgeRecords.Set(float64(n))
		}
	}

	pipeline := chat.New(
		detector.New(),
		retriever.New(store, similarity.NewTrigram(), cfg.Chat.SimilarityThreshold, cfg.Chat.MaxMatches),
		gemini.New(cfg.Gemini),
		guard.New(redisClient, cfg.Guard),
		cfg.Chat,
		m,
	)

	checker := health.NewChecker()
	checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
		if err := db.DB.PingContext(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	chatH := chathandler.New(pipeline)
	quotesH := quotes.NewHandler(quotes.NewStore(db), cfg.Quotes.TTL)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/chat-message", chatH.ChatMessage)
	mux.HandleFunc("GET /api/v1/quotes", quotesH.Latest)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	if m != nil {
		chain = middleware.Metrics(m)(chain)
	}
	chain = middleware.CORS(middleware.DefaultCORSConfig())(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("chatbot service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("chatbot service stopped")
}
