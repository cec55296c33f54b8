// Package chat wires the retrieval-and-synthesis pipeline: detect the query
// language, rank knowledge records against the question, compose a synthesis
// prompt, call the completion service, and fall back to a fixed message the
// moment any stage yields nothing usable. The pipeline never raises to the
// transport layer; every outcome is a string.
package chat

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/knowbot/knowledge-chatbot/internal/chat/guard"
	"github.com/knowbot/knowledge-chatbot/internal/chat/prompt"
	"github.com/knowbot/knowledge-chatbot/internal/chat/retriever"
	"github.com/knowbot/knowledge-chatbot/pkg/config"
	apperrors "github.com/knowbot/knowledge-chatbot/pkg/errors"
	"github.com/knowbot/knowledge-chatbot/pkg/metrics"
	"github.com/knowbot/knowledge-chatbot/pkg/resilience"
	"github.com/knowbot/knowledge-chatbot/pkg/tracing"
)

// Fixed fallback messages. These exact strings are part of the product
// contract; the true cause of each fallback goes to the log, never to the
// user.
const (
	FallbackNoKnowledge     = "Sorry, I don't have an answer for that in my knowledge base."
	FallbackCompletionError = "Sorry, Gemini API did not return a valid response."
)

// Detector classifies a query into a language tag. It must not fail.
type Detector interface {
	Detect(text string) string
}

// Retriever returns the ranked knowledge matches for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]retriever.Match, error)
}

// Completer turns a composed prompt into free-form text. It is the only
// vendor-facing seam in the pipeline.
type Completer interface {
	Complete(ctx context.Context, promptText string) (string, error)
}

// Guard checks a caller against the rate/repeat ceilings.
type Guard interface {
	Check(ctx context.Context, caller, message string) guard.Verdict
}

// Pipeline executes one chat request end to end.
type Pipeline struct {
	detector  Detector
	retriever Retriever
	completer Completer
	guard     Guard
	cfg       config.ChatConfig
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// New assembles a Pipeline. metrics may be nil in tests.
func New(det Detector, ret Retriever, comp Completer, g Guard, cfg config.ChatConfig, m *metrics.Metrics) *Pipeline {
	return &Pipeline{
		detector:  det,
		retriever: ret,
		completer: comp,
		guard:     g,
		cfg:       cfg,
		metrics:   m,
		logger:    slog.Default().With("component", "chat-pipeline"),
	}
}

// Answer runs the pipeline for one message from one caller and always
// returns something to show the user. Stage order within a request is fixed:
// guard, then detector and retriever concurrently, then the short-circuit
// check, then composition and completion.
func (p *Pipeline) Answer(ctx context.Context, caller, message string) string {
	log := p.logger.With("caller", caller)

	if verdict := p.guard.Check(ctx, caller, message); verdict != guard.Allow {
		log.Info("request rejected by guard", "kind", verdict.Kind())
		p.countGuard(verdict)
		p.countOutcome("rate_limited")
		return verdict.Message()
	}

	// The detector and retriever both work off the raw query and share no
	// state, so they run concurrently.
	var (
		languageTag string
		matches     []retriever.Match
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, span := tracing.StartChildSpan(gctx, "detect")
		defer span.End()
		languageTag = p.detector.Detect(message)
		span.SetAttr("language", languageTag)
		return nil
	})
	g.Go(func() error {
		_, span := tracing.StartChildSpan(gctx, "retrieve")
		defer span.End()
		start := time.Now()
		err := resilience.WithTimeout(gctx, p.cfg.RetrieveTimeout, "knowledge retrieval", func(ctx context.Context) error {
			var rerr error
			matches, rerr = p.retriever.Retrieve(ctx, message)
			return rerr
		})
		p.observeRetrieval(len(matches), time.Since(start))
		span.SetAttr("matches", len(matches))
		return err
	})
	if err := g.Wait(); err != nil {
		// A dead knowledge store means nothing to retrieve; answer with the
		// no-knowledge fallback rather than touching the completion service.
		log.Error("knowledge retrieval failed", "error", err)
		p.countOutcome("no_knowledge")
		return FallbackNoKnowledge
	}

	if len(matches) == 0 {
		log.Info("no knowledge matches", "language", languageTag)
		p.countOutcome("no_knowledge")
		return FallbackNoKnowledge
	}

	composed := prompt.Compose(message, matches, languageTag)

	_, span := tracing.StartChildSpan(ctx, "complete")
	start := time.Now()
	text, err := p.completer.Complete(ctx, composed.Text())
	span.End()
	p.observeCompletion(err, time.Since(start))
	if err != nil {
		log.Error("completion failed", "language", languageTag, "matches", len(matches), "error", err)
		p.countOutcome("completion_error")
		return FallbackCompletionError
	}

	log.Info("answer synthesized", "language", languageTag, "matches", len(matches))
	p.countOutcome("answered")
	return text
}

func (p *Pipeline) countOutcome(outcome string) {
	if p.metrics != nil {
		p.metrics.ChatRequestsTotal.WithLabelValues(outcome).Inc()
	}
}

func (p *Pipeline) countGuard(v guard.Verdict) {
	if p.metrics != nil {
		p.metrics.GuardRejectionsTotal.WithLabelValues(v.Kind()).Inc()
	}
}

func (p *Pipeline) observeRetrieval(matches int, elapsed time.Duration) {
	if p.metrics != nil {
		p.metrics.RetrievalMatches.Observe(float64(matches))
		p.metrics.RetrievalLatency.Observe(elapsed.Seconds())
	}
}

func (p *Pipeline) observeCompletion(err error, elapsed time.Duration) {
	if p.metrics == nil {
		return
	}
	status := "ok"
	switch {
	case errors.Is(err, apperrors.ErrMalformedResponse):
		status = "malformed"
	case err != nil:
		status = "error"
	}
	p.metrics.CompletionsTotal.WithLabelValues(status).Inc()
	p.metrics.CompletionLatency.Observe(elapsed.Seconds())
}
