// Package handler exposes the chat pipeline over HTTP. The endpoint always
// answers 200 with a response envelope; pipeline failures are absorbed into
// fallback text, never surfaced as transport-level failure codes.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/knowbot/knowledge-chatbot/pkg/logger"
	"github.com/knowbot/knowledge-chatbot/pkg/middleware"
	"github.com/knowbot/knowledge-chatbot/pkg/tracing"
)

// Pipeline answers one chat message for one caller.
type Pipeline interface {
	Answer(ctx context.Context, caller, message string) string
}

// ChatRequest is the inbound JSON body.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the uniform response envelope.
type ChatResponse struct {
	Response string `json:"response"`
}

type Handler struct {
	pipeline Pipeline
	logger   *slog.Logger
}

func New(pipeline Pipeline) *Handler {
	return &Handler{
		pipeline: pipeline,
		logger:   slog.Default().With("component", "chat-handler"),
	}
}

// ChatMessage handles POST /api/v1/chat-message. Only a missing or
// unreadable body is a client error; everything past decoding comes back as
// 200 with a response string.
func (h *Handler) ChatMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	message := strings.TrimSpace(req.Message)
	caller := clientIP(r)

	ctx, span := tracing.StartSpan(ctx, "chat-message", middleware.GetRequestID(ctx))
	answer := h.pipeline.Answer(ctx, caller, message)
	span.End()
	span.Log()

	log.Debug("chat message handled", "caller", caller)
	h.writeJSON(w, http.StatusOK, ChatResponse{Response: answer})
}

// clientIP derives the caller identity: first X-Forwarded-For entry when the
// request came through a proxy, else the direct connection address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
