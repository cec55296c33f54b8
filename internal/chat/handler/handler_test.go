package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type fakePipeline struct {
	answer     string
	lastCaller string
	lastMsg    string
	calls      int
}

func (f *fakePipeline) Answer(ctx context.Context, caller, message string) string {
	f.calls++
	f.lastCaller = caller
	f.lastMsg = message
	return f.answer
}

func postChat(t *testing.T, h *Handler, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat-message", strings.NewReader(body))
	req.RemoteAddr = "192.0.2.10:54321"
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ChatMessage(rec, req)
	return rec
}

func TestChatMessage_Envelope(t *testing.T) {
	fp := &fakePipeline{answer: "We're open from 9 to 5!"}
	rec := postChat(t, New(fp), `{"message": "whats ur hours"}`, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %q", ct)
	}
	var resp ChatResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Response != "We're open from 9 to 5!" {
		t.Errorf("unexpected response text %q", resp.Response)
	}
	if fp.lastMsg != "whats ur hours" {
		t.Errorf("pipeline received message %q", fp.lastMsg)
	}
}

func TestChatMessage_InvalidJSON(t *testing.T) {
	fp := &fakePipeline{answer: "unused"}
	rec := postChat(t, New(fp), `{"message": `, nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if fp.calls != 0 {
		t.Errorf("pipeline must not run on a malformed body, got %d calls", fp.calls)
	}
	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	if resp["error"] == "" {
		t.Error("expected an error message in the body")
	}
}

func TestChatMessage_TrimsMessage(t *testing.T) {
	fp := &fakePipeline{answer: "ok"}
	postChat(t, New(fp), `{"message": "  kumusta ka  "}`, nil)

	if fp.lastMsg != "kumusta ka" {
		t.Errorf("expected trimmed message, got %q", fp.lastMsg)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       string
	}{
		{"direct connection", "192.0.2.10:54321", "", "192.0.2.10"},
		{"single proxy hop", "10.0.0.1:443", "203.0.113.7", "203.0.113.7"},
		{"proxy chain keeps first", "10.0.0.1:443", "203.0.113.7, 10.0.0.2, 10.0.0.3", "203.0.113.7"},
		{"forwarded with spaces", "10.0.0.1:443", "  203.0.113.7 ,10.0.0.2", "203.0.113.7"},
		{"unparseable remote addr", "not-a-hostport", "", "not-a-hostport"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/chat-message", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if got := clientIP(req); got != tt.want {
				t.Errorf("clientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestChatMessage_CallerFromForwardedHeader(t *testing.T) {
	fp := &fakePipeline{answer: "ok"}
	postChat(t, New(fp), `{"message": "hello"}`, map[string]string{
		"X-Forwarded-For": "203.0.113.7, 10.0.0.2",
	})

	if fp.lastCaller != "203.0.113.7" {
		t.Errorf("expected caller from forwarded header, got %q", fp.lastCaller)
	}
}
