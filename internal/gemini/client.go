// Package gemini calls the Google generative-language REST API. The response
// nesting (candidates → content → parts → text) may be missing at any level,
// so extraction walks it defensively and reports a typed error instead of
// ever panicking on a hollow payload.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/knowbot/knowledge-chatbot/pkg/config"
	apperrors "github.com/knowbot/knowledge-chatbot/pkg/errors"
)

// Client performs generateContent calls against one model.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// New creates a Client from configuration.
func New(cfg config.GeminiConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

// request/response shapes for the generateContent endpoint. Every response
// level is optional by design.
type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Complete sends one prompt and returns the first candidate's text. It makes
// exactly one outbound call: no retries, and cancelling ctx abandons the
// call. A reachable service that answers with an empty or truncated nesting
// yields errors.ErrMalformedResponse, distinguishable from transport errors
// for operator logging; users see the same fallback either way.
func (c *Client) Complete(ctx context.Context, promptText string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: promptText}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("gemini returned status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var gr generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	text, ok := extractText(gr)
	if !ok {
		return "", apperrors.New(apperrors.ErrMalformedResponse, http.StatusBadGateway, "response carried no candidate text")
	}
	return text, nil
}

// extractText walks candidates[0].content.parts[0].text, reporting false the
// moment any expected level is absent or empty.
func extractText(gr generateResponse) (string, bool) {
	if len(gr.Candidates) == 0 {
		return "", false
	}
	parts := gr.Candidates[0].Content.Parts
	if len(parts) == 0 || parts[0].Text == "" {
		return "", false
	}
	return parts[0].Text, true
}
