// Package gemini wraps the Google generative AI backend used for song
// recommendations. Each request opens a fresh stateless chat; no history is
// kept across requests.
package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"moodtunes/config"

	log "github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

// Client talks to the Gemini API.
type Client struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewClient creates a Gemini client from configuration. The API key is never
// logged.
func NewClient(ctx context.Context, cfg config.GeminiConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api_key is not configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	log.Infof("Gemini client initialized (model: %s)", cfg.Model)
	return &Client{client: client, model: cfg.Model, timeout: timeout}, nil
}

// Recommend sends the prompt in a single-turn chat and returns the raw text
// reply. An empty or whitespace-only reply is an error; the caller surfaces
// it as a recommendation failure.
func (c *Client) Recommend(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	chat, err := c.client.Chats.Create(ctx, c.model, nil, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create chat: %w", err)
	}

	resp, err := chat.SendMessage(ctx, *genai.NewPartFromText(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	text := extractText(resp)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gemini returned an empty response")
	}

	log.Debugf("LLM response: %d bytes", len(text))
	return text, nil
}

// extractText concatenates the text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}
