// Package extract calls the content-extraction service and degrades to a
// placeholder payload when the service fails or is not configured.
package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Extraction is the structured output of processing one file.
type Extraction struct {
	Content string   `json:"content"`
	Summary string   `json:"summary"`
	Tags    []string `json:"tags"`
}

// Placeholder is the degraded result returned whenever the service cannot
// produce a real one. Callers treat it as content, never as an error.
func Placeholder() Extraction {
	return Extraction{
		Content: "Sorry, I couldn't process the file. Please try again.",
		Summary: "Sorry, a summary could not be generated for this file.",
		Tags:    []string{},
	}
}

const summaryFallback = "Sorry, I couldn't generate a summary. Please try again later."

// Client talks to an OpenAI-compatible chat-completions endpoint.
type Client struct {
	endpoint string
	apiKey   string
	model    string
	http     *http.Client
	log      *zap.Logger
}

// NewClient constructs a client. An empty endpoint or key leaves the client
// in degraded mode.
func NewClient(endpoint, apiKey, model string, log *zap.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		model:    model,
		http:     &http.Client{Timeout: 60 * time.Second},
		log:      log,
	}
}

// ProcessFile extracts text, a summary and tags from a raw file. Failures
// are logged and degrade to the placeholder payload.
func (c *Client) ProcessFile(ctx context.Context, name, mime string, data []byte) Extraction {
	if c.endpoint == "" || c.apiKey == "" {
		c.log.Warn("extraction service not configured")
		return Placeholder()
	}
	out, err := c.processFile(ctx, name, mime, data)
	if err != nil {
		c.log.Error("process file", zap.String("file", name), zap.Error(err))
		return Placeholder()
	}
	return out
}

// Summarize produces a concise summary of the given text, degrading to an
// apologetic fallback on failure.
func (c *Client) Summarize(ctx context.Context, text string) string {
	if c.endpoint == "" || c.apiKey == "" {
		c.log.Warn("extraction service not configured")
		return summaryFallback
	}
	prompt := "Please provide a concise, easy-to-read summary of the following text:\n\n---\n\n" + text
	out, err := c.complete(ctx, prompt)
	if err != nil {
		c.log.Error("summarize", zap.Error(err))
		return summaryFallback
	}
	return out
}

const processPrompt = "First, extract the full text content from this file. " +
	"If it's audio, transcribe it. If it's a document, extract the text. " +
	"Second, generate a concise summary of the content. " +
	"Third, generate 5-7 relevant keywords or tags for the main themes. " +
	"Return a JSON object with keys 'content', 'summary' and 'tags'."

func (c *Client) processFile(ctx context.Context, name, mime string, data []byte) (Extraction, error) {
	prompt := fmt.Sprintf("%s\n\nFile name: %s\nMIME type: %s\nBase64 data:\n%s",
		processPrompt, name, mime, base64.StdEncoding.EncodeToString(data))

	raw, err := c.complete(ctx, prompt)
	if err != nil {
		return Extraction{}, err
	}

	var out Extraction
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return Extraction{}, fmt.Errorf("parse extraction result: %w", err)
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	return out, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// complete sends one user message and returns the first choice's content.
func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.2,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var out chatResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("no choices in response")
	}
	return out.Choices[0].Message.Content, nil
}
