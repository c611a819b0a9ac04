package tip

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "gpt-4o-mini"

	defaultBaseURL = "https://api.openai.com/v1"
	systemMessage  = "You provide safe, clear running advice."
)

// Generator produces a tip for a category. Satisfied by the OpenAI client
// and by test fakes.
type Generator interface {
	Generate(ctx context.Context, category string) (string, error)
}

// OpenAI calls the chat completions API to generate a tip.
type OpenAI struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// OpenAIOption customizes the OpenAI client.
type OpenAIOption func(*OpenAI)

// WithModel overrides the default model.
func WithModel(model string) OpenAIOption {
	return func(o *OpenAI) {
		if model != "" {
			o.model = model
		}
	}
}

// WithBaseURL points the client at a different API endpoint. Tests use it
// to target a local fake server.
func WithBaseURL(baseURL string) OpenAIOption {
	return func(o *OpenAI) {
		if baseURL != "" {
			o.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) OpenAIOption {
	return func(o *OpenAI) {
		if client != nil {
			o.client = client
		}
	}
}

// NewOpenAI creates an OpenAI-backed generator.
func NewOpenAI(apiKey string, opts ...OpenAIOption) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	o := &OpenAI{
		apiKey:  apiKey,
		model:   DefaultModel,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Model reports the configured model name, recorded alongside each tip.
func (o *OpenAI) Model() string { return o.model }

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
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate asks the model for one concise tip in the given category.
func (o *OpenAI) Generate(ctx context.Context, category string) (string, error) {
	prompt := fmt.Sprintf(
		"You are a practical running coach. "+
			"Provide one concise tip of the day for the category '%s'. "+
			"Keep it to 1-2 sentences and make it actionable.",
		category,
	)

	body, err := json.Marshal(chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemMessage},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("openai API %d: %s", resp.StatusCode, string(b))
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("openai response contained no choices")
	}
	text := strings.TrimSpace(cr.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("openai response contained an empty tip")
	}
	return text, nil
}
