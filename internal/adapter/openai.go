// Package adapter provides reference provider.Adapter implementations for
// the gateway's built-in providers. Most upstream AI services speak a
// dialect of OpenAI's chat/completions wire format; OpenAICompatible
// covers all of them, parameterized by base URL, auth header, and
// default model. Providers with a genuinely different wire shape
// (Google, HuggingFace, Anthropic, Cohere) get their own file.
package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/freegin-ai/gateway/internal/gatewayerr"
	"github.com/freegin-ai/gateway/internal/provider"
)

// maxErrorBodySize caps how much of an error response body is read into
// an error message, to prevent memory spikes on a misbehaving upstream.
const maxErrorBodySize = 4096

// Config holds the per-instance wiring for an OpenAICompatible adapter:
// which provider it speaks for, where it sends requests, and how it
// authenticates.
type Config struct {
	Provider     provider.Provider
	BaseURL      string
	APIKey       string
	DefaultModel string
	HTTPClient   *http.Client
}

// OpenAICompatible adapts provider.Request/Response to the
// {model, messages:[{role,content}]} chat/completions shape shared by
// OpenAI, Groq, DeepSeek, Together, Cloudflare Workers AI, Cerebras,
// Mistral, Clarifai, GitHub Models, and OpenRouter.
type OpenAICompatible struct {
	cfg    Config
	client *http.Client
}

// NewOpenAICompatible constructs an adapter for cfg.Provider. cfg.APIKey
// must be non-empty; cfg.BaseURL must not include a trailing
// "/chat/completions" suffix.
func NewOpenAICompatible(cfg Config) (*OpenAICompatible, error) {
	if cfg.APIKey == "" {
		return nil, gatewayerr.NewConfigError("%s: API key cannot be empty", cfg.Provider)
	}
	if cfg.BaseURL == "" {
		return nil, gatewayerr.NewConfigError("%s: base URL cannot be empty", cfg.Provider)
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &OpenAICompatible{cfg: cfg, client: client}, nil
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	Message chatResponseMessage `json:"message"`
}

type chatResponseMessage struct {
	Content string `json:"content"`
}

// Generate sends req.ResolvedPrompt() as a single user message to the
// configured chat/completions endpoint.
func (a *OpenAICompatible) Generate(ctx context.Context, req provider.Request) (provider.Response, error) {
	model := req.Model
	if model == "" {
		model = a.cfg.DefaultModel
	}

	body := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "user", Content: req.ResolvedPrompt()},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return provider.Response{}, gatewayerr.NewApiError("%s: marshal request: %v", a.cfg.Provider, err)
	}

	endpoint := a.cfg.BaseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return provider.Response{}, gatewayerr.NewApiError("%s: create request: %v", a.cfg.Provider, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return provider.Response{}, gatewayerr.NewNetworkError("%s: %v", a.cfg.Provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return provider.Response{}, gatewayerr.NewApiError("%s request failed with status %d: %s", a.cfg.Provider, resp.StatusCode, errBody)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return provider.Response{}, gatewayerr.NewApiError("%s: decode response: %v", a.cfg.Provider, err)
	}
	if len(parsed.Choices) == 0 {
		return provider.Response{}, gatewayerr.NewApiError("%s: response contained no choices", a.cfg.Provider)
	}

	return provider.Response{
		Content:  parsed.Choices[0].Message.Content,
		Provider: a.cfg.Provider.String(),
	}, nil
}

var _ provider.Adapter = (*OpenAICompatible)(nil)

// DefaultModels holds each OpenAI-compatible provider's free-tier default
// model, used when a request carries no model and the catalog resolved
// none either. Ported from the original connectors' hardcoded fallbacks.
var DefaultModels = map[provider.Provider]string{
	provider.OpenAI:       "gpt-4o-mini",
	provider.Groq:         "llama-3.3-70b-versatile",
	provider.DeepSeek:     "deepseek-chat",
	provider.Together:     "meta-llama/Llama-3.3-70B-Instruct-Turbo-Free",
	provider.Cloudflare:   "@cf/meta/llama-3.3-70b-instruct",
	provider.Cerebras:     "llama-3.1-70b",
	provider.Mistral:      "mistral-small-latest",
	provider.Clarifai:     "gpt-4",
	provider.GitHubModels: "gpt-4o",
	provider.OpenRouter:   "deepseek/deepseek-r1:free",
}
