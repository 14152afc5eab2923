package adapter

import (
	"net/http"

	"github.com/freegin-ai/gateway/internal/gatewayerr"
	"github.com/freegin-ai/gateway/internal/provider"
)

// BaseURLs holds each built-in provider's default API origin, used when
// config omits an explicit override.
var BaseURLs = map[provider.Provider]string{
	provider.OpenAI:       "https://api.openai.com/v1",
	provider.Google:       "https://generativelanguage.googleapis.com/v1beta",
	provider.HuggingFace:  "https://api-inference.huggingface.co",
	provider.Anthropic:    "https://api.anthropic.com",
	provider.Cohere:       "https://api.cohere.com",
	provider.Groq:         "https://api.groq.com/openai/v1",
	provider.DeepSeek:     "https://api.deepseek.com/v1",
	provider.Together:     "https://api.together.xyz/v1",
	provider.Cloudflare:   "https://api.cloudflare.com/client/v4/accounts",
	provider.Cerebras:     "https://api.cerebras.ai/v1",
	provider.Mistral:      "https://api.mistral.ai/v1",
	provider.Clarifai:     "https://api.clarifai.com/v2/ext/openai/v1",
	provider.GitHubModels: "https://models.inference.ai.azure.com",
	provider.OpenRouter:   "https://openrouter.ai/api/v1",
}

// openAICompatibleProviders is the set of providers that speak the shared
// chat/completions dialect. Every other built-in provider gets its own
// adapter type.
var openAICompatibleProviders = map[provider.Provider]bool{
	provider.OpenAI:       true,
	provider.Groq:         true,
	provider.DeepSeek:     true,
	provider.Together:     true,
	provider.Cloudflare:   true,
	provider.Cerebras:     true,
	provider.Mistral:      true,
	provider.Clarifai:     true,
	provider.GitHubModels: true,
	provider.OpenRouter:   true,
}

// New constructs the reference adapter for p. baseURL overrides
// BaseURLs[p] when non-empty. httpClient may be nil to use each
// adapter's default client.
func New(p provider.Provider, apiKey, baseURL string, httpClient *http.Client) (provider.Adapter, error) {
	if baseURL == "" {
		baseURL = BaseURLs[p]
	}

	switch {
	case openAICompatibleProviders[p]:
		return NewOpenAICompatible(Config{
			Provider:     p,
			BaseURL:      baseURL,
			APIKey:       apiKey,
			DefaultModel: DefaultModels[p],
			HTTPClient:   httpClient,
		})
	case p == provider.Google:
		return NewGoogle(apiKey, baseURL, httpClient)
	case p == provider.HuggingFace:
		return NewHuggingFace(apiKey, baseURL, httpClient)
	case p == provider.Anthropic:
		return NewAnthropic(apiKey, baseURL, httpClient)
	case p == provider.Cohere:
		return NewCohere(apiKey, baseURL, httpClient)
	default:
		return nil, gatewayerr.NewConfigError("%s: no reference adapter registered for this provider", p)
	}
}
