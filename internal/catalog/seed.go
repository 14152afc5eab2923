package catalog

import (
	"context"

	"github.com/freegin-ai/gateway/internal/gatewayerr"
	"github.com/freegin-ai/gateway/internal/provider"
)

type seedEntry struct {
	provider  provider.Provider
	workload  provider.Workload
	model     string
	priority  int64
	rationale string
}

// defaultSeed is the starter roster for providers with generous free
// tiers, so a fresh install has a usable catalog before any refresh has
// run. Carried over from the original default-model table.
var defaultSeed = []seedEntry{
	{provider.Groq, provider.Chat, "llama-3.3-70b-versatile", 10, "Fast, versatile Llama model"},
	{provider.Groq, provider.Code, "llama-3.3-70b-versatile", 10, "Versatile model suitable for code"},
	{provider.Groq, provider.Summarization, "llama-3.3-70b-versatile", 20, "Fast summarization"},
	{provider.Groq, provider.Creative, "llama-3.3-70b-versatile", 15, "Creative and versatile"},

	{provider.DeepSeek, provider.Chat, "deepseek-chat", 20, "Powerful reasoning and chat"},
	{provider.DeepSeek, provider.Code, "deepseek-chat", 15, "Strong coding capabilities"},
	{provider.DeepSeek, provider.Summarization, "deepseek-chat", 25, "Effective summarization"},
	{provider.DeepSeek, provider.Extraction, "deepseek-chat", 20, "Information extraction"},
	{provider.DeepSeek, provider.Creative, "deepseek-chat", 25, "Creative writing"},
	{provider.DeepSeek, provider.Classification, "deepseek-chat", 25, "Text classification"},

	{provider.Together, provider.Chat, "meta-llama/Llama-3.3-70B-Instruct-Turbo-Free", 30, "Free Llama model"},
	{provider.Together, provider.Code, "meta-llama/Llama-3.3-70B-Instruct-Turbo-Free", 25, "Code-capable free model"},

	{provider.Google, provider.Chat, "gemini-2.0-flash", 40, "Fast multimodal Gemini"},
	{provider.Google, provider.Code, "gemini-2.0-flash", 35, "Gemini with code capabilities"},
	{provider.Google, provider.Summarization, "gemini-2.0-flash", 40, "Fast summarization"},

	{provider.Cloudflare, provider.Chat, "@cf/meta/llama-3.3-70b-instruct", 18, "Serverless Llama 3.3 70B"},
	{provider.Cloudflare, provider.Code, "@cf/meta/llama-3.3-70b-instruct", 18, "Serverless code-capable model"},
	{provider.Cloudflare, provider.Creative, "@cf/openai/gpt-oss-120b", 20, "OpenAI open-source 120B model"},

	{provider.Cerebras, provider.Chat, "llama-3.1-70b", 12, "Ultra-fast Llama 3.1 70B"},
	{provider.Cerebras, provider.Code, "llama-3.1-70b", 12, "Fast code-capable model"},
	{provider.Cerebras, provider.Summarization, "llama-3.1-8b", 15, "Fast summarization with 8B model"},

	{provider.Mistral, provider.Chat, "mistral-small-latest", 22, "Mistral Small for chat"},
	{provider.Mistral, provider.Code, "mistral-small-latest", 22, "Mistral Small for code"},
	{provider.Mistral, provider.Summarization, "mistral-small-latest", 25, "Mistral Small for summarization"},

	{provider.Clarifai, provider.Chat, "gpt-4", 45, "GPT-4 via Clarifai"},
	{provider.Clarifai, provider.Code, "gpt-4", 45, "GPT-4 code via Clarifai"},

	{provider.GitHubModels, provider.Chat, "gpt-4o", 35, "GPT-4o via GitHub"},
	{provider.GitHubModels, provider.Code, "gpt-4o", 35, "GPT-4o code via GitHub"},

	{provider.OpenRouter, provider.Chat, "deepseek/deepseek-r1:free", 50, "DeepSeek R1 free via OpenRouter"},
	{provider.OpenRouter, provider.Code, "deepseek/deepseek-r1:free", 50, "DeepSeek R1 code via OpenRouter"},
}

// SeedDefaults idempotently populates the active roster with starter
// models: for each (provider, workload) in the default table, it inserts
// the default model only if that combination has no active model yet.
// Safe to call on every startup.
func (s *Store) SeedDefaults(ctx context.Context) error {
	for _, entry := range defaultSeed {
		w := entry.workload
		existing, err := s.ActiveModels(ctx, entry.provider, &w)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			continue
		}

		now := s.nowStr()
		_, err = s.db.ExecContext(ctx, `
			INSERT OR IGNORE INTO provider_models
				(provider, workload, model, status, priority, rationale, metadata, created_at, updated_at)
			VALUES (?, ?, ?, 'active', ?, ?, NULL, ?, ?)
		`, entry.provider.String(), entry.workload.String(), entry.model, entry.priority, entry.rationale, now, now)
		if err != nil {
			return gatewayerr.NewDatabaseError("seed default model", err)
		}
	}
	return nil
}
