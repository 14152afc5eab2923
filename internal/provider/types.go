// Package provider defines the router's core vocabulary: the closed
// Provider/Workload enumerations, the request/response envelope, and the
// ProviderAdapter contract that concrete per-provider clients implement.
package provider

import (
	"strconv"
	"strings"
)

// Provider is a closed enumeration of known upstream AI services. Adding a
// new provider is a source-code change, not a configuration change.
type Provider int

// Canonical providers, in registration-preference order. The order here
// has no routing significance by itself; fallback order is determined by
// construction order in the router, not by this enumeration's order.
const (
	OpenAI Provider = iota
	Google
	HuggingFace
	Anthropic
	Cohere
	Groq
	DeepSeek
	Together
	Cloudflare
	Cerebras
	Mistral
	Clarifai
	GitHubModels
	OpenRouter
)

// AllProviders lists every canonical provider, used by the health tracker
// to report on providers that have never been contacted.
var AllProviders = []Provider{
	OpenAI, Google, HuggingFace, Anthropic, Cohere, Groq, DeepSeek, Together,
	Cloudflare, Cerebras, Mistral, Clarifai, GitHubModels, OpenRouter,
}

// String returns the canonical lowercase identifier for the provider.
func (p Provider) String() string {
	switch p {
	case OpenAI:
		return "openai"
	case Google:
		return "google"
	case HuggingFace:
		return "huggingface"
	case Anthropic:
		return "anthropic"
	case Cohere:
		return "cohere"
	case Groq:
		return "groq"
	case DeepSeek:
		return "deepseek"
	case Together:
		return "together"
	case Cloudflare:
		return "cloudflare"
	case Cerebras:
		return "cerebras"
	case Mistral:
		return "mistral"
	case Clarifai:
		return "clarifai"
	case GitHubModels:
		return "github"
	case OpenRouter:
		return "openrouter"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so Provider round-trips
// through JSON and YAML as its canonical string.
func (p Provider) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, accepting any alias
// recognized by FromAlias.
func (p *Provider) UnmarshalText(text []byte) error {
	got, ok := FromAlias(string(text))
	if !ok {
		return unknownProviderError(string(text))
	}
	*p = got
	return nil
}

type unknownProviderError string

func (e unknownProviderError) Error() string { return "unknown provider alias: " + string(e) }

// FromAlias resolves a case-insensitive provider alias to its canonical
// Provider. Note that alias resolution is not the inverse of String(): for
// example "togetherai" resolves to Together, but Together.String() always
// returns "together".
func FromAlias(alias string) (Provider, bool) {
	switch strings.ToLower(strings.TrimSpace(alias)) {
	case "openai", "gpt":
		return OpenAI, true
	case "google", "gemini":
		return Google, true
	case "huggingface", "hugging_face", "hf":
		return HuggingFace, true
	case "anthropic", "claude":
		return Anthropic, true
	case "cohere":
		return Cohere, true
	case "groq":
		return Groq, true
	case "deepseek":
		return DeepSeek, true
	case "together", "togetherai", "together_ai":
		return Together, true
	case "cloudflare", "cf", "workers", "workers_ai":
		return Cloudflare, true
	case "cerebras":
		return Cerebras, true
	case "mistral":
		return Mistral, true
	case "clarifai":
		return Clarifai, true
	case "github", "githubmodels", "github_models":
		return GitHubModels, true
	case "openrouter":
		return OpenRouter, true
	default:
		return 0, false
	}
}

// Workload classifies the kind of generation task a request represents,
// used to scope catalog model selection and usage aggregation.
type Workload int

// Workload values.
const (
	Chat Workload = iota
	Summarization
	Code
	Extraction
	Creative
	Classification
)

// String returns the lowercase key for the workload.
func (w Workload) String() string {
	switch w {
	case Chat:
		return "chat"
	case Summarization:
		return "summarization"
	case Code:
		return "code"
	case Extraction:
		return "extraction"
	case Creative:
		return "creative"
	case Classification:
		return "classification"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (w Workload) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (w *Workload) UnmarshalText(text []byte) error {
	got, ok := WorkloadFromString(string(text))
	if !ok {
		return unknownWorkloadError(string(text))
	}
	*w = got
	return nil
}

type unknownWorkloadError string

func (e unknownWorkloadError) Error() string { return "unknown workload: " + string(e) }

// WorkloadFromString resolves a lowercase workload key. Round-trippable
// with String().
func WorkloadFromString(s string) (Workload, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "chat":
		return Chat, true
	case "summarization":
		return Summarization, true
	case "code":
		return Code, true
	case "extraction":
		return Extraction, true
	case "creative":
		return Creative, true
	case "classification":
		return Classification, true
	default:
		return 0, false
	}
}

// Complexity is a routing hint for how demanding the request is.
type Complexity string

// Complexity values.
const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "med"
	ComplexityHigh   Complexity = "high"
)

// Quality is a routing hint for the desired output quality tier.
type Quality string

// Quality values.
const (
	QualityStandard Quality = "standard"
	QualityBalanced Quality = "balanced"
	QualityPremium  Quality = "premium"
)

// Speed is a routing hint favoring latency over quality.
type Speed string

// Speed values.
const (
	SpeedFast   Speed = "fast"
	SpeedNormal Speed = "normal"
)

// Guardrail is a routing hint for how strictly output should be policed.
type Guardrail string

// Guardrail values.
const (
	GuardrailStrict  Guardrail = "strict"
	GuardrailLenient Guardrail = "lenient"
)

// ResponseFormat is a routing hint for the expected output shape.
type ResponseFormat string

// ResponseFormat values.
const (
	FormatText     ResponseFormat = "text"
	FormatMarkdown ResponseFormat = "markdown"
	FormatJSON     ResponseFormat = "json"
)

// Hints carry optional routing preferences attached to a Request. Any
// field left at its zero value is treated as "no preference".
type Hints struct {
	Complexity     Complexity     `json:"complexity,omitempty"`
	Quality        Quality        `json:"quality,omitempty"`
	Speed          Speed          `json:"speed,omitempty"`
	Guardrail      Guardrail      `json:"guardrail,omitempty"`
	ResponseFormat ResponseFormat `json:"response_format,omitempty"`
	Provider       string         `json:"provider,omitempty"`
	Workload       *Workload      `json:"workload,omitempty"`
}

// Request is the gateway's provider-agnostic generation request.
type Request struct {
	Model    string            `json:"model,omitempty"`
	Prompt   string            `json:"prompt"`
	Tags     []string          `json:"tags,omitempty"`
	Context  []string          `json:"context,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Hints    Hints             `json:"hints,omitempty"`
}

// ResolvedPrompt returns the prompt with numbered Context sections
// prepended, per the Request.context field's contract.
func (r Request) ResolvedPrompt() string {
	if len(r.Context) == 0 {
		return r.Prompt
	}
	var b strings.Builder
	for i, c := range r.Context {
		b.WriteString("Context ")
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(": ")
		b.WriteString(c)
		b.WriteString("\n")
	}
	b.WriteString(r.Prompt)
	return b.String()
}

// Response is the gateway's provider-agnostic generation response.
type Response struct {
	Content  string `json:"content"`
	Provider string `json:"provider"`
}
