package provider

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/freegin-ai/gateway/internal/gatewayerr"
)

// HealthTracker is the subset of internal/healthtrack.Tracker the router
// depends on. Defined here (rather than imported) so this package has no
// dependency on the concrete health-tracking implementation.
type HealthTracker interface {
	IsAvailable(ctx context.Context, p Provider) bool
	RecordSuccess(ctx context.Context, p Provider)
	RecordFailure(ctx context.Context, p Provider, errMsg string)
}

// CatalogStore is the subset of internal/catalog.Store the router depends
// on, used to auto-fill an empty request model from the active roster.
type CatalogStore interface {
	FirstActiveModel(ctx context.Context, p Provider, w Workload) (string, bool, error)
}

// UsageRecord describes a single completed (or failed) generation attempt,
// handed to a UsageLogger for persistence. Fields mirror the provider_usage
// table columns the gateway writes to.
type UsageRecord struct {
	Provider     Provider
	Model        string
	Success      bool
	LatencyMS    int64
	ErrorMessage string
}

// UsageLogger is the subset of internal/usage.Logger the router depends on.
type UsageLogger interface {
	Log(ctx context.Context, rec UsageRecord)
}

// RouterOption configures optional Router collaborators and behavior.
type RouterOption func(*Router)

// WithHealthTracker wires a HealthTracker into the router. Without one,
// every provider is always treated as available.
func WithHealthTracker(h HealthTracker) RouterOption {
	return func(r *Router) { r.health = h }
}

// WithCatalogStore wires a CatalogStore into the router, enabling
// empty-model auto-fill from the active roster.
func WithCatalogStore(c CatalogStore) RouterOption {
	return func(r *Router) { r.catalog = c }
}

// WithUsageLogger wires a UsageLogger into the router.
func WithUsageLogger(u UsageLogger) RouterOption {
	return func(r *Router) { r.usage = u }
}

// WithRouterLogger injects a structured logger. Defaults to discarding
// all output.
func WithRouterLogger(l *slog.Logger) RouterOption {
	return func(r *Router) { r.logger = l }
}

// WithClock overrides the router's time source, for testing latency
// measurement deterministically.
func WithClock(now func() time.Time) RouterOption {
	return func(r *Router) { r.now = now }
}

// Router is the gateway's routing core: it owns a fixed set of constructed
// adapters keyed by provider, an ordered fallback list (construction
// order), and optional health/catalog/usage collaborators. It performs no
// parallel fan-out; Generate walks candidates strictly sequentially.
type Router struct {
	adapters      map[Provider]Adapter
	fallbackOrder []Provider

	health  HealthTracker
	catalog CatalogStore
	usage   UsageLogger
	logger  *slog.Logger
	now     func() time.Time
}

// NewRouter constructs a Router from a map of already-credentialed
// adapters. order determines fallback precedence among providers with no
// other routing signal; entries in order without a corresponding adapter
// are ignored. Fails with *gatewayerr.ConfigError if adapters is empty.
func NewRouter(adapters map[Provider]Adapter, order []Provider, opts ...RouterOption) (*Router, error) {
	if len(adapters) == 0 {
		return nil, gatewayerr.NewConfigError("no AI providers supplied to router")
	}

	fallback := make([]Provider, 0, len(adapters))
	seen := make(map[Provider]bool, len(adapters))
	for _, p := range order {
		if _, ok := adapters[p]; ok && !seen[p] {
			fallback = append(fallback, p)
			seen[p] = true
		}
	}
	// Any adapter not named in order still participates in fallback,
	// appended in map iteration order (construction is deterministic
	// from the caller's perspective since they control `order`).
	for p := range adapters {
		if !seen[p] {
			fallback = append(fallback, p)
			seen[p] = true
		}
	}

	r := &Router{
		adapters:      adapters,
		fallbackOrder: fallback,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.New(slog.DiscardHandler)
	}
	return r, nil
}

// Generate routes req to the best available candidate provider, walking
// fallbacks on failure, and returns the first successful response. If
// every candidate is skipped or fails, it returns *gatewayerr.NoProviderAvailable.
func (r *Router) Generate(ctx context.Context, req Request) (Response, error) {
	candidates := r.selectCandidates(req)

	for _, p := range candidates {
		if err := ctx.Err(); err != nil {
			return Response{}, err
		}
		if r.health != nil && !r.health.IsAvailable(ctx, p) {
			continue
		}

		attempt := req
		if attempt.Model == "" {
			attempt.Model = r.autofillModel(ctx, p, req.Hints.Workload)
		}

		start := r.now()
		resp, err := r.adapters[p].Generate(ctx, attempt)
		latency := r.now().Sub(start)

		if err == nil {
			r.recordSuccess(p)
			r.logUsage(p, attempt.Model, true, latency, "")
			return resp, nil
		}

		r.recordFailure(p, err)
		r.logUsage(p, attempt.Model, false, latency, err.Error())
		r.logger.Warn("provider failed, trying next candidate",
			"provider", p.String(),
			"error", err,
		)
	}

	return Response{}, gatewayerr.NewNoProviderAvailable()
}

// autofillModel consults the catalog for the first active model under
// (p, workload) when the request did not specify one. Catalog errors are
// logged and treated as "no suggestion" so they never block routing.
func (r *Router) autofillModel(ctx context.Context, p Provider, workload *Workload) string {
	if r.catalog == nil {
		return ""
	}
	w := Chat
	if workload != nil {
		w = *workload
	}
	model, ok, err := r.catalog.FirstActiveModel(ctx, p, w)
	if err != nil {
		r.logger.Warn("catalog lookup failed during routing, proceeding without autofill",
			"provider", p.String(), "error", err)
		return ""
	}
	if !ok {
		return ""
	}
	return model
}

func (r *Router) recordSuccess(p Provider) {
	if r.health == nil {
		return
	}
	r.health.RecordSuccess(context.Background(), p)
}

func (r *Router) recordFailure(p Provider, err error) {
	if r.health == nil {
		return
	}
	r.health.RecordFailure(context.Background(), p, err.Error())
}

func (r *Router) logUsage(p Provider, model string, success bool, latency time.Duration, errMsg string) {
	if r.usage == nil {
		return
	}
	r.usage.Log(context.Background(), UsageRecord{
		Provider:     p,
		Model:        model,
		Success:      success,
		LatencyMS:    latency.Milliseconds(),
		ErrorMessage: errMsg,
	})
}

// selectCandidates produces an ordered, deduplicated candidate list for
// req from five sources, in priority order: explicit provider hint, a
// provider:<alias> tag, a model-name substring heuristic, hint-preferred
// providers, then fallback (construction) order.
func (r *Router) selectCandidates(req Request) []Provider {
	var ordered []Provider
	seen := make(map[Provider]bool)

	add := func(p Provider) {
		if _, ok := r.adapters[p]; !ok {
			return
		}
		if seen[p] {
			return
		}
		ordered = append(ordered, p)
		seen[p] = true
	}

	if req.Hints.Provider != "" {
		if p, ok := FromAlias(req.Hints.Provider); ok {
			add(p)
		}
	}

	for _, tag := range req.Tags {
		alias, ok := strings.CutPrefix(tag, "provider:")
		if !ok {
			continue
		}
		p, ok := FromAlias(strings.TrimSpace(alias))
		if !ok {
			continue
		}
		add(p)
		if _, registered := r.adapters[p]; registered {
			break
		}
	}

	if p, ok := providerFromModelHeuristic(req.Model); ok {
		add(p)
	}

	if req.Hints.Quality == QualityPremium || req.Hints.Complexity == ComplexityHigh {
		add(HuggingFace)
	}
	if req.Hints.Speed == SpeedFast {
		add(Google)
	}

	for _, p := range r.fallbackOrder {
		add(p)
	}

	return ordered
}

// providerFromModelHeuristic infers a provider from a substring match on
// the lowercased model name. Deliberately does NOT infer HuggingFace from
// the mere presence of "/" in the model name (ambiguous vendor-prefixed
// identifiers like ones Together also uses); such strings yield nothing
// here and rely on fallback.
func providerFromModelHeuristic(model string) (Provider, bool) {
	m := strings.ToLower(model)
	switch {
	case strings.Contains(m, "gemini"):
		return Google, true
	case strings.Contains(m, "gpt"):
		return OpenAI, true
	case strings.Contains(m, "claude"):
		return Anthropic, true
	case strings.Contains(m, "cohere"):
		return Cohere, true
	case strings.Contains(m, "deepseek"):
		return DeepSeek, true
	case strings.Contains(m, "llama") && strings.Contains(m, "groq"):
		return Groq, true
	default:
		return 0, false
	}
}
