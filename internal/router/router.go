// Package router implements the Model Router (C11): a fixed decision
// ladder that picks the cheapest model able to handle a request, given
// its token count, complexity, provider availability, and remaining
// budget.
package router

import (
	"context"
	"fmt"

	"github.com/prism-dev/prism/internal/budget"
	"github.com/prism-dev/prism/internal/metrics"
)

// Provider is a closed enumeration of provider tags.
type Provider string

const (
	ProviderLocal     Provider = "local"
	ProviderCloudFree Provider = "cloud_free"
	ProviderCheapPaid Provider = "cheap_paid"
	ProviderBalanced  Provider = "balanced_paid"
	ProviderPremium   Provider = "premium_paid"
)

// ComplexityBand bounds the query complexities a model is recommended for.
type ComplexityBand struct {
	Min float64
	Max float64
}

// Contains reports whether c falls within the band, inclusive.
func (b ComplexityBand) Contains(c float64) bool {
	return c >= b.Min && c <= b.Max
}

// ModelSpec describes one routable model, configured at startup.
type ModelSpec struct {
	Name               string
	Provider           Provider
	MaxTokens          int
	PriceInPerMillion  float64
	PriceOutPerMillion float64
	RecommendedBand    ComplexityBand
}

// Availability reports whether a provider is currently reachable. Local
// and cloud-free providers may be unavailable (no local runtime, no
// configured API key); paid providers are assumed always available.
type Availability interface {
	IsAvailable(provider Provider) bool
}

// StaticAvailability is a fixed availability set, sufficient for most
// deployments and for tests.
type StaticAvailability map[Provider]bool

func (s StaticAvailability) IsAvailable(p Provider) bool { return s[p] }

// Choice is the Model Router's output.
type Choice struct {
	Model          string
	Provider       Provider
	EstimatedCost  float64
	Reason         string
	Rung           int
}

// Router holds the configured model table and the components the ladder
// consults: a Budget Tracker for cloud-free affordability, and an
// availability source for local/cloud-free reachability.
type Router struct {
	models  []ModelSpec
	tracker *budget.Tracker
	metrics *metrics.Collector

	localModel     string
	cloudFreeModel string
	cheapModel     string
	balancedModel  string
	premiumModel   string
}

// Option configures a Router at construction.
type Option func(*Router)

// WithMetrics wires the Prometheus collector the router updates with
// decision counts and estimated-cost histograms.
func WithMetrics(m *metrics.Collector) Option {
	return func(r *Router) { r.metrics = m }
}

// New constructs a Router. modelByRung names the model used for each
// ladder rung (local, cloud_free, cheap_paid, balanced_paid,
// premium_paid); models is the full spec table used to validate
// max_tokens and recommended bands.
func New(models []ModelSpec, tracker *budget.Tracker, modelByRung map[Provider]string, opts ...Option) *Router {
	r := &Router{
		models:         models,
		tracker:        tracker,
		localModel:     modelByRung[ProviderLocal],
		cloudFreeModel: modelByRung[ProviderCloudFree],
		cheapModel:     modelByRung[ProviderCheapPaid],
		balancedModel:  modelByRung[ProviderBalanced],
		premiumModel:   modelByRung[ProviderPremium],
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Router) spec(name string) (ModelSpec, bool) {
	for _, m := range r.models {
		if m.Name == name {
			return m, true
		}
	}
	return ModelSpec{}, false
}

func (r *Router) fits(name string, tokens int) bool {
	spec, ok := r.spec(name)
	if !ok {
		return false
	}
	return spec.MaxTokens >= tokens
}

func estimatedCost(spec ModelSpec, tokens int) float64 {
	inTokens := 0.7 * float64(tokens)
	outTokens := 0.3 * float64(tokens)
	return inTokens*spec.PriceInPerMillion/1_000_000 + outTokens*spec.PriceOutPerMillion/1_000_000
}

// Select implements select(tokens, complexity, availability, budget) →
// ModelChoice. The ladder is evaluated top-down; a rung
// that doesn't fit (missing spec, insufficient max_tokens, complexity
// outside the model's recommended band on rungs 1–4, unaffordable)
// falls through to the next.
func (r *Router) Select(ctx context.Context, tokens int, complexity float64, avail Availability) (Choice, error) {
	rung := 1

	// suits checks max_tokens and the recommended band; the last rung
	// checks max_tokens only.
	suits := func(name string) bool {
		spec, ok := r.spec(name)
		return ok && spec.MaxTokens >= tokens && spec.RecommendedBand.Contains(complexity)
	}

	// Rung 1: local, zero cost.
	if tokens < 8000 && complexity < 0.6 && avail != nil && avail.IsAvailable(ProviderLocal) && suits(r.localModel) {
		return r.choose(r.localModel, ProviderLocal, tokens, rung, "small request, low complexity, local model available")
	}
	rung++

	// Rung 2: cloud-free, zero cost but budget-gated.
	if avail != nil && avail.IsAvailable(ProviderCloudFree) && suits(r.cloudFreeModel) && tokens < 50_000 && complexity < 0.7 {
		afford := true
		if r.tracker != nil {
			var err error
			afford, err = r.tracker.CanAfford(ctx, string(ProviderCloudFree), r.cloudFreeModel, int64(tokens))
			if err != nil {
				return Choice{}, err
			}
		}
		if afford {
			return r.choose(r.cloudFreeModel, ProviderCloudFree, tokens, rung, "within cloud-free budget and complexity band")
		}
	}
	rung++

	// Rung 3: cheap paid (Haiku-class).
	if tokens < 50_000 && complexity < 0.6 && suits(r.cheapModel) {
		return r.choose(r.cheapModel, ProviderCheapPaid, tokens, rung, "low complexity, fits cheap-paid token window")
	}
	rung++

	// Rung 4: balanced paid (Sonnet-class).
	if tokens < 100_000 && suits(r.balancedModel) {
		return r.choose(r.balancedModel, ProviderBalanced, tokens, rung, "moderate size/complexity, balanced model")
	}
	rung++

	// Rung 5: premium paid (Opus-class), last rung.
	if r.fits(r.premiumModel, tokens) {
		return r.choose(r.premiumModel, ProviderPremium, tokens, rung, "exceeds lower rungs' token or complexity ceiling")
	}

	return Choice{}, &noViableModelError{tokens: tokens}
}

func (r *Router) choose(name string, provider Provider, tokens, rung int, reason string) (Choice, error) {
	spec, ok := r.spec(name)
	if !ok {
		return Choice{}, &unknownModelError{model: name}
	}
	cost := estimatedCost(spec, tokens)
	if r.metrics != nil {
		r.metrics.RouterDecisions.WithLabelValues(rungLabel(rung), string(provider), name).Inc()
		r.metrics.RouterEstimatedCost.WithLabelValues(string(provider), name).Observe(cost)
	}
	return Choice{Model: name, Provider: provider, EstimatedCost: cost, Reason: reason, Rung: rung}, nil
}

func rungLabel(rung int) string {
	switch rung {
	case 1:
		return "local"
	case 2:
		return "cloud_free"
	case 3:
		return "cheap_paid"
	case 4:
		return "balanced_paid"
	default:
		return "premium_paid"
	}
}

type unknownModelError struct{ model string }

func (e *unknownModelError) Error() string { return "router: unknown model " + e.model }

type noViableModelError struct{ tokens int }

func (e *noViableModelError) Error() string {
	return fmt.Sprintf("router: no configured model can hold %d tokens", e.tokens)
}
