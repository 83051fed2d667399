package router

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prism-dev/prism/internal/budget"
)

// Test Plan:
// - scenario 1: small, low-complexity request with local available picks local at zero cost
// - scenario 2: large/complex request with no local/cloud-free falls to balanced or premium
// - (P7) for any (tokens, complexity) the chosen model's max_tokens >= tokens
// - budget exhaustion on cloud-free falls through to the next rung

func testModels() []ModelSpec {
	return []ModelSpec{
		{Name: "local-7b", Provider: ProviderLocal, MaxTokens: 32_000, RecommendedBand: ComplexityBand{0, 0.6}},
		{Name: "cloud-free-8b", Provider: ProviderCloudFree, MaxTokens: 32_000, RecommendedBand: ComplexityBand{0, 0.7}},
		{Name: "haiku", Provider: ProviderCheapPaid, MaxTokens: 100_000, PriceInPerMillion: 0.25, PriceOutPerMillion: 1.25, RecommendedBand: ComplexityBand{0, 0.6}},
		{Name: "sonnet", Provider: ProviderBalanced, MaxTokens: 200_000, PriceInPerMillion: 3, PriceOutPerMillion: 15, RecommendedBand: ComplexityBand{0.4, 0.85}},
		{Name: "opus", Provider: ProviderPremium, MaxTokens: 200_000, PriceInPerMillion: 15, PriceOutPerMillion: 75, RecommendedBand: ComplexityBand{0.7, 1.0}},
	}
}

func rungNames() map[Provider]string {
	return map[Provider]string{
		ProviderLocal:     "local-7b",
		ProviderCloudFree: "cloud-free-8b",
		ProviderCheapPaid: "haiku",
		ProviderBalanced:  "sonnet",
		ProviderPremium:   "opus",
	}
}

func TestSelect_Scenario1_LocalForSmallSimpleQuery(t *testing.T) {
	t.Parallel()
	r := New(testModels(), nil, rungNames())
	avail := StaticAvailability{ProviderLocal: true, ProviderCloudFree: true}

	choice, err := r.Select(context.Background(), 2000, 0.2, avail)
	require.NoError(t, err)
	assert.Equal(t, ProviderLocal, choice.Provider)
	assert.Equal(t, 0.0, choice.EstimatedCost)
}

func TestSelect_Scenario2_ComplexQueryPicksBalancedOrBetter(t *testing.T) {
	t.Parallel()
	r := New(testModels(), nil, rungNames())
	avail := StaticAvailability{} // no local, no cloud-free

	choice, err := r.Select(context.Background(), 30_000, 0.8, avail)
	require.NoError(t, err)
	assert.Contains(t, []Provider{ProviderBalanced, ProviderPremium}, choice.Provider)
}

func TestSelect_NoProvidersAvailable_FallsThroughToPaid(t *testing.T) {
	t.Parallel()
	r := New(testModels(), nil, rungNames())
	choice, err := r.Select(context.Background(), 5000, 0.1, StaticAvailability{})
	require.NoError(t, err)
	assert.Equal(t, ProviderCheapPaid, choice.Provider)
}

func TestSelect_ViabilityMaxTokens(t *testing.T) {
	t.Parallel()
	r := New(testModels(), nil, rungNames())
	avail := StaticAvailability{ProviderLocal: true, ProviderCloudFree: true}

	for _, tc := range []struct {
		tokens     int
		complexity float64
	}{
		{1000, 0.1}, {10_000, 0.5}, {40_000, 0.65}, {90_000, 0.9}, {150_000, 0.95},
	} {
		choice, err := r.Select(context.Background(), tc.tokens, tc.complexity, avail)
		require.NoError(t, err)
		spec, ok := r.spec(choice.Model)
		require.True(t, ok)
		assert.GreaterOrEqual(t, spec.MaxTokens, tc.tokens)
	}
}

func TestSelect_ExceedsPremiumMaxTokens_ReturnsError(t *testing.T) {
	t.Parallel()
	r := New(testModels(), nil, rungNames())
	avail := StaticAvailability{ProviderLocal: true, ProviderCloudFree: true}

	_, err := r.Select(context.Background(), 500_000, 0.9, avail)
	require.Error(t, err)
}

func TestSelect_CloudFreeBudgetExhausted_FallsThrough(t *testing.T) {
	t.Parallel()
	costs := map[string]budget.CostTable{string(ProviderCloudFree): {"cloud-free-8b": 1_000_000}}
	limits := map[string]float64{string(ProviderCloudFree): 1}
	tracker := budget.New(budget.NewMemoryStore(), limits, costs)
	r := New(testModels(), tracker, rungNames())
	avail := StaticAvailability{ProviderCloudFree: true}

	choice, err := r.Select(context.Background(), 10_000, 0.3, avail)
	require.NoError(t, err)
	assert.NotEqual(t, ProviderCloudFree, choice.Provider)
}
