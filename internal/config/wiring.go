package config

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/prism-dev/prism/internal/budget"
	"github.com/prism-dev/prism/internal/embedding"
	"github.com/prism-dev/prism/internal/graphindex"
	"github.com/prism-dev/prism/internal/metrics"
	"github.com/prism-dev/prism/internal/pipeline"
	"github.com/prism-dev/prism/internal/router"
	"github.com/prism-dev/prism/internal/vectorstore"
)

// BuildEngine wires the concrete C1-C11 implementations from a loaded
// Config the way embed_common.go / indexer_common.go assemble shared
// dependencies for the subcommands. The returned cleanup
// closes the embedding provider and vector store.
func BuildEngine(cfg *Config) (*pipeline.Engine, func(), error) {
	embedder, err := embedding.New(embedding.Config{
		Provider:   cfg.Embedding.Provider,
		Endpoint:   cfg.Embedding.Endpoint,
		Dimensions: cfg.Embedding.Dimensions,
		Timeout:    time.Duration(cfg.Embedding.TimeoutMs) * time.Millisecond,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create embedding provider: %w", err)
	}

	store, err := vectorstore.New(cfg.Store.CacheCapacity)
	if err != nil {
		embedder.Close()
		return nil, nil, fmt.Errorf("failed to create vector store: %w", err)
	}

	graph := graphindex.New()

	collector := metrics.New("prism")

	var budgetStore budget.Store
	if cfg.Budget.Redis.Enabled {
		client := redis.NewClient(&redis.Options{Addr: cfg.Budget.Redis.Addr, DB: cfg.Budget.Redis.DB})
		budgetStore = budget.NewRedisStore(client, "prism:budget:")
	} else {
		budgetStore = budget.NewMemoryStore()
	}

	limits := make(map[string]float64, len(cfg.Budget.Providers))
	costs := make(map[string]budget.CostTable, len(cfg.Budget.Providers))
	for _, p := range cfg.Budget.Providers {
		limits[p.Provider] = p.DailyLimit
		costs[p.Provider] = budget.CostTable(p.Costs)
	}
	tracker := budget.New(budgetStore, limits, costs, budget.WithMetrics(collector))

	models := make([]router.ModelSpec, 0, len(cfg.Router.Models))
	modelByRung := make(map[router.Provider]string, len(cfg.Router.Models))
	for _, m := range cfg.Router.Models {
		spec := router.ModelSpec{
			Name:               m.Name,
			Provider:           router.Provider(m.Provider),
			MaxTokens:          m.MaxTokens,
			PriceInPerMillion:  m.PriceInPerMillion,
			PriceOutPerMillion: m.PriceOutPerMillion,
			RecommendedBand:    router.ComplexityBand{Min: m.BandMin, Max: m.BandMax},
		}
		models = append(models, spec)
		modelByRung[spec.Provider] = spec.Name
	}
	r := router.New(models, tracker, modelByRung, router.WithMetrics(collector))

	engine := pipeline.NewEngine(store, embedder, graph, r, pipeline.NewFeedbackStore(1000))

	cleanup := func() {
		_ = store.Close()
		_ = embedder.Close()
	}
	return engine, cleanup, nil
}
