// Package config loads the peripheral layer's settings. The core
// components never read config themselves — they take explicit struct
// arguments — so this package is only imported by
// the peripheral layer (internal/cli and cmd/prism-mcp).
package config

// Config is the complete prism peripheral configuration. It can be loaded
// from .prism/config.yml with environment variable overrides.
type Config struct {
	Embedding EmbeddingConfig `yaml:"embedding" mapstructure:"embedding"`
	Chunking  ChunkingConfig  `yaml:"chunking" mapstructure:"chunking"`
	Router    RouterConfig    `yaml:"router" mapstructure:"router"`
	Budget    BudgetConfig    `yaml:"budget" mapstructure:"budget"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
}

// EmbeddingConfig configures the embedding provider (internal/embedding.Config).
type EmbeddingConfig struct {
	Provider   string `yaml:"provider" mapstructure:"provider"` // "http" or "mock"
	Endpoint   string `yaml:"endpoint" mapstructure:"endpoint"`
	Dimensions int    `yaml:"dimensions" mapstructure:"dimensions"`
	TimeoutMs  int    `yaml:"timeout_ms" mapstructure:"timeout_ms"`
}

// ChunkingConfig bounds the Indexer's chunk sizes.
type ChunkingConfig struct {
	MaxLines int `yaml:"max_lines" mapstructure:"max_lines"`
}

// ModelConfig is one entry in the router's model table.
type ModelConfig struct {
	Name               string  `yaml:"name" mapstructure:"name"`
	Provider           string  `yaml:"provider" mapstructure:"provider"`
	MaxTokens          int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	PriceInPerMillion  float64 `yaml:"price_in_per_million" mapstructure:"price_in_per_million"`
	PriceOutPerMillion float64 `yaml:"price_out_per_million" mapstructure:"price_out_per_million"`
	BandMin            float64 `yaml:"band_min" mapstructure:"band_min"`
	BandMax            float64 `yaml:"band_max" mapstructure:"band_max"`
}

// RouterConfig carries the Model Router's static model table and each
// model's decision-ladder rung assignment.
type RouterConfig struct {
	Models []ModelConfig `yaml:"models" mapstructure:"models"`
}

// ProviderBudget is one provider's daily spend limit and cost table,
// keyed by model name within Costs.
type ProviderBudget struct {
	Provider   string             `yaml:"provider" mapstructure:"provider"`
	DailyLimit float64            `yaml:"daily_limit" mapstructure:"daily_limit"`
	Costs      map[string]float64 `yaml:"costs" mapstructure:"costs"`
}

// BudgetConfig carries per-provider daily budgets for the Budget Tracker.
type BudgetConfig struct {
	Providers []ProviderBudget `yaml:"providers" mapstructure:"providers"`
	Redis     RedisConfig      `yaml:"redis" mapstructure:"redis"`
}

// RedisConfig optionally backs the Budget Tracker with the distributed
// store instead of the in-memory default.
type RedisConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Addr    string `yaml:"addr" mapstructure:"addr"`
	DB      int    `yaml:"db" mapstructure:"db"`
}

// StoreConfig bounds the Vector Store's in-process cache.
type StoreConfig struct {
	CacheCapacity int `yaml:"cache_capacity" mapstructure:"cache_capacity"`
}

// Default returns a configuration with sensible defaults: a local-first
// posture with a mock embedding provider until an endpoint is configured,
// generous chunk sizes, and no paid budget.
func Default() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Provider:   "mock",
			Dimensions: 384,
			TimeoutMs:  30_000,
		},
		Chunking: ChunkingConfig{
			MaxLines: 200,
		},
		Router: RouterConfig{
			Models: []ModelConfig{
				{Name: "local-7b", Provider: "local", MaxTokens: 32_000, BandMin: 0, BandMax: 0.6},
				{Name: "haiku", Provider: "cheap_paid", MaxTokens: 100_000, PriceInPerMillion: 0.25, PriceOutPerMillion: 1.25, BandMin: 0, BandMax: 0.6},
				{Name: "sonnet", Provider: "balanced_paid", MaxTokens: 200_000, PriceInPerMillion: 3, PriceOutPerMillion: 15, BandMin: 0.4, BandMax: 0.85},
				{Name: "opus", Provider: "premium_paid", MaxTokens: 200_000, PriceInPerMillion: 15, PriceOutPerMillion: 75, BandMin: 0.7, BandMax: 1},
			},
		},
		Budget: BudgetConfig{
			Providers: []ProviderBudget{
				{Provider: "cheap_paid", DailyLimit: 0, Costs: map[string]float64{"haiku": 0.25}},
				{Provider: "balanced_paid", DailyLimit: 0, Costs: map[string]float64{"sonnet": 3}},
				{Provider: "premium_paid", DailyLimit: 0, Costs: map[string]float64{"opus": 15}},
			},
		},
		Store: StoreConfig{
			CacheCapacity: 10_000,
		},
	}
}
