package config

import "fmt"

// Validate checks a loaded Config for the combinations the peripheral
// layer cannot recover from at runtime.
func Validate(cfg *Config) error {
	switch cfg.Embedding.Provider {
	case "http", "mock":
	default:
		return fmt.Errorf("embedding.provider must be \"http\" or \"mock\", got %q", cfg.Embedding.Provider)
	}
	if cfg.Embedding.Provider == "http" && cfg.Embedding.Endpoint == "" {
		return fmt.Errorf("embedding.endpoint is required when embedding.provider is \"http\"")
	}
	if cfg.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding.dimensions must be positive, got %d", cfg.Embedding.Dimensions)
	}
	if len(cfg.Router.Models) == 0 {
		return fmt.Errorf("router.models must not be empty")
	}
	for _, m := range cfg.Router.Models {
		if m.Name == "" {
			return fmt.Errorf("router.models entries must have a name")
		}
		if m.BandMin > m.BandMax {
			return fmt.Errorf("router.models[%s]: band_min %.2f exceeds band_max %.2f", m.Name, m.BandMin, m.BandMax)
		}
	}
	return nil
}
