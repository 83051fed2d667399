package embedding

import (
	"fmt"
	"time"
)

// Config selects and parameterizes a Provider. This is a plain factory
// — no barrel/recursive-import indirection.
type Config struct {
	Provider   string // "http", "mock"
	Endpoint   string
	Dimensions int
	Timeout    time.Duration
}

// New constructs a Provider from Config.
func New(cfg Config) (Provider, error) {
	dims := cfg.Dimensions
	if dims <= 0 {
		dims = 384
	}

	switch cfg.Provider {
	case "http", "":
		if cfg.Endpoint == "" {
			return nil, fmt.Errorf("embedding: http provider requires an endpoint")
		}
		return NewHTTPProvider(cfg.Endpoint, dims, cfg.Timeout), nil
	case "mock":
		return NewMockProvider(dims), nil
	default:
		return nil, fmt.Errorf("embedding: unsupported provider %q (supported: http, mock)", cfg.Provider)
	}
}
