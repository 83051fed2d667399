package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Test Plan:
// - Validate() accepts the default configuration
// - Validate() rejects an unknown embedding provider
// - Validate() rejects an "http" provider with no endpoint
// - Validate() rejects non-positive dimensions
// - Validate() rejects an empty router model table
// - Validate() rejects a model with band_min > band_max

func TestValidate_AcceptsDefault(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Validate(Default()))
}

func TestValidate_RejectsUnknownProvider(t *testing.T) {
	t.Parallel()
	cfg := Default()
	cfg.Embedding.Provider = "onnx"
	assert.Error(t, Validate(cfg))
}

func TestValidate_RejectsHTTPWithoutEndpoint(t *testing.T) {
	t.Parallel()
	cfg := Default()
	cfg.Embedding.Provider = "http"
	cfg.Embedding.Endpoint = ""
	assert.Error(t, Validate(cfg))
}

func TestValidate_RejectsNonPositiveDimensions(t *testing.T) {
	t.Parallel()
	cfg := Default()
	cfg.Embedding.Dimensions = 0
	assert.Error(t, Validate(cfg))
}

func TestValidate_RejectsEmptyModelTable(t *testing.T) {
	t.Parallel()
	cfg := Default()
	cfg.Router.Models = nil
	assert.Error(t, Validate(cfg))
}

func TestValidate_RejectsInvertedBand(t *testing.T) {
	t.Parallel()
	cfg := Default()
	cfg.Router.Models[0].BandMin = 0.9
	cfg.Router.Models[0].BandMax = 0.1
	assert.Error(t, Validate(cfg))
}
