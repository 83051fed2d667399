// Package embedding defines the narrow external capability (C2) that the
// core consumes to turn text into unit-norm vectors. Embedding generation
// itself is out of scope ; this package only
// specifies and enforces the contract a provider must satisfy.
package embedding

import (
	"context"
	"math"

	"github.com/prism-dev/prism/internal/prismerr"
)

// Mode specifies whether a text is a search query or an indexable passage.
// Many embedding models produce better results when queries and passages
// are embedded with different instruction prefixes.
type Mode string

const (
	ModeQuery   Mode = "query"
	ModePassage Mode = "passage"
)

// Provider produces fixed-dimension, unit-norm vectors for text. It must
// be deterministic for identical input within a deployment, and every
// vector it returns must already be unit-norm (‖v‖₂ = 1 ± 1e-5,
// len(v) == Dimensions()).
type Provider interface {
	// Embed converts texts into vectors. Implementations must either
	// return len(texts) vectors or a non-nil error — no partial results.
	Embed(ctx context.Context, texts []string, mode Mode) ([][]float32, error)

	// Dimensions returns D, fixed for the lifetime of the provider.
	Dimensions() int

	// Close releases provider resources (connections, subprocesses).
	Close() error
}

// Normalize scales v to unit L2 norm in place and returns it. A
// provider whose raw output is not already unit-norm should call this
// before returning, so that every vector leaving this package is
// unconditionally unit-norm.
func Normalize(v []float32) []float32 {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	norm := math.Sqrt(sumSq)
	if norm == 0 {
		return v
	}
	for i, x := range v {
		v[i] = float32(float64(x) / norm)
	}
	return v
}

// Validate checks a batch of vectors for unit-norm and the provider's
// declared dimensionality, failing closed:
// a provider that can't embed something returns an error rather than a
// zero-signal pseudo-embedding.
func Validate(vectors [][]float32, dimensions int) error {
	for i, v := range vectors {
		if len(v) != dimensions {
			return prismerr.Validation("embedding_dimension_mismatch",
				nil).WithDetail("index", i).WithDetail("got", len(v)).WithDetail("want", dimensions)
		}
		var sumSq float64
		for _, x := range v {
			sumSq += float64(x) * float64(x)
		}
		norm := math.Sqrt(sumSq)
		if math.Abs(norm-1.0) > 1e-5 {
			return prismerr.Validation("embedding_not_unit_norm", nil).
				WithDetail("index", i).WithDetail("norm", norm)
		}
	}
	return nil
}
