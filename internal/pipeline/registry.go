package pipeline

import (
	"github.com/prism-dev/prism/internal/embedding"
	"github.com/prism-dev/prism/internal/router"
	"github.com/prism-dev/prism/internal/vectorstore"
)

// Registry holds the concrete backends a deployment registers once at
// startup, instead of an ambient singleton or dynamic dispatch:
// embedding providers, vector stores, and routable
// models are each an abstract capability with named concrete backends,
// passed to callers explicitly rather than looked up globally.
type Registry struct {
	embedders    map[string]embedding.Provider
	stores       map[string]vectorstore.Store
	availability router.StaticAvailability
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		embedders:    make(map[string]embedding.Provider),
		stores:       make(map[string]vectorstore.Store),
		availability: make(router.StaticAvailability),
	}
}

// RegisterEmbedder names a concrete embedding.Provider.
func (r *Registry) RegisterEmbedder(name string, p embedding.Provider) {
	r.embedders[name] = p
}

// Embedder looks up a previously registered embedding.Provider.
func (r *Registry) Embedder(name string) (embedding.Provider, bool) {
	p, ok := r.embedders[name]
	return p, ok
}

// RegisterStore names a concrete vectorstore.Store.
func (r *Registry) RegisterStore(name string, s vectorstore.Store) {
	r.stores[name] = s
}

// Store looks up a previously registered vectorstore.Store.
func (r *Registry) Store(name string) (vectorstore.Store, bool) {
	s, ok := r.stores[name]
	return s, ok
}

// SetAvailable marks a model-router provider tag as reachable. Paid
// providers default to available; local and cloud-free providers must
// be registered explicitly once their backend is confirmed reachable.
func (r *Registry) SetAvailable(p router.Provider, available bool) {
	r.availability[p] = available
}

// Availability returns the registry's current availability view, for
// use as the router.Availability argument to Engine.Answer.
func (r *Registry) Availability() router.Availability {
	return r.availability
}
