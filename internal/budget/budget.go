// Package budget implements the Budget Tracker (C10): per-provider daily
// spend limits with a midnight-UTC reset boundary, a 90%-threshold alert
// side effect, and an optional Redis-backed store for deployments that
// need the tracker's state shared across processes.
package budget

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/prism-dev/prism/internal/metrics"
	"github.com/prism-dev/prism/internal/prismerr"
)

// CostTable maps a model name to its cost in billing units per million
// tokens tracked. The unit is provider-defined (USD for paid models,
// "neurons" for cloud-free tiers per the GLOSSARY).
type CostTable map[string]float64

// Stats is a provider's spend snapshot: {used, remaining, percentage, resets_at}.
type Stats struct {
	Used       float64
	Remaining  float64
	Percentage float64
	ResetsAt   int64 // unix ms
}

// AlertFunc is invoked as an observable side effect, not an error, the
// first time a track() call leaves a provider above 90% of its daily
// limit within the current reset window.
type AlertFunc func(provider string, stats Stats)

// Store persists per-provider budget state. The default in-memory
// implementation satisfies it directly; a Redis-backed implementation
// is provided for multi-process deployments, mirroring the underlying service
// corpus's Redis-with-in-memory-fallback rate limiter.
type Store interface {
	// Load returns the current state for provider, or (zero, false) if
	// no state has ever been recorded.
	Load(ctx context.Context, provider string) (state, bool, error)
	// Save persists state for provider.
	Save(ctx context.Context, provider string, s state) error
}

type state struct {
	Used       float64
	ResetsAt   int64
	Alerted    bool
	DailyLimit float64
}

// Tracker is the Budget Tracker. It is one of the few legitimately
// shared, mutable core components; callers hold one instance
// per deployment and pass it explicitly.
type Tracker struct {
	mu      sync.Mutex
	store   Store
	costs   map[string]CostTable // per provider
	limits  map[string]float64   // per provider, daily limit
	alert   AlertFunc
	metrics *metrics.Collector
	nowFunc func() time.Time
}

// Option configures a Tracker at construction.
type Option func(*Tracker)

// WithAlert registers the side effect fired when a provider crosses 90%
// of its daily limit.
func WithAlert(fn AlertFunc) Option {
	return func(t *Tracker) { t.alert = fn }
}

// WithMetrics wires the Prometheus collector the tracker updates on
// every Track call.
func WithMetrics(m *metrics.Collector) Option {
	return func(t *Tracker) { t.metrics = m }
}

// WithClock overrides the tracker's notion of "now", for deterministic
// tests of the midnight-UTC reset boundary.
func WithClock(fn func() time.Time) Option {
	return func(t *Tracker) { t.nowFunc = fn }
}

// New constructs a Tracker backed by store, with a daily limit and cost
// table per provider.
func New(store Store, limits map[string]float64, costs map[string]CostTable, opts ...Option) *Tracker {
	t := &Tracker{
		store:   store,
		costs:   costs,
		limits:  limits,
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func nextMidnightUTC(from time.Time) int64 {
	u := from.UTC()
	next := time.Date(u.Year(), u.Month(), u.Day()+1, 0, 0, 0, 0, time.UTC)
	return next.UnixMilli()
}

func (t *Tracker) loadOrInit(ctx context.Context, provider string) (state, error) {
	now := t.nowFunc()
	s, ok, err := t.store.Load(ctx, provider)
	if err != nil {
		return state{}, prismerr.Storage("budget.load", err)
	}
	limit := t.limits[provider]
	if !ok {
		s = state{Used: 0, ResetsAt: nextMidnightUTC(now), DailyLimit: limit}
		return s, nil
	}
	if now.UnixMilli() >= s.ResetsAt {
		s = state{Used: 0, ResetsAt: nextMidnightUTC(now), DailyLimit: limit}
	}
	s.DailyLimit = limit
	return s, nil
}

func (t *Tracker) cost(provider, model string, tokens int64) float64 {
	table, ok := t.costs[provider]
	if !ok {
		return 0
	}
	perMillion, ok := table[model]
	if !ok {
		return 0
	}
	return perMillion * float64(tokens) / 1_000_000
}

// CanAfford reports whether tracking tokens for model would keep the
// provider within its daily limit, without mutating state.
func (t *Tracker) CanAfford(ctx context.Context, provider, model string, tokens int64) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := t.loadOrInit(ctx, provider)
	if err != nil {
		return false, err
	}
	cost := t.cost(provider, model, tokens)
	return s.Used+cost <= s.DailyLimit, nil
}

// Track records tokens spent against model for provider. A CanAfford
// immediately followed by Track in the same request observes the
// post-Track state because both hold the
// same mutex and persist through the same Store.
func (t *Tracker) Track(ctx context.Context, provider, model string, tokens int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := t.loadOrInit(ctx, provider)
	if err != nil {
		return err
	}
	s.Used += t.cost(provider, model, tokens)

	if err := t.store.Save(ctx, provider, s); err != nil {
		return prismerr.Storage("budget.save", err)
	}

	if t.metrics != nil {
		t.metrics.BudgetTokensTracked.WithLabelValues(provider, model).Add(float64(tokens))
		t.metrics.BudgetRemaining.WithLabelValues(provider).Set(s.DailyLimit - s.Used)
	}

	if s.DailyLimit > 0 && s.Used > 0.9*s.DailyLimit && !s.Alerted {
		s.Alerted = true
		if err := t.store.Save(ctx, provider, s); err != nil {
			return prismerr.Storage("budget.save", err)
		}
		if t.alert != nil {
			t.alert(provider, statsFrom(s))
		}
		if t.metrics != nil {
			t.metrics.BudgetAlerts.WithLabelValues(provider).Inc()
		}
	}
	return nil
}

// Remaining returns the provider's remaining budget units for the
// current window.
func (t *Tracker) Remaining(ctx context.Context, provider string) (float64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, err := t.loadOrInit(ctx, provider)
	if err != nil {
		return 0, err
	}
	return s.DailyLimit - s.Used, nil
}

// Stats returns the provider's full budget snapshot.
func (t *Tracker) Stats(ctx context.Context, provider string) (Stats, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, err := t.loadOrInit(ctx, provider)
	if err != nil {
		return Stats{}, err
	}
	return statsFrom(s), nil
}

func statsFrom(s state) Stats {
	pct := 0.0
	if s.DailyLimit > 0 {
		pct = s.Used / s.DailyLimit
	}
	return Stats{
		Used:       s.Used,
		Remaining:  s.DailyLimit - s.Used,
		Percentage: pct,
		ResetsAt:   s.ResetsAt,
	}
}

// MemoryStore is the default in-process Store implementation.
type MemoryStore struct {
	mu     sync.Mutex
	states map[string]state
}

// NewMemoryStore constructs an empty in-memory Store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]state)}
}

func (m *MemoryStore) Load(_ context.Context, provider string) (state, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.states[provider]
	return s, ok, nil
}

func (m *MemoryStore) Save(_ context.Context, provider string, s state) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[provider] = s
	return nil
}

// RedisStore persists budget state in Redis as a hash per provider,
// giving the tracker's reset-boundary behavior a durable backend that
// survives process restarts.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStore constructs a RedisStore. keyPrefix namespaces keys
// ("prism:budget:" by default) to avoid collisions with other Redis
// consumers sharing the instance.
func NewRedisStore(client *redis.Client, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = "prism:budget:"
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix}
}

func (r *RedisStore) key(provider string) string {
	return r.keyPrefix + provider
}

func (r *RedisStore) Load(ctx context.Context, provider string) (state, bool, error) {
	vals, err := r.client.HGetAll(ctx, r.key(provider)).Result()
	if err != nil {
		return state{}, false, err
	}
	if len(vals) == 0 {
		return state{}, false, nil
	}
	var s state
	if v, ok := vals["used"]; ok {
		s.Used, _ = strconv.ParseFloat(v, 64)
	}
	if v, ok := vals["resets_at"]; ok {
		s.ResetsAt, _ = strconv.ParseInt(v, 10, 64)
	}
	if v, ok := vals["daily_limit"]; ok {
		s.DailyLimit, _ = strconv.ParseFloat(v, 64)
	}
	s.Alerted = vals["alerted"] == "1"
	return s, true, nil
}

func (r *RedisStore) Save(ctx context.Context, provider string, s state) error {
	alerted := "0"
	if s.Alerted {
		alerted = "1"
	}
	return r.client.HSet(ctx, r.key(provider), map[string]interface{}{
		"used":        s.Used,
		"resets_at":   s.ResetsAt,
		"daily_limit": s.DailyLimit,
		"alerted":     alerted,
	}).Err()
}
