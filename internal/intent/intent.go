// Package intent implements the Intent Detector (C5): classifying a raw
// query into a structured Intent that downstream components (Scorer,
// Selector, Compressor) use to shape retrieval.
package intent

import (
	"regexp"
	"strings"
)

// Type is the query's classified purpose.
type Type string

const (
	TypeBugFix     Type = "bug_fix"
	TypeTest       Type = "test"
	TypeRefactor   Type = "refactor"
	TypeFeatureAdd Type = "feature_add"
	TypeExplain    Type = "explain"
	TypeSearch     Type = "search"
	TypeGeneral    Type = "general"
)

// Scope bounds how much of the codebase a query concerns.
type Scope string

const (
	ScopeCurrentFile Scope = "current_file"
	ScopeCurrentDir  Scope = "current_dir"
	ScopeProject     Scope = "project"
)

// EntityKind classifies an extracted entity.
type EntityKind string

const (
	EntitySymbol  EntityKind = "symbol"
	EntityFile    EntityKind = "file"
	EntityKeyword EntityKind = "keyword"
)

// Entity is a span of the query recognized as referring to code.
type Entity struct {
	Kind       EntityKind
	Value      string
	Confidence float64
}

// Options are the derived retrieval knobs for this intent.
type Options struct {
	MaxChunks         int
	MinRelevance      float64
	CompressionLevel  string
	PreferDiversity   bool
}

// Intent is the Intent Detector's output.
type Intent struct {
	Type             Type
	Scope            Scope
	Entities         []Entity
	Complexity       float64
	RequiresHistory  bool
	EstimatedBudget  int
	Options          Options
}

// classification priority: bug_fix > test > refactor > feature_add >
// explain > search > general. First match wins.
var classificationCues = []struct {
	typ      Type
	pattern  *regexp.Regexp
}{
	{TypeBugFix, regexp.MustCompile(`(?i)\b(bug|fix|broken|crash|error|fail(?:ing|ure)?|wrong|incorrect|regression)\b`)},
	{TypeTest, regexp.MustCompile(`(?i)\b(test|spec|unit test|coverage|assert)\b`)},
	{TypeRefactor, regexp.MustCompile(`(?i)\b(refactor|clean ?up|restructure|rename|simplify|extract)\b`)},
	{TypeFeatureAdd, regexp.MustCompile(`(?i)\b(add|implement|create|build|new feature|support for)\b`)},
	{TypeExplain, regexp.MustCompile(`(?i)\b(explain|how does|what is|what does|understand|walk me through)\b`)},
	{TypeSearch, regexp.MustCompile(`(?i)\b(find|search|locate|where is|look for)\b`)},
}

var (
	backtickSpan  = regexp.MustCompile("`([^`]+)`")
	quotedSpan    = regexp.MustCompile(`"([^"]+)"`)
	filePattern   = regexp.MustCompile(`[\w/]+\.[a-zA-Z]{1,4}\b`)
	anaphora      = regexp.MustCompile(`(?i)\b(it|that|those|also|as well)\b`)
	scopeFile     = regexp.MustCompile(`(?i)\bthis file\b`)
	scopeDir      = regexp.MustCompile(`(?i)\b(directory|folder|module)\b`)
	scopeProject  = regexp.MustCompile(`(?i)\b(project|codebase|everywhere)\b`)
)

// keywordEntities is the closed list of domain keywords recognized as
// keyword-kind entities when they appear as a standalone word.
var keywordEntities = []string{
	"authentication", "authorization", "cache", "caching", "database",
	"api", "endpoint", "middleware", "config", "configuration", "logging",
	"error handling", "validation", "routing", "serialization",
}

// budgetBase is the per-type base budget (tokens) before the scope
// multiplier.
var budgetBase = map[Type]int{
	TypeBugFix:     6000,
	TypeFeatureAdd: 5000,
	TypeRefactor:   4500,
	TypeTest:       3500,
	TypeExplain:    3000,
	TypeSearch:     2000,
	TypeGeneral:    1500,
}

var scopeWeight = map[Scope]float64{
	ScopeCurrentFile: 0.6,
	ScopeCurrentDir:  0.8,
	ScopeProject:     1.0,
}

// Detect implements detect(query, optional_context) → Intent.
func Detect(query string, hasHistory bool) Intent {
	trimmed := strings.TrimSpace(query)

	typ := classify(trimmed)
	scope := detectScope(trimmed)
	entities := extractEntities(trimmed)
	complexity := estimateComplexity(trimmed, entities)
	requiresHistory := hasHistory && anaphora.MatchString(trimmed)

	budget := deriveBudget(typ, scope, complexity)
	options := deriveOptions(scope, budget, complexity)

	return Intent{
		Type:            typ,
		Scope:           scope,
		Entities:        entities,
		Complexity:      complexity,
		RequiresHistory: requiresHistory,
		EstimatedBudget: budget,
		Options:         options,
	}
}

func classify(query string) Type {
	for _, cue := range classificationCues {
		if cue.pattern.MatchString(query) {
			return cue.typ
		}
	}
	return TypeGeneral
}

func detectScope(query string) Scope {
	switch {
	case scopeFile.MatchString(query):
		return ScopeCurrentFile
	case scopeDir.MatchString(query):
		return ScopeCurrentDir
	case scopeProject.MatchString(query):
		return ScopeProject
	default:
		return ScopeProject
	}
}

func extractEntities(query string) []Entity {
	var entities []Entity
	seen := make(map[string]struct{})

	add := func(kind EntityKind, value string, confidence float64) {
		key := string(kind) + ":" + value
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		entities = append(entities, Entity{Kind: kind, Value: value, Confidence: confidence})
	}

	for _, m := range backtickSpan.FindAllStringSubmatch(query, -1) {
		add(EntitySymbol, m[1], 0.9)
	}
	for _, m := range quotedSpan.FindAllStringSubmatch(query, -1) {
		add(EntitySymbol, m[1], 0.8)
	}
	for _, m := range filePattern.FindAllString(query, -1) {
		add(EntityFile, m, 0.85)
	}

	lower := strings.ToLower(query)
	for _, kw := range keywordEntities {
		if strings.Contains(lower, kw) {
			add(EntityKeyword, kw, 0.6)
		}
	}

	return entities
}

// estimateComplexity feeds the complexity analyzer's query-side signal:
// more entities and longer queries raise it, capped at 1.0.
func estimateComplexity(query string, entities []Entity) float64 {
	words := len(strings.Fields(query))
	score := 0.1*float64(len(entities)) + float64(words)/40.0
	if score > 1 {
		score = 1
	}
	return score
}

func deriveBudget(typ Type, scope Scope, complexity float64) int {
	base, ok := budgetBase[typ]
	if !ok {
		base = budgetBase[TypeGeneral]
	}
	weight := scopeWeight[scope]
	if weight == 0 {
		weight = scopeWeight[ScopeProject]
	}
	budget := float64(base) * weight * (0.75 + 0.5*complexity)
	return int(budget)
}

func deriveOptions(scope Scope, budget int, complexity float64) Options {
	minRelevance := 0.3
	switch scope {
	case ScopeCurrentDir:
		minRelevance = 0.4
	case ScopeProject:
		minRelevance = 0.5
	}

	maxChunks := budget / 500
	if maxChunks < 3 {
		maxChunks = 3
	}
	if maxChunks > 50 {
		maxChunks = 50
	}

	compressionLevel := "light"
	switch {
	case complexity >= 0.66:
		compressionLevel = "aggressive"
	case complexity >= 0.33:
		compressionLevel = "medium"
	}

	return Options{
		MaxChunks:        maxChunks,
		MinRelevance:     minRelevance,
		CompressionLevel: compressionLevel,
		PreferDiversity:  scope == ScopeProject,
	}
}
