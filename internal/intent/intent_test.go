package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Test Plan:
// - classification priority order: bug_fix beats test/refactor/etc when cues overlap
// - entity extraction: backticks/quotes → symbol, extension tokens → file, closed list → keyword
// - scope detection: demonstratives/directory/project cues, default project
// - requires_history fires only when context exists AND anaphora appears
// - options derivation bands compression level by complexity and scales max_chunks with budget

func TestDetect_ClassificationPriority(t *testing.T) {
	t.Parallel()
	got := Detect("fix the failing test for login", false)
	assert.Equal(t, TypeBugFix, got.Type, "bug_fix cues outrank test cues")
}

func TestDetect_EntityExtraction(t *testing.T) {
	t.Parallel()
	got := Detect("why does `ParseConfig` in config/loader.go return \"invalid input\"", false)

	var symbols, files []string
	for _, e := range got.Entities {
		switch e.Kind {
		case EntitySymbol:
			symbols = append(symbols, e.Value)
		case EntityFile:
			files = append(files, e.Value)
		}
	}
	assert.Contains(t, symbols, "ParseConfig")
	assert.Contains(t, symbols, "invalid input")
	assert.Contains(t, files, "config/loader.go")
}

func TestDetect_KeywordEntity(t *testing.T) {
	t.Parallel()
	got := Detect("explain how the caching layer works", false)
	found := false
	for _, e := range got.Entities {
		if e.Kind == EntityKeyword && e.Value == "caching" {
			found = true
		}
	}
	assert.True(t, found)
	assert.Equal(t, TypeExplain, got.Type)
}

func TestDetect_Scope(t *testing.T) {
	t.Parallel()
	assert.Equal(t, ScopeCurrentFile, Detect("what does this file do", false).Scope)
	assert.Equal(t, ScopeCurrentDir, Detect("refactor this directory", false).Scope)
	assert.Equal(t, ScopeProject, Detect("find usages across the codebase", false).Scope)
	assert.Equal(t, ScopeProject, Detect("add a retry helper", false).Scope, "default scope is project")
}

func TestDetect_RequiresHistory(t *testing.T) {
	t.Parallel()
	assert.True(t, Detect("can you fix that too", true).RequiresHistory)
	assert.False(t, Detect("can you fix that too", false).RequiresHistory, "no history available to resolve the anaphora")
	assert.False(t, Detect("add a new endpoint for orders", true).RequiresHistory, "no anaphora present")
}

func TestDetect_OptionsDerivation(t *testing.T) {
	t.Parallel()
	simple := Detect("find the logger", false)
	assert.Equal(t, "light", simple.Options.CompressionLevel)

	complexQuery := Detect("refactor the `OrderProcessor`, `PaymentGateway`, `InventoryService`, and `NotificationQueue` integration across the entire project to support async retries, idempotency keys, and dead-letter queues", false)
	assert.Equal(t, "aggressive", complexQuery.Options.CompressionLevel)
	assert.True(t, complexQuery.Options.PreferDiversity)
	assert.GreaterOrEqual(t, complexQuery.Options.MaxChunks, simple.Options.MaxChunks)
}

func TestDetect_BudgetMonotonicByScope(t *testing.T) {
	t.Parallel()
	fileScope := Detect("fix the bug in this file", false)
	projectScope := Detect("fix the bug across the codebase", false)
	assert.Less(t, fileScope.EstimatedBudget, projectScope.EstimatedBudget)
}
