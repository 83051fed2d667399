// Package complexity implements the Complexity Analyzer (C9): a
// deterministic weighted sum of five factors scoring a query's
// difficulty in [0,1].
package complexity

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	weightLength       = 0.20
	weightKeyword      = 0.30
	weightStructure    = 0.20
	weightDependencies = 0.15
	weightAmbiguity    = 0.15
)

// Context is the optional surrounding information the analyzer consumes,
// mirroring /§4.7's QueryContext.
type Context struct {
	CurrentFile     string
	CandidateChunks int
}

// Factors is the per-factor breakdown, returned for introspection.
type Factors struct {
	Length       float64
	Keyword      float64
	Structure    float64
	Dependencies float64
	Ambiguity    float64
}

// Result is the analyzer's output.
type Result struct {
	Score     float64
	Factors   Factors
	Reasoning []string
}

var (
	highKeywords = []string{
		"architecture", "refactor", "migrate", "concurrency", "distributed",
		"optimize", "scalability", "security", "race condition", "deadlock",
	}
	mediumKeywords = []string{
		"implement", "fix", "add", "update", "integrate", "debug", "test",
	}
	lowKeywords = []string{
		"typo", "rename", "comment", "format", "whitespace",
	}

	structurePatterns = map[string]*regexp.Regexp{
		"async":           regexp.MustCompile(`(?i)\b(async|await|promise|goroutine|channel)\b`),
		"data_structures": regexp.MustCompile(`(?i)\b(array|list|map|tree|graph|queue|stack|set)\b`),
		"design_patterns": regexp.MustCompile(`(?i)\b(singleton|factory|observer|strategy|adapter|decorator)\b`),
		"algorithms":      regexp.MustCompile(`(?i)\b(algorithm|sort|search|traverse|recursion|dynamic programming)\b`),
		"error_handling":  regexp.MustCompile(`(?i)\b(error|exception|panic|recover|try|catch)\b`),
		"testing":         regexp.MustCompile(`(?i)\b(test|mock|stub|fixture|assert)\b`),
	}

	codeFenceOrFileRef = regexp.MustCompile("```" + `|[\w/]+\.[a-z]{1,4}\b`)
	pathTokenRe        = regexp.MustCompile(`[\w-]+/[\w/-]+`)
	importRe           = regexp.MustCompile(`(?i)\b(import|require|use|from|include)\b`)
	vagueTermRe        = regexp.MustCompile(`(?i)\b(something|anything|somehow|maybe|possibly|probably)\b`)
	logicalOrRe        = regexp.MustCompile(`(?i)\bor\b`)
	conditionalRe      = regexp.MustCompile(`(?i)\b(if|when|unless|depending)\b`)
	specificTermRe     = regexp.MustCompile(`(?i)\b(function|class|method|variable|file|line|column)\b`)
)

// Analyze implements analyze(query, optional_context) → {score, factors,
// reasoning} . The function is total and deterministic.
func Analyze(query string, ctx Context) Result {
	var reasoning []string

	length := lengthFactor(query)
	keyword := keywordFactor(query)
	structure := structureFactor(query)
	deps := dependenciesFactor(query, ctx)
	ambiguity := ambiguityFactor(query)

	factors := Factors{
		Length:       length,
		Keyword:      keyword,
		Structure:    structure,
		Dependencies: deps,
		Ambiguity:    ambiguity,
	}

	score := weightLength*length +
		weightKeyword*keyword +
		weightStructure*structure +
		weightDependencies*deps +
		weightAmbiguity*ambiguity

	reasoning = append(reasoning,
		fmt.Sprintf("length=%.2f keyword=%.2f structure=%.2f dependencies=%.2f ambiguity=%.2f", length, keyword, structure, deps, ambiguity))

	return Result{Score: clamp01(score), Factors: factors, Reasoning: reasoning}
}

func lengthFactor(query string) float64 {
	return clamp01((float64(len(query)) - 100) / 400)
}

func keywordFactor(query string) float64 {
	lower := strings.ToLower(query)
	score := 0.30
	for _, kw := range highKeywords {
		if strings.Contains(lower, kw) {
			score += 0.30
		}
	}
	for _, kw := range mediumKeywords {
		if strings.Contains(lower, kw) {
			score += 0.15
		}
	}
	for _, kw := range lowKeywords {
		if strings.Contains(lower, kw) {
			score -= 0.10
		}
	}
	return clamp01(score)
}

func structureFactor(query string) float64 {
	score := 0.0
	for _, re := range structurePatterns {
		if re.MatchString(query) {
			score += 0.10
		}
	}
	questionMarks := strings.Count(query, "?")
	if questionMarks > 2 {
		questionMarks = 2
	}
	score += 0.10 * float64(questionMarks)
	if codeFenceOrFileRef.MatchString(query) {
		score += 0.15
	}
	return clamp01(score)
}

func dependenciesFactor(query string, ctx Context) float64 {
	score := 0.0
	pathTokens := pathTokenRe.FindAllString(query, -1)
	bonus := 0.05 * float64(len(pathTokens))
	if bonus > 0.20 {
		bonus = 0.20
	}
	score += bonus
	if ctx.CurrentFile != "" {
		base := ctx.CurrentFile
		if idx := strings.LastIndex(base, "/"); idx >= 0 {
			base = base[idx+1:]
		}
		if base != "" && strings.Contains(query, base) {
			score += 0.10
		}
	}
	if importRe.MatchString(query) {
		score += 0.15
	}
	if ctx.CandidateChunks > 100 {
		score += 0.10
	}
	return clamp01(score)
}

func ambiguityFactor(query string) float64 {
	score := 0.0
	score += 0.15 * float64(len(vagueTermRe.FindAllString(query, -1)))
	ors := len(logicalOrRe.FindAllString(query, -1))
	if ors > 2 {
		ors = 2
	}
	score += 0.10 * float64(ors)
	if conditionalRe.MatchString(query) {
		score += 0.10
	}
	if len(query) > 50 && !specificTermRe.MatchString(query) {
		score += 0.20
	}
	return clamp01(score)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
