// Package tokencount implements the Token Counter (C1): a deterministic,
// model-tokenizer-independent estimate of the cost of shipping a string
// to a downstream LLM. It is pure and must never suspend.
package tokencount

import "math"

// structuralThreshold is the punctuation/structural-character share above
// which text is treated as code rather than prose, 
const structuralThreshold = 0.12

var structural = map[rune]struct{}{
	'{': {}, '}': {}, '(': {}, ')': {}, '[': {}, ']': {},
	';': {}, ':': {}, '<': {}, '>': {}, '=': {}, '+': {}, '-': {},
	'*': {}, '/': {}, '&': {}, '|': {}, '!': {}, '.': {}, ',': {},
}

// Estimate returns a deterministic, monotonic token estimate for text.
// estimate("") == 0.
func Estimate(text string) int {
	n := len(text)
	if n == 0 {
		return 0
	}

	structuralCount := 0
	for _, r := range text {
		if _, ok := structural[r]; ok {
			structuralCount++
		}
	}

	base := float64(n) / 4.0
	if float64(structuralCount)/float64(n) > structuralThreshold {
		base += 0.1 * float64(n)
	}

	return int(math.Ceil(base))
}
