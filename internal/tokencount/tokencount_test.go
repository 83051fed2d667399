package tokencount

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Test Plan:
// - estimate("") == 0
// - monotonic: longer prose costs at least as much as shorter prose
// - code-heavy text gets the structural adjustment bump
// - deterministic across repeated calls

func TestEstimate_Empty(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0, Estimate(""))
}

func TestEstimate_MonotonicProse(t *testing.T) {
	t.Parallel()
	short := "the quick brown fox"
	long := short + " jumps over the lazy dog repeatedly for a while"
	assert.GreaterOrEqual(t, Estimate(long), Estimate(short))
}

func TestEstimate_CodeAdjustment(t *testing.T) {
	t.Parallel()
	prose := strings.Repeat("word ", 40)
	code := strings.Repeat("if(x){y=z;}", 20)
	proseEstimate := Estimate(prose)
	codeEstimate := Estimate(code)

	// Similar length (200 vs 220 bytes), but the code sample crosses the structural-character
	// threshold and should cost noticeably more per byte.
	assert.Greater(t, float64(codeEstimate)/float64(len(code)), float64(proseEstimate)/float64(len(prose)))
}

func TestEstimate_Deterministic(t *testing.T) {
	t.Parallel()
	text := "func main() { fmt.Println(\"hi\") }"
	a := Estimate(text)
	b := Estimate(text)
	assert.Equal(t, a, b)
}
