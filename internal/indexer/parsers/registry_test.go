package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prism-dev/prism/internal/chunk"
)

// Test Plan:
// - Go source yields one function declaration and one type declaration
// - Python source yields a class and a module-level function
// - An unsupported language reports (nil, false)

func TestForLanguage_Go(t *testing.T) {
	t.Parallel()
	p, ok := ForLanguage(chunk.LangGo)
	require.True(t, ok)

	src := []byte(`package main

import "fmt"

type Greeter struct{}

func (g Greeter) Greet() string {
	return "hi"
}

func main() {
	fmt.Println("hi")
}
`)

	result, err := p.Parse(src)
	require.NoError(t, err)
	require.False(t, result.HasErrors)

	var kinds []chunk.Kind
	for _, d := range result.Declarations {
		kinds = append(kinds, d.Kind)
	}
	assert.Contains(t, kinds, chunk.KindMethod)
	assert.Contains(t, kinds, chunk.KindFunction)
	assert.Contains(t, kinds, chunk.KindClass)
	assert.NotEmpty(t, result.Imports)
}

func TestForLanguage_Python(t *testing.T) {
	t.Parallel()
	p, ok := ForLanguage(chunk.LangPython)
	require.True(t, ok)

	src := []byte(`import os


class Greeter:
    def greet(self):
        return "hi"


def main():
    print("hi")
`)

	result, err := p.Parse(src)
	require.NoError(t, err)

	var kinds []chunk.Kind
	for _, d := range result.Declarations {
		kinds = append(kinds, d.Kind)
	}
	assert.Contains(t, kinds, chunk.KindClass)
	assert.Contains(t, kinds, chunk.KindFunction)
}

func TestForLanguage_Unsupported(t *testing.T) {
	t.Parallel()
	_, ok := ForLanguage(chunk.LangYAML)
	assert.False(t, ok)
}
