// Package graphindex builds the file-level import graph used to enrich
// retrieval: "what else imports this file" and "what does this file
// depend on" answer the Scorer's symbol-match and file-proximity
// features, and back the supplemented context-expansion step described
// alongside the core pipeline.
package graphindex

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dominikbraun/graph"

	"github.com/prism-dev/prism/internal/chunk"
)

// Node is one file in the import graph.
type Node struct {
	Path     string
	Language chunk.Language
}

// Graph answers dependency/dependent queries over a codebase's import
// edges, rebuilt from an Indexer pass.
type Graph interface {
	// Build replaces the graph's contents from a fresh chunk set. Chunks
	// for the same file are folded into one node; only chunks carrying a
	// non-empty Imports list contribute edges.
	Build(chunks []chunk.Chunk) error

	// Dependencies returns files that path imports, up to depth levels
	// away, nearest first.
	Dependencies(path string, depth int) []string

	// Dependents returns files that import path, up to depth levels away,
	// nearest first.
	Dependents(path string, depth int) []string

	// Path returns the shortest import path from one file to another, or
	// (nil, false) if none exists.
	Path(from, to string) ([]string, bool)
}

type fileGraph struct {
	mu sync.RWMutex
	g  graph.Graph[string, *Node]

	dependencies map[string][]string // file -> files it imports
	dependents   map[string][]string // file -> files that import it
}

// New returns an empty Graph.
func New() Graph {
	return &fileGraph{
		g:            graph.New(func(n *Node) string { return n.Path }, graph.Directed()),
		dependencies: make(map[string][]string),
		dependents:   make(map[string][]string),
	}
}

func (fg *fileGraph) Build(chunks []chunk.Chunk) error {
	fg.mu.Lock()
	defer fg.mu.Unlock()

	fg.g = graph.New(func(n *Node) string { return n.Path }, graph.Directed())
	fg.dependencies = make(map[string][]string)
	fg.dependents = make(map[string][]string)

	byFile := make(map[string]*Node)
	imports := make(map[string]map[string]struct{})

	for _, c := range chunks {
		path := chunk.NormalizePath(c.FilePath)
		if path == "" {
			continue
		}
		if _, ok := byFile[path]; !ok {
			byFile[path] = &Node{Path: path, Language: c.Language}
		}
	}

	for _, c := range chunks {
		path := chunk.NormalizePath(c.FilePath)
		if path == "" || len(c.Imports) == 0 {
			continue
		}
		set, ok := imports[path]
		if !ok {
			set = make(map[string]struct{})
			imports[path] = set
		}
		for _, target := range resolveImports(path, c.Imports, byFile) {
			set[target] = struct{}{}
		}
	}

	for path, node := range byFile {
		if err := fg.g.AddVertex(node); err != nil {
			return fmt.Errorf("graphindex: add node %s: %w", path, err)
		}
	}

	for from, targets := range imports {
		for to := range targets {
			if to == from {
				continue
			}
			if err := fg.g.AddEdge(from, to); err != nil {
				continue // unresolved or duplicate edge; not fatal
			}
			fg.dependencies[from] = append(fg.dependencies[from], to)
			fg.dependents[to] = append(fg.dependents[to], from)
		}
	}

	for _, list := range fg.dependencies {
		sort.Strings(list)
	}
	for _, list := range fg.dependents {
		sort.Strings(list)
	}

	return nil
}

// resolveImports keeps only import specifiers that resolve to another
// known file in this codebase; external packages (e.g. "fmt", "react")
// never produce an edge since they aren't in byFile.
func resolveImports(from string, raw []string, byFile map[string]*Node) []string {
	var out []string
	for _, spec := range raw {
		if target, ok := matchFile(spec, byFile); ok && target != from {
			out = append(out, target)
		}
	}
	return out
}

func matchFile(spec string, byFile map[string]*Node) (string, bool) {
	for path := range byFile {
		if path == spec || hasSuffixPath(path, spec) {
			return path, true
		}
	}
	return "", false
}

func hasSuffixPath(path, spec string) bool {
	if spec == "" {
		return false
	}
	if len(path) < len(spec) {
		return false
	}
	suffix := path[len(path)-len(spec):]
	return suffix == spec && (len(path) == len(spec) || path[len(path)-len(spec)-1] == '/')
}

func (fg *fileGraph) Dependencies(path string, depth int) []string {
	fg.mu.RLock()
	defer fg.mu.RUnlock()
	return fg.traverse(path, depth, fg.dependencies)
}

func (fg *fileGraph) Dependents(path string, depth int) []string {
	fg.mu.RLock()
	defer fg.mu.RUnlock()
	return fg.traverse(path, depth, fg.dependents)
}

func (fg *fileGraph) traverse(start string, depth int, index map[string][]string) []string {
	if depth <= 0 {
		depth = 1
	}
	visited := make(map[string]struct{})
	var order []string
	frontier := []string{start}
	for level := 1; level <= depth; level++ {
		var next []string
		for _, id := range frontier {
			for _, n := range index[id] {
				if _, seen := visited[n]; !seen {
					visited[n] = struct{}{}
					order = append(order, n)
					next = append(next, n)
				}
			}
		}
		frontier = next
	}
	return order
}

func (fg *fileGraph) Path(from, to string) ([]string, bool) {
	fg.mu.RLock()
	defer fg.mu.RUnlock()
	path, err := graph.ShortestPath(fg.g, from, to)
	if err != nil {
		return nil, false
	}
	return path, true
}
