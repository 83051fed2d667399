package parsers

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/prism-dev/prism/internal/chunk"
)

func chunkKind(s string) chunk.Kind { return chunk.Kind(s) }

// langSpec configures a tree-sitter backed parser for one language.
type langSpec struct {
	language    *sitter.Language
	declKinds   map[string]string // node type -> chunk.Kind value
	importKinds map[string]struct{}
	nameField   string // field name holding the declared identifier, default "name"
}

// treeSitterParser is the shared engine every language parser in this
// package wraps with its langSpec.
type treeSitterParser struct {
	spec langSpec
}

func newTreeSitterParser(spec langSpec) *treeSitterParser {
	if spec.nameField == "" {
		spec.nameField = "name"
	}
	return &treeSitterParser{spec: spec}
}

func (p *treeSitterParser) Parse(source []byte) (*Result, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(p.spec.language); err != nil {
		return nil, err
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return &Result{HasErrors: true}, nil
	}
	defer tree.Close()

	root := tree.RootNode()
	result := &Result{HasErrors: root.HasError()}

	var imports []string
	walk(root, func(n *sitter.Node) bool {
		if _, ok := p.spec.importKinds[n.Kind()]; ok {
			text := nodeText(n, source)
			if text != "" {
				imports = append(imports, text)
			}
		}
		return true
	})
	result.Imports = imports

	childCount := int(root.ChildCount())
	for i := 0; i < childCount; i++ {
		child := root.Child(uint(i))
		if child == nil {
			continue
		}
		kindStr, ok := p.spec.declKinds[child.Kind()]
		if !ok {
			continue
		}
		name := declName(child, source, p.spec.nameField)
		result.Declarations = append(result.Declarations, Declaration{
			Kind:      chunkKind(kindStr),
			Name:      name,
			StartByte: child.StartByte(),
			EndByte:   child.EndByte(),
			StartLine: int(child.StartPosition().Row) + 1,
			EndLine:   int(child.EndPosition().Row) + 1,
		})
	}

	return result, nil
}

func walk(node *sitter.Node, visit func(*sitter.Node) bool) {
	if node == nil || !visit(node) {
		return
	}
	count := int(node.ChildCount())
	for i := 0; i < count; i++ {
		walk(node.Child(uint(i)), visit)
	}
}

func nodeText(n *sitter.Node, source []byte) string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(string(source[n.StartByte():n.EndByte()]))
}

func declName(n *sitter.Node, source []byte, field string) string {
	nameNode := n.ChildByFieldName(field)
	if nameNode != nil {
		return nodeText(nameNode, source)
	}
	// Fall back to the first identifier-ish child, or the name field of
	// the first child that has one, for node types where the grammar
	// doesn't expose a "name" field (e.g. Go's type_spec/var_spec lists).
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		child := n.Child(uint(i))
		if child == nil {
			continue
		}
		if strings.Contains(child.Kind(), "identifier") {
			return nodeText(child, source)
		}
		if inner := child.ChildByFieldName(field); inner != nil {
			return nodeText(inner, source)
		}
	}
	return ""
}
