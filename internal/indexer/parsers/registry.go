package parsers

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	golang "github.com/tree-sitter/tree-sitter-go/bindings/go"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/prism-dev/prism/internal/chunk"
)

func importSet(kinds ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(kinds))
	for _, k := range kinds {
		set[k] = struct{}{}
	}
	return set
}

// ForLanguage returns the tree-sitter-backed Parser for a language, or
// (nil, false) when no grammar is bundled for it — callers fall back to
// the heuristic parser in the parent package.
func ForLanguage(lang chunk.Language) (Parser, bool) {
	switch lang {
	case chunk.LangGo:
		return newTreeSitterParser(langSpec{
			language: sitter.NewLanguage(golang.Language()),
			declKinds: map[string]string{
				"function_declaration": "function",
				"method_declaration":   "method",
				"type_declaration":     "class",
				"var_declaration":      "variable",
				"const_declaration":    "variable",
			},
			importKinds: importSet("import_declaration"),
		}), true

	case chunk.LangJavaScript:
		return newTreeSitterParser(langSpec{
			language: sitter.NewLanguage(javascript.Language()),
			declKinds: map[string]string{
				"function_declaration": "function",
				"class_declaration":    "class",
				"lexical_declaration":  "variable",
			},
			importKinds: importSet("import_statement"),
		}), true

	case chunk.LangTypeScript:
		return newTreeSitterParser(langSpec{
			language: sitter.NewLanguage(typescript.LanguageTypescript()),
			declKinds: map[string]string{
				"function_declaration":  "function",
				"class_declaration":     "class",
				"interface_declaration": "interface",
				"type_alias_declaration": "interface",
				"lexical_declaration":   "variable",
			},
			importKinds: importSet("import_statement"),
		}), true

	case chunk.LangPython:
		return newTreeSitterParser(langSpec{
			language: sitter.NewLanguage(python.Language()),
			declKinds: map[string]string{
				"function_definition": "function",
				"class_definition":    "class",
			},
			importKinds: importSet("import_statement", "import_from_statement"),
		}), true

	case chunk.LangRust:
		return newTreeSitterParser(langSpec{
			language: sitter.NewLanguage(rust.Language()),
			declKinds: map[string]string{
				"function_item": "function",
				"struct_item":   "class",
				"enum_item":     "class",
				"trait_item":    "interface",
				"impl_item":     "class",
				"const_item":    "variable",
				"static_item":   "variable",
			},
			importKinds: importSet("use_declaration"),
		}), true

	case chunk.LangJava:
		return newTreeSitterParser(langSpec{
			language: sitter.NewLanguage(java.Language()),
			declKinds: map[string]string{
				"class_declaration":     "class",
				"interface_declaration": "interface",
				"enum_declaration":      "class",
				"method_declaration":    "method",
			},
			importKinds: importSet("import_declaration"),
		}), true

	case chunk.LangC:
		return newTreeSitterParser(langSpec{
			language: sitter.NewLanguage(c.Language()),
			declKinds: map[string]string{
				"function_definition": "function",
				"struct_specifier":    "class",
				"declaration":         "variable",
			},
			importKinds: importSet("preproc_include"),
		}), true

	case chunk.LangRuby:
		return newTreeSitterParser(langSpec{
			language: sitter.NewLanguage(ruby.Language()),
			declKinds: map[string]string{
				"method": "method",
				"class":  "class",
				"module": "class",
			},
			importKinds: importSet(), // require/require_relative surface as generic call nodes in this grammar; left to the file-level regex pass in the indexer package
		}), true

	case chunk.LangPHP:
		return newTreeSitterParser(langSpec{
			language: sitter.NewLanguage(php.LanguagePHP()),
			declKinds: map[string]string{
				"class_declaration":     "class",
				"interface_declaration": "interface",
				"trait_declaration":     "interface",
				"function_definition":   "function",
				"const_declaration":     "variable",
			},
			importKinds: importSet("namespace_use_declaration"),
		}), true

	default:
		return nil, false
	}
}
