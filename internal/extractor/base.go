package extractor

import (
	sitter "github.com/smacker/go-tree-sitter"

	"plugdoc/internal/ir"
)

// LanguageExtractor defines the interface that each language parser must implement.
type LanguageExtractor interface {
	GetLanguage() *sitter.Language
	// Extensions lists the file suffixes this extractor understands, e.g. ".lua".
	Extensions() []string
	// ExtractAPI turns a parsed file into its documented declarations.
	ExtractAPI(root *sitter.Node, sourceCode []byte, filepath string) (*ir.FileAPI, error)
}
