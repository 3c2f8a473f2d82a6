package extractor

import (
	"context"
	"fmt"
	"os"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"plugdoc/internal/ir"
)

// Extractor orchestrates the extraction process using language-specific extractors.
type Extractor struct {
	langExtractor LanguageExtractor
	langName      string
}

// NewExtractor creates a new extractor for a given language.
func NewExtractor(lang string) (*Extractor, error) {
	var langExt LanguageExtractor
	switch lang {
	case "lua":
		langExt = &LuaExtractor{}
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
	return &Extractor{langExtractor: langExt, langName: lang}, nil
}

// Language returns the configured language name.
func (e *Extractor) Language() string {
	return e.langName
}

// Handles reports whether the file name has a suffix this extractor parses.
func (e *Extractor) Handles(name string) bool {
	for _, ext := range e.langExtractor.Extensions() {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// ExtractFromFile parses a single source file and extracts its documented API.
func (e *Extractor) ExtractFromFile(filepath string) (*ir.FileAPI, error) {
	sourceCode, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filepath, err)
	}
	return e.ExtractFromSource(context.Background(), sourceCode, filepath)
}

// ExtractFromSource is ExtractFromFile for in-memory source.
func (e *Extractor) ExtractFromSource(ctx context.Context, sourceCode []byte, filepath string) (*ir.FileAPI, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(e.langExtractor.GetLanguage())
	tree, err := parser.ParseCtx(ctx, nil, sourceCode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", filepath, err)
	}
	defer tree.Close()

	api, err := e.langExtractor.ExtractAPI(tree.RootNode(), sourceCode, filepath)
	if err != nil {
		return nil, err
	}
	api.Path = filepath
	return api, nil
}
