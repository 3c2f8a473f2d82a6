package crawler

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"plugdoc/internal/extractor"
	"plugdoc/internal/ir"
	"plugdoc/internal/resolver"
)

// Crawler scans a directory for source files.
type Crawler struct {
	extractor *extractor.Extractor
	ignored   []string
}

// NewCrawler creates a new crawler instance.
func NewCrawler(ext *extractor.Extractor) *Crawler {
	return &Crawler{
		extractor: ext,
		ignored:   []string{".git", "vendor", "node_modules", "testdata"},
	}
}

// ScanProject walks the root directory in lexical order and hands every parsed
// file to onFile. FileAPI.Path is relative to root with forward slashes.
// A file that fails to parse aborts the scan.
func (c *Crawler) ScanProject(root string, onFile func(*ir.FileAPI) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Skip ignored directories
		if d.IsDir() {
			if path == root {
				return nil
			}
			for _, ign := range c.ignored {
				if d.Name() == ign {
					return filepath.SkipDir
				}
			}
			return nil
		}

		if !c.extractor.Handles(d.Name()) {
			return nil
		}

		api, err := c.extractor.ExtractFromFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("failed to relativize %s: %w", path, err)
		}
		api.Path = filepath.ToSlash(rel)
		return onFile(api)
	})
}

// Project is the documented API of a whole source tree.
type Project struct {
	// Files is keyed by FileAPI.Path.
	Files map[string]*ir.FileAPI
	Types *resolver.TypeTable
}

// File looks a file up by its path relative to the scanned root.
func (p *Project) File(rel string) (*ir.FileAPI, bool) {
	f, ok := p.Files[filepath.ToSlash(rel)]
	return f, ok
}

// ParseDirectory extracts every Lua file under root and indexes the declared types.
func ParseDirectory(root string) (*Project, error) {
	ext, err := extractor.NewExtractor("lua")
	if err != nil {
		return nil, err
	}
	p := &Project{Files: make(map[string]*ir.FileAPI), Types: resolver.NewTypeTable()}
	err = NewCrawler(ext).ScanProject(root, func(api *ir.FileAPI) error {
		p.Files[api.Path] = api
		p.Types.AddFile(api)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", root, err)
	}
	return p, nil
}
