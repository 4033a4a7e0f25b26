package hclfront

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/designergo/internal/component"
	"github.com/vk/designergo/internal/ctxlog"
	"github.com/vk/designergo/internal/fsutil"
)

// Loader parses component declaration files into field-model components.
// Loading is two-pass: every declaration in every file contributes a named
// shell first, then children and handlers are resolved against the complete
// name space, so declaration order across files never matters.
type Loader struct {
	registry map[string]*component.Component
}

// NewLoader creates an empty loader.
func NewLoader() *Loader {
	return &Loader{registry: make(map[string]*component.Component)}
}

// RegisterImported pre-registers components whose declarations live outside
// the loaded paths, typically interface shells reconstructed from exported
// metadata. Child blocks may then reference them by name.
func (l *Loader) RegisterImported(comps ...*component.Component) error {
	for _, c := range comps {
		if _, exists := l.registry[c.Name]; exists {
			return fmt.Errorf("component %q registered twice", c.Name)
		}
		l.registry[c.Name] = c
	}
	return nil
}

// Load discovers every .hcl file under the given paths, decodes all component
// declarations, and returns the translated, validated components in the order
// their declarations were encountered.
func (l *Loader) Load(ctx context.Context, paths ...string) ([]*component.Component, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := findDeclarationFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered declaration files.", "count", len(files))

	parser := hclparse.NewParser()
	var blocks []*componentBlock

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse declaration file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode declaration file %s: %w", file, diags)
		}
		blocks = append(blocks, root.Components...)
	}

	// Pass 1: register a shell per declaration and fill its fields.
	comps := make([]*component.Component, 0, len(blocks))
	for _, block := range blocks {
		if _, exists := l.registry[block.Name]; exists {
			return nil, fmt.Errorf("component %q declared twice", block.Name)
		}
		comp := component.New(block.Name)
		if err := l.translateFields(ctx, comp, block); err != nil {
			return nil, err
		}
		l.registry[block.Name] = comp
		comps = append(comps, comp)
	}

	// Pass 2: resolve children and handlers against the full name space.
	for idx, block := range blocks {
		if err := l.attachChildren(comps[idx], block); err != nil {
			return nil, err
		}
		if err := l.attachHandlers(comps[idx], block); err != nil {
			return nil, err
		}
	}

	for _, comp := range comps {
		if err := comp.Validate(ctx); err != nil {
			return nil, err
		}
	}

	logger.Debug("HCL loading complete.", "components", len(comps))
	return comps, nil
}

// findDeclarationFiles walks all given paths and returns a flat, deduplicated
// list of .hcl files. A configured path that does not exist is skipped.
func findDeclarationFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})

	add := func(file string) {
		if _, wasSeen := seen[file]; !wasSeen {
			allFiles = append(allFiles, file)
			seen[file] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if info.IsDir() {
			found, err := fsutil.FindFilesByExtension(path, ".hcl")
			if err != nil {
				return nil, err
			}
			for _, f := range found {
				add(f)
			}
		} else if filepath.Ext(path) == ".hcl" {
			add(path)
		}
	}
	return allFiles, nil
}
