package app

import (
	"context"
	"fmt"
	"os"

	"github.com/vk/designergo/internal/builder"
	"github.com/vk/designergo/internal/component"
	"github.com/vk/designergo/internal/ctxlog"
	"github.com/vk/designergo/internal/metadata"
	"github.com/vk/designergo/internal/synth"
)

// CompiledComponent is the full output of the pipeline for one component
// declaration.
type CompiledComponent struct {
	Component   *component.Component
	Plan        *builder.Plan
	Description *synth.Description
	Interface   *metadata.Interface
}

// Result is the outcome of one compilation run.
type Result struct {
	Components []*CompiledComponent
}

// Component finds a compiled component by name.
func (r *Result) Component(name string) (*CompiledComponent, bool) {
	for _, c := range r.Components {
		if c.Component.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Run executes the pipeline: register imported interfaces, load and validate
// every declaration, build each component's plan, synthesize its description,
// and export its interface. The first failing component aborts the run.
func (a *App) Run(ctx context.Context) (*Result, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	logger := a.logger
	logger.Debug("Compilation started.", "paths", len(a.config.Paths), "imports", len(a.config.Imports))

	if err := a.registerImports(ctx); err != nil {
		return nil, err
	}

	comps, err := a.loader.Load(ctx, a.config.Paths...)
	if err != nil {
		return nil, fmt.Errorf("loading declarations: %w", err)
	}

	result := &Result{}
	for _, comp := range comps {
		plan, err := builder.Build(ctx, comp)
		if err != nil {
			return nil, fmt.Errorf("building component %q: %w", comp.Name, err)
		}
		iface, err := metadata.Export(comp)
		if err != nil {
			return nil, err
		}
		result.Components = append(result.Components, &CompiledComponent{
			Component:   comp,
			Plan:        plan,
			Description: synth.Synthesize(ctx, plan),
			Interface:   iface,
		})
		logger.Info("Component compiled.", "component", comp.Name, "nodes", len(plan.Nodes))
	}

	logger.Debug("Compilation complete.", "components", len(result.Components))
	return result, nil
}

// registerImports reconstructs interface shells from exported metadata files
// and registers them with the loader.
func (a *App) registerImports(ctx context.Context) error {
	for _, path := range a.config.Imports {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading import %s: %w", path, err)
		}
		iface, err := metadata.Import(data)
		if err != nil {
			return fmt.Errorf("import %s: %w", path, err)
		}
		shell, err := iface.Component(ctx)
		if err != nil {
			return fmt.Errorf("import %s: %w", path, err)
		}
		if err := a.loader.RegisterImported(shell); err != nil {
			return err
		}
		a.logger.Debug("Imported component interface.", "component", shell.Name, "file", path)
	}
	return nil
}
