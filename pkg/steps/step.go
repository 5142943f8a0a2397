package steps

import (
	"context"
	"fmt"
	"io/fs"
	"time"

	"github.com/systemstart/create-nextstream-app/pkg/api"
	"github.com/systemstart/create-nextstream-app/pkg/layout"
	"github.com/systemstart/create-nextstream-app/pkg/pipeline"
	"github.com/systemstart/create-nextstream-app/pkg/toolchain"
)

// Env provides what a step needs besides its own configuration.
type Env struct {
	Layout    *layout.Layout
	Invoker   toolchain.Invoker
	Templates fs.FS          // resolves "bundled:" copy sources
	RecipeDir string         // base for relative copy sources
	Data      map[string]any // template data for recipe strings
}

// runner is implemented by every step type.
type runner interface {
	run(ctx context.Context) error
}

// Build turns every recipe step into a pipeline step, preserving order.
func Build(recipe *api.Recipe, env Env) ([]pipeline.Step, error) {
	out := make([]pipeline.Step, 0, len(recipe.Steps))
	for _, cfg := range recipe.Steps {
		step, err := NewStep(cfg, env)
		if err != nil {
			return nil, fmt.Errorf("creating step %q: %w", cfg.Name, err)
		}
		out = append(out, step)
	}
	return out, nil
}

// NewStep creates a pipeline step from a StepConfig. Recipe strings are
// rendered here so template errors surface before anything runs.
func NewStep(cfg api.StepConfig, env Env) (pipeline.Step, error) {
	if env.Layout == nil {
		return pipeline.Step{}, fmt.Errorf("no project layout")
	}

	dir, err := env.Layout.Resolve(cfg.Dir)
	if err != nil {
		return pipeline.Step{}, fmt.Errorf("resolving dir: %w", err)
	}

	var r runner
	switch cfg.Type {
	case api.StepTypeClone:
		r, err = newCloneStep(cfg, env)
	case api.StepTypeCopy:
		r, err = newCopyStep(cfg, env)
	case api.StepTypeCommand:
		r, err = newCommandStep(cfg, env, dir)
	case api.StepTypeEnvFile:
		r, err = newEnvFileStep(cfg, env, dir)
	case api.StepTypeTemplate:
		r, err = newTemplateStep(cfg, env, dir)
	case api.StepTypeGenerate:
		r, err = newGenerateStep(cfg, env, dir)
	default:
		return pipeline.Step{}, fmt.Errorf("unknown step type: %s", cfg.Type)
	}
	if err != nil {
		return pipeline.Step{}, err
	}

	action := r.run
	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return pipeline.Step{}, fmt.Errorf("parsing timeout: %w", err)
		}
		action = withTimeout(d, action)
	}

	return pipeline.Step{
		Name:    cfg.Name,
		Message: cfg.Message,
		Dir:     dir,
		Action:  action,
	}, nil
}

func withTimeout(d time.Duration, action pipeline.Action) pipeline.Action {
	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return action(ctx)
	}
}
