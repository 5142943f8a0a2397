// Package scaffold creates a new project: it plans the target directory,
// assembles the recipe's steps and drives them through the pipeline.
package scaffold

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/systemstart/create-nextstream-app/pkg/api"
	"github.com/systemstart/create-nextstream-app/pkg/layout"
	"github.com/systemstart/create-nextstream-app/pkg/pipeline"
	"github.com/systemstart/create-nextstream-app/pkg/steps"
	"github.com/systemstart/create-nextstream-app/pkg/toolchain"
)

// Request asks for one new project.
type Request struct {
	ProjectName string
}

// Options configure a scaffold run.
type Options struct {
	WorkDir   string // base for the project root; the process cwd when empty
	Recipe    *api.Recipe
	Invoker   toolchain.Invoker
	Reporter  pipeline.Reporter
	Templates fs.FS          // bundled templates for "bundled:" sources
	Context   map[string]any // overrides the recipe context

	// CleanupOnFailure removes the project root after a failed run. Off by
	// default: a partial project may hold work worth salvaging.
	CleanupOnFailure bool
}

// Run scaffolds req.ProjectName. It returns the pipeline result whenever the
// pipeline ran; a failed run also returns the *pipeline.Failure as error.
// Planning and assembly errors (*layout.DirectoryExistsError among them)
// are returned before the project root exists or any step runs.
func Run(ctx context.Context, req Request, opts Options) (*pipeline.Result, error) {
	if opts.Recipe == nil {
		return nil, fmt.Errorf("no recipe")
	}
	if opts.Invoker == nil {
		return nil, fmt.Errorf("no toolchain invoker")
	}

	cwd := opts.WorkDir
	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
		cwd = wd
	}

	l, err := layout.Prepare(cwd, req.ProjectName, opts.Recipe.SubProjects)
	if err != nil {
		return nil, fmt.Errorf("planning project directory: %w", err)
	}

	built, err := steps.Build(opts.Recipe, steps.Env{
		Layout:    l,
		Invoker:   opts.Invoker,
		Templates: opts.Templates,
		RecipeDir: opts.Recipe.Dir,
		Data:      templateData(req.ProjectName, l, opts.Recipe.Context, opts.Context),
	})
	if err != nil {
		return nil, fmt.Errorf("assembling steps: %w", err)
	}

	// The root is created only once every step is known to be buildable.
	if err := l.Create(); err != nil {
		return nil, fmt.Errorf("planning project directory: %w", err)
	}
	slog.Info("project root created", "root", l.Root(), "subProjects", l.Keys())

	var pOpts []pipeline.Option
	if opts.Reporter != nil {
		pOpts = append(pOpts, pipeline.WithReporter(opts.Reporter))
	}
	p := pipeline.New(built, pOpts...)

	slog.Info("running pipeline", "recipe", opts.Recipe.Name, "steps", len(built))
	result := p.Run(ctx)

	if result.Succeeded() {
		slog.Info("pipeline succeeded", "root", l.Root(), "completed", len(result.Completed))
		return result, nil
	}

	if opts.CleanupOnFailure {
		removeProject(l.Root())
	}
	return result, result.Failure
}

func removeProject(root string) {
	slog.Info("removing partially scaffolded project", "root", root)
	if err := os.RemoveAll(root); err != nil {
		slog.Warn("failed to remove project root", "root", root, "error", err)
	}
}
