package steps

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/systemstart/create-nextstream-app/pkg/api"
	"github.com/systemstart/create-nextstream-app/pkg/materialize"
)

type copyStep struct {
	src  *materialize.Bundled
	dest string
}

func newCopyStep(cfg api.StepConfig, env Env) (runner, error) {
	if cfg.Copy == nil {
		return nil, fmt.Errorf("copy config is required")
	}

	into, err := render("into", cfg.Copy.Into, env.Data)
	if err != nil {
		return nil, err
	}
	dest, err := env.Layout.Resolve(into)
	if err != nil {
		return nil, fmt.Errorf("resolving copy.into: %w", err)
	}

	src := &materialize.Bundled{
		Exclude: cfg.Copy.Exclude,
		Overlay: cfg.Copy.Overlay,
	}

	if name, ok := strings.CutPrefix(cfg.Copy.Source, api.BundledPrefix); ok {
		if env.Templates == nil {
			return nil, fmt.Errorf("no bundled templates available for %q", cfg.Copy.Source)
		}
		src.FS = env.Templates
		src.Root = name
		src.Name = cfg.Copy.Source
	} else {
		dir := cfg.Copy.Source
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(env.RecipeDir, dir)
		}
		src.FS = os.DirFS(dir)
		src.Name = dir
	}

	return &copyStep{src: src, dest: dest}, nil
}

func (s *copyStep) run(ctx context.Context) error {
	return materialize.Materialize(ctx, s.src, s.dest)
}
