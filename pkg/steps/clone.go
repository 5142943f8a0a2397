package steps

import (
	"context"
	"fmt"

	"github.com/systemstart/create-nextstream-app/pkg/api"
	"github.com/systemstart/create-nextstream-app/pkg/materialize"
)

type cloneStep struct {
	src  *materialize.Remote
	dest string
}

func newCloneStep(cfg api.StepConfig, env Env) (runner, error) {
	if cfg.Clone == nil {
		return nil, fmt.Errorf("clone config is required")
	}

	repo, err := render("repository", cfg.Clone.Repository, env.Data)
	if err != nil {
		return nil, err
	}
	into, err := render("into", cfg.Clone.Into, env.Data)
	if err != nil {
		return nil, err
	}
	dest, err := env.Layout.Resolve(into)
	if err != nil {
		return nil, fmt.Errorf("resolving clone.into: %w", err)
	}

	return &cloneStep{
		src: &materialize.Remote{
			Repository: repo,
			Ref:        cfg.Clone.Ref,
			Depth:      cfg.Clone.Depth,
			KeepVCS:    cfg.Clone.KeepVCS,
			Invoker:    env.Invoker,
		},
		dest: dest,
	}, nil
}

func (s *cloneStep) run(ctx context.Context) error {
	return materialize.Materialize(ctx, s.src, s.dest)
}
