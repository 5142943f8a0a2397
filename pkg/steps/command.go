package steps

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/systemstart/create-nextstream-app/pkg/api"
	"github.com/systemstart/create-nextstream-app/pkg/toolchain"
)

type commandStep struct {
	invoker toolchain.Invoker
	cmd     toolchain.Command
}

func newCommandStep(cfg api.StepConfig, env Env, dir string) (runner, error) {
	if cfg.Command == nil || len(cfg.Command.Exec) == 0 {
		return nil, fmt.Errorf("command.exec is required")
	}
	if env.Invoker == nil {
		return nil, fmt.Errorf("no toolchain invoker configured")
	}

	argv, err := renderAll("exec", cfg.Command.Exec, env.Data)
	if err != nil {
		return nil, err
	}
	vars, err := renderMap("env", cfg.Command.Env, env.Data)
	if err != nil {
		return nil, err
	}

	environ := make([]string, 0, len(vars))
	for _, k := range slices.Sorted(maps.Keys(vars)) {
		environ = append(environ, k+"="+vars[k])
	}

	return &commandStep{
		invoker: env.Invoker,
		cmd: toolchain.Command{
			Name: argv[0],
			Args: argv[1:],
			Dir:  dir,
			Env:  environ,
		},
	}, nil
}

func (s *commandStep) run(ctx context.Context) error {
	slog.Info("running command", "command", s.cmd.String(), "dir", s.cmd.Dir)
	return s.invoker.Invoke(ctx, s.cmd)
}
