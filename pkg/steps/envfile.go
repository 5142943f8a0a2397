package steps

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/systemstart/create-nextstream-app/pkg/api"
)

type envFileStep struct {
	from string
	to   string
	set  map[string]string
}

func newEnvFileStep(cfg api.StepConfig, env Env, dir string) (runner, error) {
	if cfg.EnvFile == nil {
		return nil, fmt.Errorf("envfile config is required")
	}

	set, err := renderMap("set", cfg.EnvFile.Set, env.Data)
	if err != nil {
		return nil, err
	}

	from := filepath.Join(dir, cfg.EnvFile.From)
	if err := env.Layout.Contains(from); err != nil {
		return nil, fmt.Errorf("envfile.from: %w", err)
	}
	to := filepath.Join(dir, cfg.EnvFile.To)
	if err := env.Layout.Contains(to); err != nil {
		return nil, fmt.Errorf("envfile.to: %w", err)
	}

	return &envFileStep{from: from, to: to, set: set}, nil
}

// run copies the example file verbatim, or rewrites it with the configured
// overrides when any are set.
func (s *envFileStep) run(context.Context) error {
	data, err := os.ReadFile(s.from)
	if err != nil {
		return fmt.Errorf("reading env template: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.to), 0o750); err != nil {
		return fmt.Errorf("creating parent directories: %w", err)
	}

	if len(s.set) > 0 {
		vars, err := godotenv.UnmarshalBytes(data)
		if err != nil {
			return fmt.Errorf("parsing env template %s: %w", s.from, err)
		}
		for k, v := range s.set {
			vars[k] = v
		}
		if err := godotenv.Write(vars, s.to); err != nil {
			return fmt.Errorf("writing env file: %w", err)
		}
		slog.Info("env file written", "from", s.from, "to", s.to, "overrides", len(s.set))
		return nil
	}

	if err := os.WriteFile(s.to, data, 0o600); err != nil {
		return fmt.Errorf("writing env file: %w", err)
	}
	slog.Info("env file copied", "from", s.from, "to", s.to)
	return nil
}
