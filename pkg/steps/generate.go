package steps

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/systemstart/create-nextstream-app/pkg/api"
)

type generateStep struct {
	output  string
	content string
}

func newGenerateStep(cfg api.StepConfig, env Env, dir string) (runner, error) {
	if cfg.Generate == nil {
		return nil, fmt.Errorf("generate config is required")
	}

	output, err := render("output", cfg.Generate.Output, env.Data)
	if err != nil {
		return nil, err
	}
	target := filepath.Join(dir, output)
	if err := env.Layout.Contains(target); err != nil {
		return nil, fmt.Errorf("generate.output: %w", err)
	}
	content, err := render("template", cfg.Generate.Template, env.Data)
	if err != nil {
		return nil, err
	}

	return &generateStep{output: target, content: content}, nil
}

func (s *generateStep) run(context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.output), 0o750); err != nil {
		return fmt.Errorf("creating parent directories: %w", err)
	}
	if err := os.WriteFile(s.output, []byte(s.content), 0o644); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	slog.Info("file generated", "output", s.output)
	return nil
}
