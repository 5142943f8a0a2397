package steps

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/systemstart/create-nextstream-app/pkg/api"
)

// templateStep renders files under dir in place. Files are only known once
// earlier steps have run, so rendering happens at run time.
type templateStep struct {
	dir     string
	include []string
	exclude []string
	data    map[string]any
}

func newTemplateStep(cfg api.StepConfig, env Env, dir string) (runner, error) {
	if cfg.Template == nil || len(cfg.Template.Include) == 0 {
		return nil, fmt.Errorf("template.include is required")
	}
	for _, p := range slices.Concat(cfg.Template.Include, cfg.Template.Exclude) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid pattern %q", p)
		}
	}
	return &templateStep{
		dir:     dir,
		include: cfg.Template.Include,
		exclude: cfg.Template.Exclude,
		data:    env.Data,
	}, nil
}

func (s *templateStep) run(ctx context.Context) error {
	files, err := s.files()
	if err != nil {
		return err
	}

	slog.Info("rendering files", "dir", s.dir, "count", len(files))

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := renderFile(filepath.Join(s.dir, file), file, s.data); err != nil {
			return fmt.Errorf("rendering %s: %w", file, err)
		}
	}
	return nil
}

// files returns the sorted regular files matching an include pattern and
// no exclude pattern.
func (s *templateStep) files() ([]string, error) {
	fsys := os.DirFS(s.dir)

	var out []string
	for _, pattern := range s.include {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !s.excluded(m) {
				out = append(out, m)
			}
		}
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

func (s *templateStep) excluded(name string) bool {
	for _, pattern := range s.exclude {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

func renderFile(path, name string, data map[string]any) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	out, err := render(name, string(content), data)
	if err != nil {
		return err
	}
	if out == string(content) {
		return nil
	}

	if err := os.WriteFile(path, []byte(out), info.Mode().Perm()); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	slog.Debug("template rendered", "file", name)
	return nil
}
