package steps

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/systemstart/create-nextstream-app/pkg/api"
	"github.com/systemstart/create-nextstream-app/pkg/layout"
	"github.com/systemstart/create-nextstream-app/pkg/toolchain"
	"github.com/systemstart/create-nextstream-app/pkg/toolchain/toolchaintest"
)

func testEnv(t *testing.T, rec toolchain.Invoker) Env {
	t.Helper()
	l, err := layout.Plan(t.TempDir(), "demo", map[string]string{"frontend": "frontend", "backend": "backend"})
	if err != nil {
		t.Fatal(err)
	}
	return Env{
		Layout:    l,
		Invoker:   rec,
		Templates: fstest.MapFS{"frontend/http.ts": {Data: []byte("export default http;\n")}},
		Data:      map[string]any{"project": "demo", "pkg": "ozzie/nextstream"},
	}
}

func writeTestFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestNewStep(t *testing.T) {
	tests := []struct {
		name    string
		cfg     api.StepConfig
		wantDir string
		wantErr bool
	}{
		{
			name: "clone step",
			cfg: api.StepConfig{
				Name:  "materialize frontend template",
				Type:  api.StepTypeClone,
				Clone: &api.CloneConfig{Repository: "https://example.com/t.git", Into: "frontend"},
			},
		},
		{
			name: "copy step",
			cfg: api.StepConfig{
				Name: "apply frontend stubs",
				Type: api.StepTypeCopy,
				Copy: &api.CopyConfig{Source: "bundled:frontend", Into: "frontend", Overlay: true},
			},
		},
		{
			name: "command step",
			cfg: api.StepConfig{
				Name:    "install frontend dependencies",
				Type:    api.StepTypeCommand,
				Dir:     "frontend",
				Command: &api.CommandConfig{Exec: []string{"npm", "i"}},
			},
			wantDir: "frontend",
		},
		{
			name: "envfile step",
			cfg: api.StepConfig{
				Name:    "write frontend environment file",
				Type:    api.StepTypeEnvFile,
				Dir:     "frontend",
				EnvFile: &api.EnvFileConfig{From: ".env.local.example", To: ".env.local"},
			},
			wantDir: "frontend",
		},
		{
			name: "template step",
			cfg: api.StepConfig{
				Name:     "render frontend stubs",
				Type:     api.StepTypeTemplate,
				Dir:      "frontend",
				Template: &api.TemplateConfig{Include: []string{"lib/*.ts"}},
			},
			wantDir: "frontend",
		},
		{
			name: "generate step",
			cfg: api.StepConfig{
				Name:     "write readme",
				Type:     api.StepTypeGenerate,
				Generate: &api.GenerateConfig{Output: "README.md", Template: "# {{ .project }}"},
			},
		},
		{
			name: "unknown type",
			cfg: api.StepConfig{
				Name: "bad",
				Type: "unknown",
			},
			wantErr: true,
		},
		{
			name: "dir outside root",
			cfg: api.StepConfig{
				Name:    "escape",
				Type:    api.StepTypeCommand,
				Dir:     "../..",
				Command: &api.CommandConfig{Exec: []string{"true"}},
			},
			wantErr: true,
		},
		{
			name: "bad template in exec",
			cfg: api.StepConfig{
				Name:    "broken",
				Type:    api.StepTypeCommand,
				Command: &api.CommandConfig{Exec: []string{"echo", "{{ .missing }}"}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := testEnv(t, &toolchaintest.Recorder{})
			step, err := NewStep(tt.cfg, env)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewStep() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if step.Name != tt.cfg.Name {
				t.Errorf("Name = %q, want %q", step.Name, tt.cfg.Name)
			}
			if step.Action == nil {
				t.Fatal("expected non-nil action")
			}
			want := filepath.Join(env.Layout.Root(), tt.wantDir)
			if step.Dir != want {
				t.Errorf("Dir = %q, want %q", step.Dir, want)
			}
		})
	}
}

func TestBuild_PreservesOrder(t *testing.T) {
	recipe, err := api.DefaultRecipe()
	if err != nil {
		t.Fatal(err)
	}

	env := testEnv(t, &toolchaintest.Recorder{})
	env.Data = map[string]any{
		"frontendRepository": "https://example.com/t.git",
		"backendAuthPackage": "ozzie/nextstream",
	}

	built, err := Build(recipe, env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(built) != len(recipe.Steps) {
		t.Fatalf("expected %d steps, got %d", len(recipe.Steps), len(built))
	}
	for i := range built {
		if built[i].Name != recipe.Steps[i].Name {
			t.Errorf("step %d = %q, want %q", i, built[i].Name, recipe.Steps[i].Name)
		}
		if built[i].Announcement() != recipe.Steps[i].Message {
			t.Errorf("step %d message = %q, want %q", i, built[i].Announcement(), recipe.Steps[i].Message)
		}
	}
}

func TestBuild_ReportsFailingStep(t *testing.T) {
	recipe := &api.Recipe{Steps: []api.StepConfig{
		{Name: "ok", Type: api.StepTypeCommand, Command: &api.CommandConfig{Exec: []string{"true"}}},
		{Name: "broken", Type: api.StepTypeCommand, Command: &api.CommandConfig{Exec: []string{"{{ .nope }}"}}},
	}}

	_, err := Build(recipe, testEnv(t, &toolchaintest.Recorder{}))
	if err == nil || !strings.Contains(err.Error(), `creating step "broken"`) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewStep_Timeout(t *testing.T) {
	rec := &toolchaintest.Recorder{Handler: func(toolchain.Command) error { return nil }}
	env := testEnv(t, nil)

	var deadline time.Time
	env.Invoker = invokerFunc(func(ctx context.Context, cmd toolchain.Command) error {
		deadline, _ = ctx.Deadline()
		return rec.Invoke(ctx, cmd)
	})

	step, err := NewStep(api.StepConfig{
		Name:    "slow",
		Type:    api.StepTypeCommand,
		Timeout: "1m",
		Command: &api.CommandConfig{Exec: []string{"composer", "install"}},
	}, env)
	if err != nil {
		t.Fatal(err)
	}

	if err := step.Action(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deadline.IsZero() {
		t.Fatal("expected a deadline on the step context")
	}
	if remaining := time.Until(deadline); remaining <= 0 || remaining > time.Minute {
		t.Errorf("unexpected deadline in %v", remaining)
	}
}

func TestNewStep_NoLayout(t *testing.T) {
	_, err := NewStep(api.StepConfig{Name: "a", Type: api.StepTypeCommand}, Env{})
	if err == nil {
		t.Fatal("expected error without layout")
	}
}

type invokerFunc func(ctx context.Context, cmd toolchain.Command) error

func (f invokerFunc) Invoke(ctx context.Context, cmd toolchain.Command) error { return f(ctx, cmd) }

func TestCommandStep_PassesThroughErrors(t *testing.T) {
	cause := &toolchain.Error{Command: "npm i", ExitCode: 1, Stderr: "npm ERR!"}
	rec := &toolchaintest.Recorder{Handler: func(toolchain.Command) error { return cause }}
	env := testEnv(t, rec)

	step, err := NewStep(api.StepConfig{
		Name:    "install frontend dependencies",
		Type:    api.StepTypeCommand,
		Dir:     "frontend",
		Command: &api.CommandConfig{Exec: []string{"npm", "i"}},
	}, env)
	if err != nil {
		t.Fatal(err)
	}

	err = step.Action(context.Background())
	var tErr *toolchain.Error
	if !errors.As(err, &tErr) || tErr.ExitCode != 1 {
		t.Fatalf("expected toolchain error, got %v", err)
	}
}
