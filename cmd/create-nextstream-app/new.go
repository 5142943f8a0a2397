package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/systemstart/create-nextstream-app/pkg/api"
	"github.com/systemstart/create-nextstream-app/pkg/config"
	"github.com/systemstart/create-nextstream-app/pkg/layout"
	"github.com/systemstart/create-nextstream-app/pkg/logging"
	"github.com/systemstart/create-nextstream-app/pkg/pipeline"
	"github.com/systemstart/create-nextstream-app/pkg/progress"
	"github.com/systemstart/create-nextstream-app/pkg/scaffold"
	"github.com/systemstart/create-nextstream-app/pkg/templates"
	"github.com/systemstart/create-nextstream-app/pkg/toolchain"
)

func newNewCommand(configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "new <name>",
		Short:   "Scaffold a new Laravel + Next.js application",
		Example: "  create-nextstream-app new app",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNew(cmd, *configFile, args[0])
		},
	}

	flags := cmd.Flags()
	flags.String(config.KeyRecipe, "", "recipe YAML file (default: built-in Laravel + Next.js recipe)")
	flags.String(config.KeyContextFile, "", "YAML file overriding recipe context values")
	flags.Bool(config.KeyCleanupOnFailure, false, "remove the project directory when a step fails")
	flags.BoolP(config.KeyVerbose, "v", false, "stream tool output")
	flags.String(config.KeyLoggingType, logging.Tint, "logging type: json, text or tint")
	flags.String(config.KeyLogLevel, "info", "logging level: debug, info, warn, error")
	return cmd
}

func runNew(cmd *cobra.Command, configFile, name string) error {
	envLoaded, err := includeEnv()
	if err != nil {
		return exitWith(exitDotenvError, err)
	}

	cfg, err := config.Load(cmd.Flags(), configFile)
	if err != nil {
		return exitWith(exitConfigError, err)
	}

	if err := logging.Initialize(os.Stderr, cfg.LoggingType, cfg.LogLevel); err != nil {
		return exitWith(exitLoggingError, err)
	}
	if envLoaded {
		slog.Info("using .env file")
	}

	recipe, err := loadRecipe(cfg.Recipe)
	if err != nil {
		return exitWith(exitLoadRecipeFailed, err)
	}

	var userContext map[string]any
	if cfg.ContextFile != "" {
		userContext, err = scaffold.LoadContextFile(cfg.ContextFile)
		if err != nil {
			return exitWith(exitLoadContextFailed, fmt.Errorf("%s: %w", cfg.ContextFile, err))
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, err = scaffold.Run(ctx, scaffold.Request{ProjectName: name}, scaffold.Options{
		Recipe:  recipe,
		Invoker: toolchain.NewExec(cfg.Verbose),
		Reporter: progress.Multi(
			&progress.Console{Out: cmd.OutOrStdout(), Err: cmd.ErrOrStderr()},
			progress.Log{},
		),
		Templates:        templates.FS(),
		Context:          userContext,
		CleanupOnFailure: cfg.CleanupOnFailure,
	})
	if err != nil {
		return classify(ctx, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Project %s created\n", name)
	return nil
}

// classify maps a scaffold error to its exit code.
func classify(ctx context.Context, err error) error {
	var failure *pipeline.Failure
	switch {
	case errors.Is(err, layout.ErrDirectoryExists):
		return exitWith(exitDirectoryExists, err)
	case errors.Is(err, layout.ErrInvalidProjectName):
		return exitWith(exitInvalidProjectName, err)
	case errors.As(err, &failure):
		if ctx.Err() != nil {
			return exitWith(exitStepFailed, fmt.Errorf("interrupted during step %q", failure.Step))
		}
		return &exitError{code: exitStepFailed, quiet: true, err: err}
	default:
		return exitWith(exitToolErrors, err)
	}
}

func loadRecipe(filename string) (*api.Recipe, error) {
	if filename == "" {
		return api.DefaultRecipe()
	}
	return api.LoadRecipe(filename)
}

func includeEnv() (bool, error) {
	err := godotenv.Load()
	if err != nil {
		if !os.IsNotExist(err) {
			return false, fmt.Errorf("failed to load .env: %w", err)
		}
		return false, nil
	}
	return true, nil
}
