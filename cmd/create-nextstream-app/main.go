package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

const (
	_ = iota
	exitUsage
	exitConfigError
	exitDotenvError
	exitLoggingError
	exitLoadRecipeFailed
	exitLoadContextFailed
	exitDirectoryExists
	exitInvalidProjectName
	exitStepFailed
	exitToolErrors
)

// exitError carries the process exit code for a failed command. When quiet
// is set the failure was already reported to the user.
type exitError struct {
	code  int
	quiet bool
	err   error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func exitWith(code int, err error) error {
	return &exitError{code: code, err: err}
}

func main() {
	err := newRootCommand().Execute()
	if err == nil {
		return
	}

	code := exitUsage
	var eErr *exitError
	if errors.As(err, &eErr) {
		code = eErr.code
		if eErr.quiet {
			os.Exit(code)
		}
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(code)
}

func newRootCommand() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "create-nextstream-app",
		Short:         "Scaffold a Laravel + Next.js application",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file with default flag values")

	root.AddCommand(newNewCommand(&configFile), newVersionCommand())
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
