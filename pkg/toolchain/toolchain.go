// Package toolchain runs external command-line programs on behalf of the
// scaffolding pipeline. Commands are opaque: success means exit status zero.
package toolchain

import (
	"context"
	"fmt"
	"strings"
)

// Command describes one external program invocation.
type Command struct {
	Name string
	Args []string
	Dir  string   // working directory
	Env  []string // extra KEY=VALUE pairs appended to the process environment
}

// String renders the command line as it would be typed in a shell.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Invoker runs a command synchronously and reports only success or failure.
type Invoker interface {
	Invoke(ctx context.Context, cmd Command) error
}

// Error is returned when a command could not be launched or exited non-zero.
// ExitCode is -1 when the process never started.
type Error struct {
	Command  string
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

func (e *Error) Error() string {
	if e.ExitCode < 0 {
		return fmt.Sprintf("running %q: %v", e.Command, e.Err)
	}
	msg := fmt.Sprintf("%q exited with status %d", e.Command, e.ExitCode)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += "\nstderr: " + stderr
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Diagnostics returns the tool's own output, preferring stderr.
func (e *Error) Diagnostics() string {
	if s := strings.TrimSpace(e.Stderr); s != "" {
		return s
	}
	return strings.TrimSpace(e.Stdout)
}
