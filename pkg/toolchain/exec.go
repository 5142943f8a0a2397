package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"time"
)

// waitDelay bounds how long output pipes are drained after a cancelled
// command is killed, in case grandchildren still hold them open.
const waitDelay = 2 * time.Second

// Exec runs commands as child processes of the current process.
type Exec struct {
	// Stdout and Stderr receive the live output of each command when set.
	// Output is captured either way so it can be surfaced on failure.
	Stdout io.Writer
	Stderr io.Writer
}

// NewExec returns an Exec invoker. With verbose set, command output is
// streamed to the process's own stdout and stderr.
func NewExec(verbose bool) *Exec {
	if verbose {
		return &Exec{Stdout: os.Stdout, Stderr: os.Stderr}
	}
	return &Exec{}
}

func (x *Exec) Invoke(ctx context.Context, c Command) error {
	line := c.String()

	bin, err := exec.LookPath(c.Name)
	if err != nil {
		return &Error{Command: line, ExitCode: -1, Err: fmt.Errorf("%s binary not found in PATH: %w", c.Name, err)}
	}

	slog.Debug("invoking command", "command", line, "dir", c.Dir)

	cmd := exec.CommandContext(ctx, bin, c.Args...)
	cmd.Dir = c.Dir
	cmd.WaitDelay = waitDelay
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = tee(&stdout, x.Stdout)
	cmd.Stderr = tee(&stderr, x.Stderr)

	err = cmd.Run()
	if err == nil {
		return nil
	}

	result := &Error{
		Command:  line,
		ExitCode: -1,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Err:      err,
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		result.Err = fmt.Errorf("%w: %w", ctxErr, err)
	}
	return result
}

func tee(buf *bytes.Buffer, w io.Writer) io.Writer {
	if w == nil {
		return buf
	}
	return io.MultiWriter(buf, w)
}
