// Package progress announces pipeline steps to the user.
package progress

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/systemstart/create-nextstream-app/pkg/pipeline"
	"github.com/systemstart/create-nextstream-app/pkg/toolchain"
)

// Console prints one line per started step and a diagnostic on failure.
type Console struct {
	Out io.Writer // step announcements
	Err io.Writer // failure diagnostics; Out is used when nil
}

func (c *Console) StepStarted(index, total int, step pipeline.Step) {
	fmt.Fprintf(c.Out, "[%d/%d] %s\n", index+1, total, step.Announcement())
}

func (c *Console) StepSucceeded(int, int, pipeline.Step) {}

func (c *Console) StepFailed(_, _ int, step pipeline.Step, err error) {
	w := c.Err
	if w == nil {
		w = c.Out
	}

	var tErr *toolchain.Error
	if errors.As(err, &tErr) {
		// The error text carries the exit status and stderr; stdout is
		// only shown when stderr had nothing to say.
		fmt.Fprintf(w, "step %q failed: %v\n", step.Name, tErr)
		if strings.TrimSpace(tErr.Stderr) == "" {
			if out := tErr.Diagnostics(); out != "" {
				fmt.Fprintln(w, out)
			}
		}
		return
	}
	fmt.Fprintf(w, "step %q failed: %v\n", step.Name, err)
}

// Log writes step transitions to the default slog logger.
type Log struct{}

func (Log) StepStarted(index, total int, step pipeline.Step) {
	slog.Info("running step", "step", step.Name, "index", index+1, "total", total, "dir", step.Dir)
}

func (Log) StepSucceeded(index, total int, step pipeline.Step) {
	slog.Debug("step succeeded", "step", step.Name, "index", index+1, "total", total)
}

func (Log) StepFailed(index, total int, step pipeline.Step, err error) {
	slog.Error("step failed", "step", step.Name, "index", index+1, "total", total, "error", err)
}

// Multi fans every event out to each reporter in order.
func Multi(reporters ...pipeline.Reporter) pipeline.Reporter {
	return multi(reporters)
}

type multi []pipeline.Reporter

func (m multi) StepStarted(index, total int, step pipeline.Step) {
	for _, r := range m {
		r.StepStarted(index, total, step)
	}
}

func (m multi) StepSucceeded(index, total int, step pipeline.Step) {
	for _, r := range m {
		r.StepSucceeded(index, total, step)
	}
}

func (m multi) StepFailed(index, total int, step pipeline.Step, err error) {
	for _, r := range m {
		r.StepFailed(index, total, step, err)
	}
}
