// Package toolchaintest provides a recording toolchain.Invoker for tests.
package toolchaintest

import (
	"context"
	"strings"
	"sync"

	"github.com/systemstart/create-nextstream-app/pkg/toolchain"
)

// Handler decides the outcome of a recorded command. It may also touch the
// filesystem to simulate what the real tool would have produced.
type Handler func(cmd toolchain.Command) error

// Recorder records every command it receives and never spawns a process.
type Recorder struct {
	Handler Handler

	mu    sync.Mutex
	calls []toolchain.Command
}

func (r *Recorder) Invoke(_ context.Context, cmd toolchain.Command) error {
	r.mu.Lock()
	r.calls = append(r.calls, cmd)
	r.mu.Unlock()

	if r.Handler == nil {
		return nil
	}
	return r.Handler(cmd)
}

// Calls returns a copy of the recorded commands in invocation order.
func (r *Recorder) Calls() []toolchain.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]toolchain.Command, len(r.calls))
	copy(out, r.calls)
	return out
}

// Commands returns the recorded command lines in invocation order.
func (r *Recorder) Commands() []string {
	calls := r.Calls()
	out := make([]string, 0, len(calls))
	for _, c := range calls {
		out = append(out, c.String())
	}
	return out
}

// FailOn returns a Handler that fails every command whose line starts with
// prefix and delegates everything else to next (which may be nil).
func FailOn(prefix string, err error, next Handler) Handler {
	return func(cmd toolchain.Command) error {
		if strings.HasPrefix(cmd.String(), prefix) {
			return err
		}
		if next != nil {
			return next(cmd)
		}
		return nil
	}
}
