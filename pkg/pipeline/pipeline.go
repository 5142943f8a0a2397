// Package pipeline executes an ordered list of named steps, stopping at the
// first failure. Steps run synchronously on the caller's goroutine; each one
// may rely on the filesystem state left by every step before it.
package pipeline

import (
	"context"
	"fmt"
)

// State is the lifecycle state of a Pipeline.
type State int

const (
	Pending State = iota
	Running
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Action is the unit of work performed by a step.
type Action func(ctx context.Context) error

// Step is one named unit of work.
type Step struct {
	Name    string
	Message string // progress announcement; Name is used when empty
	Dir     string // working directory the action operates in
	Action  Action
}

// Announcement returns the text shown to the user when the step starts.
func (s Step) Announcement() string {
	if s.Message != "" {
		return s.Message
	}
	return s.Name
}

// Failure identifies the step that stopped the pipeline and why.
type Failure struct {
	Step string
	Err  error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("step %q failed: %v", f.Step, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// Result is the outcome of a run. Completed lists step names in the order
// they finished.
type Result struct {
	Completed []string
	Failure   *Failure
}

// Succeeded reports whether every step completed.
func (r *Result) Succeeded() bool { return r.Failure == nil }

// Err returns the failure as an error, or nil on success.
func (r *Result) Err() error {
	if r.Failure == nil {
		return nil
	}
	return r.Failure
}

// Reporter observes step transitions. It cannot influence control flow.
type Reporter interface {
	StepStarted(index, total int, step Step)
	StepSucceeded(index, total int, step Step)
	StepFailed(index, total int, step Step, err error)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithReporter sets the progress reporter.
func WithReporter(r Reporter) Option {
	return func(p *Pipeline) { p.reporter = r }
}

// Pipeline is single-use: once it reaches Succeeded or Failed, Run returns
// the recorded Result without executing any step again. It is not safe for
// concurrent use.
type Pipeline struct {
	steps    []Step
	reporter Reporter
	state    State
	current  int
	result   *Result
}

// New returns a pending pipeline over a copy of steps.
func New(steps []Step, opts ...Option) *Pipeline {
	p := &Pipeline{steps: append([]Step(nil), steps...)}
	for _, opt := range opts {
		opt(p)
	}
	if p.reporter == nil {
		p.reporter = nopReporter{}
	}
	return p
}

// State returns the current lifecycle state.
func (p *Pipeline) State() State { return p.state }

// Current returns the index of the running (or failed) step.
func (p *Pipeline) Current() int { return p.current }

// Steps returns the names of the steps in execution order.
func (p *Pipeline) Steps() []string {
	names := make([]string, 0, len(p.steps))
	for _, s := range p.steps {
		names = append(names, s.Name)
	}
	return names
}

// Run executes the steps in order and returns the result.
func (p *Pipeline) Run(ctx context.Context) *Result {
	if p.result != nil {
		return p.result
	}

	p.state = Running
	result := &Result{Completed: make([]string, 0, len(p.steps))}
	total := len(p.steps)

	for i, step := range p.steps {
		p.current = i

		if err := ctx.Err(); err != nil {
			return p.fail(result, i, step, err)
		}

		p.reporter.StepStarted(i, total, step)

		var err error
		if step.Action == nil {
			err = fmt.Errorf("step has no action")
		} else {
			err = step.Action(ctx)
		}
		if err != nil {
			return p.fail(result, i, step, err)
		}

		result.Completed = append(result.Completed, step.Name)
		p.reporter.StepSucceeded(i, total, step)
	}

	p.state = Succeeded
	p.result = result
	return result
}

func (p *Pipeline) fail(result *Result, i int, step Step, err error) *Result {
	p.reporter.StepFailed(i, len(p.steps), step, err)
	result.Failure = &Failure{Step: step.Name, Err: err}
	p.state = Failed
	p.result = result
	return result
}

type nopReporter struct{}

func (nopReporter) StepStarted(int, int, Step)       {}
func (nopReporter) StepSucceeded(int, int, Step)     {}
func (nopReporter) StepFailed(int, int, Step, error) {}
