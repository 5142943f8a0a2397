// Package materialize populates a destination folder from a template source:
// either a remote git repository or a bundled directory tree.
package materialize

import (
	"context"
	"fmt"
	"log/slog"
)

// Source is a template that can be written into a destination directory.
type Source interface {
	Materialize(ctx context.Context, dest string) error
	String() string
}

// Error reports a failed materialization. The destination may be left
// partially populated.
type Error struct {
	Source string
	Dest   string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("materializing %s into %s: %v", e.Source, e.Dest, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Materialize writes src into dest, wrapping any failure in *Error.
func Materialize(ctx context.Context, src Source, dest string) error {
	slog.Info("materializing template", "source", src.String(), "dest", dest)
	if err := src.Materialize(ctx, dest); err != nil {
		return &Error{Source: src.String(), Dest: dest, Err: err}
	}
	return nil
}
