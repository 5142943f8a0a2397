package materialize

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/systemstart/create-nextstream-app/pkg/toolchain"
)

const vcsDir = ".git"

// Remote clones a git repository and, unless KeepVCS is set, strips its
// history so the result is a plain copy.
type Remote struct {
	Repository string
	Ref        string // branch or tag; empty means the remote default
	Depth      int    // 0 clones full history
	KeepVCS    bool
	Invoker    toolchain.Invoker
}

func (r *Remote) String() string { return r.Repository }

func (r *Remote) Materialize(ctx context.Context, dest string) error {
	if r.Invoker == nil {
		return fmt.Errorf("no toolchain invoker configured")
	}

	abs, err := filepath.Abs(dest)
	if err != nil {
		return fmt.Errorf("resolving destination: %w", err)
	}

	args := []string{"clone"}
	if r.Depth > 0 {
		args = append(args, "--depth", strconv.Itoa(r.Depth))
	}
	if r.Ref != "" {
		args = append(args, "--branch", r.Ref)
	}
	// "--" keeps a repository starting with "-" from being read as an option.
	args = append(args, "--", r.Repository, filepath.Base(abs))

	err = r.Invoker.Invoke(ctx, toolchain.Command{
		Name: "git",
		Args: args,
		Dir:  filepath.Dir(abs),
	})
	if err != nil {
		return fmt.Errorf("git clone failed: %w", err)
	}

	st, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("clone produced no destination: %w", err)
	}
	if !st.IsDir() {
		return fmt.Errorf("clone destination %s is not a directory", abs)
	}

	if r.KeepVCS {
		return nil
	}
	if err := os.RemoveAll(filepath.Join(abs, vcsDir)); err != nil {
		return fmt.Errorf("removing %s: %w", vcsDir, err)
	}
	return nil
}
