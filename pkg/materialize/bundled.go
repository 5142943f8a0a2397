package materialize

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// Bundled copies a directory tree from FS verbatim. File contents are never
// rendered or substituted.
type Bundled struct {
	FS      fs.FS
	Root    string   // directory inside FS to copy; "" or "." is the FS root
	Exclude []string // doublestar patterns relative to Root
	Overlay bool     // allow copying into a non-empty destination
	Name    string   // label for logs and errors
}

func (b *Bundled) String() string {
	if b.Name != "" {
		return b.Name
	}
	return "bundled:" + b.root()
}

func (b *Bundled) root() string {
	if b.Root == "" {
		return "."
	}
	return b.Root
}

func (b *Bundled) Materialize(ctx context.Context, dest string) error {
	if b.FS == nil {
		return fmt.Errorf("no template filesystem configured")
	}

	for _, pattern := range b.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}

	st, err := fs.Stat(b.FS, b.root())
	if err != nil {
		return fmt.Errorf("template source: %w", err)
	}
	if !st.IsDir() {
		return fmt.Errorf("template source %s is not a directory", b.root())
	}

	if !b.Overlay {
		if err := ensureEmpty(dest); err != nil {
			return err
		}
	}

	sub, err := fs.Sub(b.FS, b.root())
	if err != nil {
		return fmt.Errorf("template source: %w", err)
	}

	return fs.WalkDir(sub, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walk error at %s: %w", p, err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if p != "." && b.excluded(p) {
			slog.Debug("skipping excluded template entry", "path", p)
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		return copyEntry(sub, dest, p, d)
	})
}

func (b *Bundled) excluded(p string) bool {
	for _, pattern := range b.Exclude {
		if ok, _ := doublestar.Match(pattern, p); ok {
			return true
		}
	}
	return false
}

func ensureEmpty(dest string) error {
	entries, err := os.ReadDir(dest)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking destination: %w", err)
	}
	if len(entries) > 0 {
		return fmt.Errorf("destination %s is not empty", dest)
	}
	return nil
}

func copyEntry(fsys fs.FS, dest, rel string, d fs.DirEntry) error {
	target := filepath.Join(dest, filepath.FromSlash(rel))

	if d.IsDir() {
		if err := os.MkdirAll(target, 0o750); err != nil {
			return fmt.Errorf("creating directory %s: %w", target, err)
		}
		return nil
	}

	data, err := fs.ReadFile(fsys, rel)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path.Clean(rel), err)
	}

	info, err := d.Info()
	if err != nil {
		return fmt.Errorf("stat %s: %w", rel, err)
	}

	// Embedded files are read-only; the copy must stay editable.
	mode := info.Mode().Perm() | 0o600

	if err := os.WriteFile(target, data, mode); err != nil {
		return fmt.Errorf("writing %s: %w", target, err)
	}
	// WriteFile keeps the mode of an existing file when overlaying.
	if err := os.Chmod(target, mode); err != nil {
		return fmt.Errorf("chmod %s: %w", target, err)
	}
	return nil
}
