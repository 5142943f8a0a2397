// Package layout plans the directory tree of a new project.
package layout

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

var (
	ErrDirectoryExists    = errors.New("directory already exists")
	ErrInvalidProjectName = errors.New("invalid project name")
	ErrOutsideRoot        = errors.New("path escapes project root")
)

// DirectoryExistsError reports that the project root is already present.
type DirectoryExistsError struct {
	Path string
}

func (e *DirectoryExistsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrDirectoryExists, e.Path)
}

func (e *DirectoryExistsError) Is(target error) bool { return target == ErrDirectoryExists }

// Layout is the planned project tree. It is read-only once Plan returns.
type Layout struct {
	root        string
	subProjects map[string]string
}

// Plan prepares the layout and creates the root directory.
func Plan(cwd, projectName string, subProjects map[string]string) (*Layout, error) {
	l, err := Prepare(cwd, projectName, subProjects)
	if err != nil {
		return nil, err
	}
	if err := l.Create(); err != nil {
		return nil, err
	}
	return l, nil
}

// Prepare resolves projectName against cwd and verifies nothing exists at
// that path. It touches nothing on disk. subProjects maps a key such as
// "frontend" to a path relative to the root.
func Prepare(cwd, projectName string, subProjects map[string]string) (*Layout, error) {
	if err := validateName(projectName); err != nil {
		return nil, err
	}

	base, err := filepath.Abs(cwd)
	if err != nil {
		return nil, fmt.Errorf("resolving working directory: %w", err)
	}
	root := filepath.Join(base, projectName)

	l := &Layout{root: root, subProjects: make(map[string]string, len(subProjects))}
	for key, rel := range subProjects {
		p, err := l.within(rel)
		if err != nil {
			return nil, fmt.Errorf("sub-project %q: %w", key, err)
		}
		l.subProjects[key] = p
	}

	if _, err := os.Lstat(root); err == nil {
		return nil, &DirectoryExistsError{Path: root}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("checking project root: %w", err)
	}

	return l, nil
}

// Create makes the root directory. Sub-project directories are left to the
// steps that populate them.
func (l *Layout) Create() error {
	if err := os.Mkdir(l.root, 0o750); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return &DirectoryExistsError{Path: l.root}
		}
		return fmt.Errorf("creating project root: %w", err)
	}
	return nil
}

// Contains reports an error wrapping ErrOutsideRoot unless p lies within
// the root.
func (l *Layout) Contains(p string) error {
	r, err := filepath.Rel(l.root, p)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: %q", ErrOutsideRoot, p)
	}
	return nil
}

func validateName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidProjectName, name)
	case filepath.IsAbs(name):
		return fmt.Errorf("%w: %q must be relative", ErrInvalidProjectName, name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: %q must be a single path segment", ErrInvalidProjectName, name)
	}
	return nil
}

// Root returns the absolute project root.
func (l *Layout) Root() string { return l.root }

// SubProject returns the absolute path of the sub-project registered under key.
func (l *Layout) SubProject(key string) (string, bool) {
	p, ok := l.subProjects[key]
	return p, ok
}

// SubProjects returns a copy of the key to absolute path mapping.
func (l *Layout) SubProjects() map[string]string {
	return maps.Clone(l.subProjects)
}

// Keys returns the sub-project keys in sorted order.
func (l *Layout) Keys() []string {
	return slices.Sorted(maps.Keys(l.subProjects))
}

// Resolve maps a step directory to an absolute path: "" is the root, a
// sub-project key is that sub-project, anything else is root-relative.
func (l *Layout) Resolve(dir string) (string, error) {
	if dir == "" {
		return l.root, nil
	}
	if p, ok := l.subProjects[dir]; ok {
		return p, nil
	}
	return l.within(dir)
}

func (l *Layout) within(rel string) (string, error) {
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("%w: %q is absolute", ErrOutsideRoot, rel)
	}
	p := filepath.Join(l.root, rel)
	if l.Contains(p) != nil {
		return "", fmt.Errorf("%w: %q", ErrOutsideRoot, rel)
	}
	return p, nil
}
