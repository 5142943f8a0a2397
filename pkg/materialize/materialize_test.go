package materialize

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/systemstart/create-nextstream-app/pkg/toolchain"
	"github.com/systemstart/create-nextstream-app/pkg/toolchain/toolchaintest"
)

func templateFS() fstest.MapFS {
	return fstest.MapFS{
		"frontend/package.json":      {Data: []byte(`{"name": "{{ .project }}"}`)},
		"frontend/lib/http.ts":       {Data: []byte("export default http;\n")},
		"frontend/bin/dev.sh":        {Data: []byte("#!/bin/sh\n"), Mode: 0o755},
		"frontend/node_modules/x.js": {Data: []byte("ignored")},
		"frontend/.git/HEAD":         {Data: []byte("ref: refs/heads/main")},
		"backend/composer.json":      {Data: []byte("{}")},
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestBundled_CopiesVerbatim(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "frontend")

	src := &Bundled{FS: templateFS(), Root: "frontend"}
	if err := Materialize(context.Background(), src, dest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := readFile(t, filepath.Join(dest, "package.json")); got != `{"name": "{{ .project }}"}` {
		t.Errorf("file content must not be rendered, got %q", got)
	}
	if got := readFile(t, filepath.Join(dest, "lib", "http.ts")); got != "export default http;\n" {
		t.Errorf("unexpected content %q", got)
	}
	if _, err := os.Stat(filepath.Join(dest, "..", "backend")); !os.IsNotExist(err) {
		t.Error("only the selected root must be copied")
	}

	st, err := os.Stat(filepath.Join(dest, "bin", "dev.sh"))
	if err != nil {
		t.Fatal(err)
	}
	if st.Mode().Perm()&0o100 == 0 {
		t.Errorf("executable bit lost, mode %v", st.Mode())
	}
	st, err = os.Stat(filepath.Join(dest, "package.json"))
	if err != nil {
		t.Fatal(err)
	}
	if st.Mode().Perm()&0o600 != 0o600 {
		t.Errorf("copied file must be owner read/write, mode %v", st.Mode())
	}
}

func TestBundled_Exclude(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "frontend")

	src := &Bundled{
		FS:      templateFS(),
		Root:    "frontend",
		Exclude: []string{"node_modules", ".git/**", "**/*.sh"},
	}
	if err := Materialize(context.Background(), src, dest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, gone := range []string{"node_modules", filepath.Join(".git", "HEAD"), filepath.Join("bin", "dev.sh")} {
		if _, err := os.Stat(filepath.Join(dest, gone)); !os.IsNotExist(err) {
			t.Errorf("%s should be excluded", gone)
		}
	}
	if _, err := os.Stat(filepath.Join(dest, "package.json")); err != nil {
		t.Errorf("package.json should be copied: %v", err)
	}
}

func TestBundled_InvalidPattern(t *testing.T) {
	src := &Bundled{FS: templateFS(), Root: "frontend", Exclude: []string{"[unclosed"}}
	err := Materialize(context.Background(), src, filepath.Join(t.TempDir(), "out"))
	if err == nil || !strings.Contains(err.Error(), "invalid exclude pattern") {
		t.Fatalf("expected invalid pattern error, got %v", err)
	}
}

func TestBundled_MissingSource(t *testing.T) {
	src := &Bundled{FS: templateFS(), Root: "mobile"}
	err := Materialize(context.Background(), src, filepath.Join(t.TempDir(), "out"))

	var mErr *Error
	if !errors.As(err, &mErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if mErr.Source != "bundled:mobile" {
		t.Errorf("Source = %q", mErr.Source)
	}
}

func TestBundled_NonEmptyDestination(t *testing.T) {
	dest := t.TempDir()
	if err := os.WriteFile(filepath.Join(dest, "existing.txt"), []byte("user work"), 0o600); err != nil {
		t.Fatal(err)
	}

	src := &Bundled{FS: templateFS(), Root: "backend"}
	err := Materialize(context.Background(), src, dest)
	if err == nil || !strings.Contains(err.Error(), "not empty") {
		t.Fatalf("expected non-empty destination error, got %v", err)
	}

	src.Overlay = true
	if err := Materialize(context.Background(), src, dest); err != nil {
		t.Fatalf("overlay: unexpected error: %v", err)
	}
	if got := readFile(t, filepath.Join(dest, "existing.txt")); got != "user work" {
		t.Errorf("overlay must keep unrelated files, got %q", got)
	}
	if got := readFile(t, filepath.Join(dest, "composer.json")); got != "{}" {
		t.Errorf("unexpected content %q", got)
	}
}

// fakeClone simulates git clone by creating the destination with a .git dir.
func fakeClone(cmd toolchain.Command) error {
	dest := filepath.Join(cmd.Dir, cmd.Args[len(cmd.Args)-1])
	if err := os.MkdirAll(filepath.Join(dest, ".git"), 0o750); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dest, "package.json"), []byte("{}"), 0o600)
}

func TestRemote_ClonesAndStripsVCS(t *testing.T) {
	root := t.TempDir()
	dest := filepath.Join(root, "frontend")
	rec := &toolchaintest.Recorder{Handler: fakeClone}

	src := &Remote{Repository: "https://example.com/template.git", Depth: 1, Invoker: rec}
	if err := Materialize(context.Background(), src, dest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	calls := rec.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}
	if got := calls[0].String(); got != "git clone --depth 1 -- https://example.com/template.git frontend" {
		t.Errorf("command = %q", got)
	}
	if calls[0].Dir != root {
		t.Errorf("Dir = %q, want %q", calls[0].Dir, root)
	}

	if _, err := os.Stat(filepath.Join(dest, ".git")); !os.IsNotExist(err) {
		t.Error(".git should be removed")
	}
	if _, err := os.Stat(filepath.Join(dest, "package.json")); err != nil {
		t.Errorf("cloned content should remain: %v", err)
	}
}

func TestRemote_KeepVCSAndRef(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "frontend")
	rec := &toolchaintest.Recorder{Handler: fakeClone}

	src := &Remote{Repository: "repo.git", Ref: "v2", KeepVCS: true, Invoker: rec}
	if err := Materialize(context.Background(), src, dest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := rec.Commands()[0]; got != "git clone --branch v2 -- repo.git frontend" {
		t.Errorf("command = %q", got)
	}
	if _, err := os.Stat(filepath.Join(dest, ".git")); err != nil {
		t.Errorf(".git should be kept: %v", err)
	}
}

func TestRemote_CloneFailure(t *testing.T) {
	network := errors.New("could not resolve host")
	rec := &toolchaintest.Recorder{Handler: func(toolchain.Command) error { return network }}

	src := &Remote{Repository: "https://example.com/template.git", Invoker: rec}
	err := Materialize(context.Background(), src, filepath.Join(t.TempDir(), "frontend"))

	var mErr *Error
	if !errors.As(err, &mErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if !errors.Is(err, network) {
		t.Errorf("cause should be preserved, got %v", err)
	}
}

func TestRemote_NoDestinationProduced(t *testing.T) {
	rec := &toolchaintest.Recorder{}

	src := &Remote{Repository: "repo.git", Invoker: rec}
	err := Materialize(context.Background(), src, filepath.Join(t.TempDir(), "frontend"))
	if err == nil || !strings.Contains(err.Error(), "no destination") {
		t.Fatalf("expected missing destination error, got %v", err)
	}
}

func TestRemote_RepositoryIsNeverAnOption(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "frontend")
	rec := &toolchaintest.Recorder{Handler: fakeClone}

	src := &Remote{Repository: "--upload-pack=./hook.sh", Invoker: rec}
	if err := Materialize(context.Background(), src, dest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	args := rec.Calls()[0].Args
	sep := slices.Index(args, "--")
	if sep < 0 || slices.Index(args, src.Repository) != sep+1 {
		t.Errorf("repository must follow the end-of-options marker, args = %q", args)
	}
}
