package walk

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// orderedFS is an in-memory tree that lists entries in exactly the order they
// were declared, so tests can pin sibling order. A trailing "/" marks a
// directory entry.
type orderedFS struct {
	entries map[string][]string
}

func newOrderedFS(entries map[string][]string) *orderedFS {
	return &orderedFS{entries: entries}
}

func (o *orderedFS) ReadDir(dir string) ([]string, error) {
	listed, ok := o.entries[dir]
	if !ok {
		if o.isFile(dir) {
			return nil, &fs.PathError{Op: "readdir", Path: dir, Err: fs.ErrInvalid}
		}
		return nil, &fs.PathError{Op: "open", Path: dir, Err: fs.ErrNotExist}
	}
	names := make([]string, len(listed))
	for i, name := range listed {
		names[i] = strings.TrimSuffix(name, "/")
	}
	return names, nil
}

func (o *orderedFS) IsDir(path string) (bool, error) {
	_, ok := o.entries[path]
	return ok, nil
}

func (o *orderedFS) isFile(path string) bool {
	listed, ok := o.entries[filepath.Dir(path)]
	if !ok {
		return false
	}
	for _, name := range listed {
		if name == filepath.Base(path) {
			return true
		}
	}
	return false
}

// faultFS wraps an FS, records every call and fails chosen paths.
type faultFS struct {
	FS

	mu           sync.Mutex
	readDirCalls []string
	failReadDir  map[string]error
	failIsDir    map[string]error
}

func (f *faultFS) ReadDir(dir string) ([]string, error) {
	f.mu.Lock()
	f.readDirCalls = append(f.readDirCalls, dir)
	err := f.failReadDir[dir]
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.FS.ReadDir(dir)
}

func (f *faultFS) IsDir(path string) (bool, error) {
	f.mu.Lock()
	err := f.failIsDir[path]
	f.mu.Unlock()
	if err != nil {
		return false, err
	}
	return f.FS.IsDir(path)
}

func (f *faultFS) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.readDirCalls...)
}

// scenarioTree builds R/{A/g.txt, f.txt} in memory.
func scenarioTree() *orderedFS {
	return newOrderedFS(map[string][]string{
		"R":   {"A/", "f.txt"},
		"R/A": {"g.txt"},
	})
}

// deepTree builds a tree three levels deep with interleaved siblings.
func deepTree() *orderedFS {
	return newOrderedFS(map[string][]string{
		"root":          {"b/", "x.txt", "a/", "c/"},
		"root/b":        {"b1/", "b.txt"},
		"root/b/b1":     {"b1a/"},
		"root/b/b1/b1a": {"deep.txt"},
		"root/a":        {},
		"root/c":        {"c1/", "c.txt"},
		"root/c/c1":     {},
	})
}

func paths(records []Record) []string {
	out := make([]string, len(records))
	for i, rec := range records {
		out[i] = rec.Path
	}
	return out
}

// makeDiskTree creates the given relative paths under a temp directory. A
// trailing "/" creates a directory, anything else a small file.
func makeDiskTree(t testing.TB, layout ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, rel := range layout {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if strings.HasSuffix(rel, "/") {
			require.NoError(t, os.MkdirAll(full, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("test"), 0o644))
	}
	return root
}
