package walk

import (
	"io/fs"
	"os"

	"github.com/karrick/godirwalk"
	"github.com/spf13/afero"
)

// FS is the file system surface a walk reads through.
type FS interface {
	// ReadDir returns the names of the entries directly inside dir, in the
	// order the backend reports them.
	ReadDir(dir string) ([]string, error)

	// IsDir reports whether path currently denotes a directory. Symbolic
	// links are followed. A path that no longer resolves is not a directory.
	IsDir(path string) (bool, error)
}

// Entry is a directory entry with its classification already resolved.
type Entry struct {
	Name  string
	IsDir bool
}

// EntryReader is implemented by backends that can list and classify a
// directory in one pass. A Walker prefers it over ReadDir plus IsDir.
type EntryReader interface {
	ReadEntries(dir string) ([]Entry, error)
}

// defaultScratchBufferSize is the size of the buffer HostFS hands to the
// directory-reading syscall.
const defaultScratchBufferSize = 32 * 1024

// HostFS reads the operating system's file system through godirwalk.
// A HostFS reuses one scratch buffer and must not be shared between
// goroutines; NewHostFS is cheap enough to call per walk.
type HostFS struct {
	scratch []byte
}

// NewHostFS returns a HostFS with its own scratch buffer.
func NewHostFS() *HostFS {
	return NewHostFSWithBuffer(0)
}

// NewHostFSWithBuffer returns a HostFS whose scratch buffer is size bytes.
// A size of zero or less uses the default; sizes below
// godirwalk.MinimumScratchBufferSize are raised to it, since godirwalk would
// otherwise allocate a new buffer on every read.
func NewHostFSWithBuffer(size int) *HostFS {
	if size <= 0 {
		size = defaultScratchBufferSize
	}
	size = max(size, godirwalk.MinimumScratchBufferSize)
	return &HostFS{scratch: make([]byte, size)}
}

// ReadDir lists dir in host order.
func (h *HostFS) ReadDir(dir string) ([]string, error) {
	names, err := godirwalk.ReadDirnames(dir, h.scratch)
	if err != nil {
		return nil, pathError("readdir", dir, err)
	}
	return names, nil
}

// IsDir stats path, following symbolic links.
func (h *HostFS) IsDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if isVanished(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}

// ReadEntries lists dir and classifies each entry from the type information
// the directory read already returned. Only symbolic links need an extra stat.
func (h *HostFS) ReadEntries(dir string) ([]Entry, error) {
	dirents, err := godirwalk.ReadDirents(dir, h.scratch)
	if err != nil {
		return nil, pathError("readdir", dir, err)
	}

	entries := make([]Entry, 0, len(dirents))
	for _, de := range dirents {
		isDir, err := de.IsDirOrSymlinkToDir()
		if err != nil {
			if !isVanished(err) {
				return nil, err
			}
			isDir = false
		}
		entries = append(entries, Entry{Name: de.Name(), IsDir: isDir})
	}
	return entries, nil
}

// pathError makes sure bare errnos from the directory read carry the path.
func pathError(op, path string, err error) error {
	if _, ok := err.(*fs.PathError); ok {
		return err
	}
	return &fs.PathError{Op: op, Path: path, Err: err}
}

// AferoFS adapts an afero file system, such as an in-memory tree or a
// base-path sandbox, to FS.
type AferoFS struct {
	Fs afero.Fs
}

// ReadDir lists dir without sorting.
func (a AferoFS) ReadDir(dir string) ([]string, error) {
	f, err := a.Fs.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	names, err := f.Readdirnames(-1)
	if err != nil {
		return nil, pathError("readdir", dir, err)
	}
	return names, nil
}

// IsDir stats path on the wrapped file system.
func (a AferoFS) IsDir(path string) (bool, error) {
	info, err := a.Fs.Stat(path)
	if err != nil {
		if isVanished(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}
