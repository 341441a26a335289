package walk

import (
	"errors"
	"io/fs"
	"syscall"
)

// ListError records a failure to list or classify a directory during a walk.
type ListError struct {
	Op   string // "readdir" or "classify"
	Path string // directory being listed, or the entry being classified
	Err  error
}

func (e *ListError) Error() string {
	return "levelwalk: " + e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *ListError) Unwrap() error { return e.Err }

// IsNotFound reports whether err was caused by a path that does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// IsPermission reports whether err was caused by missing access rights.
func IsPermission(err error) bool {
	return errors.Is(err, fs.ErrPermission)
}

// IsNotDir reports whether err was caused by listing something that is not a
// directory.
func IsNotDir(err error) bool {
	return errors.Is(err, syscall.ENOTDIR)
}

// isVanished reports whether a classification failure means the entry no
// longer resolves to anything: it was removed after listing, it is a dangling
// symlink, or it is a symlink loop.
func isVanished(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ELOOP)
}
