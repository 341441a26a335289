// Package walk provides depth-limited, pre-order directory traversal.
//
// It is the public face of the levelwalk engine: a walk lists one directory
// at a time and yields a Record holding the directory's path, its
// subdirectory names and its other entry names, lazily and in pre-order.
package walk

import (
	"context"
	"iter"

	internal "github.com/TFMV/levelwalk/internal/walk"
	"go.uber.org/zap"
)

// Re-export the types from the internal package
type (
	// Record describes one visited directory.
	Record = internal.Record

	// Walker produces the records of a depth-limited walk one at a time.
	Walker = internal.Walker

	// Options configures a walk.
	Options = internal.Options

	// VisitFunc is called once per record by Visit.
	VisitFunc = internal.VisitFunc

	// FS is the file system surface a walk reads through.
	FS = internal.FS

	// Entry is a directory entry with its classification already resolved.
	Entry = internal.Entry

	// EntryReader lists and classifies a directory in one pass.
	EntryReader = internal.EntryReader

	// HostFS reads the operating system's file system.
	HostFS = internal.HostFS

	// AferoFS adapts an afero file system to FS.
	AferoFS = internal.AferoFS

	// ListError records a failure to list or classify a directory.
	ListError = internal.ListError

	// Stats holds traversal statistics for a single walk.
	Stats = internal.Stats

	// ProgressFn is called after every record a walk produces.
	ProgressFn = internal.ProgressFn

	// LogLevel defines the verbosity of logging.
	LogLevel = internal.LogLevel

	// Rendering
	Format        = internal.Format
	RenderOptions = internal.RenderOptions
	Renderer      = internal.Renderer

	// Watch types
	WatchEvent   = internal.WatchEvent
	WatchOptions = internal.WatchOptions
	WatchMessage = internal.WatchMessage
	WatchResult  = internal.WatchResult
	WatchHandler = internal.WatchHandler
)

// Re-export the constants
const (
	// Log levels
	LogLevelError = internal.LogLevelError
	LogLevelWarn  = internal.LogLevelWarn
	LogLevelInfo  = internal.LogLevelInfo
	LogLevelDebug = internal.LogLevelDebug

	// Output formats
	FormatText     = internal.FormatText
	FormatJSON     = internal.FormatJSON
	FormatTemplate = internal.FormatTemplate

	// Watch event constants
	EventCreate = internal.EventCreate
	EventModify = internal.EventModify
	EventDelete = internal.EventDelete
	EventRename = internal.EventRename
	EventChmod  = internal.EventChmod
)

// ErrInvalidFormat is returned for an output format the renderer does not know.
var ErrInvalidFormat = internal.ErrInvalidFormat

// New returns a Walker over the host file system.
func New(root string, maxDepth int) *Walker {
	return internal.New(root, maxDepth)
}

// NewWithOptions returns a Walker configured by opts.
func NewWithOptions(root string, maxDepth int, opts Options) *Walker {
	return internal.NewWithOptions(root, maxDepth, opts)
}

// Walk returns the records of a depth-limited walk of root as a sequence.
func Walk(root string, maxDepth int) iter.Seq2[Record, error] {
	return internal.Walk(root, maxDepth)
}

// WalkContext is Walk with a cancellation context.
func WalkContext(ctx context.Context, root string, maxDepth int) iter.Seq2[Record, error] {
	return internal.WalkContext(ctx, root, maxDepth)
}

// WalkWithOptions is Walk configured by opts.
func WalkWithOptions(root string, maxDepth int, opts Options) iter.Seq2[Record, error] {
	return internal.WalkWithOptions(root, maxDepth, opts)
}

// Visit calls fn for every record of a depth-limited walk of root.
func Visit(root string, maxDepth int, fn VisitFunc) error {
	return internal.Visit(root, maxDepth, fn)
}

// VisitWithOptions is Visit configured by opts.
func VisitWithOptions(root string, maxDepth int, opts Options, fn VisitFunc) error {
	return internal.VisitWithOptions(root, maxDepth, opts, fn)
}

// Collect walks root and returns every record produced before any failure.
func Collect(root string, maxDepth int) ([]Record, error) {
	return internal.Collect(root, maxDepth)
}

// CollectWithOptions is Collect configured by opts.
func CollectWithOptions(root string, maxDepth int, opts Options) ([]Record, error) {
	return internal.CollectWithOptions(root, maxDepth, opts)
}

// NewHostFS returns a HostFS with its own scratch buffer.
func NewHostFS() *HostFS {
	return internal.NewHostFS()
}

// NewHostFSWithBuffer returns a HostFS whose scratch buffer is size bytes.
func NewHostFSWithBuffer(size int) *HostFS {
	return internal.NewHostFSWithBuffer(size)
}

// NewLogger creates a zap logger with the specified log level.
func NewLogger(level LogLevel) *zap.Logger {
	return internal.NewLogger(level)
}

// IsNotFound reports whether err was caused by a path that does not exist.
func IsNotFound(err error) bool { return internal.IsNotFound(err) }

// IsPermission reports whether err was caused by missing access rights.
func IsPermission(err error) bool { return internal.IsPermission(err) }

// IsNotDir reports whether err was caused by listing a non-directory.
func IsNotDir(err error) bool { return internal.IsNotDir(err) }

// ParseFormat converts a user-supplied name into a Format.
func ParseFormat(s string) (Format, error) { return internal.ParseFormat(s) }

// NewRenderer returns a Renderer writing records to w.
var NewRenderer = internal.NewRenderer

// FormatRecord replaces placeholders in a template with values from the record.
func FormatRecord(template string, rec Record) string { return internal.FormatRecord(template, rec) }

// ParseWatchEvent converts a user-supplied event name into a WatchEvent.
func ParseWatchEvent(s string) (WatchEvent, error) { return internal.ParseWatchEvent(s) }

// Watch walks root to maxDepth and reports changes in every directory it reached.
func Watch(ctx context.Context, root string, maxDepth int, opts WatchOptions, handler WatchHandler) error {
	return internal.Watch(ctx, root, maxDepth, opts, handler)
}

// LoggingProgress returns a ProgressFn that logs each update at debug level.
func LoggingProgress(logger *zap.Logger) ProgressFn {
	return internal.LoggingProgress(logger)
}

// PrintWatchHandler returns a WatchHandler that writes one line per event to w.
var PrintWatchHandler = internal.PrintWatchHandler
