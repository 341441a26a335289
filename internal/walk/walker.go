package walk

import (
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Record describes one visited directory.
type Record struct {
	Path    string   // Root, or its parent's Path plus a separator and the name
	Dirs    []string // Entries classified as directories, in listing order
	Nondirs []string // Everything else, in listing order
	Depth   int      // Levels below the root; the root is 0
}

// frame is the cursor over one directory's subdirectories that are still
// waiting to be visited.
type frame struct {
	path   string
	dirs   []string
	next   int
	budget int
	depth  int
}

// Walker produces the records of a depth-limited walk one at a time.
//
// The first call to Next lists the root. Each further call lists exactly one
// directory, so nothing below the most recent record has been read yet. A
// Walker is not safe for use by more than one goroutine and cannot be
// restarted; create a new one to walk again.
type Walker struct {
	root     string
	maxDepth int
	opts     Options
	fs       FS
	logger   *zap.Logger
	ownsLog  bool

	stack   []frame
	cur     Record
	pushed  bool
	err     error
	started bool
	done    bool

	stats Stats
	start time.Time
}

// New returns a Walker over the host file system.
func New(root string, maxDepth int) *Walker {
	return NewWithOptions(root, maxDepth, Options{})
}

// NewWithOptions returns a Walker configured by opts. No file system access
// happens until the first call to Next.
func NewWithOptions(root string, maxDepth int, opts Options) *Walker {
	w := &Walker{
		root:     root,
		maxDepth: maxDepth,
		opts:     opts,
		fs:       opts.FS,
		logger:   opts.Logger,
	}
	if w.fs == nil {
		w.fs = NewHostFSWithBuffer(opts.BufferSize)
	}
	if w.logger == nil {
		w.logger = NewLogger(opts.LogLevel)
		w.ownsLog = true
	}
	return w
}

// Next advances to the next record in pre-order. It returns false when the
// walk is exhausted or has failed; Err distinguishes the two.
func (w *Walker) Next() bool {
	if w.done {
		return false
	}

	if !w.started {
		w.started = true
		w.start = time.Now()
		w.logger.Debug("starting walk",
			zap.String("root", w.root),
			zap.Int("max_depth", w.maxDepth),
		)
		return w.visit(w.root, w.maxDepth, 0)
	}

	for len(w.stack) > 0 {
		top := &w.stack[len(w.stack)-1]
		if top.next >= len(top.dirs) {
			w.stack = w.stack[:len(w.stack)-1]
			continue
		}
		name := top.dirs[top.next]
		top.next++
		return w.visit(childPath(top.path, name), top.budget-1, top.depth+1)
	}

	w.finish(nil)
	return false
}

// Record returns the record produced by the most recent successful call to
// Next. The slices belong to the caller.
func (w *Walker) Record() Record {
	return w.cur
}

// Err returns the error that ended the walk, or nil if the walk ran to
// completion or is still in progress.
func (w *Walker) Err() error {
	return w.err
}

// SkipChildren stops the walk from descending into the subdirectories of the
// current record. Siblings and the rest of the walk are unaffected.
func (w *Walker) SkipChildren() {
	if w.pushed {
		w.stack = w.stack[:len(w.stack)-1]
		w.pushed = false
	}
}

// Stats returns a snapshot of the walk's statistics.
func (w *Walker) Stats() Stats {
	s := w.stats
	if w.started && !w.done {
		s.ElapsedTime = time.Since(w.start)
		s.updateDerivedStats()
	}
	return s
}

// Close abandons the walk. Calling Next afterwards returns false. Close is
// safe to call after the walk has finished.
func (w *Walker) Close() {
	if !w.done {
		w.finish(nil)
	}
}

// visit lists one directory and makes it the current record.
func (w *Walker) visit(path string, budget, depth int) bool {
	w.cur = Record{}
	w.pushed = false

	if ctx := w.opts.Context; ctx != nil {
		if err := ctx.Err(); err != nil {
			w.finish(err)
			return false
		}
	}

	dirs, nondirs, err := w.list(path)
	if err != nil {
		w.stats.Errors++
		w.logger.Warn("listing failed",
			zap.String("path", path),
			zap.Int("depth", depth),
			zap.Error(err),
		)
		w.finish(err)
		return false
	}

	w.cur = Record{Path: path, Dirs: dirs, Nondirs: nondirs, Depth: depth}

	w.stats.DirsVisited++
	w.stats.SubdirsSeen += int64(len(dirs))
	w.stats.NondirsSeen += int64(len(nondirs))
	if depth > w.stats.MaxDepthReached {
		w.stats.MaxDepthReached = depth
	}

	w.logger.Debug("listed directory",
		zap.String("path", path),
		zap.Int("depth", depth),
		zap.Int("dirs", len(dirs)),
		zap.Int("nondirs", len(nondirs)),
	)

	if budget > 1 && len(dirs) > 0 {
		pending := make([]string, len(dirs))
		copy(pending, dirs)
		w.stack = append(w.stack, frame{
			path:   path,
			dirs:   pending,
			budget: budget,
			depth:  depth,
		})
		w.pushed = true
	}

	if w.opts.Progress != nil {
		w.opts.Progress(w.Stats())
	}
	return true
}

// list reads dir and partitions its entries into directories and everything
// else, keeping listing order within each partition.
func (w *Walker) list(dir string) (dirs, nondirs []string, err error) {
	if er, ok := w.fs.(EntryReader); ok {
		entries, err := er.ReadEntries(dir)
		if err != nil {
			return nil, nil, &ListError{Op: "readdir", Path: dir, Err: err}
		}
		dirs = make([]string, 0, len(entries))
		nondirs = make([]string, 0, len(entries))
		for _, e := range entries {
			if e.IsDir {
				dirs = append(dirs, e.Name)
			} else {
				nondirs = append(nondirs, e.Name)
			}
		}
		return dirs, nondirs, nil
	}

	names, err := w.fs.ReadDir(dir)
	if err != nil {
		return nil, nil, &ListError{Op: "readdir", Path: dir, Err: err}
	}
	dirs = make([]string, 0, len(names))
	nondirs = make([]string, 0, len(names))
	for _, name := range names {
		entry := childPath(dir, name)
		isDir, err := w.fs.IsDir(entry)
		if err != nil {
			return nil, nil, &ListError{Op: "classify", Path: entry, Err: err}
		}
		if isDir {
			dirs = append(dirs, name)
		} else {
			nondirs = append(nondirs, name)
		}
	}
	return dirs, nondirs, nil
}

func (w *Walker) finish(err error) {
	w.done = true
	w.err = err
	w.stack = nil
	if w.started {
		w.stats.ElapsedTime = time.Since(w.start)
		w.stats.updateDerivedStats()
		w.logger.Debug("walk finished",
			zap.String("root", w.root),
			zap.Int64("dirs_visited", w.stats.DirsVisited),
			zap.Duration("elapsed", w.stats.ElapsedTime),
			zap.Error(err),
		)
	}
	if w.ownsLog {
		_ = w.logger.Sync()
	}
}

// childPath appends name to dir with one separator. dir is not cleaned, so
// every descendant's path keeps its root's spelling as a prefix.
func childPath(dir, name string) string {
	if dir == "" {
		return name
	}
	if os.IsPathSeparator(dir[len(dir)-1]) {
		return dir + name
	}
	return dir + string(filepath.Separator) + name
}
