package walk

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatchEvent represents a filesystem event type
type WatchEvent string

// Watch event types
const (
	EventCreate WatchEvent = "create"
	EventModify WatchEvent = "modify"
	EventDelete WatchEvent = "delete"
	EventRename WatchEvent = "rename"
	EventChmod  WatchEvent = "chmod"
)

// ParseWatchEvent converts a user-supplied event name into a WatchEvent.
func ParseWatchEvent(s string) (WatchEvent, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "create":
		return EventCreate, nil
	case "write", "modify":
		return EventModify, nil
	case "remove", "delete":
		return EventDelete, nil
	case "rename":
		return EventRename, nil
	case "chmod":
		return EventChmod, nil
	default:
		return "", fmt.Errorf("levelwalk: unknown event type %q", s)
	}
}

// WatchOptions defines options for watching filesystem changes
type WatchOptions struct {
	// Events to report. If empty, all events are reported.
	Events []WatchEvent

	// Timeout duration (0 means no timeout)
	Timeout time.Duration

	// Logger is used as is when set; otherwise one is built from LogLevel.
	Logger   *zap.Logger
	LogLevel LogLevel
}

// WatchMessage contains information about a filesystem event
type WatchMessage struct {
	Path  string     // Full path to the entry
	Name  string     // Base name of the entry
	Dir   string     // Directory containing the entry
	Depth int        // Levels below the watched root
	Size  int64      // Size in bytes (0 for removed entries)
	Time  time.Time  // Modification time, or the time the event arrived
	IsDir bool       // Whether it's a directory
	Event WatchEvent // Event type
}

// WatchResult represents a watch event result
type WatchResult struct {
	Message WatchMessage
	Error   error
}

// WatchHandler is a function that processes watch events
type WatchHandler func(ctx context.Context, result WatchResult) error

// PrintWatchHandler returns a handler that prints events to w.
func PrintWatchHandler(w io.Writer) WatchHandler {
	return func(ctx context.Context, result WatchResult) error {
		if result.Error != nil {
			return result.Error
		}
		_, err := fmt.Fprintf(w, "%s: %s\n", strings.ToUpper(string(result.Message.Event)), result.Message.Path)
		return err
	}
}

// watchSet tracks which directories are watched and how deep each one is.
type watchSet struct {
	watcher  *fsnotify.Watcher
	maxDepth int
	logger   *zap.Logger
	depths   map[string]int
}

// addTree walks dir with the given budget and watches every directory the
// walk reaches. baseDepth is the depth of dir below the watched root.
func (ws *watchSet) addTree(dir string, budget, baseDepth int) error {
	return VisitWithOptions(dir, budget, Options{Logger: ws.logger}, func(rec Record) error {
		if err := ws.watcher.Add(rec.Path); err != nil {
			return fmt.Errorf("error watching directory %s: %w", rec.Path, err)
		}
		ws.depths[rec.Path] = baseDepth + rec.Depth
		ws.logger.Debug("watching directory",
			zap.String("path", rec.Path),
			zap.Int("depth", baseDepth+rec.Depth),
		)
		return nil
	})
}

// forget drops dir and everything below it from the watch set.
func (ws *watchSet) forget(dir string) {
	prefix := dir + string(os.PathSeparator)
	for path := range ws.depths {
		if path == dir || strings.HasPrefix(path, prefix) {
			_ = ws.watcher.Remove(path)
			delete(ws.depths, path)
		}
	}
}

// Len reports how many directories are being watched.
func (ws *watchSet) Len() int {
	return len(ws.depths)
}

// Watch walks root to maxDepth, watches every directory the walk yields and
// reports changes inside them to handler until ctx is done. Directories
// created within the depth budget are walked and watched as they appear.
func Watch(ctx context.Context, root string, maxDepth int, opts WatchOptions, handler WatchHandler) error {
	if handler == nil {
		handler = PrintWatchHandler(os.Stdout)
	}

	if ctx == nil {
		ctx = context.Background()
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	logger := opts.Logger
	if logger == nil {
		logger = NewLogger(opts.LogLevel)
		defer logger.Sync()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating watcher: %w", err)
	}
	defer watcher.Close()

	ws := &watchSet{
		watcher:  watcher,
		maxDepth: maxDepth,
		logger:   logger,
		depths:   make(map[string]int),
	}

	root = filepath.Clean(root)
	if err := ws.addTree(root, maxDepth, 0); err != nil {
		return fmt.Errorf("error walking directory tree: %w", err)
	}
	logger.Debug("watch started", zap.String("root", root), zap.Int("directories", ws.Len()))

	ops := eventOps(opts.Events)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			ws.handle(ctx, event, ops, handler)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			handler(ctx, WatchResult{
				Error: fmt.Errorf("watcher error: %w", err),
			})

		case <-ctx.Done():
			return nil
		}
	}
}

// handle keeps the watch set in step with one event and reports it if it is
// one of the requested kinds.
func (ws *watchSet) handle(ctx context.Context, event fsnotify.Event, ops map[fsnotify.Op]WatchEvent, handler WatchHandler) {
	depth := ws.depths[filepath.Dir(event.Name)] + 1

	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		if _, watched := ws.depths[event.Name]; watched {
			ws.forget(event.Name)
		}
	}

	var info os.FileInfo
	if !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		var err error
		info, err = os.Stat(event.Name)
		if err != nil {
			if !IsNotFound(err) {
				handler(ctx, WatchResult{
					Error: fmt.Errorf("error getting file info for %s: %w", event.Name, err),
				})
			}
			return
		}

		if info.IsDir() && event.Has(fsnotify.Create) && depth <= ws.maxDepth-1 {
			if err := ws.addTree(event.Name, ws.maxDepth-depth, depth); err != nil {
				handler(ctx, WatchResult{
					Error: fmt.Errorf("error watching new directory %s: %w", event.Name, err),
				})
			}
		}
	}

	eventType, ok := matchEvent(event, ops)
	if !ok {
		return
	}

	msg := WatchMessage{
		Path:  event.Name,
		Name:  filepath.Base(event.Name),
		Dir:   filepath.Dir(event.Name),
		Depth: depth,
		Time:  time.Now(),
		Event: eventType,
	}
	if info != nil {
		msg.Size = info.Size()
		msg.IsDir = info.IsDir()
		msg.Time = info.ModTime()
	}

	if err := handler(ctx, WatchResult{Message: msg}); err != nil {
		handler(ctx, WatchResult{
			Error: fmt.Errorf("error handling event: %w", err),
		})
	}
}

// eventOps maps the requested events onto fsnotify operations.
func eventOps(events []WatchEvent) map[fsnotify.Op]WatchEvent {
	all := map[fsnotify.Op]WatchEvent{
		fsnotify.Create: EventCreate,
		fsnotify.Write:  EventModify,
		fsnotify.Remove: EventDelete,
		fsnotify.Rename: EventRename,
		fsnotify.Chmod:  EventChmod,
	}
	if len(events) == 0 {
		return all
	}

	ops := make(map[fsnotify.Op]WatchEvent, len(events))
	for op, e := range all {
		for _, want := range events {
			if e == want {
				ops[op] = e
			}
		}
	}
	return ops
}

// matchEvent picks the first requested operation carried by event, in
// create, write, remove, rename, chmod order.
func matchEvent(event fsnotify.Event, ops map[fsnotify.Op]WatchEvent) (WatchEvent, bool) {
	for _, op := range []fsnotify.Op{fsnotify.Create, fsnotify.Write, fsnotify.Remove, fsnotify.Rename, fsnotify.Chmod} {
		if e, ok := ops[op]; ok && event.Has(op) {
			return e, true
		}
	}
	return "", false
}
