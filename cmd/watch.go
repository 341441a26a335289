package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	walk "github.com/TFMV/levelwalk/internal/walk"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func newWatchCmd(v *viper.Viper) *cobra.Command {
	watchCmd := &cobra.Command{
		Use:   "watch [options] <path>",
		Short: "Re-list a directory tree whenever it changes",
		Long: `Watch every directory within the depth budget and print the tree again
after each burst of changes. New directories inside the budget are picked up
as they are created.

Examples:
  levelwalk watch /path/to/watch
  levelwalk watch -d 3 --debounce=1s /path/to/watch
  levelwalk watch --events=create,delete --events-only /path/to/watch
  levelwalk watch --timeout=10m /path/to/watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, v, args[0])
		},
	}

	watchCmd.Flags().StringSlice("events", []string{}, "Events to react to (create, modify, delete, rename, chmod)")
	watchCmd.Flags().Duration("timeout", 0, "Duration to watch before exiting (e.g., 1h, 30m)")
	watchCmd.Flags().Duration("debounce", 250*time.Millisecond, "Quiet period before the tree is listed again")
	watchCmd.Flags().Bool("events-only", false, "Print each event instead of listing the tree again")

	v.BindPFlag("watch.events", watchCmd.Flags().Lookup("events"))
	v.BindPFlag("watch.timeout", watchCmd.Flags().Lookup("timeout"))
	v.BindPFlag("watch.debounce", watchCmd.Flags().Lookup("debounce"))
	v.BindPFlag("watch.events-only", watchCmd.Flags().Lookup("events-only"))

	return watchCmd
}

func runWatch(cmd *cobra.Command, v *viper.Viper, root string) error {
	var events []walk.WatchEvent
	var badEvents []error
	for _, name := range v.GetStringSlice("watch.events") {
		e, err := walk.ParseWatchEvent(name)
		if err != nil {
			badEvents = append(badEvents, err)
			continue
		}
		events = append(events, e)
	}
	if len(badEvents) > 0 {
		return errors.Join(badEvents...)
	}

	logger := newLogger(v)
	defer logger.Sync()

	// fsnotify needs host paths, so a sandbox only rebases the root.
	if base := v.GetString("root-fs"); base != "" {
		root = filepath.Join(base, root)
	}
	maxDepth := v.GetInt("max-depth")
	out := cmd.OutOrStdout()

	var handler walk.WatchHandler

	if v.GetBool("watch.events-only") {
		printEvent := walk.PrintWatchHandler(out)
		handler = func(ctx context.Context, result walk.WatchResult) error {
			if result.Error != nil {
				logger.Warn("watch error", zap.Error(result.Error))
				return nil
			}
			return printEvent(ctx, result)
		}
	} else {
		renderer, err := newRenderer(out, v)
		if err != nil {
			return err
		}
		format, _ := walk.ParseFormat(v.GetString("format"))
		lister := &treeLister{
			out:      out,
			renderer: renderer,
			root:     root,
			maxDepth: maxDepth,
			logger:   logger,
			header:   format == walk.FormatText,
		}
		if err := lister.list(); err != nil {
			return err
		}

		relist := newDebouncer(v.GetDuration("watch.debounce"), func() {
			if err := lister.list(); err != nil {
				logger.Warn("listing failed", zap.String("root", root), zap.Error(err))
			}
		})
		defer relist.stop()

		handler = func(ctx context.Context, result walk.WatchResult) error {
			if result.Error != nil {
				logger.Warn("watch error", zap.Error(result.Error))
				return nil
			}
			logger.Debug("change detected",
				zap.String("path", result.Message.Path),
				zap.String("event", string(result.Message.Event)),
			)
			relist.trigger()
			return nil
		}
	}

	return walk.Watch(cmd.Context(), root, maxDepth, walk.WatchOptions{
		Events:  events,
		Timeout: v.GetDuration("watch.timeout"),
		Logger:  logger,
	}, handler)
}

// treeLister prints a fresh walk of the tree each time it is called.
type treeLister struct {
	mu       sync.Mutex
	out      io.Writer
	renderer *walk.Renderer
	root     string
	maxDepth int
	logger   *zap.Logger
	header   bool
}

func (l *treeLister) list() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.header {
		fmt.Fprintf(l.out, "# %s\n", time.Now().Format(time.RFC3339))
	}
	for rec, err := range walk.WalkWithOptions(l.root, l.maxDepth, walk.Options{Logger: l.logger}) {
		if err != nil {
			return err
		}
		if err := l.renderer.Render(rec); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
	}
	return nil
}

// debouncer runs fn once a burst of triggers has been quiet for delay.
type debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	fn    func()
	timer *time.Timer
}

func newDebouncer(delay time.Duration, fn func()) *debouncer {
	return &debouncer{delay: delay, fn: fn}
}

func (d *debouncer) trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer == nil {
		d.timer = time.AfterFunc(d.delay, d.fn)
		return
	}
	d.timer.Reset(d.delay)
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}
