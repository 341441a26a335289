// Package walk provides depth-limited, pre-order directory traversal.
//
// A walk lists one directory at a time and produces a Record for it: the
// directory path, the names of its subdirectories and the names of everything
// else it contains, each in the order the host reported them. Records are
// produced lazily, one per call to Walker.Next, so a consumer that stops early
// never causes the remaining directories to be listed.
//
// Three equivalent shapes are offered over the same engine:
//
//	// Cursor
//	w := walk.New("/srv/data", 3)
//	defer w.Close()
//	for w.Next() {
//		rec := w.Record()
//		fmt.Println(rec.Path, rec.Dirs, rec.Nondirs)
//	}
//	if err := w.Err(); err != nil {
//		return err
//	}
//
//	// Range-over-func sequence
//	for rec, err := range walk.Walk("/srv/data", 3) {
//		if err != nil {
//			return err
//		}
//		fmt.Println(rec.Path)
//	}
//
//	// Visitor
//	err := walk.Visit("/srv/data", 3, func(rec walk.Record) error {
//		if rec.Depth > 0 && strings.HasPrefix(filepath.Base(rec.Path), ".") {
//			return filepath.SkipDir
//		}
//		return nil
//	})
//
// Depth works as a budget: the root is always listed, and the children of a
// directory are descended into only while the budget at that directory is
// greater than one. A maxDepth of zero or less still produces the root record.
//
// Any failure to list or classify a directory ends the walk at the point where
// that directory's record would have been produced. Records produced before
// the failure remain valid.
//
// Watch Functionality
//
// Watch keeps an fsnotify watch on every directory a depth-limited walk
// reaches and reports changes beneath them:
//
//	err := walk.Watch(ctx, "/srv/data", 2, walk.WatchOptions{
//		Events: []walk.WatchEvent{walk.EventCreate, walk.EventDelete},
//	}, func(ctx context.Context, result walk.WatchResult) error {
//		fmt.Println(result.Message.Event, result.Message.Path)
//		return nil
//	})
package walk
