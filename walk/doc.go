// Listing
//
// A walk is consumed through a cursor, a sequence or a visitor:
//
//	w := walk.New("/var/log", 2)
//	defer w.Close()
//	for w.Next() {
//		rec := w.Record()
//		fmt.Println(rec.Path, rec.Dirs, rec.Nondirs)
//	}
//	if err := w.Err(); err != nil {
//		log.Fatal(err)
//	}
//
//	for rec, err := range walk.Walk("/var/log", 2) {
//		if err != nil {
//			return err
//		}
//		fmt.Println(rec.Path)
//	}
//
//	err := walk.Visit("/srv", 3, func(rec walk.Record) error {
//		if filepath.Base(rec.Path) == ".git" {
//			return fs.SkipDir
//		}
//		return nil
//	})
//
// Watch Functionality
//
// Watch keeps the directories a walk reached under observation:
//
//	opts := walk.WatchOptions{
//		Events: []walk.WatchEvent{walk.EventCreate, walk.EventDelete},
//	}
//	err := walk.Watch(ctx, "/path/to/watch", 2, opts, func(ctx context.Context, result walk.WatchResult) error {
//		if result.Error != nil {
//			return result.Error
//		}
//		fmt.Printf("Event: %s, File: %s\n", result.Message.Event, result.Message.Path)
//		return nil
//	})

package walk
