package walk

import (
	"context"
	"errors"
	"io/fs"
	"iter"
)

// VisitFunc is called once per record by Visit. Returning fs.SkipDir (or
// filepath.SkipDir) prunes the record's subdirectories; returning fs.SkipAll
// ends the walk without error; any other error ends the walk and is returned.
type VisitFunc func(rec Record) error

// Walk returns the records of a depth-limited walk of root as a sequence.
//
// Every range over the returned sequence starts a fresh walk. If a directory
// cannot be listed the sequence yields a zero Record with the error and stops.
// Breaking out of the loop stops the walk before any further listing.
func Walk(root string, maxDepth int) iter.Seq2[Record, error] {
	return WalkWithOptions(root, maxDepth, Options{})
}

// WalkContext is Walk with a cancellation context.
func WalkContext(ctx context.Context, root string, maxDepth int) iter.Seq2[Record, error] {
	return WalkWithOptions(root, maxDepth, Options{Context: ctx})
}

// WalkWithOptions is Walk configured by opts.
func WalkWithOptions(root string, maxDepth int, opts Options) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		w := NewWithOptions(root, maxDepth, opts)
		defer w.Close()

		for w.Next() {
			if !yield(w.Record(), nil) {
				return
			}
		}
		if err := w.Err(); err != nil {
			yield(Record{}, err)
		}
	}
}

// Visit calls fn for every record of a depth-limited walk of root, in
// pre-order.
func Visit(root string, maxDepth int, fn VisitFunc) error {
	return VisitWithOptions(root, maxDepth, Options{}, fn)
}

// VisitWithOptions is Visit configured by opts.
func VisitWithOptions(root string, maxDepth int, opts Options, fn VisitFunc) error {
	w := NewWithOptions(root, maxDepth, opts)
	defer w.Close()

	for w.Next() {
		err := fn(w.Record())
		switch {
		case err == nil:
		case errors.Is(err, fs.SkipDir):
			w.SkipChildren()
		case errors.Is(err, fs.SkipAll):
			return nil
		default:
			return err
		}
	}
	return w.Err()
}

// Collect walks root and returns every record. When the walk fails, the
// records produced before the failure are returned along with the error.
func Collect(root string, maxDepth int) ([]Record, error) {
	return CollectWithOptions(root, maxDepth, Options{})
}

// CollectWithOptions is Collect configured by opts.
func CollectWithOptions(root string, maxDepth int, opts Options) ([]Record, error) {
	var records []Record
	err := VisitWithOptions(root, maxDepth, opts, func(rec Record) error {
		records = append(records, rec)
		return nil
	})
	return records, err
}
