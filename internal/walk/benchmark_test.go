package walk

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func BenchmarkWalkDirComparison(b *testing.B) {
	tmpDir := b.TempDir()
	createTestDirectoryStructure(b, tmpDir, 4, 10)

	b.ResetTimer()

	b.Run("filepath.WalkDir", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			count := 0
			err := filepath.WalkDir(tmpDir, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() {
					count++
				}
				return nil
			})
			if err != nil {
				b.Fatalf("Error walking directory: %v", err)
			}
			if count == 0 {
				b.Fatal("No directories found")
			}
		}
	})

	b.Run("Walker/ReadEntries", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			benchmarkWalker(b, tmpDir, Options{})
		}
	})

	// Wrapping HostFS hides ReadEntries, forcing a stat per entry.
	b.Run("Walker/ReadDir+IsDir", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			benchmarkWalker(b, tmpDir, Options{FS: struct{ FS }{NewHostFS()}})
		}
	})
}

func benchmarkWalker(b *testing.B, root string, opts Options) {
	b.Helper()
	w := NewWithOptions(root, 64, opts)
	count := 0
	for w.Next() {
		count++
	}
	if err := w.Err(); err != nil {
		b.Fatalf("Error walking directory: %v", err)
	}
	if count == 0 {
		b.Fatal("No directories found")
	}
}

// createTestDirectoryStructure creates a test directory structure with the specified depth and files per directory
func createTestDirectoryStructure(b *testing.B, root string, depth, filesPerDir int) {
	if depth <= 0 {
		return
	}

	for i := 0; i < filesPerDir; i++ {
		filename := filepath.Join(root, "file"+string(rune('a'+i))+".txt")
		if err := os.WriteFile(filename, []byte("test"), 0644); err != nil {
			b.Fatalf("Failed to create test file: %v", err)
		}
	}

	for i := 0; i < 3; i++ {
		subdir := filepath.Join(root, "dir"+string(rune('a'+i)))
		if err := os.Mkdir(subdir, 0755); err != nil {
			b.Fatalf("Failed to create test directory: %v", err)
		}
		createTestDirectoryStructure(b, subdir, depth-1, filesPerDir)
	}
}
