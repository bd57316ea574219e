// File: pkg/combine/traversal.go
package combine

import (
	"io/fs"
	"iter"
	"path"
	"slices"
	"strings"

	"go.uber.org/zap"
)

// treeEntry is one kept child of a directory.
type treeEntry struct {
	Name    string // Base name.
	Path    string // Root-relative, "/"-separated.
	Descend bool   // Directories reached through a symlink are listed but not entered.
}

// readLevel lists the kept files and subdirectories of dir, each group sorted
// by name. Symlinks are resolved; broken links and irregular files such as
// sockets or pipes are dropped.
func readLevel(fsys fs.FS, dir string, gi IgnoreParser, logger *zap.Logger) (files, dirs []treeEntry, err error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, nil, err
	}
	slices.SortStableFunc(entries, func(a, b fs.DirEntry) int {
		return strings.Compare(a.Name(), b.Name())
	})

	for _, entry := range entries {
		relPath := entry.Name()
		if dir != "." {
			relPath = path.Join(dir, entry.Name())
		}
		if gi.MatchesPath(relPath) {
			logger.Debug("Skipping ignored path", zap.String("path", relPath))
			continue
		}

		mode := entry.Type()
		viaLink := mode&fs.ModeSymlink != 0
		if viaLink {
			info, err := fs.Stat(fsys, relPath)
			if err != nil {
				logger.Debug("Skipping unresolvable symlink", zap.String("path", relPath), zap.Error(err))
				continue
			}
			mode = info.Mode().Type()
		}

		switch {
		case mode.IsDir():
			dirs = append(dirs, treeEntry{Name: entry.Name(), Path: relPath, Descend: !viaLink})
		case mode.IsRegular():
			files = append(files, treeEntry{Name: entry.Name(), Path: relPath})
		default:
			logger.Debug("Skipping irregular file", zap.String("path", relPath), zap.Stringer("mode", mode))
		}
	}
	return files, dirs, nil
}

// walkFiles calls fn for every kept file below dir in document order: the
// files of a directory first, then each subdirectory in name order. It stops
// early when fn returns false and reports whether it ran to completion.
// Unreadable subdirectories are logged and skipped.
func walkFiles(fsys fs.FS, dir string, gi IgnoreParser, logger *zap.Logger, fn func(relPath string) bool) bool {
	files, dirs, err := readLevel(fsys, dir, gi, logger)
	if err != nil {
		logger.Warn("Error accessing path during traversal", zap.String("path", dir), zap.Error(err))
		return true
	}

	for _, f := range files {
		if !fn(f.Path) {
			return false
		}
	}
	for _, d := range dirs {
		if !d.Descend {
			continue
		}
		if !walkFiles(fsys, d.Path, gi, logger, fn) {
			return false
		}
	}
	return true
}

// collectFiles returns the root-relative paths of every kept file in walk order.
func collectFiles(fsys fs.FS, gi IgnoreParser, logger *zap.Logger) []string {
	var files []string
	walkFiles(fsys, ".", gi, logger, func(relPath string) bool {
		files = append(files, relPath)
		return true
	})
	logger.Debug("Completed file traversal and collection", zap.Int("files", len(files)))
	return files
}

// Records lazily yields one FileRecord per kept file, in walk order. Each
// file is opened, read and closed before the next one is visited.
func Records(fsys fs.FS, gi IgnoreParser, c *Classifier, logger *zap.Logger) iter.Seq[FileRecord] {
	return func(yield func(FileRecord) bool) {
		walkFiles(fsys, ".", gi, logger, func(relPath string) bool {
			return yield(ProcessSingleFile(fsys, relPath, c, logger))
		})
	}
}
