// File: pkg/combine/tree.go
package combine

import (
	"fmt"
	"io/fs"

	"go.uber.org/zap"
)

// GenerateStructure returns the flattened structure listing of fsys. The
// first line is "<rootName>/"; then, at each level, kept files by name
// followed by each kept subdirectory as "<name>/" and its own listing.
// Entries carry bare names, not paths.
func GenerateStructure(fsys fs.FS, rootName string, gi IgnoreParser, logger *zap.Logger) ([]string, error) {
	lines := []string{rootName + "/"}

	sub, err := generateTreeRecursively(fsys, ".", gi, logger)
	if err != nil {
		logger.Error("Failed to read root directory for structure", zap.String("root", rootName), zap.Error(err))
		return nil, fmt.Errorf("failed to read directory '%s': %w", rootName, err)
	}
	return append(lines, sub...), nil
}

// generateTreeRecursively lists one directory level and everything below it,
// without a header line for dir itself.
func generateTreeRecursively(fsys fs.FS, dir string, gi IgnoreParser, logger *zap.Logger) ([]string, error) {
	files, dirs, err := readLevel(fsys, dir, gi, logger)
	if err != nil {
		return nil, err
	}

	lines := make([]string, 0, len(files)+len(dirs))
	for _, f := range files {
		lines = append(lines, f.Name)
	}
	for _, d := range dirs {
		lines = append(lines, d.Name+"/")
		if !d.Descend {
			continue
		}
		sub, err := generateTreeRecursively(fsys, d.Path, gi, logger)
		if err != nil {
			logger.Warn("Failed to read directory for structure", zap.String("directory", d.Path), zap.Error(err))
			continue
		}
		lines = append(lines, sub...)
	}
	return lines, nil
}
