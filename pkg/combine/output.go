// File: pkg/combine/output.go
package combine

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"go.uber.org/zap"
)

// ErrLocked is returned when another process is writing the same artifact.
var ErrLocked = errors.New("output file is locked by another docwriter process")

// LockPath returns the lock file guarding outputPath.
func LockPath(outputPath string) string {
	return outputPath + ".lock"
}

// TempPrefix returns the name prefix of the temporary files WriteArtifact
// creates for outputPath.
func TempPrefix(outputPath string) string {
	return "." + filepath.Base(outputPath) + ".tmp-"
}

// artifactFilter hides the artifact, its lock and its temporary files from a
// walk of the folder that contains them.
type artifactFilter struct {
	IgnoreParser
	rel string // Root-relative artifact path.
}

// ExcludeArtifact wraps gi so that outputPath and its companion files are
// ignored when they lie below absRoot. Otherwise gi is returned unchanged.
func ExcludeArtifact(gi IgnoreParser, absRoot, outputPath string) IgnoreParser {
	absOutput, err := filepath.Abs(outputPath)
	if err != nil {
		return gi
	}
	rel, err := filepath.Rel(absRoot, absOutput)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return gi
	}
	return &artifactFilter{IgnoreParser: gi, rel: filepath.ToSlash(rel)}
}

func (f *artifactFilter) MatchesPath(relPath string) bool {
	if relPath == f.rel || relPath == LockPath(f.rel) {
		return true
	}
	if path.Dir(relPath) == path.Dir(f.rel) && strings.HasPrefix(path.Base(relPath), TempPrefix(f.rel)) {
		return true
	}
	return f.IgnoreParser.MatchesPath(relPath)
}

// WriteArtifact runs write against a temporary file next to outputPath and
// renames it into place once write succeeds. The final file only appears
// when complete; on failure only the lock file is left behind.
func WriteArtifact(outputPath string, logger *zap.Logger, write func(w io.Writer) error) (err error) {
	outputDir := filepath.Dir(outputPath)
	if err := ensureDirectory(outputDir, logger); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	fl := flock.New(LockPath(outputPath))
	locked, err := fl.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire output lock: %w", err)
	}
	if !locked {
		return ErrLocked
	}
	// The lock file stays in place after Unlock. Removing it would let a
	// waiter and a newcomer lock two different inodes at the same path.
	defer fl.Unlock()

	tmp, err := os.CreateTemp(outputDir, TempPrefix(outputPath)+"*")
	if err != nil {
		logger.Error("Failed to create output file", zap.String("file", outputPath), zap.Error(err))
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	writer := bufio.NewWriter(tmp)
	if err := write(writer); err != nil {
		logger.Error("Failed to render output", zap.String("file", outputPath), zap.Error(err))
		return fmt.Errorf("failed to render output: %w", err)
	}
	if err := writer.Flush(); err != nil {
		logger.Error("Failed to flush output file", zap.String("file", outputPath), zap.Error(err))
		return fmt.Errorf("failed to flush output: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("failed to set output permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	if err := os.Rename(tmp.Name(), outputPath); err != nil {
		logger.Error("Failed to move output into place", zap.String("file", outputPath), zap.Error(err))
		return fmt.Errorf("failed to move output into place: %w", err)
	}

	logger.Debug("Successfully wrote file", zap.String("path", outputPath))
	return nil
}

// ensureDirectory ensures a directory exists, creating it if necessary.
func ensureDirectory(path string, logger *zap.Logger) error {
	if err := os.MkdirAll(path, os.ModePerm); err != nil {
		logger.Error("Failed to create directory", zap.String("path", path), zap.Error(err))
		return err
	}
	return nil
}
