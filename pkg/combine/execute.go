// File: pkg/combine/execute.go
package combine

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"docwriter/pkg/ignore"

	"go.uber.org/zap"
)

// ErrRootNotFound is returned when the folder to scan does not exist or is
// not a directory.
var ErrRootNotFound = errors.New("folder not found")

// ResolveRoot returns the absolute path of the folder to scan.
func ResolveRoot(directory string) (string, error) {
	absRoot, err := filepath.Abs(directory)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrRootNotFound, directory)
	}
	return absRoot, nil
}

// LoadRules loads the ignore rules for a run rooted at absRoot.
func LoadRules(args Arguments, absRoot string, logger *zap.Logger) (*ignore.Rules, error) {
	rules, err := ignore.LoadIgnoreFiles(rootIgnoreFile(args, absRoot), args.GlobalIgnoreFile, logger)
	if err != nil {
		logger.Error("Failed to load ignore patterns", zap.Error(err))
		return nil, fmt.Errorf("failed to load ignore patterns: %w", err)
	}

	if len(args.IgnorePatterns) > 0 {
		rules.CompileIgnoreLines(args.IgnorePatterns...)
		logger.Debug("Added command-line ignore patterns", zap.Int("count", len(args.IgnorePatterns)))
	}
	return rules, nil
}

// IgnoreFiles lists the files LoadRules reads: the root's ignore file and,
// when configured, the global one.
func IgnoreFiles(args Arguments, absRoot string) []string {
	files := []string{rootIgnoreFile(args, absRoot)}
	if args.GlobalIgnoreFile != "" {
		files = append(files, args.GlobalIgnoreFile)
	}
	return files
}

func rootIgnoreFile(args Arguments, absRoot string) string {
	name := args.IgnoreFile
	if name == "" {
		name = ignore.DefaultFileName
	}
	return filepath.Join(absRoot, name)
}

// Run documents args.Directory into args.Output. Only a missing root, an
// unsupported output type or a failure to write the artifact is an error;
// problems with individual files end up in their records.
func Run(args Arguments, lookup AssemblerLookup, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	startTime := time.Now()

	absRoot, err := ResolveRoot(args.Directory)
	if err != nil {
		logger.Error("Cannot scan folder", zap.String("directory", args.Directory), zap.Error(err))
		return err
	}

	assembler, err := lookup(args.Output)
	if err != nil {
		return err
	}

	rules, err := LoadRules(args, absRoot, logger)
	if err != nil {
		return err
	}
	logger.Info("Ignore patterns", zap.Strings("patterns", rules.Lines()))

	root, err := os.OpenRoot(absRoot)
	if err != nil {
		return fmt.Errorf("failed to open folder: %w", err)
	}
	defer root.Close()

	gi := ExcludeArtifact(rules, absRoot, args.Output)
	return render(root.FS(), RootName(absRoot), args, assembler, gi, logger, startTime)
}

// RootName is the name shown on the first structure line. A filesystem root
// has no name, so its line is just "/".
func RootName(absRoot string) string {
	name := filepath.Base(absRoot)
	if name == string(filepath.Separator) || name == "/" {
		return ""
	}
	return name
}

func render(fsys fs.FS, rootName string, args Arguments, assembler Assembler, gi IgnoreParser, logger *zap.Logger, startTime time.Time) error {
	structure, err := GenerateStructure(fsys, rootName, gi, logger)
	if err != nil {
		return fmt.Errorf("failed to generate structure: %w", err)
	}

	classifier := NewClassifier(args.TextExtensions...)
	processed := 0
	files := Records(fsys, gi, classifier, logger)
	counted := func(yield func(FileRecord) bool) {
		for record := range files {
			processed++
			logger.Info("Done processing", zap.String("file", record.Path))
			if !yield(record) {
				return
			}
		}
	}

	doc := Document{
		Root:      rootName,
		Structure: structure,
		Files:     counted,
	}
	err = WriteArtifact(args.Output, logger, func(w io.Writer) error {
		return assembler.Render(w, doc)
	})
	if err != nil {
		return err
	}

	logger.Info("Document created successfully",
		zap.String("outputFile", args.Output),
		zap.Int("structureEntries", len(structure)),
		zap.Int("totalFiles", processed),
		zap.Duration("elapsed", time.Since(startTime)))
	return nil
}
