// Package ignore loads and evaluates .docignore exclusion patterns.
//
// A pattern ending in "/" names a directory: it excludes every path that has
// a segment equal to that name, at any depth. Any other pattern is an fnmatch
// style glob tested against both the full relative path and its base name.
// There is no negation, so the first matching pattern decides.
package ignore

import (
	"os"
	"path"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// DefaultFileName is the ignore file looked up at the scan root.
const DefaultFileName = ".docignore"

// IgnorePattern is one compiled line of an ignore file.
type IgnorePattern struct {
	Pattern *regexp.Regexp // Glob compiled to an anchored regular expression.
	DirName string         // Segment name for directory tokens ("build/" -> "build"), empty otherwise.
	Line    string         // Original pattern text, trimmed.
	LineNo  int            // Line number in the source (1-based).
}

// Rules is an ordered collection of ignore patterns. It is safe for
// concurrent reads once loading is complete.
type Rules struct {
	patterns []*IgnorePattern
	logger   *zap.Logger
}

// New returns an empty rule set.
func New(logger *zap.Logger) *Rules {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Rules{
		patterns: []*IgnorePattern{},
		logger:   logger,
	}
}

// LoadIgnoreFiles loads patterns from the global ignore file followed by the
// local one. Either path may be empty, and files that do not exist are
// skipped, so a root without an ignore file yields an empty rule set.
func LoadIgnoreFiles(localPath, globalPath string, logger *zap.Logger) (*Rules, error) {
	r := New(logger)

	if globalPath != "" {
		if err := r.CompileIgnoreFile(globalPath); err != nil {
			return nil, err
		}
	}

	if localPath != "" {
		if err := r.CompileIgnoreFile(localPath); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// CompileIgnoreLines adds pattern lines to the rule set. Blank and comment
// lines are skipped.
func (r *Rules) CompileIgnoreLines(lines ...string) {
	for i, line := range lines {
		if p := parsePatternLine(line, i+1, r.logger); p != nil {
			r.patterns = append(r.patterns, p)
		}
	}
}

// CompileIgnoreFile reads an ignore file and adds its patterns. A missing
// file is not an error.
func (r *Rules) CompileIgnoreFile(filePath string) error {
	content, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			r.logger.Debug("Ignore file does not exist and will be skipped", zap.String("filePath", filePath))
			return nil
		}
		r.logger.Error("Failed to read ignore file", zap.String("filePath", filePath), zap.Error(err))
		return err
	}

	lines := strings.Split(string(content), "\n")
	before := len(r.patterns)
	r.CompileIgnoreLines(lines...)
	r.logger.Debug("Compiled ignore patterns from file",
		zap.String("filePath", filePath),
		zap.Int("lineCount", len(lines)),
		zap.Int("patternCount", len(r.patterns)-before))
	return nil
}

// Len returns the number of compiled patterns.
func (r *Rules) Len() int {
	return len(r.patterns)
}

// Lines returns the original text of every pattern, in load order.
func (r *Rules) Lines() []string {
	lines := make([]string, 0, len(r.patterns))
	for _, p := range r.patterns {
		lines = append(lines, p.Line)
	}
	return lines
}

// MatchesPath reports whether a root-relative path is excluded.
func (r *Rules) MatchesPath(relPath string) bool {
	matched, _ := r.MatchesPathWithPattern(relPath)
	return matched
}

// MatchesPathWithPattern reports whether a root-relative path is excluded and
// returns the first pattern that excluded it. Both "/" and "\" are accepted as
// separators.
func (r *Rules) MatchesPathWithPattern(relPath string) (bool, *IgnorePattern) {
	normalized := normalizePath(relPath)
	segments := strings.Split(normalized, "/")
	base := path.Base(normalized)

	for _, p := range r.patterns {
		if p.DirName != "" && containsSegment(segments, p.DirName) {
			return true, p
		}
		if p.Pattern.MatchString(normalized) || p.Pattern.MatchString(base) {
			return true, p
		}
	}
	return false, nil
}

func containsSegment(segments []string, name string) bool {
	for _, s := range segments {
		if s == name {
			return true
		}
	}
	return false
}

// normalizePath converts Windows separators to forward slashes.
func normalizePath(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

// parsePatternLine compiles one ignore file line. It returns nil for blank
// lines, comments and globs that cannot be compiled.
func parsePatternLine(line string, lineNo int, logger *zap.Logger) *IgnorePattern {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return nil
	}

	re, err := regexp.Compile(translateGlob(trimmed))
	if err != nil {
		logger.Error("Invalid ignore pattern",
			zap.String("pattern", trimmed),
			zap.Int("lineNo", lineNo),
			zap.Error(err))
		return nil
	}

	p := &IgnorePattern{
		Pattern: re,
		Line:    trimmed,
		LineNo:  lineNo,
	}
	if strings.HasSuffix(trimmed, "/") {
		p.DirName = strings.TrimRight(trimmed, "/")
	}
	return p
}
