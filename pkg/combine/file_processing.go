package combine

import (
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"docwriter/pkg/ooxml"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// richExtractors maps rich-document extensions to their text extractor.
var richExtractors = map[string]func([]byte) (string, error){
	".pptx": ooxml.ExtractPresentation,
	".docx": ooxml.ExtractDocument,
}

// ProcessSingleFile classifies and extracts one root-relative file.
func ProcessSingleFile(fsys fs.FS, relPath string, c *Classifier, logger *zap.Logger) FileRecord {
	logger.Debug("Processing file", zap.String("filePath", relPath))

	class := c.Classify(fsys, relPath)
	record := FileRecord{
		Path:           relPath,
		Classification: class,
		Content:        ExtractContent(fsys, relPath, class, logger),
	}

	logger.Debug("Done processing file",
		zap.String("filePath", relPath),
		zap.Stringer("classification", class),
		zap.Int("contentLength", len(record.Content)))
	return record
}

// ExtractContent returns the sanitized textual representation of a file.
// Failures are reported inside the returned string, never as an error.
func ExtractContent(fsys fs.FS, relPath string, class Classification, logger *zap.Logger) string {
	var (
		content string
		err     error
	)
	switch class {
	case Text:
		content, err = readText(fsys, relPath)
	case RichDocument:
		content, err = readRich(fsys, relPath)
	default:
		return BinaryPlaceholder
	}

	if err != nil {
		logger.Warn("Failed to read file", zap.String("filePath", relPath), zap.Error(err))
		content = ErrorPrefix + err.Error()
	}
	return Sanitize(content)
}

// readText decodes a file as UTF-8, replacing invalid sequences with U+FFFD.
// A UTF-16 byte order mark switches the decoding accordingly.
func readText(fsys fs.FS, relPath string) (string, error) {
	file, err := fsys.Open(relPath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	data, err := io.ReadAll(transform.NewReader(file, decoder))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func readRich(fsys fs.FS, relPath string) (string, error) {
	extract, ok := richExtractors[strings.ToLower(path.Ext(relPath))]
	if !ok {
		return "", fmt.Errorf("no extractor for %s", path.Ext(relPath))
	}

	data, err := fs.ReadFile(fsys, relPath)
	if err != nil {
		return "", err
	}
	return extract(data)
}

// Sanitize strips C0 control characters other than tab, newline and carriage
// return, as well as DEL. Output formats built on XML reject them.
func Sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			return r
		case r < 0x20 || r == 0x7f:
			return -1
		default:
			return r
		}
	}, s)
}
