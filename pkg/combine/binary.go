// File: pkg/combine/binary.go
package combine

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"path"
	"strings"
)

// DefaultTextExtensions are always decoded as text.
var DefaultTextExtensions = []string{".txt", ".py", ".md", ".json", ".csv", ".xml", ".html", ".css", ".js"}

// BinaryExtensions are placeholdered without reading. The office formats here
// are rich documents that have no extractor.
var BinaryExtensions = map[string]bool{
	".xlsx": true, ".pdf": true,
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true, ".ico": true, ".webp": true,
	".zip": true, ".gz": true, ".tgz": true, ".bz2": true, ".xz": true, ".7z": true, ".rar": true, ".tar": true,
	".exe": true, ".dll": true, ".so": true, ".dylib": true, ".o": true, ".a": true, ".class": true, ".pyc": true,
	".mp3": true, ".mp4": true, ".wav": true, ".mov": true, ".avi": true,
	".ttf": true, ".otf": true, ".woff": true, ".woff2": true,
}

// Classifier decides how each file should be read.
type Classifier struct {
	text map[string]bool
}

// NewClassifier returns a classifier that treats DefaultTextExtensions and
// extra as plain text. Extensions are matched case-insensitively and may be
// given with or without the leading dot.
func NewClassifier(extra ...string) *Classifier {
	c := &Classifier{text: make(map[string]bool)}
	for _, ext := range DefaultTextExtensions {
		c.text[ext] = true
	}
	for _, ext := range extra {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.text[ext] = true
	}
	return c
}

// Classify returns the classification of a file in fsys. Probe failures
// yield Binary and are never reported.
func (c *Classifier) Classify(fsys fs.FS, name string) Classification {
	ext := strings.ToLower(path.Ext(name))
	switch {
	case c.text[ext]:
		return Text
	case richExtractors[ext] != nil:
		return RichDocument
	case BinaryExtensions[ext]:
		return Binary
	}

	isBinary, err := isBinaryFile(fsys, name)
	if err != nil || isBinary {
		return Binary
	}
	return Text
}

// isBinaryFile reports whether the first SniffSize bytes contain a NUL.
func isBinaryFile(fsys fs.FS, name string) (bool, error) {
	file, err := fsys.Open(name)
	if err != nil {
		return false, err
	}
	defer file.Close()

	buffer := make([]byte, SniffSize)
	n, err := io.ReadFull(file, buffer)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return false, err
	}

	return bytes.IndexByte(buffer[:n], 0) >= 0, nil
}
