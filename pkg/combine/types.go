// Package combine enumerates a folder tree and turns each kept file into a
// sanitized FileRecord. The structure listing and the record sequence are
// handed to an Assembler, which writes one output document.
package combine

import (
	"io"
	"iter"
)

// Classification tells the extractor how to read a file.
type Classification int

const (
	// Text files are decoded as UTF-8 with replacement of invalid bytes.
	Text Classification = iota
	// RichDocument files are containers that need a structured extractor.
	RichDocument
	// Binary files are never read; they get a fixed placeholder.
	Binary
)

func (c Classification) String() string {
	switch c {
	case Text:
		return "text"
	case RichDocument:
		return "rich-document"
	case Binary:
		return "binary"
	default:
		return "unknown"
	}
}

// FileRecord is the normalized result for one file.
type FileRecord struct {
	Path           string         // Root-relative, "/"-separated.
	Classification Classification // How the content was obtained.
	Content        string         // Sanitized text, placeholder, or error description.
}

// Document is everything an Assembler needs to produce an artifact.
type Document struct {
	Root      string               // Name of the scanned folder.
	Structure []string             // Flattened structure listing, root line first.
	Files     iter.Seq[FileRecord] // Records in walk order, produced on demand.
}

// Assembler writes a Document in one output format.
type Assembler interface {
	Render(w io.Writer, doc Document) error
}

// AssemblerLookup resolves the assembler for an output path.
type AssemblerLookup func(outputPath string) (Assembler, error)

// IgnoreParser defines the interface for matching paths against ignore patterns.
type IgnoreParser interface {
	MatchesPath(path string) bool
}

// Constants
const (
	BinaryPlaceholder = "[Binary file - content not displayed]"
	ErrorPrefix       = "Error reading file: "
	SniffSize         = 512 // Bytes inspected when the extension is not recognized.
)
