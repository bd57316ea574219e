// Package render holds the output assemblers. Each one turns a
// combine.Document into one artifact format, selected by file extension.
package render

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"docwriter/pkg/combine"
)

// Section headings shared by every format.
const (
	StructureHeading = "Folder Structure"
	ContentsHeading  = "File Paths and Contents"
)

// ErrUnsupportedFormat is returned for output paths with no assembler.
var ErrUnsupportedFormat = errors.New("unsupported output file type")

var assemblers = map[string]func() combine.Assembler{
	".docx":  func() combine.Assembler { return Word{} },
	".pdf":   func() combine.Assembler { return PDF{} },
	".pptx":  func() combine.Assembler { return PowerPoint{} },
	".ipynb": func() combine.Assembler { return Notebook{} },
	".md":    func() combine.Assembler { return Markdown{} },
	".html":  func() combine.Assembler { return HTML{} },
}

// Extensions returns the supported output extensions, sorted.
func Extensions() []string {
	exts := make([]string, 0, len(assemblers))
	for ext := range assemblers {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ForPath returns the assembler for outputPath's extension. It satisfies
// combine.AssemblerLookup.
func ForPath(outputPath string) (combine.Assembler, error) {
	ext := strings.ToLower(filepath.Ext(outputPath))
	newAssembler, ok := assemblers[ext]
	if !ok {
		if ext == "" {
			ext = "(none)"
		}
		return nil, fmt.Errorf("%w %s: please use one of %s", ErrUnsupportedFormat, ext, strings.Join(Extensions(), ", "))
	}
	return newAssembler(), nil
}

// splitLines splits content into lines, accepting "\n", "\r\n" and "\r" as
// terminators. A trailing terminator does not produce an empty last line.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	return strings.Split(strings.TrimSuffix(content, "\n"), "\n")
}
