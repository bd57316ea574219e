package render

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"docwriter/pkg/combine"

	"github.com/google/uuid"
)

// Notebook renders an nbformat 4.5 notebook made of Markdown cells. Cells
// are streamed so the whole notebook is never held in memory.
type Notebook struct{}

type notebookCell struct {
	CellType string         `json:"cell_type"`
	ID       string         `json:"id"`
	Metadata map[string]any `json:"metadata"`
	Source   []string       `json:"source"`
}

func (Notebook) Render(w io.Writer, doc combine.Document) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("{\n \"cells\": [")

	n := 0
	writeCell := func(source string) error {
		cell := notebookCell{
			CellType: "markdown",
			ID:       cellID(doc.Root, n),
			Metadata: map[string]any{},
			Source:   sourceLines(source),
		}
		data, err := json.MarshalIndent(cell, "  ", " ")
		if err != nil {
			return fmt.Errorf("encode cell %d: %w", n, err)
		}
		if n > 0 {
			bw.WriteString(",")
		}
		bw.WriteString("\n  ")
		bw.Write(data)
		n++
		return nil
	}

	structure := "# " + StructureHeading + "\n\n```\n" + strings.Join(doc.Structure, "\n") + "\n```"
	if err := writeCell(structure); err != nil {
		return err
	}
	if err := writeCell("# " + ContentsHeading); err != nil {
		return err
	}
	for record := range doc.Files {
		f := fence(record.Content)
		source := "## " + escapeInline(record.Path) + "\n\n" + f + "\n" + record.Content + "\n" + f
		if err := writeCell(source); err != nil {
			return err
		}
	}

	bw.WriteString("\n ],\n \"metadata\": {},\n \"nbformat\": 4,\n \"nbformat_minor\": 5\n}\n")
	return bw.Flush()
}

// cellID derives a stable id so identical inputs give identical notebooks.
func cellID(root string, index int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, fmt.Appendf(nil, "docwriter:%s:%d", root, index)).String()
}

// sourceLines splits source the way nbformat stores it: every line keeps its
// newline except the last.
func sourceLines(source string) []string {
	if source == "" {
		return []string{}
	}
	lines := strings.SplitAfter(source, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
