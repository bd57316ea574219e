package render

import (
	"bufio"
	"io"
	"strings"

	"docwriter/pkg/combine"
)

// Markdown renders a CommonMark document: the structure in one fenced block,
// then a second-level heading and a fenced block per file.
type Markdown struct{}

func (Markdown) Render(w io.Writer, doc combine.Document) error {
	bw := bufio.NewWriter(w)

	bw.WriteString("# " + StructureHeading + "\n\n")
	writeFenced(bw, strings.Join(doc.Structure, "\n"))
	bw.WriteString("\n# " + ContentsHeading + "\n")

	for record := range doc.Files {
		bw.WriteString("\n## " + escapeInline(record.Path) + "\n\n")
		writeFenced(bw, record.Content)
	}
	return bw.Flush()
}

// fence returns a backtick fence longer than any backtick run in content.
func fence(content string) string {
	longest, run := 0, 0
	for _, r := range content {
		if r == '`' {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	return strings.Repeat("`", max(3, longest+1))
}

func writeFenced(w *bufio.Writer, content string) {
	f := fence(content)
	w.WriteString(f + "\n")
	w.WriteString(content)
	if content != "" && !strings.HasSuffix(content, "\n") {
		w.WriteString("\n")
	}
	w.WriteString(f + "\n")
}

var inlineEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", `*`, `\*`, `_`, `\_`, `&`, `\&`,
	`[`, `\[`, `]`, `\]`, `<`, `\<`, `>`, `\>`, `|`, `\|`, `~`, `\~`,
)

// escapeInline makes a path safe to use as heading text.
func escapeInline(s string) string {
	return inlineEscaper.Replace(s)
}
