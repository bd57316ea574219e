package render

import (
	"bytes"
	"fmt"
	"html"
	"io"

	"docwriter/pkg/combine"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// HTML renders the Markdown document to a standalone HTML page. Raw HTML in
// file contents is never emitted unescaped.
type HTML struct{}

func (HTML) Render(w io.Writer, doc combine.Document) error {
	var source bytes.Buffer
	if err := (Markdown{}).Render(&source, doc); err != nil {
		return err
	}

	md := goldmark.New(goldmark.WithExtensions(extension.GFM))

	var body bytes.Buffer
	if err := md.Convert(source.Bytes(), &body); err != nil {
		return fmt.Errorf("convert markdown: %w", err)
	}

	_, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n%s</body>\n</html>\n",
		html.EscapeString(doc.Root), body.Bytes())
	return err
}
