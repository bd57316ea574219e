// Package ooxml reads text out of Office Open XML containers and writes the
// minimal package parts needed to produce them.
package ooxml

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"
)

// ErrNoSlides is returned when a presentation package has no slide parts.
var ErrNoSlides = errors.New("presentation contains no slides")

// ExtractPresentation returns the text of every text-bearing shape of every
// slide, in slide order then shape order, joined by newlines. Shapes inside
// groups are visited in document order.
func ExtractPresentation(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open presentation: %w", err)
	}

	parts := indexParts(zr)
	slides, err := slideOrder(parts)
	if err != nil {
		return "", err
	}

	var texts []string
	for _, name := range slides {
		f, ok := parts[name]
		if !ok {
			return "", fmt.Errorf("missing slide part %s", name)
		}
		var s slideXML
		if err := decodePart(f, &s); err != nil {
			return "", fmt.Errorf("parse %s: %w", name, err)
		}
		texts = collectShapeText(s.CSld.SpTree.Nodes, texts)
	}
	return strings.Join(texts, "\n"), nil
}

// ExtractDocument returns the paragraph text of a word processing package,
// one line per paragraph, including paragraphs inside tables.
func ExtractDocument(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open document: %w", err)
	}

	f, ok := indexParts(zr)["word/document.xml"]
	if !ok {
		return "", errors.New("missing word/document.xml")
	}
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	var (
		b      strings.Builder
		inText bool
		lines  []string
	)
	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse word/document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteByte('\t')
			case "br", "cr":
				b.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				lines = append(lines, b.String())
				b.Reset()
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return strings.Join(lines, "\n"), nil
}

type slideXML struct {
	CSld struct {
		SpTree struct {
			Nodes []shapeNode `xml:",any"`
		} `xml:"spTree"`
	} `xml:"cSld"`
}

// shapeNode captures sp and grpSp elements in document order.
type shapeNode struct {
	XMLName  xml.Name
	TxBody   *textBody   `xml:"txBody"`
	Children []shapeNode `xml:",any"`
}

type textBody struct {
	Paragraphs []struct {
		Items []textItem `xml:",any"`
	} `xml:"p"`
}

type textItem struct {
	XMLName xml.Name
	Text    string `xml:"t"`
}

func collectShapeText(nodes []shapeNode, out []string) []string {
	for _, n := range nodes {
		switch n.XMLName.Local {
		case "sp":
			if text := n.TxBody.text(); text != "" {
				out = append(out, text)
			}
		case "grpSp":
			out = collectShapeText(n.Children, out)
		}
	}
	return out
}

func (tb *textBody) text() string {
	if tb == nil {
		return ""
	}
	paragraphs := make([]string, 0, len(tb.Paragraphs))
	for _, p := range tb.Paragraphs {
		var b strings.Builder
		for _, item := range p.Items {
			switch item.XMLName.Local {
			case "r", "fld":
				b.WriteString(item.Text)
			case "br":
				b.WriteByte('\n')
			}
		}
		paragraphs = append(paragraphs, b.String())
	}
	return strings.Join(paragraphs, "\n")
}

func indexParts(zr *zip.Reader) map[string]*zip.File {
	parts := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		parts[strings.TrimPrefix(f.Name, "/")] = f
	}
	return parts
}

func decodePart(f *zip.File, v any) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	return xml.NewDecoder(rc).Decode(v)
}

type presentationXML struct {
	SlideIDs []struct {
		RelID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	} `xml:"sldIdLst>sldId"`
}

type relationshipsXML struct {
	Relationships []struct {
		ID     string `xml:"Id,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

// slideOrder resolves slide part names in presentation order. A readable
// presentation part is authoritative even when it lists no slides; parts it
// does not reference are ignored. Only packages whose presentation part or
// its relationships are missing or unparseable fall back to numeric order of
// ppt/slides/slideN.xml.
func slideOrder(parts map[string]*zip.File) ([]string, error) {
	var pres presentationXML
	var rels relationshipsXML
	presPart, okPres := parts["ppt/presentation.xml"]
	relsPart, okRels := parts["ppt/_rels/presentation.xml.rels"]
	if okPres && okRels && decodePart(presPart, &pres) == nil && decodePart(relsPart, &rels) == nil {
		targets := make(map[string]string, len(rels.Relationships))
		for _, r := range rels.Relationships {
			targets[r.ID] = r.Target
		}
		var ordered []string
		for _, id := range pres.SlideIDs {
			target, ok := targets[id.RelID]
			if !ok {
				continue
			}
			if strings.HasPrefix(target, "/") {
				ordered = append(ordered, strings.TrimPrefix(target, "/"))
			} else {
				ordered = append(ordered, path.Join("ppt", target))
			}
		}
		return ordered, nil
	}

	type numbered struct {
		name string
		n    int
	}
	var found []numbered
	for name := range parts {
		if !strings.HasPrefix(name, "ppt/slides/slide") || !strings.HasSuffix(name, ".xml") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, "ppt/slides/slide"), ".xml"))
		if err != nil {
			continue
		}
		found = append(found, numbered{name, n})
	}
	if len(found) == 0 {
		return nil, ErrNoSlides
	}
	sort.Slice(found, func(i, j int) bool { return found[i].n < found[j].n })

	names := make([]string, len(found))
	for i, f := range found {
		names[i] = f.name
	}
	return names, nil
}
