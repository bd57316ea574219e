package ooxml

import (
	"archive/zip"
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Content types shared by the generated packages.
const (
	ContentTypeRelationships = "application/vnd.openxmlformats-package.relationships+xml"
	ContentTypeCoreProps     = "application/vnd.openxmlformats-package.core-properties+xml"
)

// XMLHeader starts every part.
const XMLHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

// Package streams parts into a zip container and records their content
// types. [Content_Types].xml is written by Close, once every part is known.
type Package struct {
	zw        *zip.Writer
	overrides []override
}

type override struct {
	part        string
	contentType string
}

// NewPackage starts a package on w.
func NewPackage(w io.Writer) *Package {
	return &Package{zw: zip.NewWriter(w)}
}

// WritePart adds a part whose body is produced by fn. Parts with an empty
// content type are covered by the package defaults (.rels and .xml).
func (p *Package) WritePart(name, contentType string, fn func(w *bufio.Writer) error) error {
	fw, err := p.zw.Create(name)
	if err != nil {
		return fmt.Errorf("create part %s: %w", name, err)
	}
	bw := bufio.NewWriter(fw)
	if err := fn(bw); err != nil {
		return fmt.Errorf("write part %s: %w", name, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush part %s: %w", name, err)
	}
	if contentType != "" {
		p.overrides = append(p.overrides, override{part: "/" + name, contentType: contentType})
	}
	return nil
}

// WriteString adds a part with a fixed body.
func (p *Package) WriteString(name, contentType, body string) error {
	return p.WritePart(name, contentType, func(w *bufio.Writer) error {
		_, err := w.WriteString(body)
		return err
	})
}

// Close writes the content types part and finishes the zip stream.
func (p *Package) Close() error {
	err := p.WritePart("[Content_Types].xml", "", func(w *bufio.Writer) error {
		w.WriteString(XMLHeader)
		w.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
		w.WriteString(`<Default Extension="rels" ContentType="` + ContentTypeRelationships + `"/>`)
		w.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
		for _, o := range p.overrides {
			fmt.Fprintf(w, `<Override PartName="%s" ContentType="%s"/>`, Escape(o.part), o.contentType)
		}
		_, err := w.WriteString(`</Types>`)
		return err
	})
	if err != nil {
		return err
	}
	return p.zw.Close()
}

// Escape returns s with XML special characters replaced by entities.
func Escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// CoreProperties returns a docProps/core.xml body carrying a title.
func CoreProperties(title string) string {
	return XMLHeader +
		`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" ` +
		`xmlns:dc="http://purl.org/dc/elements/1.1/">` +
		`<dc:title>` + Escape(title) + `</dc:title>` +
		`<dc:creator>docwriter</dc:creator>` +
		`</cp:coreProperties>`
}
