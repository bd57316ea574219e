package render

import (
	"bufio"
	"io"
	"strings"

	"docwriter/pkg/combine"
	"docwriter/pkg/ooxml"
)

const (
	wordMainType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
	wordStylesType = "application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"
	wordNamespace  = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
)

// Word renders a .docx document: a Heading 1 per section, one paragraph per
// structure line, a page break, then a Heading 2 and a Courier New 10pt
// paragraph per file.
type Word struct{}

func (Word) Render(w io.Writer, doc combine.Document) error {
	pkg := ooxml.NewPackage(w)

	if err := pkg.WriteString("_rels/.rels", "", ooxml.XMLHeader+
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`+
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>`+
		`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>`+
		`</Relationships>`); err != nil {
		return err
	}
	if err := pkg.WriteString("docProps/core.xml", ooxml.ContentTypeCoreProps, ooxml.CoreProperties(doc.Root)); err != nil {
		return err
	}
	if err := pkg.WriteString("word/_rels/document.xml.rels", "", ooxml.XMLHeader+
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`+
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>`+
		`</Relationships>`); err != nil {
		return err
	}
	if err := pkg.WriteString("word/styles.xml", wordStylesType, wordStyles); err != nil {
		return err
	}

	err := pkg.WritePart("word/document.xml", wordMainType, func(bw *bufio.Writer) error {
		bw.WriteString(ooxml.XMLHeader)
		bw.WriteString(`<w:document xmlns:w="` + wordNamespace + `"><w:body>`)

		writeWordParagraph(bw, "Heading1", StructureHeading)
		for _, line := range doc.Structure {
			writeWordParagraph(bw, "", line)
		}
		bw.WriteString(`<w:p><w:r><w:br w:type="page"/></w:r></w:p>`)
		writeWordParagraph(bw, "Heading1", ContentsHeading)

		for record := range doc.Files {
			writeWordParagraph(bw, "Heading2", record.Path)
			writeWordParagraph(bw, "Code", record.Content)
		}

		_, err := bw.WriteString(`<w:sectPr><w:pgSz w:w="12240" w:h="15840"/>` +
			`<w:pgMar w:top="1440" w:right="1440" w:bottom="1440" w:left="1440" w:header="720" w:footer="720" w:gutter="0"/>` +
			`</w:sectPr></w:body></w:document>`)
		return err
	})
	if err != nil {
		return err
	}
	return pkg.Close()
}

// writeWordParagraph writes text as one paragraph. Line breaks become w:br
// and tabs w:tab inside a single run.
func writeWordParagraph(bw *bufio.Writer, style, text string) {
	bw.WriteString(`<w:p>`)
	if style != "" {
		bw.WriteString(`<w:pPr><w:pStyle w:val="` + style + `"/></w:pPr>`)
	}
	bw.WriteString(`<w:r>`)
	for i, line := range splitLines(text) {
		if i > 0 {
			bw.WriteString(`<w:br/>`)
		}
		for j, segment := range strings.Split(line, "\t") {
			if j > 0 {
				bw.WriteString(`<w:tab/>`)
			}
			if segment != "" {
				bw.WriteString(`<w:t xml:space="preserve">` + ooxml.Escape(segment) + `</w:t>`)
			}
		}
	}
	bw.WriteString(`</w:r></w:p>`)
}

const wordStyles = ooxml.XMLHeader +
	`<w:styles xmlns:w="` + wordNamespace + `">` +
	`<w:docDefaults><w:rPrDefault><w:rPr><w:rFonts w:ascii="Calibri" w:hAnsi="Calibri" w:cs="Calibri"/><w:sz w:val="22"/></w:rPr></w:rPrDefault></w:docDefaults>` +
	`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style>` +
	`<w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/>` +
	`<w:pPr><w:keepNext/><w:spacing w:before="240" w:after="120"/><w:outlineLvl w:val="0"/></w:pPr><w:rPr><w:b/><w:sz w:val="32"/></w:rPr></w:style>` +
	`<w:style w:type="paragraph" w:styleId="Heading2"><w:name w:val="heading 2"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/>` +
	`<w:pPr><w:keepNext/><w:spacing w:before="200" w:after="80"/><w:outlineLvl w:val="1"/></w:pPr><w:rPr><w:b/><w:sz w:val="26"/></w:rPr></w:style>` +
	`<w:style w:type="paragraph" w:customStyle="1" w:styleId="Code"><w:name w:val="Code"/><w:basedOn w:val="Normal"/>` +
	`<w:rPr><w:rFonts w:ascii="Courier New" w:hAnsi="Courier New" w:cs="Courier New"/><w:sz w:val="20"/></w:rPr></w:style>` +
	`</w:styles>`
