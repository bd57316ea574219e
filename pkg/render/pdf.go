package render

import (
	"io"
	"strings"

	"docwriter/pkg/combine"

	"github.com/go-pdf/fpdf"
)

// PDF page geometry, in points.
const (
	pdfMargin     = 40
	pdfLineHeight = 12
	pdfCodeHeight = 10
)

// PDF renders a Letter-sized PDF using the core Helvetica and Courier fonts.
// Text outside Windows-1252 cannot be shown by the core fonts.
type PDF struct{}

func (PDF) Render(w io.Writer, doc combine.Document) error {
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetTitle(doc.Root, true)
	pdf.SetCreator("docwriter", true)
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, pdfLineHeight*2, StructureHeading, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, line := range doc.Structure {
		pdf.CellFormat(0, pdfLineHeight, tr(line), "", 1, "L", false, 0, "")
	}

	pdf.Ln(pdfLineHeight * 2)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, pdfLineHeight*2, ContentsHeading, "", 1, "L", false, 0, "")

	for record := range doc.Files {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.MultiCell(0, pdfLineHeight, tr("File: "+record.Path), "", "L", false)

		pdf.SetFont("Courier", "", 8)
		for _, line := range splitLines(record.Content) {
			line = strings.ReplaceAll(line, "\t", "    ")
			if line == "" {
				pdf.Ln(pdfCodeHeight)
				continue
			}
			pdf.MultiCell(0, pdfCodeHeight, tr(line), "", "L", false)
		}
		pdf.Ln(pdfLineHeight)

		if pdf.Err() {
			return pdf.Error()
		}
	}

	return pdf.Output(w)
}
