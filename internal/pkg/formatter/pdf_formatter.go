package formatter

import (
	"bytes"
	"fmt"
	"os"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfContentType   = "application/pdf"
	pdfFileExtension = ".pdf"

	pdfFontName = "DejaVuSans"

	// the image copies fonts next to the binary
	pdfFontRuntimePath = "ttf/DejaVuSans.ttf"
	pdfFontSourcePath  = "internal/pkg/formatter/ttf/DejaVuSans.ttf"
)

type PDFFormatter struct{}

func NewPDFFormatter() *PDFFormatter {
	return &PDFFormatter{}
}

// resolveFontPath returns the first existing font path, or "" to fall back to Arial
func resolveFontPath() string {
	for _, path := range []string{pdfFontRuntimePath, pdfFontSourcePath} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func (mf *PDFFormatter) Format(doc *Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	// Core fonts cannot render non-Latin text, prefer the bundled UTF-8 font
	fontName := "Arial"
	if fontPath := resolveFontPath(); fontPath != "" {
		pdf.AddUTF8Font(pdfFontName, "", fontPath)
		pdf.AddUTF8Font(pdfFontName, "B", fontPath)
		fontName = pdfFontName
	}

	pdf.SetFont(fontName, "B", 18)
	pdf.Cell(0, 10, doc.title())
	pdf.Ln(12)

	for _, section := range doc.Sections {
		pdf.SetFont(fontName, "B", 14)
		pdf.Cell(0, 8, section.Heading)
		pdf.Ln(9)

		pdf.SetFont(fontName, "", 11)
		_, lineHeight := pdf.GetFontSize()
		for _, line := range section.Lines {
			pdf.MultiCell(0, lineHeight*1.5, line, "", "", false)
		}
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (mf *PDFFormatter) ContentType() string {
	return pdfContentType
}

func (mf *PDFFormatter) FileExtension() string {
	return pdfFileExtension
}
