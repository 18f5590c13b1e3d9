// Package report exports simplified summaries as share-ready files.
package report

import (
	"bufio"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// WritePDF renders a summary into a minimal PDF at outPath. Markdown-style
// headings get a larger font and bullet lines keep their marker; everything
// else flows as wrapped paragraphs. This is intentionally simple and does not
// perform full Markdown layout.
func WritePDF(title, sourceURL, summary, outPath string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	if strings.TrimSpace(title) != "" {
		pdf.SetFont("Helvetica", "B", 16)
		pdf.MultiCell(0, 8, title, "", "L", false)
		pdf.Ln(2)
	}
	if strings.TrimSpace(sourceURL) != "" {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.WriteLinkString(5, sourceURL, sourceURL)
		pdf.Ln(8)
	}

	pdf.SetFont("Helvetica", "", 11)
	scanner := bufio.NewScanner(strings.NewReader(summary))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		s := strings.TrimSpace(scanner.Text())
		if s == "" {
			pdf.Ln(5)
			continue
		}
		if strings.HasPrefix(s, "#") {
			i := 0
			for i < len(s) && s[i] == '#' {
				i++
			}
			text := strings.TrimSpace(s[i:])
			if text == "" {
				continue
			}
			size := 14.0
			if i >= 2 {
				size = 12.0
			}
			pdf.SetFont("Helvetica", "B", size)
			pdf.CellFormat(0, 8, text, "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 11)
			continue
		}
		pdf.MultiCell(0, 5, s, "", "L", false)
	}
	return pdf.OutputFileAndClose(outPath)
}
