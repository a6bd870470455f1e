package report

import (
	"context"
	"fmt"

	"github.com/go-pdf/fpdf"
)

const (
	titleSize = 18
	bodySize  = 11
	lineH     = 6
)

// PDFRenderer lays out reports on A4 pages with go-pdf/fpdf: a cover page
// with the header table and notes, then one screenshot per page.
type PDFRenderer struct{}

// Render implements Renderer.
func (PDFRenderer) Render(ctx context.Context, doc *Document, path string, progress ProgressFunc) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr(doc.Header.TestCase+" evidence"), false)
	pdf.SetCreator("qacapture", false)
	pdf.SetAutoPageBreak(true, 15)

	coverPage(pdf, tr, doc)

	total := len(doc.Pages)
	for i, page := range doc.Pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		screenshotPage(pdf, tr, page, i+1, total)
		if err := pdf.Error(); err != nil {
			return fmt.Errorf("failed to add %s: %w", page.Filename, err)
		}
		if progress != nil {
			progress(i+1, total)
		}
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func coverPage(pdf *fpdf.Fpdf, tr func(string) string, doc *Document) {
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", titleSize)
	pdf.CellFormat(0, 12, tr("Test evidence: "+doc.Header.TestCase), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	rows := [][2]string{
		{"Result", doc.Header.TestName},
		{"System", doc.Header.System},
		{"Test type", doc.Header.TestType + " " + doc.Header.TestTypeValue},
		{"Test cycle", doc.Header.TestCycle},
		{"Test case", doc.Header.TestCase},
		{"Screenshots", fmt.Sprintf("%d", len(doc.Pages))},
		{"Generated", doc.GeneratedAt.Format("2006-01-02 15:04")},
	}
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", bodySize)
		pdf.CellFormat(40, lineH+2, tr(row[0]), "1", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", bodySize)
		pdf.CellFormat(0, lineH+2, tr(row[1]), "1", 1, "L", false, 0, "")
	}

	if doc.Notes != "" {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", bodySize)
		pdf.CellFormat(0, lineH, "Notes", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", bodySize)
		pdf.MultiCell(0, lineH, tr(doc.Notes), "", "L", false)
	}
}

// screenshotPage scales the image to the printable width, or height when
// it is tall.
func screenshotPage(pdf *fpdf.Fpdf, tr func(string) string, page Page, n, total int) {
	pdf.AddPage()

	caption := fmt.Sprintf("%d/%d  %s  %s", n, total, page.Filename, page.CapturedAt.Format("2006-01-02 15:04:05"))
	if page.Edited {
		caption += "  (edited)"
	}
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, lineH, tr(caption), "", 1, "L", false, 0, "")

	opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	info := pdf.RegisterImageOptions(page.Path, opts)
	if info == nil || pdf.Error() != nil {
		return
	}

	pageW, pageH := pdf.GetPageSize()
	left, top, right, bottom := pdf.GetMargins()
	maxW := pageW - left - right
	maxH := pageH - top - bottom - lineH*2

	w, h := info.Width(), info.Height()
	if w <= 0 || h <= 0 {
		return
	}
	scale := maxW / w
	if h*scale > maxH {
		scale = maxH / h
	}
	pdf.ImageOptions(page.Path, left, pdf.GetY()+2, w*scale, h*scale, false, opts, 0, "")
}
