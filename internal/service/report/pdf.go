package report

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// renderPluckerTable is a pure function from report content to PDF
// bytes, so layout can be tested without touching storage or disk.
func renderPluckerTable(title, period string, rows []pluckerRow) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, title, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 8, "Period: "+period, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	headers := []string{"Name", "Total Collection (kg)", "Total Earnings (LKR)", "Status"}
	widths := []float64{60, 45, 45, 30}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(224, 224, 224)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 11)
	for _, row := range rows {
		pdf.CellFormat(widths[0], 8, row.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 8, fmt.Sprintf("%.2f", row.TotalCollection), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 8, row.TotalEarnings.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 8, row.Status, "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output: %w", err)
	}

	return buf.Bytes(), nil
}
