package report

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// RecordsExcel exports every collection record in the inclusive range as
// a spreadsheet: one row per record plus a Day Total column derived from
// the record's total weight and average price.
func (s *Service) RecordsExcel(ctx context.Context, start, end time.Time) ([]byte, error) {
	const op = "service.report.RecordsExcel"

	records, err := s.storage.GetRecordsByDateRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Collection Records"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})

	headers := []string{"Date", "Total Weight (kg)", "Pluckers", "Average Price (LKR/kg)", "Day Total (LKR)"}
	for i, name := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, name)
	}
	lastCol, _ := excelize.CoordinatesToCellName(len(headers), 1)
	f.SetCellStyle(sheet, "A1", lastCol, headerStyle)

	for rowIdx, rec := range records {
		rowNum := rowIdx + 2

		amount := rec.AveragePrice.Mul(decimal.NewFromFloat(rec.TotalWeight))

		f.SetCellValue(sheet, cellName(1, rowNum), rec.Date.Format("2006-01-02"))
		f.SetCellValue(sheet, cellName(2, rowNum), rec.TotalWeight)
		f.SetCellValue(sheet, cellName(3, rowNum), rec.PluckerCount)
		f.SetCellValue(sheet, cellName(4, rowNum), rec.AveragePrice.InexactFloat64())
		f.SetCellValue(sheet, cellName(5, rowNum), amount.InexactFloat64())
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: write buffer: %w", op, err)
	}

	return buf.Bytes(), nil
}

func cellName(col, row int) string {
	cell, _ := excelize.CoordinatesToCellName(col, row)
	return cell
}
