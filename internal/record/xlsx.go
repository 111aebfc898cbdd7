package record

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/spigell/resume-screener/internal/screening"
)

// SheetName is the worksheet holding the results in a workbook.
const SheetName = "Evaluations"

var columnWidths = []struct {
	name  string
	width float64
}{
	{name: "A", width: 30},
	{name: "B", width: 100},
	{name: "C", width: 16},
}

func writeXLSX(path string, results []screening.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	wrapStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return fmt.Errorf("create wrap style: %w", err)
	}

	for i, h := range Header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(SheetName, "A1", "C1", headerStyle); err != nil {
		return err
	}

	for i, r := range results {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := row(r)
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if len(results) > 0 {
		last, _ := excelize.CoordinatesToCellName(2, len(results)+1)
		if err := f.SetCellStyle(SheetName, "B2", last, wrapStyle); err != nil {
			return err
		}
	}

	for _, col := range columnWidths {
		if err := f.SetColWidth(SheetName, col.name, col.name, col.width); err != nil {
			return fmt.Errorf("set width of column %s: %w", col.name, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}

	return nil
}
