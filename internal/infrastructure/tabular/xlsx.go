package tabular

import (
	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Report"

// XLSXWriter renders a Table as a single-sheet workbook.
type XLSXWriter struct {
	Path  string
	Sheet string
}

// Write implements Writer.
func (w *XLSXWriter) Write(t Table) error {
	if err := ensureDir(w.Path); err != nil {
		return err
	}
	sheet := w.Sheet
	if sheet == "" {
		sheet = defaultSheet
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return outputErr(err, w.Path)
	}

	row := 1
	put := func(values []string) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		row++
		return f.SetSheetRow(sheet, cell, &values)
	}
	if t.Header != nil {
		if err := put(t.Header); err != nil {
			return outputErr(err, w.Path)
		}
		if err := f.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return outputErr(err, w.Path)
		}
	}
	for _, r := range t.Rows {
		if err := put(r); err != nil {
			return outputErr(err, w.Path)
		}
	}

	if err := f.SaveAs(w.Path); err != nil {
		return outputErr(err, w.Path)
	}
	return nil
}

//Personal.AI order the ending
