package stories

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// SheetName is the name of the worksheet holding the stories
const SheetName = "User Stories"

var workbookHeader = []any{"#", "Priority", "User story", "Role", "Goal", "Benefit", "Rationale"}

// Workbook returns a spreadsheet with one row per story
func Workbook(list List) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(SheetName, "A1", &workbookHeader); err != nil {
		return nil, err
	}
	for i, s := range list.Stories {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{s.Index, string(s.Priority), s.Text, s.Role, s.Goal, s.Benefit, s.Rationale}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, err
		}
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(SheetName, "A1", "G1", style); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(SheetName, "C", "C", 80); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(SheetName, "D", "G", 30); err != nil {
		return nil, err
	}
	if len(list.Stories) > 0 {
		if err := f.AutoFilter(SheetName, fmt.Sprintf("A1:G%d", len(list.Stories)+1), nil); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// WriteWorkbook writes the xlsx export of list to w
func WriteWorkbook(w io.Writer, list List) error {
	f, err := Workbook(list)
	if err != nil {
		return fmt.Errorf("build workbook: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
