package wordml

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Sheet1"

// Workbook renders the chart's cached data as the xlsx Word opens when the
// chart is edited: categories in column A, one series per column from B.
func (c *Chart) Workbook() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	series := c.Series()
	var cats []string
	for _, s := range series {
		if got := s.Categories(); len(got) > len(cats) {
			cats = got
		}
	}
	for i, label := range cats {
		if err := f.SetCellValue(sheetName, cell(1, i+2), label); err != nil {
			return nil, err
		}
	}
	for col, s := range series {
		if err := f.SetCellValue(sheetName, cell(col+2, 1), s.Name()); err != nil {
			return nil, err
		}
		for i, v := range s.Values() {
			if err := f.SetCellValue(sheetName, cell(col+2, i+2), v); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
