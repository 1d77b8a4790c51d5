package importer

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/extrame/xls"
)

// XLSReader reads the first sheet of a legacy BIFF (.xls) workbook.
type XLSReader struct{}

// Format returns the file extension.
func (x *XLSReader) Format() string { return "xls" }

// Read implements Reader.
func (x *XLSReader) Read(data []byte) (Grid, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return Grid{}, fmt.Errorf("opening workbook: %w", err)
	}
	if wb.NumSheets() == 0 {
		return Grid{}, errors.New("no sheets found in workbook")
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return Grid{}, errors.New("could not get first sheet")
	}

	var rows [][]string
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for j := range cells {
			cells[j] = row.Col(j)
		}
		rows = append(rows, cells)
	}
	return Grid{Rows: rows, SerialDates: true}, nil
}
