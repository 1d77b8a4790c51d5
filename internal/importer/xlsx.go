package importer

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// XLSXReader reads the first worksheet of an Office Open XML workbook.
// Cells are returned unformatted, so dates arrive as Excel serial numbers.
type XLSXReader struct{}

// Format returns the file extension.
func (x *XLSXReader) Format() string { return "xlsx" }

// Read implements Reader.
func (x *XLSXReader) Read(data []byte) (Grid, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return Grid{}, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Grid{}, errors.New("no sheets found in workbook")
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return Grid{}, fmt.Errorf("reading sheet %s: %w", sheets[0], err)
	}
	return Grid{Rows: rows, SerialDates: true}, nil
}
