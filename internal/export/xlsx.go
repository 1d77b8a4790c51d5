// Package export writes canonical records and counterparty summaries as
// spreadsheet workbooks and CSV files.
package export

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/stmtlens/stmtlens/internal/model"
)

// Sheet names used by the stmtlens reports.
const (
	SheetCombined       = "Combined"
	SheetFiltered       = "Filtered"
	SheetCounterparties = "Counterparties"
	SheetOperations     = "Operations"
)

// Sheet is one worksheet of a workbook.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]any
}

// RecordsSheet lays records out under the canonical field labels. Amounts
// are written as numbers.
func RecordsSheet(name string, records []model.Record) Sheet {
	header := make([]string, len(model.Fields))
	for i, f := range model.Fields {
		header[i] = f.Label()
	}
	rows := make([][]any, len(records))
	for i, r := range records {
		rows[i] = []any{
			r.DateString(),
			r.CounterpartyTaxID,
			r.CounterpartyName,
			r.Purpose,
			r.Debit.InexactFloat64(),
			r.Credit.InexactFloat64(),
		}
	}
	return Sheet{Name: name, Header: header, Rows: rows}
}

// AggregatesSheet lays out one row per counterparty.
func AggregatesSheet(name string, aggs []model.AggregateRow) Sheet {
	header := []string{
		model.FieldCounterpartyTaxID.Label(),
		model.FieldCounterpartyName.Label(),
		"Operations",
		"Debit Total",
		"Credit Total",
	}
	rows := make([][]any, len(aggs))
	for i, a := range aggs {
		rows[i] = []any{
			a.CounterpartyTaxID,
			a.CounterpartyName,
			a.OperationCount,
			a.DebitSum.InexactFloat64(),
			a.CreditSum.InexactFloat64(),
		}
	}
	return Sheet{Name: name, Header: header, Rows: rows}
}

// WriteWorkbook writes sheets, in order, as an xlsx workbook to w.
func WriteWorkbook(w io.Writer, sheets ...Sheet) error {
	if len(sheets) == 0 {
		return errors.New("workbook needs at least one sheet")
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.Name); err != nil {
				return fmt.Errorf("naming sheet %s: %w", s.Name, err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			return fmt.Errorf("creating sheet %s: %w", s.Name, err)
		}
		if err := writeSheet(f, s); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, s Sheet) error {
	header := make([]any, len(s.Header))
	for i, h := range s.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(s.Name, "A1", &header); err != nil {
		return fmt.Errorf("writing %s header: %w", s.Name, err)
	}
	for i, row := range s.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.Name, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", s.Name, i+2, err)
		}
	}
	return nil
}
