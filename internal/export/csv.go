package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/stmtlens/stmtlens/internal/model"
)

// Header is the CSV header for canonical record files.
const Header = "date,counterparty_tax_id,counterparty_name,purpose,debit,credit"

const (
	numFields  = 6
	colDate    = 0
	colTaxID   = 1
	colName    = 2
	colPurpose = 3
	colDebit   = 4
	colCredit  = 5
)

// WriteRecords writes records as CSV (including header).
func WriteRecords(w io.Writer, records []model.Record) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, r := range records {
		if err := cw.Write(MarshalRecord(r)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadRecords reads a canonical record CSV written by WriteRecords.
func ReadRecords(r io.Reader) ([]model.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading records CSV: %w", err)
	}

	if len(rows) <= 1 {
		return nil, nil
	}

	var records []model.Record
	for i, row := range rows[1:] {
		rec, err := UnmarshalRecord(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// MarshalRecord converts a Record to a CSV row.
func MarshalRecord(r model.Record) []string {
	row := make([]string, numFields)
	row[colDate] = r.DateString()
	row[colTaxID] = r.CounterpartyTaxID
	row[colName] = r.CounterpartyName
	row[colPurpose] = r.Purpose
	row[colDebit] = r.Debit.StringFixed(2)
	row[colCredit] = r.Credit.StringFixed(2)
	return row
}

// UnmarshalRecord converts a CSV row to a Record.
func UnmarshalRecord(row []string) (model.Record, error) {
	if len(row) != numFields {
		return model.Record{}, fmt.Errorf("expected %d fields, got %d", numFields, len(row))
	}

	var rec model.Record
	if row[colDate] != "" {
		d, err := civil.ParseDate(row[colDate])
		if err != nil {
			return model.Record{}, fmt.Errorf("parsing date %q: %w", row[colDate], err)
		}
		rec.Date = d
	}

	debit, err := parseAmount(row[colDebit])
	if err != nil {
		return model.Record{}, fmt.Errorf("parsing debit %q: %w", row[colDebit], err)
	}
	credit, err := parseAmount(row[colCredit])
	if err != nil {
		return model.Record{}, fmt.Errorf("parsing credit %q: %w", row[colCredit], err)
	}

	rec.CounterpartyTaxID = row[colTaxID]
	rec.CounterpartyName = row[colName]
	rec.Purpose = row[colPurpose]
	rec.Debit = debit
	rec.Credit = credit
	return rec, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
