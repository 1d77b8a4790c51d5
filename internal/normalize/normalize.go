// Package normalize converts raw statement rows into canonical records.
package normalize

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/stmtlens/stmtlens/internal/model"
)

// ErrRowRejected marks a row that was dropped from the output.
var ErrRowRejected = errors.New("row rejected")

// DefaultDateLayouts are tried in order when parsing date cells.
var DefaultDateLayouts = []string{
	"02.01.2006",
	"2006-01-02",
	"02/01/2006",
	"02.01.06",
	"2.1.2006",
	"2.1.06",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	time.RFC3339,
}

// Excel serial day numbers accepted as dates: 1900-03-01 through 9999-12-31.
// Lower serials fall before Excel's phantom 1900-02-29.
const (
	minExcelSerial = 61
	maxExcelSerial = 2958465
)

// Normalizer turns table rows into records.
type Normalizer struct {
	layouts     []string
	serialDates bool
}

// New returns a Normalizer that tries extraLayouts before DefaultDateLayouts.
func New(extraLayouts ...string) *Normalizer {
	layouts := make([]string, 0, len(extraLayouts)+len(DefaultDateLayouts))
	layouts = append(layouts, extraLayouts...)
	layouts = append(layouts, DefaultDateLayouts...)
	return &Normalizer{layouts: layouts}
}

// WithSerialDates returns a copy of n that also reads Excel serial day
// numbers. Only spreadsheet grids should use it: in text formats a bare
// number in the date column is a row number or a year, not a date.
func (n *Normalizer) WithSerialDates() *Normalizer {
	c := *n
	c.serialDates = true
	return &c
}

// ParseDate parses a date cell. ok is false for blank or unrecognized values.
func (n *Normalizer) ParseDate(s string) (civil.Date, bool) {
	s = strings.TrimSpace(s)
	if model.IsMissing(s) {
		return civil.Date{}, false
	}
	for _, layout := range n.layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return civil.DateOf(t), true
		}
	}
	if !n.serialDates {
		return civil.Date{}, false
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial >= minExcelSerial && serial <= maxExcelSerial {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return civil.DateOf(t), true
		}
	}
	return civil.Date{}, false
}

// ParseMoney cleans an amount cell: all whitespace (including non-breaking
// and thin spaces used as thousands separators) is removed and a decimal
// comma becomes a point. Anything unparseable is zero. Negative amounts are
// returned as their absolute value.
func ParseMoney(s string) decimal.Decimal {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		if r == ',' {
			return '.'
		}
		return r
	}, s)
	if cleaned == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d.Abs()
}

// Row normalizes row i of t. It returns an error wrapping ErrRowRejected when
// the record lacks a date, counterparty name or counterparty tax ID, or when
// the row cannot be read at all.
func (n *Normalizer) Row(t *model.RawTable, i int, m model.FieldMapping) (rec model.Record, err error) {
	defer func() {
		if p := recover(); p != nil {
			rec, err = model.Record{}, fmt.Errorf("%w: %v", ErrRowRejected, p)
		}
	}()

	cell := func(f model.Field) string {
		col, ok := m.Get(f)
		if !ok {
			return ""
		}
		v, _ := t.Cell(i, col)
		return v
	}

	rec = model.Record{
		CounterpartyTaxID: strings.TrimSpace(cell(model.FieldCounterpartyTaxID)),
		CounterpartyName:  strings.TrimSpace(cell(model.FieldCounterpartyName)),
		Purpose:           strings.TrimSpace(cell(model.FieldPurpose)),
		Debit:             ParseMoney(cell(model.FieldDebit)),
		Credit:            ParseMoney(cell(model.FieldCredit)),
	}
	if d, ok := n.ParseDate(cell(model.FieldDate)); ok {
		rec.Date = d
	}

	switch {
	case !rec.HasDate():
		return model.Record{}, fmt.Errorf("%w: no date", ErrRowRejected)
	case model.IsMissing(rec.CounterpartyName):
		return model.Record{}, fmt.Errorf("%w: no counterparty name", ErrRowRejected)
	case model.IsMissing(rec.CounterpartyTaxID):
		return model.Record{}, fmt.Errorf("%w: no counterparty tax id", ErrRowRejected)
	}
	return rec, nil
}

// TableResult holds the records kept from one table.
type TableResult struct {
	Records  []model.Record
	Rows     int
	Rejected int
}

// Table normalizes every row of t in order, dropping rejected rows.
func (n *Normalizer) Table(t *model.RawTable, m model.FieldMapping) TableResult {
	res := TableResult{Rows: t.Len()}
	for i := 0; i < t.Len(); i++ {
		rec, err := n.Row(t, i, m)
		if err != nil {
			res.Rejected++
			continue
		}
		res.Records = append(res.Records, rec)
	}
	return res
}
