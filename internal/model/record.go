package model

import (
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Record is one normalized statement transaction.
type Record struct {
	Date              civil.Date // zero = absent
	CounterpartyTaxID string
	CounterpartyName  string
	Purpose           string
	Debit             decimal.Decimal // non-negative
	Credit            decimal.Decimal // non-negative
}

// HasDate reports whether the record carries a parsed date.
func (r Record) HasDate() bool { return !r.Date.IsZero() }

// DateString returns the date as YYYY-MM-DD, or "" when absent.
func (r Record) DateString() string {
	if !r.HasDate() {
		return ""
	}
	return r.Date.String()
}

// Valid reports whether the record may be kept: it needs a date, a
// counterparty name and a counterparty tax ID.
func (r Record) Valid() bool {
	return r.HasDate() && !IsMissing(r.CounterpartyName) && !IsMissing(r.CounterpartyTaxID)
}

// IsMissing reports whether s is blank or one of the placeholders that
// spreadsheet exports write for empty cells.
func IsMissing(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "nan", "<na>", "null":
		return true
	}
	return false
}

// AggregateRow summarizes all records of one counterparty tax ID.
type AggregateRow struct {
	CounterpartyTaxID string
	CounterpartyName  string // most frequent name, first seen wins ties
	OperationCount    int
	DebitSum          decimal.Decimal
	CreditSum         decimal.Decimal
}
