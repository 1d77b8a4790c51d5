// Package aggregate filters canonical records and summarizes them per
// counterparty.
package aggregate

import (
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/stmtlens/stmtlens/internal/model"
)

// Filter selects records. Zero-valued criteria match everything; set
// criteria are combined with AND.
type Filter struct {
	From  civil.Date // inclusive
	To    civil.Date // inclusive
	TaxID string     // substring, case-sensitive
	Name  string     // substring, case-insensitive
}

// IsZero reports whether the filter has no criteria.
func (f Filter) IsZero() bool {
	return f.From.IsZero() && f.To.IsZero() && f.TaxID == "" && f.Name == ""
}

// Match reports whether r satisfies every criterion. A record without a date
// fails any date bound.
func (f Filter) Match(r model.Record) bool {
	if !f.From.IsZero() && (!r.HasDate() || r.Date.Before(f.From)) {
		return false
	}
	if !f.To.IsZero() && (!r.HasDate() || r.Date.After(f.To)) {
		return false
	}
	if f.TaxID != "" && !strings.Contains(r.CounterpartyTaxID, f.TaxID) {
		return false
	}
	if f.Name != "" && !strings.Contains(strings.ToLower(r.CounterpartyName), strings.ToLower(f.Name)) {
		return false
	}
	return true
}

// Apply returns the records matching f, in their original order.
func (f Filter) Apply(records []model.Record) []model.Record {
	var out []model.Record
	for _, r := range records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Totals are the headline figures of a record set.
type Totals struct {
	Count  int
	Debit  decimal.Decimal
	Credit decimal.Decimal
}

// Summarize sums debit and credit over records.
func Summarize(records []model.Record) Totals {
	t := Totals{Debit: decimal.Zero, Credit: decimal.Zero}
	for _, r := range records {
		t.Count++
		t.Debit = t.Debit.Add(r.Debit)
		t.Credit = t.Credit.Add(r.Credit)
	}
	return t
}

type group struct {
	row        model.AggregateRow
	nameCounts map[string]int
	nameOrder  []string
}

// Aggregate groups records by exact counterparty tax ID. Groups appear in the
// order their tax ID is first seen. Each group's name is the most frequent
// counterparty name, the earliest seen winning ties.
func Aggregate(records []model.Record) []model.AggregateRow {
	groups := make(map[string]*group)
	var order []string

	for _, r := range records {
		g, ok := groups[r.CounterpartyTaxID]
		if !ok {
			g = &group{
				row:        model.AggregateRow{CounterpartyTaxID: r.CounterpartyTaxID, DebitSum: decimal.Zero, CreditSum: decimal.Zero},
				nameCounts: make(map[string]int),
			}
			groups[r.CounterpartyTaxID] = g
			order = append(order, r.CounterpartyTaxID)
		}
		g.row.OperationCount++
		g.row.DebitSum = g.row.DebitSum.Add(r.Debit)
		g.row.CreditSum = g.row.CreditSum.Add(r.Credit)
		if _, seen := g.nameCounts[r.CounterpartyName]; !seen {
			g.nameOrder = append(g.nameOrder, r.CounterpartyName)
		}
		g.nameCounts[r.CounterpartyName]++
	}

	rows := make([]model.AggregateRow, 0, len(order))
	for _, key := range order {
		g := groups[key]
		best := 0
		for _, name := range g.nameOrder {
			if n := g.nameCounts[name]; n > best {
				best = n
				g.row.CounterpartyName = name
			}
		}
		rows = append(rows, g.row)
	}
	return rows
}

// ForCounterparty returns the records whose tax ID equals taxID exactly.
func ForCounterparty(records []model.Record, taxID string) []model.Record {
	var out []model.Record
	for _, r := range records {
		if r.CounterpartyTaxID == taxID {
			out = append(out, r)
		}
	}
	return out
}
