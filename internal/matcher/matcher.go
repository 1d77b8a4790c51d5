// Package matcher chooses the field mapping for a statement table.
package matcher

import (
	"fmt"
	"strings"

	"github.com/stmtlens/stmtlens/internal/model"
	"github.com/stmtlens/stmtlens/internal/templates"
)

// Match is the outcome of scoring one template against a table.
type Match struct {
	Template string
	Score    int
	Mapping  model.FieldMapping // only the fields that matched, spelled as in the table
}

// Score counts the fields of m whose column appears among columns, comparing
// trimmed names case-insensitively, and returns the matched subset.
func Score(columns []string, m model.FieldMapping) (int, model.FieldMapping) {
	var matched model.FieldMapping
	score := 0
	for _, f := range model.Fields {
		want, ok := m.Get(f)
		if !ok {
			continue
		}
		for _, col := range columns {
			if strings.EqualFold(strings.TrimSpace(col), want) {
				matched.Set(f, col)
				score++
				break
			}
		}
	}
	return score, matched
}

// BestMatch scores every template in lexical name order and keeps the first
// one with the highest score. ok is false when no template scores above zero.
func BestMatch(columns []string, set *templates.Set) (best Match, ok bool) {
	for _, name := range set.Names() {
		tmpl, _ := set.Get(name)
		score, matched := Score(columns, tmpl)
		if score > best.Score {
			best = Match{Template: name, Score: score, Mapping: matched}
		}
	}
	return best, best.Score > 0
}

// Source says where a resolved mapping came from.
type Source string

const (
	SourceManual   Source = "manual"
	SourceTemplate Source = "template"
	SourceDefault  Source = "default"
)

// Resolution is the mapping chosen for one table.
type Resolution struct {
	Source   Source
	Template string // set for SourceTemplate
	Score    int    // set for SourceTemplate
	Mapping  model.FieldMapping
	Warnings []string
}

// DefaultMapping is the last-resort layout, a common Russian business bank
// export.
func DefaultMapping() model.FieldMapping {
	var m model.FieldMapping
	m.Set(model.FieldDate, "Дата операции")
	m.Set(model.FieldCounterpartyTaxID, "ИНН/КИО.1")
	m.Set(model.FieldCounterpartyName, "Наименование")
	m.Set(model.FieldPurpose, "Назначение платежа")
	m.Set(model.FieldDebit, "По дебету (руб)")
	m.Set(model.FieldCredit, "По кредиту (руб)")
	return m
}

// Resolver picks a mapping: a manual mapping first, then the best template,
// then Default.
type Resolver struct {
	Templates *templates.Set
	Default   model.FieldMapping // DefaultMapping() when empty
}

// Resolve returns the mapping to use for a table with columns. manual may be
// nil. The result always maps at least one field.
func (r Resolver) Resolve(columns []string, manual *model.FieldMapping) Resolution {
	var res Resolution
	switch {
	case manual != nil && !manual.IsEmpty():
		res = Resolution{Source: SourceManual, Mapping: *manual}
	default:
		if best, ok := BestMatch(columns, r.Templates); ok {
			res = Resolution{Source: SourceTemplate, Template: best.Template, Score: best.Score, Mapping: best.Mapping}
		} else {
			def := r.Default
			if def.IsEmpty() {
				def = DefaultMapping()
			}
			res = Resolution{Source: SourceDefault, Mapping: def}
		}
	}

	for _, d := range res.Mapping.Duplicates() {
		keys := make([]string, len(d.Fields))
		for i, f := range d.Fields {
			keys[i] = f.Key()
		}
		res.Warnings = append(res.Warnings, fmt.Sprintf("column %q is mapped to %s", d.Column, strings.Join(keys, ", ")))
	}
	for _, f := range res.Mapping.Missing(columns) {
		col, _ := res.Mapping.Get(f)
		res.Warnings = append(res.Warnings, fmt.Sprintf("%s column %q not found", f.Key(), col))
	}
	return res
}
