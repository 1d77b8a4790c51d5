package model

import (
	"fmt"
	"sort"
	"strings"
)

// Field is one column of the canonical statement schema.
type Field int

const (
	FieldDate Field = iota
	FieldCounterpartyTaxID
	FieldCounterpartyName
	FieldPurpose
	FieldDebit
	FieldCredit

	numFields
)

// Fields lists the canonical schema in output order.
var Fields = []Field{
	FieldDate,
	FieldCounterpartyTaxID,
	FieldCounterpartyName,
	FieldPurpose,
	FieldDebit,
	FieldCredit,
}

type fieldInfo struct {
	key     string
	label   string
	aliases []string
}

var fieldInfos = [numFields]fieldInfo{
	FieldDate:              {key: "date", label: "Date", aliases: []string{"Дата"}},
	FieldCounterpartyTaxID: {key: "counterparty_tax_id", label: "Counterparty Tax ID", aliases: []string{"ИНН контрагента", "tax_id", "inn"}},
	FieldCounterpartyName:  {key: "counterparty_name", label: "Counterparty", aliases: []string{"Контрагент", "counterparty"}},
	FieldPurpose:           {key: "purpose", label: "Purpose", aliases: []string{"Назначение"}},
	FieldDebit:             {key: "debit", label: "Debit", aliases: []string{"Дебет"}},
	FieldCredit:            {key: "credit", label: "Credit", aliases: []string{"Кредит"}},
}

// Key returns the stable machine name used in template documents and config.
func (f Field) Key() string {
	if f < 0 || f >= numFields {
		return fmt.Sprintf("field(%d)", int(f))
	}
	return fieldInfos[f].key
}

// Label returns the human-readable column header used in exports.
func (f Field) Label() string {
	if f < 0 || f >= numFields {
		return f.Key()
	}
	return fieldInfos[f].label
}

func (f Field) String() string { return f.Key() }

// ParseField resolves a key, label or localized alias, case-insensitively.
func ParseField(s string) (Field, error) {
	s = strings.TrimSpace(s)
	for _, f := range Fields {
		info := fieldInfos[f]
		if strings.EqualFold(s, info.key) || strings.EqualFold(s, info.label) {
			return f, nil
		}
		for _, a := range info.aliases {
			if strings.EqualFold(s, a) {
				return f, nil
			}
		}
	}
	return 0, fmt.Errorf("unknown field %q", s)
}

// FieldMapping maps each canonical field to a source column name.
// The zero value has every field unmapped.
type FieldMapping struct {
	cols   [numFields]string
	mapped [numFields]bool
}

// MappingFromKeys builds a mapping from field name → column pairs. Empty
// column names leave the field unmapped. Two keys naming the same field (for
// example "date" and "Дата") are an error.
func MappingFromKeys(pairs map[string]string) (FieldMapping, error) {
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var m FieldMapping
	var seen [numFields]string
	for _, k := range keys {
		f, err := ParseField(k)
		if err != nil {
			return FieldMapping{}, err
		}
		if prev := seen[f]; prev != "" {
			return FieldMapping{}, fmt.Errorf("keys %q and %q both name field %s", prev, k, f)
		}
		seen[f] = k
		m.Set(f, pairs[k])
	}
	return m, nil
}

// Set maps f to column. A blank column clears the field.
func (m *FieldMapping) Set(f Field, column string) {
	column = strings.TrimSpace(column)
	if column == "" {
		m.Clear(f)
		return
	}
	m.cols[f] = column
	m.mapped[f] = true
}

// Clear marks f as unmapped.
func (m *FieldMapping) Clear(f Field) {
	m.cols[f] = ""
	m.mapped[f] = false
}

// Get returns the column mapped to f and whether f is mapped at all.
func (m FieldMapping) Get(f Field) (string, bool) {
	return m.cols[f], m.mapped[f]
}

// Mapped returns the number of mapped fields.
func (m FieldMapping) Mapped() int {
	n := 0
	for _, ok := range m.mapped {
		if ok {
			n++
		}
	}
	return n
}

// IsEmpty reports whether no field is mapped.
func (m FieldMapping) IsEmpty() bool { return m.Mapped() == 0 }

// Keys returns the mapping as field key → column, skipping unmapped fields.
func (m FieldMapping) Keys() map[string]string {
	out := make(map[string]string, m.Mapped())
	for _, f := range Fields {
		if col, ok := m.Get(f); ok {
			out[f.Key()] = col
		}
	}
	return out
}

// Duplicate describes several fields reading the same source column.
type Duplicate struct {
	Column string
	Fields []Field
}

// Duplicates returns columns mapped by more than one field, ordered by the
// first field that maps them.
func (m FieldMapping) Duplicates() []Duplicate {
	byCol := make(map[string][]Field)
	var order []string
	for _, f := range Fields {
		col, ok := m.Get(f)
		if !ok {
			continue
		}
		key := strings.ToLower(col)
		if _, seen := byCol[key]; !seen {
			order = append(order, key)
		}
		byCol[key] = append(byCol[key], f)
	}

	var dups []Duplicate
	for _, key := range order {
		fields := byCol[key]
		if len(fields) < 2 {
			continue
		}
		col, _ := m.Get(fields[0])
		dups = append(dups, Duplicate{Column: col, Fields: fields})
	}
	return dups
}

// Missing returns the mapped fields whose column is not among columns.
func (m FieldMapping) Missing(columns []string) []Field {
	have := make(map[string]bool, len(columns))
	for _, c := range columns {
		have[strings.ToLower(strings.TrimSpace(c))] = true
	}
	var missing []Field
	for _, f := range Fields {
		col, ok := m.Get(f)
		if ok && !have[strings.ToLower(col)] {
			missing = append(missing, f)
		}
	}
	return missing
}

// String renders the mapping as "key=column" pairs in schema order.
func (m FieldMapping) String() string {
	var parts []string
	for _, f := range Fields {
		if col, ok := m.Get(f); ok {
			parts = append(parts, f.Key()+"="+col)
		}
	}
	return strings.Join(parts, ", ")
}
