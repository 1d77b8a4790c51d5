package normalize

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stmtlens/stmtlens/internal/model"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1 234,56", "1234.56"},
		{"1\u00a0234,56", "1234.56"},
		{"1\u202f000", "1000"},
		{" 500 ", "500"},
		{"12.5", "12.5"},
		{"-99,90", "99.9"},
		{"", "0"},
		{"   ", "0"},
		{"abc", "0"},
		{"1,234.56", "0"},
		{"nan", "0"},
	}
	for _, tt := range tests {
		got := ParseMoney(tt.in)
		assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "ParseMoney(%q) = %s, want %s", tt.in, got, tt.want)
	}
}

func TestParseDate(t *testing.T) {
	n := New()
	tests := []struct {
		in   string
		want civil.Date
		ok   bool
	}{
		{"09.01.2025", civil.Date{Year: 2025, Month: 1, Day: 9}, true},
		{"2025-01-09", civil.Date{Year: 2025, Month: 1, Day: 9}, true},
		{" 09/01/2025 ", civil.Date{Year: 2025, Month: 1, Day: 9}, true},
		{"09.01.25", civil.Date{Year: 2025, Month: 1, Day: 9}, true},
		{"2025-01-09 00:00:00", civil.Date{Year: 2025, Month: 1, Day: 9}, true},
		{"09.01.2025 13:45", civil.Date{Year: 2025, Month: 1, Day: 9}, true},
		{"1.02.2024", civil.Date{Year: 2024, Month: 2, Day: 1}, true},
		{"9.1.25", civil.Date{Year: 2025, Month: 1, Day: 9}, true},
		{"45666", civil.Date{}, false},
		{"1", civil.Date{}, false},
		{"2024", civil.Date{}, false},
		{"", civil.Date{}, false},
		{"nan", civil.Date{}, false},
		{"Итого", civil.Date{}, false},
		{"7701000001", civil.Date{}, false},
	}
	for _, tt := range tests {
		got, ok := n.ParseDate(tt.in)
		assert.Equal(t, tt.ok, ok, "ParseDate(%q)", tt.in)
		assert.Equal(t, tt.want, got, "ParseDate(%q)", tt.in)
	}
}

func TestParseDate_SerialDates(t *testing.T) {
	n := New().WithSerialDates()
	tests := []struct {
		in   string
		want civil.Date
		ok   bool
	}{
		{"45666", civil.Date{Year: 2025, Month: 1, Day: 9}, true},
		{"45666.5", civil.Date{Year: 2025, Month: 1, Day: 9}, true},
		{"09.01.2025", civil.Date{Year: 2025, Month: 1, Day: 9}, true},
		{"1", civil.Date{}, false},
		{"12", civil.Date{}, false},
		{"60", civil.Date{}, false},
		{"3000000", civil.Date{}, false},
	}
	for _, tt := range tests {
		got, ok := n.ParseDate(tt.in)
		assert.Equal(t, tt.ok, ok, "ParseDate(%q)", tt.in)
		assert.Equal(t, tt.want, got, "ParseDate(%q)", tt.in)
	}

	// The receiver is left untouched.
	_, ok := New().ParseDate("45666")
	assert.False(t, ok)
}

func TestParseDate_ExtraLayoutsFirst(t *testing.T) {
	n := New("01/02/2006")
	got, ok := n.ParseDate("01/09/2025")
	require.True(t, ok)
	assert.Equal(t, civil.Date{Year: 2025, Month: 1, Day: 9}, got)
}

func testTable(t *testing.T, rows ...[]string) *model.RawTable {
	t.Helper()
	grid := append([][]string{{"When", "INN", "Who", "Why", "Out", "In"}}, rows...)
	tbl, err := model.NewRawTable(grid, 0)
	require.NoError(t, err)
	return tbl
}

func testMapping() model.FieldMapping {
	var m model.FieldMapping
	m.Set(model.FieldDate, "When")
	m.Set(model.FieldCounterpartyTaxID, "INN")
	m.Set(model.FieldCounterpartyName, "Who")
	m.Set(model.FieldPurpose, "Why")
	m.Set(model.FieldDebit, "Out")
	m.Set(model.FieldCredit, "In")
	return m
}

func TestRow(t *testing.T) {
	tbl := testTable(t, []string{"09.01.2025", " 7701 ", " Acme ", " Services ", "1 234,56", ""})
	rec, err := New().Row(tbl, 0, testMapping())
	require.NoError(t, err)

	assert.Equal(t, civil.Date{Year: 2025, Month: 1, Day: 9}, rec.Date)
	assert.Equal(t, "7701", rec.CounterpartyTaxID)
	assert.Equal(t, "Acme", rec.CounterpartyName)
	assert.Equal(t, "Services", rec.Purpose)
	assert.Equal(t, "1234.56", rec.Debit.StringFixed(2))
	assert.True(t, rec.Credit.IsZero())
	assert.True(t, rec.Valid())
}

func TestRow_UnmappedFieldsAreEmpty(t *testing.T) {
	tbl := testTable(t, []string{"09.01.2025", "7701", "Acme", "Services", "10", "20"})
	m := testMapping()
	m.Clear(model.FieldPurpose)
	m.Clear(model.FieldCredit)
	m.Set(model.FieldDebit, "No Such Column")

	rec, err := New().Row(tbl, 0, m)
	require.NoError(t, err)
	assert.Equal(t, "", rec.Purpose)
	assert.True(t, rec.Debit.IsZero(), "absent cell is zero")
	assert.True(t, rec.Credit.IsZero())
}

func TestRow_Rejections(t *testing.T) {
	rows := map[string][]string{
		"no date":        {"", "7701", "Acme", "", "1", ""},
		"bad date":       {"Итого", "7701", "Acme", "", "1", ""},
		"no name":        {"09.01.2025", "7701", "", "", "1", ""},
		"None name":      {"09.01.2025", "7701", "None", "", "1", ""},
		"nan tax id":     {"09.01.2025", "nan", "Acme", "", "1000000", "5"},
		"blank tax id":   {"09.01.2025", "   ", "Acme", "", "", ""},
		"missing values": {"09.01.2025"},
	}
	for name, row := range rows {
		t.Run(name, func(t *testing.T) {
			tbl := testTable(t, row)
			_, err := New().Row(tbl, 0, testMapping())
			assert.ErrorIs(t, err, ErrRowRejected)
		})
	}
}

func TestRow_OutOfRangeIsRejected(t *testing.T) {
	tbl := testTable(t)
	_, err := New().Row(tbl, 3, testMapping())
	assert.ErrorIs(t, err, ErrRowRejected)
}

func TestTable_KeepsOrderAndCountsRejected(t *testing.T) {
	tbl := testTable(t,
		[]string{"09.01.2025", "1", "A", "", "100", ""},
		[]string{"", "", "", "Total", "150", ""},
		[]string{"10.01.2025", "1", "A", "", "50", ""},
		[]string{"11.01.2025", "2", "B", "", "", "10"},
	)
	res := New().Table(tbl, testMapping())
	assert.Equal(t, 4, res.Rows)
	assert.Equal(t, 1, res.Rejected)
	require.Len(t, res.Records, 3)
	assert.Equal(t, "09", res.Records[0].Date.String()[8:])
	assert.Equal(t, "B", res.Records[2].CounterpartyName)
}
