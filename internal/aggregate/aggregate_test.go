package aggregate

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stmtlens/stmtlens/internal/model"
)

func day(y, m, d int) civil.Date {
	return civil.Date{Year: y, Month: time.Month(m), Day: d}
}

func rec(date civil.Date, tax, name, debit, credit string) model.Record {
	return model.Record{
		Date:              date,
		CounterpartyTaxID: tax,
		CounterpartyName:  name,
		Debit:             decimal.RequireFromString(debit),
		Credit:            decimal.RequireFromString(credit),
	}
}

func TestAggregate(t *testing.T) {
	records := []model.Record{
		rec(day(2025, 1, 1), "1", "A", "100", "0"),
		rec(day(2025, 1, 2), "1", "A", "50", "0"),
		rec(day(2025, 1, 3), "2", "B", "0", "10"),
	}
	rows := Aggregate(records)
	require.Len(t, rows, 2)

	assert.Equal(t, "1", rows[0].CounterpartyTaxID)
	assert.Equal(t, "A", rows[0].CounterpartyName)
	assert.Equal(t, 2, rows[0].OperationCount)
	assert.Equal(t, "150.00", rows[0].DebitSum.StringFixed(2))
	assert.True(t, rows[0].CreditSum.IsZero())

	assert.Equal(t, "2", rows[1].CounterpartyTaxID)
	assert.Equal(t, "B", rows[1].CounterpartyName)
	assert.Equal(t, 1, rows[1].OperationCount)
	assert.True(t, rows[1].DebitSum.IsZero())
	assert.Equal(t, "10.00", rows[1].CreditSum.StringFixed(2))
}

func TestAggregate_ModalName(t *testing.T) {
	d := day(2025, 1, 1)
	records := []model.Record{
		rec(d, "9", "Acme", "1", "0"),
		rec(d, "9", "ACME LLC", "1", "0"),
		rec(d, "9", "ACME LLC", "1", "0"),
		rec(d, "8", "Zeta", "0", "0"),
		rec(d, "8", "Alpha", "0", "0"),
	}
	rows := Aggregate(records)
	require.Len(t, rows, 2)
	assert.Equal(t, "9", rows[0].CounterpartyTaxID, "groups keep first-appearance order")
	assert.Equal(t, "ACME LLC", rows[0].CounterpartyName)
	assert.Equal(t, "Zeta", rows[1].CounterpartyName, "ties go to the first name seen")
}

func TestAggregate_Empty(t *testing.T) {
	assert.Empty(t, Aggregate(nil))
}

func TestFilter_Conjunction(t *testing.T) {
	records := []model.Record{
		rec(day(2025, 1, 5), "7701000001", "ООО Ромашка", "1", "0"),
		rec(day(2025, 2, 5), "7701000001", "ООО Ромашка", "2", "0"),
		rec(day(2025, 1, 10), "7702000002", "ООО Ромашка", "3", "0"),
		rec(day(2025, 1, 15), "7701000001", "ИП Иванов", "4", "0"),
		rec(day(2025, 1, 31), "7701000001", "ооо ромашка плюс", "5", "0"),
	}
	f := Filter{
		From:  day(2025, 1, 1),
		To:    day(2025, 1, 31),
		TaxID: "7701",
		Name:  "РОМАШКА",
	}
	got := f.Apply(records)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].Debit.String())
	assert.Equal(t, "5", got[1].Debit.String(), "date bounds are inclusive")

	for _, r := range got {
		assert.True(t, f.Match(r))
	}
}

func TestFilter_Individual(t *testing.T) {
	jan := rec(day(2025, 1, 5), "123", "Acme", "0", "0")
	noDate := rec(civil.Date{}, "123", "Acme", "0", "0")

	assert.True(t, Filter{}.Match(jan))
	assert.True(t, Filter{}.Match(noDate))
	assert.True(t, Filter{}.IsZero())

	assert.True(t, Filter{From: day(2025, 1, 5)}.Match(jan))
	assert.False(t, Filter{From: day(2025, 1, 6)}.Match(jan))
	assert.True(t, Filter{To: day(2025, 1, 5)}.Match(jan))
	assert.False(t, Filter{To: day(2025, 1, 4)}.Match(jan))
	assert.False(t, Filter{From: day(2025, 1, 1)}.Match(noDate))

	assert.True(t, Filter{TaxID: "23"}.Match(jan))
	assert.False(t, Filter{TaxID: "99"}.Match(jan))
	assert.True(t, Filter{Name: "cm"}.Match(jan))
	assert.False(t, Filter{Name: "globex"}.Match(jan))
}

func TestSummarize(t *testing.T) {
	records := []model.Record{
		rec(day(2025, 1, 1), "1", "A", "100.10", "0"),
		rec(day(2025, 1, 2), "2", "B", "0.20", "5"),
	}
	tot := Summarize(records)
	assert.Equal(t, 2, tot.Count)
	assert.Equal(t, "100.30", tot.Debit.StringFixed(2))
	assert.Equal(t, "5.00", tot.Credit.StringFixed(2))

	empty := Summarize(nil)
	assert.Equal(t, 0, empty.Count)
	assert.True(t, empty.Debit.IsZero())
}

func TestForCounterparty(t *testing.T) {
	records := []model.Record{
		rec(day(2025, 1, 1), "1", "A", "1", "0"),
		rec(day(2025, 1, 2), "12", "B", "2", "0"),
		rec(day(2025, 1, 3), "1", "A", "3", "0"),
	}
	got := ForCounterparty(records, "1")
	require.Len(t, got, 2)
	assert.Equal(t, "3", got[1].Debit.String())
}
