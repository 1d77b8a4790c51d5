package header

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyword_FindsFirstQualifyingRow(t *testing.T) {
	grid := [][]string{
		{"Bank statement", "", ""},
		{"Account 40702810", "Date: 2025-01-31", ""},
		{"Дата операции", "ИНН/КИО", "Назначение платежа"},
		{"Date", "Counterparty", "Purpose"},
	}
	i, err := Keyword{}.Find(grid)
	require.NoError(t, err)
	assert.Equal(t, 2, i)
}

func TestKeyword_SingleHitIsNotEnough(t *testing.T) {
	grid := [][]string{
		{"Report date", "31.01.2025"},
		{"Amount", "Balance"},
	}
	_, err := Keyword{}.Find(grid)
	assert.ErrorIs(t, err, ErrHeaderNotFound)
}

func TestKeyword_CellCountsOnce(t *testing.T) {
	// One cell containing two keywords is still one hit.
	grid := [][]string{{"date and purpose", "x"}}
	_, err := Keyword{}.Find(grid)
	assert.ErrorIs(t, err, ErrHeaderNotFound)
}

func TestKeyword_DeepRowWithoutDepthLimit(t *testing.T) {
	grid := make([][]string, 25)
	for i := range grid {
		grid[i] = []string{"filler", "row"}
	}
	grid[20] = []string{"DATE", "TAX-ID", "Sum"}

	i, err := Keyword{}.Find(grid)
	require.NoError(t, err)
	assert.Equal(t, 20, i)

	_, err = Keyword{Depth: 10}.Find(grid)
	assert.ErrorIs(t, err, ErrHeaderNotFound)
}

func TestKeyword_CustomKeywords(t *testing.T) {
	grid := [][]string{
		{"Fecha", "Descripción"},
	}
	i, err := Keyword{Keywords: []string{"FECHA", "descrip"}}.Find(grid)
	require.NoError(t, err)
	assert.Equal(t, 0, i)

	_, err = Keyword{Keywords: []string{"fecha"}, MinMatches: 2}.Find(grid)
	assert.ErrorIs(t, err, ErrHeaderNotFound)
}

func TestDensity_PicksWidestRow(t *testing.T) {
	grid := [][]string{
		{"Title"},
		{"a", "b", " "},
		{"a", "b", "c"},
		{"x", "y", "z"},
	}
	i, err := Density{}.Find(grid)
	require.NoError(t, err)
	assert.Equal(t, 2, i, "ties go to the lowest index")
}

func TestDensity_IgnoresRowsBeyondDepth(t *testing.T) {
	grid := make([][]string, 12)
	for i := range grid {
		grid[i] = []string{"a"}
	}
	grid[11] = []string{"a", "b", "c", "d"}

	i, err := Density{}.Find(grid)
	require.NoError(t, err)
	assert.Equal(t, 0, i)

	i, err = Density{Depth: 12}.Find(grid)
	require.NoError(t, err)
	assert.Equal(t, 11, i)
}

func TestDensity_NeverFails(t *testing.T) {
	grids := [][][]string{
		nil,
		{},
		{{}},
		{{"", " "}, {""}},
		{{"only"}},
	}
	for _, g := range grids {
		i, err := Density{}.Find(g)
		require.NoError(t, err)
		limit := min(DefaultDepth, len(g))
		if limit == 0 {
			assert.Equal(t, 0, i)
			continue
		}
		assert.GreaterOrEqual(t, i, 0)
		assert.Less(t, i, limit)
	}
}

func TestDefault_FallsBackToDensity(t *testing.T) {
	grid := [][]string{
		{"Выписка"},
		{"Col A", "Col B", "Col C"},
		{"1", "2"},
	}
	i, err := Default().Find(grid)
	require.NoError(t, err)
	assert.Equal(t, 1, i)
}

func TestDefault_PrefersKeywordRow(t *testing.T) {
	grid := [][]string{
		{"a", "b", "c", "d", "e"},
		{"Дата", "Контрагент"},
	}
	i, err := Default().Find(grid)
	require.NoError(t, err)
	assert.Equal(t, 1, i)
}

func TestNew(t *testing.T) {
	d, err := New(Options{})
	require.NoError(t, err)
	assert.IsType(t, Chain{}, d)

	d, err = New(Options{Strategy: "Density", Depth: 5})
	require.NoError(t, err)
	assert.Equal(t, Density{Depth: 5}, d)

	d, err = New(Options{Strategy: "keyword", Depth: 3, MinMatches: 1, Keywords: []string{"x"}})
	require.NoError(t, err)
	assert.Equal(t, Keyword{Keywords: []string{"x"}, MinMatches: 1, Depth: 3}, d)

	_, err = New(Options{Strategy: "magic"})
	assert.Error(t, err)
}

func TestNew_DepthBoundsKeywordScan(t *testing.T) {
	grid := [][]string{
		{"Statement"},
		{"a", "b", "c"},
		{""},
		{""},
		{"Date", "Purpose", "Counterparty"},
	}

	d, err := New(Options{Depth: 2})
	require.NoError(t, err)
	i, err := d.Find(grid)
	require.NoError(t, err)
	assert.Equal(t, 1, i, "keyword row lies beyond depth, density picks the widest leading row")

	d, err = New(Options{Strategy: StrategyKeyword, Depth: 2})
	require.NoError(t, err)
	_, err = d.Find(grid)
	assert.ErrorIs(t, err, ErrHeaderNotFound)

	d, err = New(Options{Depth: 10})
	require.NoError(t, err)
	i, err = d.Find(grid)
	require.NoError(t, err)
	assert.Equal(t, 4, i)
}
