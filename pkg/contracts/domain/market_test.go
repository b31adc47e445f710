package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *Table {
	return NewTable("sample.csv", []Record{
		{ID: "bitcoin", MarketCapUSD: Float(213e9), PercentChange24h: Float(7.33), PercentChange7d: Float(17.45)},
		{ID: "ethereum", MarketCapUSD: Float(43e9), PercentChange24h: Float(-3.93), PercentChange7d: nil},
		{ID: "ghost", MarketCapUSD: nil, PercentChange24h: nil, PercentChange7d: Float(1)},
		{ID: "", MarketCapUSD: Float(1)},
	})
}

func TestTable_Count(t *testing.T) {
	tbl := sampleTable()

	tests := []struct {
		column string
		want   int
	}{
		{ColumnID, 3},
		{ColumnMarketCapUSD, 3},
		{ColumnPercentChange24h, 2},
		{ColumnPercentChange7d, 2},
		{ColumnPriceUSD, 0},
		{"unknown", 0},
	}

	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			assert.Equal(t, tt.want, tbl.Count(tt.column))
		})
	}
}

func TestTable_WhereDoesNotMutateSource(t *testing.T) {
	tbl := sampleTable()
	before := len(tbl.Records)

	filtered := tbl.Where(func(r Record) bool { return r.HasMarketCap() })

	require.Equal(t, 3, filtered.Len())
	assert.Equal(t, before, tbl.Len())
	assert.Equal(t, "sample.csv", filtered.Source)

	filtered.Records[0].ID = "changed"
	assert.Equal(t, "bitcoin", tbl.Records[0].ID)
}

func TestTable_NilSafe(t *testing.T) {
	var tbl *Table
	assert.Equal(t, 0, tbl.Len())
	assert.Equal(t, 0, tbl.Count(ColumnID))
	assert.Equal(t, 0.0, tbl.TotalMarketCap())
	assert.Equal(t, 0, tbl.Where(func(Record) bool { return true }).Len())
}

func TestTable_TotalMarketCap(t *testing.T) {
	assert.InDelta(t, 256e9+1, sampleTable().TotalMarketCap(), 1e-3)
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in     string
		want   ChangeColumn
		wantOK bool
	}{
		{"24h", Change24h, true},
		{"percent_change_24h", Change24h, true},
		{"7d", Change7d, true},
		{"1w", Change7d, true},
		{"30d", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParsePeriod(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTierCounts_Series(t *testing.T) {
	c := TierCounts{Big: 3, Micro: 5, Nano: 7}

	s := c.Series()
	assert.Equal(t, TierLabels, s.Labels())
	assert.Equal(t, []float64{3, 5, 7}, s.Values())
	assert.Equal(t, 15, c.Total())
}

func TestMover_Change(t *testing.T) {
	m := Mover{ID: "x", PercentChange24h: -1.5, PercentChange7d: 12}
	assert.Equal(t, -1.5, m.Change(Change24h))
	assert.Equal(t, 12.0, m.Change(Change7d))
}
