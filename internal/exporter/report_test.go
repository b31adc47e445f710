package exporter

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptocap/pkg/contracts/domain"
)

func TestReportExporter_Export(t *testing.T) {
	dir := t.TempDir()
	exp := NewReportExporter(dir, quietLogger())

	report := &domain.Report{
		RunID: "run-1",
		TopCaps: []domain.CapShare{
			{ID: "bitcoin", MarketCapUSD: 200, MarketCapPercentage: 66.666},
			{ID: "ethereum", MarketCapUSD: 100, MarketCapPercentage: 33.333},
		},
		Movers24h: []domain.Mover{{ID: "a", PercentChange24h: -5, PercentChange7d: 1}, {ID: "b", PercentChange24h: 0.125, PercentChange7d: -12.3456789}},
		Movers7d:  []domain.Mover{{ID: "a", PercentChange24h: -5, PercentChange7d: 1}},
		LargeCaps: []domain.Record{{ID: "bitcoin", Symbol: "BTC", MarketCapUSD: domain.Float(2e10)}},
		Tiers:     domain.TierCounts{Big: 1, Micro: 2, Nano: 3},
	}

	paths, err := exp.Export(context.Background(), report)
	require.NoError(t, err)
	require.Len(t, paths, 5)
	assert.Equal(t, filepath.Join(dir, FileTopMarketCap), paths[0])

	assert.Equal(t, [][]string{
		{"id", "market_cap_usd", "market_cap_perc"},
		{"bitcoin", "200", "66.67"},
		{"ethereum", "100", "33.33"},
	}, readCSV(t, paths[0]))

	assert.Equal(t, [][]string{
		{"id", "percent_change_24h", "percent_change_7d"},
		{"a", "-5", "1"},
		{"b", "0.125", "-12.3456789"},
	}, readCSV(t, paths[1]))

	// changes reload to the exact values
	for i, m := range report.Movers24h {
		row := readCSV(t, paths[1])[i+1]
		got24h, err := strconv.ParseFloat(row[1], 64)
		require.NoError(t, err)
		got7d, err := strconv.ParseFloat(row[2], 64)
		require.NoError(t, err)
		assert.Equal(t, m.PercentChange24h, got24h)
		assert.Equal(t, m.PercentChange7d, got7d)
	}

	assert.Equal(t, [][]string{
		{"id", "symbol", "market_cap_usd", "price_usd"},
		{"bitcoin", "BTC", "20000000000", ""},
	}, readCSV(t, paths[3]))

	assert.Equal(t, [][]string{
		{"tier", "count"},
		{"big", "1"},
		{"micro", "2"},
		{"nano", "3"},
	}, readCSV(t, paths[4]))
}

func TestReportExporter_EmptyViews(t *testing.T) {
	exp := NewReportExporter(t.TempDir(), quietLogger())

	paths, err := exp.Export(context.Background(), &domain.Report{})
	require.NoError(t, err)
	require.Len(t, paths, 5)

	assert.Equal(t, [][]string{{"id", "market_cap_usd", "market_cap_perc"}}, readCSV(t, paths[0]))
	assert.Len(t, readCSV(t, paths[4]), 4)
}

func TestReportExporter_Cancelled(t *testing.T) {
	exp := NewReportExporter(t.TempDir(), quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	paths, err := exp.Export(ctx, &domain.Report{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, paths)
}
