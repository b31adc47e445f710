package charts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptocap/internal/config"
	"cryptocap/pkg/contracts/domain"
)

func sampleReport() *domain.Report {
	return &domain.Report{
		TopCaps: []domain.CapShare{
			{ID: "bitcoin", MarketCapUSD: 2e11, MarketCapPercentage: 60},
			{ID: "ethereum", MarketCapUSD: 4e10, MarketCapPercentage: 12},
		},
		Extremes24h: domain.MoverExtremes{
			Column:  domain.Change24h,
			Losers:  domain.Series{{Label: "a", Value: -40}},
			Gainers: domain.Series{{Label: "z", Value: 90}},
		},
		Extremes7d: domain.MoverExtremes{
			Column:  domain.Change7d,
			Losers:  domain.Series{},
			Gainers: domain.Series{},
		},
		LargeCaps: []domain.Record{
			{ID: "bitcoin", MarketCapUSD: domain.Float(2e11)},
			{ID: "ethereum", MarketCapUSD: domain.Float(4e10)},
		},
		Tiers: domain.TierCounts{Big: 2, Micro: 5, Nano: 9},
	}
}

func TestBuildCharts(t *testing.T) {
	catalog := BuildCharts(sampleReport(), ChartOptions{
		TopN:              10,
		TopCapColors:      config.DefaultTopCapColors,
		LargeCapThreshold: 1e10,
	})

	require.Len(t, catalog, 6)
	ids := make([]string, len(catalog))
	for i, c := range catalog {
		ids[i] = c.ID
		assert.NoError(t, c.Validate(), c.ID)
	}
	assert.Equal(t, []string{ChartTopCapShare, ChartTopCapUSD, ChartMovers24h, ChartMovers7d, ChartCapTiers, ChartLargeCaps}, ids)

	share := catalog[0]
	assert.Equal(t, "Top 10 market capitalization", share.Title)
	assert.Equal(t, LabelShareOfTotal, share.Panels[0].YLabel)
	assert.Equal(t, 60.0, share.Panels[0].Series[0].Value)

	usd := catalog[1]
	assert.True(t, usd.Panels[0].LogScale)
	assert.Equal(t, LabelUSD, usd.Panels[0].YLabel)
	assert.Empty(t, usd.Panels[0].XLabel)
	assert.Equal(t, []string{"orange", "green"}, usd.Panels[0].BarColors())

	movers := catalog[2]
	assert.Equal(t, KindBarPair, movers.Kind)
	assert.Equal(t, TitleMovers24h, movers.Title)
	assert.Equal(t, []string{ColorLosers}, movers.Panels[0].Colors)
	assert.Equal(t, []string{ColorGainers}, movers.Panels[1].Colors)
	assert.Equal(t, LabelPercentChange, movers.Panels[1].YLabel)

	assert.Equal(t, TitleMovers7d, catalog[3].Title)
	assert.True(t, catalog[3].Empty())

	tiers := catalog[4]
	assert.Equal(t, TitleCapTiers, tiers.Title)
	assert.Equal(t, domain.TierLabels, tiers.Panels[0].Series.Labels())
	assert.Equal(t, []float64{2, 5, 9}, tiers.Panels[0].Series.Values())

	assert.Equal(t, "Large caps (>= 10B USD)", catalog[5].Title)
	assert.Len(t, catalog[5].Panels[0].Series, 2)
}

func TestFindChart(t *testing.T) {
	catalog := BuildCharts(sampleReport(), ChartOptions{TopN: 10})

	c, ok := FindChart(catalog, ChartCapTiers)
	require.True(t, ok)
	assert.Equal(t, ChartCapTiers, c.ID)

	_, ok = FindChart(catalog, "nope")
	assert.False(t, ok)
}

func TestChartValidate(t *testing.T) {
	bar := Panel{Series: domain.Series{{Label: "a", Value: 1}}}

	tests := []struct {
		name    string
		chart   Chart
		wantErr bool
	}{
		{name: "bar", chart: Chart{ID: "x", Kind: KindBar, Panels: []Panel{bar}}},
		{name: "pair", chart: Chart{ID: "x", Kind: KindBarPair, Panels: []Panel{bar, bar}}},
		{name: "missing id", chart: Chart{Kind: KindBar, Panels: []Panel{bar}}, wantErr: true},
		{name: "pair with one panel", chart: Chart{ID: "x", Kind: KindBarPair, Panels: []Panel{bar}}, wantErr: true},
		{name: "unknown kind", chart: Chart{ID: "x", Kind: "pie", Panels: []Panel{bar}}, wantErr: true},
		{
			name:    "unknown color",
			chart:   Chart{ID: "x", Kind: KindBar, Panels: []Panel{{Series: bar.Series, Colors: []string{"ultraviolet"}}}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.chart.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPanelBarColors_Cycle(t *testing.T) {
	p := Panel{
		Series: make(domain.Series, 5),
		Colors: []string{"red", "blue"},
	}
	assert.Equal(t, []string{"red", "blue", "red", "blue", "red"}, p.BarColors())
	assert.Nil(t, Panel{Series: make(domain.Series, 2)}.BarColors())
}

func TestResolveColor(t *testing.T) {
	tests := map[string]string{
		"orange":   "FFA500",
		" Silver ": "C0C0C0",
		"darkred":  "8B0000",
		"#1a2b3c":  "1A2B3C",
		"abcdef":   "ABCDEF",
	}
	for in, want := range tests {
		got, ok := ResolveColor(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "#12345", "zzzzzz", "magenta-ish"} {
		_, ok := ResolveColor(bad)
		assert.False(t, ok, bad)
	}
}

func TestStyleFromConfig(t *testing.T) {
	s := StyleFromConfig(config.ChartsConfig{Style: "FiveThirtyEight", Width: 800, Height: 500, ShowLegend: true})
	assert.Equal(t, "fivethirtyeight", s.Name)
	assert.Equal(t, uint(800), s.Width)
	assert.True(t, s.ShowLegend)
	assert.True(t, s.Gridlines)

	fallback := StyleFromConfig(config.ChartsConfig{Style: "unknown"})
	assert.Equal(t, "fivethirtyeight", fallback.Name)
	assert.Equal(t, DefaultStyle().Width, fallback.Width)

	// palettes are not shared between styles
	s.Palette[0] = "000000"
	assert.NotEqual(t, "000000", DefaultStyle().Palette[0])
}

func TestHumanizeUSD(t *testing.T) {
	assert.Equal(t, "10B", HumanizeUSD(1e10))
	assert.Equal(t, "300M", HumanizeUSD(3e8))
	assert.Equal(t, "1.5T", HumanizeUSD(1.5e12))
	assert.Equal(t, "999", HumanizeUSD(999))
}

func TestSanitizeSheetName(t *testing.T) {
	assert.Equal(t, "a_b_c", SanitizeSheetName("a/b:c"))
	assert.Equal(t, "chart", SanitizeSheetName("  "))
	assert.Len(t, []rune(SanitizeSheetName(strings.Repeat("x", 40))), 31)
}
