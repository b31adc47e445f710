package charts

import (
	"fmt"
	"strconv"

	"cryptocap/pkg/contracts/domain"
)

// Chart identifiers, in catalog order
const (
	ChartTopCapShare = "top-cap-share"
	ChartTopCapUSD   = "top-cap-usd"
	ChartMovers24h   = "movers-24h"
	ChartMovers7d    = "movers-7d"
	ChartCapTiers    = "cap-tiers"
	ChartLargeCaps   = "large-caps"
)

// Fixed titles and labels
const (
	TitleTopCapFormat  = "Top %d market capitalization"
	TitleMovers24h     = "24 hours top losers and winners"
	TitleMovers7d      = "Weekly top losers and winners"
	TitleCapTiers      = "Classification by market cap"
	TitleLargeCapsFmt  = "Large caps (>= %s USD)"
	LabelShareOfTotal  = "% of total cap"
	LabelUSD           = "USD"
	LabelPercentChange = "% change"
	LabelCount         = "Number of coins"

	ColorLosers  = "darkred"
	ColorGainers = "darkblue"
)

// ChartOptions carries the run settings the titles and colors depend on
type ChartOptions struct {
	TopN              int
	TopCapColors      []string
	LargeCapThreshold float64
}

// BuildCharts turns a report into the ordered chart catalog
func BuildCharts(report *domain.Report, opts ChartOptions) []Chart {
	topTitle := fmt.Sprintf(TitleTopCapFormat, opts.TopN)

	shares := make(domain.Series, len(report.TopCaps))
	caps := make(domain.Series, len(report.TopCaps))
	for i, s := range report.TopCaps {
		shares[i] = domain.Point{Label: s.ID, Value: s.MarketCapPercentage}
		caps[i] = domain.Point{Label: s.ID, Value: s.MarketCapUSD}
	}

	large := make(domain.Series, len(report.LargeCaps))
	for i, r := range report.LargeCaps {
		large[i] = domain.Point{Label: r.ID, Value: r.MarketCap()}
	}

	return []Chart{
		{
			ID:    ChartTopCapShare,
			Kind:  KindBar,
			Title: topTitle,
			Panels: []Panel{{
				Series: shares,
				XLabel: "id",
				YLabel: LabelShareOfTotal,
			}},
		},
		{
			ID:    ChartTopCapUSD,
			Kind:  KindBar,
			Title: topTitle,
			Panels: []Panel{{
				Series:   caps,
				Colors:   append([]string(nil), opts.TopCapColors...),
				YLabel:   LabelUSD,
				LogScale: true,
			}},
		},
		moversChart(ChartMovers24h, TitleMovers24h, report.Extremes24h),
		moversChart(ChartMovers7d, TitleMovers7d, report.Extremes7d),
		{
			ID:    ChartCapTiers,
			Kind:  KindBar,
			Title: TitleCapTiers,
			Panels: []Panel{{
				Series: report.Tiers.Series(),
				YLabel: LabelCount,
			}},
		},
		{
			ID:    ChartLargeCaps,
			Kind:  KindBar,
			Title: fmt.Sprintf(TitleLargeCapsFmt, HumanizeUSD(opts.LargeCapThreshold)),
			Panels: []Panel{{
				Series:   large,
				YLabel:   LabelUSD,
				LogScale: true,
			}},
		},
	}
}

func moversChart(id, title string, ext domain.MoverExtremes) Chart {
	return Chart{
		ID:    id,
		Kind:  KindBarPair,
		Title: title,
		Panels: []Panel{
			{Series: ext.Losers, Colors: []string{ColorLosers}, XLabel: "id", YLabel: LabelPercentChange},
			{Series: ext.Gainers, Colors: []string{ColorGainers}, XLabel: "id", YLabel: LabelPercentChange},
		},
	}
}

// FindChart returns the chart with the given id
func FindChart(catalog []Chart, id string) (Chart, bool) {
	for _, c := range catalog {
		if c.ID == id {
			return c, true
		}
	}
	return Chart{}, false
}

// HumanizeUSD shortens round amounts: 1e10 → "10B", 3e8 → "300M"
func HumanizeUSD(v float64) string {
	units := []struct {
		div    float64
		suffix string
	}{{1e12, "T"}, {1e9, "B"}, {1e6, "M"}, {1e3, "K"}}

	for _, u := range units {
		if v >= u.div {
			return strconv.FormatFloat(v/u.div, 'f', -1, 64) + u.suffix
		}
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
