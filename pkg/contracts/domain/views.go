package domain

import "time"

// ChangeColumn selects one of the two percent change windows
type ChangeColumn string

const (
	Change24h ChangeColumn = ColumnPercentChange24h
	Change7d  ChangeColumn = ColumnPercentChange7d
)

// ParsePeriod maps a short period name ("24h", "7d") or a column name to a ChangeColumn
func ParsePeriod(period string) (ChangeColumn, bool) {
	switch period {
	case "24h", "1d", ColumnPercentChange24h:
		return Change24h, true
	case "7d", "1w", ColumnPercentChange7d:
		return Change7d, true
	}
	return "", false
}

// CapShare is one row of the top capitalization view
type CapShare struct {
	ID                  string  `json:"id"`
	MarketCapUSD        float64 `json:"market_cap_usd"`
	MarketCapPercentage float64 `json:"market_cap_percentage"`
}

// Mover is one row of the volatility view. Both changes are always present.
type Mover struct {
	ID               string  `json:"id"`
	PercentChange24h float64 `json:"percent_change_24h"`
	PercentChange7d  float64 `json:"percent_change_7d"`
}

// Change returns the value of the requested column
func (m Mover) Change(column ChangeColumn) float64 {
	if column == Change7d {
		return m.PercentChange7d
	}
	return m.PercentChange24h
}

// Point is one labeled bar
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Series is an ordered list of labeled values keyed by asset identifier
type Series []Point

// Labels returns the point labels in order
func (s Series) Labels() []string {
	labels := make([]string, len(s))
	for i, p := range s {
		labels[i] = p.Label
	}
	return labels
}

// Values returns the point values in order
func (s Series) Values() []float64 {
	values := make([]float64, len(s))
	for i, p := range s {
		values[i] = p.Value
	}
	return values
}

// Tier labels, in bar order
const (
	TierBig   = "big"
	TierMicro = "micro"
	TierNano  = "nano"
)

// TierLabels is the fixed label order of the classification chart
var TierLabels = []string{TierBig, TierMicro, TierNano}

// TierCounts holds the membership count of each capitalization tier
type TierCounts struct {
	Big   int `json:"big"`
	Micro int `json:"micro"`
	Nano  int `json:"nano"`
}

// Total returns the sum of all buckets
func (c TierCounts) Total() int {
	return c.Big + c.Micro + c.Nano
}

// Series returns the counts as bars labeled big, micro, nano
func (c TierCounts) Series() Series {
	return Series{
		{Label: TierBig, Value: float64(c.Big)},
		{Label: TierMicro, Value: float64(c.Micro)},
		{Label: TierNano, Value: float64(c.Nano)},
	}
}

// MoverExtremes holds the losers and gainers of one change window
type MoverExtremes struct {
	Column  ChangeColumn `json:"column"`
	Losers  Series       `json:"losers"`
	Gainers Series       `json:"gainers"`
}

// Report bundles every derived view of one pipeline run
type Report struct {
	RunID          string        `json:"run_id"`
	Source         string        `json:"source"`
	GeneratedAt    time.Time     `json:"generated_at"`
	TotalRows      int           `json:"total_rows"`
	FilteredRows   int           `json:"filtered_rows"`
	TotalMarketCap float64       `json:"total_market_cap_usd"`
	TopCaps        []CapShare    `json:"top_caps"`
	Movers24h      []Mover       `json:"movers_24h"`
	Movers7d       []Mover       `json:"movers_7d"`
	Extremes24h    MoverExtremes `json:"extremes_24h"`
	Extremes7d     MoverExtremes `json:"extremes_7d"`
	LargeCaps      []Record      `json:"large_caps"`
	Tiers          TierCounts    `json:"tiers"`
}

// DroppedRows returns how many rows the capitalization filter removed
func (r *Report) DroppedRows() int {
	return r.TotalRows - r.FilteredRows
}
