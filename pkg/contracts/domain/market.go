package domain

// Column names of the snapshot file. The first four are required by the loader.
const (
	ColumnID               = "id"
	ColumnMarketCapUSD     = "market_cap_usd"
	ColumnPercentChange24h = "percent_change_24h"
	ColumnPercentChange7d  = "percent_change_7d"

	ColumnName     = "name"
	ColumnSymbol   = "symbol"
	ColumnRank     = "rank"
	ColumnPriceUSD = "price_usd"
)

// RequiredColumns lists the header names every snapshot must carry
var RequiredColumns = []string{
	ColumnID,
	ColumnMarketCapUSD,
	ColumnPercentChange24h,
	ColumnPercentChange7d,
}

// Record is one cryptocurrency row of a market snapshot.
// Nil numeric fields mean the source cell was empty or an NA marker.
type Record struct {
	ID               string   `json:"id"`
	Name             string   `json:"name,omitempty"`
	Symbol           string   `json:"symbol,omitempty"`
	Rank             int      `json:"rank,omitempty"`
	PriceUSD         *float64 `json:"price_usd,omitempty"`
	MarketCapUSD     *float64 `json:"market_cap_usd"`
	PercentChange24h *float64 `json:"percent_change_24h"`
	PercentChange7d  *float64 `json:"percent_change_7d"`
}

// HasMarketCap reports whether the record carries a capitalization value
func (r Record) HasMarketCap() bool {
	return r.MarketCapUSD != nil
}

// MarketCap returns the capitalization, or 0 when it is missing
func (r Record) MarketCap() float64 {
	if r.MarketCapUSD == nil {
		return 0
	}
	return *r.MarketCapUSD
}

// Table is an ordered collection of records in input file order.
type Table struct {
	Source  string   `json:"source,omitempty"`
	Records []Record `json:"records"`
}

// NewTable creates a table over the given records
func NewTable(source string, records []Record) *Table {
	if records == nil {
		records = []Record{}
	}
	return &Table{Source: source, Records: records}
}

// Len returns the number of rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// Count returns the number of non-null values in a column, like a dataframe count.
// Unknown columns count as zero.
func (t *Table) Count(column string) int {
	if t == nil {
		return 0
	}
	n := 0
	for _, r := range t.Records {
		switch column {
		case ColumnID:
			if r.ID != "" {
				n++
			}
		case ColumnMarketCapUSD:
			if r.MarketCapUSD != nil {
				n++
			}
		case ColumnPercentChange24h:
			if r.PercentChange24h != nil {
				n++
			}
		case ColumnPercentChange7d:
			if r.PercentChange7d != nil {
				n++
			}
		case ColumnPriceUSD:
			if r.PriceUSD != nil {
				n++
			}
		}
	}
	return n
}

// Where returns a new table holding the rows for which keep returns true.
// The source table is never modified.
func (t *Table) Where(keep func(Record) bool) *Table {
	if t == nil {
		return NewTable("", nil)
	}
	out := make([]Record, 0, len(t.Records))
	for _, r := range t.Records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return NewTable(t.Source, out)
}

// TotalMarketCap sums the capitalization of every row that has one
func (t *Table) TotalMarketCap() float64 {
	if t == nil {
		return 0
	}
	var total float64
	for _, r := range t.Records {
		total += r.MarketCap()
	}
	return total
}

// Float returns a pointer to v, for building nullable fields
func Float(v float64) *float64 {
	return &v
}
