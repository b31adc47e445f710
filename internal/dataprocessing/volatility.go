package dataprocessing

import (
	"cmp"
	"slices"

	"cryptocap/pkg/contracts/domain"
)

// ExtractMovers projects every row to its id and both percent changes,
// dropping rows where either change is missing. Input order is kept.
func ExtractMovers(t *domain.Table) []domain.Mover {
	movers := make([]domain.Mover, 0, t.Len())
	if t == nil {
		return movers
	}
	for _, r := range t.Records {
		if r.PercentChange24h == nil || r.PercentChange7d == nil {
			continue
		}
		movers = append(movers, domain.Mover{
			ID:               r.ID,
			PercentChange24h: *r.PercentChange24h,
			PercentChange7d:  *r.PercentChange7d,
		})
	}
	return movers
}

// SortMovers returns a copy of movers ordered ascending by column. Ties keep their input order.
func SortMovers(movers []domain.Mover, column domain.ChangeColumn) []domain.Mover {
	sorted := slices.Clone(movers)
	if sorted == nil {
		sorted = []domain.Mover{}
	}
	slices.SortStableFunc(sorted, func(a, b domain.Mover) int {
		return cmp.Compare(a.Change(column), b.Change(column))
	})
	return sorted
}

// MoverSeries turns movers into a series of column values labeled by id
func MoverSeries(movers []domain.Mover, column domain.ChangeColumn) domain.Series {
	series := make(domain.Series, len(movers))
	for i, m := range movers {
		series[i] = domain.Point{Label: m.ID, Value: m.Change(column)}
	}
	return series
}

// TopBottom returns the first n and the last n points of an ordered series.
// On an ascending series these are the biggest losers and the biggest gainers.
func TopBottom(series domain.Series, n int) (losers, gainers domain.Series) {
	if n <= 0 {
		return domain.Series{}, domain.Series{}
	}
	n = min(n, len(series))
	losers = slices.Clone(series[:n])
	gainers = slices.Clone(series[len(series)-n:])
	if losers == nil {
		losers = domain.Series{}
	}
	if gainers == nil {
		gainers = domain.Series{}
	}
	return losers, gainers
}

// Extremes sorts movers by column and picks its losers and gainers
func Extremes(movers []domain.Mover, column domain.ChangeColumn, n int) ([]domain.Mover, domain.MoverExtremes) {
	sorted := SortMovers(movers, column)
	losers, gainers := TopBottom(MoverSeries(sorted, column), n)
	return sorted, domain.MoverExtremes{Column: column, Losers: losers, Gainers: gainers}
}
