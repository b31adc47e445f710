package dataprocessing

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	apperrors "cryptocap/internal/errors"
	"cryptocap/pkg/contracts/domain"
)

// FilterNonNullCap keeps the rows that carry a market capitalization, in input order
func FilterNonNullCap(t *domain.Table) *domain.Table {
	return t.Where(domain.Record.HasMarketCap)
}

// OrderPolicy controls how TopByCap treats the input row order
type OrderPolicy string

const (
	// OrderTrust takes the first rows as they come and logs a warning when they are not descending
	OrderTrust OrderPolicy = "trust"
	// OrderVerify fails with ErrUnsortedInput when rows are not descending
	OrderVerify OrderPolicy = "verify"
	// OrderSort re-sorts a copy by capitalization, descending, before slicing
	OrderSort OrderPolicy = "sort"
)

// ErrUnsortedInput is returned under OrderVerify for input that is not ranked by capitalization
var ErrUnsortedInput = apperrors.NewAppValidationError("rows are not sorted by market capitalization, descending")

// ParseOrderPolicy converts a configuration value to an OrderPolicy
func ParseOrderPolicy(s string) (OrderPolicy, error) {
	switch p := OrderPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case OrderTrust, OrderVerify, OrderSort:
		return p, nil
	case "":
		return OrderTrust, nil
	}
	return "", apperrors.NewAppValidationError(fmt.Sprintf("unknown ranking order %q", s))
}

// IsSortedByCapDesc reports whether capitalization never increases from one row to the next
func IsSortedByCapDesc(t *domain.Table) bool {
	if t == nil {
		return true
	}
	for i := 1; i < len(t.Records); i++ {
		if t.Records[i].MarketCap() > t.Records[i-1].MarketCap() {
			return false
		}
	}
	return true
}

// TopByCap returns the first n rows of a capitalization-filtered table with
// each row's share of the total capitalization of the whole table.
func TopByCap(t *domain.Table, n int, policy OrderPolicy) ([]domain.CapShare, error) {
	if n <= 0 || t.Len() == 0 {
		return []domain.CapShare{}, nil
	}

	records := t.Records
	switch policy {
	case OrderSort:
		records = slices.Clone(records)
		slices.SortStableFunc(records, func(a, b domain.Record) int {
			return cmp.Compare(b.MarketCap(), a.MarketCap())
		})
	case OrderVerify:
		if !IsSortedByCapDesc(t) {
			return nil, fmt.Errorf("%s: %w", t.Source, ErrUnsortedInput)
		}
	default:
		if !IsSortedByCapDesc(t) {
			slog.Warn("snapshot rows are not ranked by market capitalization; top view follows file order",
				slog.String("source", t.Source))
		}
	}

	total := t.TotalMarketCap()
	n = min(n, len(records))

	shares := make([]domain.CapShare, 0, n)
	for _, r := range records[:n] {
		share := domain.CapShare{ID: r.ID, MarketCapUSD: r.MarketCap()}
		if total != 0 {
			share.MarketCapPercentage = r.MarketCap() / total * 100
		}
		shares = append(shares, share)
	}
	return shares, nil
}

// SelectLargeCaps keeps the rows whose capitalization is at least threshold, in input order
func SelectLargeCaps(t *domain.Table, threshold float64) *domain.Table {
	return t.Where(func(r domain.Record) bool {
		return r.HasMarketCap() && r.MarketCap() >= threshold
	})
}
