package dataprocessing

import (
	"fmt"

	apperrors "cryptocap/internal/errors"
	"cryptocap/pkg/contracts/domain"
)

// Tiers holds the lower bounds of the big and micro capitalization buckets.
// Everything below MicroMin is nano.
type Tiers struct {
	BigMin   float64
	MicroMin float64
}

// Validate requires MicroMin < BigMin so the buckets partition every capitalization
func (t Tiers) Validate() error {
	if t.MicroMin >= t.BigMin {
		return apperrors.NewAppValidationError(
			fmt.Sprintf("micro tier minimum %.0f must be below big tier minimum %.0f", t.MicroMin, t.BigMin))
	}
	return nil
}

// Tier returns the bucket label of a capitalization
func (t Tiers) Tier(capUSD float64) string {
	switch {
	case capUSD >= t.BigMin:
		return domain.TierBig
	case capUSD >= t.MicroMin:
		return domain.TierMicro
	default:
		return domain.TierNano
	}
}

// Classify counts the rows of a capitalization-filtered table in each bucket.
// Every row lands in exactly one bucket, so the counts sum to t.Len().
func Classify(t *domain.Table, tiers Tiers) domain.TierCounts {
	var counts domain.TierCounts
	if t == nil {
		return counts
	}
	for _, r := range t.Records {
		switch tiers.Tier(r.MarketCap()) {
		case domain.TierBig:
			counts.Big++
		case domain.TierMicro:
			counts.Micro++
		default:
			counts.Nano++
		}
	}
	return counts
}
