package dataprocessing

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptocap/pkg/contracts/domain"
)

var defaultTiers = Tiers{BigMin: 300_000_000, MicroMin: 50_000_000}

func TestClassify_Boundaries(t *testing.T) {
	table := capTable(
		300_000_000, // big, inclusive
		299_999_999, // micro
		50_000_000,  // micro, inclusive
		49_999_999,  // nano
		0,           // nano
		2e11,        // big
	)

	counts := Classify(table, defaultTiers)

	assert.Equal(t, domain.TierCounts{Big: 2, Micro: 2, Nano: 2}, counts)
	assert.Equal(t, table.Len(), counts.Total())
}

func TestClassify_CountsSumToRows(t *testing.T) {
	rng := rand.New(rand.NewSource(99))

	for trial := 0; trial < 50; trial++ {
		caps := make([]float64, rng.Intn(200))
		for i := range caps {
			caps[i] = rng.ExpFloat64() * 1e8
		}
		micro := rng.Float64() * 1e8
		tiers := Tiers{MicroMin: micro, BigMin: micro + 1 + rng.Float64()*1e9}
		require.NoError(t, tiers.Validate())

		table := capTable(caps...)
		counts := Classify(table, tiers)

		assert.Equal(t, table.Len(), counts.Total(), "trial %d", trial)
	}
}

func TestClassify_Empty(t *testing.T) {
	assert.Equal(t, domain.TierCounts{}, Classify(capTable(), defaultTiers))
	assert.Equal(t, domain.TierCounts{}, Classify(nil, defaultTiers))
}

func TestTiers_Validate(t *testing.T) {
	assert.NoError(t, defaultTiers.Validate())
	assert.Error(t, Tiers{BigMin: 10, MicroMin: 10}.Validate())
	assert.Error(t, Tiers{BigMin: 5, MicroMin: 10}.Validate())
}

func TestTiers_Tier(t *testing.T) {
	assert.Equal(t, domain.TierBig, defaultTiers.Tier(1e9))
	assert.Equal(t, domain.TierMicro, defaultTiers.Tier(1e8))
	assert.Equal(t, domain.TierNano, defaultTiers.Tier(1))
}

func TestClassify_FilteredSnapshot(t *testing.T) {
	table, err := ReadTable(strings.NewReader(sampleCSV), "sample")
	require.NoError(t, err)

	filtered := FilterNonNullCap(table)
	counts := Classify(filtered, defaultTiers)

	assert.Equal(t, 3, filtered.Len())
	assert.Equal(t, domain.TierCounts{Big: 3}, counts)
	assert.Equal(t, domain.TierLabels, counts.Series().Labels())
}
