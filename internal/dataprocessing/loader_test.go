package dataprocessing

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "cryptocap/internal/errors"
	"cryptocap/pkg/contracts/domain"
)

const sampleCSV = `id,name,symbol,rank,price_usd,market_cap_usd,percent_change_24h,percent_change_7d
bitcoin,Bitcoin,BTC,1,12000,213049300000,7.33,17.45
ethereum,Ethereum,ETH,2,443,43529450000,-3.93,-7.33
bitcoin-cash,Bitcoin Cash,BCH,3,1400,,-5.51,-4.75
iota,IOTA,MIOTA,4,3.9,10772360000,83.35,255.82
ghost,Ghost,GST,5,0.01,NaN,,1.2
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTable_CSV(t *testing.T) {
	path := writeFile(t, "snapshot.csv", sampleCSV)

	table, err := LoadTable(path)
	require.NoError(t, err)

	require.Equal(t, 5, table.Len())
	assert.Equal(t, path, table.Source)

	btc := table.Records[0]
	assert.Equal(t, "bitcoin", btc.ID)
	assert.Equal(t, "BTC", btc.Symbol)
	assert.Equal(t, 1, btc.Rank)
	require.NotNil(t, btc.MarketCapUSD)
	assert.Equal(t, 213049300000.0, *btc.MarketCapUSD)
	assert.InDelta(t, 7.33, *btc.PercentChange24h, 1e-9)

	assert.Nil(t, table.Records[2].MarketCapUSD)
	assert.Nil(t, table.Records[4].MarketCapUSD)
	assert.Nil(t, table.Records[4].PercentChange24h)
	assert.Equal(t, 3, table.Count(domain.ColumnMarketCapUSD))
}

func TestReadTable_HeaderHandling(t *testing.T) {
	input := "\ufeff id , market_cap_usd ,percent_change_24h,percent_change_7d,extra\n" +
		"a,100,1,2,ignored\n"

	table, err := ReadTable(strings.NewReader(input), "inline")
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, "a", table.Records[0].ID)
	assert.Equal(t, 100.0, table.Records[0].MarketCap())
}

func TestReadTable_ShortAndLongRows(t *testing.T) {
	input := "id,market_cap_usd,percent_change_24h,percent_change_7d\n" +
		"short,5\n" +
		"long,6,1,2,3,4\n"

	table, err := ReadTable(strings.NewReader(input), "inline")
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())

	assert.Equal(t, 5.0, table.Records[0].MarketCap())
	assert.Nil(t, table.Records[0].PercentChange24h)
	assert.Nil(t, table.Records[0].PercentChange7d)
	assert.Equal(t, 2.0, *table.Records[1].PercentChange7d)
}

func TestReadTable_NATokens(t *testing.T) {
	for _, token := range []string{"", "NaN", "nan", "NA", "N/A", "n/a", "null", "NULL", "None", "#N/A", "<NA>", "-nan"} {
		t.Run("token_"+token, func(t *testing.T) {
			input := "id,market_cap_usd,percent_change_24h,percent_change_7d\nx," + token + ",1,1\n"
			table, err := ReadTable(strings.NewReader(input), "inline")
			require.NoError(t, err)
			assert.Nil(t, table.Records[0].MarketCapUSD)
		})
	}
}

func TestReadTable_NaNSpellingsAreNull(t *testing.T) {
	input := "id,market_cap_usd,percent_change_24h,percent_change_7d\n" +
		"bitcoin,100,1,1\n" +
		"weird,NAN,Nan,1\n" +
		"ok,50,1,nAn\n"
	table, err := ReadTable(strings.NewReader(input), "inline")
	require.NoError(t, err)
	require.Equal(t, 3, table.Len())
	assert.Nil(t, table.Records[1].MarketCapUSD)
	assert.Nil(t, table.Records[1].PercentChange24h)
	assert.Nil(t, table.Records[2].PercentChange7d)

	filtered := FilterNonNullCap(table)
	assert.Equal(t, 2, filtered.Len())

	top, err := TopByCap(filtered, 10, OrderTrust)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.InDelta(t, 100.0/150.0*100, top[0].MarketCapPercentage, 1e-9)

	_, err = json.Marshal(top)
	assert.NoError(t, err)
}

func TestReadTable_Errors(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantColumn string
		wantRow    int
	}{
		{name: "empty input", input: ""},
		{
			name:       "missing required column",
			input:      "id,market_cap_usd,percent_change_24h\nx,1,1\n",
			wantColumn: domain.ColumnPercentChange7d,
		},
		{
			name:       "non numeric cell",
			input:      "id,market_cap_usd,percent_change_24h,percent_change_7d\nx,1,1,1\ny,lots,1,1\n",
			wantColumn: domain.ColumnMarketCapUSD,
			wantRow:    3,
		},
		{
			name:       "infinite cap",
			input:      "id,market_cap_usd,percent_change_24h,percent_change_7d\nx,1,1,1\ny,inf,1,1\n",
			wantColumn: domain.ColumnMarketCapUSD,
			wantRow:    3,
		},
		{
			name:       "negative infinite change",
			input:      "id,market_cap_usd,percent_change_24h,percent_change_7d\nx,1,-Infinity,1\n",
			wantColumn: domain.ColumnPercentChange24h,
			wantRow:    2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadTable(strings.NewReader(tt.input), "bad.csv")
			require.Error(t, err)
			assert.True(t, apperrors.IsLoadError(err))

			appErr, ok := err.(*apperrors.AppError)
			require.True(t, ok)
			assert.Equal(t, "bad.csv", appErr.Context["path"])
			if tt.wantColumn != "" {
				assert.Equal(t, tt.wantColumn, appErr.Context["column"])
			}
			if tt.wantRow != 0 {
				assert.Equal(t, tt.wantRow, appErr.Context["row"])
			}
		})
	}
}

func TestLoadTable_MissingFile(t *testing.T) {
	_, err := LoadTable(filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
	assert.True(t, apperrors.IsLoadError(err))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestLoadTable_UnsupportedExtension(t *testing.T) {
	_, err := LoadTable(writeFile(t, "snapshot.json", "{}"))
	require.Error(t, err)
	assert.True(t, apperrors.IsLoadError(err))
}

func TestLoadTable_Workbook(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	rows := [][]interface{}{
		{"id", "market_cap_usd", "percent_change_24h", "percent_change_7d"},
		{"bitcoin", 213049300000.0, 7.33, 17.45},
		{"nocap", "", 1.5, 2.5},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "snapshot.xlsx")
	require.NoError(t, f.SaveAs(path))

	table, err := LoadTable(path)
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "bitcoin", table.Records[0].ID)
	assert.Equal(t, 213049300000.0, table.Records[0].MarketCap())
	assert.Nil(t, table.Records[1].MarketCapUSD)
	assert.InDelta(t, 2.5, *table.Records[1].PercentChange7d, 1e-9)
}

func TestIsNAToken(t *testing.T) {
	assert.True(t, IsNAToken("  "))
	assert.True(t, IsNAToken(" NaN "))
	assert.False(t, IsNAToken("0"))
	assert.False(t, IsNAToken("bitcoin"))
}
