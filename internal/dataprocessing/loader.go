package dataprocessing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "cryptocap/internal/errors"
	"cryptocap/pkg/contracts/domain"
)

const utf8BOM = "\ufeff"

// naTokens are the cell values read as a missing number
var naTokens = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// IsNAToken reports whether a raw cell denotes a missing value
func IsNAToken(cell string) bool {
	_, ok := naTokens[strings.TrimSpace(cell)]
	return ok
}

// LoadTable reads a market snapshot from disk. CSV and plain text files are
// parsed as comma separated values; .xlsx workbooks are read from their first sheet.
func LoadTable(path string) (*domain.Table, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv", ".txt", "":
		f, err := os.Open(path)
		if err != nil {
			return nil, apperrors.NewLoadError(path, "cannot open snapshot", err)
		}
		defer f.Close()
		return ReadTable(f, path)
	case ".xlsx":
		return loadWorkbook(path)
	default:
		return nil, apperrors.NewLoadError(path, fmt.Sprintf("unsupported file extension %q", ext), nil)
	}
}

// ReadTable parses CSV snapshot data from r. source names the data in errors.
func ReadTable(r io.Reader, source string) (*domain.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, apperrors.NewLoadError(source, "missing header row", nil)
	}
	if err != nil {
		return nil, apperrors.NewLoadError(source, "cannot read header row", err)
	}

	b, err := newTableBuilder(source, header)
	if err != nil {
		return nil, err
	}

	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperrors.NewLoadError(source, "malformed csv", err).WithContext("row", line)
		}
		if err := b.add(line, row); err != nil {
			return nil, err
		}
	}

	return b.table(), nil
}

// loadWorkbook reads the first sheet of an Excel snapshot
func loadWorkbook(path string) (*domain.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewLoadError(path, "cannot open workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewLoadError(path, "workbook has no sheets", nil)
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.NewLoadError(path, "cannot read sheet", err).WithContext("sheet", sheets[0])
	}

	// skip leading blank rows
	start := 0
	for start < len(rows) && len(rows[start]) == 0 {
		start++
	}
	if start == len(rows) {
		return nil, apperrors.NewLoadError(path, "missing header row", nil)
	}

	b, err := newTableBuilder(path, rows[start])
	if err != nil {
		return nil, err
	}

	for i := start + 1; i < len(rows); i++ {
		if len(rows[i]) == 0 {
			continue
		}
		if err := b.add(i+1, rows[i]); err != nil {
			return nil, err
		}
	}

	return b.table(), nil
}

// tableBuilder maps header positions and converts raw rows to records
type tableBuilder struct {
	source  string
	columns map[string]int
	records []domain.Record
}

func newTableBuilder(source string, header []string) (*tableBuilder, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		name = strings.TrimSpace(name)
		if _, dup := columns[name]; !dup {
			columns[name] = i
		}
	}

	for _, required := range domain.RequiredColumns {
		if _, ok := columns[required]; !ok {
			return nil, apperrors.NewLoadError(source, fmt.Sprintf("missing required column %q", required), nil).
				WithContext("column", required)
		}
	}

	return &tableBuilder{source: source, columns: columns, records: []domain.Record{}}, nil
}

// cell returns the raw value of column, or "" when the row is short or the column absent
func (b *tableBuilder) cell(row []string, column string) string {
	idx, ok := b.columns[column]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func (b *tableBuilder) number(line int, row []string, column string) (*float64, error) {
	raw := b.cell(row, column)
	if IsNAToken(raw) {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperrors.NewLoadError(b.source, fmt.Sprintf("invalid number %q", raw), err).
			WithContext("column", column).
			WithContext("row", line)
	}
	// NaN spellings ParseFloat accepts are nulls; infinities are rejected
	if math.IsNaN(v) {
		return nil, nil
	}
	if math.IsInf(v, 0) {
		return nil, apperrors.NewLoadError(b.source, fmt.Sprintf("non-finite number %q", raw), nil).
			WithContext("column", column).
			WithContext("row", line)
	}
	return &v, nil
}

func (b *tableBuilder) add(line int, row []string) error {
	rec := domain.Record{
		ID:     b.cell(row, domain.ColumnID),
		Name:   b.cell(row, domain.ColumnName),
		Symbol: b.cell(row, domain.ColumnSymbol),
	}
	if IsNAToken(rec.ID) {
		rec.ID = ""
	}

	var err error
	if rec.MarketCapUSD, err = b.number(line, row, domain.ColumnMarketCapUSD); err != nil {
		return err
	}
	if rec.PercentChange24h, err = b.number(line, row, domain.ColumnPercentChange24h); err != nil {
		return err
	}
	if rec.PercentChange7d, err = b.number(line, row, domain.ColumnPercentChange7d); err != nil {
		return err
	}
	if rec.PriceUSD, err = b.number(line, row, domain.ColumnPriceUSD); err != nil {
		return err
	}

	rank, err := b.number(line, row, domain.ColumnRank)
	if err != nil {
		return err
	}
	if rank != nil {
		rec.Rank = int(*rank)
	}

	b.records = append(b.records, rec)
	return nil
}

func (b *tableBuilder) table() *domain.Table {
	return domain.NewTable(b.source, b.records)
}
