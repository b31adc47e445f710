package exporter

import (
	"bytes"
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bom = []byte{0xEF, 0xBB, 0xBF}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data = bytes.TrimPrefix(data, bom)
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVWriter_WriteSimpleCSV(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(filepath.Join(dir, "reports"), quietLogger())

	path, err := w.WriteSimpleCSV("views/out.csv", []string{"id", "value"}, [][]string{
		{"bitcoin", "1"},
		{"has,comma", "2"},
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "reports", "views", "out.csv"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, bom))

	rows := readCSV(t, path)
	assert.Equal(t, [][]string{{"id", "value"}, {"bitcoin", "1"}, {"has,comma", "2"}}, rows)
}

func TestCSVWriter_Append(t *testing.T) {
	w := NewCSVWriter(t.TempDir(), quietLogger())

	path, err := w.WriteSimpleCSV("a.csv", []string{"h"}, [][]string{{"1"}})
	require.NoError(t, err)
	_, err = w.WriteCSV("a.csv", WriteOptions{Headers: []string{"ignored"}, Records: [][]string{{"2"}}, Append: true})
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"h"}, {"1"}, {"2"}}, readCSV(t, path))
}

func TestCSVWriter_AbsolutePath(t *testing.T) {
	w := NewCSVWriter("relative-root", quietLogger())
	abs := filepath.Join(t.TempDir(), "abs.csv")

	path, err := w.WriteSimpleCSV(abs, []string{"x"}, nil)
	require.NoError(t, err)
	assert.Equal(t, abs, path)
}

func TestStreamWriter(t *testing.T) {
	w := NewCSVWriter(t.TempDir(), quietLogger())

	stream, err := w.CreateStreamWriter("stream.csv", []string{"id", "change"})
	require.NoError(t, err)
	for _, rec := range [][]string{{"a", "-1.00"}, {"b", "2.00"}} {
		require.NoError(t, stream.WriteRecord(rec))
	}
	require.NoError(t, stream.Close())

	assert.Equal(t, [][]string{{"id", "change"}, {"a", "-1.00"}, {"b", "2.00"}}, readCSV(t, stream.Path()))
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "13.40", formatPercent(13.4))
	assert.Equal(t, "-0.05", formatPercent(-0.049))
	assert.Equal(t, "213049300000", formatUSD(213049300000))
	assert.Equal(t, "0.5", formatUSD(0.5))
	assert.Equal(t, "-12.3456789", formatChange(-12.3456789))
	assert.Equal(t, "7.33", formatChange(7.33))
	assert.Equal(t, "42", formatInt(42))
	assert.Equal(t, "", formatOptional(nil, formatUSD))
	v := 7.0
	assert.Equal(t, "7", formatOptional(&v, formatUSD))
}
