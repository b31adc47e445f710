package exporter

import (
	"fmt"
	"strconv"
)

// formatPercent formats a percentage for CSV output with exactly 2 decimal places
func formatPercent(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

// formatUSD formats an amount with every significant digit and no exponent
func formatUSD(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatChange writes a percent change exactly as parsed, so the view reloads losslessly
func formatChange(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}

// formatOptional formats a nullable amount; nil becomes an empty cell
func formatOptional(f *float64, format func(float64) string) string {
	if f == nil {
		return ""
	}
	return format(*f)
}
