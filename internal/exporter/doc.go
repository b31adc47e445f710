// Package exporter provides CSV export functionality for capitalization reports.
//
// This package contains two components:
//
// CSVWriter: Core CSV writing functionality with support for headers, streaming,
// and UTF-8 BOM for Excel compatibility.
//
// ReportExporter: Writes the derived views of a report (top capitalization,
// both volatility orderings, large caps and tier counts) into an output directory.
//
// Example usage:
//
//	exp := exporter.NewReportExporter("data/reports", logger)
//	paths, err := exp.Export(ctx, report)
package exporter
