// Package services implements the read side of the report server.
//
// ReportService runs the pipeline once at startup and then answers queries
// from the immutable result: the full report, top capitalization shares,
// movers per change window, tier counts, the chart catalog and an Excel
// workbook of every chart rendered on demand.
//
// HealthService reports liveness and whether a report has been loaded.
package services
