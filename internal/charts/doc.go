// Package charts describes the report figures and renders them.
//
// A Chart is a plain value: kind, title and one or two panels of labeled
// bars with optional colors, axis labels and a log-scale flag. BuildCharts
// derives the fixed catalog from a report. A Renderer turns a Chart into a
// Figure; ExcelRenderer draws native column charts into an .xlsx workbook,
// one worksheet per chart, with the plotted data beside each chart.
//
// Styling is explicit. A Style value is passed to the renderer constructor and
// nothing is configured globally.
package charts
