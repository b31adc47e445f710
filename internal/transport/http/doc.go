// Package http implements the HTTP handlers of the report server.
//
// Handlers stay thin: they parse path and query parameters, call a
// ReportProvider and render JSON. Every failure is written as RFC 7807
// problem details through errors.ErrorHandler.
//
// Routes mounted under /api:
//
//	GET /health            service health
//	GET /version           build version
//	GET /report            full report and run summary
//	GET /top?n=            top capitalization shares
//	GET /movers/{period}   losers and gainers for 24h or 7d
//	GET /tiers             big, micro and nano counts
//	GET /charts            chart catalog
//	GET /charts/{id}       one chart
//	GET /workbook          every chart as an Excel workbook
package http
