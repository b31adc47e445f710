package exporter

import (
	"context"
	"log/slog"

	apperrors "cryptocap/internal/errors"
	"cryptocap/pkg/contracts/domain"
)

// Export file names
const (
	FileTopMarketCap = "top_market_cap.csv"
	FileVolatility24 = "volatility_24h.csv"
	FileVolatility7d = "volatility_7d.csv"
	FileLargeCaps    = "large_caps.csv"
	FileCapTiers     = "cap_tiers.csv"
)

// ReportExporter writes the derived views of a report as CSV files
type ReportExporter struct {
	writer *CSVWriter
	logger *slog.Logger
}

// NewReportExporter creates an exporter writing into outputDir
func NewReportExporter(outputDir string, logger *slog.Logger) *ReportExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportExporter{
		writer: NewCSVWriter(outputDir, logger),
		logger: logger.With(slog.String("component", "report_exporter")),
	}
}

// Export writes every view and returns the paths written, in order
func (e *ReportExporter) Export(ctx context.Context, report *domain.Report) ([]string, error) {
	steps := []struct {
		file  string
		write func(string, *domain.Report) (string, error)
	}{
		{FileTopMarketCap, e.exportTopCaps},
		{FileVolatility24, func(f string, r *domain.Report) (string, error) {
			return e.exportMovers(f, r.Movers24h)
		}},
		{FileVolatility7d, func(f string, r *domain.Report) (string, error) {
			return e.exportMovers(f, r.Movers7d)
		}},
		{FileLargeCaps, e.exportLargeCaps},
		{FileCapTiers, e.exportTiers},
	}

	paths := make([]string, 0, len(steps))
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return paths, err
		}
		path, err := step.write(step.file, report)
		if err != nil {
			return paths, apperrors.NewExportError("failed to write "+step.file, err).WithContext("file", step.file)
		}
		paths = append(paths, path)
	}

	e.logger.InfoContext(ctx, "Report exported",
		slog.Int("files", len(paths)),
		slog.String("run_id", report.RunID))

	return paths, nil
}

func (e *ReportExporter) exportTopCaps(file string, report *domain.Report) (string, error) {
	records := make([][]string, 0, len(report.TopCaps))
	for _, s := range report.TopCaps {
		records = append(records, []string{s.ID, formatUSD(s.MarketCapUSD), formatPercent(s.MarketCapPercentage)})
	}
	return e.writer.WriteSimpleCSV(file,
		[]string{domain.ColumnID, domain.ColumnMarketCapUSD, "market_cap_perc"},
		records)
}

// exportMovers streams the full sorted volatility view
func (e *ReportExporter) exportMovers(file string, movers []domain.Mover) (string, error) {
	stream, err := e.writer.CreateStreamWriter(file,
		[]string{domain.ColumnID, domain.ColumnPercentChange24h, domain.ColumnPercentChange7d})
	if err != nil {
		return "", err
	}

	for _, m := range movers {
		if err := stream.WriteRecord([]string{m.ID, formatChange(m.PercentChange24h), formatChange(m.PercentChange7d)}); err != nil {
			stream.Close()
			return "", err
		}
	}
	return stream.Path(), stream.Close()
}

func (e *ReportExporter) exportLargeCaps(file string, report *domain.Report) (string, error) {
	records := make([][]string, 0, len(report.LargeCaps))
	for _, r := range report.LargeCaps {
		records = append(records, []string{
			r.ID,
			r.Symbol,
			formatOptional(r.MarketCapUSD, formatUSD),
			formatOptional(r.PriceUSD, formatUSD),
		})
	}
	return e.writer.WriteSimpleCSV(file,
		[]string{domain.ColumnID, domain.ColumnSymbol, domain.ColumnMarketCapUSD, domain.ColumnPriceUSD},
		records)
}

func (e *ReportExporter) exportTiers(file string, report *domain.Report) (string, error) {
	records := make([][]string, 0, len(domain.TierLabels))
	for _, p := range report.Tiers.Series() {
		records = append(records, []string{p.Label, formatInt(int(p.Value))})
	}
	return e.writer.WriteSimpleCSV(file, []string{"tier", "count"}, records)
}
