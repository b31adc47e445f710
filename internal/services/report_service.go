package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"cryptocap/internal/charts"
	"cryptocap/internal/config"
	apperrors "cryptocap/internal/errors"
	"cryptocap/internal/dataprocessing"
	"cryptocap/internal/infrastructure"
	"cryptocap/internal/operations"
	"cryptocap/pkg/contracts/domain"
)

// ReportService runs the report pipeline once and answers read-only queries
// over the result. All query methods are safe for concurrent use.
type ReportService struct {
	cfg     *config.Config
	metrics *infrastructure.PipelineMetrics
	logger  *slog.Logger

	mu       sync.RWMutex
	loaded   bool
	report   *domain.Report
	filtered *domain.Table
	catalog  []charts.Chart
	summary  operations.RunSummary
	policy   dataprocessing.OrderPolicy
}

// NewReportService creates a report service for cfg
func NewReportService(cfg *config.Config, metrics *infrastructure.PipelineMetrics, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{
		cfg:     cfg,
		metrics: metrics,
		logger:  infrastructure.WithComponent(logger, "report_service"),
	}
}

// Load runs the pipeline on the configured input file. A LoadError from the
// snapshot is returned unchanged in the error chain.
func (s *ReportService) Load(ctx context.Context) error {
	policy, err := dataprocessing.ParseOrderPolicy(s.cfg.Analysis.RankingOrder)
	if err != nil {
		return err
	}

	manager, err := operations.NewPipeline(s.cfg, operations.PipelineOptions{
		Metrics: s.metrics,
		Logger:  s.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to assemble pipeline: %w", err)
	}

	state, err := manager.Run(ctx, s.cfg.Data.InputFile)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = true
	s.report = state.Report
	s.filtered = state.Filtered
	s.catalog = state.Charts
	s.summary = state.Summary()
	s.policy = policy

	s.logger.InfoContext(ctx, "Report loaded",
		slog.String("run_id", state.ID),
		slog.Int("rows", s.report.TotalRows),
		slog.Int("charts", len(s.catalog)))
	return nil
}

// Loaded reports whether a report is available
func (s *ReportService) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Report returns the full report
func (s *ReportService) Report() (*domain.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return nil, ErrReportNotLoaded
	}
	return s.report, nil
}

// Summary returns the step summary of the run that produced the report
func (s *ReportService) Summary() (operations.RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return operations.RunSummary{}, ErrReportNotLoaded
	}
	return s.summary, nil
}

// TopCaps returns the first n capitalization shares, recomputed when n
// exceeds the configured top size.
func (s *ReportService) TopCaps(n int) ([]domain.CapShare, error) {
	if err := validCount(n); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return nil, ErrReportNotLoaded
	}
	if n <= len(s.report.TopCaps) {
		return s.report.TopCaps[:n:n], nil
	}
	return dataprocessing.TopByCap(s.filtered, n, s.policy)
}

// Movers returns the n losers and n gainers of a change window
func (s *ReportService) Movers(period string, n int) (domain.MoverExtremes, error) {
	column, ok := domain.ParsePeriod(period)
	if !ok {
		return domain.MoverExtremes{}, ErrUnknownPeriod
	}
	if err := validCount(n); err != nil {
		return domain.MoverExtremes{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return domain.MoverExtremes{}, ErrReportNotLoaded
	}

	sorted := s.report.Movers24h
	if column == domain.Change7d {
		sorted = s.report.Movers7d
	}
	losers, gainers := dataprocessing.TopBottom(dataprocessing.MoverSeries(sorted, column), n)
	return domain.MoverExtremes{Column: column, Losers: losers, Gainers: gainers}, nil
}

// Tiers returns the tier counts
func (s *ReportService) Tiers() (domain.TierCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return domain.TierCounts{}, ErrReportNotLoaded
	}
	return s.report.Tiers, nil
}

// Charts returns the chart catalog
func (s *ReportService) Charts() ([]charts.Chart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return nil, ErrReportNotLoaded
	}
	return s.catalog, nil
}

// Chart returns one chart of the catalog
func (s *ReportService) Chart(id string) (charts.Chart, error) {
	catalog, err := s.Charts()
	if err != nil {
		return charts.Chart{}, err
	}
	chart, ok := charts.FindChart(catalog, id)
	if !ok {
		return charts.Chart{}, apperrors.NewNotFoundError("chart").WithContext("chart_id", id)
	}
	return chart, nil
}

// Workbook renders every chart into a fresh workbook and writes it to w
func (s *ReportService) Workbook(ctx context.Context, w io.Writer) error {
	catalog, err := s.Charts()
	if err != nil {
		return err
	}

	renderer, err := charts.NewExcelRenderer(charts.StyleFromConfig(s.cfg.Charts), s.logger)
	if err != nil {
		return err
	}
	defer renderer.Close()

	for _, c := range catalog {
		if _, err := renderer.Render(ctx, c); err != nil {
			return err
		}
	}
	s.metrics.RecordCharts(ctx, "excel", len(catalog))

	if _, err := renderer.WriteTo(w); err != nil {
		return apperrors.NewRenderError("failed to write workbook", err)
	}
	return nil
}

func validCount(n int) error {
	if n < 1 || n > MaxViewSize {
		return ErrInvalidCount
	}
	return nil
}
