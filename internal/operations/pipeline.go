package operations

import (
	"log/slog"

	"cryptocap/internal/charts"
	"cryptocap/internal/config"
	"cryptocap/internal/dataprocessing"
	"cryptocap/internal/infrastructure"
)

// PipelineOptions carries the optional collaborators of a report pipeline
type PipelineOptions struct {
	Renderer charts.Renderer
	Writer   ReportWriter
	Loader   TableLoader
	Metrics  *infrastructure.PipelineMetrics
	Logger   *slog.Logger
	Manager  []Option
}

// NewPipeline registers the report steps configured by cfg on a new Manager.
// The present step renders only when a renderer is given; the export step is
// registered only when a writer is given.
func NewPipeline(cfg *config.Config, opts PipelineOptions) (*Manager, error) {
	logger := opts.Logger
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	policy, err := dataprocessing.ParseOrderPolicy(cfg.Analysis.RankingOrder)
	if err != nil {
		return nil, err
	}
	tiers := dataprocessing.Tiers{BigMin: cfg.Analysis.BigCapMin, MicroMin: cfg.Analysis.MicroCapMin}
	if err := tiers.Validate(); err != nil {
		return nil, err
	}

	managerOpts := append([]Option{WithLogger(logger), WithMetrics(opts.Metrics)}, opts.Manager...)
	m := NewManager(NewRegistry(), NewConfig(), managerOpts...)

	stepLogger := infrastructure.WithComponent(logger, "pipeline")
	steps := []Step{
		NewLoadStage(opts.Loader, stepLogger),
		NewFilterStage(opts.Metrics, stepLogger),
		NewRankStage(cfg.Analysis.TopN, policy, cfg.Analysis.LargeCapThreshold),
		NewVolatilityStage(cfg.Analysis.MoversN),
		NewClassifyStage(tiers),
		NewPresentStage(opts.Renderer, charts.ChartOptions{
			TopN:              cfg.Analysis.TopN,
			TopCapColors:      cfg.Charts.TopCapColors,
			LargeCapThreshold: cfg.Analysis.LargeCapThreshold,
		}, opts.Metrics),
	}
	if opts.Writer != nil {
		steps = append(steps, NewExportStage(opts.Writer))
	}

	for _, step := range steps {
		if err := m.RegisterStage(step); err != nil {
			return nil, err
		}
	}
	if err := m.registry.ValidateDependencies(); err != nil {
		return nil, err
	}
	return m, nil
}
