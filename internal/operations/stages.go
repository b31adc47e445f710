package operations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cryptocap/internal/charts"
	"cryptocap/internal/dataprocessing"
	"cryptocap/internal/files"
	"cryptocap/internal/infrastructure"
	"cryptocap/pkg/contracts/domain"
)

// TableLoader reads a market snapshot
type TableLoader func(path string) (*domain.Table, error)

// ReportWriter persists the derived views of a report
type ReportWriter interface {
	Export(ctx context.Context, report *domain.Report) ([]string, error)
}

// LoadStage reads the snapshot named by the run source
type LoadStage struct {
	BaseStage
	load   TableLoader
	logger *slog.Logger
}

// LoadSnapshot resolves path to a snapshot file and loads it
func LoadSnapshot(path string) (*domain.Table, error) {
	resolved, err := files.ResolveSnapshot(path)
	if err != nil {
		return nil, err
	}
	return dataprocessing.LoadTable(resolved)
}

// NewLoadStage creates the snapshot loading step. A nil loader uses LoadSnapshot.
func NewLoadStage(load TableLoader, logger *slog.Logger) *LoadStage {
	if load == nil {
		load = LoadSnapshot
	}
	return &LoadStage{
		BaseStage: NewBaseStage(StageIDLoad, StageNameLoad),
		load:      load,
		logger:    logger,
	}
}

// Execute loads the table and starts the report
func (s *LoadStage) Execute(ctx context.Context, state *OperationState) error {
	table, err := s.load(state.Source)
	if err != nil {
		return err
	}

	source := state.Source
	if table.Source != "" {
		source = table.Source
	}

	state.Table = table
	state.Report = &domain.Report{
		RunID:       state.ID,
		Source:      source,
		GeneratedAt: time.Now().UTC(),
		TotalRows:   table.Len(),
	}
	state.GetStage(s.ID()).SetMetadata("rows", table.Len())

	s.logger.InfoContext(ctx, "Snapshot loaded",
		slog.String("source", source),
		slog.Int("rows", table.Len()),
		slog.Int("market_cap_count", table.Count(domain.ColumnMarketCapUSD)))
	return nil
}

// FilterStage drops the rows without a market capitalization
type FilterStage struct {
	BaseStage
	metrics *infrastructure.PipelineMetrics
	logger  *slog.Logger
}

// NewFilterStage creates the null-capitalization filter step
func NewFilterStage(metrics *infrastructure.PipelineMetrics, logger *slog.Logger) *FilterStage {
	return &FilterStage{
		BaseStage: NewBaseStage(StageIDFilter, StageNameFilter, StageIDLoad),
		metrics:   metrics,
		logger:    logger,
	}
}

// Validate requires a loaded table
func (s *FilterStage) Validate(state *OperationState) error {
	if state.Table == nil || state.Report == nil {
		return fmt.Errorf("no snapshot loaded")
	}
	return nil
}

// Execute builds the filtered table and the report totals
func (s *FilterStage) Execute(ctx context.Context, state *OperationState) error {
	state.Filtered = dataprocessing.FilterNonNullCap(state.Table)
	state.Report.FilteredRows = state.Filtered.Len()
	state.Report.TotalMarketCap = state.Filtered.TotalMarketCap()

	dropped := state.Report.DroppedRows()
	s.metrics.RecordRows(ctx, state.Source, state.Report.TotalRows, dropped)
	state.GetStage(s.ID()).SetMetadata("dropped", dropped)

	s.logger.InfoContext(ctx, "Rows without market capitalization removed",
		slog.Int("kept", state.Report.FilteredRows),
		slog.Int("dropped", dropped))
	return nil
}

// RankStage builds the top capitalization view and the large-cap selection
type RankStage struct {
	BaseStage
	topN      int
	policy    dataprocessing.OrderPolicy
	threshold float64
}

// NewRankStage creates the ranking step
func NewRankStage(topN int, policy dataprocessing.OrderPolicy, largeCapThreshold float64) *RankStage {
	return &RankStage{
		BaseStage: NewBaseStage(StageIDRank, StageNameRank, StageIDFilter),
		topN:      topN,
		policy:    policy,
		threshold: largeCapThreshold,
	}
}

// Validate rejects a non-positive top size
func (s *RankStage) Validate(state *OperationState) error {
	if s.topN < 1 {
		return fmt.Errorf("top size must be at least 1, got %d", s.topN)
	}
	if state.Filtered == nil {
		return fmt.Errorf("no filtered table")
	}
	return nil
}

// Execute computes the top-N shares and large caps
func (s *RankStage) Execute(ctx context.Context, state *OperationState) error {
	top, err := dataprocessing.TopByCap(state.Filtered, s.topN, s.policy)
	if err != nil {
		return err
	}
	state.Report.TopCaps = top
	state.Report.LargeCaps = dataprocessing.SelectLargeCaps(state.Filtered, s.threshold).Records
	return nil
}

// VolatilityStage sorts the change columns and picks the top movers.
// It reads the unfiltered table: a row with both changes but no
// capitalization still counts as a mover.
type VolatilityStage struct {
	BaseStage
	moversN int
}

// NewVolatilityStage creates the volatility step
func NewVolatilityStage(moversN int) *VolatilityStage {
	return &VolatilityStage{
		BaseStage: NewBaseStage(StageIDVolatility, StageNameVolatility, StageIDLoad),
		moversN:   moversN,
	}
}

// Validate rejects a non-positive mover count
func (s *VolatilityStage) Validate(state *OperationState) error {
	if s.moversN < 1 {
		return fmt.Errorf("movers count must be at least 1, got %d", s.moversN)
	}
	if state.Table == nil {
		return fmt.Errorf("no snapshot loaded")
	}
	return nil
}

// Execute builds both sort orders and their extremes
func (s *VolatilityStage) Execute(ctx context.Context, state *OperationState) error {
	movers := dataprocessing.ExtractMovers(state.Table)
	state.Report.Movers24h, state.Report.Extremes24h = dataprocessing.Extremes(movers, domain.Change24h, s.moversN)
	state.Report.Movers7d, state.Report.Extremes7d = dataprocessing.Extremes(movers, domain.Change7d, s.moversN)
	state.GetStage(s.ID()).SetMetadata("movers", len(movers))
	return nil
}

// ClassifyStage counts rows per capitalization tier
type ClassifyStage struct {
	BaseStage
	tiers dataprocessing.Tiers
}

// NewClassifyStage creates the tier classification step
func NewClassifyStage(tiers dataprocessing.Tiers) *ClassifyStage {
	return &ClassifyStage{
		BaseStage: NewBaseStage(StageIDClassify, StageNameClassify, StageIDFilter),
		tiers:     tiers,
	}
}

// Validate checks the tier thresholds
func (s *ClassifyStage) Validate(state *OperationState) error {
	if state.Filtered == nil {
		return fmt.Errorf("no filtered table")
	}
	return s.tiers.Validate()
}

// Execute fills the tier counts
func (s *ClassifyStage) Execute(ctx context.Context, state *OperationState) error {
	state.Report.Tiers = dataprocessing.Classify(state.Filtered, s.tiers)
	return nil
}

// PresentStage builds the chart catalog and hands each chart to the renderer
type PresentStage struct {
	BaseStage
	renderer charts.Renderer
	opts     charts.ChartOptions
	metrics  *infrastructure.PipelineMetrics
}

// NewPresentStage creates the rendering step. A nil renderer only builds the catalog.
func NewPresentStage(renderer charts.Renderer, opts charts.ChartOptions, metrics *infrastructure.PipelineMetrics) *PresentStage {
	return &PresentStage{
		BaseStage: NewBaseStage(StageIDPresent, StageNamePresent,
			StageIDRank, StageIDVolatility, StageIDClassify),
		renderer: renderer,
		opts:     opts,
		metrics:  metrics,
	}
}

// Execute renders every chart in catalog order
func (s *PresentStage) Execute(ctx context.Context, state *OperationState) error {
	state.Charts = charts.BuildCharts(state.Report, s.opts)
	if s.renderer == nil {
		return nil
	}

	figures := make([]charts.Figure, 0, len(state.Charts))
	for _, c := range state.Charts {
		if err := ctx.Err(); err != nil {
			return err
		}
		fig, err := s.renderer.Render(ctx, c)
		if err != nil {
			return err
		}
		figures = append(figures, fig)
	}
	state.Figures = figures
	s.metrics.RecordCharts(ctx, fmt.Sprintf("%T", s.renderer), len(figures))
	return nil
}

// ExportStage writes the report views to CSV
type ExportStage struct {
	BaseStage
	writer ReportWriter
}

// NewExportStage creates the CSV export step
func NewExportStage(writer ReportWriter) *ExportStage {
	return &ExportStage{
		BaseStage: NewBaseStage(StageIDExport, StageNameExport,
			StageIDRank, StageIDVolatility, StageIDClassify),
		writer: writer,
	}
}

// Validate requires a writer
func (s *ExportStage) Validate(state *OperationState) error {
	if s.writer == nil {
		return fmt.Errorf("no report writer configured")
	}
	return nil
}

// Execute writes the CSV files
func (s *ExportStage) Execute(ctx context.Context, state *OperationState) error {
	paths, err := s.writer.Export(ctx, state.Report)
	state.Exported = paths
	return err
}
