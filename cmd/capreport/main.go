package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"cryptocap/internal/charts"
	"cryptocap/internal/config"
	apperrors "cryptocap/internal/errors"
	"cryptocap/internal/exporter"
	"cryptocap/internal/files"
	"cryptocap/internal/infrastructure"
	"cryptocap/internal/operations"
	"cryptocap/pkg/contracts"
	"cryptocap/pkg/contracts/domain"
)

// options are the command line overrides applied on top of the loaded config
type options struct {
	configFile string
	inputFile  string
	outputDir  string
	topN       int
	moversN    int
	noCSV      bool
	version    bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("capreport", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configFile, "config", "", "YAML config file (defaults to config.yaml or configs/config.yaml when present)")
	fs.StringVar(&opts.inputFile, "file", "", "market snapshot (.csv or .xlsx), or a directory holding dated snapshots")
	fs.StringVar(&opts.outputDir, "out", "", "output directory for the workbook and CSV exports")
	fs.IntVar(&opts.topN, "top", 0, "number of assets in the capitalization ranking")
	fs.IntVar(&opts.moversN, "movers", 0, "number of losers and gainers per change window")
	fs.BoolVar(&opts.noCSV, "no-csv", false, "skip the CSV exports")
	fs.BoolVar(&opts.version, "version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

func (o options) apply(cfg *config.Config) error {
	if o.inputFile != "" {
		cfg.Data.InputFile = o.inputFile
	}
	if o.outputDir != "" {
		cfg.Data.OutputDir = o.outputDir
	}
	if o.topN != 0 {
		cfg.Analysis.TopN = o.topN
	}
	if o.moversN != 0 {
		cfg.Analysis.MoversN = o.moversN
	}
	if o.noCSV {
		cfg.Data.ExportCSV = false
	}
	return cfg.Validate()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one report and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if opts.version {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return 0
	}

	cfg, err := config.Load(opts.configFile)
	if err != nil {
		fmt.Fprintf(stderr, "capreport: %v\n", err)
		return 1
	}
	if err := opts.apply(cfg); err != nil {
		fmt.Fprintf(stderr, "capreport: invalid options: %v\n", err)
		return 1
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(stderr, "capreport: failed to initialize logger: %v\n", err)
		logger = infrastructure.NewLogger(stderr, cfg.Logging.Level)
	}
	defer infrastructure.CloseLogFile()

	otelProviders, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		logger.Error("Failed to initialize OpenTelemetry", slog.String("error", err.Error()))
		return 1
	}
	defer otelProviders.Shutdown(context.Background())

	metrics, err := infrastructure.NewPipelineMetrics(otelProviders.Meter)
	if err != nil {
		logger.Error("Failed to create metrics", slog.String("error", err.Error()))
		return 1
	}

	state, err := generate(ctx, cfg, logger, otelProviders, metrics)
	if err != nil {
		errLogger := infrastructure.WithError(logger, err)
		if apperrors.IsLoadError(err) {
			errLogger.Error("Snapshot could not be loaded", slog.String("path", cfg.Data.InputFile))
		} else {
			errLogger.Error("Report generation failed")
		}
		fmt.Fprintf(stderr, "capreport: %v\n", err)
		return 1
	}

	printSummary(stdout, state)
	return 0
}

// generate runs the pipeline with the Excel renderer and, when enabled, the
// CSV exporter, then saves the workbook
func generate(ctx context.Context, cfg *config.Config, logger *slog.Logger, otelProviders *infrastructure.OTelProviders, metrics *infrastructure.PipelineMetrics) (*operations.OperationState, error) {
	renderer, err := charts.NewExcelRenderer(charts.StyleFromConfig(cfg.Charts), logger)
	if err != nil {
		return nil, err
	}
	defer renderer.Close()

	pipelineOpts := operations.PipelineOptions{
		Renderer: renderer,
		Metrics:  metrics,
		Logger:   logger,
		Manager:  []operations.Option{operations.WithTracer(otelProviders.Tracer)},
	}
	if cfg.Data.ExportCSV {
		pipelineOpts.Writer = exporter.NewReportExporter(cfg.Data.OutputDir, logger)
	}

	manager, err := operations.NewPipeline(cfg, pipelineOpts)
	if err != nil {
		return nil, err
	}

	if err := files.PrepareOutputDir(cfg.Data.OutputDir); err != nil {
		return nil, err
	}

	state, err := manager.Run(ctx, cfg.Data.InputFile)
	if err != nil {
		return state, err
	}

	workbook := filepath.Join(cfg.Data.OutputDir, cfg.Data.WorkbookName)
	if err := renderer.SaveAs(workbook); err != nil {
		return state, err
	}
	state.Exported = append(state.Exported, workbook)

	logger.InfoContext(ctx, "Report written",
		slog.String("workbook", workbook),
		slog.Int("files", len(state.Exported)))
	return state, nil
}

func printSummary(w io.Writer, state *operations.OperationState) {
	report := state.Report
	fmt.Fprintf(w, "Source:           %s\n", report.Source)
	fmt.Fprintf(w, "Rows loaded:      %d\n", report.TotalRows)
	fmt.Fprintf(w, "Rows with a cap:  %d (%d dropped)\n", report.FilteredRows, report.DroppedRows())
	fmt.Fprintf(w, "Total market cap: %s\n", charts.HumanizeUSD(report.TotalMarketCap))

	fmt.Fprintf(w, "\nTop %d by market cap:\n", len(report.TopCaps))
	for i, share := range report.TopCaps {
		fmt.Fprintf(w, "%3d. %-24s %12s %6.2f%%\n", i+1, share.ID, charts.HumanizeUSD(share.MarketCapUSD), share.MarketCapPercentage)
	}

	printExtremes(w, "24h", report.Extremes24h)
	printExtremes(w, "7d", report.Extremes7d)

	fmt.Fprintf(w, "\nLarge caps: %d\n", len(report.LargeCaps))
	fmt.Fprintf(w, "Tiers: big=%d micro=%d nano=%d\n", report.Tiers.Big, report.Tiers.Micro, report.Tiers.Nano)

	fmt.Fprintf(w, "\nFiles:\n")
	for _, path := range state.Exported {
		fmt.Fprintf(w, "  %s\n", path)
	}
}

func printExtremes(w io.Writer, period string, ex domain.MoverExtremes) {
	fmt.Fprintf(w, "\n%s losers:  ", period)
	for _, p := range ex.Losers {
		fmt.Fprintf(w, "%s (%+.2f%%) ", p.Label, p.Value)
	}
	fmt.Fprintf(w, "\n%s gainers: ", period)
	for _, p := range ex.Gainers {
		fmt.Fprintf(w, "%s (%+.2f%%) ", p.Label, p.Value)
	}
	fmt.Fprintln(w)
}
