// Package operations runs a market-cap report as an ordered set of steps.
//
// Core Components:
//
// Manager: executes the registered steps in dependency order on the calling
// goroutine. Every step gets a StepState, a span and a duration metric. The
// first failing step aborts the run and the steps after it are skipped.
//
// Step: one unit of work. Steps read and write the typed artifacts of the
// OperationState (loaded table, filtered table, report, charts, figures).
//
// Registry: holds the steps, rejects duplicate IDs and orders them
// topologically, keeping registration order among steps that are ready together.
//
// NewPipeline assembles the report steps from the application configuration:
//
//	load -> filter -> rank -> volatility -> classify -> present -> export
//
// Example usage:
//
//	manager, err := operations.NewPipeline(cfg, operations.PipelineOptions{
//		Renderer: renderer,
//		Writer:   exporter.NewReportExporter(cfg.Data.OutputDir, logger),
//		Metrics:  metrics,
//		Logger:   logger,
//	})
//	state, err := manager.Run(ctx, cfg.Data.InputFile)
package operations
