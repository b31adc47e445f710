package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PipelineMetrics holds the instruments recorded by report runs and the HTTP API
type PipelineMetrics struct {
	RunsTotal           metric.Int64Counter
	RunDuration         metric.Float64Histogram
	StepsTotal          metric.Int64Counter
	StepDuration        metric.Float64Histogram
	StepErrors          metric.Int64Counter
	RowsLoaded          metric.Int64Counter
	RowsDropped         metric.Int64Counter
	ChartsRendered      metric.Int64Counter
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
}

// NewPipelineMetrics creates the instruments on meter
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	m := &PipelineMetrics{}
	var err error

	if m.RunsTotal, err = meter.Int64Counter("report_runs_total",
		metric.WithDescription("Total number of report runs")); err != nil {
		return nil, err
	}
	if m.RunDuration, err = meter.Float64Histogram("report_run_duration_seconds",
		metric.WithDescription("Report run duration in seconds"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if m.StepsTotal, err = meter.Int64Counter("report_steps_total",
		metric.WithDescription("Total number of pipeline steps executed")); err != nil {
		return nil, err
	}
	if m.StepDuration, err = meter.Float64Histogram("report_step_duration_seconds",
		metric.WithDescription("Pipeline step duration in seconds"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if m.StepErrors, err = meter.Int64Counter("report_step_errors_total",
		metric.WithDescription("Total number of failed pipeline steps")); err != nil {
		return nil, err
	}
	if m.RowsLoaded, err = meter.Int64Counter("snapshot_rows_loaded_total",
		metric.WithDescription("Rows read from market snapshots")); err != nil {
		return nil, err
	}
	if m.RowsDropped, err = meter.Int64Counter("snapshot_rows_dropped_total",
		metric.WithDescription("Rows removed for a missing market capitalization")); err != nil {
		return nil, err
	}
	if m.ChartsRendered, err = meter.Int64Counter("charts_rendered_total",
		metric.WithDescription("Charts handed to the renderer")); err != nil {
		return nil, err
	}
	if m.HTTPRequestsTotal, err = meter.Int64Counter("http_requests_total",
		metric.WithDescription("Total number of HTTP requests")); err != nil {
		return nil, err
	}
	if m.HTTPRequestDuration, err = meter.Float64Histogram("http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordStep records one pipeline step execution
func (m *PipelineMetrics) RecordStep(ctx context.Context, stepID string, duration time.Duration, err error) {
	if m == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "failure"
	}

	attrs := metric.WithAttributes(
		attribute.String("step.id", stepID),
		attribute.String("status", status),
	)
	m.StepsTotal.Add(ctx, 1, attrs)
	m.StepDuration.Record(ctx, duration.Seconds(), attrs)

	if err != nil {
		m.StepErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("step.id", stepID)))
	}
}

// RecordRun records a completed report run
func (m *PipelineMetrics) RecordRun(ctx context.Context, duration time.Duration, err error) {
	if m == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "failure"
	}
	attrs := metric.WithAttributes(attribute.String("status", status))
	m.RunsTotal.Add(ctx, 1, attrs)
	m.RunDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordRows records loader and filter row counts
func (m *PipelineMetrics) RecordRows(ctx context.Context, source string, loaded, dropped int) {
	if m == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("source", source))
	m.RowsLoaded.Add(ctx, int64(loaded), attrs)
	m.RowsDropped.Add(ctx, int64(dropped), attrs)
}

// RecordCharts records the number of rendered charts
func (m *PipelineMetrics) RecordCharts(ctx context.Context, renderer string, count int) {
	if m == nil {
		return
	}
	m.ChartsRendered.Add(ctx, int64(count), metric.WithAttributes(attribute.String("renderer", renderer)))
}

// RecordHTTPRequest records one served request
func (m *PipelineMetrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPRequestDuration.Record(ctx, duration.Seconds(), attrs)
}
