package infrastructure

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptocap/internal/config"
)

func testTelemetry(traceExporter, metricExporter string) config.TelemetryConfig {
	return config.TelemetryConfig{
		ServiceName:    "cryptocap-test",
		Environment:    "test",
		TraceExporter:  traceExporter,
		MetricExporter: metricExporter,
		SampleRatio:    1.0,
	}
}

func TestOTelInitialization(t *testing.T) {
	logger := NewLogger(io.Discard, "error")

	providers, err := InitializeOTel(testTelemetry("none", "prometheus"), logger)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.PrometheusHTTP)
	assert.Nil(t, providers.TracerProvider)
}

func TestOTelInitialization_Disabled(t *testing.T) {
	providers, err := InitializeOTel(testTelemetry("none", "none"), NewLogger(io.Discard, "error"))
	require.NoError(t, err)

	// no-op instruments still work
	metrics, err := NewPipelineMetrics(providers.Meter)
	require.NoError(t, err)
	metrics.RecordRun(context.Background(), time.Second, nil)

	_, span := providers.Tracer.Start(context.Background(), "noop")
	span.End()

	assert.Nil(t, providers.PrometheusHTTP)
	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestOTelInitialization_UnsupportedExporter(t *testing.T) {
	_, err := InitializeOTel(testTelemetry("jaeger", "none"), NewLogger(io.Discard, "error"))
	assert.Error(t, err)

	_, err = InitializeOTel(testTelemetry("none", "statsd"), NewLogger(io.Discard, "error"))
	assert.Error(t, err)
}

func TestPrometheusEndpoint(t *testing.T) {
	providers, err := InitializeOTel(testTelemetry("none", "prometheus"), NewLogger(io.Discard, "error"))
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := NewPipelineMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordRows(ctx, "snapshot.csv", 5, 2)
	metrics.RecordStep(ctx, "load", 10*time.Millisecond, nil)
	metrics.RecordStep(ctx, "render", 10*time.Millisecond, errors.New("boom"))
	metrics.RecordCharts(ctx, "excel", 6)
	metrics.RecordHTTPRequest(ctx, http.MethodGet, "/api/top", http.StatusOK, time.Millisecond)

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "snapshot_rows_loaded_total")
	assert.Contains(t, body, "snapshot_rows_dropped_total")
	assert.Contains(t, body, "report_step_errors_total")
	assert.Contains(t, body, "charts_rendered_total")
	assert.Contains(t, body, "http_requests_total")
}

func TestPipelineMetrics_NilSafe(t *testing.T) {
	var m *PipelineMetrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordRun(ctx, time.Second, nil)
		m.RecordStep(ctx, "load", time.Second, nil)
		m.RecordRows(ctx, "x", 1, 0)
		m.RecordCharts(ctx, "excel", 1)
		m.RecordHTTPRequest(ctx, "GET", "/", 200, time.Second)
	})
}

func TestRecordError_NoSpan(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordError(context.Background(), errors.New("x"))
	})
}
