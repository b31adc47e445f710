package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptocap/internal/config"
)

const testSnapshot = `id,symbol,market_cap_usd,percent_change_24h,percent_change_7d
bitcoin,BTC,213049300000,7.33,17.45
ethereum,ETH,43529450000,-1.5,4.1
ghost,GST,,2.0,-3.0
`

func newTestApp(t *testing.T) *Application {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.csv")
	require.NoError(t, os.WriteFile(path, []byte(testSnapshot), 0644))

	cfg := config.Default()
	cfg.Data.InputFile = path
	cfg.Telemetry.TraceExporter = "none"
	cfg.Telemetry.MetricExporter = "prometheus"
	cfg.Server.RateLimitRPS = 0

	a, err := NewApplication(cfg, slog.New(slog.NewJSONHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.OTelProviders.Shutdown(context.Background()) })
	return a
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestApplication_Routes(t *testing.T) {
	a := newTestApp(t)

	t.Run("health degraded before load", func(t *testing.T) {
		rec := get(t, a.Router, "/api/health")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"degraded"`)
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})

	t.Run("report unavailable before load", func(t *testing.T) {
		rec := get(t, a.Router, "/api/top")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	require.NoError(t, a.Load(context.Background()))

	t.Run("top caps", func(t *testing.T) {
		rec := get(t, a.Router, "/api/top?n=2")
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Count int `json:"count"`
			Data  []struct {
				ID string `json:"id"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, 2, body.Count)
		assert.Equal(t, "bitcoin", body.Data[0].ID)
	})

	t.Run("movers include rows without a cap", func(t *testing.T) {
		rec := get(t, a.Router, "/api/movers/7d?n=1")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"ghost"`)
	})

	t.Run("unknown route", func(t *testing.T) {
		rec := get(t, a.Router, "/api/nope")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("metrics exposed", func(t *testing.T) {
		rec := get(t, a.Router, "/metrics")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "http_requests_total")
	})
}

func TestApplication_ServeAndShutdown(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, a.Load(context.Background()))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/api/version")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
