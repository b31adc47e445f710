package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cryptocap/internal/charts"
	apierrors "cryptocap/internal/errors"
	"cryptocap/internal/operations"
	"cryptocap/internal/services"
	"cryptocap/pkg/contracts/domain"
)

// MockReportService is a mock implementation of ReportProvider
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Report() (*domain.Report, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Report), args.Error(1)
}

func (m *MockReportService) Summary() (operations.RunSummary, error) {
	args := m.Called()
	return args.Get(0).(operations.RunSummary), args.Error(1)
}

func (m *MockReportService) TopCaps(n int) ([]domain.CapShare, error) {
	args := m.Called(n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CapShare), args.Error(1)
}

func (m *MockReportService) Movers(period string, n int) (domain.MoverExtremes, error) {
	args := m.Called(period, n)
	return args.Get(0).(domain.MoverExtremes), args.Error(1)
}

func (m *MockReportService) Tiers() (domain.TierCounts, error) {
	args := m.Called()
	return args.Get(0).(domain.TierCounts), args.Error(1)
}

func (m *MockReportService) Charts() ([]charts.Chart, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]charts.Chart), args.Error(1)
}

func (m *MockReportService) Chart(id string) (charts.Chart, error) {
	args := m.Called(id)
	return args.Get(0).(charts.Chart), args.Error(1)
}

func (m *MockReportService) Workbook(ctx context.Context, w io.Writer) error {
	args := m.Called(w)
	if data, ok := args.Get(0).([]byte); ok {
		_, _ = w.Write(data)
	}
	return args.Error(1)
}

func setupRouter(svc ReportProvider) http.Handler {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	h := NewReportHandler(svc, ReportHandlerOptions{TopN: 10, MoversN: 5, WorkbookName: "crypto_charts.xlsx"},
		logger, apierrors.NewErrorHandler(logger, false))
	r := chi.NewRouter()
	r.Mount("/api", h.Routes())
	return r
}

func serve(t *testing.T, h http.Handler, target string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	var body map[string]interface{}
	if rec.Header().Get("Content-Type") != XLSXContentType && rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	}
	return rec, body
}

func TestReportHandler_GetTopCaps(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		setupMock  func(*MockReportService)
		wantStatus int
		wantCount  int
	}{
		{
			name:  "default size",
			query: "",
			setupMock: func(m *MockReportService) {
				m.On("TopCaps", 10).Return([]domain.CapShare{
					{ID: "bitcoin", MarketCapUSD: 2e11, MarketCapPercentage: 80},
					{ID: "ethereum", MarketCapUSD: 5e10, MarketCapPercentage: 20},
				}, nil)
			},
			wantStatus: http.StatusOK,
			wantCount:  2,
		},
		{
			name:  "explicit size",
			query: "?n=1",
			setupMock: func(m *MockReportService) {
				m.On("TopCaps", 1).Return([]domain.CapShare{{ID: "bitcoin"}}, nil)
			},
			wantStatus: http.StatusOK,
			wantCount:  1,
		},
		{
			name:       "out of range",
			query:      "?n=500",
			setupMock:  func(m *MockReportService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:  "not loaded",
			query: "",
			setupMock: func(m *MockReportService) {
				m.On("TopCaps", 10).Return(nil, services.ErrReportNotLoaded)
			},
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockReportService)
			tt.setupMock(svc)

			rec, body := serve(t, setupRouter(svc), "/api/top"+tt.query)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "success", body["status"])
				assert.EqualValues(t, tt.wantCount, body["count"])
			} else {
				assert.NotEmpty(t, body["type"])
				assert.EqualValues(t, tt.wantStatus, body["status"])
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestReportHandler_GetMovers(t *testing.T) {
	svc := new(MockReportService)
	svc.On("Movers", "7d", 2).Return(domain.MoverExtremes{
		Column:  domain.Change7d,
		Losers:  domain.Series{{Label: "ghost", Value: -3}, {Label: "ripple", Value: -2.2}},
		Gainers: domain.Series{{Label: "bitcoin", Value: 17.45}, {Label: "dust", Value: 50}},
	}, nil)
	router := setupRouter(svc)

	rec, body := serve(t, router, "/api/movers/7d?n=2")
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, string(domain.Change7d), data["column"])
	assert.Len(t, data["losers"], 2)

	rec, _ = serve(t, router, "/api/movers/30d")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "period")

	svc.AssertExpectations(t)
	svc.AssertNumberOfCalls(t, "Movers", 1)
}

func TestReportHandler_GetReport(t *testing.T) {
	svc := new(MockReportService)
	svc.On("Report").Return(&domain.Report{RunID: "run-1", TotalRows: 5, FilteredRows: 3}, nil)
	svc.On("Summary").Return(operations.RunSummary{ID: "run-1", Status: operations.OperationStatusCompleted}, nil)

	rec, body := serve(t, setupRouter(svc), "/api/report")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, body["dropped"])
	assert.Equal(t, "run-1", body["data"].(map[string]interface{})["run_id"])
	assert.Equal(t, "run-1", body["run"].(map[string]interface{})["id"])
}

func TestReportHandler_GetTiers(t *testing.T) {
	svc := new(MockReportService)
	svc.On("Tiers").Return(domain.TierCounts{Big: 3, Micro: 1, Nano: 2}, nil)

	rec, body := serve(t, setupRouter(svc), "/api/tiers")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 6, body["total"])
	assert.EqualValues(t, 3, body["data"].(map[string]interface{})["big"])
}

func TestReportHandler_Charts(t *testing.T) {
	catalog := []charts.Chart{
		{ID: charts.ChartCapTiers, Kind: charts.KindBar, Title: "Tiers"},
	}
	svc := new(MockReportService)
	svc.On("Charts").Return(catalog, nil)
	svc.On("Chart", charts.ChartCapTiers).Return(catalog[0], nil)
	svc.On("Chart", "pie").Return(charts.Chart{}, apierrors.NewNotFoundError("chart"))
	router := setupRouter(svc)

	rec, body := serve(t, router, "/api/charts")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, body["count"])

	rec, body = serve(t, router, "/api/charts/"+charts.ChartCapTiers)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, charts.ChartCapTiers, body["data"].(map[string]interface{})["id"])

	rec, body = serve(t, router, "/api/charts/pie")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apierrors.TypeNotFound, body["type"])
}

func TestReportHandler_DownloadWorkbook(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := new(MockReportService)
		svc.On("Workbook", mock.Anything).Return([]byte("PK\x03\x04"), nil)

		rec, _ := serve(t, setupRouter(svc), "/api/workbook")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, XLSXContentType, rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "crypto_charts.xlsx")
		assert.Equal(t, "PK\x03\x04", rec.Body.String())
	})

	t.Run("render failure", func(t *testing.T) {
		svc := new(MockReportService)
		svc.On("Workbook", mock.Anything).Return(nil, apierrors.NewRenderError("boom", errors.New("disk full")))

		rec, body := serve(t, setupRouter(svc), "/api/workbook")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, apierrors.TypeRenderFailed, body["type"])
	})
}
