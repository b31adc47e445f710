package http

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "cryptocap/internal/errors"
	customMiddleware "cryptocap/internal/middleware"
	"cryptocap/internal/services"
	"cryptocap/pkg/contracts/domain"
)

// XLSXContentType is the media type of the workbook download
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler serves the loaded market report with RFC 7807 errors
type ReportHandler struct {
	service      ReportProvider
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	params       *customMiddleware.QueryParamValidator
	topN         int
	moversN      int
	workbookName string
}

// ReportHandlerOptions holds the query defaults of the report routes
type ReportHandlerOptions struct {
	TopN         int
	MoversN      int
	WorkbookName string
}

// NewReportHandler creates a new report handler
func NewReportHandler(service ReportProvider, opts ReportHandlerOptions, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ReportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.WorkbookName == "" {
		opts.WorkbookName = "report.xlsx"
	}
	return &ReportHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "report_handler")),
		errorHandler: errorHandler,
		params:       customMiddleware.NewQueryParamValidator(logger, errorHandler),
		topN:         clampCount(opts.TopN),
		moversN:      clampCount(opts.MoversN),
		workbookName: opts.WorkbookName,
	}
}

// Routes returns the report routes
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/report", h.GetReport)
		r.Get("/top", h.GetTopCaps)
		r.Get("/movers/{period}", h.GetMovers)
		r.Get("/tiers", h.GetTiers)
		r.Get("/charts", h.GetCharts)
		r.Get("/charts/{id}", h.GetChart)
	})
	r.Get("/workbook", h.DownloadWorkbook)

	return r
}

// GetReport handles GET /api/report
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Report()
	if err != nil {
		h.fail(w, r, "failed to get report", err)
		return
	}
	summary, err := h.service.Summary()
	if err != nil {
		h.fail(w, r, "failed to get run summary", err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":  "success",
		"data":    report,
		"dropped": report.DroppedRows(),
		"run":     summary,
	})
}

// GetTopCaps handles GET /api/top?n=
func (h *ReportHandler) GetTopCaps(w http.ResponseWriter, r *http.Request) {
	n, ok := h.params.ValidateInt(w, r, "n", 1, services.MaxViewSize, h.topN)
	if !ok {
		return
	}

	top, err := h.service.TopCaps(n)
	if err != nil {
		h.fail(w, r, "failed to get top caps", err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   top,
		"count":  len(top),
	})
}

// GetMovers handles GET /api/movers/{period}?n=
func (h *ReportHandler) GetMovers(w http.ResponseWriter, r *http.Request) {
	period := chi.URLParam(r, "period")
	if _, ok := domain.ParsePeriod(period); !ok {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("period", "period must be one of: 24h, 7d"))
		return
	}
	n, ok := h.params.ValidateInt(w, r, "n", 1, services.MaxViewSize, h.moversN)
	if !ok {
		return
	}

	movers, err := h.service.Movers(period, n)
	if err != nil {
		h.fail(w, r, "failed to get movers", err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   movers,
	})
}

// GetTiers handles GET /api/tiers
func (h *ReportHandler) GetTiers(w http.ResponseWriter, r *http.Request) {
	tiers, err := h.service.Tiers()
	if err != nil {
		h.fail(w, r, "failed to get tiers", err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   tiers,
		"total":  tiers.Total(),
	})
}

// GetCharts handles GET /api/charts
func (h *ReportHandler) GetCharts(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.service.Charts()
	if err != nil {
		h.fail(w, r, "failed to get charts", err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   catalog,
		"count":  len(catalog),
	})
}

// GetChart handles GET /api/charts/{id}
func (h *ReportHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	chart, err := h.service.Chart(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "failed to get chart", err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   chart,
	})
}

// DownloadWorkbook handles GET /api/workbook. The workbook is buffered so a
// render failure can still produce a problem response.
func (h *ReportHandler) DownloadWorkbook(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.service.Workbook(r.Context(), &buf); err != nil {
		h.fail(w, r, "failed to render workbook", err)
		return
	}

	w.Header().Set("Content-Type", XLSXContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+h.workbookName+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "workbook write interrupted",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(r.Context())))
	}
}

// fail maps service errors to API errors and writes the problem response
func (h *ReportHandler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.DebugContext(r.Context(), msg,
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if errors.Is(err, services.ErrReportNotLoaded) {
		h.errorHandler.HandleError(w, r, apierrors.ErrServiceUnavailable)
		return
	}
	h.errorHandler.HandleError(w, r, err)
}

func clampCount(n int) int {
	if n < 1 {
		return 1
	}
	return min(n, services.MaxViewSize)
}
