package http

import (
	"context"
	"io"

	"cryptocap/internal/charts"
	"cryptocap/internal/operations"
	"cryptocap/pkg/contracts/domain"
)

// ReportProvider defines the read operations served over HTTP
type ReportProvider interface {
	Report() (*domain.Report, error)
	Summary() (operations.RunSummary, error)
	TopCaps(n int) ([]domain.CapShare, error)
	Movers(period string, n int) (domain.MoverExtremes, error)
	Tiers() (domain.TierCounts, error)
	Charts() ([]charts.Chart, error)
	Chart(id string) (charts.Chart, error)
	Workbook(ctx context.Context, w io.Writer) error
}
