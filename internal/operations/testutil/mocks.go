package testutil

import (
	"context"
	"sync"

	"cryptocap/internal/charts"
	"cryptocap/internal/operations"
	"cryptocap/pkg/contracts/domain"
)

// MockStage is a configurable implementation of the step interface
type MockStage struct {
	IDValue           string
	NameValue         string
	DependenciesValue []string

	ExecuteFunc  func(ctx context.Context, state *operations.OperationState) error
	ValidateFunc func(state *operations.OperationState) error

	mu            sync.Mutex
	executeCalls  int
	validateCalls int
	order         *[]string
}

// ID returns the step ID
func (m *MockStage) ID() string {
	return m.IDValue
}

// Name returns the step name
func (m *MockStage) Name() string {
	return m.NameValue
}

// GetDependencies returns the step dependencies
func (m *MockStage) GetDependencies() []string {
	if m.DependenciesValue == nil {
		return []string{}
	}
	return m.DependenciesValue
}

// Execute runs the mock execute function
func (m *MockStage) Execute(ctx context.Context, state *operations.OperationState) error {
	m.mu.Lock()
	m.executeCalls++
	if m.order != nil {
		*m.order = append(*m.order, m.IDValue)
	}
	m.mu.Unlock()

	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, state)
	}
	return nil
}

// Validate runs the mock validate function
func (m *MockStage) Validate(state *operations.OperationState) error {
	m.mu.Lock()
	m.validateCalls++
	m.mu.Unlock()

	if m.ValidateFunc != nil {
		return m.ValidateFunc(state)
	}
	return nil
}

// ExecuteCalls returns the number of Execute calls
func (m *MockStage) ExecuteCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.executeCalls
}

// ValidateCalls returns the number of Validate calls
func (m *MockStage) ValidateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.validateCalls
}

// RecordOrder appends the step ID to order on every execution
func (m *MockStage) RecordOrder(order *[]string) *MockStage {
	m.order = order
	return m
}

// MockRenderer records the charts it is asked to draw
type MockRenderer struct {
	mu       sync.Mutex
	Rendered []charts.Chart
	Err      error
}

// Render records chart and returns a figure named after it
func (r *MockRenderer) Render(ctx context.Context, chart charts.Chart) (charts.Figure, error) {
	if r.Err != nil {
		return charts.Figure{}, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Rendered = append(r.Rendered, chart)
	return charts.Figure{ChartID: chart.ID, Sheet: chart.ID, Panels: len(chart.Panels), Empty: chart.Empty()}, nil
}

// MockWriter records exported reports
type MockWriter struct {
	Reports []*domain.Report
	Paths   []string
	Err     error
}

// Export records report and returns the configured paths
func (w *MockWriter) Export(ctx context.Context, report *domain.Report) ([]string, error) {
	if w.Err != nil {
		return nil, w.Err
	}
	w.Reports = append(w.Reports, report)
	return w.Paths, nil
}
