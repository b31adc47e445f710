package operations

import (
	"sync"
	"time"

	"cryptocap/internal/charts"
	"cryptocap/pkg/contracts/domain"
)

// OperationStatus represents the overall run status
type OperationStatus string

const (
	OperationStatusPending   OperationStatus = "pending"
	OperationStatusRunning   OperationStatus = "running"
	OperationStatusCompleted OperationStatus = "completed"
	OperationStatusFailed    OperationStatus = "failed"
	OperationStatusCancelled OperationStatus = "cancelled"
)

// OperationState carries one report run: its status, per-step states and
// the artifacts each step hands to the next. Steps run on one goroutine, so
// artifacts are written without locking; status fields are guarded.
type OperationState struct {
	mu sync.RWMutex

	ID        string
	Source    string
	Status    OperationStatus
	StartTime time.Time
	EndTime   *time.Time
	Error     error

	steps map[string]*StepState
	order []string

	// Artifacts
	Table    *domain.Table
	Filtered *domain.Table
	Report   *domain.Report
	Charts   []charts.Chart
	Figures  []charts.Figure
	Exported []string
}

// NewOperationState creates a new run state for source
func NewOperationState(id, source string) *OperationState {
	return &OperationState{
		ID:        id,
		Source:    source,
		Status:    OperationStatusPending,
		StartTime: time.Now(),
		steps:     make(map[string]*StepState),
	}
}

// Start marks the operation as running
func (p *OperationState) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Status = OperationStatusRunning
	p.StartTime = time.Now()
}

// Complete marks the operation as completed
func (p *OperationState) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusCompleted
}

// Fail marks the operation as failed
func (p *OperationState) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusFailed
	p.Error = err
}

// Cancel marks the operation as cancelled
func (p *OperationState) Cancel(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusCancelled
	p.Error = err
}

// GetStatus returns the current run status
func (p *OperationState) GetStatus() OperationStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Status
}

// GetStage returns the state of a specific Step
func (p *OperationState) GetStage(stepID string) *StepState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.steps[stepID]
}

// SetStage registers the state of a Step, keeping first-seen order
func (p *OperationState) SetStage(stepID string, state *StepState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.steps[stepID]; !exists {
		p.order = append(p.order, stepID)
	}
	p.steps[stepID] = state
}

// Stages returns the step states in execution order
func (p *OperationState) Stages() []*StepState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*StepState, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.steps[id])
	}
	return out
}

// Duration returns the duration of the operation execution
func (p *OperationState) Duration() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.EndTime != nil {
		return p.EndTime.Sub(p.StartTime)
	}
	return time.Since(p.StartTime)
}

// HasFailures returns true if any Step has failed
func (p *OperationState) HasFailures() bool {
	for _, s := range p.Stages() {
		if s.GetStatus() == StepStatusFailed {
			return true
		}
	}
	return false
}

// StepSummary is the serializable view of a StepState
type StepSummary struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Status     StepStatus `json:"status"`
	DurationMS int64      `json:"duration_ms"`
	Message    string     `json:"message,omitempty"`
}

// RunSummary is the serializable view of a finished run
type RunSummary struct {
	ID         string          `json:"id"`
	Source     string          `json:"source"`
	Status     OperationStatus `json:"status"`
	DurationMS int64           `json:"duration_ms"`
	Error      string          `json:"error,omitempty"`
	Steps      []StepSummary   `json:"steps"`
	Figures    []charts.Figure `json:"figures,omitempty"`
	Exported   []string        `json:"exported,omitempty"`
}

// Summary snapshots the run for logging and the API
func (p *OperationState) Summary() RunSummary {
	stages := p.Stages()

	p.mu.RLock()
	summary := RunSummary{
		ID:       p.ID,
		Source:   p.Source,
		Status:   p.Status,
		Figures:  p.Figures,
		Exported: p.Exported,
		Steps:    make([]StepSummary, 0, len(stages)),
	}
	if p.Error != nil {
		summary.Error = p.Error.Error()
	}
	p.mu.RUnlock()
	summary.DurationMS = p.Duration().Milliseconds()

	for _, s := range stages {
		s.mu.RLock()
		summary.Steps = append(summary.Steps, StepSummary{
			ID:      s.ID,
			Name:    s.Name,
			Status:  s.Status,
			Message: s.Message,
		})
		s.mu.RUnlock()
		summary.Steps[len(summary.Steps)-1].DurationMS = s.Duration().Milliseconds()
	}
	return summary
}
