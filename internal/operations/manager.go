package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"cryptocap/internal/infrastructure"
)

// Manager orchestrates report runs over the registered steps
type Manager struct {
	registry *Registry
	config   *Config
	logger   *slog.Logger
	tracer   trace.Tracer
	metrics  *infrastructure.PipelineMetrics
}

// Option configures a Manager
type Option func(*Manager)

// WithLogger sets the manager logger
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithTracer sets the tracer used for run and step spans
func WithTracer(tracer trace.Tracer) Option {
	return func(m *Manager) {
		if tracer != nil {
			m.tracer = tracer
		}
	}
}

// WithMetrics sets the instruments runs and steps are recorded on
func WithMetrics(metrics *infrastructure.PipelineMetrics) Option {
	return func(m *Manager) {
		m.metrics = metrics
	}
}

// NewManager creates a new run manager
func NewManager(registry *Registry, config *Config, opts ...Option) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	if config == nil {
		config = NewConfig()
	}

	m := &Manager{
		registry: registry,
		config:   config,
		logger:   slog.Default(),
		tracer:   defaultTracer(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = infrastructure.WithComponent(m.logger, "operations")
	return m
}

// RegisterStage registers a Step with the manager
func (m *Manager) RegisterStage(step Step) error {
	return m.registry.Register(step)
}

// GetRegistry returns the registry for accessing registered steps
func (m *Manager) GetRegistry() *Registry {
	return m.registry
}

// GetConfig returns the current configuration
func (m *Manager) GetConfig() *Config {
	return m.config
}

// Run executes every registered step against source, in dependency order.
// The first failing step aborts the run and the remaining steps are skipped.
// The returned state is always non-nil.
func (m *Manager) Run(ctx context.Context, source string) (*OperationState, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	state := NewOperationState(infrastructure.GetTraceID(ctx), source)

	steps, err := m.registry.GetDependencyOrder()
	if err != nil {
		m.logger.ErrorContext(ctx, "invalid step graph", slog.String("error", err.Error()))
		state.Fail(err)
		return state, err
	}

	for _, step := range steps {
		state.SetStage(step.ID(), NewStepState(step.ID(), step.Name()))
	}

	ctx, span := m.traceRun(ctx, state, len(steps))
	state.Start()
	m.logger.InfoContext(ctx, "Report run started",
		slog.String("operation_id", state.ID),
		slog.String("source", source),
		slog.Int("step_count", len(steps)))

	err = m.executeSequential(ctx, state, steps)

	switch {
	case err == nil:
		state.Complete()
		m.logger.InfoContext(ctx, "Report run completed",
			slog.String("operation_id", state.ID),
			slog.Duration("duration", state.Duration()))
	case GetErrorType(err) == ErrorTypeCancellation:
		state.Cancel(err)
		m.logger.WarnContext(ctx, "Report run cancelled",
			slog.String("operation_id", state.ID),
			slog.String("error", err.Error()))
	default:
		state.Fail(err)
		m.logger.ErrorContext(ctx, "Report run failed",
			slog.String("operation_id", state.ID),
			slog.String("error", err.Error()))
	}

	m.metrics.RecordRun(ctx, state.Duration(), err)
	endSpan(span, state.Duration(), err)
	return state, err
}

// executeSequential runs steps one by one on the calling goroutine
func (m *Manager) executeSequential(ctx context.Context, state *OperationState, steps []Step) error {
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			m.skipRemaining(state, steps[i:], "operation cancelled")
			return NewCancellationError(step.ID(), err)
		}

		m.logger.InfoContext(ctx, "Executing step",
			slog.String("operation_id", state.ID),
			slog.String("step", step.ID()),
			slog.Int("step_number", i+1),
			slog.Int("total_steps", len(steps)))

		if err := m.executeStage(ctx, state, step); err != nil {
			m.skipRemaining(state, steps[i+1:], fmt.Sprintf("step %s failed", step.ID()))
			return err
		}
	}
	return nil
}

// executeStage checks dependencies, validates and runs a single step under its timeout
func (m *Manager) executeStage(ctx context.Context, state *OperationState, step Step) error {
	stepState := state.GetStage(step.ID())
	if stepState == nil {
		return NewFatalError("step state not found", nil)
	}

	if err := m.checkDependencies(state, step); err != nil {
		stepState.Skip(err.Error())
		return err
	}

	if err := step.Validate(state); err != nil {
		m.logger.WarnContext(ctx, "Step validation failed",
			slog.String("step", step.ID()),
			slog.String("error", err.Error()))
		verr := NewValidationError(step.ID(), err)
		stepState.Fail(verr)
		return verr
	}

	timeout := m.config.GetStageTimeout(step.ID())
	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	stepCtx, span := m.traceStep(stepCtx, state, step)

	stepState.Start()
	start := time.Now()
	err := step.Execute(stepCtx, state)
	duration := time.Since(start)

	m.metrics.RecordStep(ctx, step.ID(), duration, err)
	endSpan(span, duration, err)

	if err != nil {
		var wrapped *OperationError
		switch {
		case ctx.Err() != nil:
			wrapped = NewCancellationError(step.ID(), err)
		case errors.Is(err, context.DeadlineExceeded):
			wrapped = NewTimeoutError(step.ID(), timeout.String(), err)
		default:
			wrapped = NewExecutionError(step.ID(), err)
		}
		stepState.Fail(wrapped)
		m.logger.ErrorContext(ctx, "Step failed",
			slog.String("operation_id", state.ID),
			slog.String("step", step.ID()),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return wrapped
	}

	stepState.Complete()
	m.logger.InfoContext(ctx, "Step completed",
		slog.String("operation_id", state.ID),
		slog.String("step", step.ID()),
		slog.Duration("duration", duration))
	return nil
}

// checkDependencies verifies that all dependencies completed
func (m *Manager) checkDependencies(state *OperationState, step Step) error {
	for _, dep := range step.GetDependencies() {
		depState := state.GetStage(dep)
		if depState == nil {
			return NewDependencyError(step.ID(), dep, fmt.Sprintf("dependency %s not found", dep))
		}
		if status := depState.GetStatus(); status != StepStatusCompleted {
			return NewDependencyError(step.ID(), dep,
				fmt.Sprintf("dependency %s not completed (status: %s)", dep, status))
		}
	}
	return nil
}

// skipRemaining marks pending steps as skipped
func (m *Manager) skipRemaining(state *OperationState, steps []Step, reason string) {
	for _, step := range steps {
		if s := state.GetStage(step.ID()); s != nil && s.GetStatus() == StepStatusPending {
			s.Skip(reason)
		}
	}
}
