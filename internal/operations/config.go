package operations

import "time"

// Config represents the run execution configuration
type Config struct {
	// Step-specific timeouts
	StageTimeouts map[string]time.Duration `json:"stage_timeouts"`

	// Timeout for steps without an entry in StageTimeouts
	DefaultTimeout time.Duration `json:"default_timeout"`
}

// NewConfig returns the default run configuration
func NewConfig() *Config {
	return &Config{
		StageTimeouts: map[string]time.Duration{
			StageIDLoad:    DefaultLoadTimeout,
			StageIDPresent: DefaultRenderTimeout,
		},
		DefaultTimeout: DefaultStageTimeout,
	}
}

// GetStageTimeout returns the timeout for a specific Step
func (c *Config) GetStageTimeout(stepID string) time.Duration {
	if timeout, ok := c.StageTimeouts[stepID]; ok && timeout > 0 {
		return timeout
	}
	if c.DefaultTimeout > 0 {
		return c.DefaultTimeout
	}
	return DefaultStageTimeout
}

// SetStageTimeout sets the timeout for a specific Step
func (c *Config) SetStageTimeout(stepID string, timeout time.Duration) {
	if c.StageTimeouts == nil {
		c.StageTimeouts = make(map[string]time.Duration)
	}
	c.StageTimeouts[stepID] = timeout
}
