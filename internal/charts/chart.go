package charts

import (
	"context"
	"fmt"

	apperrors "cryptocap/internal/errors"
	"cryptocap/pkg/contracts/domain"
)

// Kind is the chart layout
type Kind string

const (
	// KindBar is a single bar panel
	KindBar Kind = "bar"
	// KindBarPair is two bar panels side by side under one title
	KindBarPair Kind = "bar_pair"
)

// Panel is one set of axes. Colors holds either one color for every bar or
// one color per bar; shorter lists repeat.
type Panel struct {
	Title    string        `json:"title,omitempty"`
	Series   domain.Series `json:"series"`
	Colors   []string      `json:"colors,omitempty"`
	XLabel   string        `json:"x_label"`
	YLabel   string        `json:"y_label"`
	LogScale bool          `json:"log_scale,omitempty"`
}

// Empty reports whether the panel has no bars
func (p Panel) Empty() bool {
	return len(p.Series) == 0
}

// BarColors returns the color name of every bar, or nil when the panel sets none
func (p Panel) BarColors() []string {
	if len(p.Colors) == 0 {
		return nil
	}
	out := make([]string, len(p.Series))
	for i := range out {
		out[i] = p.Colors[i%len(p.Colors)]
	}
	return out
}

// Chart describes one figure independently of how it is drawn
type Chart struct {
	ID     string  `json:"id"`
	Kind   Kind    `json:"kind"`
	Title  string  `json:"title"`
	Panels []Panel `json:"panels"`
}

// Empty reports whether no panel has data
func (c Chart) Empty() bool {
	for _, p := range c.Panels {
		if !p.Empty() {
			return false
		}
	}
	return true
}

// Validate checks the panel count against the kind and that every color is known
func (c Chart) Validate() error {
	if c.ID == "" {
		return apperrors.NewRenderError("chart id is required", nil)
	}

	want := 1
	switch c.Kind {
	case KindBar:
	case KindBarPair:
		want = 2
	default:
		return apperrors.NewRenderError(fmt.Sprintf("unknown chart kind %q", c.Kind), nil).
			WithContext("chart", c.ID)
	}
	if len(c.Panels) != want {
		return apperrors.NewRenderError(
			fmt.Sprintf("%s chart needs %d panels, got %d", c.Kind, want, len(c.Panels)), nil).
			WithContext("chart", c.ID)
	}

	for _, p := range c.Panels {
		for _, color := range p.Colors {
			if _, ok := ResolveColor(color); !ok {
				return apperrors.NewRenderError(fmt.Sprintf("unknown color %q", color), nil).
					WithContext("chart", c.ID)
			}
		}
	}
	return nil
}

// Figure is the handle of a rendered chart
type Figure struct {
	ChartID string `json:"chart_id"`
	Sheet   string `json:"sheet"`
	Panels  int    `json:"panels"`
	Empty   bool   `json:"empty"`
}

// Renderer draws charts. Implementations must not keep references to the chart's slices.
type Renderer interface {
	Render(ctx context.Context, chart Chart) (Figure, error)
}
