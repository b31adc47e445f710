package charts

import (
	"strings"

	"cryptocap/internal/config"
)

// Style is the explicit plot configuration handed to a renderer
type Style struct {
	Name       string
	Palette    []string
	Background string
	Width      uint
	Height     uint
	ShowLegend bool
	Gridlines  bool
	TitleSize  float64
}

var styles = map[string]Style{
	"fivethirtyeight": {
		Name:       "fivethirtyeight",
		Palette:    []string{"008FD5", "FC4F30", "E5AE38", "6D904F", "8B8B8B", "810F7C"},
		Background: "F0F0F0",
		Gridlines:  true,
		TitleSize:  16,
	},
	"classic": {
		Name:      "classic",
		Palette:   []string{"1F77B4", "FF7F0E", "2CA02C", "D62728", "9467BD", "8C564B"},
		Gridlines: false,
		TitleSize: 14,
	},
}

// DefaultStyle returns the fivethirtyeight look at the default figure size
func DefaultStyle() Style {
	s := styles["fivethirtyeight"]
	s.Palette = append([]string(nil), s.Palette...)
	s.Width = 640
	s.Height = 384
	return s
}

// StyleFromConfig resolves a named style and applies the configured size and legend.
// Unknown names fall back to the default style.
func StyleFromConfig(cfg config.ChartsConfig) Style {
	s, ok := styles[strings.ToLower(cfg.Style)]
	if !ok {
		s = styles["fivethirtyeight"]
	}
	s.Palette = append([]string(nil), s.Palette...)
	s.Width = cfg.Width
	s.Height = cfg.Height
	s.ShowLegend = cfg.ShowLegend
	if s.Width == 0 || s.Height == 0 {
		d := DefaultStyle()
		s.Width, s.Height = d.Width, d.Height
	}
	return s
}

// SeriesColor returns the palette color for the i-th default series
func (s Style) SeriesColor(i int) string {
	if len(s.Palette) == 0 {
		return "008FD5"
	}
	return s.Palette[i%len(s.Palette)]
}

var namedColors = map[string]string{
	"black":    "000000",
	"blue":     "0000FF",
	"cyan":     "00FFFF",
	"darkblue": "00008B",
	"darkred":  "8B0000",
	"gold":     "FFD700",
	"gray":     "808080",
	"green":    "008000",
	"grey":     "808080",
	"navy":     "000080",
	"orange":   "FFA500",
	"purple":   "800080",
	"red":      "FF0000",
	"silver":   "C0C0C0",
	"teal":     "008080",
	"white":    "FFFFFF",
	"yellow":   "FFFF00",
}

// ResolveColor converts a color name or a #RRGGBB value to upper-case RRGGBB
func ResolveColor(color string) (string, bool) {
	c := strings.ToLower(strings.TrimSpace(color))
	if hex, ok := namedColors[c]; ok {
		return hex, true
	}
	c = strings.TrimPrefix(c, "#")
	if len(c) != 6 {
		return "", false
	}
	for _, r := range c {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return "", false
		}
	}
	return strings.ToUpper(c), true
}
