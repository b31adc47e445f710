package charts

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"

	apperrors "cryptocap/internal/errors"
)

const (
	maxSheetName = 31
	noDataNote   = "no data"

	titleRow  = 1
	panelRow  = 2
	headerRow = 3
	dataRow   = 4
)

// ExcelRenderer draws every chart as a native column chart on its own worksheet.
// The data each chart plots is written next to it on the same sheet.
type ExcelRenderer struct {
	mu         sync.Mutex
	file       *excelize.File
	style      Style
	logger     *slog.Logger
	titleStyle int
	sheets     map[string]struct{}
	figures    []Figure
}

// NewExcelRenderer creates a renderer backed by a new in-memory workbook
func NewExcelRenderer(style Style, logger *slog.Logger) (*ExcelRenderer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f := excelize.NewFile()
	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: style.TitleSize},
	})
	if err != nil {
		f.Close()
		return nil, apperrors.NewRenderError("cannot create title style", err)
	}

	return &ExcelRenderer{
		file:       f,
		style:      style,
		logger:     logger.With(slog.String("component", "excel_renderer")),
		titleStyle: titleStyle,
		sheets:     make(map[string]struct{}),
	}, nil
}

// Render implements Renderer
func (r *ExcelRenderer) Render(ctx context.Context, chart Chart) (Figure, error) {
	if err := ctx.Err(); err != nil {
		return Figure{}, err
	}
	if err := chart.Validate(); err != nil {
		return Figure{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	sheet := r.uniqueSheetName(chart.ID)
	if err := r.addSheet(sheet); err != nil {
		return Figure{}, apperrors.NewRenderError("cannot add worksheet", err).WithContext("chart", chart.ID)
	}

	if err := r.writeTitle(sheet, chart.Title); err != nil {
		return Figure{}, apperrors.NewRenderError("cannot write title", err).WithContext("chart", chart.ID)
	}

	fig := Figure{ChartID: chart.ID, Sheet: sheet, Panels: len(chart.Panels), Empty: chart.Empty()}

	if fig.Empty {
		if err := r.file.SetCellValue(sheet, cellName(1, panelRow), noDataNote); err != nil {
			return Figure{}, apperrors.NewRenderError("cannot write note", err).WithContext("chart", chart.ID)
		}
		r.logger.WarnContext(ctx, "chart has no data", slog.String("chart", chart.ID))
		r.figures = append(r.figures, fig)
		return fig, nil
	}

	col := 1
	anchor := dataWidth(chart) + 2
	for i, panel := range chart.Panels {
		next, series, err := r.writePanelData(sheet, col, panel)
		if err != nil {
			return Figure{}, apperrors.NewRenderError("cannot write chart data", err).WithContext("chart", chart.ID)
		}
		col = next

		if panel.Empty() {
			continue
		}

		title := panel.Title
		if chart.Kind == KindBar {
			title = chart.Title
		}
		xc := r.buildChart(panel, series, title, i)
		if err := r.file.AddChart(sheet, cellName(anchor, panelRow), xc); err != nil {
			return Figure{}, apperrors.NewRenderError("cannot add chart", err).WithContext("chart", chart.ID)
		}
	}

	r.logger.DebugContext(ctx, "chart rendered",
		slog.String("chart", chart.ID),
		slog.String("sheet", sheet),
		slog.Int("panels", len(chart.Panels)))

	r.figures = append(r.figures, fig)
	return fig, nil
}

// Figures returns the handles of every rendered chart, in render order
func (r *ExcelRenderer) Figures() []Figure {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Figure(nil), r.figures...)
}

// SaveAs writes the workbook to path, creating its directory
func (r *ExcelRenderer) SaveAs(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewRenderError("cannot create output directory", err).WithContext("path", path)
	}
	if err := r.file.SaveAs(path); err != nil {
		return apperrors.NewRenderError("cannot save workbook", err).WithContext("path", path)
	}
	return nil
}

// WriteTo writes the workbook to w
func (r *ExcelRenderer) WriteTo(w io.Writer) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.file.WriteTo(w)
}

// Close releases the workbook
func (r *ExcelRenderer) Close() error {
	return r.file.Close()
}

// addSheet renames the default sheet for the first chart and appends the rest
func (r *ExcelRenderer) addSheet(name string) error {
	if len(r.sheets) == 0 {
		if err := r.file.SetSheetName(r.file.GetSheetName(0), name); err != nil {
			return err
		}
	} else if _, err := r.file.NewSheet(name); err != nil {
		return err
	}
	r.sheets[strings.ToLower(name)] = struct{}{}
	return nil
}

func (r *ExcelRenderer) writeTitle(sheet, title string) error {
	cell := cellName(1, titleRow)
	if err := r.file.SetCellValue(sheet, cell, title); err != nil {
		return err
	}
	return r.file.SetCellStyle(sheet, cell, cell, r.titleStyle)
}

// writePanelData writes the label and value columns of a panel starting at col,
// plus one helper column per color when bars have different colors.
// It returns the first free column and the chart series reading that data.
func (r *ExcelRenderer) writePanelData(sheet string, col int, panel Panel) (int, []excelize.ChartSeries, error) {
	f := r.file
	labelCol, valueCol := col, col+1

	if panel.Title != "" {
		if err := f.SetCellValue(sheet, cellName(labelCol, panelRow), panel.Title); err != nil {
			return 0, nil, err
		}
	}

	valueHeader := panel.YLabel
	if valueHeader == "" {
		valueHeader = "value"
	}
	labelHeader := panel.XLabel
	if labelHeader == "" {
		labelHeader = "label"
	}
	if err := f.SetCellValue(sheet, cellName(labelCol, headerRow), labelHeader); err != nil {
		return 0, nil, err
	}
	if err := f.SetCellValue(sheet, cellName(valueCol, headerRow), valueHeader); err != nil {
		return 0, nil, err
	}

	for i, p := range panel.Series {
		row := dataRow + i
		if err := f.SetCellValue(sheet, cellName(labelCol, row), p.Label); err != nil {
			return 0, nil, err
		}
		if err := f.SetCellValue(sheet, cellName(valueCol, row), p.Value); err != nil {
			return 0, nil, err
		}
	}

	next := valueCol + 1
	if panel.Empty() {
		return next + 1, nil, nil
	}

	lastRow := dataRow + len(panel.Series) - 1
	categories := rangeRef(sheet, labelCol, dataRow, lastRow)

	groups := colorGroups(panel.BarColors())
	if len(groups) <= 1 {
		s := excelize.ChartSeries{
			Name:       headerRef(sheet, valueCol),
			Categories: categories,
			Values:     rangeRef(sheet, valueCol, dataRow, lastRow),
			Fill:       solidFill(r.style.SeriesColor(0)),
		}
		if len(groups) == 1 {
			hex, _ := ResolveColor(groups[0].color)
			s.Fill = solidFill(hex)
		}
		return next + 1, []excelize.ChartSeries{s}, nil
	}

	series := make([]excelize.ChartSeries, 0, len(groups))
	for _, g := range groups {
		if err := f.SetCellValue(sheet, cellName(next, headerRow), g.color); err != nil {
			return 0, nil, err
		}
		for _, idx := range g.bars {
			if err := f.SetCellValue(sheet, cellName(next, dataRow+idx), panel.Series[idx].Value); err != nil {
				return 0, nil, err
			}
		}
		hex, _ := ResolveColor(g.color)
		series = append(series, excelize.ChartSeries{
			Name:       headerRef(sheet, next),
			Categories: categories,
			Values:     rangeRef(sheet, next, dataRow, lastRow),
			Fill:       solidFill(hex),
		})
		next++
	}
	return next + 1, series, nil
}

func (r *ExcelRenderer) buildChart(panel Panel, series []excelize.ChartSeries, title string, index int) *excelize.Chart {
	varyColors := false
	legend := "none"
	if r.style.ShowLegend {
		legend = "bottom"
	}

	c := &excelize.Chart{
		Type:       excelize.Col,
		Series:     series,
		Dimension:  excelize.ChartDimension{Width: r.style.Width, Height: r.style.Height},
		Format:     excelize.GraphicOptions{OffsetX: index * (int(r.style.Width) + 20)},
		Legend:     excelize.ChartLegend{Position: legend},
		VaryColors: &varyColors,
		XAxis:      excelize.ChartAxis{Title: richText(panel.XLabel)},
		YAxis: excelize.ChartAxis{
			MajorGridLines: r.style.Gridlines,
			Title:          richText(panel.YLabel),
		},
		ShowBlanksAs: "gap",
	}
	if title != "" {
		c.Title = richText(title)
	}
	if panel.LogScale {
		c.YAxis.LogBase = 10
	}
	if len(series) > 1 {
		overlap := 100
		c.Overlap = &overlap
	}
	if r.style.Background != "" {
		c.Fill = solidFill(r.style.Background)
		c.PlotArea.Fill = solidFill(r.style.Background)
	}
	return c
}

// uniqueSheetName derives a valid, unused worksheet name from a chart id
func (r *ExcelRenderer) uniqueSheetName(id string) string {
	base := SanitizeSheetName(id)
	name := base
	for n := 2; ; n++ {
		if _, taken := r.sheets[strings.ToLower(name)]; !taken {
			return name
		}
		suffix := fmt.Sprintf("_%d", n)
		name = truncateRunes(base, maxSheetName-len(suffix)) + suffix
	}
}

// SanitizeSheetName replaces characters Excel rejects and truncates to 31 characters
func SanitizeSheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	name = strings.Trim(name, "'")
	if name == "" {
		name = "chart"
	}
	return truncateRunes(name, maxSheetName)
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

type colorGroup struct {
	color string
	bars  []int
}

// colorGroups groups bar indexes by color in first-seen order
func colorGroups(colors []string) []colorGroup {
	var groups []colorGroup
	index := map[string]int{}
	for i, c := range colors {
		key := strings.ToLower(strings.TrimSpace(c))
		g, ok := index[key]
		if !ok {
			g = len(groups)
			index[key] = g
			groups = append(groups, colorGroup{color: key})
		}
		groups[g].bars = append(groups[g].bars, i)
	}
	return groups
}

func solidFill(hex string) excelize.Fill {
	return excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{hex}}
}

func richText(s string) []excelize.RichTextRun {
	if s == "" {
		return nil
	}
	return []excelize.RichTextRun{{Text: s}}
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func quoteSheet(sheet string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
}

func rangeRef(sheet string, col, fromRow, toRow int) string {
	from, _ := excelize.CoordinatesToCellName(col, fromRow, true)
	to, _ := excelize.CoordinatesToCellName(col, toRow, true)
	return quoteSheet(sheet) + "!" + from + ":" + to
}

func headerRef(sheet string, col int) string {
	cell, _ := excelize.CoordinatesToCellName(col, headerRow, true)
	return quoteSheet(sheet) + "!" + cell
}

// dataWidth returns the number of columns the chart's data blocks occupy
func dataWidth(chart Chart) int {
	width := 0
	for _, p := range chart.Panels {
		width += 3
		if groups := colorGroups(p.BarColors()); len(groups) > 1 {
			width += len(groups)
		}
	}
	return width
}
