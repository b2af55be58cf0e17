// Package render draws a SeriesMatrix as a bar or line chart.
//
// With an output directory the chart is written as a PNG named
// <analysis>_<chart>.png; without one it is displayed as a console table.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/linesd/az-fda/pkg/analysis"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

var (
	// ErrUnsupportedChartType is returned for an unknown chart kind.
	ErrUnsupportedChartType = errors.New("unsupported chart type")

	// ErrEmptyMatrix is returned when there is nothing to draw.
	ErrEmptyMatrix = errors.New("series matrix has no years")

	// ErrNilMatrix is returned when no matrix is given at all.
	ErrNilMatrix = errors.New("series matrix is nil")
)

// ChartKind selects how series are drawn.
type ChartKind string

const (
	// Bar draws one bar group per year.
	Bar ChartKind = "bar"

	// Line draws one marked line per series.
	Line ChartKind = "line"
)

// ChartKinds returns every supported chart kind.
func ChartKinds() []ChartKind {
	return []ChartKind{Line, Bar}
}

// ParseChartKind converts a user-supplied name into a ChartKind.
func ParseChartKind(s string) (ChartKind, error) {
	k := ChartKind(s)
	if !slices.Contains(ChartKinds(), k) {
		return "", fmt.Errorf("%w: %q (only %q and %q are implemented)", ErrUnsupportedChartType, s, Bar, Line)
	}
	return k, nil
}

// Config holds renderer configuration.
type Config struct {
	// Width and Height of the saved image
	Width  vg.Length
	Height vg.Length

	// DPI of the saved image
	DPI int
}

// DefaultConfig returns the default renderer configuration.
func DefaultConfig() Config {
	return Config{
		Width:  8 * vg.Inch,
		Height: 5 * vg.Inch,
		DPI:    300,
	}
}

// Renderer draws series matrices.
type Renderer struct {
	out    io.Writer
	config Config
	logger zerolog.Logger
}

// New creates a renderer that displays tables on out.
func New(out io.Writer, config Config) *Renderer {
	if config.Width <= 0 {
		config.Width = 8 * vg.Inch
	}
	if config.Height <= 0 {
		config.Height = 5 * vg.Inch
	}
	if config.DPI <= 0 {
		config.DPI = 300
	}
	return &Renderer{
		out:    out,
		config: config,
		logger: log.With().Str("component", "render").Logger(),
	}
}

// FileName returns the image name for an analysis and chart kind.
func FileName(analysisName string, chart ChartKind) string {
	return fmt.Sprintf("%s_%s.png", analysisName, chart)
}

// Render saves the chart under dir and returns its path. An empty dir
// displays the matrix instead and returns an empty path.
func (r *Renderer) Render(m *analysis.SeriesMatrix, analysisName string, chart ChartKind, dir string) (string, error) {
	if _, err := ParseChartKind(string(chart)); err != nil {
		return "", err
	}
	if m == nil {
		return "", ErrNilMatrix
	}

	if dir == "" {
		_, err := fmt.Fprintln(r.out, MatrixTable(m))
		return "", err
	}

	p, err := Plot(m, chart)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create figures dir: %w", err)
	}
	path := filepath.Join(dir, FileName(analysisName, chart))
	if err := r.save(p, path); err != nil {
		return "", err
	}

	r.logger.Info().
		Str("path", path).
		Str("chart", string(chart)).
		Int("years", len(m.Years)).
		Int("series", len(m.Series)).
		Msg("Chart saved")

	return path, nil
}

func (r *Renderer) save(p *plot.Plot, path string) error {
	c := vgimg.NewWith(vgimg.UseWH(r.config.Width, r.config.Height), vgimg.UseDPI(r.config.DPI))
	p.Draw(draw.New(c))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	defer f.Close()

	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(f); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return f.Close()
}

// Plot builds the chart for m without drawing it.
func Plot(m *analysis.SeriesMatrix, chart ChartKind) (*plot.Plot, error) {
	if m == nil {
		return nil, ErrNilMatrix
	}
	if len(m.Years) == 0 {
		return nil, ErrEmptyMatrix
	}

	p := plot.New()
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Average number of ingredients"
	p.Legend.Top = true

	grid := plotter.NewGrid()
	grid.Vertical.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	grid.Horizontal.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	grid.Vertical.Color = color.Gray{Y: 200}
	grid.Horizontal.Color = color.Gray{Y: 200}
	p.Add(grid)

	var err error
	switch chart {
	case Bar:
		err = addBars(p, m)
	case Line:
		err = addLines(p, m)
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedChartType, chart)
	}
	if err != nil {
		return nil, err
	}

	p.NominalX(m.Years...)
	return p, nil
}

// addBars draws one bar group per year with the series side by side.
func addBars(p *plot.Plot, m *analysis.SeriesMatrix) error {
	n := len(m.Series)
	width := vg.Points(48 / float64(n))

	for j, series := range m.Series {
		bars, err := plotter.NewBarChart(plotter.Values(m.Column(series)), width)
		if err != nil {
			return fmt.Errorf("bar chart for %s: %w", series, err)
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = plotutil.Color(j)
		bars.Offset = vg.Length(float64(j)-float64(n-1)/2) * width

		p.Add(bars)
		p.Legend.Add(SeriesLabel(series), bars)
	}
	return nil
}

// addLines draws one line per series with a marker at every year.
func addLines(p *plot.Plot, m *analysis.SeriesMatrix) error {
	for j, series := range m.Series {
		column := m.Column(series)
		pts := make(plotter.XYs, len(column))
		for i, v := range column {
			pts[i].X = float64(i)
			pts[i].Y = v
		}

		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			return fmt.Errorf("line chart for %s: %w", series, err)
		}
		line.Color = plotutil.Color(j)
		points.Color = plotutil.Color(j)
		points.Shape = plotutil.Shape(j)

		p.Add(line, points)
		p.Legend.Add(SeriesLabel(series), line, points)
	}
	return nil
}

// SeriesLabel returns the legend text for a series.
func SeriesLabel(series string) string {
	if series == analysis.GenericSeries {
		return "Average Number of Ingredients"
	}
	return series
}
