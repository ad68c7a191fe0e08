// Package report draws diagnostic plots of a colorization run.
package report

import (
	"fmt"
	"image/color"

	"github.com/ecopia-map/cloud_colorizer/internal/raster"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// DefaultMaxPlotPoints bounds the number of points drawn, larger sets are thinned uniformly
const DefaultMaxPlotPoints = 20000

var (
	coveredColor   = color.RGBA{R: 30, G: 120, B: 200, A: 255}
	uncoveredColor = color.RGBA{R: 220, G: 40, B: 40, A: 255}
	outlineColor   = color.RGBA{R: 40, G: 40, B: 40, A: 255}
)

// CoveragePlot shows the points in the raster plane, split between covered and fallback points,
// over the outlines of the tiles
type CoveragePlot struct {
	Title     string
	MaxPoints int
}

func NewCoveragePlot(title string) *CoveragePlot {
	return &CoveragePlot{
		Title:     title,
		MaxPoints: DefaultMaxPlotPoints,
	}
}

// Build returns the plot of the points (xs[i], ys[i]) over the tiles of the catalog
func (cp *CoveragePlot) Build(xs, ys []float64, catalog *raster.Catalog) (*plot.Plot, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("%d x values but %d y values", len(xs), len(ys))
	}

	p := plot.New()
	p.Title.Text = cp.Title
	p.X.Label.Text = "X (m)"
	p.Y.Label.Text = "Y (m)"

	for i, tile := range catalog.Tiles() {
		b := tile.Bounds
		outline, err := plotter.NewPolygon(plotter.XYs{
			{X: b.Left, Y: b.Bottom},
			{X: b.Right, Y: b.Bottom},
			{X: b.Right, Y: b.Top},
			{X: b.Left, Y: b.Top},
		})
		if err != nil {
			return nil, err
		}
		outline.LineStyle.Color = outlineColor
		outline.LineStyle.Width = vg.Points(1)
		p.Add(outline)
		if i == 0 {
			p.Legend.Add("tiles", outline)
		}
	}

	covered, uncovered := cp.split(xs, ys, catalog)
	for _, s := range []struct {
		name string
		xys  plotter.XYs
		c    color.Color
	}{
		{"covered", covered, coveredColor},
		{"fallback", uncovered, uncoveredColor},
	} {
		if len(s.xys) == 0 {
			continue
		}
		scatter, err := plotter.NewScatter(s.xys)
		if err != nil {
			return nil, err
		}
		scatter.GlyphStyle = draw.GlyphStyle{Color: s.c, Radius: vg.Points(1), Shape: draw.CircleGlyph{}}
		p.Add(scatter)
		p.Legend.Add(fmt.Sprintf("%s (%d)", s.name, len(s.xys)), scatter)
	}

	p.Legend.Top = true
	return p, nil
}

// Save builds the plot and writes it, the format follows the file extension
func (cp *CoveragePlot) Save(filePath string, xs, ys []float64, catalog *raster.Catalog) error {
	p, err := cp.Build(xs, ys, catalog)
	if err != nil {
		return err
	}
	if err := p.Save(8*vg.Inch, 8*vg.Inch, filePath); err != nil {
		return fmt.Errorf("cannot save coverage plot %s: %w", filePath, err)
	}
	return nil
}

func (cp *CoveragePlot) split(xs, ys []float64, catalog *raster.Catalog) (covered, uncovered plotter.XYs) {
	step := 1
	if cp.MaxPoints > 0 && len(xs) > cp.MaxPoints {
		step = (len(xs) + cp.MaxPoints - 1) / cp.MaxPoints
	}

	for i := 0; i < len(xs); i += step {
		xy := plotter.XY{X: xs[i], Y: ys[i]}
		if isCovered(xs[i], ys[i], catalog) {
			covered = append(covered, xy)
		} else {
			uncovered = append(uncovered, xy)
		}
	}
	return covered, uncovered
}

func isCovered(x, y float64, catalog *raster.Catalog) bool {
	for _, t := range catalog.Tiles() {
		if t.Contains(x, y) {
			return true
		}
	}
	return false
}
