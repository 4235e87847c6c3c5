package render

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/YuminosukeSato/treelab/pkg/errors"
	"github.com/YuminosukeSato/treelab/sklearn/tree"
)

// Default mesh used by DecisionBoundary.
const (
	DefaultStep   = 0.02
	DefaultMargin = 0.5
)

// maxMeshCells bounds the number of predictions DecisionBoundary makes.
const maxMeshCells = 1 << 20

// PlotOptions controls Scatter and DecisionBoundary.
type PlotOptions struct {
	Title        string
	FeatureNames []string // axis labels, default X1 and X2
	ClassNames   []string // legend entries, default "class k"
	Step         float64  // mesh step, default DefaultStep
	Margin       float64  // padding around the data, default DefaultMargin
	NJobs        int      // goroutines used to predict the mesh
}

func (o PlotOptions) axis(i int) string {
	if len(o.FeatureNames) > i {
		return o.FeatureNames[i]
	}
	return fmt.Sprintf("X%d", i+1)
}

func (o PlotOptions) class(k int) string {
	if len(o.ClassNames) > k {
		return o.ClassNames[k]
	}
	return fmt.Sprintf("class %d", k)
}

// Scatter plots two-feature points coloured by their integer label.
func Scatter(X, y mat.Matrix, opts PlotOptions) (*plot.Plot, error) {
	p := newPlot(opts)
	if err := addPoints(p, X, y, opts); err != nil {
		return nil, err
	}
	return p, nil
}

func newPlot(opts PlotOptions) *plot.Plot {
	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = opts.axis(0)
	p.Y.Label.Text = opts.axis(1)
	return p
}

func addPoints(p *plot.Plot, X, y mat.Matrix, opts PlotOptions) error {
	groups, err := groupByClass(X, y)
	if err != nil {
		return err
	}
	for k := 0; k < len(groups); k++ {
		if len(groups[k]) == 0 {
			continue
		}
		s, err := plotter.NewScatter(groups[k])
		if err != nil {
			return errors.Wrapf(err, "scatter class %d", k)
		}
		s.GlyphStyle.Color = classColor(k, true)
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		s.GlyphStyle.Radius = vg.Points(3)
		p.Add(s)
		p.Legend.Add(opts.class(k), s)
	}
	return nil
}

func groupByClass(X, y mat.Matrix) ([]plotter.XYs, error) {
	n, f := X.Dims()
	yn, _ := y.Dims()
	if f != 2 {
		return nil, errors.NewDimensionError("render.Scatter", 2, f, 1)
	}
	if yn != n {
		return nil, errors.NewDimensionError("render.Scatter", n, yn, 0)
	}

	var groups []plotter.XYs
	for i := 0; i < n; i++ {
		v := y.At(i, 0)
		if v < 0 || v != math.Trunc(v) {
			return nil, errors.NewInvalidRowError("render.Scatter", i, fmt.Sprintf("label %v is not a class index", v))
		}
		k := int(v)
		for len(groups) <= k {
			groups = append(groups, nil)
		}
		groups[k] = append(groups[k], plotter.XY{X: X.At(i, 0), Y: X.At(i, 1)})
	}
	return groups, nil
}

// AddSplitLine draws the rule X[feature] <= threshold across p as a dashed
// vertical (feature 0) or horizontal (feature 1) line.
func AddSplitLine(p *plot.Plot, feature int, threshold float64) error {
	var pts plotter.XYs
	switch feature {
	case 0:
		pts = plotter.XYs{{X: threshold, Y: p.Y.Min}, {X: threshold, Y: p.Y.Max}}
	case 1:
		pts = plotter.XYs{{X: p.X.Min, Y: threshold}, {X: p.X.Max, Y: threshold}}
	default:
		return errors.NewValidationError("feature", "must be 0 or 1 on a two-feature plot", feature)
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return errors.Wrap(err, "split line")
	}
	line.LineStyle.Width = vg.Points(1.5)
	line.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(3)}
	line.LineStyle.Color = color.Black
	p.Add(line)
	p.Legend.Add(fmt.Sprintf("X%d <= %.2f", feature+1, threshold), line)
	return nil
}

// mesh is a regular grid of predicted class indices; it implements
// plotter.GridXYZ.
type mesh struct {
	x0, y0, step float64
	cols, rows   int
	z            []float64
}

func (m *mesh) Dims() (c, r int)   { return m.cols, m.rows }
func (m *mesh) Z(c, r int) float64 { return m.z[r*m.cols+c] }
func (m *mesh) X(c int) float64    { return m.x0 + float64(c)*m.step }
func (m *mesh) Y(r int) float64    { return m.y0 + float64(r)*m.step }

// newMesh predicts every point of the grid covering X padded by margin.
func newMesh(t *tree.Tree, X mat.Matrix, step, margin float64, nJobs int) (*mesh, error) {
	n, _ := X.Dims()
	if n == 0 {
		return nil, errors.NewInvalidDatasetError("render.DecisionBoundary", "no points")
	}
	xMin, xMax := math.Inf(1), math.Inf(-1)
	yMin, yMax := math.Inf(1), math.Inf(-1)
	for i := 0; i < n; i++ {
		xMin, xMax = math.Min(xMin, X.At(i, 0)), math.Max(xMax, X.At(i, 0))
		yMin, yMax = math.Min(yMin, X.At(i, 1)), math.Max(yMax, X.At(i, 1))
	}

	// sized in float64 so a huge or infinite spread cannot wrap around int
	cols := math.Ceil((xMax-xMin+2*margin)/step) + 1
	rows := math.Ceil((yMax-yMin+2*margin)/step) + 1
	if !(cols*rows <= maxMeshCells) {
		return nil, errors.NewValidationError("step", fmt.Sprintf("mesh of %g×%g cells is too fine", cols, rows), step)
	}
	m := &mesh{
		x0:   xMin - margin,
		y0:   yMin - margin,
		step: step,
		cols: int(cols),
		rows: int(rows),
	}

	points := make([][]float64, 0, m.cols*m.rows)
	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			points = append(points, []float64{m.X(c), m.Y(r)})
		}
	}
	labels, err := t.PredictBatch(points, nJobs)
	if err != nil {
		return nil, err
	}
	m.z = make([]float64, len(labels))
	for i, k := range labels {
		m.z[i] = float64(k)
	}
	return m, nil
}

type classPalette []color.Color

func (p classPalette) Colors() []color.Color { return p }

// DecisionBoundary shades the regions t assigns to each class over a mesh
// around the two-feature points X and overlays the points coloured by y.
func DecisionBoundary(t *tree.Tree, X, y mat.Matrix, opts PlotOptions) (*plot.Plot, error) {
	if t.NFeatures != 2 {
		return nil, errors.NewDimensionError("render.DecisionBoundary", 2, t.NFeatures, 1)
	}
	if _, f := X.Dims(); f != 2 {
		return nil, errors.NewDimensionError("render.DecisionBoundary", 2, f, 1)
	}
	step, margin := opts.Step, opts.Margin
	if step <= 0 {
		step = DefaultStep
	}
	if margin < 0 {
		margin = 0
	} else if margin == 0 {
		margin = DefaultMargin
	}

	m, err := newMesh(t, X, step, margin, opts.NJobs)
	if err != nil {
		return nil, err
	}

	pal := make(classPalette, t.NClasses)
	for k := range pal {
		pal[k] = light(classColor(k, true))
	}
	hm := plotter.NewHeatMap(m, pal)
	hm.Min, hm.Max = 0, float64(t.NClasses-1)
	if t.NClasses == 1 {
		hm.Max = 1
	}

	p := newPlot(opts)
	p.Add(hm)
	if err := addPoints(p, X, y, opts); err != nil {
		return nil, err
	}
	return p, nil
}

// Save writes p to path; the format follows the extension (png, svg, pdf, ...).
func Save(p *plot.Plot, path string) error {
	if err := p.Save(6*vg.Inch, 5*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "save plot %s", path)
	}
	return nil
}
