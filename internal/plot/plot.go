// Package plot renders the comparison figures as PNG bytes.
package plot

import (
	"bytes"
	"fmt"

	"bioeq/domain/core"
	"bioeq/domain/study"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// EndpointComparison draws side-by-side box plots of the endpoint for the
// reference and test formulations of one study.
func EndpointComparison(st *study.Study) ([]byte, error) {
	test, ref := st.ByFormulation()
	if len(test) == 0 || len(ref) == 0 {
		return nil, core.NewInsufficientDataError("comparison plot", 1, 0)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s: %s by formulation", st.Name, st.EndpointName)
	p.Y.Label.Text = st.EndpointName

	refBox, err := plotter.NewBoxPlot(vg.Points(40), 0, plotter.Values(ref))
	if err != nil {
		return nil, fmt.Errorf("reference box plot: %w", err)
	}
	testBox, err := plotter.NewBoxPlot(vg.Points(40), 1, plotter.Values(test))
	if err != nil {
		return nil, fmt.Errorf("test box plot: %w", err)
	}
	p.Add(refBox, testBox)
	p.NominalX(study.FormulationReference, study.FormulationTest)

	return encodePNG(p)
}

// CurvePoint is one (n, power) pair of a power curve
type CurvePoint struct {
	N     int
	Power float64
}

// PowerCurve draws estimated power against sample size for one planning
// scenario, with the target power as a horizontal rule.
func PowerCurve(title string, points []CurvePoint, target float64) ([]byte, error) {
	if len(points) == 0 {
		return nil, core.NewInsufficientDataError("power curve", 1, 0)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "sample size n"
	p.Y.Label.Text = "estimated power"
	p.Y.Min, p.Y.Max = 0, 1.05

	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i].X = float64(pt.N)
		xys[i].Y = pt.Power
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return nil, fmt.Errorf("power line: %w", err)
	}
	p.Add(line)

	if target > 0 && target <= 1 {
		rule := plotter.XYs{
			{X: xys[0].X, Y: target},
			{X: xys[len(xys)-1].X, Y: target},
		}
		targetLine, err := plotter.NewLine(rule)
		if err != nil {
			return nil, fmt.Errorf("target line: %w", err)
		}
		targetLine.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
		p.Add(targetLine)
	}

	return encodePNG(p)
}

func encodePNG(p *plot.Plot) ([]byte, error) {
	wt, err := p.WriterTo(5*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return nil, fmt.Errorf("encode plot: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write plot: %w", err)
	}
	return buf.Bytes(), nil
}
