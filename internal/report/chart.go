package report

import (
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Point is one labelled value on a chart.
type Point struct {
	Label string
	Value float64
}

const (
	chartWidth  = 8 * vg.Inch
	chartHeight = 4 * vg.Inch
)

// CategoryChart writes a PNG bar chart of points.
func CategoryChart(w io.Writer, title string, points []Point) error {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "FCFA"

	if len(points) > 0 {
		values := make(plotter.Values, len(points))
		labels := make([]string, len(points))
		for i, pt := range points {
			values[i] = pt.Value
			labels[i] = pt.Label
		}
		bars, err := plotter.NewBarChart(values, vg.Points(28))
		if err != nil {
			return err
		}
		bars.Color = plotutil.Color(0)
		bars.LineStyle.Width = vg.Length(0)
		p.Add(bars)
		p.NominalX(labels...)
	}
	return writePNG(w, p)
}

// TrendChart writes a PNG line chart of points in the given order.
func TrendChart(w io.Writer, title string, points []Point) error {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "FCFA"

	if len(points) > 0 {
		xys := make(plotter.XYs, len(points))
		labels := make([]string, len(points))
		for i, pt := range points {
			xys[i].X = float64(i)
			xys[i].Y = pt.Value
			labels[i] = pt.Label
		}
		if err := plotutil.AddLinePoints(p, "Disbursed", xys); err != nil {
			return err
		}
		p.NominalX(labels...)
	}
	return writePNG(w, p)
}

func writePNG(w io.Writer, p *plot.Plot) error {
	wt, err := p.WriterTo(chartWidth, chartHeight, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
