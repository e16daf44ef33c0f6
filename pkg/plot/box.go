package plot

import (
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/MacroPower/csvdash/pkg/stats"
)

const boxHalfWidth = 0.3

// BoxPlot renders one box per group to w.
func BoxPlot(w io.Writer, groups []stats.GroupSummary, opts Options) error {
	rp, err := opts.Format.provider()
	if err != nil {
		return err
	}

	groups = nonEmpty(groups)
	if len(groups) == 0 {
		return ErrNoData
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	ticks := make([]chart.Tick, 0, len(groups))
	series := []chart.Series{}

	for i, g := range groups {
		x := float64(i)
		col := seriesColor(i)
		lower, upper := whiskers(g)

		lo = math.Min(lo, g.Min)
		hi = math.Max(hi, g.Max)

		ticks = append(ticks, chart.Tick{Value: x, Label: label(g.Name)})
		series = append(series, boxSeries(x, g, lower, upper, col)...)

		if opts.Points {
			series = append(series, pointSeries(x, g.Values, col))
		}
	}

	// Ticks at the range ends keep the axis span when there is one group.
	xMin, xMax := -0.5-boxHalfWidth, float64(len(groups))-0.5+boxHalfWidth
	ticks = append([]chart.Tick{{Value: xMin}}, ticks...)
	ticks = append(ticks, chart.Tick{Value: xMax})

	width, height := opts.size(len(groups))

	ch := chart.Chart{
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Ticks: ticks,
			Range: &chart.ContinuousRange{Min: xMin, Max: xMax},
		},
		YAxis: chart.YAxis{
			Name:  label(opts.YLabel),
			Range: paddedRange(lo, hi),
		},
		Series:   series,
		Elements: []chart.Renderable{titleElement(label(opts.Title), width)},
	}

	return render(rp, w, ch)
}

func nonEmpty(groups []stats.GroupSummary) []stats.GroupSummary {
	out := make([]stats.GroupSummary, 0, len(groups))
	for _, g := range groups {
		if g.Count > 0 {
			out = append(out, g)
		}
	}

	return out
}

// whiskers returns the most extreme values within 1.5 IQR of the box.
func whiskers(g stats.GroupSummary) (float64, float64) {
	iqr := g.Q3 - g.Q1
	loFence, hiFence := g.Q1-1.5*iqr, g.Q3+1.5*iqr

	lower, upper := g.Q1, g.Q3
	for _, v := range g.Values {
		if v >= loFence && v < lower {
			lower = v
		}

		if v <= hiFence && v > upper {
			upper = v
		}
	}

	return lower, upper
}

func boxSeries(x float64, g stats.GroupSummary, lower, upper float64, col drawing.Color) []chart.Series {
	left, right := x-boxHalfWidth, x+boxHalfWidth
	capL, capR := x-boxHalfWidth/2, x+boxHalfWidth/2

	line := chart.Style{StrokeColor: col, StrokeWidth: 2}
	bold := chart.Style{StrokeColor: col, StrokeWidth: 4}

	return []chart.Series{
		chart.ContinuousSeries{
			Name:    g.Name,
			Style:   line,
			XValues: []float64{left, right, right, left, left},
			YValues: []float64{g.Q1, g.Q1, g.Q3, g.Q3, g.Q1},
		},
		chart.ContinuousSeries{
			Style:   bold,
			XValues: []float64{left, right},
			YValues: []float64{g.Median, g.Median},
		},
		chart.ContinuousSeries{
			Style:   line,
			XValues: []float64{x, x},
			YValues: []float64{lower, g.Q1},
		},
		chart.ContinuousSeries{
			Style:   line,
			XValues: []float64{x, x},
			YValues: []float64{g.Q3, upper},
		},
		chart.ContinuousSeries{
			Style:   line,
			XValues: []float64{capL, capR},
			YValues: []float64{lower, lower},
		},
		chart.ContinuousSeries{
			Style:   line,
			XValues: []float64{capL, capR},
			YValues: []float64{upper, upper},
		},
	}
}

// pointSeries spreads values over the box width with a fixed jitter pattern
// so repeated renders are identical.
func pointSeries(x float64, values []float64, col drawing.Color) chart.Series {
	xs := make([]float64, len(values))
	for i := range values {
		xs[i] = x + float64(i%7-3)*boxHalfWidth/4
	}

	return chart.ContinuousSeries{
		Style: chart.Style{
			StrokeColor: drawing.ColorTransparent,
			StrokeWidth: 1,
			DotColor:    col.WithAlpha(128),
			DotWidth:    2,
		},
		XValues: xs,
		YValues: values,
	}
}
