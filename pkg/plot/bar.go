package plot

import (
	"fmt"
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/MacroPower/csvdash/pkg/stats"
)

const (
	barWidth   = 40
	barSpacing = 20
)

// TopBar renders the mean of each group as a bar chart, in the given order.
func TopBar(w io.Writer, groups []stats.Group, opts Options) error {
	rp, err := opts.Format.provider()
	if err != nil {
		return err
	}

	if len(groups) == 0 {
		return ErrNoData
	}

	lo, hi := 0.0, 0.0
	bars := make([]chart.Value, 0, len(groups))

	for i, g := range groups {
		lo = math.Min(lo, g.Mean)
		hi = math.Max(hi, g.Mean)

		name := g.Name
		if g.Color != "" {
			name = fmt.Sprintf("%s (%s)", g.Name, g.Color)
		}

		col := seriesColor(i)
		bars = append(bars, chart.Value{
			Label: label(name),
			Value: g.Mean,
			Style: chart.Style{FillColor: col, StrokeColor: col},
		})
	}

	width, height := opts.size(len(groups))
	width = max(width, len(groups)*(barWidth+barSpacing)+200)

	bc := chart.BarChart{
		Width:        width,
		Height:       height,
		BarWidth:     barWidth,
		BarSpacing:   barSpacing,
		Background:   chart.Style{Padding: chart.Box{Top: 40}},
		UseBaseValue: true,
		BaseValue:    0,
		YAxis: chart.YAxis{
			Name:  label(opts.YLabel),
			Range: paddedRange(lo, hi),
		},
		Bars:     bars,
		Elements: []chart.Renderable{titleElement(label(opts.Title), width)},
	}

	return render(rp, w, bc)
}

