package plot

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	// ErrNoData indicates there is nothing to plot.
	ErrNoData = errors.New("no data to plot")

	// ErrFormat indicates an unsupported output format.
	ErrFormat = errors.New("unsupported format")

	// ErrRender indicates go-chart failed to render.
	ErrRender = errors.New("render chart")
)

type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ParseFormat parses an output format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatSVG, FormatPNG:
		return f, nil
	}

	return "", fmt.Errorf("%w: %q", ErrFormat, s)
}

// ContentType returns the MIME type of images in format f.
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}

	return "image/svg+xml"
}

func (f Format) provider() (chart.RendererProvider, error) {
	switch f {
	case FormatSVG, "":
		return chart.SVG, nil
	case FormatPNG:
		return chart.PNG, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrFormat, string(f))
}

// Options control chart appearance.
type Options struct {
	Format Format
	Title  string
	YLabel string
	Width  int
	Height int
	// Points draws every value next to its box.
	Points bool
}

func (o Options) size(n int) (int, int) {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = max(640, 80*n+160)
	}

	if h <= 0 {
		h = 420
	}

	return w, h
}

// labelReplacer strips markup from labels, which go-chart writes into SVG
// verbatim.
var labelReplacer = strings.NewReplacer("<", "", ">", "", "&", "+", `"`, "'")

func label(s string) string {
	return labelReplacer.Replace(s)
}

// paddedRange returns an axis range covering lo..hi with a 5% margin. The
// bounds are clamped to finite values.
func paddedRange(lo, hi float64) *chart.ContinuousRange {
	pad := hi*0.05 - lo*0.05
	if pad == 0 {
		pad = math.Max(1, math.Abs(hi)*0.05)
	}

	return &chart.ContinuousRange{
		Min: math.Max(lo-pad, -math.MaxFloat64),
		Max: math.Min(hi+pad, math.MaxFloat64),
	}
}

func render(rp chart.RendererProvider, w io.Writer, r interface {
	Render(chart.RendererProvider, io.Writer) error
},
) error {
	if err := r.Render(rp, w); err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}

	return nil
}

func seriesColor(i int) drawing.Color {
	return chart.GetDefaultColor(i)
}

// titleElement draws a chart title. The charts' own titles are drawn with
// whatever text rotation the Y axis name left on the renderer.
func titleElement(title string, width int) chart.Renderable {
	return func(r chart.Renderer, _ chart.Box, defaults chart.Style) {
		if title == "" {
			return
		}

		r.ClearTextRotation()
		r.SetFont(defaults.GetFont())
		r.SetFontColor(chart.DefaultTextColor)
		r.SetFontSize(chart.DefaultTitleFontSize)

		box := r.MeasureText(title)
		r.Text(title, width/2-box.Width()/2, chart.DefaultTitleTop+box.Height())
	}
}
