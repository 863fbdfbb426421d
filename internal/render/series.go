package render

import (
	"fmt"

	chart "github.com/wcharczuk/go-chart/v2"
)

// barSeries draws one rectangle per value. Vertical bars grow up from y=0 centered on
// x; horizontal bars grow right from x=0 centered on y. go-chart's Chart has no bar mark
// so trend and per-metric charts use this instead of chart.BarChart.
type barSeries struct {
	name       string
	style      chart.Style
	yAxis      chart.YAxisType
	horizontal bool
	// positions are the category coordinates (years, possibly offset).
	positions []float64
	values    []float64
	// thickness is the bar size in category units.
	thickness float64
	labels    []string
}

var (
	_ chart.Series         = barSeries{}
	_ chart.ValuesProvider = barSeries{}
)

func (b barSeries) GetName() string           { return b.name }
func (b barSeries) GetStyle() chart.Style     { return b.style }
func (b barSeries) GetYAxis() chart.YAxisType { return b.yAxis }
func (b barSeries) Len() int                  { return len(b.values) }

func (b barSeries) GetValues(i int) (float64, float64) {
	if b.horizontal {
		return b.values[i], b.positions[i]
	}
	return b.positions[i], b.values[i]
}

func (b barSeries) Validate() error {
	if len(b.positions) != len(b.values) {
		return fmt.Errorf("bar series %q: %d positions for %d values", b.name, len(b.positions), len(b.values))
	}
	if len(b.labels) > 0 && len(b.labels) != len(b.values) {
		return fmt.Errorf("bar series %q: %d labels for %d values", b.name, len(b.labels), len(b.values))
	}
	return nil
}

func (b barSeries) Render(r chart.Renderer, canvas chart.Box, xrange, yrange chart.Range, defaults chart.Style) {
	st := b.style.InheritFrom(defaults)
	half := b.thickness / 2

	for i, v := range b.values {
		var box chart.Box
		if b.horizontal {
			box = chart.Box{
				Left:   canvas.Left + xrange.Translate(0),
				Right:  canvas.Left + xrange.Translate(v),
				Top:    canvas.Bottom - yrange.Translate(b.positions[i]+half),
				Bottom: canvas.Bottom - yrange.Translate(b.positions[i]-half),
			}
		} else {
			box = chart.Box{
				Left:   canvas.Left + xrange.Translate(b.positions[i]-half),
				Right:  canvas.Left + xrange.Translate(b.positions[i]+half),
				Top:    canvas.Bottom - yrange.Translate(v),
				Bottom: canvas.Bottom - yrange.Translate(0),
			}
		}
		fillBox(r, box, st)

		if i < len(b.labels) {
			drawLabel(r, box, b.labels[i], b.horizontal, st)
		}
	}
}

func fillBox(r chart.Renderer, box chart.Box, st chart.Style) {
	r.SetFillColor(st.GetFillColor())
	r.SetStrokeColor(st.GetStrokeColor())
	r.SetStrokeWidth(st.GetStrokeWidth())
	r.MoveTo(box.Left, box.Top)
	r.LineTo(box.Right, box.Top)
	r.LineTo(box.Right, box.Bottom)
	r.LineTo(box.Left, box.Bottom)
	r.Close()
	r.FillStroke()
}

// drawLabel prints text just past the end of the bar.
func drawLabel(r chart.Renderer, box chart.Box, text string, horizontal bool, st chart.Style) {
	if font := st.GetFont(); font != nil {
		r.SetFont(font)
	}
	r.SetFontSize(labelFontSize)
	r.SetFontColor(labelColor)

	size := r.MeasureText(text)
	if horizontal {
		y := box.Top + (box.Bottom-box.Top)/2 + size.Height()/2
		r.Text(text, box.Right+labelGap, y)
		return
	}
	x := box.Left + (box.Right-box.Left)/2 - size.Width()/2
	r.Text(text, x, box.Top-labelGap)
}
