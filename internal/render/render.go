// Package render draws presentation chart models as PNG or SVG images with go-chart.
package render

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"paydash/internal/core"
	"paydash/internal/presentation"
)

// Format is an output image format.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

const (
	DefaultWidth  = 1024
	DefaultHeight = 512

	labelFontSize = 10.0
	labelGap      = 4

	// groupedBarWidth and groupedBarOffset place two bars side by side per year.
	groupedBarWidth  = 0.3
	groupedBarOffset = 0.15
	singleBarWidth   = 0.6
	rangeHeadroom    = 1.15
)

var (
	ErrUnknownFormat = errors.New("unknown image format")
	ErrUnknownChart  = errors.New("unknown chart")
	ErrEmptyChart    = errors.New("chart has no data")

	labelColor = drawing.ColorFromHex("212121")
	emptyColor = drawing.ColorFromHex("E0E0E0")
)

// ParseFormat accepts "png" or "svg" in any case.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case PNG:
		return PNG, nil
	case SVG:
		return SVG, nil
	default:
		return "", errors.Wrapf(ErrUnknownFormat, "%q", s)
	}
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == SVG {
		return "image/svg+xml"
	}
	return "image/png"
}

func (f Format) provider() chart.RendererProvider {
	if f == SVG {
		return chart.SVG
	}
	return chart.PNG
}

// Options sizes the output images.
type Options struct {
	Width  int
	Height int
}

// Renderer draws chart models. It holds no per-render state and is safe for
// concurrent use.
type Renderer struct {
	opts Options
}

// New returns a Renderer; zero sizes fall back to the defaults.
func New(opts Options) *Renderer {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	return &Renderer{opts: opts}
}

// Options returns the effective sizes.
func (r *Renderer) Options() Options {
	return r.opts
}

// Chart renders the named chart of d.
func (r *Renderer) Chart(d presentation.Dashboard, name string, f Format) ([]byte, error) {
	model, ok := d.Chart(name)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownChart, "%q", name)
	}
	var buf bytes.Buffer
	if err := r.Render(&buf, model, f); err != nil {
		return nil, errors.Wrapf(err, "render %s", name)
	}
	return buf.Bytes(), nil
}

// Render writes model, an XYChart or PieChart, to w.
func (r *Renderer) Render(w io.Writer, model any, f Format) error {
	switch m := model.(type) {
	case presentation.PieChart:
		return r.pie(w, m, f)
	case presentation.XYChart:
		switch m.Kind {
		case presentation.KindTrend:
			return r.trend(w, m, f)
		case presentation.KindStackedArea:
			return r.stackedArea(w, m, f)
		case presentation.KindLine:
			return r.lines(w, m, f)
		case presentation.KindHorizontalBar:
			return r.horizontalBars(w, m, f)
		default:
			return errors.Errorf("unsupported chart kind %q", m.Kind)
		}
	default:
		return errors.Errorf("unsupported chart model %T", model)
	}
}

func (r *Renderer) trend(w io.Writer, m presentation.XYChart, f Format) error {
	if len(m.Years) == 0 {
		return ErrEmptyChart
	}
	ch := r.base(m.Title)
	ch.XAxis = yearAxis(m.XLabel, m.Years, groupedBarOffset+groupedBarWidth)

	var left, right []float64
	bars := 0
	for _, s := range m.Series {
		switch {
		case s.Mark == presentation.MarkBar:
			// notes left of the year tick, coins right of it
			offset := -groupedBarOffset
			if bars%2 == 1 {
				offset = groupedBarOffset
			}
			bars++
			ch.Series = append(ch.Series, barSeries{
				name:      s.Name,
				style:     fillStyle(s.Color),
				yAxis:     yAxisType(s.Axis),
				positions: shifted(m.Years, offset),
				values:    s.Values,
				thickness: groupedBarWidth,
			})
		default:
			ch.Series = append(ch.Series, chart.ContinuousSeries{
				Name:    s.Name,
				Style:   lineStyle(s.Color, 2.5),
				YAxis:   yAxisType(s.Axis),
				XValues: floats(m.Years),
				YValues: s.Values,
			})
		}
		if s.Axis == presentation.AxisRight {
			right = append(right, s.Values...)
		} else {
			left = append(left, s.Values...)
		}
	}

	// go-chart draws the primary axis on the right and the secondary on the left.
	ch.YAxis = valueAxis(m.Y2Label, right)
	ch.YAxisSecondary = valueAxis(m.YLabel, left)
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	return errors.Wrap(ch.Render(f.provider(), w), "render trend chart")
}

func (r *Renderer) stackedArea(w io.Writer, m presentation.XYChart, f Format) error {
	if len(m.Years) == 0 || len(m.Series) == 0 {
		return ErrEmptyChart
	}
	ch := r.base(m.Title)
	ch.XAxis = yearAxis(m.XLabel, m.Years, 0)

	// Paint the tallest layer first so lower layers cover it.
	var tops []float64
	for i := len(m.Series) - 1; i >= 0; i-- {
		s := m.Series[i]
		st := lineStyle(s.Color, 1)
		st.FillColor = color(s.Color).WithAlpha(220)
		ch.Series = append(ch.Series, chart.ContinuousSeries{
			Name:    s.Name,
			Style:   st,
			XValues: floats(m.Years),
			YValues: s.Stack,
		})
		tops = append(tops, s.Stack...)
	}
	ch.YAxis = valueAxis(m.YLabel, tops)
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	return errors.Wrap(ch.Render(f.provider(), w), "render stacked area chart")
}

func (r *Renderer) lines(w io.Writer, m presentation.XYChart, f Format) error {
	if len(m.Years) == 0 {
		return ErrEmptyChart
	}
	ch := r.base(m.Title)
	ch.XAxis = yearAxis(m.XLabel, m.Years, 0)

	var all []float64
	for _, s := range m.Series {
		st := lineStyle(s.Color, 2)
		st.DotWidth = 4
		st.DotColor = color(s.Color)
		ch.Series = append(ch.Series, chart.ContinuousSeries{
			Name:    s.Name,
			Style:   st,
			XValues: floats(m.Years),
			YValues: s.Values,
		})
		all = append(all, s.Values...)
	}
	ch.YAxis = valueAxis(m.YLabel, all)
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	return errors.Wrap(ch.Render(f.provider(), w), "render line chart")
}

func (r *Renderer) horizontalBars(w io.Writer, m presentation.XYChart, f Format) error {
	if len(m.Years) == 0 || len(m.Series) == 0 {
		return ErrEmptyChart
	}
	s := m.Series[0]
	ch := r.base(m.Title)
	ch.Height = r.opts.Height * 2 / 3

	years := yearAxis(m.YLabel, m.Years, singleBarWidth)
	ch.YAxis = chart.YAxis{
		Name:  years.Name,
		Range: years.Range,
		Ticks: years.Ticks,
	}
	ch.XAxis = chart.XAxis{
		Name:           m.XLabel,
		Range:          &chart.ContinuousRange{Min: 0, Max: upperBound(s.Values) * 1.2},
		ValueFormatter: valueFormatter(3),
	}
	ch.Series = []chart.Series{barSeries{
		name:       s.Name,
		style:      fillStyle(s.Color),
		horizontal: true,
		positions:  floats(m.Years),
		values:     s.Values,
		thickness:  singleBarWidth,
		labels:     s.Labels,
	}}

	return errors.Wrap(ch.Render(f.provider(), w), "render horizontal bar chart")
}

func (r *Renderer) pie(w io.Writer, m presentation.PieChart, f Format) error {
	if len(m.Slices) == 0 {
		return ErrEmptyChart
	}
	side := r.opts.Height
	if r.opts.Width < side {
		side = r.opts.Width
	}
	pc := chart.PieChart{
		Title:  m.Title,
		Width:  side,
		Height: side,
	}
	if !hasVolume(m.Slices) {
		pc.Values = []chart.Value{{
			Label: fmt.Sprintf("No volume recorded in %d", m.Year),
			Value: 1,
			Style: chart.Style{FillColor: emptyColor, StrokeColor: drawing.ColorWhite, FontSize: labelFontSize},
		}}
		return errors.Wrap(pc.Render(f.provider(), w), "render pie chart")
	}
	for _, s := range m.Slices {
		pc.Values = append(pc.Values, chart.Value{
			Label: s.Label + " " + s.ShareLabel,
			Value: s.Value,
			Style: chart.Style{
				FillColor:   color(s.Color),
				StrokeColor: drawing.ColorWhite,
				StrokeWidth: 1,
				FontSize:    labelFontSize,
			},
		})
	}
	return errors.Wrap(pc.Render(f.provider(), w), "render pie chart")
}

// hasVolume reports whether any slice is positive; go-chart refuses a pie without one.
func hasVolume(slices []presentation.Slice) bool {
	for _, s := range slices {
		if s.Value > 0 {
			return true
		}
	}
	return false
}

func (r *Renderer) base(title string) chart.Chart {
	return chart.Chart{
		Title:      title,
		Width:      r.opts.Width,
		Height:     r.opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
	}
}

// yearAxis puts one tick per year and pads the range by half a category on each side.
// go-chart derives the range from the outermost ticks, so the padding is carried by two
// unlabelled ticks; this also gives a single year a non-zero range.
func yearAxis(name string, years []int, extent float64) chart.XAxis {
	pad := 0.5
	if extent/2+0.1 > pad {
		pad = extent/2 + 0.1
	}
	lo, hi := float64(years[0])-pad, float64(years[len(years)-1])+pad
	ticks := make([]chart.Tick, 0, len(years)+2)
	ticks = append(ticks, chart.Tick{Value: lo})
	for _, y := range years {
		ticks = append(ticks, chart.Tick{Value: float64(y), Label: strconv.Itoa(y)})
	}
	ticks = append(ticks, chart.Tick{Value: hi})
	return chart.XAxis{
		Name:  name,
		Range: &chart.ContinuousRange{Min: lo, Max: hi},
		Ticks: ticks,
	}
}

// valueAxis fits the range to values, always including zero.
func valueAxis(name string, values []float64) chart.YAxis {
	lo, hi := lowerBound(values), upperBound(values)
	return chart.YAxis{
		Name:           name,
		Range:          &chart.ContinuousRange{Min: lo * rangeHeadroom, Max: hi * rangeHeadroom},
		ValueFormatter: valueFormatter(2),
	}
}

func upperBound(values []float64) float64 {
	hi := 0.0
	for _, v := range values {
		hi = math.Max(hi, v)
	}
	if hi == 0 {
		return 1
	}
	return hi
}

func lowerBound(values []float64) float64 {
	lo := 0.0
	for _, v := range values {
		lo = math.Min(lo, v)
	}
	return lo
}

func valueFormatter(precision int) chart.ValueFormatter {
	return func(v interface{}) string {
		if f, ok := v.(float64); ok {
			return core.FormatFixed(f, precision)
		}
		return ""
	}
}

func yAxisType(a presentation.Axis) chart.YAxisType {
	if a == presentation.AxisLeft {
		return chart.YAxisSecondary
	}
	return chart.YAxisPrimary
}

func fillStyle(hex string) chart.Style {
	c := color(hex)
	return chart.Style{
		FillColor:   c,
		StrokeColor: c,
		StrokeWidth: 1,
	}
}

func lineStyle(hex string, width float64) chart.Style {
	return chart.Style{
		StrokeColor: color(hex),
		StrokeWidth: width,
	}
}

func color(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}

func floats(years []int) []float64 {
	out := make([]float64, len(years))
	for i, y := range years {
		out[i] = float64(y)
	}
	return out
}

func shifted(years []int, offset float64) []float64 {
	out := floats(years)
	for i := range out {
		out[i] += offset
	}
	return out
}
