package presentation

import (
	"fmt"

	"paydash/internal/core"
)

// DashboardTitle heads the page.
const DashboardTitle = "Digital Payments and Currency Circulation Dashboard"

// tilesPerFirstRow is how many tiles go on the first row.
const tilesPerFirstRow = 3

// Adapter turns a Dataset and its growth rows into chart models.
type Adapter struct {
	palette Palette
}

// New returns an Adapter that colors series with p.
func New(p Palette) Adapter {
	return Adapter{palette: p}
}

// Palette returns the colors in use.
func (a Adapter) Palette() Palette {
	return a.palette
}

// Prepare computes growth rows and builds the dashboard. When growth cannot be computed
// every other chart is still returned, Growth is nil and the error is returned as well.
func (a Adapter) Prepare(ds core.Dataset) (Dashboard, error) {
	growth, err := core.ComputeGrowth(ds)
	if err != nil {
		d := a.Build(ds, nil)
		d.GrowthError = err.Error()
		return d, err
	}
	return a.Build(ds, growth), nil
}

// Build assembles every chart and tile. Growth stays unset when there are no growth
// rows, which is the case for a single-year dataset.
func (a Adapter) Build(ds core.Dataset, growth []core.GrowthRow) Dashboard {
	first, last := ds.YearSpan()
	d := Dashboard{
		Title:        DashboardTitle,
		FirstYear:    first,
		LastYear:     last,
		Tiles:        a.Tiles(ds),
		Trend:        a.Trend(ds),
		Composition:  a.Composition(ds),
		Distribution: a.Distribution(ds),
		MetricBars:   a.MetricBars(ds),
	}
	if len(growth) > 0 {
		g := a.Growth(growth)
		d.Growth = &g
	}
	return d
}

// Tiles formats each average stat with its own precision.
func (a Adapter) Tiles(ds core.Dataset) []Tile {
	avgs := ds.Averages()
	tiles := make([]Tile, 0, len(avgs))
	for i, s := range avgs {
		row := 0
		if i >= tilesPerFirstRow {
			row = 1
		}
		tiles = append(tiles, Tile{
			Key:   s.Key,
			Label: s.Name,
			Value: s.Display(),
			Help:  s.Help,
			Color: a.palette.tileColor(s.Key),
			Row:   row,
		})
	}
	return tiles
}

// Trend plots notes and coins as bars on the left axis and digital payments as a line
// on the right axis.
func (a Adapter) Trend(ds core.Dataset) XYChart {
	first, last := ds.YearSpan()
	return XYChart{
		Name:    ChartTrend,
		Kind:    KindTrend,
		Title:   fmt.Sprintf("Trends in Digital Payments and Currency Circulation (%d - %d)", first, last),
		XLabel:  "Years",
		YLabel:  "Volume of Notes and Coins (in Billions)",
		Y2Label: "Total Usage (in Billions)",
		Years:   ds.Years(),
		Series: []Series{
			a.series(ds, core.NoteVolume, MarkBar, AxisLeft),
			a.series(ds, core.CoinVolume, MarkBar, AxisLeft),
			a.series(ds, core.DigitalPayments, MarkLine, AxisRight),
		},
	}
}

// Composition stacks the three metrics, digital payments at the bottom.
func (a Adapter) Composition(ds core.Dataset) XYChart {
	c := XYChart{
		Name:   ChartComposition,
		Kind:   KindStackedArea,
		Title:  "Composition of Payment Methods Over Time",
		XLabel: "Year",
		YLabel: "Volume (in Billions)",
		Years:  ds.Years(),
	}
	running := make([]float64, ds.Len())
	for _, m := range core.Metrics() {
		s := a.series(ds, m, MarkArea, AxisLeft)
		s.Stack = make([]float64, len(s.Values))
		for i, v := range s.Values {
			running[i] += v
			s.Stack[i] = running[i]
		}
		c.Series = append(c.Series, s)
	}
	return c
}

// Distribution splits the most recent year across the three metrics.
func (a Adapter) Distribution(ds core.Dataset) PieChart {
	latest, _ := ds.Latest()
	p := PieChart{
		Name:  ChartDistribution,
		Kind:  KindPie,
		Title: fmt.Sprintf("Distribution of Payment Methods in %d", latest.Year),
		Year:  latest.Year,
	}

	var total float64
	for _, m := range core.Metrics() {
		total += latest.Value(m)
	}
	for _, m := range core.Metrics() {
		v := latest.Value(m)
		share := 0.0
		if total > 0 {
			share = v / total * 100
		}
		p.Slices = append(p.Slices, Slice{
			Label:      m.String(),
			Metric:     m.Slug(),
			Color:      a.palette.seriesColor(m),
			Value:      v,
			Share:      share,
			ShareLabel: core.FormatPercent(share),
		})
	}
	return p
}

// Growth draws one line per metric over every year that has a prior year.
func (a Adapter) Growth(growth []core.GrowthRow) XYChart {
	c := XYChart{
		Name:   ChartGrowth,
		Kind:   KindLine,
		Title:  "Year-over-Year Growth Rates of Payment Methods",
		XLabel: "Year",
		YLabel: "Growth Rate (%)",
		Years:  make([]int, len(growth)),
	}
	for i, g := range growth {
		c.Years[i] = g.Year
	}
	for _, m := range core.Metrics() {
		s := Series{
			Name:   m.String(),
			Metric: m.Slug(),
			Color:  a.palette.seriesColor(m),
			Mark:   MarkLine,
			Axis:   AxisLeft,
			Values: make([]float64, len(growth)),
		}
		for i, g := range growth {
			s.Values[i] = g.PctChange(m)
		}
		c.Series = append(c.Series, s)
	}
	return c
}

// MetricBars returns one horizontal bar chart per metric with a value label per bar.
func (a Adapter) MetricBars(ds core.Dataset) []XYChart {
	charts := make([]XYChart, 0, len(core.Metrics()))
	for _, m := range core.Metrics() {
		s := a.series(ds, m, MarkBar, AxisLeft)
		s.Labels = make([]string, len(s.Values))
		for i, v := range s.Values {
			s.Labels[i] = core.FormatFixed(v, 3)
		}
		charts = append(charts, XYChart{
			Name:       BarsChartName(m),
			Kind:       KindHorizontalBar,
			Title:      m.String() + " by Year",
			XLabel:     m.String() + " (in Billions)",
			YLabel:     "Year",
			Horizontal: true,
			Years:      ds.Years(),
			Series:     []Series{s},
		})
	}
	return charts
}

// BarsChartName is the chart name of m's horizontal bar chart.
func BarsChartName(m core.Metric) string {
	return chartBarsPrefix + m.Slug()
}

func (a Adapter) series(ds core.Dataset, m core.Metric, mark SeriesKind, axis Axis) Series {
	return Series{
		Name:   m.String(),
		Metric: m.Slug(),
		Color:  a.palette.seriesColor(m),
		Mark:   mark,
		Axis:   axis,
		Values: ds.Values(m),
	}
}
