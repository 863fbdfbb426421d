// Package presentation shapes the dataset and its growth rows into the series, labels and
// colors each dashboard chart and tile needs. Everything here is a pure function of its
// inputs; rendering lives in the render and http packages.
package presentation

// ChartKind tells a renderer how to draw a chart model.
type ChartKind string

const (
	KindTrend         ChartKind = "trend"
	KindStackedArea   ChartKind = "stacked_area"
	KindPie           ChartKind = "pie"
	KindLine          ChartKind = "line"
	KindHorizontalBar ChartKind = "horizontal_bar"
)

// SeriesKind is the mark used for one series.
type SeriesKind string

const (
	MarkBar  SeriesKind = "bar"
	MarkLine SeriesKind = "line"
	MarkArea SeriesKind = "area"
)

// Axis is the value axis a series is plotted against.
type Axis string

const (
	AxisLeft  Axis = "left"
	AxisRight Axis = "right"
)

// Chart names, used in URLs and as cache keys.
const (
	ChartTrend        = "trend"
	ChartComposition  = "composition"
	ChartDistribution = "distribution"
	ChartGrowth       = "growth"
	chartBarsPrefix   = "bars-"
)

// Series is one named run of values aligned with the chart's Years.
type Series struct {
	Name   string     `json:"name"`
	Metric string     `json:"metric"`
	Color  string     `json:"color"`
	Mark   SeriesKind `json:"mark"`
	Axis   Axis       `json:"axis"`
	Values []float64  `json:"values"`
	// Stack holds cumulative tops for stacked areas.
	Stack []float64 `json:"stack,omitempty"`
	// Labels are printed on each bar.
	Labels []string `json:"labels,omitempty"`
}

// XYChart is any chart with years on the category axis.
type XYChart struct {
	Name       string    `json:"name"`
	Kind       ChartKind `json:"kind"`
	Title      string    `json:"title"`
	XLabel     string    `json:"x_label"`
	YLabel     string    `json:"y_label"`
	Y2Label    string    `json:"y2_label,omitempty"`
	Horizontal bool      `json:"horizontal,omitempty"`
	Years      []int     `json:"years"`
	Series     []Series  `json:"series"`
}

// Slice is one pie wedge.
type Slice struct {
	Label      string  `json:"label"`
	Metric     string  `json:"metric"`
	Color      string  `json:"color"`
	Value      float64 `json:"value"`
	Share      float64 `json:"share"`
	ShareLabel string  `json:"share_label"`
}

// PieChart shows the metric split for a single year.
type PieChart struct {
	Name   string    `json:"name"`
	Kind   ChartKind `json:"kind"`
	Title  string    `json:"title"`
	Year   int       `json:"year"`
	Slices []Slice   `json:"slices"`
}

// Tile is one average-statistics box.
type Tile struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
	Help  string `json:"help"`
	Color string `json:"color"`
	// Row is 0 for the first three tiles and 1 for the rest.
	Row int `json:"row"`
}

// Dashboard is everything one page render needs.
type Dashboard struct {
	Title        string    `json:"title"`
	FirstYear    int       `json:"first_year"`
	LastYear     int       `json:"last_year"`
	Tiles        []Tile    `json:"tiles"`
	Trend        XYChart   `json:"trend"`
	Composition  XYChart   `json:"composition"`
	Distribution PieChart  `json:"distribution"`
	Growth       *XYChart  `json:"growth,omitempty"`
	GrowthError  string    `json:"growth_error,omitempty"`
	MetricBars   []XYChart `json:"metric_bars"`
}

// TileRows splits tiles by Row for templates.
func (d Dashboard) TileRows() [][]Tile {
	var rows [][]Tile
	for _, t := range d.Tiles {
		for len(rows) <= t.Row {
			rows = append(rows, nil)
		}
		rows[t.Row] = append(rows[t.Row], t)
	}
	return rows
}

// ChartNames lists every chart in page order.
func (d Dashboard) ChartNames() []string {
	names := []string{ChartTrend, ChartComposition, ChartDistribution}
	if d.Growth != nil {
		names = append(names, ChartGrowth)
	}
	for _, b := range d.MetricBars {
		names = append(names, b.Name)
	}
	return names
}

// Chart looks a chart model up by name. The result is an XYChart or a PieChart.
func (d Dashboard) Chart(name string) (any, bool) {
	switch name {
	case ChartTrend:
		return d.Trend, true
	case ChartComposition:
		return d.Composition, true
	case ChartDistribution:
		return d.Distribution, true
	case ChartGrowth:
		if d.Growth == nil {
			return nil, false
		}
		return *d.Growth, true
	}
	for _, b := range d.MetricBars {
		if b.Name == name {
			return b, true
		}
	}
	return nil, false
}
