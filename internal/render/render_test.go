package render

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paydash/internal/core"
	"paydash/internal/presentation"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func dashboard(t *testing.T) presentation.Dashboard {
	t.Helper()
	d, err := presentation.New(presentation.DefaultPalette()).Prepare(core.DefaultDataset())
	require.NoError(t, err)
	return d
}

func TestRenderEveryChart(t *testing.T) {
	d := dashboard(t)
	r := New(Options{Width: 640, Height: 360})

	for _, name := range d.ChartNames() {
		for _, f := range []Format{PNG, SVG} {
			t.Run(name+"."+string(f), func(t *testing.T) {
				out, err := r.Chart(d, name, f)
				require.NoError(t, err)
				require.NotEmpty(t, out)
				if f == PNG {
					assert.True(t, bytes.HasPrefix(out, pngMagic), "missing PNG header")
				} else {
					assert.Contains(t, string(out), "<svg")
				}
			})
		}
	}
}

func TestRenderSVGContainsTitlesAndLabels(t *testing.T) {
	d := dashboard(t)
	r := New(Options{})

	out, err := r.Chart(d, presentation.BarsChartName(core.CoinVolume), SVG)
	require.NoError(t, err)
	svg := string(out)
	assert.Contains(t, svg, "Volume of Coins by Year")
	assert.Contains(t, svg, "0.045")

	out, err = r.Chart(d, presentation.ChartDistribution, SVG)
	require.NoError(t, err)
	assert.Contains(t, string(out), "Distribution of Payment Methods in 2023")
}

func TestRenderTwoYearDataset(t *testing.T) {
	ds, err := core.NewDataset([]core.TimeSeriesRow{
		{Year: 2020, DigitalPayments: 17.6, NoteVolume: 1.44, CoinVolume: 0.043},
		{Year: 2021, DigitalPayments: 24.1, NoteVolume: 1.67, CoinVolume: 0.042},
	}, core.DefaultAverages())
	require.NoError(t, err)
	d, err := presentation.New(presentation.DefaultPalette()).Prepare(ds)
	require.NoError(t, err)
	require.NotNil(t, d.Growth)
	require.Len(t, d.Growth.Years, 1)

	r := New(Options{Width: 480, Height: 320})
	for _, name := range d.ChartNames() {
		for _, f := range []Format{PNG, SVG} {
			out, err := r.Chart(d, name, f)
			require.NoError(t, err, "%s.%s", name, f)
			assert.NotEmpty(t, out)
		}
	}
}

func TestRenderSingleYearDataset(t *testing.T) {
	ds, err := core.NewDataset([]core.TimeSeriesRow{
		{Year: 2023, DigitalPayments: 32.5, NoteVolume: 1.87, CoinVolume: 0.045},
	}, core.DefaultAverages())
	require.NoError(t, err)
	d, err := presentation.New(presentation.DefaultPalette()).Prepare(ds)
	require.NoError(t, err)

	r := New(Options{Width: 480, Height: 320})
	for _, name := range d.ChartNames() {
		_, err := r.Chart(d, name, PNG)
		require.NoError(t, err, name)
	}
}

func TestRenderPieWithoutVolume(t *testing.T) {
	ds, err := core.NewDataset([]core.TimeSeriesRow{
		{Year: 2020, DigitalPayments: 1, NoteVolume: 1, CoinVolume: 1},
		{Year: 2021, DigitalPayments: 0, NoteVolume: 0, CoinVolume: 0},
	}, core.DefaultAverages())
	require.NoError(t, err)
	d := presentation.New(presentation.DefaultPalette()).Build(ds, nil)

	out, err := New(Options{}).Chart(d, presentation.ChartDistribution, SVG)
	require.NoError(t, err)
	assert.Contains(t, string(out), "No volume recorded in 2021")

	out, err = New(Options{}).Chart(d, presentation.ChartDistribution, PNG)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, pngMagic))
}

func TestYearAxisPadsSingleYear(t *testing.T) {
	axis := yearAxis("Year", []int{2021}, 0)
	require.Len(t, axis.Ticks, 3)
	assert.Equal(t, 2020.5, axis.Ticks[0].Value)
	assert.Equal(t, "2021", axis.Ticks[1].Label)
	assert.Equal(t, 2021.5, axis.Ticks[2].Value)
	assert.Empty(t, axis.Ticks[0].Label)
}

func TestRenderUnknownChart(t *testing.T) {
	_, err := New(Options{}).Chart(dashboard(t), "radar", PNG)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownChart))
}

func TestRenderEmptyChart(t *testing.T) {
	var buf bytes.Buffer
	err := New(Options{}).Render(&buf, presentation.XYChart{Kind: presentation.KindLine}, PNG)
	assert.ErrorIs(t, err, ErrEmptyChart)

	err = New(Options{}).Render(&buf, presentation.PieChart{}, PNG)
	assert.ErrorIs(t, err, ErrEmptyChart)

	err = New(Options{}).Render(&buf, 42, PNG)
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("SVG")
	require.NoError(t, err)
	assert.Equal(t, SVG, f)
	assert.Equal(t, "image/svg+xml", f.ContentType())

	f, err = ParseFormat("png")
	require.NoError(t, err)
	assert.Equal(t, "image/png", f.ContentType())

	_, err = ParseFormat("gif")
	assert.True(t, errors.Is(err, ErrUnknownFormat))
}

func TestNewDefaultsSize(t *testing.T) {
	opts := New(Options{}).Options()
	assert.Equal(t, DefaultWidth, opts.Width)
	assert.Equal(t, DefaultHeight, opts.Height)
}
