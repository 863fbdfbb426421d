package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDatasetValidate(t *testing.T) {
	good := []TimeSeriesRow{
		{Year: 2020, DigitalPayments: 1, NoteVolume: 1, CoinVolume: 1},
		{Year: 2021, DigitalPayments: 2, NoteVolume: 0, CoinVolume: 1},
	}

	tests := []struct {
		name     string
		rows     []TimeSeriesRow
		averages []AverageStat
		wantErr  error
	}{
		{name: "valid", rows: good},
		{name: "empty", rows: nil, wantErr: ErrNoRows},
		{
			name:    "negative volume",
			rows:    []TimeSeriesRow{{Year: 2020, DigitalPayments: -1}},
			wantErr: ErrNegativeVolume,
		},
		{
			name:    "duplicate year",
			rows:    []TimeSeriesRow{{Year: 2020}, {Year: 2020}},
			wantErr: ErrYearOrder,
		},
		{
			name:    "descending years",
			rows:    []TimeSeriesRow{{Year: 2021}, {Year: 2020}},
			wantErr: ErrYearOrder,
		},
		{
			name:    "gap",
			rows:    []TimeSeriesRow{{Year: 2020}, {Year: 2022}},
			wantErr: ErrYearGap,
		},
		{
			name:     "average without key",
			rows:     good,
			averages: []AverageStat{{Name: "x", Value: 1}},
			wantErr:  ErrInvalidAverage,
		},
		{
			name:     "average precision too large",
			rows:     good,
			averages: []AverageStat{{Key: "k", Name: "x", Value: 1, Precision: 9}},
			wantErr:  ErrInvalidAverage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDataset(tt.rows, tt.averages)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
		})
	}
}

func TestDatasetIsImmutable(t *testing.T) {
	rows := []TimeSeriesRow{{Year: 2020, DigitalPayments: 1}, {Year: 2021, DigitalPayments: 2}}
	ds, err := NewDataset(rows, DefaultAverages())
	require.NoError(t, err)

	rows[0].DigitalPayments = 99
	assert.Equal(t, 1.0, ds.Rows()[0].DigitalPayments)

	out := ds.Rows()
	out[1].Year = 1900
	assert.Equal(t, []int{2020, 2021}, ds.Years())

	avg := ds.Averages()
	avg[0].Value = -1
	assert.Equal(t, 4.5, ds.Averages()[0].Value)
}

func TestDefaultDataset(t *testing.T) {
	ds := DefaultDataset()

	assert.Equal(t, []int{2020, 2021, 2022, 2023}, ds.Years())
	assert.Equal(t, []float64{17.6, 24.1, 29.5, 32.5}, ds.Values(DigitalPayments))
	assert.Equal(t, []float64{1.44, 1.67, 1.84, 1.87}, ds.Values(NoteVolume))
	assert.Equal(t, []float64{0.043, 0.042, 0.043, 0.045}, ds.Values(CoinVolume))
	assert.Len(t, ds.Averages(), 5)

	years := ds.Years()
	for i := 1; i < len(years); i++ {
		assert.Greater(t, years[i], years[i-1])
	}

	first, last := ds.YearSpan()
	assert.Equal(t, 2020, first)
	assert.Equal(t, 2023, last)
}

func TestLatestUsesMaximumYear(t *testing.T) {
	ds, err := NewDataset([]TimeSeriesRow{
		{Year: 2030, DigitalPayments: 1},
		{Year: 2031, DigitalPayments: 2},
		{Year: 2032, DigitalPayments: 3},
	}, nil)
	require.NoError(t, err)

	row, ok := ds.Latest()
	require.True(t, ok)
	assert.Equal(t, 2032, row.Year)
	assert.Equal(t, 3.0, row.DigitalPayments)

	_, ok = Dataset{}.Latest()
	assert.False(t, ok)
}

func TestMetricSlugRoundTrip(t *testing.T) {
	for _, m := range Metrics() {
		got, err := MetricFromSlug(m.Slug())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}

	_, err := MetricFromSlug("gold")
	assert.ErrorIs(t, err, ErrUnknownMetric)
}
