package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-9

func TestComputeGrowthExample(t *testing.T) {
	ds, err := NewDataset([]TimeSeriesRow{
		{Year: 2020, DigitalPayments: 17.6, NoteVolume: 1.44, CoinVolume: 0.043},
		{Year: 2021, DigitalPayments: 24.1, NoteVolume: 1.67, CoinVolume: 0.042},
	}, nil)
	require.NoError(t, err)

	growth, err := ComputeGrowth(ds)
	require.NoError(t, err)
	require.Len(t, growth, 1)

	g := growth[0]
	assert.Equal(t, 2021, g.Year)
	assert.InDelta(t, 36.93, g.DigitalPaymentsPctChange, 0.01)
	assert.InDelta(t, 15.97, g.NoteVolumePctChange, 0.01)
	assert.InDelta(t, -2.33, g.CoinVolumePctChange, 0.01)
}

func TestComputeGrowthFormula(t *testing.T) {
	ds := DefaultDataset()
	rows := ds.Rows()

	growth, err := ComputeGrowth(ds)
	require.NoError(t, err)
	require.Len(t, growth, ds.Len()-1)

	for i, g := range growth {
		prev, cur := rows[i], rows[i+1]
		assert.Equal(t, cur.Year, g.Year)
		for _, m := range Metrics() {
			want := (cur.Value(m) - prev.Value(m)) / prev.Value(m) * 100
			assert.InDelta(t, want, g.PctChange(m), tolerance, "%s %d", m, g.Year)
		}
	}
}

func TestComputeGrowthSingleRow(t *testing.T) {
	ds, err := NewDataset([]TimeSeriesRow{{Year: 2020, DigitalPayments: 1}}, nil)
	require.NoError(t, err)

	growth, err := ComputeGrowth(ds)
	require.NoError(t, err)
	assert.Empty(t, growth)
}

func TestComputeGrowthDivisionByZero(t *testing.T) {
	ds, err := NewDataset([]TimeSeriesRow{
		{Year: 2020, DigitalPayments: 1, NoteVolume: 1, CoinVolume: 1},
		{Year: 2021, DigitalPayments: 2, NoteVolume: 0, CoinVolume: 1},
		{Year: 2022, DigitalPayments: 3, NoteVolume: 1, CoinVolume: 1},
	}, nil)
	require.NoError(t, err)

	growth, err := ComputeGrowth(ds)
	require.Error(t, err)
	assert.Nil(t, growth)
	assert.True(t, errors.Is(err, ErrDivisionByZero))

	var gerr *GrowthError
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, NoteVolume, gerr.Metric)
	assert.Equal(t, 2022, gerr.Year)
	assert.Contains(t, err.Error(), "Volume of Notes")
}

func TestPctChange(t *testing.T) {
	v, err := PctChange(50, 75)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, v, tolerance)

	v, err = PctChange(2, 0)
	require.NoError(t, err)
	assert.InDelta(t, -100.0, v, tolerance)

	_, err = PctChange(0, 3)
	assert.ErrorIs(t, err, ErrDivisionByZero)
}
