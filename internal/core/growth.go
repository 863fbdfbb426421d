package core

import "fmt"

// GrowthRow holds the year-over-year percent change of each metric.
type GrowthRow struct {
	Year                     int
	DigitalPaymentsPctChange float64
	NoteVolumePctChange      float64
	CoinVolumePctChange      float64
}

// GrowthError reports which metric and year hit a zero prior value.
type GrowthError struct {
	Metric Metric
	Year   int
	Err    error
}

func (e *GrowthError) Error() string {
	return fmt.Sprintf("growth of %s in %d: %v", e.Metric, e.Year, e.Err)
}

func (e *GrowthError) Unwrap() error { return e.Err }

// PctChange returns (cur - prev) / prev * 100.
func PctChange(prev, cur float64) (float64, error) {
	if prev == 0 {
		return 0, ErrDivisionByZero
	}
	return (cur - prev) / prev * 100, nil
}

// PctChange returns the row's value for m.
func (g GrowthRow) PctChange(m Metric) float64 {
	switch m {
	case DigitalPayments:
		return g.DigitalPaymentsPctChange
	case NoteVolume:
		return g.NoteVolumePctChange
	case CoinVolume:
		return g.CoinVolumePctChange
	default:
		return 0
	}
}

func (g *GrowthRow) set(m Metric, v float64) {
	switch m {
	case DigitalPayments:
		g.DigitalPaymentsPctChange = v
	case NoteVolume:
		g.NoteVolumePctChange = v
	case CoinVolume:
		g.CoinVolumePctChange = v
	}
}

// ComputeGrowth derives one GrowthRow per row after the first, each relative to the
// immediately preceding row. A zero prior value fails the whole computation with a
// *GrowthError wrapping ErrDivisionByZero.
func ComputeGrowth(ds Dataset) ([]GrowthRow, error) {
	rows := ds.rows
	if len(rows) < 2 {
		return []GrowthRow{}, nil
	}

	out := make([]GrowthRow, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		prev, cur := rows[i-1], rows[i]
		g := GrowthRow{Year: cur.Year}
		for _, m := range Metrics() {
			pct, err := PctChange(prev.Value(m), cur.Value(m))
			if err != nil {
				return nil, &GrowthError{Metric: m, Year: cur.Year, Err: err}
			}
			g.set(m, pct)
		}
		out = append(out, g)
	}
	return out, nil
}
