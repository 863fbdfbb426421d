package core

import (
	"errors"
	"fmt"
)

const (
	DigitalPayments Metric = iota
	NoteVolume
	CoinVolume
)

// UnitBillions is the only unit the dashboard displays.
const UnitBillions = "billions"

type (
	// Metric identifies one of the yearly series.
	Metric int

	// TimeSeriesRow holds the three yearly volumes, in billions.
	TimeSeriesRow struct {
		Year            int
		DigitalPayments float64
		NoteVolume      float64
		CoinVolume      float64
	}

	// AverageStat is a precomputed scalar shown in a tile.
	AverageStat struct {
		Key       string
		Name      string
		Help      string
		Value     float64
		Unit      string
		Precision int
	}

	// Dataset is the immutable table every chart is built from.
	// Construct it with NewDataset; the zero value is empty.
	Dataset struct {
		rows     []TimeSeriesRow
		averages []AverageStat
	}
)

var (
	ErrNoRows         = errors.New("dataset has no rows")
	ErrNegativeVolume = errors.New("negative volume")
	ErrYearOrder      = errors.New("years must be strictly increasing")
	ErrYearGap        = errors.New("years must be contiguous")
	ErrInvalidAverage = errors.New("invalid average stat")
	ErrUnknownMetric  = errors.New("unknown metric")
	ErrDivisionByZero = errors.New("division by zero")
)

const maxAveragePrecision = 6

// Metrics lists every metric in canonical chart order.
func Metrics() []Metric {
	return []Metric{DigitalPayments, NoteVolume, CoinVolume}
}

// String returns the display name used in legends and titles.
func (m Metric) String() string {
	switch m {
	case DigitalPayments:
		return "Digital Payments"
	case NoteVolume:
		return "Volume of Notes"
	case CoinVolume:
		return "Volume of Coins"
	default:
		return fmt.Sprintf("Metric(%d)", int(m))
	}
}

// Slug returns a URL-safe identifier.
func (m Metric) Slug() string {
	switch m {
	case DigitalPayments:
		return "digital-payments"
	case NoteVolume:
		return "notes"
	case CoinVolume:
		return "coins"
	default:
		return ""
	}
}

// MetricFromSlug is the inverse of Slug.
func MetricFromSlug(slug string) (Metric, error) {
	for _, m := range Metrics() {
		if m.Slug() == slug {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMetric, slug)
}

// Value returns the row's value for m.
func (r TimeSeriesRow) Value(m Metric) float64 {
	switch m {
	case DigitalPayments:
		return r.DigitalPayments
	case NoteVolume:
		return r.NoteVolume
	case CoinVolume:
		return r.CoinVolume
	default:
		return 0
	}
}

func (r TimeSeriesRow) Validate() error {
	for _, m := range Metrics() {
		if r.Value(m) < 0 {
			return fmt.Errorf("%w: %s in %d is %g", ErrNegativeVolume, m, r.Year, r.Value(m))
		}
	}
	return nil
}

func (a AverageStat) Validate() error {
	if a.Key == "" || a.Name == "" {
		return fmt.Errorf("%w: missing key or name", ErrInvalidAverage)
	}
	if a.Value < 0 {
		return fmt.Errorf("%w: %s is negative", ErrInvalidAverage, a.Key)
	}
	if a.Precision < 0 || a.Precision > maxAveragePrecision {
		return fmt.Errorf("%w: %s precision %d out of range", ErrInvalidAverage, a.Key, a.Precision)
	}
	return nil
}

// NewDataset validates rows and averages and returns an immutable Dataset.
// Rows must already be sorted by year; they are never reordered.
func NewDataset(rows []TimeSeriesRow, averages []AverageStat) (Dataset, error) {
	if len(rows) == 0 {
		return Dataset{}, ErrNoRows
	}
	for i, r := range rows {
		if err := r.Validate(); err != nil {
			return Dataset{}, err
		}
		if i == 0 {
			continue
		}
		prev := rows[i-1].Year
		if r.Year <= prev {
			return Dataset{}, fmt.Errorf("%w: %d follows %d", ErrYearOrder, r.Year, prev)
		}
		if r.Year != prev+1 {
			return Dataset{}, fmt.Errorf("%w: %d follows %d", ErrYearGap, r.Year, prev)
		}
	}
	for _, a := range averages {
		if err := a.Validate(); err != nil {
			return Dataset{}, err
		}
	}

	ds := Dataset{
		rows:     make([]TimeSeriesRow, len(rows)),
		averages: make([]AverageStat, len(averages)),
	}
	copy(ds.rows, rows)
	copy(ds.averages, averages)
	return ds, nil
}

// Rows returns a copy of the rows in ascending year order.
func (d Dataset) Rows() []TimeSeriesRow {
	out := make([]TimeSeriesRow, len(d.rows))
	copy(out, d.rows)
	return out
}

// Averages returns a copy of the tile values.
func (d Dataset) Averages() []AverageStat {
	out := make([]AverageStat, len(d.averages))
	copy(out, d.averages)
	return out
}

func (d Dataset) Len() int { return len(d.rows) }

func (d Dataset) Years() []int {
	years := make([]int, len(d.rows))
	for i, r := range d.rows {
		years[i] = r.Year
	}
	return years
}

// Values returns the series for m, aligned with Years.
func (d Dataset) Values(m Metric) []float64 {
	vals := make([]float64, len(d.rows))
	for i, r := range d.rows {
		vals[i] = r.Value(m)
	}
	return vals
}

// Latest returns the row with the maximum year. ok is false for an empty Dataset.
func (d Dataset) Latest() (row TimeSeriesRow, ok bool) {
	for i, r := range d.rows {
		if i == 0 || r.Year > row.Year {
			row = r
			ok = true
		}
	}
	return row, ok
}

// YearSpan returns the first and last year.
func (d Dataset) YearSpan() (first, last int) {
	if len(d.rows) == 0 {
		return 0, 0
	}
	return d.rows[0].Year, d.rows[len(d.rows)-1].Year
}
