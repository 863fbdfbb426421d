// Package core provides the dashboard dataset, growth computation and display formatting.
//
// This file formats billion-unit values for tiles and bar labels. Values go through
// shopspring/decimal so half-way cases round the same on every platform.
package core

import (
	"github.com/shopspring/decimal"
)

// FormatFixed renders v with exactly precision decimals.
//
// Examples:
//
//	FormatFixed(4.5, 2)   -> "4.50"
//	FormatFixed(0.043, 3) -> "0.043"
func FormatFixed(v float64, precision int) string {
	return decimal.NewFromFloat(v).StringFixed(int32(precision))
}

// FormatBillions renders v with the "B" suffix used by the tiles.
func FormatBillions(v float64, precision int) string {
	return FormatFixed(v, precision) + "B"
}

// Display returns the stat formatted with its own precision.
func (a AverageStat) Display() string {
	return FormatBillions(a.Value, a.Precision)
}

// FormatPercent renders a share or growth rate with one decimal and a percent sign.
func FormatPercent(v float64) string {
	return FormatFixed(v, 1) + "%"
}
