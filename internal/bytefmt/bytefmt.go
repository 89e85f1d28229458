// Package bytefmt renders byte counts the way the saved-films list shows them.
package bytefmt

import (
	"math"

	"github.com/dustin/go-humanize"
)

const base = 1024

var units = []string{"Bytes", "KB", "MB", "GB", "TB"}

// Format converts n into the largest binary unit for which the scaled value is
// at least 1, rounded to decimals places with trailing zeros dropped.
// Format(0, 2) is "0 Bytes", Format(2048, 2) is "2 KB". Values beyond the
// TB range stay in TB.
func Format(n int64, decimals int) string {
	if n == 0 {
		return "0 Bytes"
	}

	if decimals < 0 {
		decimals = 0
	}

	sign := ""
	abs := uint64(n)

	if n < 0 {
		sign = "-"
		abs = uint64(-n)
	}

	i := UnitIndex(abs)
	scaled := float64(abs) / math.Pow(base, float64(i))

	return sign + humanize.FtoaWithDigits(round(scaled, decimals), decimals) + " " + units[i]
}

// UnitIndex returns the index into the unit table used for n.
func UnitIndex(n uint64) int {
	i := 0
	for limit := uint64(base); n >= limit && i < len(units)-1; limit *= base {
		i++
	}

	return i
}

// Unit returns the label for a unit index.
func Unit(i int) string {
	return units[i]
}

func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))

	return math.Round(v*p) / p
}
