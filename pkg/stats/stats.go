// Package stats computes fill statistics over the observed values of a
// column. Callers pass only non-missing values; an empty input has no
// defined statistic and yields a ComputeError.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"loanprep/pkg/errors"
)

func undefined(statistic string) *errors.ComputeError {
	return errors.NewComputeError("", statistic, "no non-missing values")
}

func checkFinite(statistic string, x []float64) error {
	if floats.HasNaN(x) {
		return errors.NewComputeError("", statistic, "input contains NaN")
	}
	return nil
}

// Mean computes the average of a slice.
func Mean(x []float64) (float64, error) {
	if len(x) == 0 {
		return 0, undefined("mean")
	}
	if err := checkFinite("mean", x); err != nil {
		return 0, err
	}
	return stat.Mean(x, nil), nil
}

// Median returns the median value of the slice (allocates a copy). For an
// even count it is the average of the two middle values.
func Median(x []float64) (float64, error) {
	n := len(x)
	if n == 0 {
		return 0, undefined("median")
	}
	if err := checkFinite("median", x); err != nil {
		return 0, err
	}
	cp := make([]float64, n)
	copy(cp, x)
	sort.Float64s(cp)
	mid := n >> 1 // bitwise division by 2
	if n&1 == 0 { // even
		return (cp[mid-1] + cp[mid]) * 0.5, nil
	}
	return cp[mid], nil
}

// Mode returns the most frequent value in the slice. Ties go to the lowest
// value.
func Mode(x []float64) (float64, error) {
	if len(x) == 0 {
		return 0, undefined("mode")
	}
	if err := checkFinite("mode", x); err != nil {
		return 0, err
	}
	counts := make(map[float64]int)
	for _, v := range x {
		counts[v]++
	}
	mode, maxCount := math.Inf(1), 0
	for v, c := range counts {
		if c > maxCount || (c == maxCount && v < mode) {
			mode, maxCount = v, c
		}
	}
	return mode, nil
}

// ModeString returns the most frequent string. Ties go to the value that
// sorts first byte-wise.
func ModeString(x []string) (string, error) {
	if len(x) == 0 {
		return "", undefined("mode")
	}
	counts := make(map[string]int)
	for _, v := range x {
		counts[v]++
	}
	mode, maxCount := "", 0
	for v, c := range counts {
		if c > maxCount || (c == maxCount && v < mode) {
			mode, maxCount = v, c
		}
	}
	return mode, nil
}
