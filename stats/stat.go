// Package stats computes descriptive statistics over sales measures
package stats

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

var ErrNoValues = errors.New("no values to describe")

// Summary mirrors the count, mean, std, min, quartiles, and max breakdown of a column
type Summary struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Min   float64 `json:"min"`
	P25   float64 `json:"25%"`
	P50   float64 `json:"50%"`
	P75   float64 `json:"75%"`
	Max   float64 `json:"max"`
}

// Describe summarizes the values using the sample standard deviation and quantiles linearly
// interpolated between closest ranks. A single value has a standard deviation of 0.
func Describe(values []float64) (Summary, error) {
	if len(values) == 0 {
		return Summary{}, ErrNoValues
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	s := Summary{
		Count: len(sorted),
		Mean:  stat.Mean(sorted, nil),
		Min:   sorted[0],
		P25:   Quantile(sorted, 0.25),
		P50:   Quantile(sorted, 0.5),
		P75:   Quantile(sorted, 0.75),
		Max:   sorted[len(sorted)-1],
	}
	if len(sorted) > 1 {
		s.Std = stat.StdDev(sorted, nil)
	}
	return s, nil
}

// Quantile returns the p-th quantile of sorted values, interpolating linearly between the two
// closest ranks at position p*(n-1)
func Quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	p = math.Min(math.Max(p, 0), 1)
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// DetectOutliers returns the indexes of values at or beyond the Tukey fences built from the
// lower and upper percentiles, widened by tukeyFactor times the inner range
func DetectOutliers(y []float64, lowerPerc, upperPerc, tukeyFactor float64) []int {
	if len(y) == 0 {
		return nil
	}
	lowerPerc = math.Max(lowerPerc, 0.0)
	upperPerc = math.Min(upperPerc, 1.0)
	tukeyFactor = math.Max(tukeyFactor, 0.0)

	yCopy := make([]float64, len(y))
	copy(yCopy, y)
	sort.Float64s(yCopy)

	lower := Quantile(yCopy, lowerPerc)
	upper := Quantile(yCopy, upperPerc)
	innerRange := upper - lower
	lower -= innerRange * tukeyFactor
	upper += innerRange * tukeyFactor

	var outlierIdx []int
	for i := 0; i < len(y); i++ {
		if y[i] > upper || y[i] < lower {
			outlierIdx = append(outlierIdx, i)
		}
	}
	return outlierIdx
}

// HighOutliers returns the indexes of values above the upper Tukey fence, largest first
func HighOutliers(y []float64, tukeyFactor float64) []int {
	if len(y) == 0 {
		return nil
	}
	sorted := make([]float64, len(y))
	copy(sorted, y)
	sort.Float64s(sorted)
	upper := Quantile(sorted, 0.75)
	upper += (upper - Quantile(sorted, 0.25)) * math.Max(tukeyFactor, 0.0)

	var idx []int
	for _, i := range DetectOutliers(y, 0.25, 0.75, tukeyFactor) {
		if y[i] > upper {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return y[idx[a]] > y[idx[b]]
	})
	return idx
}
