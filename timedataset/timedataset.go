package timedataset

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNoData             = errors.New("no series data")
	ErrNonMontonic        = errors.New("time feature is not monotonic")
	ErrDatasetLenMismatch = errors.New("time feature has a different length than observations")
)

// TimeDataset represents a daily series storing a slice of dates and values.
// Both must be of the same length and dates must be strictly increasing.
type TimeDataset struct {
	T []time.Time
	Y []float64
}

// NewUnivariateDataset returns an instance of a TimeDataset given a time and value slice.
func NewUnivariateDataset(t []time.Time, y []float64) (*TimeDataset, error) {
	if len(y) == 0 {
		return nil, ErrNoData
	}
	if len(t) != len(y) {
		return nil, fmt.Errorf(
			"time feature has length of %d, but values has a length of %d, %w",
			len(t), len(y), ErrDatasetLenMismatch,
		)
	}

	var lastT time.Time
	for i := 0; i < len(t); i++ {
		currT := t[i]
		if currT.Before(lastT) || currT.Equal(lastT) {
			return nil, fmt.Errorf("non-monotonic at %d, %w", i, ErrNonMontonic)
		}
		lastT = currT
	}

	tSeries := make([]time.Time, len(t))
	ySeries := make([]float64, len(t))
	copy(tSeries, t)
	copy(ySeries, y)
	return &TimeDataset{
		T: tSeries,
		Y: ySeries,
	}, nil
}

// Len returns the number of points in the series
func (td *TimeDataset) Len() int {
	if td == nil {
		return 0
	}
	return len(td.T)
}

// StartTime returns the first date of the series or the zero time if empty
func (td *TimeDataset) StartTime() time.Time {
	var startTime time.Time
	if td.Len() == 0 {
		return startTime
	}
	return td.T[0]
}

// EndTime returns the last date of the series or the zero time if empty
func (td *TimeDataset) EndTime() time.Time {
	var endTime time.Time
	if td.Len() == 0 {
		return endTime
	}
	return td.T[len(td.T)-1]
}

// Labels formats each date with the given layout, typically used as chart axis labels
// or mapping keys.
func (td *TimeDataset) Labels(layout string) []string {
	if td == nil {
		return nil
	}
	labels := make([]string, 0, len(td.T))
	for _, t := range td.T {
		labels = append(labels, t.Format(layout))
	}
	return labels
}
