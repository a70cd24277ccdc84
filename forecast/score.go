package forecast

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

var ErrResLenMismatch = errors.New("predicted and actual have different lengths")

// Scores tracks the in sample fit scores of a group
type Scores struct {
	MSE  float64 `json:"mean_squared_error"`
	MAPE float64 `json:"mean_average_percent_error"`
	R2   float64 `json:"r_squared"`
}

// NewScores calculates the fit scores given the predicted and actual input slice values
func NewScores(predicted, actual []float64) (Scores, error) {
	if len(predicted) != len(actual) {
		return Scores{}, fmt.Errorf("expected %d, but got %d, %w", len(actual), len(predicted), ErrResLenMismatch)
	}
	return Scores{
		MSE:  MSE(predicted, actual),
		MAPE: MAPE(predicted, actual),
		R2:   RSquared(predicted, actual),
	}, nil
}

// MSE computes the mean squared error over the pairs where both values are defined.
// A score of 0 means a perfect match with no errors.
func MSE(predicted, actual []float64) float64 {
	var sum float64
	var cnt int
	for i := range actual {
		if math.IsNaN(actual[i]) || math.IsNaN(predicted[i]) {
			continue
		}
		d := actual[i] - predicted[i]
		sum += d * d
		cnt++
	}
	if cnt == 0 {
		return 0
	}
	return sum / float64(cnt)
}

// MAPE calculates the mean absolute percent error over the pairs with a non zero actual.
// A score of 0 means a perfect match with no errors.
func MAPE(predicted, actual []float64) float64 {
	var sum float64
	var cnt int
	for i := range actual {
		if math.IsNaN(actual[i]) || math.IsNaN(predicted[i]) || actual[i] == 0 {
			continue
		}
		sum += math.Abs((actual[i] - predicted[i]) / actual[i])
		cnt++
	}
	if cnt == 0 {
		return 0
	}
	return sum / float64(cnt)
}

// RSquared computes the coefficient of determination where 1.0 means a perfect fit. A constant
// actual series scores 1.0.
func RSquared(predicted, actual []float64) float64 {
	p := make([]float64, 0, len(predicted))
	a := make([]float64, 0, len(actual))
	for i := range actual {
		if math.IsNaN(actual[i]) || math.IsNaN(predicted[i]) {
			continue
		}
		p = append(p, predicted[i])
		a = append(a, actual[i])
	}
	r2 := stat.RSquaredFrom(p, a, nil)
	if math.IsNaN(r2) || math.IsInf(r2, 0) {
		return 1.0
	}
	return r2
}
