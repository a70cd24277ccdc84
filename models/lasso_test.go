package models

import (
	"testing"

	mat_ "github.com/aouyang1/go-salesforecaster/mat"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestLassoOptionsValidate(t *testing.T) {
	testData := map[string]struct {
		opt      *LassoOptions
		err      error
		expected *LassoOptions
	}{
		"nil": {nil, nil, NewDefaultLassoOptions()},
		"valid": {
			&LassoOptions{Lambda: 1.0, Iterations: 100, Tolerance: 1e-5},
			nil,
			&LassoOptions{Lambda: 1.0, Iterations: 100, Tolerance: 1e-5},
		},
		"invalid lambda":     {&LassoOptions{Lambda: -1.0}, ErrNegativeLambda, nil},
		"invalid iterations": {&LassoOptions{Iterations: -1}, ErrNegativeIterations, nil},
		"invalid tolerance":  {&LassoOptions{Tolerance: -1.0}, ErrNegativeTolerance, nil},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			opt, err := td.opt.Validate()
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.expected, opt)
		})
	}
}

func TestLassoRegression(t *testing.T) {
	// y = 2 + 3*x0 + 4*x1
	tol := 1e-3
	testData := map[string]struct {
		x         [][]float64
		y         []float64
		opt       *LassoOptions
		intercept float64
		coef      []float64
	}{
		"model intercept": {
			x: [][]float64{
				{0, 0},
				{3, 5},
				{9, 20},
				{12, 6},
				{15, 10},
			},
			y: []float64{2, 31, 109, 62, 87},
			opt: &LassoOptions{
				Lambda:       0,
				Iterations:   100000,
				Tolerance:    1e-10,
				FitIntercept: true,
			},
			intercept: 2.0,
			coef:      []float64{3.0, 4.0},
		},
		"no intercept": {
			x: [][]float64{
				{1, 0, 0},
				{1, 3, 5},
				{1, 9, 20},
				{1, 12, 6},
				{1, 15, 10},
			},
			y: []float64{2, 31, 109, 62, 87},
			opt: &LassoOptions{
				Lambda:     0,
				Iterations: 100000,
				Tolerance:  1e-10,
			},
			intercept: 0.0,
			coef:      []float64{2.0, 3.0, 4.0},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			x, err := mat_.NewDenseFromArray(td.x)
			require.Nil(t, err)
			y := mat.NewDense(len(td.y), 1, td.y)

			model, err := NewLassoRegression(td.opt)
			require.Nil(t, err)

			testModel(t, model, x, y, td.intercept, td.coef, tol)
		})
	}
}

func TestLassoWeekdayShrinkage(t *testing.T) {
	levels := []float64{100, 120, 90, 95, 150, 300, 280}
	x, y := weekdayData(t, 4, levels, 10)

	model, err := NewLassoRegression(&LassoOptions{
		Lambda:     8,
		Iterations: 1000,
		Tolerance:  1e-8,
	})
	require.Nil(t, err)
	require.Nil(t, model.Fit(x, y))

	// each indicator has 4 active rows so the level shrinks by lambda / 4
	expected := make([]float64, len(levels))
	for i, l := range levels {
		expected[i] = l - 2
	}
	assert.InDeltaSlice(t, expected, model.Coef(), 1e-6)
}

func TestSoftThreshold(t *testing.T) {
	testData := map[string]struct {
		x, gamma, expected float64
	}{
		"positive above": {5, 2, 3},
		"negative above": {-5, 2, -3},
		"inside":         {1, 2, 0},
		"zero gamma":     {-1.5, 0, -1.5},
	}
	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expected, SoftThreshold(td.x, td.gamma))
		})
	}
}
