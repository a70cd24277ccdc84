package forecast

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aouyang1/go-salesforecaster/models"
)

const (
	DefaultPeriods         = 7
	DefaultMinGroupSize    = 10
	DefaultParallelization = 1
)

var (
	ErrNonPositivePeriods      = errors.New("periods must be positive")
	ErrNonPositiveMinGroupSize = errors.New("minimum group size must be positive")
	ErrNonPositiveParallel     = errors.New("parallelization must be positive")
	ErrUnknownRegressor        = errors.New("unknown regressor")
)

// Regressor names the model fit to every group
type Regressor string

const (
	RegressorGBT   Regressor = "gbt"
	RegressorOLS   Regressor = "ols"
	RegressorLasso Regressor = "lasso"
)

// ParseRegressor matches a regressor by name, ignoring case and surrounding space
func ParseRegressor(name string) (Regressor, error) {
	r := Regressor(strings.ToLower(strings.TrimSpace(name)))
	switch r {
	case RegressorGBT, RegressorOLS, RegressorLasso:
		return r, nil
	case "":
		return RegressorGBT, nil
	}
	return "", fmt.Errorf("%q, %w", name, ErrUnknownRegressor)
}

// Options configures the weekday forecaster
type Options struct {
	// Periods is the number of consecutive future days forecast per group.
	Periods int `json:"periods"`

	// MinGroupSize is the smallest number of rows a group needs to be fit. Smaller groups
	// are skipped and left out of the result.
	MinGroupSize int `json:"min_group_size"`

	Regressor Regressor `json:"regressor"`

	// Parallelization is the number of groups fit concurrently.
	Parallelization int `json:"parallelization"`

	// Seed drives the row subsampling of the gradient boosting regressor.
	Seed uint64 `json:"seed"`

	GradientBoosting *models.GradientBoostingOptions `json:"gradient_boosting,omitempty"`
	Lasso            *models.LassoOptions            `json:"lasso,omitempty"`
}

// NewDefaultOptions returns the default forecaster options: seven days ahead, groups of ten
// rows or more, fit with gradient boosted trees
func NewDefaultOptions() *Options {
	return &Options{
		Periods:          DefaultPeriods,
		MinGroupSize:     DefaultMinGroupSize,
		Regressor:        RegressorGBT,
		Parallelization:  DefaultParallelization,
		GradientBoosting: models.NewDefaultGradientBoostingOptions(),
		Lasso:            models.NewDefaultLassoOptions(),
	}
}

// Validate fills in defaults for unset model options and checks the remaining values
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		o = NewDefaultOptions()
	}
	if o.Periods <= 0 {
		return nil, ErrNonPositivePeriods
	}
	if o.MinGroupSize <= 0 {
		return nil, ErrNonPositiveMinGroupSize
	}
	if o.Parallelization <= 0 {
		return nil, ErrNonPositiveParallel
	}
	r, err := ParseRegressor(string(o.Regressor))
	if err != nil {
		return nil, err
	}
	o.Regressor = r

	if o.GradientBoosting == nil {
		o.GradientBoosting = models.NewDefaultGradientBoostingOptions()
	}
	if _, err := o.GradientBoosting.Validate(); err != nil {
		return nil, fmt.Errorf("invalid gradient boosting options, %w", err)
	}
	if o.Lasso == nil {
		o.Lasso = models.NewDefaultLassoOptions()
	}
	if _, err := o.Lasso.Validate(); err != nil {
		return nil, fmt.Errorf("invalid lasso options, %w", err)
	}
	return o, nil
}

// newModel builds an unfitted model for one group. Linear models are fit without an intercept
// since the weekday indicators already span the constant.
func (o *Options) newModel() (models.Model, error) {
	switch o.Regressor {
	case RegressorOLS:
		return models.NewOLSRegression(&models.OLSOptions{FitIntercept: false})
	case RegressorLasso:
		opt := *o.Lasso
		opt.FitIntercept = false
		return models.NewLassoRegression(&opt)
	default:
		opt := *o.GradientBoosting
		opt.Seed = o.Seed
		return models.NewGradientBoostingRegressor(&opt)
	}
}
