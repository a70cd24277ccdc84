package models

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/aouyang1/go-salesforecaster/floatsunrolled"
)

const (
	DefaultNumEstimators  = 100
	DefaultLearningRate   = 0.1
	DefaultMaxDepth       = 3
	DefaultMinSamplesLeaf = 2
	DefaultSubsample      = 1.0
)

var (
	ErrNonPositiveEstimators = errors.New("number of estimators must be positive")
	ErrInvalidLearningRate   = errors.New("learning rate must be in (0, 1]")
	ErrNonPositiveDepth      = errors.New("max depth must be positive")
	ErrNonPositiveLeaf       = errors.New("min samples per leaf must be positive")
	ErrInvalidSubsample      = errors.New("subsample must be in (0, 1]")
)

// GradientBoostingOptions configures squared error gradient boosting over regression trees
type GradientBoostingOptions struct {
	// NumEstimators is the number of boosting rounds, one tree per round.
	NumEstimators int

	// LearningRate shrinks the contribution of each tree.
	LearningRate float64

	// MaxDepth limits the number of splits from the root to any leaf.
	MaxDepth int

	// MinSamplesLeaf is the minimum number of training rows in every leaf.
	MinSamplesLeaf int

	// Subsample is the fraction of rows drawn without replacement to grow each tree. Values
	// below 1.0 make the fit stochastic and depend on Seed.
	Subsample float64

	Seed uint64
}

// NewDefaultGradientBoostingOptions returns a default set of gradient boosting options
func NewDefaultGradientBoostingOptions() *GradientBoostingOptions {
	return &GradientBoostingOptions{
		NumEstimators:  DefaultNumEstimators,
		LearningRate:   DefaultLearningRate,
		MaxDepth:       DefaultMaxDepth,
		MinSamplesLeaf: DefaultMinSamplesLeaf,
		Subsample:      DefaultSubsample,
	}
}

// Validate runs basic validation on gradient boosting options
func (g *GradientBoostingOptions) Validate() (*GradientBoostingOptions, error) {
	if g == nil {
		g = NewDefaultGradientBoostingOptions()
	}
	if g.NumEstimators <= 0 {
		return nil, ErrNonPositiveEstimators
	}
	if g.LearningRate <= 0 || g.LearningRate > 1 {
		return nil, ErrInvalidLearningRate
	}
	if g.MaxDepth <= 0 {
		return nil, ErrNonPositiveDepth
	}
	if g.MinSamplesLeaf <= 0 {
		return nil, ErrNonPositiveLeaf
	}
	if g.Subsample <= 0 || g.Subsample > 1 {
		return nil, ErrInvalidSubsample
	}
	return g, nil
}

// GradientBoostingRegressor fits an additive ensemble of regression trees, each tree trained on
// the residuals of the ensemble so far.
type GradientBoostingRegressor struct {
	opt *GradientBoostingOptions

	init       float64
	trees      []*treeNode
	importance []float64
	nFeatures  int
	fitted     bool
}

// NewGradientBoostingRegressor initializes a gradient boosting model ready for fitting
func NewGradientBoostingRegressor(opt *GradientBoostingOptions) (*GradientBoostingRegressor, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &GradientBoostingRegressor{
		opt: opt,
	}, nil
}

// Fit the model according to the given training data
func (g *GradientBoostingRegressor) Fit(x, y mat.Matrix) error {
	if g.opt == nil {
		return ErrNoOptions
	}
	m, n, err := checkTraining(x, y)
	if err != nil {
		return err
	}
	if m == 0 {
		return fmt.Errorf("no observations, %w", ErrNoTrainingMatrix)
	}

	cols := make([][]float64, n)
	for j := 0; j < n; j++ {
		cols[j] = mat.Col(nil, j, x)
	}
	target := mat.Col(nil, 0, y)

	g.init = floats.Sum(target) / float64(m)
	g.nFeatures = n
	g.importance = make([]float64, n)
	g.trees = make([]*treeNode, 0, g.opt.NumEstimators)

	pred := make([]float64, m)
	for i := range pred {
		pred[i] = g.init
	}
	residual := make([]float64, m)

	sampleSize := max(1, int(math.Round(g.opt.Subsample*float64(m))))
	rng := rand.New(rand.NewPCG(g.opt.Seed, g.opt.Seed^0x9e3779b97f4a7c15))

	builder := &treeBuilder{
		cols:       cols,
		target:     residual,
		maxDepth:   g.opt.MaxDepth,
		minLeaf:    g.opt.MinSamplesLeaf,
		importance: g.importance,
	}
	all := make([]int, m)
	for i := range all {
		all[i] = i
	}
	row := make([]float64, n)
	for k := 0; k < g.opt.NumEstimators; k++ {
		floatsunrolled.SubTo(residual, target, pred)

		rows := all
		if sampleSize < m {
			rows = rng.Perm(m)[:sampleSize]
		}

		tree := builder.build(rows, 0)
		g.trees = append(g.trees, tree)

		for i := 0; i < m; i++ {
			for j := 0; j < n; j++ {
				row[j] = cols[j][i]
			}
			pred[i] += g.opt.LearningRate * tree.predict(row)
		}
	}
	g.fitted = true
	return nil
}

// Predict using the boosted ensemble
func (g *GradientBoostingRegressor) Predict(x mat.Matrix) ([]float64, error) {
	if g.opt == nil {
		return nil, ErrNoOptions
	}
	if !g.fitted {
		return nil, ErrNotFitted
	}
	if x == nil {
		return nil, ErrNoDesignMatrix
	}
	m, n := x.Dims()
	if n != g.nFeatures {
		return nil, fmt.Errorf("got %d features in design matrix, but expected %d, %w", n, g.nFeatures, ErrFeatureLenMismatch)
	}

	res := make([]float64, m)
	row := make([]float64, n)
	for i := 0; i < m; i++ {
		mat.Row(row, i, x)
		v := g.init
		for _, tree := range g.trees {
			v += g.opt.LearningRate * tree.predict(row)
		}
		res[i] = v
	}
	return res, nil
}

// Score computes the coefficient of determination of the prediction
func (g *GradientBoostingRegressor) Score(x, y mat.Matrix) (float64, error) {
	if g.opt == nil {
		return 0.0, ErrNoOptions
	}
	return score(g, x, y)
}

// Intercept returns the initial constant prediction, the mean of the training target
func (g *GradientBoostingRegressor) Intercept() float64 {
	return g.init
}

// Coef returns the split gain importance of each feature normalized to sum to 1. Features never
// used in a split have zero importance.
func (g *GradientBoostingRegressor) Coef() []float64 {
	c := make([]float64, len(g.importance))
	copy(c, g.importance)
	if total := floats.Sum(c); total > 0 {
		floats.Scale(1/total, c)
	}
	return c
}

// NumTrees returns the number of fitted trees
func (g *GradientBoostingRegressor) NumTrees() int {
	return len(g.trees)
}
