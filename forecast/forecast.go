// Package forecast predicts the next days of sales for every group of a sales table from the
// day of week pattern of that group alone
package forecast

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aouyang1/go-salesforecaster/feature"
	mat_ "github.com/aouyang1/go-salesforecaster/mat"
	"github.com/aouyang1/go-salesforecaster/sales"
)

// Forecaster fits one weekday model per group and projects it forward
type Forecaster struct {
	opt    *Options
	logger *slog.Logger
}

// New creates a Forecaster using the provided options. If no options are provided a default
// is used.
func New(opt *Options, logger *slog.Logger) (*Forecaster, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, fmt.Errorf("unable to validate forecast options, %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Forecaster{
		opt:    opt,
		logger: logger,
	}, nil
}

// Options returns a copy of the forecaster options
func (f *Forecaster) Options() Options {
	return *f.opt
}

// TargetDates returns the periods consecutive days following last
func TargetDates(last time.Time, periods int) []time.Time {
	dates := make([]time.Time, 0, periods)
	for i := 1; i <= periods; i++ {
		dates = append(dates, last.AddDate(0, 0, i))
	}
	return dates
}

// FutureWeekdays returns the weekday index of each of the periods days following last
func FutureWeekdays(last time.Time, periods int) []int {
	start := feature.WeekdayIndex(last)
	idx := make([]int, 0, periods)
	for i := 1; i <= periods; i++ {
		idx = append(idx, (start+i)%feature.DaysPerWeek)
	}
	return idx
}

// Forecast groups the table by key and forecasts every group with at least MinGroupSize rows.
// All groups share the same target dates, the days following the latest date of the whole
// table, while each group steps its weekdays from its own latest date. Any fit error fails
// the whole forecast.
func (f *Forecaster) Forecast(ctx context.Context, table *sales.Table, key sales.Key) (*Result, error) {
	if table.Len() == 0 {
		return newResult(nil), nil
	}
	res := newResult(TargetDates(table.MaxDate(), f.opt.Periods))

	groups := table.GroupBy(key)
	preds := make([][]float64, len(groups))
	scores := make([]Scores, len(groups))
	errs := make([]error, len(groups))

	sem := make(chan struct{}, f.opt.Parallelization)
	var wg sync.WaitGroup
	for i, g := range groups {
		if len(g.Records) < f.opt.MinGroupSize {
			f.logger.Debug("skipping group with insufficient rows",
				"key", key.String(), "group", g.Key,
				"rows", len(g.Records), "min_rows", f.opt.MinGroupSize)
			res.Skipped = append(res.Skipped, g.Key)
			continue
		}
		if ctx.Err() != nil {
			break
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(i int, g sales.Group) {
			defer func() {
				wg.Done()
				<-sem
			}()
			preds[i], scores[i], errs[i] = f.fitGroup(g.Records)
		}(i, g)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("forecast by %s interrupted, %w", key, err)
	}

	for i, g := range groups {
		if errs[i] != nil {
			return nil, fmt.Errorf("unable to forecast group %s, %w", g.Key, errs[i])
		}
		if preds[i] == nil {
			continue
		}
		f.logger.Debug("fit group",
			"key", key.String(), "group", g.Key,
			"mse", scores[i].MSE, "mape", scores[i].MAPE, "r2", scores[i].R2)
		res.add(g.Key, preds[i], scores[i])
	}

	f.logger.Info("forecast complete",
		"key", key.String(), "groups", res.Len(), "skipped", len(res.Skipped),
		"regressor", string(f.opt.Regressor))
	return res, nil
}

// ForecastDaily sums the sales amount per date and forecasts the resulting single series under
// the group key sales.AllKey
func (f *Forecaster) ForecastDaily(ctx context.Context, table *sales.Table) (*Result, error) {
	if table.Len() == 0 {
		return newResult(nil), nil
	}
	td, err := table.DailySeries()
	if err != nil {
		return nil, fmt.Errorf("unable to aggregate daily totals, %w", err)
	}
	return f.Forecast(ctx, sales.FromDailySeries(td), sales.KeyAll)
}

// fitGroup trains on the weekday columns active in the group and predicts the days following
// the group's latest date
func (f *Forecaster) fitGroup(records []sales.Record) ([]float64, Scores, error) {
	group := sales.NewTable(records)
	target := make([]float64, 0, len(records))
	for _, r := range records {
		target = append(target, r.Amount)
	}
	last := group.MaxDate()

	train := feature.BuildWeekdays(group.Dates()).Active()
	x := train.Matrix(false)
	y, err := mat_.NewColumn(target)
	if err != nil {
		return nil, Scores{}, err
	}

	model, err := f.opt.newModel()
	if err != nil {
		return nil, Scores{}, fmt.Errorf("unable to initialize %s model, %w", f.opt.Regressor, err)
	}
	if err := model.Fit(x, y); err != nil {
		return nil, Scores{}, fmt.Errorf("unable to fit %s model, %w", f.opt.Regressor, err)
	}

	fitted, err := model.Predict(x)
	if err != nil {
		return nil, Scores{}, fmt.Errorf("unable to predict training rows, %w", err)
	}
	scores, err := NewScores(fitted, target)
	if err != nil {
		return nil, Scores{}, err
	}

	future, err := feature.BuildWeekdayIndices(FutureWeekdays(last, f.opt.Periods))
	if err != nil {
		return nil, Scores{}, err
	}
	preds, err := model.Predict(future.Align(train.Labels()).Matrix(false))
	if err != nil {
		return nil, Scores{}, fmt.Errorf("unable to predict future weekdays, %w", err)
	}
	return preds, scores, nil
}
