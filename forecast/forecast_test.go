package forecast

import (
	"bytes"
	"context"
	"math"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aouyang1/go-salesforecaster/feature"
	"github.com/aouyang1/go-salesforecaster/sales"
)

// 2024-04-01 is a Monday
func day(offset int) time.Time {
	return time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

// weekdayRecords builds one record per day for n days starting at start, with the amount taken
// from the weekday levels
func weekdayRecords(product, category string, start, n int, levels [7]float64) []sales.Record {
	var records []sales.Record
	for i := 0; i < n; i++ {
		d := day(start + i)
		records = append(records, sales.Record{
			Date:     d,
			Product:  product,
			Category: category,
			Quantity: 1,
			Amount:   levels[feature.WeekdayIndex(d)],
		})
	}
	return records
}

func assertOneDecimal(t *testing.T, v float64) {
	assert.InDelta(t, v, math.Round(v*10)/10, 1e-9)
}

func TestOptionsValidate(t *testing.T) {
	testData := map[string]struct {
		opt *Options
		err error
	}{
		"nil": {nil, nil},
		"empty regressor defaults to gbt": {
			&Options{Periods: 3, MinGroupSize: 2, Parallelization: 1},
			nil,
		},
		"zero periods": {
			&Options{Periods: 0, MinGroupSize: 10, Parallelization: 1},
			ErrNonPositivePeriods,
		},
		"zero min group size": {
			&Options{Periods: 7, MinGroupSize: 0, Parallelization: 1},
			ErrNonPositiveMinGroupSize,
		},
		"zero parallelization": {
			&Options{Periods: 7, MinGroupSize: 10, Parallelization: 0},
			ErrNonPositiveParallel,
		},
		"unknown regressor": {
			&Options{Periods: 7, MinGroupSize: 10, Parallelization: 1, Regressor: "lightgbm"},
			ErrUnknownRegressor,
		},
	}
	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			opt, err := td.opt.Validate()
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, RegressorGBT, opt.Regressor)
			assert.NotNil(t, opt.GradientBoosting)
			assert.NotNil(t, opt.Lasso)
		})
	}
}

func TestParseRegressor(t *testing.T) {
	r, err := ParseRegressor(" OLS ")
	require.Nil(t, err)
	assert.Equal(t, RegressorOLS, r)

	_, err = ParseRegressor("arima")
	assert.ErrorIs(t, err, ErrUnknownRegressor)
}

func TestTargetDatesAndFutureWeekdays(t *testing.T) {
	// Wednesday
	last := day(2)
	assert.Equal(t, []time.Time{day(3), day(4), day(5)}, TargetDates(last, 3))
	assert.Equal(t, []int{3, 4, 5, 6, 0, 1, 2, 3}, FutureWeekdays(last, 8))
	assert.Empty(t, TargetDates(last, 0))
}

func TestForecastIncreasingSequence(t *testing.T) {
	var records []sales.Record
	for i := 0; i < 12; i++ {
		records = append(records, sales.Record{
			Date:     day(i),
			Product:  "A",
			Category: "弁当",
			Amount:   float64(100 * (i + 1)),
		})
	}
	table := sales.NewTable(records)

	for _, regressor := range []Regressor{RegressorGBT, RegressorOLS, RegressorLasso} {
		t.Run(string(regressor), func(t *testing.T) {
			opt := NewDefaultOptions()
			opt.Regressor = regressor
			f, err := New(opt, nil)
			require.Nil(t, err)

			res, err := f.Forecast(context.Background(), table, sales.KeyProduct)
			require.Nil(t, err)

			gf, exists := res.Groups["A"]
			require.True(t, exists)
			require.Len(t, gf, 7)
			for i := 1; i <= 7; i++ {
				v, exists := gf[day(11+i).Format(sales.DateLayout)]
				require.True(t, exists)
				assert.GreaterOrEqual(t, v, 0.0)
				assertOneDecimal(t, v)
			}
		})
	}
}

func TestForecastSkipsSmallGroups(t *testing.T) {
	levels := [7]float64{100, 100, 100, 100, 100, 200, 200}
	records := weekdayRecords("A", "弁当", 0, 14, levels)
	records = append(records, weekdayRecords("B", "惣菜", 0, 9, levels)...)
	table := sales.NewTable(records)

	f, err := New(nil, nil)
	require.Nil(t, err)

	res, err := f.Forecast(context.Background(), table, sales.KeyProduct)
	require.Nil(t, err)
	assert.Contains(t, res.Groups, "A")
	assert.NotContains(t, res.Groups, "B")
	assert.Equal(t, []string{"B"}, res.Skipped)
	assert.Equal(t, []string{"A"}, res.Keys)

	// both categories share the same rows as the products
	res, err = f.Forecast(context.Background(), table, sales.KeyCategory)
	require.Nil(t, err)
	assert.Equal(t, 1, res.Len())
	assert.Contains(t, res.Groups, "弁当")
}

func TestForecastWeekdayPhaseFromGroupLastDate(t *testing.T) {
	levelsA := [7]float64{100, 100, 100, 100, 100, 100, 100}
	levelsB := [7]float64{700, 100, 100, 100, 100, 100, 100}

	// A ends Wednesday 2024-04-17, B ends Sunday 2024-04-14
	records := weekdayRecords("A", "X", 0, 17, levelsA)
	records = append(records, weekdayRecords("B", "Y", 0, 14, levelsB)...)
	table := sales.NewTable(records)

	opt := NewDefaultOptions()
	opt.Regressor = RegressorOLS
	f, err := New(opt, nil)
	require.Nil(t, err)

	res, err := f.Forecast(context.Background(), table, sales.KeyProduct)
	require.Nil(t, err)

	// dates start after the global latest date
	require.Equal(t, day(17), res.TargetDates[0])
	b := res.Groups["B"]
	require.Len(t, b, 7)

	// B's first forecast step follows its own Sunday, so it carries the Monday level
	assert.InDelta(t, 700.0, b[day(17).Format(sales.DateLayout)], 1e-6)
	for i := 18; i < 24; i++ {
		assert.InDelta(t, 100.0, b[day(i).Format(sales.DateLayout)], 1e-6)
	}

	a := res.Groups["A"]
	for _, v := range a {
		assert.InDelta(t, 100.0, v, 1e-6)
	}
}

func TestForecastUnseenWeekday(t *testing.T) {
	// only Mondays and Tuesdays are observed
	var records []sales.Record
	for w := 0; w < 6; w++ {
		records = append(records,
			sales.Record{Date: day(7 * w), Product: "A", Amount: 300},
			sales.Record{Date: day(7*w + 1), Product: "A", Amount: 500},
		)
	}
	table := sales.NewTable(records)

	opt := NewDefaultOptions()
	opt.Regressor = RegressorOLS
	f, err := New(opt, nil)
	require.Nil(t, err)

	res, err := f.Forecast(context.Background(), table, sales.KeyProduct)
	require.Nil(t, err)

	a := res.Groups["A"]
	require.Len(t, a, 7)
	// last date is a Tuesday, so the steps are Wed..Sun, Mon, Tue
	expected := []float64{0, 0, 0, 0, 0, 300, 500}
	for i, d := range res.TargetDates {
		assert.InDelta(t, expected[i], a[d.Format(sales.DateLayout)], 1e-6, d.Format(sales.DateLayout))
	}
}

func TestForecastDaily(t *testing.T) {
	levels := [7]float64{100, 100, 100, 100, 100, 400, 400}
	records := weekdayRecords("A", "X", 0, 7, levels)
	records = append(records, weekdayRecords("B", "Y", 0, 7, levels)...)
	table := sales.NewTable(records)

	opt := NewDefaultOptions()
	opt.Regressor = RegressorOLS
	opt.MinGroupSize = 7
	f, err := New(opt, nil)
	require.Nil(t, err)

	res, err := f.ForecastDaily(context.Background(), table)
	require.Nil(t, err)
	require.Equal(t, 1, res.Len())

	total := res.Groups[sales.AllKey]
	require.Len(t, total, 7)
	assert.InDelta(t, 200.0, total[day(7).Format(sales.DateLayout)], 1e-6)
	assert.InDelta(t, 800.0, total[day(12).Format(sales.DateLayout)], 1e-6)

	// seven distinct dates fall short of the default minimum
	f, err = New(nil, nil)
	require.Nil(t, err)
	res, err = f.ForecastDaily(context.Background(), table)
	require.Nil(t, err)
	assert.Equal(t, 0, res.Len())
	assert.Equal(t, []string{sales.AllKey}, res.Skipped)
}

func TestForecastEmptyTable(t *testing.T) {
	f, err := New(nil, nil)
	require.Nil(t, err)

	res, err := f.Forecast(context.Background(), sales.NewTable(nil), sales.KeyProduct)
	require.Nil(t, err)
	assert.Equal(t, 0, res.Len())

	out, err := json.Marshal(res)
	require.Nil(t, err)
	assert.JSONEq(t, `{}`, string(out))

	res, err = f.ForecastDaily(context.Background(), nil)
	require.Nil(t, err)
	assert.Equal(t, 0, res.Len())
}

func TestForecastParallelMatchesSerial(t *testing.T) {
	var records []sales.Record
	for i, p := range []string{"A", "B", "C", "D", "E"} {
		levels := [7]float64{}
		for d := range levels {
			levels[d] = float64(100*(i+1) + 10*d)
		}
		records = append(records, weekdayRecords(p, "X", i, 21, levels)...)
	}
	table := sales.NewTable(records)

	run := func(parallel int) *Result {
		opt := NewDefaultOptions()
		opt.Parallelization = parallel
		f, err := New(opt, nil)
		require.Nil(t, err)
		res, err := f.Forecast(context.Background(), table, sales.KeyProduct)
		require.Nil(t, err)
		return res
	}
	serial := run(1)
	parallel := run(4)
	assert.Equal(t, serial.Groups, parallel.Groups)
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, parallel.Keys)
}

func TestForecastCancelled(t *testing.T) {
	table := sales.NewTable(weekdayRecords("A", "X", 0, 14, [7]float64{1, 2, 3, 4, 5, 6, 7}))

	f, err := New(nil, nil)
	require.Nil(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.Forecast(ctx, table, sales.KeyProduct)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResultJSONAndTable(t *testing.T) {
	table := sales.NewTable(weekdayRecords("A", "X", 0, 14, [7]float64{10, 20, 30, 40, 50, 60, 70}))

	opt := NewDefaultOptions()
	opt.Regressor = RegressorOLS
	opt.Periods = 2
	f, err := New(opt, nil)
	require.Nil(t, err)

	res, err := f.Forecast(context.Background(), table, sales.KeyProduct)
	require.Nil(t, err)

	out, err := json.Marshal(res)
	require.Nil(t, err)
	assert.JSONEq(t, `{"A":{"2024-04-15":10,"2024-04-16":20}}`, string(out))

	var buf bytes.Buffer
	require.Nil(t, res.TablePrint(&buf))
	assert.Contains(t, buf.String(), "2024-04-15")
	assert.Contains(t, buf.String(), "10.0")
	assert.Contains(t, buf.String(), "A")

	buf.Reset()
	require.Nil(t, newResult(nil).TablePrint(&buf))
	assert.Contains(t, buf.String(), "No groups forecast")
}

func TestRound(t *testing.T) {
	testData := map[string]struct {
		in, expected float64
	}{
		"down":     {123.44, 123.4},
		"up":       {123.46, 123.5},
		"half":     {1.25, 1.3},
		"negative": {-2.26, -2.3},
		"integer":  {7, 7},
	}
	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.InDelta(t, td.expected, Round(td.in), 1e-9)
		})
	}
}

func TestScores(t *testing.T) {
	s, err := NewScores([]float64{1, 2, 3}, []float64{1, 2, 4})
	require.Nil(t, err)
	assert.InDelta(t, 1.0/3, s.MSE, 1e-9)
	assert.InDelta(t, 0.25/3, s.MAPE, 1e-9)
	assert.Less(t, s.R2, 1.0)

	_, err = NewScores([]float64{1}, []float64{1, 2})
	assert.ErrorIs(t, err, ErrResLenMismatch)

	assert.Equal(t, 1.0, RSquared([]float64{5, 5}, []float64{5, 5}))
	assert.Equal(t, 0.0, MAPE([]float64{1}, []float64{0}))
}
