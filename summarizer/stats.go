package summarizer

import (
	"fmt"
	"time"

	"github.com/aouyang1/go-salesforecaster/event"
	"github.com/aouyang1/go-salesforecaster/sales"
	"github.com/aouyang1/go-salesforecaster/stats"
)

const (
	topN         = 3
	topQuantityN = 10

	// outlierTukeyFactor widens the interquartile range when flagging high rate products
	outlierTukeyFactor = 1.5
)

// Stats is the aggregated view of a sales table handed to the narrative prompt
type Stats struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	TopProducts   []sales.Total `json:"top_products"`
	TopCategories []sales.Total `json:"top_categories"`

	Discount stats.Summary `json:"discount"`
	Waste    stats.Summary `json:"waste"`

	Daily           []sales.Total `json:"daily"`
	CategoryAmounts []sales.Total `json:"category_amounts"`
	TopQuantities   []sales.Total `json:"top_quantities"`

	HighDiscount []sales.Total `json:"high_discount"`
	HighWaste    []sales.Total `json:"high_waste"`

	Holidays []event.Event `json:"holidays"`
}

// BuildStats aggregates the table into the figures the summary is written from
func BuildStats(table *sales.Table) (Stats, error) {
	if table.Len() == 0 {
		return Stats{}, sales.ErrEmptyTable
	}

	discount, err := stats.Describe(table.Values(sales.DiscountRate))
	if err != nil {
		return Stats{}, fmt.Errorf("unable to describe discount rate, %w", err)
	}
	waste, err := stats.Describe(table.Values(sales.WasteRate))
	if err != nil {
		return Stats{}, fmt.Errorf("unable to describe waste rate, %w", err)
	}

	quantities := table.SumBy(sales.KeyProduct, sales.Quantity)
	categories := table.SumBy(sales.KeyCategory, sales.Amount)

	daily := table.SumBy(sales.KeyDate, sales.Amount)
	sales.SortByKey(daily)

	start, end := table.MinDate(), table.MaxDate()
	return Stats{
		Start:           start,
		End:             end,
		TopProducts:     sales.Top(quantities, topN),
		TopCategories:   sales.Top(categories, topN),
		Discount:        discount,
		Waste:           waste,
		Daily:           daily,
		CategoryAmounts: sales.Top(categories, -1),
		TopQuantities:   sales.Top(quantities, topQuantityN),
		HighDiscount:    highRates(table, sales.DiscountRate),
		HighWaste:       highRates(table, sales.WasteRate),
		Holidays:        event.Holidays(start, end),
	}, nil
}

// highRates returns the products whose average rate sits above the upper Tukey fence of all
// product averages, highest first
func highRates(table *sales.Table, measure sales.Measure) []sales.Total {
	means := table.MeanBy(sales.KeyProduct, measure)
	vals := make([]float64, 0, len(means))
	for _, m := range means {
		vals = append(vals, m.Value)
	}

	var res []sales.Total
	for _, i := range stats.HighOutliers(vals, outlierTukeyFactor) {
		res = append(res, means[i])
	}
	return res
}
