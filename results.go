package salesforecaster

import (
	"github.com/aouyang1/go-salesforecaster/chart"
	"github.com/aouyang1/go-salesforecaster/forecast"
)

// Prediction holds the forecasts by product, by category, and of the daily total
type Prediction struct {
	Product  *forecast.Result `json:"product_forecast"`
	Category *forecast.Result `json:"category_forecast"`
	Date     *forecast.Result `json:"date_forecast"`
}

// Skipped returns the number of groups left out for having too few rows
func (p *Prediction) Skipped() int {
	if p == nil {
		return 0
	}
	var n int
	for _, r := range []*forecast.Result{p.Product, p.Category, p.Date} {
		if r != nil {
			n += len(r.Skipped)
		}
	}
	return n
}

// Report is the weekly narrative with links to its charts. HTML is the summary followed by the
// chart links with line breaks rendered as <br>.
type Report struct {
	Graphs  []chart.Graph `json:"graphs"`
	Summary string        `json:"summary"`
	HTML    string        `json:"html"`
}
