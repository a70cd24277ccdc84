package salesforecaster

import (
	"fmt"
	"log/slog"

	"github.com/aouyang1/go-salesforecaster/chart"
	"github.com/aouyang1/go-salesforecaster/forecast"
	"github.com/aouyang1/go-salesforecaster/summarizer"
)

// Options configures a Service. Charts and Summarizer are only needed for reports, a Service
// without them can still predict.
type Options struct {
	Forecast   *forecast.Options
	Charts     *chart.Renderer
	Summarizer summarizer.Summarizer
	Logger     *slog.Logger
}

func NewDefaultOptions() *Options {
	return &Options{
		Forecast: forecast.NewDefaultOptions(),
		Logger:   slog.Default(),
	}
}

// Validate fills in defaults for unset fields and checks the forecast options
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		o = NewDefaultOptions()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	fopt, err := o.Forecast.Validate()
	if err != nil {
		return nil, fmt.Errorf("unable to validate forecast options, %w", err)
	}
	o.Forecast = fopt
	return o, nil
}
