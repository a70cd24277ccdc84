// Package salesforecaster combines the weekday forecaster, chart renderer, and summarizer into
// the prediction and weekly report operations served over HTTP and the command line
package salesforecaster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aouyang1/go-salesforecaster/chart"
	"github.com/aouyang1/go-salesforecaster/forecast"
	"github.com/aouyang1/go-salesforecaster/sales"
	"github.com/aouyang1/go-salesforecaster/summarizer"
)

var (
	ErrExternalService = errors.New("external service failure")
	ErrNoSummarizer    = errors.New("no summarizer configured")
	ErrNoRenderer      = errors.New("no chart renderer configured")
)

// Service runs predictions and reports over uploaded sales tables
type Service struct {
	opt        *Options
	forecaster *forecast.Forecaster
	logger     *slog.Logger
}

// New creates a Service using the provided options. If no options are provided a default is
// used.
func New(opt *Options) (*Service, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}

	f, err := forecast.New(opt.Forecast, opt.Logger)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize forecaster, %w", err)
	}
	return &Service{
		opt:        opt,
		forecaster: f,
		logger:     opt.Logger,
	}, nil
}

// Forecast runs the forecaster over the table grouped by key. KeyDate forecasts the single
// series of daily totals.
func (s *Service) Forecast(ctx context.Context, table *sales.Table, key sales.Key) (*forecast.Result, error) {
	if key == sales.KeyDate {
		return s.forecaster.ForecastDaily(ctx, table)
	}
	return s.forecaster.Forecast(ctx, table, key)
}

// Predict forecasts the days following the latest date of the table for every product, every
// category, and the daily total
func (s *Service) Predict(ctx context.Context, table *sales.Table) (*Prediction, error) {
	start := time.Now()

	var p Prediction
	targets := []struct {
		key sales.Key
		res **forecast.Result
	}{
		{sales.KeyProduct, &p.Product},
		{sales.KeyCategory, &p.Category},
		{sales.KeyDate, &p.Date},
	}
	for _, t := range targets {
		res, err := s.Forecast(ctx, table, t.key)
		if err != nil {
			return nil, fmt.Errorf("unable to forecast by %s, %w", t.key, err)
		}
		*t.res = res
	}

	s.logger.Info("prediction complete",
		"rows", table.Len(),
		"products", p.Product.Len(), "categories", p.Category.Len(),
		"skipped", p.Skipped(), "elapsed", time.Since(start))
	return &p, nil
}

// Report renders the charts of the table, asks the summarizer for a narrative of its statistics,
// and assembles both into a single HTML fragment
func (s *Service) Report(ctx context.Context, table *sales.Table) (*Report, error) {
	if s.opt.Charts == nil {
		return nil, ErrNoRenderer
	}
	if s.opt.Summarizer == nil {
		return nil, fmt.Errorf("%w, %w", ErrExternalService, ErrNoSummarizer)
	}

	st, err := summarizer.BuildStats(table)
	if err != nil {
		return nil, fmt.Errorf("unable to compute report statistics, %w", err)
	}

	graphs, err := s.opt.Charts.Render(table)
	if err != nil {
		return nil, fmt.Errorf("%w, unable to render charts, %w", ErrExternalService, err)
	}

	summary, err := s.opt.Summarizer.Summarize(ctx, summarizer.BuildPrompt(st, graphs))
	if err != nil {
		return nil, fmt.Errorf("%w, unable to summarize report, %w", ErrExternalService, err)
	}

	s.logger.Info("report complete",
		"rows", table.Len(), "graphs", len(graphs), "summary_len", len(summary))
	return &Report{
		Graphs:  graphs,
		Summary: summary,
		HTML:    ReportHTML(summary, graphs),
	}, nil
}

// ReportHTML appends a titled link per graph to the summary, separated by a horizontal rule, and
// renders every newline as <br>
func ReportHTML(summary string, graphs []chart.Graph) string {
	links := make([]string, 0, len(graphs))
	for _, g := range graphs {
		links = append(links, fmt.Sprintf("**%s**\n\n[%s](%s)", g.Title, g.Title, g.URL))
	}
	full := summary + "\n\n---\n\n" + strings.Join(links, "\n\n")
	return strings.ReplaceAll(full, "\n", "<br>")
}
