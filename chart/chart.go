// Package chart renders the weekly report charts as standalone HTML pages
package chart

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/google/uuid"

	"github.com/aouyang1/go-salesforecaster/sales"
)

const (
	// GraphsPath is the URL path under which rendered charts are served
	GraphsPath = "/static/graphs/"

	// TopProducts is the number of products ranked in the quantity chart
	TopProducts = 10
)

var ErrNoOutputDir = errors.New("no chart output directory")

// Graph references a rendered chart
type Graph struct {
	Title string `json:"title"`
	Name  string `json:"name"`
	URL   string `json:"url"`
}

// Renderer writes chart pages into Dir and links them under BaseURL
type Renderer struct {
	Dir     string
	BaseURL string

	logger *slog.Logger
}

func NewRenderer(dir, baseURL string, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		Dir:     dir,
		BaseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Render writes the daily amount, category share, and product quantity charts of the table
// and returns them in that order. File names are unique per call so earlier reports keep
// their charts.
func (r *Renderer) Render(table *sales.Table) ([]Graph, error) {
	if r.Dir == "" {
		return nil, ErrNoOutputDir
	}
	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("unable to create chart directory %s, %w", r.Dir, err)
	}

	daily, err := DailyAmountLine(table)
	if err != nil {
		return nil, err
	}

	pages := []struct {
		title string
		chart components.Charter
	}{
		{"日別売上金額", daily},
		{"カテゴリ別売上構成", CategoryPie(table)},
		{"商品別販売数量", TopQuantityBar(table, TopProducts)},
	}

	graphs := make([]Graph, 0, len(pages))
	for i, p := range pages {
		name := fmt.Sprintf("graph%d_%s.html", i+1, uuid.NewString())
		if err := r.write(name, p.chart); err != nil {
			return nil, fmt.Errorf("unable to render %s, %w", p.title, err)
		}
		graphs = append(graphs, Graph{
			Title: p.title,
			Name:  name,
			URL:   r.BaseURL + GraphsPath + name,
		})
	}
	r.logger.Debug("rendered charts", "dir", r.Dir, "count", len(graphs))
	return graphs, nil
}

func (r *Renderer) write(name string, chart components.Charter) (err error) {
	file, err := os.Create(filepath.Join(r.Dir, name))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("unable to close %s, %w", name, cerr)
		}
	}()

	page := components.NewPage()
	page.AddCharts(chart)
	return page.Render(file)
}

// DailyAmountLine plots the summed sales amount of every date in order
func DailyAmountLine(table *sales.Table) (*charts.Line, error) {
	td, err := table.DailySeries()
	if err != nil {
		return nil, fmt.Errorf("unable to aggregate daily amounts, %w", err)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title:    "日別売上金額の推移",
				Subtitle: fmt.Sprintf("%s 〜 %s",
					td.StartTime().Format(sales.DateLayout), td.EndTime().Format(sales.DateLayout)),
			},
		),
		charts.WithYAxisOpts(
			opts.YAxis{
				Name: "売上金額（円）",
			},
		),
		charts.WithTooltipOpts(
			opts.Tooltip{
				Show:    opts.Bool(true),
				Trigger: "axis",
			},
		),
	)

	lineData := make([]opts.LineData, 0, td.Len())
	for _, y := range td.Y {
		lineData = append(lineData, opts.LineData{Value: y})
	}
	line.SetXAxis(td.Labels(sales.DateLayout)).
		AddSeries("販売金額", lineData).
		SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)}))
	return line, nil
}

// CategoryPie plots each category's share of the total sales amount
func CategoryPie(table *sales.Table) *charts.Pie {
	totals := table.SumBy(sales.KeyCategory, sales.Amount)
	sales.SortDesc(totals)

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: "カテゴリ別売上構成比",
			},
		),
	)

	items := make([]opts.PieData, 0, len(totals))
	for _, t := range totals {
		items = append(items, opts.PieData{Name: t.Key, Value: t.Value})
	}
	pie.AddSeries("カテゴリ", items).
		SetSeriesOptions(
			charts.WithLabelOpts(
				opts.Label{
					Show:      opts.Bool(true),
					Formatter: "{b}: {d}%",
				},
			),
		)
	return pie
}

// TopQuantityBar ranks the n products with the highest summed quantity
func TopQuantityBar(table *sales.Table, n int) *charts.Bar {
	top := sales.Top(table.SumBy(sales.KeyProduct, sales.Quantity), n)

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: fmt.Sprintf("商品別販売数量ランキング Top%d", n),
			},
		),
		charts.WithXAxisOpts(
			opts.XAxis{
				Name: "販売数量",
			},
		),
	)

	names := make([]string, 0, len(top))
	barData := make([]opts.BarData, 0, len(top))
	// horizontal bars draw bottom up, so reverse to keep the largest on top
	for i := len(top) - 1; i >= 0; i-- {
		names = append(names, top[i].Key)
		barData = append(barData, opts.BarData{Value: top[i].Value})
	}
	bar.SetXAxis(names).
		AddSeries("販売数量", barData).
		XYReversal()
	return bar
}
