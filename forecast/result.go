package forecast

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"
	"time"

	"github.com/goccy/go-json"

	"github.com/aouyang1/go-salesforecaster/sales"
)

// GroupForecast maps an ISO date to the predicted sales amount for that day
type GroupForecast map[string]float64

// Result holds the forecast of every fitted group. Only Groups is serialized, skipped groups and
// fit scores are kept for logging and diagnostics.
type Result struct {
	Groups      map[string]GroupForecast
	Keys        []string
	Skipped     []string
	Scores      map[string]Scores
	TargetDates []time.Time
}

func newResult(targets []time.Time) *Result {
	return &Result{
		Groups:      make(map[string]GroupForecast),
		Scores:      make(map[string]Scores),
		TargetDates: targets,
	}
}

func (r *Result) add(key string, preds []float64, scores Scores) {
	gf := make(GroupForecast, len(r.TargetDates))
	for i, d := range r.TargetDates {
		gf[d.Format(sales.DateLayout)] = Round(preds[i])
	}
	r.Groups[key] = gf
	r.Keys = append(r.Keys, key)
	r.Scores[key] = scores
}

// Len returns the number of fitted groups
func (r *Result) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Groups)
}

// MarshalJSON encodes the result as a mapping of group key to its dated predictions
func (r *Result) MarshalJSON() ([]byte, error) {
	if r == nil || r.Groups == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(r.Groups)
}

// TablePrint writes one row per fitted group with a column per forecast date
func (r *Result) TablePrint(w io.Writer) error {
	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	if r.Len() == 0 {
		fmt.Fprintln(w, "No groups forecast")
		return nil
	}

	fmt.Fprint(tbl, "Group\t")
	for _, d := range r.TargetDates {
		fmt.Fprintf(tbl, "%s\t", d.Format(sales.DateLayout))
	}
	fmt.Fprint(tbl, "R2\t\n")

	for _, key := range r.Keys {
		gf := r.Groups[key]
		fmt.Fprintf(tbl, "%s\t", key)
		for _, d := range r.TargetDates {
			fmt.Fprintf(tbl, "%.1f\t", gf[d.Format(sales.DateLayout)])
		}
		fmt.Fprintf(tbl, "%.3f\t\n", r.Scores[key].R2)
	}
	if len(r.Skipped) > 0 {
		fmt.Fprintf(tbl, "Skipped:\t%d\t\n", len(r.Skipped))
	}
	return tbl.Flush()
}

// Round rounds a prediction half away from zero to one decimal place
func Round(v float64) float64 {
	return math.Round(v*10) / 10
}
