package sales

import (
	"fmt"
	"time"

	"github.com/aouyang1/go-salesforecaster/timedataset"
)

// Record is one row of the uploaded sales table after conversion. Percent fields are kept
// in percent units.
type Record struct {
	Date         time.Time `json:"date"`
	Product      string    `json:"product"`
	Category     string    `json:"category"`
	UnitPrice    float64   `json:"unit_price"`
	Quantity     float64   `json:"quantity"`
	Amount       float64   `json:"amount"`
	DiscountRate float64   `json:"discount_rate"`
	WasteRate    float64   `json:"waste_rate"`
}

func (r *Record) setDate(f Field, t time.Time) error {
	if f != FieldDate {
		return fmt.Errorf("field %d is not a date, %w", f, ErrUnknownField)
	}
	r.Date = t
	return nil
}

func (r *Record) setText(f Field, s string) error {
	switch f {
	case FieldProduct:
		r.Product = s
	case FieldCategory:
		r.Category = s
	default:
		return fmt.Errorf("field %d is not text, %w", f, ErrUnknownField)
	}
	return nil
}

func (r *Record) setNumber(f Field, v float64) error {
	switch f {
	case FieldUnitPrice:
		r.UnitPrice = v
	case FieldQuantity:
		r.Quantity = v
	case FieldAmount:
		r.Amount = v
	case FieldDiscountRate:
		r.DiscountRate = v
	case FieldWasteRate:
		r.WasteRate = v
	default:
		return fmt.Errorf("field %d is not numeric, %w", f, ErrUnknownField)
	}
	return nil
}

// Table is the in-memory, request scoped sales table in upload order
type Table struct {
	Records []Record
}

func NewTable(records []Record) *Table {
	return &Table{Records: records}
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// Dates returns the date of every record in table order
func (t *Table) Dates() []time.Time {
	if t == nil {
		return nil
	}
	dates := make([]time.Time, 0, len(t.Records))
	for _, r := range t.Records {
		dates = append(dates, r.Date)
	}
	return dates
}

// MinDate returns the earliest date in the table or the zero time if empty
func (t *Table) MinDate() time.Time {
	var minDate time.Time
	for i, r := range t.recordsOrNil() {
		if i == 0 || r.Date.Before(minDate) {
			minDate = r.Date
		}
	}
	return minDate
}

// MaxDate returns the latest date in the table or the zero time if empty
func (t *Table) MaxDate() time.Time {
	var maxDate time.Time
	for i, r := range t.recordsOrNil() {
		if i == 0 || r.Date.After(maxDate) {
			maxDate = r.Date
		}
	}
	return maxDate
}

func (t *Table) recordsOrNil() []Record {
	if t == nil {
		return nil
	}
	return t.Records
}

// DailySeries sums the sales amount per date and returns the result as a strictly increasing
// daily series.
func (t *Table) DailySeries() (*timedataset.TimeDataset, error) {
	if t.Len() == 0 {
		return nil, ErrEmptyTable
	}
	totals := t.SumBy(KeyDate, Amount)
	SortByKey(totals)

	dates := make([]time.Time, 0, len(totals))
	amounts := make([]float64, 0, len(totals))
	for _, total := range totals {
		d, err := time.Parse(DateLayout, total.Key)
		if err != nil {
			return nil, fmt.Errorf("unable to parse aggregated date %q, %w", total.Key, err)
		}
		dates = append(dates, d)
		amounts = append(amounts, total.Value)
	}
	return timedataset.NewUnivariateDataset(dates, amounts)
}

// FromDailySeries builds a table with one record per date carrying the summed amount. Text
// columns are set to AllKey so the whole series forms a single group.
func FromDailySeries(td *timedataset.TimeDataset) *Table {
	if td == nil {
		return NewTable(nil)
	}
	records := make([]Record, 0, len(td.T))
	for i := range td.T {
		records = append(records, Record{
			Date:     td.T[i],
			Product:  AllKey,
			Category: AllKey,
			Amount:   td.Y[i],
		})
	}
	return NewTable(records)
}
