package sales

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrUnknownKey = errors.New("unknown group key")

// AllKey is the single group key used when the whole table is treated as one series
const AllKey = "total"

// Key selects the column used to partition records into independent groups
type Key int

const (
	KeyProduct Key = iota
	KeyCategory
	KeyDate
	KeyAll
)

func (k Key) String() string {
	switch k {
	case KeyProduct:
		return "product"
	case KeyCategory:
		return "category"
	case KeyDate:
		return "date"
	case KeyAll:
		return "all"
	}
	return "unknown"
}

// Value returns the group key of a record
func (k Key) Value(r Record) string {
	switch k {
	case KeyProduct:
		return r.Product
	case KeyCategory:
		return r.Category
	case KeyDate:
		return r.Date.Format(DateLayout)
	}
	return AllKey
}

// ParseKey maps a key name to its Key
func ParseKey(name string) (Key, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "product":
		return KeyProduct, nil
	case "category":
		return KeyCategory, nil
	case "date":
		return KeyDate, nil
	case "all", AllKey:
		return KeyAll, nil
	}
	return 0, fmt.Errorf("%s, %w", name, ErrUnknownKey)
}

// Measure extracts the numeric value aggregated from a record
type Measure func(Record) float64

func Amount(r Record) float64       { return r.Amount }
func Quantity(r Record) float64     { return r.Quantity }
func DiscountRate(r Record) float64 { return r.DiscountRate }
func WasteRate(r Record) float64    { return r.WasteRate }

// Group is the set of records sharing a group key, in table order
type Group struct {
	Key     string
	Records []Record
}

// GroupBy partitions the table by key. Groups are returned in the order their key is first seen.
func (t *Table) GroupBy(key Key) []Group {
	idx := make(map[string]int)
	var groups []Group
	for _, r := range t.recordsOrNil() {
		k := key.Value(r)
		i, exists := idx[k]
		if !exists {
			i = len(groups)
			idx[k] = i
			groups = append(groups, Group{Key: k})
		}
		groups[i].Records = append(groups[i].Records, r)
	}
	return groups
}

// Total is an aggregated value for a single group key
type Total struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// SumBy sums the measure per group key in first seen order
func (t *Table) SumBy(key Key, measure Measure) []Total {
	groups := t.GroupBy(key)
	totals := make([]Total, 0, len(groups))
	for _, g := range groups {
		var sum float64
		for _, r := range g.Records {
			sum += measure(r)
		}
		totals = append(totals, Total{Key: g.Key, Value: sum})
	}
	return totals
}

// MeanBy averages the measure per group key in first seen order
func (t *Table) MeanBy(key Key, measure Measure) []Total {
	groups := t.GroupBy(key)
	means := make([]Total, 0, len(groups))
	for _, g := range groups {
		var sum float64
		for _, r := range g.Records {
			sum += measure(r)
		}
		means = append(means, Total{Key: g.Key, Value: sum / float64(len(g.Records))})
	}
	return means
}

// Values returns the measure of every record in table order
func (t *Table) Values(measure Measure) []float64 {
	records := t.recordsOrNil()
	vals := make([]float64, 0, len(records))
	for _, r := range records {
		vals = append(vals, measure(r))
	}
	return vals
}

// SortDesc orders totals by value, largest first. Ties keep their original order.
func SortDesc(totals []Total) {
	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Value > totals[j].Value
	})
}

// SortByKey orders totals lexically by key which is chronological for date keys
func SortByKey(totals []Total) {
	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Key < totals[j].Key
	})
}

// Top returns the n largest totals by value
func Top(totals []Total, n int) []Total {
	out := make([]Total, len(totals))
	copy(out, totals)
	SortDesc(out)
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}
