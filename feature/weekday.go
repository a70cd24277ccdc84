package feature

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DaysPerWeek is the number of mutually exclusive weekday indicators
const DaysPerWeek = 7

var (
	ErrWeekdayRange = errors.New("weekday index out of range")
	ErrNotOneHot    = errors.New("row does not have exactly one active weekday")
)

// Weekday is a one-hot day of week indicator. Index follows Monday=0 .. Sunday=6.
type Weekday struct {
	Index int `json:"index"`
}

func NewWeekday(idx int) *Weekday {
	return &Weekday{idx}
}

func (w Weekday) String() string {
	return fmt.Sprintf("曜日_%d", w.Index)
}

func (w Weekday) Get(label string) (string, bool) {
	switch strings.ToLower(label) {
	case "index":
		return strconv.Itoa(w.Index), true
	}
	return "", false
}

func (w Weekday) Type() FeatureType {
	return FeatureTypeWeekday
}

func (w Weekday) Decode() map[string]string {
	res := make(map[string]string)
	res["index"] = strconv.Itoa(w.Index)
	return res
}

func (w *Weekday) UnmarshalJSON(data []byte) error {
	var labelStr struct {
		Index string `json:"index"`
	}
	if err := json.Unmarshal(data, &labelStr); err != nil {
		return err
	}
	idx, err := strconv.Atoi(labelStr.Index)
	if err != nil {
		return err
	}
	if idx < 0 || idx >= DaysPerWeek {
		return fmt.Errorf("index %d, %w", idx, ErrWeekdayRange)
	}
	w.Index = idx
	return nil
}

// WeekdayIndex returns the day of week with Monday as 0 and Sunday as 6
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % DaysPerWeek
}

// BuildWeekdays encodes each date as seven mutually exclusive weekday indicator columns.
// Row order is preserved.
func BuildWeekdays(dates []time.Time) *Set {
	idx := make([]int, 0, len(dates))
	for _, d := range dates {
		idx = append(idx, WeekdayIndex(d))
	}
	s, _ := BuildWeekdayIndices(idx)
	return s
}

// BuildWeekdayIndices encodes weekday indices as seven one-hot indicator columns
func BuildWeekdayIndices(idx []int) (*Set, error) {
	cols := make([][]float64, DaysPerWeek)
	for d := range cols {
		cols[d] = make([]float64, len(idx))
	}
	for i, d := range idx {
		if d < 0 || d >= DaysPerWeek {
			return nil, fmt.Errorf("index %d at row %d, %w", d, i, ErrWeekdayRange)
		}
		cols[d][i] = 1.0
	}

	s := NewSet()
	for d, col := range cols {
		s.Set(NewWeekday(d), col)
	}
	return s, nil
}

// WeekdayIndices decodes the weekday indicator columns of a set back into weekday indices.
// Every row must have exactly one active indicator.
func (s *Set) WeekdayIndices() ([]int, error) {
	m := s.Rows()
	idx := make([]int, m)
	active := make([]int, m)
	for d := 0; d < DaysPerWeek; d++ {
		vals, exists := s.Get(NewWeekday(d))
		if !exists {
			continue
		}
		for i, v := range vals {
			if v != 0 {
				idx[i] = d
				active[i]++
			}
		}
	}
	for i, cnt := range active {
		if cnt != 1 {
			return nil, fmt.Errorf("row %d has %d active weekdays, %w", i, cnt, ErrNotOneHot)
		}
	}
	return idx, nil
}
