package sales

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	ErrEmptyValue   = errors.New("empty value")
	ErrInvalidDate  = errors.New("invalid date")
	ErrInvalidValue = errors.New("invalid numeric value")
)

// DateLayout is the canonical date representation used for keys and forecast output
const DateLayout = time.DateOnly

var dateLayouts = []string{
	"2006-1-2",
	"2006/1/2",
	"2006-1-2 15:04:05",
	"2006/1/2 15:04:05",
	time.RFC3339,
}

// ParseError reports a cell that could not be converted to its column kind. Row is the 1-based
// record number in the uploaded file with the header as record 1. It matches the line number
// unless an earlier quoted cell spans several lines.
type ParseError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("row %d, column %s: unable to parse %q, %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseDate converts a raw date cell into a calendar date at midnight UTC
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, ErrEmptyValue
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, ErrInvalidDate
}

// ParseCurrency converts a numeric cell that may carry thousands separators. Only finite values
// are accepted.
func ParseCurrency(raw string) (float64, error) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if raw == "" {
		return 0, ErrEmptyValue
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidValue
	}
	return v, nil
}

// ParsePercent converts a percentage cell such as "12.5%" into percent units (12.5)
func ParsePercent(raw string) (float64, error) {
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "%")
	return ParseCurrency(raw)
}

func parseCell(rec *Record, col Column, raw string) error {
	switch col.Kind {
	case KindDate:
		t, err := ParseDate(raw)
		if err != nil {
			return err
		}
		return rec.setDate(col.Field, t)
	case KindText:
		return rec.setText(col.Field, strings.TrimSpace(raw))
	case KindCurrency:
		v, err := ParseCurrency(raw)
		if err != nil {
			return err
		}
		return rec.setNumber(col.Field, v)
	case KindPercent:
		v, err := ParsePercent(raw)
		if err != nil {
			return err
		}
		return rec.setNumber(col.Field, v)
	}
	return fmt.Errorf("kind %s, %w", col.Kind, ErrUnknownField)
}
