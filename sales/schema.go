// Package sales holds the typed representation of an uploaded retail sales table along with
// the ingestion and aggregation routines used by the forecaster and report generator.
package sales

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingColumns = errors.New("missing required columns")
	ErrEmptyTable     = errors.New("no sales records")
	ErrNoHeader       = errors.New("no header row")
	ErrUnknownField   = errors.New("unknown field")
)

// Kind describes how a raw cell is converted at the ingestion boundary
type Kind int

const (
	KindDate Kind = iota
	KindText
	KindCurrency
	KindPercent
)

func (k Kind) String() string {
	switch k {
	case KindDate:
		return "date"
	case KindText:
		return "text"
	case KindCurrency:
		return "currency"
	case KindPercent:
		return "percent"
	}
	return "unknown"
}

// Field identifies which Record attribute a column populates
type Field int

const (
	FieldDate Field = iota
	FieldProduct
	FieldCategory
	FieldUnitPrice
	FieldQuantity
	FieldAmount
	FieldDiscountRate
	FieldWasteRate
)

// Column is a single required header in the input table
type Column struct {
	Field Field
	Name  string
	Kind  Kind
}

// Schema is the ordered list of required columns validated once per upload
type Schema []Column

// DefaultSchema returns the headers used by the weekly store sales export.
func DefaultSchema() Schema {
	return Schema{
		{FieldDate, "日付", KindDate},
		{FieldProduct, "商品名", KindText},
		{FieldCategory, "カテゴリ", KindText},
		{FieldUnitPrice, "単価", KindCurrency},
		{FieldQuantity, "販売数量", KindCurrency},
		{FieldAmount, "販売金額", KindCurrency},
		{FieldDiscountRate, "値引き率", KindPercent},
		{FieldWasteRate, "廃棄率", KindPercent},
	}
}

// Validate matches the header against the schema and returns the index of every schema
// column within the header. All missing columns are reported at once.
func (s Schema) Validate(header []string) ([]int, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, exists := pos[h]; !exists {
			pos[h] = i
		}
	}

	idx := make([]int, len(s))
	var missing []string
	for i, col := range s {
		p, exists := pos[col.Name]
		if !exists {
			missing = append(missing, col.Name)
			continue
		}
		idx[i] = p
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%s, %w", strings.Join(missing, ", "), ErrMissingColumns)
	}
	return idx, nil
}
