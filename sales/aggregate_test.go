package sales

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, 4, d, 0, 0, 0, 0, time.UTC)
}

func testTable() *Table {
	return NewTable([]Record{
		{Date: day(2), Product: "B", Category: "惣菜", Quantity: 1, Amount: 300},
		{Date: day(1), Product: "A", Category: "弁当", Quantity: 4, Amount: 100},
		{Date: day(1), Product: "B", Category: "惣菜", Quantity: 2, Amount: 200},
		{Date: day(3), Product: "C", Category: "弁当", Quantity: 9, Amount: 50},
	})
}

func TestGroupByFirstSeenOrder(t *testing.T) {
	groups := testTable().GroupBy(KeyProduct)
	require.Len(t, groups, 3)
	assert.Equal(t, "B", groups[0].Key)
	assert.Equal(t, "A", groups[1].Key)
	assert.Equal(t, "C", groups[2].Key)
	assert.Len(t, groups[0].Records, 2)

	all := testTable().GroupBy(KeyAll)
	require.Len(t, all, 1)
	assert.Equal(t, AllKey, all[0].Key)
	assert.Len(t, all[0].Records, 4)
}

func TestSumByAndTop(t *testing.T) {
	table := testTable()

	byCategory := table.SumBy(KeyCategory, Amount)
	assert.Equal(t, []Total{{"惣菜", 500}, {"弁当", 150}}, byCategory)

	top := Top(table.SumBy(KeyProduct, Quantity), 2)
	assert.Equal(t, []Total{{"C", 9}, {"A", 4}}, top)

	assert.Len(t, Top(byCategory, 10), 2)
}

func TestDateBounds(t *testing.T) {
	table := testTable()
	assert.Equal(t, day(1), table.MinDate())
	assert.Equal(t, day(3), table.MaxDate())

	var empty *Table
	assert.True(t, empty.MaxDate().IsZero())
	assert.Equal(t, 0, empty.Len())
}

func TestDailySeries(t *testing.T) {
	td, err := testTable().DailySeries()
	require.Nil(t, err)
	assert.Equal(t, []time.Time{day(1), day(2), day(3)}, td.T)
	assert.Equal(t, []float64{300, 300, 50}, td.Y)

	daily := FromDailySeries(td)
	require.Equal(t, 3, daily.Len())
	assert.Equal(t, AllKey, daily.Records[0].Product)
	assert.Equal(t, 300.0, daily.Records[0].Amount)

	_, err = NewTable(nil).DailySeries()
	assert.ErrorIs(t, err, ErrEmptyTable)
}

func TestParseKey(t *testing.T) {
	testData := map[string]struct {
		name     string
		expected Key
		err      error
	}{
		"product":  {"product", KeyProduct, nil},
		"category": {"Category", KeyCategory, nil},
		"date":     {" date ", KeyDate, nil},
		"all":      {"all", KeyAll, nil},
		"unknown":  {"store", 0, ErrUnknownKey},
	}
	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			k, err := ParseKey(td.name)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.expected, k)
			assert.Equal(t, td.expected.String(), k.String())
		})
	}
}

func TestMeanByAndValues(t *testing.T) {
	table := NewTable([]Record{
		{Product: "A", DiscountRate: 10, WasteRate: 1},
		{Product: "B", DiscountRate: 0, WasteRate: 4},
		{Product: "A", DiscountRate: 20, WasteRate: 3},
	})
	assert.Equal(t, []Total{{"A", 15}, {"B", 0}}, table.MeanBy(KeyProduct, DiscountRate))
	assert.Equal(t, []float64{1, 4, 3}, table.Values(WasteRate))

	var empty *Table
	assert.Empty(t, empty.Values(Amount))
	assert.Empty(t, empty.MeanBy(KeyProduct, Amount))
}
