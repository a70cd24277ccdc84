package summarizer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aouyang1/go-salesforecaster/chart"
	"github.com/aouyang1/go-salesforecaster/sales"
)

func d(day int) time.Time {
	return time.Date(2024, 4, day, 0, 0, 0, 0, time.UTC)
}

func testTable() *sales.Table {
	records := []sales.Record{
		{Date: d(29), Product: "唐揚げ弁当", Category: "弁当", Quantity: 12, Amount: 5976, DiscountRate: 10, WasteRate: 2},
		{Date: d(29), Product: "おにぎり", Category: "米飯", Quantity: 30, Amount: 3600, DiscountRate: 0, WasteRate: 1},
		{Date: d(30), Product: "ポテトサラダ", Category: "惣菜", Quantity: 3, Amount: 894, DiscountRate: 0, WasteRate: 1},
		{Date: d(30), Product: "コロッケ", Category: "惣菜", Quantity: 20, Amount: 1600, DiscountRate: 0, WasteRate: 1},
		{Date: d(30), Product: "焼き鳥", Category: "惣菜", Quantity: 15, Amount: 1500, DiscountRate: 0, WasteRate: 1},
		{Date: d(30), Product: "サンドイッチ", Category: "パン", Quantity: 5, Amount: 1500, DiscountRate: 50, WasteRate: 20},
	}
	return sales.NewTable(records)
}

func TestBuildStats(t *testing.T) {
	s, err := BuildStats(testTable())
	require.Nil(t, err)

	assert.Equal(t, d(29), s.Start)
	assert.Equal(t, d(30), s.End)
	assert.Equal(t, []sales.Total{{"おにぎり", 30}, {"コロッケ", 20}, {"焼き鳥", 15}}, s.TopProducts)
	assert.Equal(t, []sales.Total{{"弁当", 5976}, {"惣菜", 3994}, {"米飯", 3600}}, s.TopCategories)
	assert.Len(t, s.CategoryAmounts, 4)
	assert.Len(t, s.TopQuantities, 6)
	assert.Equal(t, []sales.Total{{"2024-04-29", 9576}, {"2024-04-30", 5494}}, s.Daily)

	assert.Equal(t, 6, s.Discount.Count)
	assert.Equal(t, 50.0, s.Discount.Max)
	assert.Equal(t, 20.0, s.Waste.Max)

	require.NotEmpty(t, s.HighDiscount)
	assert.Equal(t, "サンドイッチ", s.HighDiscount[0].Key)
	require.NotEmpty(t, s.HighWaste)
	assert.Equal(t, "サンドイッチ", s.HighWaste[0].Key)

	// 2024-04-29 is Showa Day
	require.NotEmpty(t, s.Holidays)
	assert.Equal(t, d(29), s.Holidays[0].Start)

	_, err = BuildStats(sales.NewTable(nil))
	assert.ErrorIs(t, err, sales.ErrEmptyTable)
}

func TestBuildPrompt(t *testing.T) {
	s, err := BuildStats(testTable())
	require.Nil(t, err)

	graphs := []chart.Graph{
		{Title: "日別売上金額", URL: "https://example.com/static/graphs/graph1_a.html"},
		{Title: "カテゴリ別売上構成", URL: "https://example.com/static/graphs/graph2_b.html"},
	}
	prompt := BuildPrompt(s, graphs)

	for _, expected := range []string{
		"あなたは小売部門の売上分析担当アシスタントです。",
		"300文字以内",
		"- 売上上位商品: {おにぎり: 30, コロッケ: 20, 焼き鳥: 15}",
		"- 値引き率の統計情報: {count: 6,",
		"- 日別売上金額: {2024-04-29: 9576, 2024-04-30: 5494}",
		"- 平均値引き率が特に高い商品: {サンドイッチ: 50}",
		"- 期間中の祝日:",
		"【参考グラフ】",
		"- 日別売上金額:\nhttps://example.com/static/graphs/graph1_a.html",
		"graph2_b.html",
	} {
		assert.Contains(t, prompt, expected)
	}

	// charts follow the figures
	assert.Less(t, strings.Index(prompt, "販売数量Top10商品"), strings.Index(prompt, "【参考グラフ】"))
}

func TestFormatNumber(t *testing.T) {
	testData := map[string]struct {
		in       float64
		expected string
	}{
		"whole":    {3994, "3994"},
		"fraction": {2.5, "2.50"},
		"repeat":   {1.0 / 3, "0.33"},
		"zero":     {0, "0"},
	}
	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expected, formatNumber(td.in))
		})
	}
}

func TestResponseText(t *testing.T) {
	testData := map[string]struct {
		resp     *genai.GenerateContentResponse
		expected string
		err      error
	}{
		"nil": {nil, "", ErrEmptyResponse},
		"no candidates": {
			&genai.GenerateContentResponse{}, "", ErrEmptyResponse,
		},
		"joined parts": {
			&genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{
					{Content: &genai.Content{Parts: []genai.Part{genai.Text("・弁当が好調"), genai.Text("\n・廃棄を削減")}}},
					{Content: nil},
				},
			},
			"・弁当が好調\n・廃棄を削減", nil,
		},
		"whitespace only": {
			&genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{
					{Content: &genai.Content{Parts: []genai.Part{genai.Text("  \n")}}},
				},
			},
			"", ErrEmptyResponse,
		},
	}
	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			text, err := ResponseText(td.resp)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.expected, text)
		})
	}
}

func TestNewGeminiRequiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), NewDefaultGeminiOptions(), nil)
	assert.ErrorIs(t, err, ErrNoAPIKey)

	_, err = NewGemini(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestSummarizerFunc(t *testing.T) {
	var s Summarizer = SummarizerFunc(func(ctx context.Context, prompt string) (string, error) {
		return "summary of " + prompt, nil
	})
	out, err := s.Summarize(context.Background(), "week")
	require.Nil(t, err)
	assert.Equal(t, "summary of week", out)
}
