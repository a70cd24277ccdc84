package summarizer

import (
	"fmt"
	"strings"

	"github.com/aouyang1/go-salesforecaster/chart"
	"github.com/aouyang1/go-salesforecaster/sales"
	"github.com/aouyang1/go-salesforecaster/stats"
)

// SystemInstruction frames the model as the analyst writing the report
const SystemInstruction = "あなたは熟練のデータアナリストです。"

const instructions = `あなたは小売部門の売上分析担当アシスタントです。
以下の1週間分の売上データとグラフに基づいて、次のようなアウトプットを生成してください。

- 商品別・カテゴリ別の売上傾向や気づきを分析
- 値引き率や廃棄率が高い商品への改善提案
- 来週に向けた販売戦略（仕入れ強化・POP・販促など）

【出力形式】
・箇条書きで3〜5個にまとめてください
・現場のデリカ担当者がすぐ動けるような視点で書いてください
・300文字以内で
`

// BuildPrompt renders the analyst instructions, the aggregated figures, and references to the
// rendered charts
func BuildPrompt(s Stats, graphs []chart.Graph) string {
	var b strings.Builder
	b.WriteString(instructions)
	b.WriteString("\n")

	fmt.Fprintf(&b, "- 対象期間: %s 〜 %s\n", s.Start.Format(sales.DateLayout), s.End.Format(sales.DateLayout))
	fmt.Fprintf(&b, "- 売上上位商品: %s\n", formatTotals(s.TopProducts))
	fmt.Fprintf(&b, "- 売上上位カテゴリ: %s\n", formatTotals(s.TopCategories))
	fmt.Fprintf(&b, "- 値引き率の統計情報: %s\n", formatSummary(s.Discount))
	fmt.Fprintf(&b, "- 廃棄率の統計情報: %s\n", formatSummary(s.Waste))
	fmt.Fprintf(&b, "- 日別売上金額: %s\n", formatTotals(s.Daily))
	fmt.Fprintf(&b, "- カテゴリ別売上金額: %s\n", formatTotals(s.CategoryAmounts))
	fmt.Fprintf(&b, "- 販売数量Top10商品: %s\n", formatTotals(s.TopQuantities))
	if len(s.HighDiscount) > 0 {
		fmt.Fprintf(&b, "- 平均値引き率が特に高い商品: %s\n", formatTotals(s.HighDiscount))
	}
	if len(s.HighWaste) > 0 {
		fmt.Fprintf(&b, "- 平均廃棄率が特に高い商品: %s\n", formatTotals(s.HighWaste))
	}
	if len(s.Holidays) > 0 {
		names := make([]string, 0, len(s.Holidays))
		for _, h := range s.Holidays {
			names = append(names, fmt.Sprintf("%s(%s)", h.Name, h.Start.Format(sales.DateLayout)))
		}
		fmt.Fprintf(&b, "- 期間中の祝日: %s\n", strings.Join(names, ", "))
	}

	b.WriteString("\n【参考グラフ】\n")
	for _, g := range graphs {
		fmt.Fprintf(&b, "\n- %s:\n%s", g.Title, g.URL)
	}
	return b.String()
}

func formatTotals(totals []sales.Total) string {
	if len(totals) == 0 {
		return "なし"
	}
	parts := make([]string, 0, len(totals))
	for _, t := range totals {
		parts = append(parts, fmt.Sprintf("%s: %s", t.Key, formatNumber(t.Value)))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func formatSummary(s stats.Summary) string {
	return fmt.Sprintf("{count: %d, mean: %s, std: %s, min: %s, 25%%: %s, 50%%: %s, 75%%: %s, max: %s}",
		s.Count, formatNumber(s.Mean), formatNumber(s.Std), formatNumber(s.Min),
		formatNumber(s.P25), formatNumber(s.P50), formatNumber(s.P75), formatNumber(s.Max))
}

// formatNumber drops the decimals of whole numbers and keeps two otherwise
func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
