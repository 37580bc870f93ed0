// Package market serves fixed market-insight snapshots keyed by
// (category, region). The data is a static table; lookups never touch
// listings.
package market

type Insight struct {
	AveragePrice   int64  `json:"average_price"`
	AvgSellDays    int    `json:"avg_sell_days"`
	Trend          string `json:"trend"`
	SampleCount    int    `json:"sample_count"`
	Recommendation string `json:"recommendation"`
}

type key struct {
	category string
	region   string
}

type Table struct {
	insights map[key]Insight
}

// NewTable returns the built-in insight table. Unknown (category, region)
// pairs fall back to the (default, default) entry.
func NewTable() *Table {
	return &Table{insights: map[key]Insight{
		{"전자기기", "강남구"}: {
			AveragePrice:   850000,
			AvgSellDays:    3,
			Trend:          "하락세",
			SampleCount:    42,
			Recommendation: "현재 시세보다 5-10% 낮게 책정 추천",
		},
		{"전자기기", "서초구"}: {
			AveragePrice:   780000,
			AvgSellDays:    4,
			Trend:          "보합",
			SampleCount:    38,
			Recommendation: "적정 가격대입니다. 제목 개선을 권장합니다",
		},
		{"가구", "강남구"}: {
			AveragePrice:   320000,
			AvgSellDays:    7,
			Trend:          "상승세",
			SampleCount:    25,
			Recommendation: "수요가 증가하고 있습니다. 현재 가격 유지 추천",
		},
		{"가구", "서초구"}: {
			AveragePrice:   290000,
			AvgSellDays:    8,
			Trend:          "보합",
			SampleCount:    21,
			Recommendation: "평균 거래 기간이 길어 끌어올리기 권장",
		},
		{"의류", "강남구"}: {
			AveragePrice:   45000,
			AvgSellDays:    2,
			Trend:          "하락세",
			SampleCount:    67,
			Recommendation: "빠른 판매를 위해 가격 인하 권장",
		},
		{"의류", "서초구"}: {
			AveragePrice:   42000,
			AvgSellDays:    3,
			Trend:          "하락세",
			SampleCount:    54,
			Recommendation: "경쟁이 치열합니다. 사진 및 설명 개선 권장",
		},
		{"default", "default"}: {
			AveragePrice:   500000,
			AvgSellDays:    5,
			Trend:          "보합",
			SampleCount:    30,
			Recommendation: "시장 데이터를 수집 중입니다",
		},
	}}
}

// Lookup returns the insight for the pair, falling back to the default
// entry. The second return is false only when even the default is absent.
func (t *Table) Lookup(category, region string) (Insight, bool) {
	if in, ok := t.insights[key{category, region}]; ok {
		return in, true
	}
	in, ok := t.insights[key{"default", "default"}]
	return in, ok
}
