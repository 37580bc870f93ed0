package tool

import (
	"github.com/cloudwego/eino/schema"
)

// Infos publishes the catalog as eino tool declarations for the
// function-calling planner. The schemas mirror the typed param structs in
// agent/contract; the two must move together.
func Infos() []*schema.ToolInfo {
	return []*schema.ToolInfo{
		{
			Name: "query_listings",
			Desc: "매물을 조회합니다. 시간, 카테고리, 지역으로 필터링하고 다양한 기준으로 정렬할 수 있습니다.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"days_ago": {
					Type: schema.Integer,
					Desc: "최근 N일 범위로 조회 (N일 전부터 지금까지). 예: 3=최근3일, 30=최근30일. exact_day_ago와 동시 사용 불가",
				},
				"exact_day_ago": {
					Type: schema.Integer,
					Desc: "특정일 당일만 조회 (정확히 N일 전). 예: 0=오늘만, 1=어제만. days_ago와 동시 사용 불가",
				},
				"category": {
					Type: schema.String,
					Desc: "카테고리 필터 (예: 전자기기, 가구, 의류)",
				},
				"region": {
					Type: schema.String,
					Desc: "지역 필터 (예: 강남구, 서초구)",
				},
				"status": {
					Type: schema.String,
					Desc: "판매 상태 (기본값: active)",
					Enum: []string{"active", "sold"},
				},
				"sort_by": {
					Type: schema.String,
					Desc: "정렬 기준 필드 (기본값: created_at)",
					Enum: []string{"created_at", "updated_at", "last_boosted_at", "price", "boost_count"},
				},
				"sort_order": {
					Type: schema.String,
					Desc: "정렬 순서 - ASC (오름차순), DESC (내림차순, 기본값)",
					Enum: []string{"ASC", "DESC"},
				},
			}),
		},
		{
			Name: "adjust_price",
			Desc: "매물의 가격을 조정합니다.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"listing_id": {Type: schema.Integer, Desc: "매물 ID", Required: true},
				"new_price":  {Type: schema.Integer, Desc: "새로운 가격 (원 단위)", Required: true},
			}),
		},
		{
			Name: "boost_listing",
			Desc: "매물을 끌어올립니다. 24시간에 한 번만 가능합니다.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"listing_id": {Type: schema.Integer, Desc: "매물 ID", Required: true},
			}),
		},
		{
			Name: "update_content",
			Desc: "매물의 제목이나 내용을 수정합니다.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"listing_id": {Type: schema.Integer, Desc: "매물 ID", Required: true},
				"title":      {Type: schema.String, Desc: "새로운 제목 (선택사항)"},
				"content":    {Type: schema.String, Desc: "새로운 내용 (선택사항)"},
			}),
		},
		{
			Name: "get_market_insights",
			Desc: "카테고리와 지역의 시장 시세 정보를 제공합니다.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"category": {Type: schema.String, Desc: "카테고리 (예: 전자기기, 가구, 의류)", Required: true},
				"region":   {Type: schema.String, Desc: "지역 (예: 강남구, 서초구)", Required: true},
			}),
		},
	}
}
