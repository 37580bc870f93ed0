package listing

import (
	"context"
	"fmt"
)

type seedListing struct {
	title    string
	content  string
	price    int64
	category string
	region   string
	imageURL string
	daysAgo  int
}

var seedListings = []seedListing{
	{
		title:    "맥북 프로 16인치 2023 M3 Pro 팝니다",
		content:  "작년 11월에 구매했고 거의 사용하지 않아서 급매로 내놓습니다. 상태 최상이며 애플케어 2026년까지 남아있습니다. 배터리 사이클 12회, 원박스 포함입니다.",
		price:    2800000,
		category: "전자기기",
		region:   "강남구",
		imageURL: "https://images.unsplash.com/photo-1517336714731-489689fd1ca8?w=800&h=600",
		daysAgo:  1,
	},
	{
		title:    "삼성 27인치 모니터 QHD 판매",
		content:  "삼성 S27A600 모니터입니다. 재택근무용으로 사용했습니다. QHD 해상도에 75Hz 지원, 화면 이상 없고 정상 작동합니다. 스탠드, 전원 케이블 포함.",
		price:    180000,
		category: "전자기기",
		region:   "서초구",
		imageURL: "https://images.unsplash.com/photo-1527443224154-c4a3942d3acf?w=800&h=600",
		daysAgo:  3,
	},
	{
		title:    "아이폰 14 Pro 256GB 딥퍼플 급매",
		content:  "아이폰 15로 기기변경해서 팝니다. 액정 필름, 케이스 항상 끼고 사용해서 스크래치 없습니다. 배터리 성능 91%, 공기계입니다. 직거래 선호합니다.",
		price:    850000,
		category: "전자기기",
		region:   "강남구",
		imageURL: "https://images.unsplash.com/photo-1678685888221-cda773a3dcdb?w=800&h=600",
		daysAgo:  0,
	},
	{
		title:    "이케아 HEMNES 책상 화이트 (1년 사용)",
		content:  "이케아 헴네스 책장이 딸린 책상입니다. 화이트 색상, 폭 155cm. 이사 가면서 급하게 처분합니다. 사용감 있으나 튼튼하고 수납공간 많습니다.",
		price:    120000,
		category: "가구",
		region:   "강남구",
		imageURL: "https://images.unsplash.com/photo-1518455027359-f3f8164ba6bd?w=800&h=600",
		daysAgo:  5,
	},
	{
		title:    "한샘 3인용 패브릭 소파 베이지",
		content:  "한샘에서 구매한 3인용 소파입니다. 베이지 색상 패브릭 재질입니다. 반려동물 없고 담배 안 피웁니다. 착불 배송 가능합니다.",
		price:    280000,
		category: "가구",
		region:   "서초구",
		imageURL: "https://images.unsplash.com/photo-1555041469-a586c61ea9bc?w=800&h=600",
		daysAgo:  7,
	},
	{
		title:    "노스페이스 눕시 패딩 블랙 M 사이즈",
		content:  "노스페이스 정품 눕시 다운 재킷입니다. 블랙 색상 M 사이즈, 5회 정도만 착용했습니다. 세탁 한 번 했고 상태 아주 좋습니다.",
		price:    180000,
		category: "의류",
		region:   "강남구",
		imageURL: "https://images.unsplash.com/photo-1551028719-00167b16eac5?w=800&h=600",
		daysAgo:  2,
	},
	{
		title:    "유니클로 캐시미어 니트 그레이 L",
		content:  "유니클로 100% 캐시미어 니트 스웨터입니다. 그레이 색상 L 사이즈. 사이즈가 안 맞아서 판매합니다. 실착 1회라 거의 새 제품입니다.",
		price:    35000,
		category: "의류",
		region:   "서초구",
		imageURL: "https://images.unsplash.com/photo-1576566588028-4147f3842f27?w=800&h=600",
		daysAgo:  1,
	},
	{
		title:    "해리포터 전권 세트 (양장본)",
		content:  "해리포터 시리즈 전권 양장본 세트입니다. 한 번 정독했고 보관 상태 좋습니다. 책장 정리하면서 내놓습니다.",
		price:    60000,
		category: "도서",
		region:   "송파구",
		imageURL: "https://images.unsplash.com/photo-1551269901-5c5e14c25df7?w=800&h=600",
		daysAgo:  10,
	},
}

type backdater interface {
	Backdate(ctx context.Context, id int64, daysAgo int) error
}

// Seed inserts the sample listings, backdating creation timestamps when
// the store supports it so day-offset queries have data to hit.
func Seed(ctx context.Context, store Store) error {
	bd, canBackdate := store.(backdater)

	for _, sl := range seedListings {
		l := &Listing{
			Title:    sl.title,
			Content:  sl.content,
			Price:    sl.price,
			Category: sl.category,
			Region:   sl.region,
			ImageURL: sl.imageURL,
		}
		if err := store.Create(ctx, l); err != nil {
			return fmt.Errorf("seed %q: %w", sl.title, err)
		}
		if canBackdate && sl.daysAgo > 0 {
			if err := bd.Backdate(ctx, l.ID, sl.daysAgo); err != nil {
				return fmt.Errorf("backdate %q: %w", sl.title, err)
			}
		}
	}
	return nil
}
