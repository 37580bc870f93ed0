package tool

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	contractx "github.com/jolmarket/listing-agent/agent/contract"
	"github.com/jolmarket/listing-agent/listing"
)

func (r *Registry) queryListings(ctx context.Context, p *contractx.QueryListingsParams) contractx.ToolResult {
	if p == nil {
		p = &contractx.QueryListingsParams{}
	}

	f := listing.Filter{
		Category:          p.Category,
		Region:            p.Region,
		Status:            listing.Status(p.Status),
		RecencyWindowDays: p.RecencyWindowDays,
		ExactDayOffset:    p.ExactDayOffset,
		SortBy:            listing.NormalizeSortField(p.SortBy),
		Order:             listing.NormalizeSortOrder(p.SortOrder),
	}
	if !f.Status.Valid() {
		f.Status = listing.StatusActive
	}

	listings, err := r.store.Find(ctx, f)
	if err != nil {
		return fail(fmt.Sprintf("매물 조회 실패: %v", err))
	}

	return contractx.ToolResult{
		Success:  true,
		Listings: listings,
		Count:    len(listings),
		Message:  fmt.Sprintf("%d개의 매물을 찾았습니다.", len(listings)),
	}
}

func (r *Registry) adjustPrice(ctx context.Context, p *contractx.AdjustPriceParams) contractx.ToolResult {
	if p == nil || p.ListingID == nil {
		return fail("매물 ID가 필요합니다.")
	}
	if p.NewPrice <= 0 {
		return fail("가격은 0원보다 커야 합니다.")
	}

	l, err := r.store.Get(ctx, *p.ListingID)
	if err != nil {
		return notFoundOrFail(err, *p.ListingID, "가격 조정 실패")
	}

	// Setting the identical price is an explicit no-op failure, not a
	// silently accepted write.
	if l.Price == p.NewPrice {
		return fail("현재 가격과 동일합니다.")
	}

	if err := r.store.UpdatePrice(ctx, l.ID, p.NewPrice); err != nil {
		return fail(fmt.Sprintf("가격 조정 실패: %v", err))
	}

	change := p.NewPrice - l.Price
	percent := float64(change) / float64(l.Price) * 100

	return contractx.ToolResult{
		Success:       true,
		ListingID:     l.ID,
		ListingTitle:  l.Title,
		OldPrice:      l.Price,
		NewPrice:      p.NewPrice,
		ChangeAmount:  change,
		ChangePercent: round1(percent),
		Message:       fmt.Sprintf("가격을 %s원에서 %s원으로 변경했습니다.", won(l.Price), won(p.NewPrice)),
	}
}

func (r *Registry) boostListing(ctx context.Context, p *contractx.BoostListingParams) contractx.ToolResult {
	if p == nil || p.ListingID == nil {
		return fail("매물 ID가 필요합니다.")
	}

	l, err := r.store.Get(ctx, *p.ListingID)
	if err != nil {
		return notFoundOrFail(err, *p.ListingID, "끌어올리기 실패")
	}

	now := r.now()
	if l.LastBoostedAt != nil {
		since := now.Sub(*l.LastBoostedAt)
		if since < BoostCooldown {
			remaining := round1((BoostCooldown - since).Hours())
			return contractx.ToolResult{
				Success:        false,
				Message:        "끌어올리기는 24시간에 한 번만 가능합니다.",
				Warning:        fmt.Sprintf("다음 끌어올리기까지 %.1f시간 남았습니다.", remaining),
				HoursRemaining: remaining,
			}
		}
	}

	if err := r.store.Boost(ctx, l.ID); err != nil {
		return fail(fmt.Sprintf("끌어올리기 실패: %v", err))
	}

	return contractx.ToolResult{
		Success:      true,
		ListingID:    l.ID,
		ListingTitle: l.Title,
		BoostedAt:    now.UTC().Format(time.RFC3339),
		BoostCount:   l.BoostCount + 1,
		Message:      fmt.Sprintf("'%s' 매물을 끌어올렸습니다.", l.Title),
		Warning:      "끌어올리기는 24시간에 한 번만 가능합니다.",
	}
}

func (r *Registry) updateContent(ctx context.Context, p *contractx.UpdateContentParams) contractx.ToolResult {
	if p == nil || p.ListingID == nil {
		return fail("매물 ID가 필요합니다.")
	}

	title := cleanField(p.Title)
	content := cleanField(p.Content)
	if title == nil && content == nil {
		return fail("수정할 제목 또는 내용을 제공해주세요.")
	}

	l, err := r.store.Get(ctx, *p.ListingID)
	if err != nil {
		return notFoundOrFail(err, *p.ListingID, "내용 수정 실패")
	}

	if err := r.store.UpdateContent(ctx, l.ID, title, content); err != nil {
		return fail(fmt.Sprintf("내용 수정 실패: %v", err))
	}

	var fields []string
	newTitle := l.Title
	if title != nil {
		fields = append(fields, "제목")
		newTitle = *title
	}
	if content != nil {
		fields = append(fields, "내용")
	}

	return contractx.ToolResult{
		Success:       true,
		ListingID:     l.ID,
		ListingTitle:  newTitle,
		UpdatedFields: fields,
		Message:       fmt.Sprintf("%s을(를) 수정했습니다.", strings.Join(fields, ", ")),
	}
}

func (r *Registry) marketInsights(p *contractx.MarketInsightsParams) contractx.ToolResult {
	if p == nil || strings.TrimSpace(p.Category) == "" || strings.TrimSpace(p.Region) == "" {
		return fail("카테고리와 지역이 필요합니다.")
	}

	insight, ok := r.market.Lookup(p.Category, p.Region)
	if !ok {
		return fail(fmt.Sprintf("%s - %s 지역의 시장 데이터를 찾을 수 없습니다.", p.Category, p.Region))
	}

	return contractx.ToolResult{
		Success:  true,
		Category: p.Category,
		Region:   p.Region,
		Insight:  &insight,
		Message:  fmt.Sprintf("%s %s 카테고리의 시장 분석 결과입니다.", p.Region, p.Category),
	}
}

func notFoundOrFail(err error, id int64, prefix string) contractx.ToolResult {
	if listingNotFound(err) {
		return fail(fmt.Sprintf("매물 ID %d를 찾을 수 없습니다.", id))
	}
	return fail(fmt.Sprintf("%s: %v", prefix, err))
}

func listingNotFound(err error) bool {
	return errors.Is(err, listing.ErrNotFound)
}

func cleanField(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
