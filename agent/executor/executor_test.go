package executor

import (
	"context"
	"testing"
	"time"

	contractx "github.com/jolmarket/listing-agent/agent/contract"
	toolx "github.com/jolmarket/listing-agent/agent/tool"
	"github.com/jolmarket/listing-agent/listing"
	marketx "github.com/jolmarket/listing-agent/market"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) (*Executor, *listing.MemStore) {
	t.Helper()
	clock := func() time.Time { return testNow }
	store := listing.NewMemStore(listing.WithMemClock(clock))
	reg := toolx.New(store, marketx.NewTable(), toolx.WithClock(clock))
	return New(reg), store
}

func seedBackdated(t *testing.T, store *listing.MemStore, title string, price int64, daysAgo int) int64 {
	t.Helper()
	l := listing.Listing{Title: title, Content: "내용", Price: price, Category: "전자기기", Region: "강남구"}
	if err := store.Create(context.Background(), &l); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if daysAgo > 0 {
		if err := store.Backdate(context.Background(), l.ID, daysAgo); err != nil {
			t.Fatalf("backdate: %v", err)
		}
	}
	return l.ID
}

func intPtr(v int) *int { return &v }

func TestExecuteInjectsQueriedID(t *testing.T) {
	t.Parallel()

	exec, store := newFixture(t)
	seedBackdated(t, store, "오늘 매물", 500000, 0)
	target := seedBackdated(t, store, "아이폰 14 Pro", 850000, 1)

	plan := contractx.Plan{
		Intent: contractx.IntentAdjustPrice,
		ToolCalls: []contractx.ToolCall{
			{Name: contractx.ToolQueryListings, Query: &contractx.QueryListingsParams{ExactDayOffset: intPtr(1)}},
			{Name: contractx.ToolAdjustPrice, AdjustPrice: &contractx.AdjustPriceParams{NewPrice: 765000}},
		},
		Bindings: []contractx.Binding{
			{SourceCall: 0, TargetCall: 1, TargetParam: contractx.BindingParamListingID},
		},
	}

	out := exec.Execute(context.Background(), plan)
	if !out.Success {
		t.Fatal("expected success")
	}
	if len(out.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(out.Results))
	}
	adjust := out.Results[1].Result
	if !adjust.Success {
		t.Fatalf("adjust failed: %s", adjust.Message)
	}
	if adjust.ListingID != target || adjust.NewPrice != 765000 {
		t.Fatalf("unexpected adjust result: %+v", adjust)
	}
	if adjust.ChangePercent != -10.0 {
		t.Fatalf("unexpected percent: %v", adjust.ChangePercent)
	}
	if len(out.UpdatedListings) != 1 || out.UpdatedListings[0] != target {
		t.Fatalf("unexpected updated listings: %v", out.UpdatedListings)
	}

	got, err := store.Get(context.Background(), target)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Price != 765000 {
		t.Fatalf("price not persisted: %d", got.Price)
	}
}

func TestExecuteEmptyQueryLeavesSlotOpen(t *testing.T) {
	t.Parallel()

	exec, _ := newFixture(t)

	plan := contractx.Plan{
		ToolCalls: []contractx.ToolCall{
			{Name: contractx.ToolQueryListings, Query: &contractx.QueryListingsParams{ExactDayOffset: intPtr(3)}},
			{Name: contractx.ToolBoostListing, Boost: &contractx.BoostListingParams{}},
		},
		Bindings: []contractx.Binding{
			{SourceCall: 0, TargetCall: 1, TargetParam: contractx.BindingParamListingID},
		},
	}

	out := exec.Execute(context.Background(), plan)
	if len(out.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(out.Results))
	}
	if !out.Results[0].Result.Success {
		t.Fatalf("query should succeed with zero rows: %s", out.Results[0].Result.Message)
	}
	boost := out.Results[1].Result
	if boost.Success {
		t.Fatal("boost should fail without an id")
	}
	if boost.Message != "매물 ID가 필요합니다." {
		t.Fatalf("unexpected message: %s", boost.Message)
	}
	if len(out.UpdatedListings) != 0 {
		t.Fatalf("unexpected updated listings: %v", out.UpdatedListings)
	}
}

func TestExecuteDoesNotOverrideExplicitID(t *testing.T) {
	t.Parallel()

	exec, store := newFixture(t)
	queried := seedBackdated(t, store, "조회 대상", 100000, 0)
	explicit := seedBackdated(t, store, "명시 대상", 200000, 0)

	explicitID := explicit
	plan := contractx.Plan{
		ToolCalls: []contractx.ToolCall{
			{Name: contractx.ToolQueryListings, Query: &contractx.QueryListingsParams{}},
			{Name: contractx.ToolAdjustPrice, AdjustPrice: &contractx.AdjustPriceParams{ListingID: &explicitID, NewPrice: 180000}},
		},
		Bindings: []contractx.Binding{
			{SourceCall: 0, TargetCall: 1, TargetParam: contractx.BindingParamListingID},
		},
	}

	out := exec.Execute(context.Background(), plan)
	adjust := out.Results[1].Result
	if !adjust.Success {
		t.Fatalf("adjust failed: %s", adjust.Message)
	}
	if adjust.ListingID != explicit {
		t.Fatalf("binding must not override an explicit id: got %d", adjust.ListingID)
	}
	_ = queried
}

type panickingRunner struct{}

func (panickingRunner) Run(ctx context.Context, call contractx.ToolCall) contractx.ToolResult {
	panic("boom")
}

func TestExecuteIsolatesPanics(t *testing.T) {
	t.Parallel()

	exec := New(panickingRunner{})
	plan := contractx.Plan{
		ToolCalls: []contractx.ToolCall{
			{Name: contractx.ToolQueryListings, Query: &contractx.QueryListingsParams{}},
			{Name: contractx.ToolGetMarketInsights, Insights: &contractx.MarketInsightsParams{Category: "가구", Region: "강남구"}},
		},
	}

	out := exec.Execute(context.Background(), plan)
	if len(out.Results) != 2 {
		t.Fatalf("panic must not stop the plan: got %d results", len(out.Results))
	}
	for _, r := range out.Results {
		if r.Result.Success {
			t.Fatal("expected failed envelopes")
		}
		if r.Result.Message == "" {
			t.Fatal("expected panic message in envelope")
		}
	}
}

func TestExecuteDeduplicatesUpdatedListings(t *testing.T) {
	t.Parallel()

	exec, store := newFixture(t)
	id := seedBackdated(t, store, "대상", 100000, 0)

	title := "새 제목"
	plan := contractx.Plan{
		ToolCalls: []contractx.ToolCall{
			{Name: contractx.ToolAdjustPrice, AdjustPrice: &contractx.AdjustPriceParams{ListingID: &id, NewPrice: 90000}},
			{Name: contractx.ToolUpdateContent, UpdateContent: &contractx.UpdateContentParams{ListingID: &id, Title: &title}},
		},
	}

	out := exec.Execute(context.Background(), plan)
	if len(out.UpdatedListings) != 1 || out.UpdatedListings[0] != id {
		t.Fatalf("expected one deduplicated id, got %v", out.UpdatedListings)
	}
	if len(out.ExecutedTools) != 2 {
		t.Fatalf("unexpected executed tools: %v", out.ExecutedTools)
	}
}

func TestExecuteEmptyPlan(t *testing.T) {
	t.Parallel()

	exec, _ := newFixture(t)
	out := exec.Execute(context.Background(), contractx.Plan{Intent: contractx.IntentGeneralChat})
	if out.Success {
		t.Fatal("empty plan must not report success")
	}
	if len(out.Results) != 0 {
		t.Fatalf("unexpected results: %v", out.Results)
	}
}
