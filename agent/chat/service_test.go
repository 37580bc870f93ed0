package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	contractx "github.com/jolmarket/listing-agent/agent/contract"
	"github.com/jolmarket/listing-agent/listing"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type fakePlanner struct {
	plan contractx.Plan
	err  error
	reqs []contractx.PlanRequest
}

func (f *fakePlanner) Plan(ctx context.Context, req contractx.PlanRequest) (contractx.Plan, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return contractx.Plan{}, f.err
	}
	return f.plan, nil
}

type fakeLoop struct {
	plan contractx.Plan
	exec contractx.Execution
	err  error
}

func (f *fakeLoop) Converse(ctx context.Context, req contractx.PlanRequest) (contractx.Plan, contractx.Execution, error) {
	if f.err != nil {
		return contractx.Plan{}, contractx.Execution{}, f.err
	}
	return f.plan, f.exec, nil
}

type fakeExecutor struct {
	exec  contractx.Execution
	plans []contractx.Plan
}

func (f *fakeExecutor) Execute(ctx context.Context, plan contractx.Plan) contractx.Execution {
	f.plans = append(f.plans, plan)
	return f.exec
}

func testStore(t *testing.T) *listing.MemStore {
	t.Helper()
	return listing.NewMemStore(listing.WithMemClock(func() time.Time { return testNow }))
}

func seed(t *testing.T, store *listing.MemStore, title string, price int64) int64 {
	t.Helper()
	l := listing.Listing{Title: title, Content: "내용", Price: price, Category: "전자기기", Region: "강남구"}
	if err := store.Create(context.Background(), &l); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return l.ID
}

func TestHandleMessagePlanMode(t *testing.T) {
	t.Parallel()

	store := testStore(t)
	id := seed(t, store, "아이폰 14 Pro", 850000)

	planner := &fakePlanner{plan: contractx.Plan{
		Intent:           contractx.IntentAdjustPrice,
		Reasoning:        "가격 인하",
		ResponseText:     "가격을 변경할게요.",
		SuggestedActions: []contractx.SuggestedAction{{Label: "끌어올리기"}},
	}}
	exec := &fakeExecutor{exec: contractx.Execution{
		Success:         true,
		Results:         []contractx.ActionResult{{Tool: contractx.ToolAdjustPrice, Result: contractx.ToolResult{Success: true, ListingID: id}}},
		ExecutedTools:   []contractx.ToolName{contractx.ToolAdjustPrice},
		UpdatedListings: []int64{id},
	}}

	svc, err := New(context.Background(), store, planner, nil, exec, ModePlan,
		WithClock(func() time.Time { return testNow }))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result, err := svc.HandleMessage(context.Background(), "아이폰 가격 내려줘", nil)
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if result.Intent != contractx.IntentAdjustPrice {
		t.Fatalf("unexpected intent: %s", result.Intent)
	}
	if result.Response != "가격을 변경할게요." {
		t.Fatalf("unexpected response: %s", result.Response)
	}
	if len(result.ActionsTaken) != 1 || len(result.UpdatedListings) != 1 {
		t.Fatalf("unexpected result shape: %+v", result)
	}

	// The planner saw the active listings rendered as context.
	if len(planner.reqs) != 1 {
		t.Fatalf("expected 1 plan request, got %d", len(planner.reqs))
	}
	if !strings.Contains(planner.reqs[0].ListingsContext, "아이폰 14 Pro") {
		t.Fatalf("listings context missing: %q", planner.reqs[0].ListingsContext)
	}
	if !planner.reqs[0].Now.Equal(testNow) {
		t.Fatalf("unexpected clock: %v", planner.reqs[0].Now)
	}
	if len(exec.plans) != 1 {
		t.Fatalf("executor not invoked: %d", len(exec.plans))
	}
}

func TestHandleMessageToolLoopMode(t *testing.T) {
	t.Parallel()

	store := testStore(t)
	loop := &fakeLoop{
		plan: contractx.Plan{
			Intent:           contractx.IntentBoostListing,
			ResponseText:     "끌어올렸어요!",
			SuggestedActions: []contractx.SuggestedAction{},
		},
		exec: contractx.Execution{
			Success:         true,
			Results:         []contractx.ActionResult{{Tool: contractx.ToolBoostListing, Result: contractx.ToolResult{Success: true, ListingID: 5}}},
			ExecutedTools:   []contractx.ToolName{contractx.ToolBoostListing},
			UpdatedListings: []int64{5},
		},
	}

	svc, err := New(context.Background(), store, nil, loop, &fakeExecutor{}, ModeToolLoop)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result, err := svc.HandleMessage(context.Background(), "맥북 끌어올려줘", nil)
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if result.Intent != contractx.IntentBoostListing || result.Response != "끌어올렸어요!" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(result.UpdatedListings) != 1 || result.UpdatedListings[0] != 5 {
		t.Fatalf("unexpected updated listings: %v", result.UpdatedListings)
	}
}

func TestHandleMessageFallbackTurn(t *testing.T) {
	t.Parallel()

	store := testStore(t)
	planner := &fakePlanner{plan: contractx.Plan{
		Intent:           contractx.IntentGeneralChat,
		Reasoning:        "에러 발생: 타임아웃",
		ResponseText:     "죄송합니다. 요청을 처리하는 중 오류가 발생했습니다: 타임아웃",
		SuggestedActions: []contractx.SuggestedAction{},
	}}
	exec := &fakeExecutor{exec: contractx.Execution{Results: []contractx.ActionResult{}, UpdatedListings: []int64{}}}

	svc, err := New(context.Background(), store, planner, nil, exec, ModePlan)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result, err := svc.HandleMessage(context.Background(), "안녕", nil)
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if !strings.Contains(result.Response, "죄송합니다") {
		t.Fatalf("unexpected response: %s", result.Response)
	}
	if result.ActionsTaken == nil || result.UpdatedListings == nil || result.SuggestedActions == nil {
		t.Fatal("assembled payload must carry empty slices, not nil")
	}
	if len(result.ActionsTaken) != 0 || len(result.UpdatedListings) != 0 {
		t.Fatalf("fallback turn must not report actions: %+v", result)
	}
}

func TestHandleMessageRejectsEmptyMessage(t *testing.T) {
	t.Parallel()

	svc, err := New(context.Background(), testStore(t), &fakePlanner{}, nil, &fakeExecutor{}, ModePlan)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := svc.HandleMessage(context.Background(), "   ", nil); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNewValidatesWiring(t *testing.T) {
	t.Parallel()

	store := testStore(t)
	ctx := context.Background()

	if _, err := New(ctx, nil, &fakePlanner{}, nil, &fakeExecutor{}, ModePlan); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("nil store: %v", err)
	}
	if _, err := New(ctx, store, nil, nil, &fakeExecutor{}, ModePlan); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("plan mode without planner: %v", err)
	}
	if _, err := New(ctx, store, &fakePlanner{}, nil, &fakeExecutor{}, ModeToolLoop); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("tool loop mode without loop: %v", err)
	}
	if _, err := New(ctx, store, &fakePlanner{}, nil, &fakeExecutor{}, Mode("yolo")); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("unknown mode: %v", err)
	}
}

func TestListingsSummaryCap(t *testing.T) {
	t.Parallel()

	var listings []listing.Listing
	for i := 1; i <= contextListingCap+5; i++ {
		listings = append(listings, listing.Listing{
			ID: int64(i), Title: fmt.Sprintf("매물 %d", i), Price: 1000,
			Category: "가구", Region: "기타", CreatedAt: testNow,
		})
	}

	summary := listingsSummary(listings)
	lines := strings.Split(summary, "\n")
	if len(lines) != contextListingCap {
		t.Fatalf("expected %d lines, got %d", contextListingCap, len(lines))
	}
	if !strings.HasPrefix(lines[0], "- ID 1: 매물 1 (1000원") {
		t.Fatalf("unexpected line format: %s", lines[0])
	}

	if listingsSummary(nil) != "" {
		t.Fatal("empty input must render empty context")
	}
}
