package listing

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *MemStore {
	t.Helper()
	return NewMemStore(WithMemClock(fixedClock(testNow)))
}

func mustCreate(t *testing.T, s *MemStore, l Listing) int64 {
	t.Helper()
	if err := s.Create(context.Background(), &l); err != nil {
		t.Fatalf("create: %v", err)
	}
	return l.ID
}

func intPtr(v int) *int { return &v }

func TestCreateAssignsDefaults(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	l := Listing{Title: "아이폰 14 Pro", Content: "상태 좋아요", Price: 850000, Category: "전자기기", Region: "강남구"}
	if err := s.Create(context.Background(), &l); err != nil {
		t.Fatalf("create: %v", err)
	}
	if l.ID == 0 {
		t.Fatal("expected assigned id")
	}
	if l.Status != StatusActive {
		t.Fatalf("unexpected status: %s", l.Status)
	}
	if !l.CreatedAt.Equal(testNow) {
		t.Fatalf("unexpected created_at: %v", l.CreatedAt)
	}

	got, err := s.Get(context.Background(), l.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "아이폰 14 Pro" || got.Price != 850000 {
		t.Fatalf("unexpected listing: %+v", got)
	}
}

func TestCreateRejectsInvalid(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	cases := []Listing{
		{Title: "", Content: "c", Price: 100},
		{Title: "t", Content: "", Price: 100},
		{Title: "t", Content: "c", Price: 0},
		{Title: "t", Content: "c", Price: -5},
	}
	for _, l := range cases {
		if err := s.Create(context.Background(), &l); !errors.Is(err, ErrInvalidListing) {
			t.Fatalf("expected ErrInvalidListing, got %v", err)
		}
	}
}

func TestGetNotFound(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	if _, err := s.Get(context.Background(), 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFindExactDayWinsOverWindow(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	today := mustCreate(t, s, Listing{Title: "오늘", Content: "c", Price: 100, Category: "전자기기", Region: "강남구"})
	yesterday := mustCreate(t, s, Listing{Title: "어제", Content: "c", Price: 100, Category: "전자기기", Region: "강남구"})
	old := mustCreate(t, s, Listing{Title: "옛날", Content: "c", Price: 100, Category: "전자기기", Region: "강남구"})
	if err := s.Backdate(context.Background(), yesterday, 1); err != nil {
		t.Fatalf("backdate: %v", err)
	}
	if err := s.Backdate(context.Background(), old, 10); err != nil {
		t.Fatalf("backdate: %v", err)
	}

	// Window keeps today and yesterday.
	got, err := s.Find(context.Background(), Filter{RecencyWindowDays: intPtr(3)})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 listings in window, got %d", len(got))
	}

	// Exact day keeps only yesterday, even with a window also set.
	got, err = s.Find(context.Background(), Filter{RecencyWindowDays: intPtr(3), ExactDayOffset: intPtr(1)})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 1 || got[0].ID != yesterday {
		t.Fatalf("expected only yesterday's listing, got %+v", got)
	}

	_ = today
}

func TestFindFiltersCategoryRegionStatus(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	keep := mustCreate(t, s, Listing{Title: "a", Content: "c", Price: 100, Category: "가구", Region: "서초구"})
	mustCreate(t, s, Listing{Title: "b", Content: "c", Price: 100, Category: "의류", Region: "서초구"})
	sold := mustCreate(t, s, Listing{Title: "d", Content: "c", Price: 100, Category: "가구", Region: "서초구"})
	if err := s.SetStatus(context.Background(), sold, StatusSold); err != nil {
		t.Fatalf("set status: %v", err)
	}

	got, err := s.Find(context.Background(), Filter{Category: "가구", Region: "서초구"})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 1 || got[0].ID != keep {
		t.Fatalf("unexpected result: %+v", got)
	}

	got, err = s.Find(context.Background(), Filter{Status: StatusSold})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 1 || got[0].ID != sold {
		t.Fatalf("unexpected sold result: %+v", got)
	}
}

func TestListSortFallback(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	first := mustCreate(t, s, Listing{Title: "a", Content: "c", Price: 300, Category: "가구", Region: "기타"})
	second := mustCreate(t, s, Listing{Title: "b", Content: "c", Price: 100, Category: "가구", Region: "기타"})
	if err := s.Backdate(context.Background(), first, 2); err != nil {
		t.Fatalf("backdate: %v", err)
	}

	// Unknown sort key falls back to newest-first.
	got, err := s.List(context.Background(), StatusActive, SortField("view_count"), SortOrder("sideways"))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != second {
		t.Fatalf("expected newest first, got %+v", got)
	}

	got, err = s.List(context.Background(), StatusActive, SortPrice, OrderAsc)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got[0].Price != 100 {
		t.Fatalf("expected cheapest first, got %+v", got)
	}
}

func TestBoostSortUsesCreatedAtFallback(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	older := mustCreate(t, s, Listing{Title: "a", Content: "c", Price: 100, Category: "가구", Region: "기타"})
	newer := mustCreate(t, s, Listing{Title: "b", Content: "c", Price: 100, Category: "가구", Region: "기타"})
	if err := s.Backdate(context.Background(), older, 5); err != nil {
		t.Fatalf("backdate: %v", err)
	}
	// Boosting the older listing puts it ahead of the never-boosted one.
	if err := s.Boost(context.Background(), older); err != nil {
		t.Fatalf("boost: %v", err)
	}

	got, err := s.List(context.Background(), StatusActive, SortLastBoosted, OrderDesc)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got[0].ID != older {
		t.Fatalf("expected boosted listing first, got %+v", got)
	}
	if got[0].BoostCount != 1 || got[0].LastBoostedAt == nil {
		t.Fatalf("boost not recorded: %+v", got[0])
	}
	_ = newer
}

func TestUpdateContentRequiresField(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	id := mustCreate(t, s, Listing{Title: "a", Content: "c", Price: 100, Category: "가구", Region: "기타"})

	if err := s.UpdateContent(context.Background(), id, nil, nil); !errors.Is(err, ErrInvalidListing) {
		t.Fatalf("expected ErrInvalidListing, got %v", err)
	}

	title := "새 제목"
	if err := s.UpdateContent(context.Background(), id, &title, nil); err != nil {
		t.Fatalf("update content: %v", err)
	}
	got, err := s.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "새 제목" || got.Content != "c" {
		t.Fatalf("unexpected listing after update: %+v", got)
	}
}

func TestMutationsOnMissingIDReturnNotFound(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()
	title := "t"

	if err := s.UpdatePrice(ctx, 42, 100); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update price: %v", err)
	}
	if err := s.UpdateContent(ctx, 42, &title, nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update content: %v", err)
	}
	if err := s.Boost(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("boost: %v", err)
	}
	if err := s.SetStatus(ctx, 42, StatusDeleted); !errors.Is(err, ErrNotFound) {
		t.Fatalf("set status: %v", err)
	}
}
