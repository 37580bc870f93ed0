package listing

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemStore keeps listings in memory. It backs tests and API-key-less demo
// runs; concurrent turns race at last-write-wins granularity, same as the
// SQL store.
type MemStore struct {
	mu       sync.Mutex
	nextID   int64
	listings map[int64]*Listing
	now      func() time.Time
}

type MemStoreOption func(*MemStore)

func WithMemClock(now func() time.Time) MemStoreOption {
	return func(s *MemStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewMemStore(opts ...MemStoreOption) *MemStore {
	s := &MemStore{
		nextID:   1,
		listings: make(map[int64]*Listing),
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *MemStore) Create(ctx context.Context, l *Listing) error {
	if l == nil {
		return fmt.Errorf("%w: nil listing", ErrInvalidListing)
	}
	if err := validateNew(l); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	l.ID = s.nextID
	s.nextID++
	l.Status = StatusActive
	l.BoostCount = 0
	l.LastBoostedAt = nil
	l.CreatedAt = now
	l.UpdatedAt = now

	cp := *l
	s.listings[l.ID] = &cp
	return nil
}

func (s *MemStore) Get(ctx context.Context, id int64) (*Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(id)
}

func (s *MemStore) getLocked(id int64) (*Listing, error) {
	l, ok := s.listings[id]
	if !ok {
		return nil, fmt.Errorf("%w: id=%d", ErrNotFound, id)
	}
	cp := *l
	return &cp, nil
}

func (s *MemStore) List(ctx context.Context, status Status, sortBy SortField, order SortOrder) ([]Listing, error) {
	return s.Find(ctx, Filter{Status: status, SortBy: sortBy, Order: order})
}

func (s *MemStore) Find(ctx context.Context, f Filter) ([]Listing, error) {
	status := f.Status
	if !status.Valid() {
		status = StatusActive
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	today := truncateDay(s.now().UTC())

	var out []Listing
	for _, l := range s.listings {
		if l.Status != status {
			continue
		}
		if f.Category != "" && l.Category != f.Category {
			continue
		}
		if f.Region != "" && l.Region != f.Region {
			continue
		}

		// Exact-day wins when both day filters are supplied.
		offset := int(today.Sub(truncateDay(l.CreatedAt.UTC())).Hours() / 24)
		if f.ExactDayOffset != nil {
			if offset != *f.ExactDayOffset {
				continue
			}
		} else if f.RecencyWindowDays != nil && *f.RecencyWindowDays > 0 {
			if offset > *f.RecencyWindowDays {
				continue
			}
		}

		out = append(out, *l)
	}

	sortListings(out, f.SortBy, f.Order)
	return out, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sortListings(ls []Listing, sortBy SortField, order SortOrder) {
	field := NormalizeSortField(string(sortBy))
	desc := NormalizeSortOrder(string(order)) == OrderDesc

	sort.SliceStable(ls, func(i, j int) bool {
		a, b := ls[i], ls[j]
		if desc {
			a, b = b, a
		}
		switch field {
		case SortUpdated:
			return a.UpdatedAt.Before(b.UpdatedAt)
		case SortLastBoosted:
			return boostSortKey(a).Before(boostSortKey(b))
		case SortPrice:
			return a.Price < b.Price
		case SortBoostCount:
			return a.BoostCount < b.BoostCount
		case SortID:
			return a.ID < b.ID
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	})
}

func boostSortKey(l Listing) time.Time {
	if l.LastBoostedAt != nil {
		return *l.LastBoostedAt
	}
	return l.CreatedAt
}

func (s *MemStore) UpdatePrice(ctx context.Context, id int64, newPrice int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.listings[id]
	if !ok {
		return fmt.Errorf("%w: id=%d", ErrNotFound, id)
	}
	l.Price = newPrice
	l.UpdatedAt = s.now().UTC()
	return nil
}

func (s *MemStore) UpdateContent(ctx context.Context, id int64, title, content *string) error {
	if title == nil && content == nil {
		return fmt.Errorf("%w: nothing to update", ErrInvalidListing)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.listings[id]
	if !ok {
		return fmt.Errorf("%w: id=%d", ErrNotFound, id)
	}
	if title != nil {
		l.Title = *title
	}
	if content != nil {
		l.Content = *content
	}
	l.UpdatedAt = s.now().UTC()
	return nil
}

func (s *MemStore) Boost(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.listings[id]
	if !ok {
		return fmt.Errorf("%w: id=%d", ErrNotFound, id)
	}
	now := s.now().UTC()
	l.LastBoostedAt = &now
	l.BoostCount++
	l.UpdatedAt = now
	return nil
}

func (s *MemStore) SetStatus(ctx context.Context, id int64, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: status=%q", ErrInvalidListing, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.listings[id]
	if !ok {
		return fmt.Errorf("%w: id=%d", ErrNotFound, id)
	}
	l.Status = status
	l.UpdatedAt = s.now().UTC()
	return nil
}

// Backdate rewrites a listing's creation timestamp to N days before the
// store clock's today. Seed data and date-filter tests need listings that
// look older than this process.
func (s *MemStore) Backdate(ctx context.Context, id int64, daysAgo int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.listings[id]
	if !ok {
		return fmt.Errorf("%w: id=%d", ErrNotFound, id)
	}
	created := s.now().UTC().AddDate(0, 0, -daysAgo)
	l.CreatedAt = created
	l.UpdatedAt = created
	return nil
}
