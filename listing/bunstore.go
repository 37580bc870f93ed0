package listing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// BunStore persists listings in Postgres through bun.
type BunStore struct {
	db  *bun.DB
	now func() time.Time
}

type BunStoreOption func(*BunStore)

// WithClock overrides the store clock, mainly for tests.
func WithClock(now func() time.Time) BunStoreOption {
	return func(s *BunStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewBunStore(db *bun.DB, opts ...BunStoreOption) *BunStore {
	s := &BunStore{
		db:  db,
		now: time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// CreateSchema creates the listings table if it does not exist yet.
func (s *BunStore) CreateSchema(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().
		Model((*Listing)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create listings table: %w", err)
	}
	return nil
}

func (s *BunStore) Create(ctx context.Context, l *Listing) error {
	if l == nil {
		return fmt.Errorf("%w: nil listing", ErrInvalidListing)
	}
	if err := validateNew(l); err != nil {
		return err
	}

	now := s.now().UTC()
	l.Status = StatusActive
	l.BoostCount = 0
	l.LastBoostedAt = nil
	l.CreatedAt = now
	l.UpdatedAt = now

	if _, err := s.db.NewInsert().Model(l).Exec(ctx); err != nil {
		return fmt.Errorf("insert listing: %w", err)
	}
	return nil
}

func (s *BunStore) Get(ctx context.Context, id int64) (*Listing, error) {
	l := new(Listing)
	err := s.db.NewSelect().Model(l).Where("l.id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: id=%d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("select listing: %w", err)
	}
	return l, nil
}

func (s *BunStore) List(ctx context.Context, status Status, sortBy SortField, order SortOrder) ([]Listing, error) {
	return s.Find(ctx, Filter{Status: status, SortBy: sortBy, Order: order})
}

func (s *BunStore) Find(ctx context.Context, f Filter) ([]Listing, error) {
	status := f.Status
	if !status.Valid() {
		status = StatusActive
	}

	var listings []Listing
	q := s.db.NewSelect().Model(&listings).Where("l.status = ?", status)

	if f.Category != "" {
		q = q.Where("l.category = ?", f.Category)
	}
	if f.Region != "" {
		q = q.Where("l.region = ?", f.Region)
	}

	// Exact-day wins when both day filters are supplied.
	if f.ExactDayOffset != nil {
		q = q.Where("l.created_at::date = CURRENT_DATE - ?::int", *f.ExactDayOffset)
	} else if f.RecencyWindowDays != nil && *f.RecencyWindowDays > 0 {
		q = q.Where("l.created_at::date >= CURRENT_DATE - ?::int", *f.RecencyWindowDays)
	}

	q = q.OrderExpr(orderExpr(f.SortBy, f.Order))

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("query listings: %w", err)
	}
	return listings, nil
}

// orderExpr builds an ORDER BY clause from normalized sort inputs only,
// so no caller-supplied string ever reaches the SQL text.
func orderExpr(sortBy SortField, order SortOrder) string {
	field := NormalizeSortField(string(sortBy))
	dir := NormalizeSortOrder(string(order))

	if field == SortLastBoosted {
		// Never-boosted rows sort by creation time instead of NULL.
		return fmt.Sprintf("COALESCE(l.last_boosted_at, l.created_at) %s", dir)
	}
	return fmt.Sprintf("l.%s %s", field, dir)
}

func (s *BunStore) UpdatePrice(ctx context.Context, id int64, newPrice int64) error {
	res, err := s.db.NewUpdate().
		Model((*Listing)(nil)).
		Set("price = ?", newPrice).
		Set("updated_at = ?", s.now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update price: %w", err)
	}
	return requireRow(res, id)
}

func (s *BunStore) UpdateContent(ctx context.Context, id int64, title, content *string) error {
	if title == nil && content == nil {
		return fmt.Errorf("%w: nothing to update", ErrInvalidListing)
	}

	q := s.db.NewUpdate().Model((*Listing)(nil)).Where("id = ?", id)
	if title != nil {
		q = q.Set("title = ?", *title)
	}
	if content != nil {
		q = q.Set("content = ?", *content)
	}
	q = q.Set("updated_at = ?", s.now().UTC())

	res, err := q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("update content: %w", err)
	}
	return requireRow(res, id)
}

func (s *BunStore) Boost(ctx context.Context, id int64) error {
	now := s.now().UTC()
	res, err := s.db.NewUpdate().
		Model((*Listing)(nil)).
		Set("last_boosted_at = ?", now).
		Set("boost_count = boost_count + 1").
		Set("updated_at = ?", now).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("boost listing: %w", err)
	}
	return requireRow(res, id)
}

func (s *BunStore) SetStatus(ctx context.Context, id int64, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: status=%q", ErrInvalidListing, status)
	}
	res, err := s.db.NewUpdate().
		Model((*Listing)(nil)).
		Set("status = ?", status).
		Set("updated_at = ?", s.now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	return requireRow(res, id)
}

// Backdate shifts a listing's creation timestamp N days into the past.
// Used by seeding so day-offset queries have data to hit.
func (s *BunStore) Backdate(ctx context.Context, id int64, daysAgo int) error {
	created := s.now().UTC().AddDate(0, 0, -daysAgo)
	res, err := s.db.NewUpdate().
		Model((*Listing)(nil)).
		Set("created_at = ?", created).
		Set("updated_at = ?", created).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("backdate listing: %w", err)
	}
	return requireRow(res, id)
}

func requireRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: id=%d", ErrNotFound, id)
	}
	return nil
}
