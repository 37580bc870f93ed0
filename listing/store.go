package listing

import "context"

// Store is the persistence contract for listings. Every mutation
// refreshes UpdatedAt; id lookups return ErrNotFound for absent rows.
type Store interface {
	Create(ctx context.Context, l *Listing) error
	Get(ctx context.Context, id int64) (*Listing, error)
	List(ctx context.Context, status Status, sortBy SortField, order SortOrder) ([]Listing, error)
	Find(ctx context.Context, f Filter) ([]Listing, error)
	UpdatePrice(ctx context.Context, id int64, newPrice int64) error
	UpdateContent(ctx context.Context, id int64, title, content *string) error
	Boost(ctx context.Context, id int64) error
	SetStatus(ctx context.Context, id int64, status Status) error
}
