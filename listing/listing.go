package listing

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

type Status string

const (
	StatusActive  Status = "active"
	StatusSold    Status = "sold"
	StatusDeleted Status = "deleted"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusSold, StatusDeleted:
		return true
	}
	return false
}

var (
	Categories = []string{"전자기기", "가구", "의류", "도서", "스포츠", "기타"}
	Regions    = []string{"강남구", "서초구", "송파구", "강동구", "기타"}
)

// Listing is a single marketplace item. Records are never hard-deleted;
// status=deleted is the only form of removal.
type Listing struct {
	bun.BaseModel `bun:"table:listings,alias:l"`

	ID            int64      `bun:"id,pk,autoincrement" json:"id"`
	Title         string     `bun:"title,notnull" json:"title"`
	Content       string     `bun:"content,notnull" json:"content"`
	Price         int64      `bun:"price,notnull" json:"price"`
	Category      string     `bun:"category,notnull" json:"category"`
	Region        string     `bun:"region,notnull" json:"region"`
	ImageURL      string     `bun:"image_url,nullzero" json:"image_url,omitempty"`
	Status        Status     `bun:"status,notnull,default:'active'" json:"status"`
	CreatedAt     time.Time  `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt     time.Time  `bun:"updated_at,notnull" json:"updated_at"`
	LastBoostedAt *time.Time `bun:"last_boosted_at,nullzero" json:"last_boosted_at,omitempty"`
	BoostCount    int        `bun:"boost_count,notnull,default:0" json:"boost_count"`
}

var (
	ErrNotFound       = errors.New("listing not found")
	ErrInvalidListing = errors.New("invalid listing")
)

func validateNew(l *Listing) error {
	if strings.TrimSpace(l.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidListing)
	}
	if strings.TrimSpace(l.Content) == "" {
		return fmt.Errorf("%w: content is required", ErrInvalidListing)
	}
	if l.Price <= 0 {
		return fmt.Errorf("%w: price must be > 0", ErrInvalidListing)
	}
	return nil
}

type SortField string

const (
	SortCreated     SortField = "created_at"
	SortUpdated     SortField = "updated_at"
	SortLastBoosted SortField = "last_boosted_at"
	SortPrice       SortField = "price"
	SortBoostCount  SortField = "boost_count"
	SortID          SortField = "id"
)

type SortOrder string

const (
	OrderAsc  SortOrder = "ASC"
	OrderDesc SortOrder = "DESC"
)

// NormalizeSortField maps unknown sort keys to the default instead of
// failing; callers get created_at ordering for anything they misspell.
func NormalizeSortField(field string) SortField {
	switch SortField(field) {
	case SortCreated, SortUpdated, SortLastBoosted, SortPrice, SortBoostCount, SortID:
		return SortField(field)
	}
	return SortCreated
}

func NormalizeSortOrder(order string) SortOrder {
	switch SortOrder(strings.ToUpper(order)) {
	case OrderAsc:
		return OrderAsc
	case OrderDesc:
		return OrderDesc
	}
	return OrderDesc
}

// Filter narrows a listings query. RecencyWindowDays selects records
// created within the last N days inclusive of today; ExactDayOffset
// selects records created exactly N days ago (0 = today). When both are
// set the exact-day filter wins.
type Filter struct {
	Category          string
	Region            string
	Status            Status
	RecencyWindowDays *int
	ExactDayOffset    *int
	SortBy            SortField
	Order             SortOrder
}
