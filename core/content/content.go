// Package content holds the site content edited from the dashboard:
// the singleton pages (about us, payout text & hero) and the orderable
// collections (FAQs, features, guides & testimonials) rendered by the public site.
package content

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/sadaka/core"
)

var (
	errUnknownIDs   = errors.New("unknown ids")
	errDuplicateIDs = errors.New("duplicate ids")
)

// Base holds the fields shared by every collection item.
type Base struct {
	ID          string    `json:"id" db:"id"`
	Position    int       `json:"position" db:"position"`
	IsPublished bool      `json:"is_published" db:"is_published"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// Common gives generic code access to the shared fields.
func (b *Base) Common() *Base { return b }

// Item is the constraint satisfied by pointers to collection items (*FAQ, *Feature, *Guide, *Testimonial).
type Item[T any] interface {
	*T
	Common() *Base
	// clean normalizes user input before validation.
	clean()
	// SearchText returns the values matched by ListFilter.Search.
	SearchText() []string
}

type ListFilter struct {
	Search    string `query:"search"`
	Published *bool  `query:"is_published"`
	Slug      string `query:"slug"` // guides only
}

func (f *ListFilter) Clean() {
	f.Search = core.CleanString(f.Search)
	f.Slug = core.CleanString(f.Slug, true /* lower */)
}

// Repository persists the items of one collection.
type Repository[T any] interface {
	List(ctx context.Context, filter ListFilter, ordering []core.DBOrdering) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	// NextPosition returns the position following the last item's, 0 for an empty collection.
	NextPosition(ctx context.Context) (int, error)
	Create(ctx context.Context, item T) (T, error)
	Update(ctx context.Context, item T) (T, error)
	// SetPositions updates the position of every given item ID atomically.
	SetPositions(ctx context.Context, positions map[string]int) error
	Delete(ctx context.Context, id string) error
}

// defaultOrdering is used when a list request does not ask for a valid ordering.
var defaultOrdering = []core.DBOrdering{
	{Field: "position", Ascending: true},
	{Field: "created_at", Ascending: true},
}

func orderable(extra core.Orderable) core.Orderable {
	o := core.Orderable{
		"position":     "position",
		"created_at":   "created_at",
		"updated_at":   "updated_at",
		"is_published": "is_published",
	}
	for k, v := range extra {
		o[k] = v
	}
	return o
}
