package content

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"

	"github.com/trezcool/sadaka/core"
)

// Collection is the service managing the items of one orderable collection.
type Collection[T any, PT Item[T]] struct {
	repo      Repository[T]
	validate  *validator.Validate
	notFound  error
	orderable core.Orderable
	// check runs extra (storage backed) validations before an item is saved. current is nil on create.
	check func(ctx context.Context, item T, current *T) error
}

func newCollection[T any, PT Item[T]](
	repo Repository[T],
	validate *validator.Validate,
	notFound error,
	orderable core.Orderable,
) *Collection[T, PT] {
	return &Collection[T, PT]{
		repo:      repo,
		validate:  validate,
		notFound:  notFound,
		orderable: orderable,
	}
}

// NotFound returns the error returned when an item does not exist.
func (c *Collection[T, PT]) NotFound() error { return c.notFound }

func (c *Collection[T, PT]) List(ctx context.Context, filter ListFilter, ordering []core.DBOrdering) ([]T, error) {
	filter.Clean()
	items, err := c.repo.List(ctx, filter, c.orderable.Clean(ordering, defaultOrdering...))
	if err != nil {
		return nil, errors.Wrap(err, "listing items")
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// ListPublished lists the items visible on the public site, in display order.
func (c *Collection[T, PT]) ListPublished(ctx context.Context) ([]T, error) {
	published := true
	return c.List(ctx, ListFilter{Published: &published}, nil)
}

func (c *Collection[T, PT]) Get(ctx context.Context, id string) (T, error) {
	return c.repo.Get(ctx, id)
}

// validateItem cleans item in place then validates it.
func (c *Collection[T, PT]) validateItem(ctx context.Context, item *T, current *T) error {
	PT(item).clean()
	if err := c.validate.Struct(item); err != nil {
		return err
	}
	if c.check != nil {
		return c.check(ctx, *item, current)
	}
	return nil
}

// Create appends item at the end of the collection.
func (c *Collection[T, PT]) Create(ctx context.Context, item T) (T, error) {
	var zero T
	if err := c.validateItem(ctx, &item, nil); err != nil {
		return zero, err
	}

	pos, err := c.repo.NextPosition(ctx)
	if err != nil {
		return zero, errors.Wrap(err, "getting next position")
	}
	now := time.Now().UTC()
	b := PT(&item).Common()
	b.ID = ""
	b.Position = pos
	b.CreatedAt = now
	b.UpdatedAt = now

	return c.repo.Create(ctx, item)
}

// Replace overwrites every editable field of the item identified by id.
func (c *Collection[T, PT]) Replace(ctx context.Context, id string, item T) (T, error) {
	var zero T
	current, err := c.repo.Get(ctx, id)
	if err != nil {
		return zero, err
	}
	if err = c.validateItem(ctx, &item, &current); err != nil {
		return zero, err
	}

	cur := PT(&current).Common()
	b := PT(&item).Common()
	b.ID = cur.ID
	b.Position = cur.Position
	b.CreatedAt = cur.CreatedAt
	b.UpdatedAt = time.Now().UTC()

	return c.repo.Update(ctx, item)
}

// Patch only updates the fields set (non-nil) in patch, a pointer to the collection's patch struct.
func (c *Collection[T, PT]) Patch(ctx context.Context, id string, patch interface{}) (T, error) {
	var zero T
	current, err := c.repo.Get(ctx, id)
	if err != nil {
		return zero, err
	}

	item := current
	if err = copier.CopyWithOption(&item, patch, copier.Option{IgnoreEmpty: true}); err != nil {
		return zero, errors.Wrap(err, "applying patch")
	}
	if err = c.validateItem(ctx, &item, &current); err != nil {
		return zero, err
	}

	// server managed fields cannot be patched
	cur := PT(&current).Common()
	b := PT(&item).Common()
	b.ID = cur.ID
	b.Position = cur.Position
	b.CreatedAt = cur.CreatedAt
	b.UpdatedAt = time.Now().UTC()

	return c.repo.Update(ctx, item)
}

func (c *Collection[T, PT]) Delete(ctx context.Context, id string) error {
	if _, err := c.repo.Get(ctx, id); err != nil {
		return err
	}
	return c.repo.Delete(ctx, id)
}

// Reorder moves the given items, in order, to the top of the collection.
// Items left out keep their relative order after them.
func (c *Collection[T, PT]) Reorder(ctx context.Context, ids []string) ([]T, error) {
	items, err := c.repo.List(ctx, ListFilter{}, defaultOrdering)
	if err != nil {
		return nil, errors.Wrap(err, "listing items")
	}

	known := make(map[string]bool, len(items))
	for i := range items {
		known[PT(&items[i]).Common().ID] = true
	}
	positions := make(map[string]int, len(items))
	for _, id := range ids {
		if !known[id] {
			return nil, core.NewValidationError(errUnknownIDs, core.FieldError{Field: "ids", Error: "unknown id " + id})
		}
		if _, dup := positions[id]; dup {
			return nil, core.NewValidationError(errDuplicateIDs, core.FieldError{Field: "ids", Error: "duplicate id " + id})
		}
		positions[id] = len(positions)
	}
	for i := range items {
		id := PT(&items[i]).Common().ID
		if _, ok := positions[id]; !ok {
			positions[id] = len(positions)
		}
	}

	if err = c.repo.SetPositions(ctx, positions); err != nil {
		return nil, errors.Wrap(err, "setting positions")
	}
	return c.List(ctx, ListFilter{}, nil)
}
