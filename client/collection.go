package client

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/sadaka/core/editor"
)

// Collection is the client of an orderable content collection (FAQs, features, guides or testimonials).
type Collection[T any] struct {
	c    *Client
	path string
	name string
	id   func(T) string
}

var _ editor.Backend[struct{}] = (*Collection[struct{}])(nil)

// ID returns the identifier of item.
func (coll *Collection[T]) ID(item T) string { return coll.id(item) }

// Name is the singular name of the collection's items.
func (coll *Collection[T]) Name() string { return coll.name }

// List returns every item, published or not, in display order.
func (coll *Collection[T]) List(ctx context.Context) ([]T, error) {
	var items []T
	err := coll.c.do(ctx, rest.Get, coll.path, nil, nil, &items)
	return items, errors.Wrapf(err, "listing %ss", coll.name)
}

// Search lists the items matching query.
func (coll *Collection[T]) Search(ctx context.Context, query string) ([]T, error) {
	var items []T
	err := coll.c.do(ctx, rest.Get, coll.path, map[string]string{"search": query}, nil, &items)
	return items, errors.Wrapf(err, "searching %ss", coll.name)
}

func (coll *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	var item T
	err := coll.c.do(ctx, rest.Get, coll.path+"/"+id, nil, nil, &item)
	return item, errors.Wrapf(err, "getting %s %s", coll.name, id)
}

func (coll *Collection[T]) Create(ctx context.Context, item T) (T, error) {
	var created T
	err := coll.c.do(ctx, rest.Post, coll.path, nil, item, &created)
	return created, errors.Wrapf(err, "creating %s", coll.name)
}

// Update replaces the item having the same ID.
func (coll *Collection[T]) Update(ctx context.Context, item T) (T, error) {
	var updated T
	id := coll.id(item)
	err := coll.c.do(ctx, rest.Put, coll.path+"/"+id, nil, item, &updated)
	return updated, errors.Wrapf(err, "updating %s %s", coll.name, id)
}

func (coll *Collection[T]) Delete(ctx context.Context, id string) error {
	err := coll.c.do(ctx, rest.Delete, coll.path+"/"+id, nil, nil, nil)
	return errors.Wrapf(err, "deleting %s %s", coll.name, id)
}

// Reorder moves the items ids, in order, to the top of the collection & returns the reordered items.
func (coll *Collection[T]) Reorder(ctx context.Context, ids []string) ([]T, error) {
	var items []T
	err := coll.c.do(ctx, rest.Put, coll.path+"/order", nil, map[string][]string{"ids": ids}, &items)
	return items, errors.Wrapf(err, "reordering %ss", coll.name)
}

// Editor returns an editor of the collection reporting its outcomes to notifier.
func (coll *Collection[T]) Editor(notifier editor.Notifier) *editor.Editor[T] {
	return editor.New[T](coll.name, coll, coll.id, notifier)
}
