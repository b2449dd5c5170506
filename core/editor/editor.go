// Package editor implements the edit cycle shared by every dashboard resource:
// load the resource, apply a change locally, persist it, then reconcile the local state
// with the server's answer and notify the outcome.
package editor

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
)

var ErrNotLoaded = errors.New("item not found in local state")

// Backend persists the items edited. Create & Update return the canonical (server side) item.
type Backend[T any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, item T) (T, error)
	Update(ctx context.Context, item T) (T, error)
	Delete(ctx context.Context, id string) error
}

type Level int

const (
	Success Level = iota
	Failure
)

func (l Level) String() string {
	if l == Failure {
		return "failure"
	}
	return "success"
}

// Notice is the outcome of an edit, shown to the user as a toast.
type Notice struct {
	Level   Level
	Message string
	Err     error
}

type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a func to a Notifier.
type NotifierFunc func(n Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// entry is shared by the calls editing it: a call finishing after the entry was removed
// still reconciles it, so a failed delete puts back its latest state.
type entry[T any] struct {
	item      T // shown value, optimistic while writes are pending
	confirmed T // last value acknowledged by the backend
	version   uint64
	pending   int
}

// settle must be called with mu held, once the write tagged version got its answer.
// The shown value follows the newest write, or the backend once no write is pending.
func (en *entry[T]) settle(version uint64, value T, err error) {
	en.pending--
	if err == nil {
		en.confirmed = value
	}
	if en.version == version || en.pending == 0 {
		en.item = en.confirmed
	}
}

// Editor holds the local state of a resource collection.
// It is safe for concurrent use; persisting does not block readers.
type Editor[T any] struct {
	name     string
	backend  Backend[T]
	id       func(T) string
	notifier Notifier
	clone    func(T) T

	mu      sync.RWMutex
	entries []*entry[T]
}

type Option[T any] func(e *Editor[T])

// WithClone sets the function used to copy items in & out of the local state.
// It is required for items holding slices, maps or pointers; items are copied by value otherwise.
func WithClone[T any](clone func(T) T) Option[T] {
	return func(e *Editor[T]) { e.clone = clone }
}

// New returns an editor of the resource name (used in notices). id returns the identifier of an item,
// "" for items not persisted yet.
func New[T any](name string, backend Backend[T], id func(T) string, notifier Notifier, opts ...Option[T]) *Editor[T] {
	if notifier == nil {
		notifier = NotifierFunc(func(Notice) {})
	}
	e := &Editor[T]{name: name, backend: backend, id: id, notifier: notifier, clone: identity[T]}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load replaces the local state with the backend's items.
func (e *Editor[T]) Load(ctx context.Context) error {
	items, err := e.backend.List(ctx)
	if err != nil {
		err = errors.Wrapf(err, "loading %ss", e.name)
		e.fail(err, "could not load %ss", e.name)
		return err
	}

	e.mu.Lock()
	e.entries = make([]*entry[T], 0, len(items))
	for _, item := range items {
		e.entries = append(e.entries, &entry[T]{item: e.clone(item), confirmed: e.clone(item)})
	}
	e.mu.Unlock()
	return nil
}

// Items returns a copy of the local state.
func (e *Editor[T]) Items() []T {
	e.mu.RLock()
	defer e.mu.RUnlock()

	items := make([]T, 0, len(e.entries))
	for _, en := range e.entries {
		items = append(items, e.clone(en.item))
	}
	return items
}

// Get returns a copy of the local item identified by id.
func (e *Editor[T]) Get(id string) (T, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if idx := e.indexOf(id); idx >= 0 {
		return e.clone(e.entries[idx].item), true
	}
	var zero T
	return zero, false
}

// Create appends item locally, persists it then replaces it with the created item.
// The local item is dropped if persisting fails.
func (e *Editor[T]) Create(ctx context.Context, item T) (T, error) {
	var zero T
	en := &entry[T]{item: e.clone(item)}
	e.mu.Lock()
	e.entries = append(e.entries, en)
	e.mu.Unlock()

	created, err := e.backend.Create(ctx, item)
	if err != nil {
		e.mu.Lock()
		if idx := e.indexOfEntry(en); idx >= 0 {
			e.entries = append(e.entries[:idx], e.entries[idx+1:]...)
		}
		e.mu.Unlock()
		e.fail(err, "could not create %s", e.name)
		return zero, err
	}

	e.mu.Lock()
	en.item, en.confirmed = e.clone(created), e.clone(created)
	e.mu.Unlock()
	e.succeed("%s created", e.name)
	return created, nil
}

// Update replaces the local item having the same id, persists it then reconciles it with the server's value.
// The last value acknowledged by the backend is restored if persisting fails and no newer update is pending.
func (e *Editor[T]) Update(ctx context.Context, item T) (T, error) {
	var zero T
	e.mu.Lock()
	idx := e.indexOf(e.id(item))
	if idx < 0 {
		e.mu.Unlock()
		err := errors.Wrapf(ErrNotLoaded, "%s %s", e.name, e.id(item))
		e.fail(err, "could not update %s", e.name)
		return zero, err
	}
	en := e.entries[idx]
	en.item = e.clone(item)
	en.version++
	en.pending++
	version := en.version
	e.mu.Unlock()

	updated, err := e.backend.Update(ctx, item)

	e.mu.Lock()
	en.settle(version, e.clone(updated), err)
	e.mu.Unlock()

	if err != nil {
		e.fail(err, "could not update %s", e.name)
		return zero, err
	}
	e.succeed("%s updated", e.name)
	return updated, nil
}

// Delete removes the local item identified by id then deletes it from the backend.
// The item is put back at its position if deleting fails.
func (e *Editor[T]) Delete(ctx context.Context, id string) error {
	e.mu.Lock()
	idx := e.indexOf(id)
	if idx < 0 {
		e.mu.Unlock()
		err := errors.Wrapf(ErrNotLoaded, "%s %s", e.name, id)
		e.fail(err, "could not delete %s", e.name)
		return err
	}
	removed := e.entries[idx]
	e.entries = append(e.entries[:idx], e.entries[idx+1:]...)
	e.mu.Unlock()

	if err := e.backend.Delete(ctx, id); err != nil {
		e.mu.Lock()
		if idx > len(e.entries) {
			idx = len(e.entries)
		}
		e.entries = append(e.entries[:idx], append([]*entry[T]{removed}, e.entries[idx:]...)...)
		e.mu.Unlock()
		e.fail(err, "could not delete %s", e.name)
		return err
	}
	e.succeed("%s deleted", e.name)
	return nil
}

func (e *Editor[T]) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, en := range e.entries {
		if e.id(en.item) == id {
			return i
		}
	}
	return -1
}

func (e *Editor[T]) indexOfEntry(target *entry[T]) int {
	for i, en := range e.entries {
		if en == target {
			return i
		}
	}
	return -1
}

func (e *Editor[T]) succeed(format string, args ...interface{}) {
	e.notifier.Notify(Notice{Level: Success, Message: fmt.Sprintf(format, args...)})
}

func (e *Editor[T]) fail(err error, format string, args ...interface{}) {
	e.notifier.Notify(Notice{Level: Failure, Message: fmt.Sprintf(format, args...), Err: err})
}

func identity[T any](item T) T { return item }
