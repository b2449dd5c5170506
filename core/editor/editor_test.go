package editor

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type note struct {
	ID    string
	Text  string
	Tags  []string
	Saved bool
}

var errBackend = errors.New("backend down")

type fakeBackend struct {
	mu     sync.Mutex
	notes  []note
	fail   bool
	nextID int
	// gate, when set, blocks persisting calls until closed
	gate chan struct{}
}

func (b *fakeBackend) wait() {
	if b.gate != nil {
		<-b.gate
	}
}

func (b *fakeBackend) List(context.Context) ([]note, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail {
		return nil, errBackend
	}
	return append([]note(nil), b.notes...), nil
}

func (b *fakeBackend) Create(_ context.Context, n note) (note, error) {
	b.wait()
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail {
		return note{}, errBackend
	}
	b.nextID++
	n.ID = strconv.Itoa(b.nextID)
	n.Saved = true
	b.notes = append(b.notes, n)
	return n, nil
}

func (b *fakeBackend) Update(_ context.Context, n note) (note, error) {
	b.wait()
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail {
		return note{}, errBackend
	}
	n.Saved = true
	return n, nil
}

func (b *fakeBackend) Delete(context.Context, string) error {
	b.wait()
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail {
		return errBackend
	}
	return nil
}

type recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *recorder) Notify(n Notice) {
	r.mu.Lock()
	r.notices = append(r.notices, n)
	r.mu.Unlock()
}

func (r *recorder) last() Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.notices[len(r.notices)-1]
}

func noteID(n note) string { return n.ID }

func newTestEditor(backend *fakeBackend) (*Editor[note], *recorder) {
	rec := new(recorder)
	ed := New[note]("note", backend, noteID, rec, WithClone(func(n note) note {
		n.Tags = append([]string(nil), n.Tags...)
		return n
	}))
	return ed, rec
}

func TestEditor_Load(t *testing.T) {
	backend := &fakeBackend{notes: []note{{ID: "a"}, {ID: "b"}}}
	ed, rec := newTestEditor(backend)

	require.NoError(t, ed.Load(context.Background()))
	assert.Equal(t, []note{{ID: "a"}, {ID: "b"}}, ed.Items())

	backend.fail = true
	assert.Error(t, ed.Load(context.Background()))
	assert.Equal(t, Failure, rec.last().Level)
	assert.Len(t, ed.Items(), 2, "local state kept on failure")
}

func TestEditor_Create(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{}
	ed, rec := newTestEditor(backend)

	created, err := ed.Create(ctx, note{Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, note{ID: "1", Text: "hi", Saved: true}, created)
	assert.Equal(t, []note{created}, ed.Items())
	assert.Equal(t, Notice{Level: Success, Message: "note created"}, rec.last())

	backend.fail = true
	_, err = ed.Create(ctx, note{Text: "lost"})
	assert.ErrorIs(t, err, errBackend)
	assert.Equal(t, []note{created}, ed.Items(), "optimistic item dropped")
	assert.Equal(t, "could not create note", rec.last().Message)
	assert.Equal(t, Failure, rec.last().Level)
}

func TestEditor_Update(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{notes: []note{{ID: "a", Text: "old"}}}
	ed, rec := newTestEditor(backend)
	require.NoError(t, ed.Load(ctx))

	updated, err := ed.Update(ctx, note{ID: "a", Text: "new"})
	require.NoError(t, err)
	assert.True(t, updated.Saved)
	got, ok := ed.Get("a")
	assert.True(t, ok)
	assert.Equal(t, updated, got)

	backend.fail = true
	_, err = ed.Update(ctx, note{ID: "a", Text: "newer"})
	assert.ErrorIs(t, err, errBackend)
	got, _ = ed.Get("a")
	assert.Equal(t, "new", got.Text, "rolled back")
	assert.Equal(t, Failure, rec.last().Level)

	_, err = ed.Update(ctx, note{ID: "zz"})
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestEditor_Delete(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{notes: []note{{ID: "a"}, {ID: "b"}, {ID: "c"}}}
	ed, rec := newTestEditor(backend)
	require.NoError(t, ed.Load(ctx))

	backend.fail = true
	assert.ErrorIs(t, ed.Delete(ctx, "b"), errBackend)
	assert.Equal(t, []note{{ID: "a"}, {ID: "b"}, {ID: "c"}}, ed.Items(), "restored at its position")

	backend.fail = false
	require.NoError(t, ed.Delete(ctx, "b"))
	assert.Equal(t, []note{{ID: "a"}, {ID: "c"}}, ed.Items())
	assert.Equal(t, "note deleted", rec.last().Message)

	assert.ErrorIs(t, ed.Delete(ctx, "b"), ErrNotLoaded)
}

func TestEditor_OptimisticState(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{notes: []note{{ID: "a", Text: "old"}}, gate: make(chan struct{})}
	ed, _ := newTestEditor(backend)
	require.NoError(t, ed.Load(ctx))

	done := make(chan error)
	go func() {
		_, err := ed.Update(ctx, note{ID: "a", Text: "new"})
		done <- err
	}()

	// the change is visible, and reads don't block, while persisting
	assert.Eventually(t, func() bool {
		n, _ := ed.Get("a")
		return n.Text == "new" && !n.Saved
	}, time.Second, time.Millisecond)

	close(backend.gate)
	require.NoError(t, <-done)
	n, _ := ed.Get("a")
	assert.True(t, n.Saved)
}

func TestEditor_ItemsAreCopies(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{notes: []note{{ID: "a", Tags: []string{"x"}}}}
	ed, _ := newTestEditor(backend)
	require.NoError(t, ed.Load(ctx))

	items := ed.Items()
	items[0].Tags[0] = "changed"
	items[0].Text = "changed"

	got, _ := ed.Get("a")
	assert.Equal(t, note{ID: "a", Tags: []string{"x"}}, got)
}

// scriptedBackend answers each persisting call with the error sent on the channel
// of the note's text ("delete" for deletions).
type scriptedBackend struct {
	fakeBackend
	replies map[string]chan error
}

func newScriptedBackend(notes []note, keys ...string) *scriptedBackend {
	b := &scriptedBackend{fakeBackend: fakeBackend{notes: notes}, replies: make(map[string]chan error)}
	for _, k := range keys {
		b.replies[k] = make(chan error)
	}
	return b
}

func (b *scriptedBackend) Update(_ context.Context, n note) (note, error) {
	if err := <-b.replies[n.Text]; err != nil {
		return note{}, err
	}
	n.Saved = true
	return n, nil
}

func (b *scriptedBackend) Delete(context.Context, string) error {
	return <-b.replies["delete"]
}

func TestEditor_ConcurrentUpdates(t *testing.T) {
	ctx := context.Background()

	// update starts an update of note "a" & waits for its optimistic value to show.
	update := func(t *testing.T, ed *Editor[note], text string) chan error {
		done := make(chan error, 1)
		go func() {
			_, err := ed.Update(ctx, note{ID: "a", Text: text})
			done <- err
		}()
		require.Eventually(t, func() bool {
			n, _ := ed.Get("a")
			return n.Text == text
		}, time.Second, time.Millisecond)
		return done
	}

	tests := []struct {
		name     string
		first    error // answer to the first update, given last
		second   error // answer to the second update, given first
		wantText string
		wantSave bool
	}{
		{name: "earlier update fails after the later one succeeded", first: errBackend, wantText: "second", wantSave: true},
		{name: "later update fails before the earlier one succeeded", second: errBackend, wantText: "first", wantSave: true},
		{name: "both fail", first: errBackend, second: errBackend, wantText: "orig"},
		{name: "both succeed", wantText: "first", wantSave: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newScriptedBackend([]note{{ID: "a", Text: "orig"}}, "first", "second")
			ed := New[note]("note", backend, noteID, nil)
			require.NoError(t, ed.Load(ctx))

			first := update(t, ed, "first")
			second := update(t, ed, "second")

			backend.replies["second"] <- tt.second
			assert.Equal(t, tt.second, <-second)
			backend.replies["first"] <- tt.first
			assert.Equal(t, tt.first, <-first)

			got, _ := ed.Get("a")
			assert.Equal(t, note{ID: "a", Text: tt.wantText, Saved: tt.wantSave}, got)
		})
	}
}

func TestEditor_DeleteFailsDuringUpdate(t *testing.T) {
	ctx := context.Background()
	backend := newScriptedBackend([]note{{ID: "a", Text: "orig"}, {ID: "b"}}, "new", "delete")
	ed := New[note]("note", backend, noteID, nil)
	require.NoError(t, ed.Load(ctx))

	updated := make(chan error, 1)
	go func() {
		_, err := ed.Update(ctx, note{ID: "a", Text: "new"})
		updated <- err
	}()
	require.Eventually(t, func() bool {
		n, _ := ed.Get("a")
		return n.Text == "new"
	}, time.Second, time.Millisecond)

	deleted := make(chan error, 1)
	go func() { deleted <- ed.Delete(ctx, "a") }()
	require.Eventually(t, func() bool {
		_, ok := ed.Get("a")
		return !ok
	}, time.Second, time.Millisecond)

	backend.replies["new"] <- nil
	require.NoError(t, <-updated)
	backend.replies["delete"] <- errBackend
	assert.ErrorIs(t, <-deleted, errBackend)

	assert.Equal(t, []note{{ID: "a", Text: "new", Saved: true}, {ID: "b"}}, ed.Items(), "put back with its latest value")
}
