package feed

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeItem struct {
	id        int64
	payload   string
	updatedAt time.Time
}

type fakeSource struct {
	mu    sync.Mutex
	items []fakeItem
}

func (f *fakeSource) set(id int64, payload string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].id == id {
			f.items[i].payload = payload
			f.items[i].updatedAt = time.Now()
			return
		}
	}
	f.items = append(f.items, fakeItem{id: id, payload: payload, updatedAt: time.Now()})
}

func (f *fakeSource) remove(id int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.items[:0]
	for _, it := range f.items {
		if it.id != id {
			kept = append(kept, it)
		}
	}
	f.items = kept
}

func (f *fakeSource) Pull(_ context.Context, q Query) ([]Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Snapshot
	for _, it := range f.items {
		if q.UpdatedAfter != nil && !it.updatedAt.After(*q.UpdatedAfter) {
			continue
		}
		if q.UpdatedBefore != nil && it.updatedAt.After(*q.UpdatedBefore) {
			continue
		}
		out = append(out, Snapshot{ID: it.id, Payload: it.payload})
	}
	return out, nil
}

func (f *fakeSource) Count(_ context.Context, updatedBefore time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, it := range f.items {
		if !it.updatedAt.After(updatedBefore) {
			n++
		}
	}
	return n, nil
}

func startPublisher(t *testing.T, src Source) (chan Delta, context.CancelFunc, chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	deltas := make(chan Delta, 16)
	done := make(chan error, 1)

	pub := NewPublisher(src)
	pub.Interval = 5 * time.Millisecond
	go func() {
		done <- pub.Run(ctx, func(d Delta) error {
			deltas <- d
			return nil
		})
	}()
	return deltas, cancel, done
}

func nextDelta(t *testing.T, deltas chan Delta) Delta {
	t.Helper()
	select {
	case d := <-deltas:
		return d
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delta")
		return Delta{}
	}
}

func TestPublisherInitialPush(t *testing.T) {
	src := &fakeSource{}
	src.set(1, "a")
	src.set(2, "b")

	deltas, cancel, done := startPublisher(t, src)
	defer cancel()

	first := nextDelta(t, deltas)
	assert.ElementsMatch(t, []any{"a", "b"}, first.New)
	assert.Empty(t, first.Updated)
	assert.Empty(t, first.Removed)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestPublisherInitialPushEmptySource(t *testing.T) {
	src := &fakeSource{}
	deltas, cancel, _ := startPublisher(t, src)
	defer cancel()

	// The reset push happens even with nothing to send.
	first := nextDelta(t, deltas)
	assert.True(t, first.Empty())
}

func TestPublisherClassifiesChanges(t *testing.T) {
	src := &fakeSource{}
	src.set(1, "a")

	deltas, cancel, _ := startPublisher(t, src)
	defer cancel()
	nextDelta(t, deltas)

	src.set(1, "a2")
	d := nextDelta(t, deltas)
	assert.Empty(t, d.New)
	assert.Equal(t, []any{"a2"}, d.Updated)
	assert.Empty(t, d.Removed)

	src.set(2, "b")
	d = nextDelta(t, deltas)
	assert.Equal(t, []any{"b"}, d.New)
	assert.Empty(t, d.Updated)
}

func TestPublisherDetectsRemoval(t *testing.T) {
	src := &fakeSource{}
	src.set(1, "a")
	src.set(2, "b")

	deltas, cancel, _ := startPublisher(t, src)
	defer cancel()
	nextDelta(t, deltas)

	src.remove(2)
	d := nextDelta(t, deltas)
	assert.Equal(t, []int64{2}, d.Removed)
	assert.Empty(t, d.New)
	assert.Empty(t, d.Updated)
}

func TestPublisherReaddAfterRemoval(t *testing.T) {
	src := &fakeSource{}
	src.set(1, "a")

	deltas, cancel, _ := startPublisher(t, src)
	defer cancel()
	nextDelta(t, deltas)

	src.remove(1)
	d := nextDelta(t, deltas)
	assert.Equal(t, []int64{1}, d.Removed)

	src.set(1, "a-back")
	d = nextDelta(t, deltas)
	assert.Equal(t, []any{"a-back"}, d.New)
}

func TestPublisherStopsOnPushError(t *testing.T) {
	src := &fakeSource{}
	src.set(1, "a")

	pub := NewPublisher(src)
	pub.Interval = 5 * time.Millisecond

	pushErr := context.DeadlineExceeded
	calls := 0
	err := pub.Run(context.Background(), func(Delta) error {
		calls++
		return pushErr
	})
	require.ErrorIs(t, err, pushErr)
	assert.Equal(t, 1, calls)
}
