// Package feed implements incremental change streams over a slowly mutating
// collection. A Publisher polls a Source on a fixed interval, diffs the pulls
// against what the subscriber has already seen and pushes only the delta:
// new items, updated items and removed ids.
package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"time"
)

// Snapshot is one item of a pull: its stable id plus the payload sent to the
// subscriber.
type Snapshot struct {
	ID      int64
	Payload any
}

// Query bounds a pull. A nil time bound is open; Limit caps the page.
type Query struct {
	Limit         int
	UpdatedBefore *time.Time
	UpdatedAfter  *time.Time
}

// Source feeds a Publisher. Count reports how many items were last updated
// at or before the cursor; it lets the publisher detect removals without
// pulling the full set every tick.
type Source interface {
	Pull(ctx context.Context, q Query) ([]Snapshot, error)
	Count(ctx context.Context, updatedBefore time.Time) (int, error)
}

// Delta is one push: items the subscriber has not seen, items it has seen in
// an older state, and ids that left the collection.
type Delta struct {
	New     []any   `json:"new"`
	Updated []any   `json:"updated"`
	Removed []int64 `json:"removed"`
}

// Empty reports whether the delta carries no change.
func (d Delta) Empty() bool {
	return len(d.New) == 0 && len(d.Updated) == 0 && len(d.Removed) == 0
}

const (
	defaultInterval = 10 * time.Second
	defaultPageSize = 10000
)

// Publisher drives one subscriber's stream. Not safe for concurrent use;
// every subscriber gets its own Publisher.
type Publisher struct {
	src Source

	// Interval is the polling period. PageSize caps each pull.
	Interval time.Duration
	PageSize int

	now func() time.Time

	cursor time.Time
	known  map[int64]bool
	last   []byte
}

// NewPublisher returns a Publisher with default interval and page size.
func NewPublisher(src Source) *Publisher {
	return &Publisher{
		src:      src,
		Interval: defaultInterval,
		PageSize: defaultPageSize,
		now:      time.Now,
		known:    map[int64]bool{},
	}
}

// Run streams deltas to push until the context is canceled or push fails.
// The first push always happens and carries the full current state as new
// items, even when the collection is empty, so subscribers can reset. After
// that a delta is pushed only when it is non-empty and differs from the last
// pushed one; the cursor only advances on a successful push, so a failed
// diff is retried on the next tick.
func (p *Publisher) Run(ctx context.Context, push func(Delta) error) error {
	if err := p.start(ctx, push); err != nil {
		return err
	}

	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		delta, newIDs, nextCursor, err := p.diff(ctx)
		if err != nil {
			return err
		}
		if delta.Empty() {
			continue
		}
		raw, err := json.Marshal(delta)
		if err != nil {
			return err
		}
		if bytes.Equal(raw, p.last) {
			continue
		}
		if err := push(delta); err != nil {
			return err
		}
		p.commit(delta, raw, newIDs, nextCursor)
	}
}

func (p *Publisher) start(ctx context.Context, push func(Delta) error) error {
	cursor := p.now()
	all, err := p.src.Pull(ctx, Query{Limit: p.PageSize})
	if err != nil {
		return err
	}
	delta := Delta{New: []any{}, Updated: []any{}, Removed: []int64{}}
	for _, s := range all {
		delta.New = append(delta.New, s.Payload)
	}
	raw, err := json.Marshal(delta)
	if err != nil {
		return err
	}
	if err := push(delta); err != nil {
		return err
	}
	p.cursor = cursor
	p.last = raw
	for _, s := range all {
		p.known[s.ID] = true
	}
	return nil
}

// diff computes the changes since the cursor. Items updated after the cursor
// split into updated (already seen) and new; a count shortfall among the
// unchanged items means something was removed, which costs one full pull to
// pin down. The next cursor is taken before the pull, so an item updated
// during the diff is re-sent rather than lost.
func (p *Publisher) diff(ctx context.Context) (Delta, []int64, time.Time, error) {
	delta := Delta{New: []any{}, Updated: []any{}, Removed: []int64{}}

	nextCursor := p.now()
	cursor := p.cursor
	changed, err := p.src.Pull(ctx, Query{Limit: p.PageSize, UpdatedAfter: &cursor})
	if err != nil {
		return delta, nil, nextCursor, err
	}
	changedIDs := make(map[int64]bool, len(changed))
	for _, s := range changed {
		changedIDs[s.ID] = true
	}

	unchanged := 0
	for id := range p.known {
		if !changedIDs[id] {
			unchanged++
		}
	}
	count, err := p.src.Count(ctx, cursor)
	if err != nil {
		return delta, nil, nextCursor, err
	}
	if count != unchanged {
		all, err := p.src.Pull(ctx, Query{Limit: p.PageSize})
		if err != nil {
			return delta, nil, nextCursor, err
		}
		present := make(map[int64]bool, len(all))
		for _, s := range all {
			present[s.ID] = true
		}
		for id := range p.known {
			if !present[id] && !changedIDs[id] {
				delta.Removed = append(delta.Removed, id)
			}
		}
	}

	var newIDs []int64
	for _, s := range changed {
		if p.known[s.ID] {
			delta.Updated = append(delta.Updated, s.Payload)
		} else {
			delta.New = append(delta.New, s.Payload)
			newIDs = append(newIDs, s.ID)
		}
	}
	return delta, newIDs, nextCursor, nil
}

// commit applies a pushed delta to the tracking state and advances the
// cursor.
func (p *Publisher) commit(delta Delta, raw []byte, newIDs []int64, nextCursor time.Time) {
	p.cursor = nextCursor
	p.last = raw
	for _, id := range delta.Removed {
		delete(p.known, id)
	}
	for _, id := range newIDs {
		p.known[id] = true
	}
}
