package feed

import (
	"context"
	"sync"

	"WhisperWall/internal/core/posts"
)

// Busy holds the transient in-flight flags of one feed item
type Busy struct {
	Liking   bool
	Flagging bool
}

// Actions dispatches per-item like/flag requests and tracks which are in flight.
// Each item's flags are independent of every other item's. The flags are view
// state only and never stored on the post itself.
type Actions struct {
	feed *Feed
	busy map[posts.PostID]Busy
	mu   sync.Mutex
}

// NewActions creates the action tracker for a feed
func NewActions(f *Feed) *Actions {
	return &Actions{
		feed: f,
		busy: make(map[posts.PostID]Busy),
	}
}

// Busy reports the in-flight flags for a post
func (a *Actions) Busy(id posts.PostID) Busy {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.busy[id]
}

// Like likes a post on the current page unless a like for it is already
// outstanding
func (a *Actions) Like(ctx context.Context, id posts.PostID) error {
	if _, ok := a.feed.State().Find(id); !ok {
		return ErrPostNotLoaded
	}
	if !a.begin(id, func(b *Busy) bool {
		if b.Liking {
			return false
		}
		b.Liking = true
		return true
	}) {
		return ErrActionInFlight
	}
	defer a.end(id, func(b *Busy) { b.Liking = false })

	return a.feed.LikePost(ctx, id)
}

// Flag flags a post on the current page unless it is already flagged in the
// current view or a flag request for it is outstanding. In those cases no
// request is issued.
func (a *Actions) Flag(ctx context.Context, id posts.PostID) error {
	p, ok := a.feed.State().Find(id)
	if !ok {
		return ErrPostNotLoaded
	}
	if p.IsFlagged {
		return ErrAlreadyFlagged
	}

	if !a.begin(id, func(b *Busy) bool {
		if b.Flagging {
			return false
		}
		b.Flagging = true
		return true
	}) {
		return ErrActionInFlight
	}
	defer a.end(id, func(b *Busy) { b.Flagging = false })

	return a.feed.FlagPost(ctx, id)
}

func (a *Actions) begin(id posts.PostID, fn func(*Busy) bool) bool {
	a.mu.Lock()
	b := a.busy[id]
	ok := fn(&b)
	if ok {
		a.busy[id] = b
	}
	a.mu.Unlock()

	if ok {
		a.feed.notify()
	}
	return ok
}

func (a *Actions) end(id posts.PostID, fn func(*Busy)) {
	a.mu.Lock()
	b := a.busy[id]
	fn(&b)
	if b == (Busy{}) {
		delete(a.busy, id)
	} else {
		a.busy[id] = b
	}
	a.mu.Unlock()

	a.feed.notify()
}
