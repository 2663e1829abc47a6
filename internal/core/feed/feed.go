// Package feed owns the in-memory state of the whisper feed and sequences
// the calls that change it: page loads, post creation, likes and flags.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"WhisperWall/internal/core/posts"
	"WhisperWall/internal/core/toast"
)

// Feed is the state container for the currently displayed page.
//
// Operations may run concurrently. Overlapping page loads are neither queued
// nor cancelled: whichever completes last determines the visible page.
type Feed struct {
	client    posts.Client
	notifier  *toast.Notifier
	logger    *slog.Logger
	listeners []func()
	state     State
	pageSize  int
	mu        sync.Mutex
}

// Option configures a Feed
type Option func(*Feed)

// WithNotifier sets the toast notifier
func WithNotifier(n *toast.Notifier) Option {
	return func(f *Feed) {
		if n != nil {
			f.notifier = n
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(f *Feed) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithPageSize sets the page size requested from the service.
// Zero leaves the choice to the client.
func WithPageSize(size int) Option {
	return func(f *Feed) {
		if size > 0 {
			f.pageSize = size
		}
	}
}

// New creates a feed in its initial loading state. Call Start to fetch the first page.
func New(client posts.Client, opts ...Option) *Feed {
	f := &Feed{
		client: client,
		logger: slog.Default(),
		state:  initialState(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.notifier == nil {
		f.notifier = toast.NewNotifier(nil, toast.DefaultTTL)
	}
	f.notifier.OnChange(f.notify)
	return f
}

// Notifier returns the toast notifier the feed reports through
func (f *Feed) Notifier() *toast.Notifier {
	return f.notifier
}

// Subscribe registers fn to run after every state or toast change.
// fn runs on the goroutine that made the change and must not block.
func (f *Feed) Subscribe(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, fn)
}

// State returns a snapshot of the feed, including the visible toast
func (f *Feed) State() State {
	f.mu.Lock()
	s := f.state.clone()
	f.mu.Unlock()

	if t, ok := f.notifier.Current(); ok {
		s.Toast = &t
	}
	return s
}

// Start performs the initial fetch of page 1
func (f *Feed) Start(ctx context.Context) error {
	return f.LoadPage(ctx, 1)
}

// LoadPage fetches page n and, on success, replaces the posts and pagination
// fields in one step. On failure the previous page stays visible and an
// error toast is shown. Loading is cleared either way.
func (f *Feed) LoadPage(ctx context.Context, n int) error {
	f.update(func(s *State) {
		s.Loading = true
	})

	page, err := f.client.ListPosts(ctx, n, f.pageSize)
	if err != nil {
		f.logger.Warn("failed to fetch posts", "page", n, "error", err)
		f.update(func(s *State) {
			s.Loading = false
		})
		f.notifier.Show(MsgLoadFailed, toast.KindError)
		return fmt.Errorf("load page %d: %w", n, err)
	}

	items := make([]posts.Post, len(page.Posts))
	copy(items, page.Posts)
	totalPages := page.Pages
	if totalPages <= 0 {
		totalPages = 1
	}

	f.update(func(s *State) {
		s.Posts = items
		s.CurrentPage = n
		s.TotalPages = totalPages
		s.TotalPosts = page.Total
		s.HasPrev = page.HasPrev
		s.HasNext = page.HasNext
		s.Loading = false
	})
	return nil
}

// ChangePage loads page n. Range checks belong to the pagination control,
// which only offers pages the server reported as existing.
func (f *Feed) ChangePage(ctx context.Context, n int) error {
	return f.LoadPage(ctx, n)
}

// Refresh reloads the current page. The success toast is shown as soon as
// the reload starts, not when it completes; a failed reload replaces it
// with an error toast.
func (f *Feed) Refresh(ctx context.Context) error {
	f.mu.Lock()
	current := f.state.CurrentPage
	f.mu.Unlock()

	f.notifier.Show(MsgRefreshed, toast.KindSuccess)
	return f.LoadPage(ctx, current)
}

// CreatePost publishes a post and returns the user to page 1.
// The error is returned so the form can keep its input.
func (f *Feed) CreatePost(ctx context.Context, content, authorAlias string) error {
	if _, err := f.client.CreatePost(ctx, content, authorAlias); err != nil {
		f.logger.Warn("failed to create post", "error", err)
		f.notifier.Show(posts.Message(err, MsgCreateFailed), toast.KindError)
		return err
	}

	f.notifier.Show(MsgCreated, toast.KindSuccess)
	f.update(func(s *State) {
		s.CurrentPage = 1
	})

	// A failed reload is already reported by its own toast; creation itself succeeded
	_ = f.LoadPage(ctx, 1)
	return nil
}

// LikePost likes a post and, on success, bumps its local like count by one.
// Nothing else about the post changes and no refetch happens.
func (f *Feed) LikePost(ctx context.Context, id posts.PostID) error {
	if _, err := f.client.LikePost(ctx, id); err != nil {
		f.logger.Warn("failed to like post", "post_id", id, "error", err)
		f.notifier.Show(MsgLikeFailed, toast.KindError)
		return fmt.Errorf("like post %s: %w", id, err)
	}

	f.update(func(s *State) {
		for i := range s.Posts {
			if s.Posts[i].ID == id {
				s.Posts[i].Likes++
				return
			}
		}
	})
	return nil
}

// FlagPost flags a post for moderation and marks it flagged locally.
func (f *Feed) FlagPost(ctx context.Context, id posts.PostID) error {
	if _, err := f.client.FlagPost(ctx, id); err != nil {
		f.logger.Warn("failed to flag post", "post_id", id, "error", err)
		f.notifier.Show(MsgFlagFailed, toast.KindError)
		return fmt.Errorf("flag post %s: %w", id, err)
	}

	f.update(func(s *State) {
		for i := range s.Posts {
			if s.Posts[i].ID == id {
				s.Posts[i].IsFlagged = true
				return
			}
		}
	})
	f.notifier.Show(MsgFlagged, toast.KindInfo)
	return nil
}

// update applies fn under the lock, then notifies listeners outside it
func (f *Feed) update(fn func(s *State)) {
	f.mu.Lock()
	fn(&f.state)
	f.mu.Unlock()
	f.notify()
}

func (f *Feed) notify() {
	f.mu.Lock()
	listeners := make([]func(), len(f.listeners))
	copy(listeners, f.listeners)
	f.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}
