package feed

import (
	"WhisperWall/internal/core/posts"
	"WhisperWall/internal/core/toast"
)

// State is a snapshot of the feed as the user sees it.
// Snapshots are copies; mutating one never affects the feed.
type State struct {
	Toast       *toast.Toast
	Posts       []posts.Post
	CurrentPage int
	TotalPages  int
	TotalPosts  int
	HasPrev     bool
	HasNext     bool
	Loading     bool
}

// initialState is the feed before its first fetch resolves
func initialState() State {
	return State{
		Posts:       []posts.Post{},
		CurrentPage: 1,
		TotalPages:  1,
		Loading:     true,
	}
}

// Empty reports whether the loaded page has no posts
func (s State) Empty() bool {
	return len(s.Posts) == 0
}

// Find returns the post with the given id from the current page
func (s State) Find(id posts.PostID) (posts.Post, bool) {
	for _, p := range s.Posts {
		if p.ID == id {
			return p, true
		}
	}
	return posts.Post{}, false
}

// At returns the post at a 1-based position on the current page
func (s State) At(position int) (posts.Post, bool) {
	if position < 1 || position > len(s.Posts) {
		return posts.Post{}, false
	}
	return s.Posts[position-1], true
}

func (s State) clone() State {
	out := s
	out.Posts = make([]posts.Post, len(s.Posts))
	copy(out.Posts, s.Posts)
	return out
}
