package view

import (
	"WhisperWall/internal/core/compose"
	"WhisperWall/internal/core/feed"
	"WhisperWall/internal/core/posts"
	"WhisperWall/internal/core/toast"
)

// Card is one rendered feed item. Position is 1-based on the current page.
type Card struct {
	Post     posts.Post
	Position int
	Liking   bool
	Flagging bool
}

// ShellData is everything the screen shows
type ShellData struct {
	Toast      *toast.Toast
	Form       *compose.Snapshot
	Title      string
	Cards      []Card
	Pagination Pagination
	TotalPosts int
	Loading    bool
}

// NewShellData assembles the screen from a feed snapshot. busy may be nil.
// A nil form hides the composer.
func NewShellData(title string, s feed.State, busy func(posts.PostID) feed.Busy, form *compose.Snapshot) ShellData {
	cards := make([]Card, len(s.Posts))
	for i, p := range s.Posts {
		cards[i] = Card{Post: p, Position: i + 1}
		if busy != nil {
			b := busy(p.ID)
			cards[i].Liking = b.Liking
			cards[i].Flagging = b.Flagging
		}
	}

	return ShellData{
		Toast: s.Toast,
		Form:  form,
		Title: title,
		Cards: cards,
		Pagination: Pagination{
			Current: s.CurrentPage,
			Total:   s.TotalPages,
			HasPrev: s.HasPrev,
			HasNext: s.HasNext,
		},
		TotalPosts: s.TotalPosts,
		Loading:    s.Loading,
	}
}
