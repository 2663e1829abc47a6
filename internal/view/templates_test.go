package view

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WhisperWall/internal/core/compose"
	"WhisperWall/internal/core/feed"
	"WhisperWall/internal/core/posts"
	"WhisperWall/internal/core/toast"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	clk := clock.NewMock()
	clk.Set(refNow)
	r, err := NewRenderer(WithClock(clk), WithColor(false))
	require.NoError(t, err)
	return r
}

func render(t *testing.T, r *Renderer, name string, data any) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, name, data))
	return buf.String()
}

func loadedState() feed.State {
	return feed.State{
		Posts: []posts.Post{
			{ID: "2", Content: "second\nline two", AuthorAlias: "ghost", CreatedAt: "2024-06-15T11:58:30Z", Likes: 4},
			{ID: "1", Content: "first", AuthorAlias: "Anonymous", CreatedAt: "2024-06-15T09:00:00", Likes: 0, IsFlagged: true},
		},
		CurrentPage: 2,
		TotalPages:  3,
		TotalPosts:  42,
		HasPrev:     true,
		HasNext:     true,
	}
}

func TestNewRenderer(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	require.NotNil(t, r)
}

func TestRender_UnknownTemplate(t *testing.T) {
	r := newTestRenderer(t)
	err := r.Render(&bytes.Buffer{}, "nope", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `template "nope" not found`)
}

func TestShell_Loading(t *testing.T) {
	r := newTestRenderer(t)
	s := loadedState()
	s.Loading = true

	var buf bytes.Buffer
	require.NoError(t, r.Shell(&buf, NewShellData("WhisperWall", s, nil, nil)))
	out := buf.String()

	assert.Contains(t, out, "Loading whispers...")
	assert.NotContains(t, out, "second")
	assert.NotContains(t, out, "Previous")
}

func TestShell_Empty(t *testing.T) {
	r := newTestRenderer(t)
	s := feed.State{CurrentPage: 1, TotalPages: 1}

	var buf bytes.Buffer
	require.NoError(t, r.Shell(&buf, NewShellData("WhisperWall", s, nil, nil)))
	out := buf.String()

	assert.Contains(t, out, "No whispers yet")
	assert.Contains(t, out, "Be the first to share something!")
	assert.Contains(t, out, "[0 whispers]")
	assert.NotContains(t, out, "Previous", "pagination is hidden without posts")
}

func TestShell_Posts(t *testing.T) {
	r := newTestRenderer(t)
	busy := func(id posts.PostID) feed.Busy {
		if id == "2" {
			return feed.Busy{Liking: true}
		}
		return feed.Busy{}
	}
	form := compose.NewForm(0).Snapshot()

	var buf bytes.Buffer
	require.NoError(t, r.Shell(&buf, NewShellData("WhisperWall", loadedState(), busy, &form)))
	out := buf.String()

	assert.Contains(t, out, "WhisperWall")
	assert.Contains(t, out, "Share your thoughts anonymously")
	assert.Contains(t, out, "[42 whispers]")
	assert.Contains(t, out, "Latest Whispers")
	assert.Equal(t, 2, strings.Count(out, "2 / 3"), "pagination above and below the list")
	assert.Contains(t, out, "WhisperWall • All posts are anonymous • Be respectful")
	assert.Contains(t, out, "Share Your Thoughts")
	assert.NotContains(t, out, "No whispers yet")

	// cards in server order, numbered
	first := strings.Index(out, " 1. (G) ghost")
	second := strings.Index(out, " 2. (?) Anonymous")
	require.NotEqual(t, -1, first)
	require.NotEqual(t, -1, second)
	assert.Less(t, first, second)

	assert.Contains(t, out, "liking...")
	assert.Contains(t, out, "second\n    line two")
}

func TestShell_Toast(t *testing.T) {
	r := newTestRenderer(t)
	s := loadedState()
	s.Toast = &toast.Toast{Message: "Feed refreshed!", Kind: toast.KindSuccess, ID: 1}

	var buf bytes.Buffer
	require.NoError(t, r.Shell(&buf, NewShellData("WhisperWall", s, nil, nil)))
	assert.Contains(t, buf.String(), "✅ Feed refreshed!")
}

func TestCard(t *testing.T) {
	r := newTestRenderer(t)

	t.Run("unflagged offers flag", func(t *testing.T) {
		out := render(t, r, "card", Card{
			Post:     posts.Post{ID: "2", Content: "hello", AuthorAlias: "ghost", CreatedAt: "2024-06-15T11:58:30Z", Likes: 4},
			Position: 1,
			Flagging: true,
		})
		assert.Contains(t, out, "ghost")
		assert.Contains(t, out, "1m ago")
		assert.Contains(t, out, "❤️  4")
		assert.Contains(t, out, "🚩 Flag flagging...")
		assert.NotContains(t, out, "Flagged")
	})

	t.Run("flagged shows badge and hides flag action", func(t *testing.T) {
		out := render(t, r, "card", Card{
			Post:     posts.Post{ID: "1", Content: "hello", IsFlagged: true, CreatedAt: ""},
			Position: 3,
		})
		assert.Contains(t, out, "🚩 Flagged")
		assert.Contains(t, out, "Anonymous")
		assert.Contains(t, out, "Recently")
		assert.NotContains(t, out, "🚩 Flag\n")
		assert.NotContains(t, out, "Flag ")
	})
}

func TestPaginationTemplate(t *testing.T) {
	r := newTestRenderer(t)
	out := render(t, r, "pagination", Pagination{Current: 1, Total: 0})
	assert.Contains(t, out, "1 / 1")
	assert.Contains(t, out, "← Previous")
	assert.Contains(t, out, "Next →")
}

func TestFormTemplate(t *testing.T) {
	r := newTestRenderer(t)

	t.Run("empty", func(t *testing.T) {
		snap := compose.NewForm(0).Snapshot()
		out := render(t, r, "form", snap)
		assert.Contains(t, out, "What's on your mind? Share anonymously...")
		assert.Contains(t, out, "0 / 5,000")
		assert.Contains(t, out, "Your name (optional - defaults to Anonymous)")
		assert.Contains(t, out, "Post Anonymously")
	})

	t.Run("over limit with error", func(t *testing.T) {
		f := compose.NewForm(0)
		f.SetContent(strings.Repeat("a", 5001))
		_ = f.Submit(context.Background(), func(_ context.Context, _, _ string) error { return nil })

		out := render(t, r, "form", f.Snapshot())
		assert.Contains(t, out, "5,001 / 5,000")
		assert.Contains(t, out, "Your post is too long!")
	})
}

func TestToastTemplate(t *testing.T) {
	r := newTestRenderer(t)
	tests := []struct {
		kind toast.Kind
		icon string
	}{
		{toast.KindSuccess, "✅"},
		{toast.KindError, "❌"},
		{toast.KindInfo, "ℹ️"},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			out := render(t, r, "toast", toast.Toast{Message: "msg", Kind: tt.kind})
			assert.Contains(t, out, tt.icon+" msg")
			assert.Contains(t, out, "[close]")
		})
	}
}

func TestHelp(t *testing.T) {
	r := newTestRenderer(t)
	var buf bytes.Buffer
	require.NoError(t, r.Help(&buf))
	for _, cmd := range []string{"next, n", "prev, p", "page N", "like, l N", "flag, f N", "write TEXT", "alias NAME", "post [TEXT]", "refresh, r", "close", "quit, q"} {
		assert.Contains(t, buf.String(), cmd)
	}
}

func TestColorEnabled(t *testing.T) {
	r, err := NewRenderer(WithColor(true))
	require.NoError(t, err)
	out := render(t, r, "toast", toast.Toast{Message: "boom", Kind: toast.KindError})
	assert.Contains(t, out, "\x1b[")
}
