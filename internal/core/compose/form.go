// Package compose implements the new-post form: input capture, client-side
// validation and submission.
package compose

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rivo/uniseg"

	"WhisperWall/internal/core/posts"
)

const (
	// DefaultMaxChars is the advisory content ceiling. The server may enforce its own.
	DefaultMaxChars = 5000

	// MaxAliasChars caps alias input as it is captured
	MaxAliasChars = 50
)

var (
	// ErrEmptyContent is returned when content is blank after trimming
	ErrEmptyContent = errors.New("content is empty")

	// ErrContentTooLong is returned when content exceeds the ceiling
	ErrContentTooLong = errors.New("content exceeds the maximum length")

	// ErrSubmitInFlight is returned when a submission is already outstanding
	ErrSubmitInFlight = errors.New("a submission is already in progress")
)

// Inline messages shown under the form
const (
	MsgEmptyContent = "Please write something to share!"
	MsgTooLong      = "Your post is too long!"
	MsgSubmitFailed = "Failed to create post. Please try again."
)

// CreateFunc publishes a post. Its error message is shown inline on failure.
type CreateFunc func(ctx context.Context, content, authorAlias string) error

// Form holds the composer's input. It is safe for concurrent use.
type Form struct {
	content    string
	alias      string
	err        string
	maxChars   int
	submitting bool
	mu         sync.Mutex
}

// NewForm creates an empty form. maxChars <= 0 selects DefaultMaxChars.
func NewForm(maxChars int) *Form {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &Form{maxChars: maxChars}
}

// Snapshot is a copy of the form for rendering
type Snapshot struct {
	Content    string
	Alias      string
	Error      string
	CharCount  int
	MaxChars   int
	OverLimit  bool
	Submitting bool
	CanSubmit  bool
}

// Snapshot returns the current form state
func (f *Form) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := charCount(f.content)
	return Snapshot{
		Content:    f.content,
		Alias:      f.alias,
		Error:      f.err,
		CharCount:  count,
		MaxChars:   f.maxChars,
		OverLimit:  count > f.maxChars,
		Submitting: f.submitting,
		CanSubmit:  !f.submitting && strings.TrimSpace(f.content) != "",
	}
}

// SetContent replaces the content. Input is ignored while a submission is outstanding.
func (f *Form) SetContent(content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitting {
		return
	}
	f.content = content
}

// SetAlias replaces the alias, truncated to MaxAliasChars characters.
// Input is ignored while a submission is outstanding.
func (f *Form) SetAlias(alias string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitting {
		return
	}
	f.alias = truncate(alias, MaxAliasChars)
}

// MaxChars returns the content ceiling
func (f *Form) MaxChars() int {
	return f.maxChars
}

// Submit validates the input and, if valid, calls create with the trimmed
// content and alias. Success clears the form; failure keeps the input and
// records the error message inline.
func (f *Form) Submit(ctx context.Context, create CreateFunc) error {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return ErrSubmitInFlight
	}
	f.err = ""

	if strings.TrimSpace(f.content) == "" {
		f.err = MsgEmptyContent
		f.mu.Unlock()
		return ErrEmptyContent
	}
	if charCount(f.content) > f.maxChars {
		f.err = MsgTooLong
		f.mu.Unlock()
		return ErrContentTooLong
	}

	content := strings.TrimSpace(f.content)
	alias := posts.NormalizeAlias(f.alias)
	f.submitting = true
	f.mu.Unlock()

	err := create(ctx, content, alias)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false
	if err != nil {
		f.err = posts.Message(err, MsgSubmitFailed)
		return err
	}
	f.content = ""
	f.alias = ""
	return nil
}

// charCount counts user-perceived characters
func charCount(s string) int {
	return uniseg.GraphemeClusterCount(s)
}

// truncate keeps at most n user-perceived characters of s
func truncate(s string, n int) string {
	if charCount(s) <= n {
		return s
	}

	var b strings.Builder
	state := -1
	rest := s
	for i := 0; i < n && rest != ""; i++ {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		b.WriteString(cluster)
	}
	return b.String()
}
