package compose

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WhisperWall/internal/core/posts"
)

type recordedCall struct {
	content string
	alias   string
}

// recorder returns a CreateFunc that records its calls and answers with err
func recorder(err error) (CreateFunc, *[]recordedCall) {
	var calls []recordedCall
	return func(_ context.Context, content, alias string) error {
		calls = append(calls, recordedCall{content: content, alias: alias})
		return err
	}, &calls
}

func TestForm_RejectsBlankContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"spaces", "    "},
		{"newlines and tabs", "\n\t \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewForm(0)
			f.SetContent(tt.content)

			create, calls := recorder(nil)
			err := f.Submit(context.Background(), create)

			assert.ErrorIs(t, err, ErrEmptyContent)
			assert.Empty(t, *calls, "creation must not be invoked")
			assert.Equal(t, MsgEmptyContent, f.Snapshot().Error)
		})
	}
}

func TestForm_LengthCeiling(t *testing.T) {
	f := NewForm(0)
	assert.Equal(t, DefaultMaxChars, f.MaxChars())

	f.SetContent(strings.Repeat("a", 5001))
	snap := f.Snapshot()
	assert.Equal(t, 5001, snap.CharCount)
	assert.True(t, snap.OverLimit)

	create, calls := recorder(nil)
	assert.ErrorIs(t, f.Submit(context.Background(), create), ErrContentTooLong)
	assert.Empty(t, *calls)
	assert.Equal(t, MsgTooLong, f.Snapshot().Error)
	assert.Equal(t, strings.Repeat("a", 5001), f.Snapshot().Content, "input is kept")

	f.SetContent(strings.Repeat("a", 5000))
	assert.False(t, f.Snapshot().OverLimit)
	require.NoError(t, f.Submit(context.Background(), create))
	assert.Len(t, *calls, 1)
}

func TestForm_CountsUserPerceivedCharacters(t *testing.T) {
	f := NewForm(3)
	// Three flags, each two code points
	f.SetContent("🇳🇴🇯🇵🇧🇷")
	assert.Equal(t, 3, f.Snapshot().CharCount)
	assert.False(t, f.Snapshot().OverLimit)
}

func TestForm_SubmitTrimsAndDefaultsAlias(t *testing.T) {
	f := NewForm(0)
	f.SetContent("  hello wall \n")
	f.SetAlias("   ")

	create, calls := recorder(nil)
	require.NoError(t, f.Submit(context.Background(), create))

	require.Len(t, *calls, 1)
	assert.Equal(t, "hello wall", (*calls)[0].content)
	assert.Equal(t, "Anonymous", (*calls)[0].alias)

	snap := f.Snapshot()
	assert.Empty(t, snap.Content, "success clears content")
	assert.Empty(t, snap.Alias, "success clears alias")
	assert.Empty(t, snap.Error)
}

func TestForm_SubmitTrimsAlias(t *testing.T) {
	f := NewForm(0)
	f.SetContent("hi")
	f.SetAlias("  ghost  ")

	create, calls := recorder(nil)
	require.NoError(t, f.Submit(context.Background(), create))
	assert.Equal(t, "ghost", (*calls)[0].alias)
}

func TestForm_FailureKeepsInputAndShowsMessage(t *testing.T) {
	f := NewForm(0)
	f.SetContent("keep me")
	f.SetAlias("ghost")

	create, _ := recorder(posts.NewStatusError(400, "Content cannot be empty or only whitespace"))
	err := f.Submit(context.Background(), create)
	require.Error(t, err)

	snap := f.Snapshot()
	assert.Equal(t, "keep me", snap.Content)
	assert.Equal(t, "ghost", snap.Alias)
	assert.Equal(t, "Content cannot be empty or only whitespace", snap.Error)
	assert.False(t, snap.Submitting)
}

func TestForm_FailureWithoutMessageUsesFallback(t *testing.T) {
	f := NewForm(0)
	f.SetContent("x")

	create, _ := recorder(&posts.APIError{})
	require.Error(t, f.Submit(context.Background(), create))
	assert.Equal(t, MsgSubmitFailed, f.Snapshot().Error)
}

func TestForm_ErrorClearedOnNextSubmit(t *testing.T) {
	f := NewForm(0)
	failing, _ := recorder(errors.New("nope"))
	f.SetContent("x")
	require.Error(t, f.Submit(context.Background(), failing))
	assert.Equal(t, "nope", f.Snapshot().Error)

	ok, _ := recorder(nil)
	require.NoError(t, f.Submit(context.Background(), ok))
	assert.Empty(t, f.Snapshot().Error)
}

func TestForm_AliasCappedAtCapture(t *testing.T) {
	f := NewForm(0)
	f.SetAlias(strings.Repeat("b", 80))
	assert.Equal(t, strings.Repeat("b", MaxAliasChars), f.Snapshot().Alias)

	f.SetAlias(strings.Repeat("é", 60))
	assert.Equal(t, strings.Repeat("é", MaxAliasChars), f.Snapshot().Alias)

	f.SetAlias("short")
	assert.Equal(t, "short", f.Snapshot().Alias)
}

func TestForm_DuplicateSubmitPrevented(t *testing.T) {
	f := NewForm(0)
	f.SetContent("once")

	started := make(chan struct{})
	release := make(chan struct{})
	calls := 0
	slow := func(_ context.Context, _, _ string) error {
		calls++
		close(started)
		<-release
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- f.Submit(context.Background(), slow) }()
	<-started

	snap := f.Snapshot()
	assert.True(t, snap.Submitting)
	assert.False(t, snap.CanSubmit, "submit control is disabled while in flight")

	second, secondCalls := recorder(nil)
	assert.ErrorIs(t, f.Submit(context.Background(), second), ErrSubmitInFlight)
	assert.Empty(t, *secondCalls)

	// Input is frozen while submitting
	f.SetContent("changed")
	assert.Equal(t, "once", f.Snapshot().Content)

	close(release)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("submit did not complete")
	}
	assert.Equal(t, 1, calls)
	assert.False(t, f.Snapshot().Submitting)
}

func TestForm_CanSubmit(t *testing.T) {
	f := NewForm(0)
	assert.False(t, f.Snapshot().CanSubmit)
	f.SetContent("  ")
	assert.False(t, f.Snapshot().CanSubmit)
	f.SetContent("ok")
	assert.True(t, f.Snapshot().CanSubmit)
}
