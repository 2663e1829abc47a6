package feed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"WhisperWall/internal/core/posts"
)

func TestActions_LikeWhileInFlightIsRejected(t *testing.T) {
	client := new(mockClient)
	client.On("ListPosts", mock.Anything, 1, testPageSize).Return(samplePage(), nil)

	release := make(chan struct{})
	client.On("LikePost", mock.Anything, posts.PostID("3")).
		Run(func(mock.Arguments) { <-release }).
		Return(&posts.Post{ID: "3"}, nil).Once()
	client.On("LikePost", mock.Anything, posts.PostID("2")).Return(&posts.Post{ID: "2"}, nil).Once()

	f := newTestFeed(client)
	require.NoError(t, f.Start(context.Background()))
	actions := NewActions(f)

	done := make(chan error, 1)
	go func() { done <- actions.Like(context.Background(), "3") }()

	require.Eventually(t, func() bool { return actions.Busy("3").Liking }, time.Second, 5*time.Millisecond)

	// Same item: rejected without a request
	assert.ErrorIs(t, actions.Like(context.Background(), "3"), ErrActionInFlight)

	// Other items are independent
	require.NoError(t, actions.Like(context.Background(), "2"))
	assert.False(t, actions.Busy("2").Liking)

	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, Busy{}, actions.Busy("3"))
	assert.Equal(t, 3, f.State().Posts[0].Likes)
	client.AssertNumberOfCalls(t, "LikePost", 2)
}

func TestActions_FlagAlreadyFlaggedIssuesNoRequest(t *testing.T) {
	client := new(mockClient)
	client.On("ListPosts", mock.Anything, 1, testPageSize).Return(samplePage(), nil)

	f := newTestFeed(client)
	require.NoError(t, f.Start(context.Background()))
	actions := NewActions(f)

	// Post "1" arrives flagged from the server
	assert.ErrorIs(t, actions.Flag(context.Background(), "1"), ErrAlreadyFlagged)
	client.AssertNotCalled(t, "FlagPost", mock.Anything, mock.Anything)
}

func TestActions_SecondFlagAfterSuccessIsNotIssued(t *testing.T) {
	client := new(mockClient)
	client.On("ListPosts", mock.Anything, 1, testPageSize).Return(samplePage(), nil)
	client.On("FlagPost", mock.Anything, posts.PostID("2")).Return(&posts.Post{ID: "2", IsFlagged: true}, nil).Once()

	f := newTestFeed(client)
	require.NoError(t, f.Start(context.Background()))
	actions := NewActions(f)

	require.NoError(t, actions.Flag(context.Background(), "2"))
	assert.ErrorIs(t, actions.Flag(context.Background(), "2"), ErrAlreadyFlagged)
	client.AssertNumberOfCalls(t, "FlagPost", 1)
}

func TestActions_FlagWhileInFlightIsRejected(t *testing.T) {
	client := new(mockClient)
	client.On("ListPosts", mock.Anything, 1, testPageSize).Return(samplePage(), nil)

	release := make(chan struct{})
	client.On("FlagPost", mock.Anything, posts.PostID("2")).
		Run(func(mock.Arguments) { <-release }).
		Return(nil, posts.NewStatusError(500, "")).Once()

	f := newTestFeed(client)
	require.NoError(t, f.Start(context.Background()))
	actions := NewActions(f)

	done := make(chan error, 1)
	go func() { done <- actions.Flag(context.Background(), "2") }()
	require.Eventually(t, func() bool { return actions.Busy("2").Flagging }, time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, actions.Flag(context.Background(), "2"), ErrActionInFlight)
	// Liking the same item is a separate action
	assert.False(t, actions.Busy("2").Liking)

	close(release)
	require.Error(t, <-done)
	assert.False(t, actions.Busy("2").Flagging)
	assert.False(t, f.State().Posts[1].IsFlagged, "a failed flag leaves the post unflagged")
}

func TestActions_PostNotOnPageIssuesNoRequest(t *testing.T) {
	client := new(mockClient)
	client.On("ListPosts", mock.Anything, 1, testPageSize).Return(samplePage(), nil)

	f := newTestFeed(client)
	require.NoError(t, f.Start(context.Background()))
	actions := NewActions(f)

	assert.ErrorIs(t, actions.Like(context.Background(), "99"), ErrPostNotLoaded)
	assert.ErrorIs(t, actions.Flag(context.Background(), "99"), ErrPostNotLoaded)
	assert.Equal(t, Busy{}, actions.Busy("99"))
	client.AssertNotCalled(t, "LikePost", mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "FlagPost", mock.Anything, mock.Anything)
}
