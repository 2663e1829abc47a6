package feed

import "errors"

var (
	// ErrActionInFlight is returned when the same action is already outstanding for a post
	ErrActionInFlight = errors.New("action already in progress for this post")

	// ErrAlreadyFlagged is returned when flagging a post that is flagged in the current view
	ErrAlreadyFlagged = errors.New("post is already flagged")

	// ErrPostNotLoaded is returned when an action targets a post missing from the current page
	ErrPostNotLoaded = errors.New("post is not on the current page")
)

// User-facing notification texts
const (
	MsgLoadFailed   = "Failed to load posts. Is the backend running?"
	MsgCreated      = "Your whisper has been shared!"
	MsgCreateFailed = "Failed to create post"
	MsgLikeFailed   = "Failed to like post"
	MsgFlagged      = "Post has been flagged for review"
	MsgFlagFailed   = "Failed to flag post"
	MsgRefreshed    = "Feed refreshed!"
)
