package posts

import "context"

// Client is the narrow capability the feed needs from the wall service.
// The HTTP implementation lives in internal/wallapi; tests substitute their own.
type Client interface {
	// ListPosts fetches one page of posts. page starts at 1.
	// limit <= 0 selects the implementation's default page size.
	ListPosts(ctx context.Context, page, limit int) (*Page, error)

	// CreatePost publishes a new post. content is sent verbatim;
	// a blank alias is sent as DefaultAlias.
	CreatePost(ctx context.Context, content, authorAlias string) (*Post, error)

	// LikePost increments the like counter of a post on the server.
	LikePost(ctx context.Context, id PostID) (*Post, error)

	// FlagPost marks a post for moderation.
	FlagPost(ctx context.Context, id PostID) (*Post, error)
}
