package posts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultAlias is shown, and sent, for posts without an author alias
const DefaultAlias = "Anonymous"

// DefaultPageSize is the page size requested when callers pass none
const DefaultPageSize = 20

// PostID is the server-assigned identifier of a post.
// The server may encode it as a JSON number or string; the client treats it as opaque.
type PostID string

// UnmarshalJSON accepts both numeric and string identifiers.
func (id *PostID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid post id: %w", err)
		}
		*id = PostID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid post id: %w", err)
	}
	*id = PostID(n.String())
	return nil
}

func (id PostID) String() string {
	return string(id)
}

// Post is a single whisper as returned by the wall service.
type Post struct {
	ID          PostID `json:"id"`
	Content     string `json:"content"`
	AuthorAlias string `json:"author_alias"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at,omitempty"`
	Likes       int    `json:"likes"`
	IsFlagged   bool   `json:"is_flagged"`
}

// Alias returns the author alias, or DefaultAlias when it is empty or absent
func (p Post) Alias() string {
	if p.AuthorAlias == "" {
		return DefaultAlias
	}
	return p.AuthorAlias
}

// Page is one page of the feed as returned by the list operation.
// HasPrev and HasNext are trusted verbatim from the server.
type Page struct {
	Posts   []Post `json:"posts"`
	Total   int    `json:"total"`
	Page    int    `json:"page,omitempty"`
	Pages   int    `json:"pages"`
	HasPrev bool   `json:"has_prev"`
	HasNext bool   `json:"has_next"`
}

// CreatePostRequest is the body of the create operation
type CreatePostRequest struct {
	Content     string `json:"content"`
	AuthorAlias string `json:"author_alias"`
}

// NormalizeAlias trims the alias and substitutes DefaultAlias for a blank one
func NormalizeAlias(alias string) string {
	alias = strings.TrimSpace(alias)
	if alias == "" {
		return DefaultAlias
	}
	return alias
}
