package wallapi

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WhisperWall/internal/core/posts"
)

// TestE2E_LiveBackend runs the full create, list, like and flag cycle
// against a real backend.
//
// Run with:
//
//	WHISPERWALL_E2E_URL=http://localhost:8000/api/v1 go test ./internal/wallapi -run TestE2E -v
func TestE2E_LiveBackend(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}
	baseURL := os.Getenv("WHISPERWALL_E2E_URL")
	if baseURL == "" {
		t.Skip("WHISPERWALL_E2E_URL not set")
	}
	if !isBackendAvailable(baseURL) {
		t.Skipf("backend not available at %s", baseURL)
	}

	client, err := NewClient(baseURL)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	content := "e2e whisper " + time.Now().UTC().Format(time.RFC3339Nano)
	created, err := client.CreatePost(ctx, content, "")
	require.NoError(t, err)
	assert.Equal(t, content, created.Content)
	assert.Equal(t, posts.DefaultAlias, created.Alias())

	page, err := client.ListPosts(ctx, 1, 20)
	require.NoError(t, err)
	require.NotEmpty(t, page.Posts)
	assert.Equal(t, created.ID, page.Posts[0].ID, "newest first")

	liked, err := client.LikePost(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Likes+1, liked.Likes)

	flagged, err := client.FlagPost(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, flagged.IsFlagged)

	_, err = client.CreatePost(ctx, "   ", "")
	require.Error(t, err)
	assert.False(t, posts.IsNetworkError(err))
}

func isBackendAvailable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/posts?page=1&limit=1")
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode == http.StatusOK
}
