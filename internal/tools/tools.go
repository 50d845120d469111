// Package tools implements the MCP tools the reddit-mcp server exposes.
//
// Each tool pairs an mcp.Tool definition with a handler. Handlers read and
// clamp their arguments, delegate to the Reddit client through the Fetcher
// interface, and render the result as plain text via the format package.
// Expected failures (bad parameters, missing subreddits, rate limits) come
// back as readable text payloads, never as protocol-level errors, so the
// calling assistant always receives something it can relay to a human.
package tools

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/redditmcp/reddit-mcp/pkg/types"
)

// Per-tool defaults. Limits above maxLimit are clamped to Reddit's page
// maximum rather than rejected.
const (
	DefaultListingLimit  = 10
	DefaultSearchLimit   = 25
	DefaultCommentLimit  = 100
	DefaultTrendingLimit = 10

	maxLimit = 100
)

// Fetcher is the slice of the Reddit client the tools depend on.
// *reddit.Client satisfies it; tests substitute function-field stubs.
type Fetcher interface {
	GetHot(ctx context.Context, request *types.PostsRequest) (*types.PostsResponse, error)
	GetNew(ctx context.Context, request *types.PostsRequest) (*types.PostsResponse, error)
	GetTop(ctx context.Context, request *types.TopPostsRequest) (*types.PostsResponse, error)
	GetComments(ctx context.Context, request *types.CommentsRequest) (*types.CommentsResponse, error)
	Search(ctx context.Context, request *types.SearchRequest) (*types.PostsResponse, error)
	SearchMultiple(ctx context.Context, request *types.MultiSearchRequest) ([]*types.SubredditPosts, error)
	GetUserPosts(ctx context.Context, request *types.UserContentRequest) (*types.PostsResponse, error)
	GetUserComments(ctx context.Context, request *types.UserContentRequest) (*types.UserCommentsResponse, error)
	GetTrendingSubreddits(ctx context.Context, limit int) ([]*types.SubredditData, error)
}

// Definitions returns the definition of every tool the server exposes, in
// registration order. The returned values are built without a fetcher and are
// only good for listing.
func Definitions() []mcp.Tool {
	return []mcp.Tool{
		NewHotThreadsTool(nil, nil).Definition(),
		NewNewThreadsTool(nil, nil).Definition(),
		NewPostDetailsTool(nil, nil).Definition(),
		NewSearchPostsTool(nil, nil).Definition(),
		NewSearchSubredditTool(nil, nil).Definition(),
		NewMultiSearchTool(nil, nil).Definition(),
		NewUserContentTool(nil, nil).Definition(),
		NewTrendingTool(nil, nil).Definition(),
	}
}

// clampLimit substitutes the tool default for non-positive limits and caps
// the rest at Reddit's page maximum.
func clampLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// cleanSubreddit strips the r/ prefix users habitually include. Name
// validation itself happens in the client.
func cleanSubreddit(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimPrefix(name, "/r/")
	return strings.TrimPrefix(name, "r/")
}

// cleanUsername strips the u/ prefix from a Reddit username.
func cleanUsername(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimPrefix(name, "/u/")
	return strings.TrimPrefix(name, "u/")
}

// invocation logs the start of a tool call and returns a callback that logs
// its completion. The short ID ties the two lines together when calls
// overlap.
func invocation(logger *slog.Logger, tool string, args ...any) func(failed bool) {
	if logger == nil {
		return func(bool) {}
	}
	id := uuid.NewString()[:8]
	start := time.Now()
	attrs := append([]any{"tool", tool, "invocation", id}, args...)
	logger.Info("tool invoked", attrs...)
	return func(failed bool) {
		logger.Info("tool completed",
			"tool", tool,
			"invocation", id,
			"duration", time.Since(start),
			"failed", failed)
	}
}
