package tools

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/redditmcp/reddit-mcp/internal/format"
	pkgerrs "github.com/redditmcp/reddit-mcp/pkg/errors"
	"github.com/redditmcp/reddit-mcp/pkg/types"
)

// HotThreadsTool serves fetch_reddit_hot_threads: a subreddit's hot listing
// rendered as readable text blocks.
type HotThreadsTool struct {
	fetcher Fetcher
	logger  *slog.Logger
}

func NewHotThreadsTool(fetcher Fetcher, logger *slog.Logger) *HotThreadsTool {
	return &HotThreadsTool{fetcher: fetcher, logger: logger}
}

func (t *HotThreadsTool) Definition() mcp.Tool {
	return mcp.NewTool("fetch_reddit_hot_threads",
		mcp.WithDescription("Fetch hot threads from a subreddit."),
		mcp.WithString("subreddit",
			mcp.Required(),
			mcp.Description("Name of the subreddit, without the r/ prefix."),
		),
		mcp.WithNumber("limit",
			mcp.DefaultNumber(DefaultListingLimit),
			mcp.Description("Number of posts to fetch (default: 10, max: 100)."),
		),
	)
}

func (t *HotThreadsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return listThreads(ctx, t.logger, "fetch_reddit_hot_threads", t.fetcher.GetHot, req)
}

// NewThreadsTool serves fetch_reddit_new_threads: the newest submissions in a
// subreddit, same shape as the hot listing.
type NewThreadsTool struct {
	fetcher Fetcher
	logger  *slog.Logger
}

func NewNewThreadsTool(fetcher Fetcher, logger *slog.Logger) *NewThreadsTool {
	return &NewThreadsTool{fetcher: fetcher, logger: logger}
}

func (t *NewThreadsTool) Definition() mcp.Tool {
	return mcp.NewTool("fetch_reddit_new_threads",
		mcp.WithDescription("Fetch the newest threads from a subreddit."),
		mcp.WithString("subreddit",
			mcp.Required(),
			mcp.Description("Name of the subreddit, without the r/ prefix."),
		),
		mcp.WithNumber("limit",
			mcp.DefaultNumber(DefaultListingLimit),
			mcp.Description("Number of posts to fetch (default: 10, max: 100)."),
		),
	)
}

func (t *NewThreadsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return listThreads(ctx, t.logger, "fetch_reddit_new_threads", t.fetcher.GetNew, req)
}

// listThreads is the shared body of the two listing tools. The list func is
// the client method that selects the sort.
func listThreads(ctx context.Context, logger *slog.Logger, tool string, list func(context.Context, *types.PostsRequest) (*types.PostsResponse, error), req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	subreddit := cleanSubreddit(req.GetString("subreddit", ""))
	limit := clampLimit(req.GetInt("limit", DefaultListingLimit), DefaultListingLimit)

	done := invocation(logger, tool, "subreddit", subreddit, "limit", limit)

	if subreddit == "" {
		done(true)
		return mcp.NewToolResultText(format.Error(&pkgerrs.ConfigError{
			Field:   "subreddit",
			Message: "a subreddit name is required",
		})), nil
	}

	resp, err := list(ctx, &types.PostsRequest{
		Subreddit:  subreddit,
		Pagination: types.Pagination{Limit: limit},
	})
	if err != nil {
		done(true)
		return mcp.NewToolResultText(format.Error(err)), nil
	}

	done(false)
	return mcp.NewToolResultText(format.Posts(resp.Posts)), nil
}
