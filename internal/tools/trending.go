package tools

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/redditmcp/reddit-mcp/internal/format"
)

// TrendingTool serves get_trending_subreddits: the names of the subreddits
// Reddit currently lists as popular.
type TrendingTool struct {
	fetcher Fetcher
	logger  *slog.Logger
}

func NewTrendingTool(fetcher Fetcher, logger *slog.Logger) *TrendingTool {
	return &TrendingTool{fetcher: fetcher, logger: logger}
}

func (t *TrendingTool) Definition() mcp.Tool {
	return mcp.NewTool("get_trending_subreddits",
		mcp.WithDescription("Get currently trending subreddits."),
		mcp.WithNumber("limit",
			mcp.DefaultNumber(DefaultTrendingLimit),
			mcp.Description("Number of trending subreddits to fetch (default: 10, max: 100)."),
		),
	)
}

func (t *TrendingTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := clampLimit(req.GetInt("limit", DefaultTrendingLimit), DefaultTrendingLimit)

	done := invocation(t.logger, "get_trending_subreddits", "limit", limit)

	subreddits, err := t.fetcher.GetTrendingSubreddits(ctx, limit)
	if err != nil {
		done(true)
		return mcp.NewToolResultText(format.Error(err)), nil
	}

	done(false)
	return mcp.NewToolResultText(format.Trending(subreddits)), nil
}
