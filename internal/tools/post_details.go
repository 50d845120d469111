package tools

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/redditmcp/reddit-mcp/internal/format"
	pkgerrs "github.com/redditmcp/reddit-mcp/pkg/errors"
	"github.com/redditmcp/reddit-mcp/pkg/types"
)

// PostDetailsTool serves get_post_details: one post's content followed by its
// comment tree, indented by depth.
type PostDetailsTool struct {
	fetcher Fetcher
	logger  *slog.Logger
}

func NewPostDetailsTool(fetcher Fetcher, logger *slog.Logger) *PostDetailsTool {
	return &PostDetailsTool{fetcher: fetcher, logger: logger}
}

func (t *PostDetailsTool) Definition() mcp.Tool {
	return mcp.NewTool("get_post_details",
		mcp.WithDescription("Get post details with full comments."),
		mcp.WithString("post_id",
			mcp.Required(),
			mcp.Description("Reddit post ID, with or without the t3_ prefix."),
		),
		mcp.WithNumber("comment_limit",
			mcp.DefaultNumber(DefaultCommentLimit),
			mcp.Description("Number of top-level comments to fetch (default: 100)."),
		),
		mcp.WithString("comment_sort",
			mcp.DefaultString(string(types.CommentSortBest)),
			mcp.Description("How to sort comments."),
			mcp.Enum("best", "top", "new", "controversial", "old", "qa", "random"),
		),
	)
}

func (t *PostDetailsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	postID := strings.TrimSpace(req.GetString("post_id", ""))
	limit := clampLimit(req.GetInt("comment_limit", DefaultCommentLimit), DefaultCommentLimit)
	sort := types.CommentSort(req.GetString("comment_sort", string(types.CommentSortBest)))

	done := invocation(t.logger, "get_post_details", "post_id", postID, "comment_limit", limit, "comment_sort", sort)

	if postID == "" {
		done(true)
		return mcp.NewToolResultText(format.Error(&pkgerrs.ConfigError{
			Field:   "post_id",
			Message: "a post ID is required",
		})), nil
	}

	resp, err := t.fetcher.GetComments(ctx, &types.CommentsRequest{
		PostID: postID,
		Sort:   sort,
		Limit:  limit,
	})
	if err != nil {
		done(true)
		return mcp.NewToolResultText(format.Error(err)), nil
	}

	done(false)
	return mcp.NewToolResultText(format.PostDetails(resp, format.DefaultMaxDepth)), nil
}
