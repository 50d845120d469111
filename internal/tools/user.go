package tools

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/redditmcp/reddit-mcp/internal/format"
	pkgerrs "github.com/redditmcp/reddit-mcp/pkg/errors"
	"github.com/redditmcp/reddit-mcp/pkg/types"
)

// UserContentTool serves get_user_content: one side of a user's profile,
// either submitted posts or authored comments.
type UserContentTool struct {
	fetcher Fetcher
	logger  *slog.Logger
}

func NewUserContentTool(fetcher Fetcher, logger *slog.Logger) *UserContentTool {
	return &UserContentTool{fetcher: fetcher, logger: logger}
}

func (t *UserContentTool) Definition() mcp.Tool {
	return mcp.NewTool("get_user_content",
		mcp.WithDescription("Get a Reddit user's posts or comments."),
		mcp.WithString("username",
			mcp.Required(),
			mcp.Description("The Reddit username, without the u/ prefix."),
		),
		mcp.WithString("content_type",
			mcp.DefaultString(string(types.UserContentPosts)),
			mcp.Description("Type of content to fetch (\"posts\" or \"comments\")."),
			mcp.Enum("posts", "comments"),
		),
		mcp.WithNumber("limit",
			mcp.DefaultNumber(DefaultSearchLimit),
			mcp.Description("Number of items to fetch (default: 25, max: 100)."),
		),
	)
}

func (t *UserContentTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	username := cleanUsername(req.GetString("username", ""))
	contentType := types.UserContentKind(req.GetString("content_type", string(types.UserContentPosts)))
	limit := clampLimit(req.GetInt("limit", DefaultSearchLimit), DefaultSearchLimit)

	done := invocation(t.logger, "get_user_content",
		"username", username, "content_type", contentType, "limit", limit)

	if username == "" {
		done(true)
		return mcp.NewToolResultText(format.Error(&pkgerrs.ConfigError{
			Field:   "username",
			Message: "a username is required",
		})), nil
	}

	request := &types.UserContentRequest{
		Username:   username,
		Pagination: types.Pagination{Limit: limit},
	}

	switch contentType {
	case types.UserContentPosts:
		resp, err := t.fetcher.GetUserPosts(ctx, request)
		if err != nil {
			done(true)
			return mcp.NewToolResultText(format.Error(err)), nil
		}
		done(false)
		return mcp.NewToolResultText(format.UserPosts(username, resp.Posts)), nil

	case types.UserContentComments:
		resp, err := t.fetcher.GetUserComments(ctx, request)
		if err != nil {
			done(true)
			return mcp.NewToolResultText(format.Error(err)), nil
		}
		done(false)
		return mcp.NewToolResultText(format.UserComments(username, resp.Comments)), nil

	default:
		done(true)
		return mcp.NewToolResultText("Invalid content_type. Must be 'posts' or 'comments'."), nil
	}
}
