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

// SearchPostsTool serves search_posts: a site-wide post search, optionally
// restricted to one subreddit.
type SearchPostsTool struct {
	fetcher Fetcher
	logger  *slog.Logger
}

func NewSearchPostsTool(fetcher Fetcher, logger *slog.Logger) *SearchPostsTool {
	return &SearchPostsTool{fetcher: fetcher, logger: logger}
}

func (t *SearchPostsTool) Definition() mcp.Tool {
	return mcp.NewTool("search_posts",
		mcp.WithDescription("Search Reddit posts."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The search query string."),
		),
		mcp.WithString("subreddit",
			mcp.Description("Optional name of a subreddit to search within."),
		),
		mcp.WithString("sort",
			mcp.DefaultString(string(types.SearchSortRelevance)),
			mcp.Description("How to sort the results."),
			mcp.Enum("relevance", "hot", "top", "new"),
		),
		mcp.WithString("time_filter",
			mcp.DefaultString(string(types.TimeFilterAll)),
			mcp.Description("Restrict results to a time window."),
			mcp.Enum("hour", "day", "week", "month", "year", "all"),
		),
		mcp.WithNumber("limit",
			mcp.DefaultNumber(DefaultSearchLimit),
			mcp.Description("Number of posts to fetch (default: 25, max: 100)."),
		),
	)
}

func (t *SearchPostsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := strings.TrimSpace(req.GetString("query", ""))
	subreddit := cleanSubreddit(req.GetString("subreddit", ""))
	sort := types.SearchSort(req.GetString("sort", string(types.SearchSortRelevance)))
	timeFilter := types.TimeFilter(req.GetString("time_filter", string(types.TimeFilterAll)))
	limit := clampLimit(req.GetInt("limit", DefaultSearchLimit), DefaultSearchLimit)

	done := invocation(t.logger, "search_posts",
		"query", query, "subreddit", subreddit, "sort", sort, "time_filter", timeFilter, "limit", limit)

	resp, err := t.fetcher.Search(ctx, &types.SearchRequest{
		Query:      query,
		Subreddit:  subreddit,
		Sort:       sort,
		Time:       timeFilter,
		Pagination: types.Pagination{Limit: limit},
	})
	if err != nil {
		done(true)
		return mcp.NewToolResultText(format.Error(err)), nil
	}

	done(false)
	if len(resp.Posts) == 0 {
		return mcp.NewToolResultText("No posts found matching your criteria."), nil
	}
	return mcp.NewToolResultText(format.Posts(resp.Posts)), nil
}

// SearchSubredditTool serves search_subreddit: a search inside one subreddit.
// When the query is empty the subreddit is listed by sort and time window
// instead of searched.
type SearchSubredditTool struct {
	fetcher Fetcher
	logger  *slog.Logger
}

func NewSearchSubredditTool(fetcher Fetcher, logger *slog.Logger) *SearchSubredditTool {
	return &SearchSubredditTool{fetcher: fetcher, logger: logger}
}

func (t *SearchSubredditTool) Definition() mcp.Tool {
	return mcp.NewTool("search_subreddit",
		mcp.WithDescription("Search within a specific subreddit."),
		mcp.WithString("subreddit",
			mcp.Required(),
			mcp.Description("The name of the subreddit to search within."),
		),
		mcp.WithString("query",
			mcp.Description("The search query string. When omitted, the subreddit is listed by sort and time filter instead."),
		),
		mcp.WithString("sort",
			mcp.DefaultString(string(types.SearchSortHot)),
			mcp.Description("How to sort the results."),
			mcp.Enum("hot", "top", "new", "relevance"),
		),
		mcp.WithString("time_filter",
			mcp.DefaultString(string(types.TimeFilterWeek)),
			mcp.Description("Restrict results to a time window."),
			mcp.Enum("hour", "day", "week", "month", "year", "all"),
		),
		mcp.WithNumber("limit",
			mcp.DefaultNumber(DefaultSearchLimit),
			mcp.Description("Number of posts to fetch (default: 25, max: 100)."),
		),
	)
}

func (t *SearchSubredditTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	subreddit := cleanSubreddit(req.GetString("subreddit", ""))
	query := strings.TrimSpace(req.GetString("query", ""))
	sort := types.SearchSort(req.GetString("sort", string(types.SearchSortHot)))
	timeFilter := types.TimeFilter(req.GetString("time_filter", string(types.TimeFilterWeek)))
	limit := clampLimit(req.GetInt("limit", DefaultSearchLimit), DefaultSearchLimit)

	done := invocation(t.logger, "search_subreddit",
		"subreddit", subreddit, "query", query, "sort", sort, "time_filter", timeFilter, "limit", limit)

	if subreddit == "" {
		done(true)
		return mcp.NewToolResultText(format.Error(&pkgerrs.ConfigError{
			Field:   "subreddit",
			Message: "a subreddit name is required",
		})), nil
	}

	var posts []*types.Post
	var err error
	if query == "" {
		posts, err = t.listBySort(ctx, subreddit, sort, timeFilter, limit)
	} else {
		var resp *types.PostsResponse
		resp, err = t.fetcher.Search(ctx, &types.SearchRequest{
			Query:      query,
			Subreddit:  subreddit,
			Sort:       sort,
			Time:       timeFilter,
			Pagination: types.Pagination{Limit: limit},
		})
		if resp != nil {
			posts = resp.Posts
		}
	}
	if err != nil {
		done(true)
		return mcp.NewToolResultText(format.Error(err)), nil
	}

	done(false)
	if len(posts) == 0 {
		return mcp.NewToolResultText("No posts found in r/" + subreddit + " matching your criteria."), nil
	}
	return mcp.NewToolResultText(format.Posts(posts)), nil
}

// listBySort maps the search sorts onto plain listings for query-less calls.
// Relevance means nothing without a query, so it lists hot.
func (t *SearchSubredditTool) listBySort(ctx context.Context, subreddit string, sort types.SearchSort, timeFilter types.TimeFilter, limit int) ([]*types.Post, error) {
	var resp *types.PostsResponse
	var err error
	switch sort {
	case types.SearchSortHot, types.SearchSortRelevance:
		resp, err = t.fetcher.GetHot(ctx, &types.PostsRequest{
			Subreddit:  subreddit,
			Pagination: types.Pagination{Limit: limit},
		})
	case types.SearchSortNew:
		resp, err = t.fetcher.GetNew(ctx, &types.PostsRequest{
			Subreddit:  subreddit,
			Pagination: types.Pagination{Limit: limit},
		})
	case types.SearchSortTop:
		resp, err = t.fetcher.GetTop(ctx, &types.TopPostsRequest{
			Subreddit:  subreddit,
			Time:       timeFilter,
			Pagination: types.Pagination{Limit: limit},
		})
	default:
		return nil, &pkgerrs.ConfigError{
			Field:   "sort",
			Message: "invalid search sort: " + string(sort),
		}
	}
	if err != nil {
		return nil, err
	}
	return resp.Posts, nil
}

// MultiSearchTool serves search_multiple_subreddits: the same query fanned
// out across several subreddits, results grouped per subreddit. One
// subreddit failing leaves the others' results intact.
type MultiSearchTool struct {
	fetcher Fetcher
	logger  *slog.Logger
}

func NewMultiSearchTool(fetcher Fetcher, logger *slog.Logger) *MultiSearchTool {
	return &MultiSearchTool{fetcher: fetcher, logger: logger}
}

func (t *MultiSearchTool) Definition() mcp.Tool {
	return mcp.NewTool("search_multiple_subreddits",
		mcp.WithDescription("Search for posts across multiple subreddits at once."),
		mcp.WithArray("subreddits",
			mcp.Required(),
			mcp.Description("The subreddit names to search within."),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The search query string."),
		),
		mcp.WithString("sort",
			mcp.DefaultString(string(types.SearchSortRelevance)),
			mcp.Description("How to sort the results."),
			mcp.Enum("relevance", "hot", "top", "new"),
		),
		mcp.WithString("time_filter",
			mcp.DefaultString(string(types.TimeFilterAll)),
			mcp.Description("Restrict results to a time window."),
			mcp.Enum("hour", "day", "week", "month", "year", "all"),
		),
		mcp.WithNumber("limit",
			mcp.DefaultNumber(DefaultSearchLimit),
			mcp.Description("Number of posts to fetch per subreddit (default: 25, max: 100)."),
		),
	)
}

func (t *MultiSearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names := req.GetStringSlice("subreddits", nil)
	subreddits := make([]string, 0, len(names))
	for _, name := range names {
		if cleaned := cleanSubreddit(name); cleaned != "" {
			subreddits = append(subreddits, cleaned)
		}
	}
	query := strings.TrimSpace(req.GetString("query", ""))
	sort := types.SearchSort(req.GetString("sort", string(types.SearchSortRelevance)))
	timeFilter := types.TimeFilter(req.GetString("time_filter", string(types.TimeFilterAll)))
	limit := clampLimit(req.GetInt("limit", DefaultSearchLimit), DefaultSearchLimit)

	done := invocation(t.logger, "search_multiple_subreddits",
		"subreddits", subreddits, "query", query, "sort", sort, "time_filter", timeFilter, "limit", limit)

	if len(subreddits) == 0 {
		done(true)
		return mcp.NewToolResultText(format.Error(&pkgerrs.ConfigError{
			Field:   "subreddits",
			Message: "at least one subreddit name is required",
		})), nil
	}

	results, err := t.fetcher.SearchMultiple(ctx, &types.MultiSearchRequest{
		Subreddits: subreddits,
		Query:      query,
		Sort:       sort,
		Time:       timeFilter,
		Limit:      limit,
	})
	if err != nil {
		done(true)
		return mcp.NewToolResultText(format.Error(err)), nil
	}

	done(false)
	return mcp.NewToolResultText(format.MultiSearch(results)), nil
}
