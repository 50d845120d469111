package tools

import (
	"context"
	"slices"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/redditmcp/reddit-mcp/pkg/types"
)

// stubFetcher implements the Fetcher interface with function fields so each
// test wires only the calls it expects. Every method records its name so
// tests can assert which client operations a tool reached for.
type stubFetcher struct {
	getHotFunc          func(ctx context.Context, request *types.PostsRequest) (*types.PostsResponse, error)
	getNewFunc          func(ctx context.Context, request *types.PostsRequest) (*types.PostsResponse, error)
	getTopFunc          func(ctx context.Context, request *types.TopPostsRequest) (*types.PostsResponse, error)
	getCommentsFunc     func(ctx context.Context, request *types.CommentsRequest) (*types.CommentsResponse, error)
	searchFunc          func(ctx context.Context, request *types.SearchRequest) (*types.PostsResponse, error)
	searchMultipleFunc  func(ctx context.Context, request *types.MultiSearchRequest) ([]*types.SubredditPosts, error)
	getUserPostsFunc    func(ctx context.Context, request *types.UserContentRequest) (*types.PostsResponse, error)
	getUserCommentsFunc func(ctx context.Context, request *types.UserContentRequest) (*types.UserCommentsResponse, error)
	getTrendingFunc     func(ctx context.Context, limit int) ([]*types.SubredditData, error)

	calls []string
}

func (s *stubFetcher) GetHot(ctx context.Context, request *types.PostsRequest) (*types.PostsResponse, error) {
	s.calls = append(s.calls, "GetHot")
	if s.getHotFunc != nil {
		return s.getHotFunc(ctx, request)
	}
	return &types.PostsResponse{}, nil
}

func (s *stubFetcher) GetNew(ctx context.Context, request *types.PostsRequest) (*types.PostsResponse, error) {
	s.calls = append(s.calls, "GetNew")
	if s.getNewFunc != nil {
		return s.getNewFunc(ctx, request)
	}
	return &types.PostsResponse{}, nil
}

func (s *stubFetcher) GetTop(ctx context.Context, request *types.TopPostsRequest) (*types.PostsResponse, error) {
	s.calls = append(s.calls, "GetTop")
	if s.getTopFunc != nil {
		return s.getTopFunc(ctx, request)
	}
	return &types.PostsResponse{}, nil
}

func (s *stubFetcher) GetComments(ctx context.Context, request *types.CommentsRequest) (*types.CommentsResponse, error) {
	s.calls = append(s.calls, "GetComments")
	if s.getCommentsFunc != nil {
		return s.getCommentsFunc(ctx, request)
	}
	return &types.CommentsResponse{}, nil
}

func (s *stubFetcher) Search(ctx context.Context, request *types.SearchRequest) (*types.PostsResponse, error) {
	s.calls = append(s.calls, "Search")
	if s.searchFunc != nil {
		return s.searchFunc(ctx, request)
	}
	return &types.PostsResponse{}, nil
}

func (s *stubFetcher) SearchMultiple(ctx context.Context, request *types.MultiSearchRequest) ([]*types.SubredditPosts, error) {
	s.calls = append(s.calls, "SearchMultiple")
	if s.searchMultipleFunc != nil {
		return s.searchMultipleFunc(ctx, request)
	}
	return nil, nil
}

func (s *stubFetcher) GetUserPosts(ctx context.Context, request *types.UserContentRequest) (*types.PostsResponse, error) {
	s.calls = append(s.calls, "GetUserPosts")
	if s.getUserPostsFunc != nil {
		return s.getUserPostsFunc(ctx, request)
	}
	return &types.PostsResponse{}, nil
}

func (s *stubFetcher) GetUserComments(ctx context.Context, request *types.UserContentRequest) (*types.UserCommentsResponse, error) {
	s.calls = append(s.calls, "GetUserComments")
	if s.getUserCommentsFunc != nil {
		return s.getUserCommentsFunc(ctx, request)
	}
	return &types.UserCommentsResponse{}, nil
}

func (s *stubFetcher) GetTrendingSubreddits(ctx context.Context, limit int) ([]*types.SubredditData, error) {
	s.calls = append(s.calls, "GetTrendingSubreddits")
	if s.getTrendingFunc != nil {
		return s.getTrendingFunc(ctx, limit)
	}
	return nil, nil
}

func (s *stubFetcher) called(name string) bool {
	return slices.Contains(s.calls, name)
}

// callRequest builds a CallToolRequest the way the MCP server hands it to a
// handler, with arguments already decoded into a map.
func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

// resultText unwraps the single text payload of a tool result, failing the
// test on a protocol-level error. Expected failures must arrive as text.
func resultText(t *testing.T, result *mcp.CallToolResult, err error) string {
	t.Helper()
	if err != nil {
		t.Fatalf("Handle returned a protocol error: %v", err)
	}
	if result == nil {
		t.Fatal("Handle returned a nil result")
	}
	if len(result.Content) != 1 {
		t.Fatalf("expected a single content block, got %d", len(result.Content))
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	return text.Text
}

func TestDefinitions(t *testing.T) {
	fetcher := &stubFetcher{}
	tests := []struct {
		def          mcp.Tool
		wantName     string
		wantRequired []string
	}{
		{def: NewHotThreadsTool(fetcher, nil).Definition(), wantName: "fetch_reddit_hot_threads", wantRequired: []string{"subreddit"}},
		{def: NewNewThreadsTool(fetcher, nil).Definition(), wantName: "fetch_reddit_new_threads", wantRequired: []string{"subreddit"}},
		{def: NewPostDetailsTool(fetcher, nil).Definition(), wantName: "get_post_details", wantRequired: []string{"post_id"}},
		{def: NewSearchPostsTool(fetcher, nil).Definition(), wantName: "search_posts", wantRequired: []string{"query"}},
		{def: NewSearchSubredditTool(fetcher, nil).Definition(), wantName: "search_subreddit", wantRequired: []string{"subreddit"}},
		{def: NewMultiSearchTool(fetcher, nil).Definition(), wantName: "search_multiple_subreddits", wantRequired: []string{"subreddits", "query"}},
		{def: NewUserContentTool(fetcher, nil).Definition(), wantName: "get_user_content", wantRequired: []string{"username"}},
		{def: NewTrendingTool(fetcher, nil).Definition(), wantName: "get_trending_subreddits", wantRequired: nil},
	}

	for _, tt := range tests {
		t.Run(tt.wantName, func(t *testing.T) {
			if tt.def.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", tt.def.Name, tt.wantName)
			}
			if tt.def.Description == "" {
				t.Error("tool has no description")
			}
			if !slices.Equal(tt.def.InputSchema.Required, tt.wantRequired) {
				t.Errorf("Required = %v, want %v", tt.def.InputSchema.Required, tt.wantRequired)
			}
			for _, param := range tt.wantRequired {
				if _, ok := tt.def.InputSchema.Properties[param]; !ok {
					t.Errorf("required parameter %q missing from schema properties", param)
				}
			}
		})
	}
}

func TestDefinitions_Catalog(t *testing.T) {
	want := []string{
		"fetch_reddit_hot_threads",
		"fetch_reddit_new_threads",
		"get_post_details",
		"search_posts",
		"search_subreddit",
		"search_multiple_subreddits",
		"get_user_content",
		"get_trending_subreddits",
	}

	defs := Definitions()
	if len(defs) != len(want) {
		t.Fatalf("expected %d definitions, got %d", len(want), len(defs))
	}
	for i, def := range defs {
		if def.Name != want[i] {
			t.Errorf("definition %d = %q, want %q", i, def.Name, want[i])
		}
	}
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		fallback int
		want     int
	}{
		{name: "zero uses fallback", limit: 0, fallback: 10, want: 10},
		{name: "negative uses fallback", limit: -5, fallback: 25, want: 25},
		{name: "within range unchanged", limit: 7, fallback: 10, want: 7},
		{name: "at cap unchanged", limit: 100, fallback: 10, want: 100},
		{name: "above cap clamped", limit: 250, fallback: 10, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := clampLimit(tt.limit, tt.fallback); got != tt.want {
				t.Errorf("clampLimit(%d, %d) = %d, want %d", tt.limit, tt.fallback, got, tt.want)
			}
		})
	}
}

func TestCleanSubreddit(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "golang", want: "golang"},
		{input: "r/golang", want: "golang"},
		{input: "/r/golang", want: "golang"},
		{input: "  r/golang  ", want: "golang"},
		{input: "", want: ""},
		{input: "r/", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := cleanSubreddit(tt.input); got != tt.want {
				t.Errorf("cleanSubreddit(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanUsername(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "spez", want: "spez"},
		{input: "u/spez", want: "spez"},
		{input: "/u/spez", want: "spez"},
		{input: " u/spez ", want: "spez"},
		{input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := cleanUsername(tt.input); got != tt.want {
				t.Errorf("cleanUsername(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// Repeated calls against the same fixed client state must yield the same
// bytes. The gallery post matters here: its image URLs are looked up in a
// map, and the output order must come from the gallery's item list, not
// map iteration.
func TestHandlersAreDeterministic(t *testing.T) {
	galleryPost := &types.Post{
		ThingData: types.ThingData{ID: "g1", Name: "t3_g1"},
		Title:     "Trip photos",
		Author:    "wanderer",
		Score:     88,
		IsGallery: true,
		Permalink: "/r/pics/comments/g1/trip_photos/",
		GalleryData: &types.GalleryData{Items: []types.GalleryItem{
			{MediaID: "m3"},
			{MediaID: "m1"},
			{MediaID: "m2"},
		}},
		MediaMetadata: map[string]*types.MediaMetadata{
			"m1": {Source: &types.MediaSource{URL: "https://i.redd.it/m1.jpg"}},
			"m2": {Source: &types.MediaSource{URL: "https://i.redd.it/m2.jpg"}},
			"m3": {Source: &types.MediaSource{URL: "https://i.redd.it/m3.jpg"}},
		},
	}
	fetcher := &stubFetcher{
		getHotFunc: func(ctx context.Context, request *types.PostsRequest) (*types.PostsResponse, error) {
			return &types.PostsResponse{Posts: []*types.Post{galleryPost}}, nil
		},
		getCommentsFunc: func(ctx context.Context, request *types.CommentsRequest) (*types.CommentsResponse, error) {
			return &types.CommentsResponse{
				Post: galleryPost,
				Comments: []*types.Comment{
					{Author: "alice", Body: "first", Score: 3, Replies: []*types.Comment{
						{Author: "bob", Body: "reply", Score: 1},
					}},
					{Author: "carol", Body: "second", Score: 2},
				},
			}, nil
		},
	}

	tests := []struct {
		name   string
		handle func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
		args   map[string]any
	}{
		{
			name:   "fetch_reddit_hot_threads",
			handle: NewHotThreadsTool(fetcher, nil).Handle,
			args:   map[string]any{"subreddit": "pics"},
		},
		{
			name:   "get_post_details",
			handle: NewPostDetailsTool(fetcher, nil).Handle,
			args:   map[string]any{"post_id": "g1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.handle(context.Background(), callRequest(tt.args))
			first := resultText(t, result, err)
			for i := 0; i < 5; i++ {
				result, err = tt.handle(context.Background(), callRequest(tt.args))
				if got := resultText(t, result, err); got != first {
					t.Fatalf("call %d produced different output:\nfirst:\n%s\n\ngot:\n%s", i+2, first, got)
				}
			}
			if !strings.Contains(first, "https://i.redd.it/m3.jpg, https://i.redd.it/m1.jpg, https://i.redd.it/m2.jpg") {
				t.Errorf("gallery URLs not in item-list order:\n%s", first)
			}
		})
	}
}
