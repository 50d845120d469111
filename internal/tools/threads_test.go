package tools

import (
	"context"
	"strings"
	"testing"

	pkgerrs "github.com/redditmcp/reddit-mcp/pkg/errors"
	"github.com/redditmcp/reddit-mcp/pkg/types"
)

func TestHotThreadsTool_Handle(t *testing.T) {
	var captured *types.PostsRequest
	fetcher := &stubFetcher{
		getHotFunc: func(ctx context.Context, request *types.PostsRequest) (*types.PostsResponse, error) {
			captured = request
			return &types.PostsResponse{Posts: []*types.Post{
				{
					Title:       "First",
					Score:       1,
					NumComments: 2,
					Author:      "alice",
					IsSelf:      true,
					SelfText:    "one",
					Permalink:   "/r/test/comments/a1/first/",
				},
				{
					Title:       "Second",
					Score:       3,
					NumComments: 4,
					Author:      "bob",
					IsSelf:      true,
					SelfText:    "two",
					Permalink:   "/r/test/comments/a2/second/",
				},
			}}, nil
		},
	}
	tool := NewHotThreadsTool(fetcher, nil)

	result, err := tool.Handle(context.Background(), callRequest(map[string]any{
		"subreddit": "test",
		"limit":     2,
	}))
	got := resultText(t, result, err)

	want := `Title: First
Score: 1
Comments: 2
Author: alice
Type: text
Content: one
Link: https://reddit.com/r/test/comments/a1/first/
---

Title: Second
Score: 3
Comments: 4
Author: bob
Type: text
Content: two
Link: https://reddit.com/r/test/comments/a2/second/
---`
	if got != want {
		t.Errorf("payload mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
	if n := strings.Count(got, "Title: "); n != 2 {
		t.Errorf("expected 2 post sections, found %d", n)
	}
	if strings.Index(got, "First") > strings.Index(got, "Second") {
		t.Error("posts rendered out of order")
	}

	if captured == nil {
		t.Fatal("GetHot was never called")
	}
	if captured.Subreddit != "test" {
		t.Errorf("Subreddit = %q, want %q", captured.Subreddit, "test")
	}
	if captured.Limit != 2 {
		t.Errorf("Limit = %d, want 2", captured.Limit)
	}
}

func TestHotThreadsTool_StripsSubredditPrefix(t *testing.T) {
	var captured *types.PostsRequest
	fetcher := &stubFetcher{
		getHotFunc: func(ctx context.Context, request *types.PostsRequest) (*types.PostsResponse, error) {
			captured = request
			return &types.PostsResponse{}, nil
		},
	}
	tool := NewHotThreadsTool(fetcher, nil)

	result, err := tool.Handle(context.Background(), callRequest(map[string]any{
		"subreddit": "r/golang",
	}))
	resultText(t, result, err)

	if captured == nil {
		t.Fatal("GetHot was never called")
	}
	if captured.Subreddit != "golang" {
		t.Errorf("Subreddit = %q, want %q", captured.Subreddit, "golang")
	}
}

func TestHotThreadsTool_LimitHandling(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
		want int
	}{
		{name: "default when omitted", args: map[string]any{"subreddit": "test"}, want: DefaultListingLimit},
		{name: "zero falls back to default", args: map[string]any{"subreddit": "test", "limit": 0}, want: DefaultListingLimit},
		{name: "negative falls back to default", args: map[string]any{"subreddit": "test", "limit": -1}, want: DefaultListingLimit},
		{name: "clamped to page maximum", args: map[string]any{"subreddit": "test", "limit": 500}, want: 100},
		{name: "passed through in range", args: map[string]any{"subreddit": "test", "limit": 37}, want: 37},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured *types.PostsRequest
			fetcher := &stubFetcher{
				getHotFunc: func(ctx context.Context, request *types.PostsRequest) (*types.PostsResponse, error) {
					captured = request
					return &types.PostsResponse{}, nil
				},
			}
			tool := NewHotThreadsTool(fetcher, nil)

			result, err := tool.Handle(context.Background(), callRequest(tt.args))
			resultText(t, result, err)

			if captured == nil {
				t.Fatal("GetHot was never called")
			}
			if captured.Limit != tt.want {
				t.Errorf("Limit = %d, want %d", captured.Limit, tt.want)
			}
		})
	}
}

func TestHotThreadsTool_MissingSubreddit(t *testing.T) {
	fetcher := &stubFetcher{}
	tool := NewHotThreadsTool(fetcher, nil)

	result, err := tool.Handle(context.Background(), callRequest(map[string]any{}))
	got := resultText(t, result, err)

	if !strings.HasPrefix(got, "An error occurred: ") {
		t.Errorf("expected error text payload, got %q", got)
	}
	if !strings.Contains(got, "subreddit") {
		t.Errorf("error text should name the missing field, got %q", got)
	}
	if len(fetcher.calls) != 0 {
		t.Errorf("no client call expected, got %v", fetcher.calls)
	}
}

func TestHotThreadsTool_EmptyListing(t *testing.T) {
	fetcher := &stubFetcher{}
	tool := NewHotThreadsTool(fetcher, nil)

	result, err := tool.Handle(context.Background(), callRequest(map[string]any{
		"subreddit": "test",
	}))
	got := resultText(t, result, err)

	if got != "" {
		t.Errorf("empty listing should render as empty string, got %q", got)
	}
}

func TestHotThreadsTool_FetchErrorBecomesText(t *testing.T) {
	fetcher := &stubFetcher{
		getHotFunc: func(ctx context.Context, request *types.PostsRequest) (*types.PostsResponse, error) {
			return nil, &pkgerrs.APIError{StatusCode: 404, Message: "Not Found"}
		},
	}
	tool := NewHotThreadsTool(fetcher, nil)

	result, err := tool.Handle(context.Background(), callRequest(map[string]any{
		"subreddit": "doesnotexist",
	}))
	got := resultText(t, result, err)

	want := "An error occurred: API request failed with status 404: Not Found"
	if got != want {
		t.Errorf("payload = %q, want %q", got, want)
	}
}

func TestNewThreadsTool_Handle(t *testing.T) {
	var captured *types.PostsRequest
	fetcher := &stubFetcher{
		getNewFunc: func(ctx context.Context, request *types.PostsRequest) (*types.PostsResponse, error) {
			captured = request
			return &types.PostsResponse{Posts: []*types.Post{
				{
					Title:       "Fresh",
					Score:       0,
					NumComments: 0,
					Author:      "carol",
					IsSelf:      true,
					SelfText:    "just posted",
					Permalink:   "/r/test/comments/b1/fresh/",
				},
			}}, nil
		},
	}
	tool := NewNewThreadsTool(fetcher, nil)

	result, err := tool.Handle(context.Background(), callRequest(map[string]any{
		"subreddit": "test",
	}))
	got := resultText(t, result, err)

	if !strings.Contains(got, "Title: Fresh") {
		t.Errorf("expected rendered post, got %q", got)
	}
	if fetcher.called("GetHot") {
		t.Error("new listing must not use the hot endpoint")
	}
	if !fetcher.called("GetNew") {
		t.Error("GetNew was never called")
	}
	if captured.Limit != DefaultListingLimit {
		t.Errorf("Limit = %d, want %d", captured.Limit, DefaultListingLimit)
	}
}
