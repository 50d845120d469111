package format

import (
	"errors"
	"strings"
	"testing"

	"github.com/redditmcp/reddit-mcp/pkg/types"
)

func TestPosts(t *testing.T) {
	posts := []*types.Post{
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
	}

	got := Posts(posts)
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
		t.Errorf("Posts mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}

	if again := Posts(posts); again != got {
		t.Error("identical input must render identically")
	}
}

func TestPosts_Empty(t *testing.T) {
	if got := Posts(nil); got != "" {
		t.Errorf("empty listing = %q, want empty string", got)
	}
}

func TestPosts_KindDispatch(t *testing.T) {
	tests := []struct {
		name        string
		post        *types.Post
		wantType    string
		wantContent string
	}{
		{
			name:        "text post renders selftext",
			post:        &types.Post{Title: "T", IsSelf: true, SelfText: "the body"},
			wantType:    "Type: text",
			wantContent: "Content: the body",
		},
		{
			name:        "link post renders target URL",
			post:        &types.Post{Title: "L", URL: "https://example.com/article"},
			wantType:    "Type: link",
			wantContent: "Content: https://example.com/article",
		},
		{
			name: "gallery post renders image URLs in order",
			post: &types.Post{
				Title:     "G",
				IsGallery: true,
				URL:       "https://reddit.com/gallery/x",
				GalleryData: &types.GalleryData{Items: []types.GalleryItem{
					{MediaID: "m2"},
					{MediaID: "m1"},
				}},
				MediaMetadata: map[string]*types.MediaMetadata{
					"m1": {Source: &types.MediaSource{URL: "https://i.redd.it/1.jpg"}},
					"m2": {Source: &types.MediaSource{URL: "https://i.redd.it/2.jpg"}},
				},
			},
			wantType:    "Type: gallery",
			wantContent: "Content: https://i.redd.it/2.jpg, https://i.redd.it/1.jpg",
		},
		{
			name:        "unclassifiable post falls back to placeholder",
			post:        &types.Post{Title: "U"},
			wantType:    "Type: unknown",
			wantContent: "Content: [no content]",
		},
		{
			name:        "deleted author renders placeholder",
			post:        &types.Post{Title: "D", IsSelf: true, SelfText: "x"},
			wantType:    "Author: [deleted]",
			wantContent: "Content: x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Posts([]*types.Post{tt.post})
			if !strings.Contains(got, tt.wantType) {
				t.Errorf("missing %q in:\n%s", tt.wantType, got)
			}
			if !strings.Contains(got, tt.wantContent) {
				t.Errorf("missing %q in:\n%s", tt.wantContent, got)
			}
		})
	}
}

func TestGalleryURLs_Fallbacks(t *testing.T) {
	tests := []struct {
		name string
		post *types.Post
		want string
	}{
		{
			name: "no gallery data falls back to post URL",
			post: &types.Post{IsGallery: true, URL: "https://reddit.com/gallery/x"},
			want: "Content: https://reddit.com/gallery/x",
		},
		{
			name: "animated items prefer gif then mp4",
			post: &types.Post{
				IsGallery: true,
				URL:       "https://reddit.com/gallery/y",
				GalleryData: &types.GalleryData{Items: []types.GalleryItem{
					{MediaID: "g"},
					{MediaID: "v"},
				}},
				MediaMetadata: map[string]*types.MediaMetadata{
					"g": {Source: &types.MediaSource{GIF: "https://i.redd.it/a.gif"}},
					"v": {Source: &types.MediaSource{MP4: "https://i.redd.it/b.mp4"}},
				},
			},
			want: "Content: https://i.redd.it/a.gif, https://i.redd.it/b.mp4",
		},
		{
			name: "unprocessed media falls back to post URL",
			post: &types.Post{
				IsGallery: true,
				URL:       "https://reddit.com/gallery/z",
				GalleryData: &types.GalleryData{Items: []types.GalleryItem{
					{MediaID: "pending"},
				}},
				MediaMetadata: map[string]*types.MediaMetadata{
					"pending": {Status: "unprocessed"},
				},
			},
			want: "Content: https://reddit.com/gallery/z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Posts([]*types.Post{tt.post})
			if !strings.Contains(got, tt.want) {
				t.Errorf("missing %q in:\n%s", tt.want, got)
			}
		})
	}
}

func TestPostDetails(t *testing.T) {
	resp := &types.CommentsResponse{
		Post: &types.Post{
			Title:       "Ask",
			Score:       10,
			NumComments: 2,
			Author:      "alice",
			IsSelf:      true,
			SelfText:    "What?",
			Permalink:   "/r/test/comments/abc/ask/",
		},
		Comments: []*types.Comment{
			{
				Author: "bob",
				Body:   "Answer.",
				Score:  5,
				Replies: []*types.Comment{
					{Author: "carol", Body: "Thanks.", Score: 1},
				},
			},
		},
	}

	got := PostDetails(resp, 0)
	want := `Title: Ask
Score: 10
Author: alice
Type: text
Content: What?
Link: https://reddit.com/r/test/comments/abc/ask/

Comments:

* Author: bob
  Score: 5
  Answer.

-- * Author: carol
--   Score: 1
--   Thanks.
`
	if got != want {
		t.Errorf("PostDetails mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
	if strings.Contains(got, "Comments: 2") {
		t.Error("post header must not carry the comment count line")
	}
}

func TestPostDetails_NoComments(t *testing.T) {
	resp := &types.CommentsResponse{
		Post: &types.Post{Title: "Quiet", IsSelf: true, SelfText: "x"},
	}

	got := PostDetails(resp, 0)
	if !strings.HasSuffix(got, "\nNo comments found.") {
		t.Errorf("expected no-comments marker, got:\n%s", got)
	}
	if strings.Contains(got, "Comments:\n") {
		t.Error("comments heading must not render without comments")
	}
}

func TestPostDetails_TopLevelMoreMarker(t *testing.T) {
	tests := []struct {
		name string
		resp *types.CommentsResponse
		want string
	}{
		{
			name: "count from the placeholder wins",
			resp: &types.CommentsResponse{
				Post:      &types.Post{Title: "T", IsSelf: true, SelfText: "x"},
				Comments:  []*types.Comment{{Author: "a", Body: "b"}},
				MoreIDs:   []string{"c1", "c2"},
				MoreCount: 40,
			},
			want: "\n[+40 more comments]\n",
		},
		{
			name: "falls back to the ID count",
			resp: &types.CommentsResponse{
				Post:     &types.Post{Title: "T", IsSelf: true, SelfText: "x"},
				Comments: []*types.Comment{{Author: "a", Body: "b"}},
				MoreIDs:  []string{"c1", "c2"},
			},
			want: "\n[+2 more comments]\n",
		},
		{
			name: "renders even with no expanded comments",
			resp: &types.CommentsResponse{
				Post:      &types.Post{Title: "T", IsSelf: true, SelfText: "x"},
				MoreIDs:   []string{"c1"},
				MoreCount: 3,
			},
			want: "\n[+3 more comments]\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PostDetails(tt.resp, 0)
			if !strings.HasSuffix(got, tt.want) {
				t.Errorf("expected suffix %q, got:\n%s", tt.want, got)
			}
			if strings.Contains(got, "No comments found.") {
				t.Error("unexpanded comments are not the same as no comments")
			}
		})
	}
}

func TestCommentTree_OrderAndDepth(t *testing.T) {
	root := &types.Comment{
		Author: "a0",
		Body:   "b0",
		Score:  3,
		Replies: []*types.Comment{
			{Author: "a1", Body: "b1", Score: 2},
			{Author: "a2", Body: "b2", Score: 1, Replies: []*types.Comment{
				{Author: "a3", Body: "b3"},
			}},
		},
	}

	got := CommentTree(root, 0, DefaultMaxDepth)
	want := `* Author: a0
  Score: 3
  b0

-- * Author: a1
--   Score: 2
--   b1

-- * Author: a2
--   Score: 1
--   b2

-- -- * Author: a3
-- --   Score: 0
-- --   b3
`
	if got != want {
		t.Errorf("CommentTree mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}

	if strings.Index(got, "a1") > strings.Index(got, "a2") {
		t.Error("siblings rendered out of order")
	}
}

func TestCommentTree_DepthBudget(t *testing.T) {
	deepest := &types.Comment{Author: "a2", Body: "b2"}
	root := &types.Comment{
		Author: "a0",
		Body:   "b0",
		Replies: []*types.Comment{
			{Author: "a1", Body: "b1", Replies: []*types.Comment{deepest}},
		},
	}

	got := CommentTree(root, 0, 2)
	want := `* Author: a0
  Score: 0
  b0

-- * Author: a1
--   Score: 0
--   b1

-- -- [+1 more replies]
`
	if got != want {
		t.Errorf("depth budget mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
	if strings.Contains(got, "a2") {
		t.Error("comments past the depth budget must not render")
	}
}

func TestCommentTree_MoreRepliesMarker(t *testing.T) {
	tests := []struct {
		name    string
		comment *types.Comment
		want    string
	}{
		{
			name: "count from the placeholder wins",
			comment: &types.Comment{
				Author:            "a",
				Body:              "b",
				MoreChildrenIDs:   []string{"x", "y"},
				MoreChildrenCount: 12,
			},
			want: "\n-- [+12 more replies]\n",
		},
		{
			name: "falls back to the ID count",
			comment: &types.Comment{
				Author:          "a",
				Body:            "b",
				MoreChildrenIDs: []string{"x", "y"},
			},
			want: "\n-- [+2 more replies]\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CommentTree(tt.comment, 0, DefaultMaxDepth)
			if !strings.HasSuffix(got, tt.want) {
				t.Errorf("expected suffix %q, got:\n%s", tt.want, got)
			}
		})
	}
}

func TestUserPosts(t *testing.T) {
	posts := []*types.Post{
		{
			Title:       "Mine",
			Score:       5,
			NumComments: 1,
			Author:      "spez",
			IsSelf:      true,
			SelfText:    "hello",
			Permalink:   "/r/test/comments/m1/mine/",
		},
	}

	got := UserPosts("spez", posts)
	want := `Posts by u/spez:

Title: Mine
Score: 5
Comments: 1
Type: text
Content: hello
Link: https://reddit.com/r/test/comments/m1/mine/
---`
	if got != want {
		t.Errorf("UserPosts mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
	if strings.Contains(got, "Author:") {
		t.Error("user post blocks must not repeat the author")
	}
}

func TestUserPosts_Empty(t *testing.T) {
	got := UserPosts("ghost", nil)
	want := "No posts found for user u/ghost."
	if got != want {
		t.Errorf("UserPosts empty = %q, want %q", got, want)
	}
}

func TestUserComments(t *testing.T) {
	comments := []*types.Comment{
		{
			LinkID:    "t3_abc",
			Score:     7,
			Body:      "my take",
			Permalink: "/r/test/comments/abc/x/c1/",
		},
	}

	got := UserComments("spez", comments)
	want := `Comments by u/spez:

Post ID: abc
Score: 7
Content: my take
Link: https://reddit.com/r/test/comments/abc/x/c1/
---`
	if got != want {
		t.Errorf("UserComments mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestUserComments_Empty(t *testing.T) {
	got := UserComments("ghost", nil)
	want := "No comments found for user u/ghost."
	if got != want {
		t.Errorf("UserComments empty = %q, want %q", got, want)
	}
}

func TestTrending(t *testing.T) {
	got := Trending([]*types.SubredditData{
		{DisplayName: "golang"},
		{DisplayName: "rust"},
	})
	want := "Trending Subreddits:\ngolang\nrust"
	if got != want {
		t.Errorf("Trending = %q, want %q", got, want)
	}
}

func TestTrending_Empty(t *testing.T) {
	got := Trending(nil)
	want := "No trending subreddits found."
	if got != want {
		t.Errorf("Trending empty = %q, want %q", got, want)
	}
}

func TestMultiSearch(t *testing.T) {
	results := []*types.SubredditPosts{
		{
			Subreddit: "golang",
			Posts: []*types.Post{{
				Title:     "Go result",
				Score:     2,
				Author:    "alice",
				IsSelf:    true,
				SelfText:  "body",
				Permalink: "/r/golang/comments/g1/result/",
			}},
		},
		{Subreddit: "quiet"},
		{
			Subreddit: "rust",
			Err:       errors.New("forbidden"),
		},
	}

	got := MultiSearch(results)
	want := `r/golang:

Title: Go result
Score: 2
Comments: 0
Author: alice
Type: text
Content: body
Link: https://reddit.com/r/golang/comments/g1/result/
---

r/rust: An error occurred: forbidden`
	if got != want {
		t.Errorf("MultiSearch mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
	if strings.Contains(got, "quiet") {
		t.Error("subreddits with no matches must be skipped when others have results")
	}
	if strings.Index(got, "r/golang:") > strings.Index(got, "r/rust:") {
		t.Error("groups rendered out of request order")
	}
}

func TestMultiSearch_AllEmpty(t *testing.T) {
	got := MultiSearch([]*types.SubredditPosts{
		{Subreddit: "golang"},
		{Subreddit: "rust"},
	})
	want := "No posts found in subreddits golang, rust matching your criteria."
	if got != want {
		t.Errorf("MultiSearch empty = %q, want %q", got, want)
	}
}

func TestError(t *testing.T) {
	got := Error(errors.New("boom"))
	want := "An error occurred: boom"
	if got != want {
		t.Errorf("Error = %q, want %q", got, want)
	}
}
