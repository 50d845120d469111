// Package format renders Reddit content as the plain-text blocks the tools
// return. The layouts are part of the tool contract: callers parse these
// strings, so the field order and separators are fixed.
package format

import (
	"fmt"
	"strings"

	"github.com/redditmcp/reddit-mcp/pkg/types"
)

// DefaultMaxDepth is the comment tree depth budget. Replies nested deeper
// render as a terminal marker instead of recursing further.
const DefaultMaxDepth = 10

// Posts renders a post listing as blocks separated by blank lines. An empty
// listing renders as the empty string; tools substitute their own
// "nothing found" message.
func Posts(posts []*types.Post) string {
	blocks := make([]string, 0, len(posts))
	for _, post := range posts {
		blocks = append(blocks, postBlock(post, true))
	}
	return strings.Join(blocks, "\n\n")
}

// postBlock renders one post. User content listings omit the Author line
// since every entry belongs to the requested user.
func postBlock(p *types.Post, withAuthor bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", p.Title)
	fmt.Fprintf(&b, "Score: %d\n", p.Score)
	fmt.Fprintf(&b, "Comments: %d\n", p.NumComments)
	if withAuthor {
		fmt.Fprintf(&b, "Author: %s\n", displayAuthor(p.Author))
	}
	fmt.Fprintf(&b, "Type: %s\n", p.Kind())
	fmt.Fprintf(&b, "Content: %s\n", postContent(p))
	fmt.Fprintf(&b, "Link: https://reddit.com%s\n", p.Permalink)
	b.WriteString("---")
	return b.String()
}

// postContent selects the body representation for the post's kind: text posts
// render the selftext, link posts the target URL, gallery posts the ordered
// image URLs. Unknown kinds render a placeholder rather than failing.
func postContent(p *types.Post) string {
	switch p.Kind() {
	case types.PostKindText:
		return p.SelfText
	case types.PostKindLink:
		return p.URL
	case types.PostKindGallery:
		return galleryURLs(p)
	}
	return "[no content]"
}

// galleryURLs lists a gallery's media URLs in display order, falling back to
// the gallery permalink when the media metadata is missing or unprocessed.
func galleryURLs(p *types.Post) string {
	if p.GalleryData == nil || len(p.GalleryData.Items) == 0 {
		return p.URL
	}

	urls := make([]string, 0, len(p.GalleryData.Items))
	for _, item := range p.GalleryData.Items {
		meta := p.MediaMetadata[item.MediaID]
		if meta == nil || meta.Source == nil {
			continue
		}
		switch {
		case meta.Source.URL != "":
			urls = append(urls, meta.Source.URL)
		case meta.Source.GIF != "":
			urls = append(urls, meta.Source.GIF)
		case meta.Source.MP4 != "":
			urls = append(urls, meta.Source.MP4)
		}
	}

	if len(urls) == 0 {
		return p.URL
	}
	return strings.Join(urls, ", ")
}

// PostDetails renders a post header followed by its indented comment tree.
// A maxDepth of 0 or less applies DefaultMaxDepth.
func PostDetails(resp *types.CommentsResponse, maxDepth int) string {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	var b strings.Builder
	if p := resp.Post; p != nil {
		fmt.Fprintf(&b, "Title: %s\n", p.Title)
		fmt.Fprintf(&b, "Score: %d\n", p.Score)
		fmt.Fprintf(&b, "Author: %s\n", displayAuthor(p.Author))
		fmt.Fprintf(&b, "Type: %s\n", p.Kind())
		fmt.Fprintf(&b, "Content: %s\n", postContent(p))
		fmt.Fprintf(&b, "Link: https://reddit.com%s\n", p.Permalink)
	}

	if len(resp.Comments) == 0 && len(resp.MoreIDs) == 0 {
		b.WriteString("\nNo comments found.")
		return b.String()
	}

	b.WriteString("\nComments:\n")
	for _, comment := range resp.Comments {
		b.WriteString("\n")
		b.WriteString(CommentTree(comment, 0, maxDepth))
	}
	if n := moreTally(resp.MoreCount, resp.MoreIDs); n > 0 {
		fmt.Fprintf(&b, "\n[+%d more comments]\n", n)
	}
	return b.String()
}

// CommentTree renders a comment and its replies depth-first, each block
// indented with "-- " per level of nesting. Replies keep the order the API
// returned; no client-side re-sorting happens here. Subtrees past maxDepth
// and subtrees the API left unexpanded render as "[+N more replies]" markers.
func CommentTree(c *types.Comment, depth, maxDepth int) string {
	indent := strings.Repeat("-- ", depth)
	var b strings.Builder
	fmt.Fprintf(&b, "%s* Author: %s\n", indent, displayAuthor(c.Author))
	fmt.Fprintf(&b, "%s  Score: %d\n", indent, c.Score)
	fmt.Fprintf(&b, "%s  %s\n", indent, c.Body)

	childIndent := strings.Repeat("-- ", depth+1)
	if depth+1 >= maxDepth {
		if hidden := len(c.Replies) + moreTally(c.MoreChildrenCount, c.MoreChildrenIDs); hidden > 0 {
			fmt.Fprintf(&b, "\n%s[+%d more replies]\n", childIndent, hidden)
		}
		return b.String()
	}

	for _, child := range c.Replies {
		b.WriteString("\n")
		b.WriteString(CommentTree(child, depth+1, maxDepth))
	}
	if n := moreTally(c.MoreChildrenCount, c.MoreChildrenIDs); n > 0 {
		fmt.Fprintf(&b, "\n%s[+%d more replies]\n", childIndent, n)
	}
	return b.String()
}

// moreTally sizes a "more" marker: Reddit's count when it sends one, the
// number of placeholder IDs otherwise.
func moreTally(count int, ids []string) int {
	if count > 0 {
		return count
	}
	return len(ids)
}

// UserPosts renders posts submitted by a user under a "Posts by" heading.
func UserPosts(username string, posts []*types.Post) string {
	if len(posts) == 0 {
		return fmt.Sprintf("No posts found for user u/%s.", username)
	}

	blocks := make([]string, 0, len(posts))
	for _, post := range posts {
		blocks = append(blocks, postBlock(post, false))
	}
	return fmt.Sprintf("Posts by u/%s:\n\n", username) + strings.Join(blocks, "\n\n")
}

// UserComments renders comments authored by a user under a "Comments by"
// heading. Each block names the post the comment was left on.
func UserComments(username string, comments []*types.Comment) string {
	if len(comments) == 0 {
		return fmt.Sprintf("No comments found for user u/%s.", username)
	}

	blocks := make([]string, 0, len(comments))
	for _, comment := range comments {
		var b strings.Builder
		fmt.Fprintf(&b, "Post ID: %s\n", comment.PostID())
		fmt.Fprintf(&b, "Score: %d\n", comment.Score)
		fmt.Fprintf(&b, "Content: %s\n", comment.Body)
		fmt.Fprintf(&b, "Link: https://reddit.com%s\n", comment.Permalink)
		b.WriteString("---")
		blocks = append(blocks, b.String())
	}
	return fmt.Sprintf("Comments by u/%s:\n\n", username) + strings.Join(blocks, "\n\n")
}

// Trending renders popular subreddit names, one per line.
func Trending(subreddits []*types.SubredditData) string {
	if len(subreddits) == 0 {
		return "No trending subreddits found."
	}

	names := make([]string, 0, len(subreddits))
	for _, sub := range subreddits {
		names = append(names, sub.DisplayName)
	}
	return "Trending Subreddits:\n" + strings.Join(names, "\n")
}

// MultiSearch renders per-subreddit search results grouped under "r/name:"
// headings, in the order the subreddits were requested. A subreddit whose
// search failed renders an error line instead of aborting the whole result;
// subreddits with no matches are skipped.
func MultiSearch(results []*types.SubredditPosts) string {
	blocks := make([]string, 0, len(results))
	for _, entry := range results {
		switch {
		case entry.Err != nil:
			blocks = append(blocks, fmt.Sprintf("r/%s: %s", entry.Subreddit, Error(entry.Err)))
		case len(entry.Posts) > 0:
			blocks = append(blocks, fmt.Sprintf("r/%s:\n\n%s", entry.Subreddit, Posts(entry.Posts)))
		}
	}

	if len(blocks) == 0 {
		names := make([]string, 0, len(results))
		for _, entry := range results {
			names = append(names, entry.Subreddit)
		}
		return fmt.Sprintf("No posts found in subreddits %s matching your criteria.", strings.Join(names, ", "))
	}
	return strings.Join(blocks, "\n\n")
}

// Error renders an error the way every tool reports expected failures: as
// text in the result payload, never as a protocol-level fault.
func Error(err error) string {
	return "An error occurred: " + err.Error()
}

func displayAuthor(author string) string {
	if author == "" {
		return "[deleted]"
	}
	return author
}
