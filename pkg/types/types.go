package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RedditObject defines the common behavior for all Reddit API objects like
// Posts, Comments, and Subreddits.
type RedditObject interface {
	GetID() string
	GetName() string
}

// ThingData holds the common fields for Reddit objects.
// It can be embedded into specific types like Post and Comment.
type ThingData struct {
	ID   string `json:"id"`   // ID (without prefix)
	Name string `json:"name"` // Full name (e.g., "t3_abc123")
}

// GetID returns the object's ID.
func (td ThingData) GetID() string {
	return td.ID
}

// GetName returns the object's full name.
func (td ThingData) GetName() string {
	return td.Name
}

// Thing is the base envelope for all Reddit API objects. It provides a common
// structure for different types of content like comments, links, and subreddits.
type Thing struct {
	ThingData
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// Votable is an embeddable struct for things that can be voted on.
type Votable struct {
	Ups   int `json:"ups"`
	Downs int `json:"downs"`
	// Likes indicates the user's vote: true for upvote, false for downvote, null for no vote.
	Likes *bool `json:"likes"`
}

// Created is an embeddable struct for things that have a creation time.
type Created struct {
	Created    float64 `json:"created"`
	CreatedUTC float64 `json:"created_utc"`
}

// Edited represents a field that can be a boolean or a timestamp.
// If IsEdited is true and Timestamp is 0, it was an old edit marked as `true`.
// If IsEdited is true and Timestamp is non-zero, it's a modern edit with a timestamp.
// If IsEdited is false, the item was not edited.
type Edited struct {
	IsEdited  bool
	Timestamp float64
}

// UnmarshalJSON implements json.Unmarshaler to handle mixed types for the "edited" field.
func (e *Edited) UnmarshalJSON(data []byte) error {
	s := string(data)
	// It can be a boolean `false`.
	if strings.ToLower(s) == "false" {
		e.IsEdited = false
		e.Timestamp = 0
		return nil
	}

	// It can be a boolean `true` for old edits.
	if strings.ToLower(s) == "true" {
		e.IsEdited = true
		e.Timestamp = 0
		return nil
	}

	// It could be null, which we treat as not edited.
	if strings.ToLower(s) == "null" {
		e.IsEdited = false
		e.Timestamp = 0
		return nil
	}

	// It can be a float timestamp.
	var timestamp float64
	if err := json.Unmarshal(data, &timestamp); err == nil {
		e.IsEdited = true
		e.Timestamp = timestamp
		return nil
	}

	return fmt.Errorf("unrecognized type for 'edited' field: %s", s)
}

// ListingData contains the data for a Listing, which is used for pagination.
type ListingData struct {
	BeforeFullname string   `json:"before"` // Reddit fullname for pagination (previous page)
	AfterFullname  string   `json:"after"`  // Reddit fullname for pagination (next page)
	Modhash        string   `json:"modhash"`
	Children       []*Thing `json:"children"` // Raw Things with kind+data, parsed by caller
}

// Pagination captures the shared pagination behaviour for Reddit listing endpoints.
// Reddit uses "fullnames" for pagination, which are strings like "t3_abc123" where
// "t3" indicates the type (link/post) and "abc123" is the item ID.
type Pagination struct {
	// Limit specifies the number of items to retrieve.
	// Reddit enforces a maximum of 100 items per request.
	// If 0 or not specified, Reddit's default limit (usually 25) is used.
	Limit int

	// After specifies the Reddit fullname after which to get items.
	// Used for forward pagination. Format: "t3_abc123" for posts, "t1_def456" for comments.
	// Cannot be used together with Before.
	After string

	// Before specifies the Reddit fullname before which to get items.
	// Used for backward pagination. Format: "t3_abc123" for posts, "t1_def456" for comments.
	// Cannot be used together with After.
	Before string
}

// CommentSort enumerates the comment orderings Reddit's comment endpoints accept.
type CommentSort string

const (
	CommentSortBest          CommentSort = "best"
	CommentSortTop           CommentSort = "top"
	CommentSortNew           CommentSort = "new"
	CommentSortControversial CommentSort = "controversial"
	CommentSortOld           CommentSort = "old"
	CommentSortQA            CommentSort = "qa"
	CommentSortRandom        CommentSort = "random"
)

// Valid reports whether the sort is one Reddit accepts.
func (s CommentSort) Valid() bool {
	switch s {
	case CommentSortBest, CommentSortTop, CommentSortNew, CommentSortControversial,
		CommentSortOld, CommentSortQA, CommentSortRandom:
		return true
	}
	return false
}

// API returns the value Reddit's comment endpoints expect in the sort query
// parameter. Reddit spells "best" as "confidence" on the wire.
func (s CommentSort) API() string {
	if s == CommentSortBest {
		return "confidence"
	}
	return string(s)
}

// SearchSort enumerates the orderings Reddit's search endpoints accept.
type SearchSort string

const (
	SearchSortRelevance SearchSort = "relevance"
	SearchSortHot       SearchSort = "hot"
	SearchSortTop       SearchSort = "top"
	SearchSortNew       SearchSort = "new"
)

// Valid reports whether the sort is one Reddit's search accepts.
func (s SearchSort) Valid() bool {
	switch s {
	case SearchSortRelevance, SearchSortHot, SearchSortTop, SearchSortNew:
		return true
	}
	return false
}

// TimeFilter enumerates the recency windows for top/relevance-sorted listings.
type TimeFilter string

const (
	TimeFilterHour  TimeFilter = "hour"
	TimeFilterDay   TimeFilter = "day"
	TimeFilterWeek  TimeFilter = "week"
	TimeFilterMonth TimeFilter = "month"
	TimeFilterYear  TimeFilter = "year"
	TimeFilterAll   TimeFilter = "all"
)

// Valid reports whether the filter is one Reddit accepts.
func (t TimeFilter) Valid() bool {
	switch t {
	case TimeFilterHour, TimeFilterDay, TimeFilterWeek, TimeFilterMonth,
		TimeFilterYear, TimeFilterAll:
		return true
	}
	return false
}

// UserContentKind selects which side of a user's profile to list.
type UserContentKind string

const (
	UserContentPosts    UserContentKind = "posts"
	UserContentComments UserContentKind = "comments"
)

// Valid reports whether the kind is a supported profile listing.
func (k UserContentKind) Valid() bool {
	return k == UserContentPosts || k == UserContentComments
}

// PostKind classifies how a post carries its content.
type PostKind string

const (
	PostKindText    PostKind = "text"
	PostKindLink    PostKind = "link"
	PostKindGallery PostKind = "gallery"
	PostKindUnknown PostKind = "unknown"
)

// PostsRequest describes a request to retrieve posts from a subreddit (or the front page).
// The Subreddit field can be left blank to target the front page.
type PostsRequest struct {
	Subreddit string
	Pagination
}

// TopPostsRequest describes a request for a subreddit's top listing within a
// recency window.
type TopPostsRequest struct {
	Subreddit string
	Time      TimeFilter
	Pagination
}

// CommentsRequest describes a request to retrieve a post together with its
// comment tree. The post is addressed by bare ID; no subreddit is required.
type CommentsRequest struct {
	PostID string

	// Sort specifies the comment sort order. Defaults to CommentSortBest.
	Sort CommentSort

	// Limit specifies the maximum number of top-level comments to retrieve.
	// Reddit's default is 100. Setting this too high may cause timeouts.
	Limit int
}

// SearchRequest describes a post search, either site-wide or restricted to a
// single subreddit when Subreddit is set.
type SearchRequest struct {
	Query     string
	Subreddit string
	Sort      SearchSort
	Time      TimeFilter
	Pagination
}

// MultiSearchRequest describes the same query fanned out across several
// subreddits. Results come back grouped per subreddit in input order.
type MultiSearchRequest struct {
	Subreddits []string
	Query      string
	Sort       SearchSort
	Time       TimeFilter
	Limit      int
}

// UserContentRequest describes a request for one side of a user's profile
// listing (submitted posts or authored comments).
type UserContentRequest struct {
	Username string
	Pagination
}

// SubredditData contains the data for a Subreddit.
type SubredditData struct {
	ThingData
	AccountsActive       int     `json:"accounts_active"`
	CommentScoreHideMins int     `json:"comment_score_hide_mins"`
	Description          string  `json:"description"`
	DescriptionHTML      string  `json:"description_html"`
	DisplayName          string  `json:"display_name"`
	HeaderImg            *string `json:"header_img"`
	HeaderSize           []int   `json:"header_size"`
	HeaderTitle          *string `json:"header_title"`
	Over18               bool    `json:"over18"`
	PublicDescription    string  `json:"public_description"`
	PublicTraffic        bool    `json:"public_traffic"`
	Subscribers          int64   `json:"subscribers"`
	SubmissionType       string  `json:"submission_type"`
	SubmitLinkLabel      *string `json:"submit_link_label"`
	SubmitTextLabel      *string `json:"submit_text_label"`
	SubredditType        string  `json:"subreddit_type"`
	Title                string  `json:"title"`
	URL                  string  `json:"url"`
	UserIsBanned         *bool   `json:"user_is_banned"`
	UserIsContributor    *bool   `json:"user_is_contributor"`
	UserIsModerator      *bool   `json:"user_is_moderator"`
	UserIsSubscriber     *bool   `json:"user_is_subscriber"`
}

// AccountData contains the data for a user Account.
type AccountData struct {
	ThingData
	Created
	CommentKarma     int    `json:"comment_karma"`
	HasMail          *bool  `json:"has_mail"`
	HasModMail       *bool  `json:"has_mod_mail"`
	HasVerifiedEmail *bool  `json:"has_verified_email"`
	InboxCount       int    `json:"inbox_count,omitempty"`
	IsFriend         bool   `json:"is_friend"`
	IsGold           bool   `json:"is_gold"`
	IsMod            bool   `json:"is_mod"`
	LinkKarma        int    `json:"link_karma"`
	Modhash          string `json:"modhash,omitempty"`
	Over18           bool   `json:"over_18"`
}

// MoreData represents a "more" object, the placeholder Reddit returns for
// comment subtrees it declined to expand at the requested limit.
type MoreData struct {
	ThingData
	Count    int      `json:"count"`
	Children []string `json:"children"`
}

// GalleryItem is one entry of a gallery post, in display order.
type GalleryItem struct {
	MediaID string `json:"media_id"`
	ID      int64  `json:"id"`
}

// GalleryData carries the ordered item list for a gallery post.
type GalleryData struct {
	Items []GalleryItem `json:"items"`
}

// MediaSource describes one rendition of a gallery item. Static images carry
// URL; animated items carry GIF and MP4 instead.
type MediaSource struct {
	URL    string `json:"u"`
	GIF    string `json:"gif"`
	MP4    string `json:"mp4"`
	Width  int    `json:"x"`
	Height int    `json:"y"`
}

// MediaMetadata describes an uploaded media item referenced by a gallery post.
type MediaMetadata struct {
	Status string       `json:"status"`
	Type   string       `json:"e"`
	Mime   string       `json:"m"`
	Source *MediaSource `json:"s"`
}

// Post represents a Reddit post with all its fields
type Post struct {
	ThingData
	Votable
	Created
	Author              string                    `json:"author"`
	AuthorFlairCSSClass *string                   `json:"author_flair_css_class"`
	AuthorFlairText     *string                   `json:"author_flair_text"`
	Clicked             bool                      `json:"clicked"`
	Domain              string                    `json:"domain"`
	GalleryData         *GalleryData              `json:"gallery_data"`
	Hidden              bool                      `json:"hidden"`
	IsGallery           bool                      `json:"is_gallery"`
	IsSelf              bool                      `json:"is_self"`
	LinkFlairCSSClass   *string                   `json:"link_flair_css_class"`
	LinkFlairText       *string                   `json:"link_flair_text"`
	Locked              bool                      `json:"locked"`
	Media               json.RawMessage           `json:"media"`
	MediaEmbed          json.RawMessage           `json:"media_embed"`
	MediaMetadata       map[string]*MediaMetadata `json:"media_metadata"`
	NumComments         int                       `json:"num_comments"`
	Over18              bool                      `json:"over_18"`
	Permalink           string                    `json:"permalink"`
	Saved               bool                      `json:"saved"`
	Score               int                       `json:"score"`
	SelfText            string                    `json:"selftext"`
	SelfTextHTML        *string                   `json:"selftext_html"`
	Subreddit           string                    `json:"subreddit"`
	SubredditID         string                    `json:"subreddit_id"`
	Thumbnail           string                    `json:"thumbnail"`
	Title               string                    `json:"title"`
	UpvoteRatio         float64                   `json:"upvote_ratio"`
	URL                 string                    `json:"url"`
	Edited              Edited                    `json:"edited"` // Can be a boolean or a float64 timestamp
	Distinguished       *string                   `json:"distinguished"`
	Stickied            bool                      `json:"stickied"`
}

// Kind classifies the post by which body representation is populated.
// Exactly one of selftext / URL / gallery items is meaningful per kind;
// posts matching none of the three classify as PostKindUnknown.
func (p *Post) Kind() PostKind {
	switch {
	case p.IsGallery:
		return PostKindGallery
	case p.IsSelf:
		return PostKindText
	case p.URL != "":
		return PostKindLink
	}
	return PostKindUnknown
}

// Comment represents a Reddit comment with all its fields
type Comment struct {
	ThingData
	Votable
	Created
	ApprovedBy          *string    `json:"approved_by"`
	Author              string     `json:"author"`
	AuthorFlairCSSClass *string    `json:"author_flair_css_class"`
	AuthorFlairText     *string    `json:"author_flair_text"`
	BannedBy            *string    `json:"banned_by"`
	Body                string     `json:"body"`
	BodyHTML            string     `json:"body_html"`
	Edited              Edited     `json:"edited"` // Can be a boolean (for old comments) or a float64 timestamp
	Gilded              int        `json:"gilded"`
	LinkAuthor          string     `json:"link_author,omitempty"`
	LinkID              string     `json:"link_id"`
	LinkTitle           string     `json:"link_title,omitempty"`
	LinkURL             string     `json:"link_url,omitempty"`
	NumReports          *int       `json:"num_reports"`
	ParentID            string     `json:"parent_id"`
	Permalink           string     `json:"permalink"`
	Replies             []*Comment `json:"-"` // Parsed by Parser from the raw replies field
	Saved               bool       `json:"saved"`
	Score               int        `json:"score"`
	ScoreHidden         bool       `json:"score_hidden"`
	Subreddit           string     `json:"subreddit"`
	SubredditID         string     `json:"subreddit_id"`
	Distinguished       *string    `json:"distinguished"`
	MoreChildrenIDs     []string   `json:"-"` // IDs of direct replies Reddit left unexpanded
	MoreChildrenCount   int        `json:"-"` // Reddit's count for the unexpanded subtree
}

// PostID returns the bare ID of the post this comment belongs to, stripping
// the "t3_" fullname prefix from LinkID.
func (c *Comment) PostID() string {
	return strings.TrimPrefix(c.LinkID, "t3_")
}

// PostsResponse represents a collection of posts from a subreddit with pagination info.
type PostsResponse struct {
	Posts          []*Post
	AfterFullname  string // Reddit fullname (e.g. "t3_abc123") of last item for next page
	BeforeFullname string // Reddit fullname (e.g. "t3_abc123") of first item for prev page
}

// CommentsResponse represents a post with its comment tree. Comments holds the
// top-level comments in API order; replies hang off each comment. MoreIDs are
// top-level comments Reddit declined to expand at the requested limit, and
// MoreCount is Reddit's count of everything those placeholders stand for.
type CommentsResponse struct {
	Post      *Post
	Comments  []*Comment
	MoreIDs   []string
	MoreCount int
}

// UserCommentsResponse represents a user's authored comments. Profile listings
// are flat; no reply trees are attached.
type UserCommentsResponse struct {
	Comments       []*Comment
	AfterFullname  string
	BeforeFullname string
}

// SubredditPosts groups one subreddit's search results inside a multi-subreddit
// fan-out. Err records that subreddit's failure without aborting the others.
type SubredditPosts struct {
	Subreddit string
	Posts     []*Post
	Err       error
}
