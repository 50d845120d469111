// Package reddit implements the OAuth2 Reddit API client behind the MCP
// tools. It handles authentication, client-side rate limiting, response
// parsing and parameter validation, and exposes typed operations for the
// read-only endpoints the tools need.
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	pkgerrs "github.com/redditmcp/reddit-mcp/pkg/errors"
	"github.com/redditmcp/reddit-mcp/pkg/types"
)

const (
	// DefaultBaseURL is the default Reddit API base URL
	DefaultBaseURL = "https://oauth.reddit.com/"
	// DefaultAuthURL is the default Reddit OAuth base URL
	DefaultAuthURL = "https://www.reddit.com/"
	// DefaultUserAgent is the default user agent string
	DefaultUserAgent = "golang:reddit-mcp:v0.1.0"
	// DefaultTimeout is the default HTTP client timeout
	DefaultTimeout = 30 * time.Second
)

// Config holds the configuration for the Reddit client.
//
// ClientID and ClientSecret are always required. The OAuth2 grant is selected
// from the remaining credentials: a RefreshToken selects the refresh_token
// grant, Username+Password selects the password grant, and neither selects
// application-only client_credentials.
type Config struct {
	// ClientID and ClientSecret identify the Reddit application.
	// Obtain these from Reddit's app preferences.
	ClientID     string
	ClientSecret string

	// RefreshToken for a previously authorized user. Optional.
	RefreshToken string

	// Username and Password for the password grant flow. Optional.
	Username string
	Password string

	// UserAgent string to identify the application to Reddit.
	// Should follow the format "platform:app-name:version by /u/username".
	UserAgent string

	// BaseURL for the Reddit API.
	// Defaults to DefaultBaseURL if not specified.
	BaseURL string

	// AuthURL for Reddit OAuth authentication.
	// Defaults to DefaultAuthURL if not specified.
	AuthURL string

	// HTTPClient to use for requests.
	// Defaults to a client with DefaultTimeout if not specified.
	HTTPClient *http.Client

	// RateLimit controls client-side pacing. Defaults apply when nil.
	RateLimit *RateLimitConfig

	// Logger for structured diagnostics. Optional.
	Logger *slog.Logger
}

// HTTPClient defines the behavior required from the underlying transport.
// This interface allows for easy testing and customization of HTTP behavior.
type HTTPClient interface {
	// NewRequest creates an authenticated request for an API path relative to
	// the base URL.
	NewRequest(ctx context.Context, method, path string, query url.Values) (*http.Request, error)

	// Do executes a request and unmarshals the response into a Reddit Thing.
	Do(req *http.Request, v *types.Thing) error

	// DoRaw executes a request and returns the raw response bytes. Used for
	// endpoints whose top-level JSON shape is not a single Thing.
	DoRaw(req *http.Request) ([]byte, error)
}

// Client is the Reddit API client. All methods require the client to be
// connected; Connect is called lazily on first use.
type Client struct {
	client    HTTPClient
	auth      TokenProvider
	config    *Config
	parser    *Parser
	validator *Validator

	connectOnce sync.Once
	connectErr  error
}

// NewClient creates a new Reddit client with the provided configuration.
// It validates the configuration, sets defaults for optional fields and
// prepares the authenticator for the grant the credentials select.
//
// This function does not perform authentication. Call Connect, or simply use
// the client; the first operation connects it.
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		return nil, &pkgerrs.ConfigError{Message: "config cannot be nil"}
	}
	if config.ClientID == "" || config.ClientSecret == "" {
		return nil, &pkgerrs.ConfigError{Field: "ClientID/ClientSecret", Message: "ClientID and ClientSecret are required"}
	}

	// Set defaults
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.AuthURL == "" {
		config.AuthURL = DefaultAuthURL
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}

	validator := NewValidator()
	if err := validator.ValidateUserAgent(config.UserAgent); err != nil {
		return nil, &pkgerrs.ConfigError{Field: "UserAgent", Message: err.Error()}
	}

	auth, err := NewAuthenticator(config.HTTPClient, &AuthConfig{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		RefreshToken: config.RefreshToken,
		Username:     config.Username,
		Password:     config.Password,
		UserAgent:    config.UserAgent,
		AuthURL:      config.AuthURL,
		Logger:       config.Logger,
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		auth:      auth,
		config:    config,
		parser:    NewParser(),
		validator: validator,
	}, nil
}

// Connect authenticates with Reddit and initializes the transport.
// It is safe to call Connect multiple times; initialization only occurs once.
func (c *Client) Connect(ctx context.Context) error {
	c.connectOnce.Do(func() {
		c.connectErr = c.initialize(ctx)
	})

	return c.connectErr
}

// initialize performs the underlying connection setup work.
func (c *Client) initialize(ctx context.Context) error {
	// Validate that we can get a token before creating the transport
	if _, err := c.auth.GetToken(ctx); err != nil {
		return err
	}

	transport, err := NewTransport(
		c.config.HTTPClient,
		c.auth,
		c.config.BaseURL,
		c.config.UserAgent,
		c.config.RateLimit,
		c.config.Logger,
	)
	if err != nil {
		return err
	}

	c.client = transport
	return nil
}

// ensureConnected lazily initializes the client before handling a request.
func (c *Client) ensureConnected(ctx context.Context, operation string) error {
	if err := c.Connect(ctx); err != nil {
		return err
	}

	if !c.IsConnected() {
		return &pkgerrs.StateError{Operation: operation, Message: "client not connected, call Connect() first"}
	}

	return nil
}

// IsConnected returns true if the client is authenticated and ready to make requests.
func (c *Client) IsConnected() bool {
	return c.client != nil
}

// Me returns information about the authenticated account. Useful for
// verifying credentials; application-only tokens return a minimal account.
func (c *Client) Me(ctx context.Context) (*types.AccountData, error) {
	if err := c.ensureConnected(ctx, "Me"); err != nil {
		return nil, err
	}

	req, err := c.client.NewRequest(ctx, http.MethodGet, "api/v1/me", nil)
	if err != nil {
		return nil, err
	}

	var result types.Thing
	if err := c.client.Do(req, &result); err != nil {
		return nil, err
	}

	parsed, err := c.parser.ParseThing(&result)
	if err != nil {
		return nil, &pkgerrs.ParseError{Operation: "Me", Err: err}
	}

	account, ok := parsed.(*types.AccountData)
	if !ok {
		return nil, &pkgerrs.ParseError{Operation: "Me", Message: "unexpected response type"}
	}

	return account, nil
}

// GetSubreddit retrieves metadata about a subreddit: subscriber counts,
// descriptions and submission settings.
//
// The name is given without the "r/" prefix. Reddit answers 404 for
// subreddits that are banned or never existed and 403 for private ones.
func (c *Client) GetSubreddit(ctx context.Context, name string) (*types.SubredditData, error) {
	if err := c.ensureConnected(ctx, "GetSubreddit"); err != nil {
		return nil, err
	}
	if err := c.validator.ValidateSubredditName(name); err != nil {
		return nil, err
	}

	req, err := c.client.NewRequest(ctx, http.MethodGet, "r/"+name+"/about", nil)
	if err != nil {
		return nil, err
	}

	var result types.Thing
	if err := c.client.Do(req, &result); err != nil {
		return nil, err
	}

	subreddit, err := c.parser.ParseSubreddit(&result)
	if err != nil {
		return nil, &pkgerrs.ParseError{Operation: "GetSubreddit", Err: err}
	}

	return subreddit, nil
}

// GetHot retrieves hot posts from a subreddit, or from the front page when
// the request's Subreddit is empty.
//
// The returned PostsResponse carries AfterFullname/BeforeFullname cursors for
// subsequent pages.
func (c *Client) GetHot(ctx context.Context, request *types.PostsRequest) (*types.PostsResponse, error) {
	return c.getSortedPosts(ctx, "GetHot", "hot", request, nil)
}

// GetNew retrieves the newest posts from a subreddit, or from the front page
// when the request's Subreddit is empty.
func (c *Client) GetNew(ctx context.Context, request *types.PostsRequest) (*types.PostsResponse, error) {
	return c.getSortedPosts(ctx, "GetNew", "new", request, nil)
}

// GetTop retrieves top posts for the request's time window. An empty Time
// defaults to "all".
func (c *Client) GetTop(ctx context.Context, request *types.TopPostsRequest) (*types.PostsResponse, error) {
	timeFilter := types.TimeFilterAll
	posts := &types.PostsRequest{}
	if request != nil {
		posts.Subreddit = request.Subreddit
		posts.Pagination = request.Pagination
		if request.Time != "" {
			timeFilter = request.Time
		}
	}
	if err := c.validator.ValidateTimeFilter(timeFilter); err != nil {
		return nil, err
	}

	extra := url.Values{}
	extra.Set("t", string(timeFilter))
	return c.getSortedPosts(ctx, "GetTop", "top", posts, extra)
}

// getSortedPosts fetches one page of a post listing such as hot, new or top.
func (c *Client) getSortedPosts(ctx context.Context, operation, sort string, request *types.PostsRequest, extra url.Values) (*types.PostsResponse, error) {
	if err := c.ensureConnected(ctx, operation); err != nil {
		return nil, err
	}

	subreddit := ""
	pagination := types.Pagination{}
	if request != nil {
		subreddit = request.Subreddit
		pagination = request.Pagination
	}

	if subreddit != "" {
		if err := c.validator.ValidateSubredditName(subreddit); err != nil {
			return nil, err
		}
	}
	if err := c.validator.ValidatePagination(&pagination); err != nil {
		return nil, err
	}

	path := sort
	if subreddit != "" {
		path = "r/" + subreddit + "/" + sort
	}

	query := paginationQuery(pagination)
	for key, values := range extra {
		for _, value := range values {
			query.Add(key, value)
		}
	}

	req, err := c.client.NewRequest(ctx, http.MethodGet, path, query)
	if err != nil {
		return nil, err
	}

	var result types.Thing
	if err := c.client.Do(req, &result); err != nil {
		return nil, err
	}

	return c.buildPostsResponse(operation, &result)
}

// GetComments retrieves a post together with its comment tree.
//
// The request's PostID may be a bare base36 ID or a "t3_" fullname. An empty
// Sort defaults to "best". Reddit truncates large trees; unexpanded subtrees
// are reported via MoreIDs/MoreCount on the response and via
// MoreChildrenIDs/MoreChildrenCount on individual comments.
func (c *Client) GetComments(ctx context.Context, request *types.CommentsRequest) (*types.CommentsResponse, error) {
	if err := c.ensureConnected(ctx, "GetComments"); err != nil {
		return nil, err
	}
	if request == nil {
		return nil, &pkgerrs.ConfigError{Field: "request", Message: "comments request cannot be nil"}
	}

	postID := strings.TrimPrefix(request.PostID, "t3_")
	if err := c.validator.ValidatePostID(postID); err != nil {
		return nil, err
	}

	sort := request.Sort
	if sort == "" {
		sort = types.CommentSortBest
	}
	if err := c.validator.ValidateCommentSort(sort); err != nil {
		return nil, err
	}
	if err := c.validator.ValidatePagination(&types.Pagination{Limit: request.Limit}); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("sort", sort.API())
	if request.Limit > 0 {
		query.Set("limit", fmt.Sprintf("%d", request.Limit))
	}

	path := "comments/" + postID
	req, err := c.client.NewRequest(ctx, http.MethodGet, path, query)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.DoRaw(req)
	if err != nil {
		return nil, err
	}

	if c.config.Logger != nil {
		previewLen := len(resp)
		if previewLen > 500 {
			previewLen = 500
		}
		c.config.Logger.Debug("Reddit API raw response", "path", path, "response_preview", string(resp[:previewLen]))
	}

	// Reddit can return either an array [post, comments] or a single Listing
	var result []*types.Thing
	switch {
	case len(resp) > 0 && resp[0] == '[':
		if err := json.Unmarshal(resp, &result); err != nil {
			return nil, &pkgerrs.ParseError{Operation: "GetComments", Message: "failed to parse comments array response", Err: err}
		}
	case len(resp) > 0 && resp[0] == '{':
		var singleThing types.Thing
		if err := json.Unmarshal(resp, &singleThing); err != nil {
			return nil, &pkgerrs.ParseError{Operation: "GetComments", Message: "failed to parse comments response", Err: err}
		}
		if singleThing.Kind != "Listing" {
			// Could be an error object such as {"error": 404, "message": "Not Found"}
			var errObj struct {
				Error   int    `json:"error"`
				Message string `json:"message"`
			}
			if err := json.Unmarshal(resp, &errObj); err == nil && errObj.Error != 0 {
				return nil, &pkgerrs.APIError{StatusCode: errObj.Error, Message: errObj.Message}
			}
			return nil, &pkgerrs.ParseError{Operation: "GetComments", Message: fmt.Sprintf("unexpected response kind: %s", singleThing.Kind)}
		}
		result = []*types.Thing{&singleThing}
	default:
		return nil, &pkgerrs.ParseError{Operation: "GetComments", Message: "empty or invalid response from Reddit"}
	}

	post, comments, more, err := c.parser.ExtractPostAndComments(result)
	if err != nil {
		return nil, &pkgerrs.ParseError{Operation: "GetComments", Err: err}
	}

	response := &types.CommentsResponse{
		Post:     post,
		Comments: comments,
	}
	if more != nil {
		response.MoreIDs = more.Children
		response.MoreCount = more.Count
	}
	return response, nil
}

// Search runs Reddit's post search. When the request's Subreddit is set, the
// search is restricted to that subreddit; otherwise it spans all of Reddit.
// Empty Sort and Time default to "relevance" and "all".
func (c *Client) Search(ctx context.Context, request *types.SearchRequest) (*types.PostsResponse, error) {
	if err := c.ensureConnected(ctx, "Search"); err != nil {
		return nil, err
	}
	if request == nil {
		return nil, &pkgerrs.ConfigError{Field: "request", Message: "search request cannot be nil"}
	}
	if err := c.validator.ValidateQuery(request.Query); err != nil {
		return nil, err
	}

	sort := request.Sort
	if sort == "" {
		sort = types.SearchSortRelevance
	}
	timeFilter := request.Time
	if timeFilter == "" {
		timeFilter = types.TimeFilterAll
	}
	if err := c.validator.ValidateSearchSort(sort); err != nil {
		return nil, err
	}
	if err := c.validator.ValidateTimeFilter(timeFilter); err != nil {
		return nil, err
	}
	if err := c.validator.ValidatePagination(&request.Pagination); err != nil {
		return nil, err
	}

	path := "search"
	query := paginationQuery(request.Pagination)
	query.Set("q", request.Query)
	query.Set("sort", string(sort))
	query.Set("t", string(timeFilter))
	query.Set("type", "link")
	if request.Subreddit != "" {
		if err := c.validator.ValidateSubredditName(request.Subreddit); err != nil {
			return nil, err
		}
		path = "r/" + request.Subreddit + "/search"
		query.Set("restrict_sr", "1")
	}

	req, err := c.client.NewRequest(ctx, http.MethodGet, path, query)
	if err != nil {
		return nil, err
	}

	var result types.Thing
	if err := c.client.Do(req, &result); err != nil {
		return nil, err
	}

	return c.buildPostsResponse("Search", &result)
}

// SearchMultiple runs the same search across several subreddits in parallel
// and groups the results per subreddit, in the order the subreddits were
// given. A failure in one subreddit does not abort the others; it is recorded
// on that subreddit's SubredditPosts entry.
func (c *Client) SearchMultiple(ctx context.Context, request *types.MultiSearchRequest) ([]*types.SubredditPosts, error) {
	if err := c.ensureConnected(ctx, "SearchMultiple"); err != nil {
		return nil, err
	}
	if request == nil {
		return nil, &pkgerrs.ConfigError{Field: "request", Message: "multi-search request cannot be nil"}
	}
	if len(request.Subreddits) == 0 {
		return nil, &pkgerrs.ConfigError{Field: "subreddits", Message: "at least one subreddit is required"}
	}
	if err := c.validator.ValidateQuery(request.Query); err != nil {
		return nil, err
	}
	for _, subreddit := range request.Subreddits {
		if err := c.validator.ValidateSubredditName(subreddit); err != nil {
			return nil, err
		}
	}

	type result struct {
		index    int
		response *types.PostsResponse
		err      error
	}
	resultChan := make(chan result, len(request.Subreddits))

	for i, subreddit := range request.Subreddits {
		go func(index int, subreddit string) {
			resp, err := c.Search(ctx, &types.SearchRequest{
				Query:      request.Query,
				Subreddit:  subreddit,
				Sort:       request.Sort,
				Time:       request.Time,
				Pagination: types.Pagination{Limit: request.Limit},
			})
			resultChan <- result{index: index, response: resp, err: err}
		}(i, subreddit)
	}

	results := make([]*types.SubredditPosts, len(request.Subreddits))
	for range request.Subreddits {
		res := <-resultChan
		entry := &types.SubredditPosts{
			Subreddit: request.Subreddits[res.index],
			Err:       res.err,
		}
		if res.response != nil {
			entry.Posts = res.response.Posts
		}
		results[res.index] = entry
	}

	return results, nil
}

// GetUserPosts retrieves posts submitted by a user. The username is given
// without the "u/" prefix.
func (c *Client) GetUserPosts(ctx context.Context, request *types.UserContentRequest) (*types.PostsResponse, error) {
	if err := c.ensureConnected(ctx, "GetUserPosts"); err != nil {
		return nil, err
	}
	if request == nil {
		return nil, &pkgerrs.ConfigError{Field: "request", Message: "user content request cannot be nil"}
	}
	if err := c.validator.ValidateUsername(request.Username); err != nil {
		return nil, err
	}
	if err := c.validator.ValidatePagination(&request.Pagination); err != nil {
		return nil, err
	}

	path := "user/" + request.Username + "/submitted"
	req, err := c.client.NewRequest(ctx, http.MethodGet, path, paginationQuery(request.Pagination))
	if err != nil {
		return nil, err
	}

	var result types.Thing
	if err := c.client.Do(req, &result); err != nil {
		return nil, err
	}

	return c.buildPostsResponse("GetUserPosts", &result)
}

// GetUserComments retrieves comments authored by a user. Profile listings are
// flat; the returned comments carry no reply trees.
func (c *Client) GetUserComments(ctx context.Context, request *types.UserContentRequest) (*types.UserCommentsResponse, error) {
	if err := c.ensureConnected(ctx, "GetUserComments"); err != nil {
		return nil, err
	}
	if request == nil {
		return nil, &pkgerrs.ConfigError{Field: "request", Message: "user content request cannot be nil"}
	}
	if err := c.validator.ValidateUsername(request.Username); err != nil {
		return nil, err
	}
	if err := c.validator.ValidatePagination(&request.Pagination); err != nil {
		return nil, err
	}

	path := "user/" + request.Username + "/comments"
	req, err := c.client.NewRequest(ctx, http.MethodGet, path, paginationQuery(request.Pagination))
	if err != nil {
		return nil, err
	}

	var result types.Thing
	if err := c.client.Do(req, &result); err != nil {
		return nil, err
	}

	comments, _, err := c.parser.ExtractComments(&result)
	if err != nil {
		return nil, &pkgerrs.ParseError{Operation: "GetUserComments", Err: err}
	}

	var after, before string
	if listing, err := c.parser.ParseListing(&result); err == nil {
		after = listing.AfterFullname
		before = listing.BeforeFullname
	}

	return &types.UserCommentsResponse{
		Comments:       comments,
		AfterFullname:  after,
		BeforeFullname: before,
	}, nil
}

// GetTrendingSubreddits retrieves the currently popular subreddits, most
// subscribed first. A limit of 0 uses Reddit's default page size.
func (c *Client) GetTrendingSubreddits(ctx context.Context, limit int) ([]*types.SubredditData, error) {
	if err := c.ensureConnected(ctx, "GetTrendingSubreddits"); err != nil {
		return nil, err
	}
	if err := c.validator.ValidatePagination(&types.Pagination{Limit: limit}); err != nil {
		return nil, err
	}

	query := url.Values{}
	if limit > 0 {
		query.Set("limit", fmt.Sprintf("%d", limit))
	}

	req, err := c.client.NewRequest(ctx, http.MethodGet, "subreddits/popular", query)
	if err != nil {
		return nil, err
	}

	var result types.Thing
	if err := c.client.Do(req, &result); err != nil {
		return nil, err
	}

	subreddits, err := c.parser.ExtractSubreddits(&result)
	if err != nil {
		return nil, &pkgerrs.ParseError{Operation: "GetTrendingSubreddits", Err: err}
	}

	return subreddits, nil
}

// buildPostsResponse extracts posts and pagination cursors from a listing Thing.
func (c *Client) buildPostsResponse(operation string, result *types.Thing) (*types.PostsResponse, error) {
	posts, err := c.parser.ExtractPosts(result)
	if err != nil {
		return nil, &pkgerrs.ParseError{Operation: operation, Err: err}
	}

	var after, before string
	if listing, err := c.parser.ParseListing(result); err == nil {
		after = listing.AfterFullname
		before = listing.BeforeFullname
	}

	return &types.PostsResponse{
		Posts:          posts,
		AfterFullname:  after,
		BeforeFullname: before,
	}, nil
}

// paginationQuery translates pagination fields into listing query parameters.
func paginationQuery(p types.Pagination) url.Values {
	q := url.Values{}
	if p.Limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", p.Limit))
	}
	if p.After != "" {
		q.Set("after", p.After)
	}
	if p.Before != "" {
		q.Set("before", p.Before)
	}
	return q
}
