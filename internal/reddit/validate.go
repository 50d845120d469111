package reddit

import (
	"fmt"
	"strings"

	pkgerrs "github.com/redditmcp/reddit-mcp/pkg/errors"
	"github.com/redditmcp/reddit-mcp/pkg/types"
)

const (
	// Subreddit name constraints
	minSubredditLength = 3
	maxSubredditLength = 21

	// Username constraints
	minUsernameLength = 3
	maxUsernameLength = 20

	// Pagination constraints
	maxPaginationLimit = 100

	// Post ID constraints
	maxPostIDLength = 100

	// Search query constraints
	maxQueryLength = 512

	// User agent constraints
	maxUserAgentLength = 256
)

// Validator provides validation operations for Reddit API parameters.
type Validator struct{}

// NewValidator creates a new Validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateSubredditName checks if a subreddit name is valid according to Reddit's naming rules.
// Returns an error if the name is invalid.
func (v *Validator) ValidateSubredditName(name string) error {
	if name == "" {
		return &pkgerrs.ConfigError{Field: "subreddit", Message: "subreddit name cannot be empty"}
	}
	if len(name) < minSubredditLength {
		return &pkgerrs.ConfigError{Field: "subreddit", Message: fmt.Sprintf("subreddit name must be at least %d characters", minSubredditLength)}
	}
	if len(name) > maxSubredditLength {
		return &pkgerrs.ConfigError{Field: "subreddit", Message: fmt.Sprintf("subreddit name cannot exceed %d characters", maxSubredditLength)}
	}
	// Check for Reddit naming constraints
	if rune(name[0]) == '_' || rune(name[len(name)-1]) == '_' {
		return &pkgerrs.ConfigError{Field: "subreddit", Message: "subreddit name cannot start or end with underscore"}
	}
	// Check for valid characters: letters, numbers, underscores only
	prevWasUnderscore := false
	for i, ch := range name {
		if !(ch >= 'a' && ch <= 'z') && !(ch >= 'A' && ch <= 'Z') && !(ch >= '0' && ch <= '9') && ch != '_' {
			return &pkgerrs.ConfigError{Field: "subreddit", Message: fmt.Sprintf("subreddit name contains invalid character '%c' at position %d", ch, i)}
		}
		if ch == '_' {
			if prevWasUnderscore {
				return &pkgerrs.ConfigError{Field: "subreddit", Message: "subreddit name cannot contain consecutive underscores"}
			}
			prevWasUnderscore = true
		} else {
			prevWasUnderscore = false
		}
	}
	return nil
}

// ValidateUsername checks if a Reddit username is valid. Usernames are 3-20
// characters of letters, numbers, underscores and hyphens. A leading "u/" or
// "/u/" prefix is not accepted; callers strip it first.
func (v *Validator) ValidateUsername(name string) error {
	if name == "" {
		return &pkgerrs.ConfigError{Field: "username", Message: "username cannot be empty"}
	}
	if len(name) < minUsernameLength {
		return &pkgerrs.ConfigError{Field: "username", Message: fmt.Sprintf("username must be at least %d characters", minUsernameLength)}
	}
	if len(name) > maxUsernameLength {
		return &pkgerrs.ConfigError{Field: "username", Message: fmt.Sprintf("username cannot exceed %d characters", maxUsernameLength)}
	}
	for i, ch := range name {
		if !(ch >= 'a' && ch <= 'z') && !(ch >= 'A' && ch <= 'Z') && !(ch >= '0' && ch <= '9') && ch != '_' && ch != '-' {
			return &pkgerrs.ConfigError{Field: "username", Message: fmt.Sprintf("username contains invalid character '%c' at position %d", ch, i)}
		}
	}
	return nil
}

// ValidatePostID checks that a post ID looks like a bare base36 Reddit ID.
// Fullname prefixes such as "t3_" are rejected; callers strip them first.
func (v *Validator) ValidatePostID(id string) error {
	if id == "" {
		return &pkgerrs.ConfigError{Field: "post_id", Message: "post ID cannot be empty"}
	}
	if len(id) > maxPostIDLength {
		return &pkgerrs.ConfigError{Field: "post_id", Message: fmt.Sprintf("post ID too long (max %d characters)", maxPostIDLength)}
	}
	// Reddit post IDs are alphanumeric base36 strings
	for _, ch := range id {
		if !((ch >= '0' && ch <= '9') ||
			(ch >= 'a' && ch <= 'z') ||
			(ch >= 'A' && ch <= 'Z')) {
			return &pkgerrs.ConfigError{Field: "post_id", Message: fmt.Sprintf("post ID contains invalid character: %c (only alphanumeric allowed)", ch)}
		}
	}
	return nil
}

// ValidateQuery checks that a search query is non-blank and within Reddit's
// query length limit.
func (v *Validator) ValidateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return &pkgerrs.ConfigError{Field: "query", Message: "search query cannot be empty"}
	}
	if len(query) > maxQueryLength {
		return &pkgerrs.ConfigError{Field: "query", Message: fmt.Sprintf("search query cannot exceed %d characters", maxQueryLength)}
	}
	return nil
}

// ValidatePagination checks if pagination parameters are valid.
// Returns an error if the parameters are invalid.
func (v *Validator) ValidatePagination(pagination *types.Pagination) error {
	if pagination == nil {
		return nil
	}
	// Reddit API doesn't allow both After and Before to be set
	if pagination.After != "" && pagination.Before != "" {
		return &pkgerrs.ConfigError{Field: "pagination", Message: "cannot set both After and Before pagination parameters"}
	}
	// Validate limit range
	if pagination.Limit < 0 {
		return &pkgerrs.ConfigError{Field: "pagination.Limit", Message: "limit cannot be negative"}
	}
	if pagination.Limit > maxPaginationLimit {
		return &pkgerrs.ConfigError{Field: "pagination.Limit", Message: fmt.Sprintf("limit cannot exceed %d", maxPaginationLimit)}
	}
	return nil
}

// ValidateCommentSort checks that sort is one of the comment sort orders
// Reddit accepts.
func (v *Validator) ValidateCommentSort(sort types.CommentSort) error {
	if !sort.Valid() {
		return &pkgerrs.ConfigError{Field: "comment_sort", Message: fmt.Sprintf("unknown comment sort %q", string(sort))}
	}
	return nil
}

// ValidateSearchSort checks that sort is one of the search sort orders Reddit
// accepts.
func (v *Validator) ValidateSearchSort(sort types.SearchSort) error {
	if !sort.Valid() {
		return &pkgerrs.ConfigError{Field: "sort", Message: fmt.Sprintf("unknown search sort %q", string(sort))}
	}
	return nil
}

// ValidateTimeFilter checks that t is one of the time windows Reddit accepts.
func (v *Validator) ValidateTimeFilter(t types.TimeFilter) error {
	if !t.Valid() {
		return &pkgerrs.ConfigError{Field: "time_filter", Message: fmt.Sprintf("unknown time filter %q", string(t))}
	}
	return nil
}

// ValidateUserAgent validates the User-Agent string to prevent header injection.
func (v *Validator) ValidateUserAgent(ua string) error {
	if len(ua) == 0 {
		return fmt.Errorf("user agent cannot be empty")
	}

	// Newlines would allow header injection
	if strings.ContainsAny(ua, "\r\n") {
		return fmt.Errorf("user agent cannot contain newline characters")
	}

	if len(ua) > maxUserAgentLength {
		return fmt.Errorf("user agent too long (max %d characters)", maxUserAgentLength)
	}

	return nil
}
