package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	pkgerrs "github.com/redditmcp/reddit-mcp/pkg/errors"
)

const tokenEndpointPath = "api/v1/access_token"

// OAuth2 grant types Reddit's token endpoint accepts.
const (
	GrantClientCredentials = "client_credentials"
	GrantPassword          = "password"
	GrantRefreshToken      = "refresh_token"
)

// tokenExpirySlack is how early a cached token is considered stale. Renewing
// a minute before Reddit's expiry avoids racing requests against a dying token.
const tokenExpirySlack = time.Minute

// AuthConfig carries everything the authenticator needs to mint access tokens.
// The grant type is derived from which credential fields are populated: a
// refresh token selects the refresh_token grant, username+password selects the
// password grant, and client ID+secret alone selects client_credentials.
type AuthConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	Username     string
	Password     string
	UserAgent    string

	// AuthURL is the base URL for the OAuth endpoints (not the API base URL).
	AuthURL string

	// Logger for structured diagnostics. Optional.
	Logger *slog.Logger
}

// GrantType returns the OAuth2 grant the populated credentials select.
func (c *AuthConfig) GrantType() string {
	switch {
	case c.RefreshToken != "":
		return GrantRefreshToken
	case c.Username != "" && c.Password != "":
		return GrantPassword
	}
	return GrantClientCredentials
}

// Authenticator retrieves access tokens from the Reddit API and caches them
// until shortly before expiry. It is safe for concurrent use.
type Authenticator struct {
	client       *http.Client
	clientID     string
	clientSecret string
	userAgent    string
	tokenURL     *url.URL
	form         url.Values
	logger       *slog.Logger

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewAuthenticator creates a new authenticator for the grant selected by cfg.
func NewAuthenticator(httpClient *http.Client, cfg *AuthConfig) (*Authenticator, error) {
	if cfg == nil {
		return nil, &pkgerrs.AuthError{Err: fmt.Errorf("auth config cannot be nil")}
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	parsedURL, err := url.Parse(cfg.AuthURL)
	if err != nil {
		return nil, &pkgerrs.AuthError{Err: fmt.Errorf("failed to parse auth URL: %w", err)}
	}
	if !strings.HasSuffix(parsedURL.Path, "/") {
		parsedURL.Path += "/"
	}

	tokenURL, err := parsedURL.Parse(tokenEndpointPath)
	if err != nil {
		return nil, &pkgerrs.AuthError{Err: fmt.Errorf("failed to parse token endpoint path: %w", err)}
	}

	// Prepare form data upfront; it is identical for every token request.
	form := url.Values{}
	grant := cfg.GrantType()
	form.Set("grant_type", grant)
	switch grant {
	case GrantRefreshToken:
		form.Set("refresh_token", cfg.RefreshToken)
	case GrantPassword:
		form.Set("username", cfg.Username)
		form.Set("password", cfg.Password)
	}

	return &Authenticator{
		client:       httpClient,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		userAgent:    cfg.UserAgent,
		tokenURL:     tokenURL,
		form:         form,
		logger:       cfg.Logger,
	}, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope"`
}

// GetToken returns a valid access token, requesting a fresh one from the token
// endpoint when the cached token is missing or within tokenExpirySlack of its
// expiry.
func (a *Authenticator) GetToken(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token != "" && time.Now().Before(a.expiresAt.Add(-tokenExpirySlack)) {
		return a.token, nil
	}

	token, expiresIn, err := a.fetchToken(ctx)
	if err != nil {
		return "", err
	}

	a.token = token
	if expiresIn > 0 {
		a.expiresAt = time.Now().Add(time.Duration(expiresIn) * time.Second)
	} else {
		// Reddit always sends expires_in; fall back to an hour if it ever doesn't.
		a.expiresAt = time.Now().Add(time.Hour)
	}

	if a.logger != nil {
		a.logger.Debug("obtained access token", "expires_in_seconds", expiresIn)
	}

	return a.token, nil
}

// fetchToken performs the configured grant flow against the token endpoint.
func (a *Authenticator) fetchToken(ctx context.Context) (string, int, error) {
	data := a.form.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.tokenURL.String(), strings.NewReader(data))
	if err != nil {
		return "", 0, &pkgerrs.AuthError{Err: fmt.Errorf("failed to create token request: %w", err)}
	}

	req.SetBasicAuth(a.clientID, a.clientSecret)
	req.Header.Set("User-Agent", a.userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", 0, &pkgerrs.AuthError{Err: fmt.Errorf("failed to execute token request: %w", err)}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, &pkgerrs.AuthError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to read response body: %w", err),
		}
	}

	if resp.StatusCode != http.StatusOK {
		return "", 0, &pkgerrs.AuthError{
			StatusCode: resp.StatusCode,
			Body:       string(bodyBytes),
		}
	}

	var tokenResp tokenResponse
	if err := json.Unmarshal(bodyBytes, &tokenResp); err != nil {
		return "", 0, &pkgerrs.AuthError{
			StatusCode: resp.StatusCode,
			Body:       string(bodyBytes),
			Err:        fmt.Errorf("failed to unmarshal token response: %w", err),
		}
	}

	if tokenResp.AccessToken == "" {
		return "", 0, &pkgerrs.AuthError{
			StatusCode: resp.StatusCode,
			Body:       string(bodyBytes),
			Err:        fmt.Errorf("access token was empty in response"),
		}
	}

	return tokenResp.AccessToken, tokenResp.ExpiresIn, nil
}
