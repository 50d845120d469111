// Package server wires the Reddit client and the MCP tools into a runnable
// server. This is the composition root: construction and registration only,
// no tool logic.
package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/redditmcp/reddit-mcp/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// shutdownTimeout bounds how long the HTTP transport may take to drain
// in-flight requests once the serve context is canceled.
const shutdownTimeout = 5 * time.Second

// Server wraps the MCP server with the transports it can run on.
type Server struct {
	mcp    *server.MCPServer
	logger *slog.Logger
}

// New builds the MCP server and registers the eight Reddit tools against the
// given fetcher. The fetcher is shared: it carries the OAuth2 session and the
// rate limiter, both safe for concurrent tool calls.
func New(fetcher tools.Fetcher, logger *slog.Logger) *Server {
	s := server.NewMCPServer(
		"reddit-mcp",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	hotTool := tools.NewHotThreadsTool(fetcher, logger)
	s.AddTool(hotTool.Definition(), hotTool.Handle)

	newTool := tools.NewNewThreadsTool(fetcher, logger)
	s.AddTool(newTool.Definition(), newTool.Handle)

	postTool := tools.NewPostDetailsTool(fetcher, logger)
	s.AddTool(postTool.Definition(), postTool.Handle)

	searchTool := tools.NewSearchPostsTool(fetcher, logger)
	s.AddTool(searchTool.Definition(), searchTool.Handle)

	subredditTool := tools.NewSearchSubredditTool(fetcher, logger)
	s.AddTool(subredditTool.Definition(), subredditTool.Handle)

	multiTool := tools.NewMultiSearchTool(fetcher, logger)
	s.AddTool(multiTool.Definition(), multiTool.Handle)

	userTool := tools.NewUserContentTool(fetcher, logger)
	s.AddTool(userTool.Definition(), userTool.Handle)

	trendingTool := tools.NewTrendingTool(fetcher, logger)
	s.AddTool(trendingTool.Definition(), trendingTool.Handle)

	return &Server{mcp: s, logger: logger}
}

// ServeStdio speaks MCP over stdin/stdout until the stream closes. Log
// output must go to stderr; stdout belongs to the protocol.
func (s *Server) ServeStdio() error {
	if s.logger != nil {
		s.logger.Info("serving MCP over stdio", "version", Version)
	}
	return server.ServeStdio(s.mcp)
}

// ServeHTTP speaks MCP over the streamable HTTP transport on addr, shutting
// down gracefully when ctx is canceled.
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	httpServer := server.NewStreamableHTTPServer(s.mcp)
	if s.logger != nil {
		s.logger.Info("serving MCP over HTTP", "version", Version, "addr", addr)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

// serverInstructions tells the calling assistant how to use the tool set.
func serverInstructions() string {
	return `This server exposes read-only Reddit browsing tools.

Listings: fetch_reddit_hot_threads and fetch_reddit_new_threads return a
subreddit's current hot or newest posts. get_trending_subreddits lists the
subreddits Reddit currently marks as popular.

Details: get_post_details returns one post with its comment tree; pass the
post ID from a listing's Link line (the segment after /comments/). Deeply
nested or unexpanded replies appear as "[+N more replies]" markers.

Search: search_posts searches all of Reddit, search_subreddit searches one
subreddit (omit the query to list it by sort instead), and
search_multiple_subreddits runs the same query across several subreddits
with results grouped per subreddit.

Users: get_user_content returns a user's submitted posts or comments.

Pass bare subreddit names and usernames; r/ and u/ prefixes are stripped.
Failures (unknown subreddits, private communities, rate limits) come back
as readable text starting with "An error occurred:", not as protocol
errors.`
}
