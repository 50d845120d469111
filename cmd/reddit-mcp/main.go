// Command reddit-mcp runs an MCP server exposing read-only Reddit browsing
// tools over stdio or streamable HTTP.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/redditmcp/reddit-mcp/internal/config"
	"github.com/redditmcp/reddit-mcp/internal/reddit"
	"github.com/redditmcp/reddit-mcp/internal/server"
	"github.com/redditmcp/reddit-mcp/internal/tools"
)

func main() {
	app := &cli.App{
		Name:    "reddit-mcp",
		Usage:   "MCP server exposing read-only Reddit browsing tools",
		Version: server.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE`",
				EnvVars: []string{"REDDITMCP_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			checkCommand(),
			toolsCommand(),
			configCommand(),
		},
		// MCP hosts launch the binary with no arguments and expect stdio.
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// serveCommand returns the serve command.
func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the MCP server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "transport",
				Aliases: []string{"t"},
				Usage:   "Transport to serve on: stdio or http",
			},
			&cli.StringFlag{
				Name:    "listen",
				Aliases: []string{"l"},
				Usage:   "Listen address for the http transport",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn or error",
			},
		},
		Action: runServe,
	}
}

func runServe(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	// Flags beat both the file and the environment.
	if transport := c.String("transport"); transport != "" {
		cfg.Server.Transport = transport
	}
	if listen := c.String("listen"); listen != "" {
		cfg.Server.Listen = listen
	}
	if level := c.String("log-level"); level != "" {
		cfg.Log.Level = level
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	client, err := newRedditClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create Reddit client: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Authenticate up front so bad credentials fail the process at startup
	// instead of surfacing inside the first tool call.
	if err := client.Connect(ctx); err != nil {
		return fmt.Errorf("failed to authenticate with Reddit: %w", err)
	}
	logger.Info("authenticated with Reddit")

	srv := server.New(client, logger)
	if cfg.Server.Transport == config.TransportHTTP {
		return srv.ServeHTTP(ctx, cfg.Server.Listen)
	}
	return srv.ServeStdio()
}

// newLogger builds the process logger. Logs always go to stderr; on the
// stdio transport, stdout belongs to the MCP protocol.
func newLogger(cfg *config.Config) (*slog.Logger, error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler), nil
}

func newRedditClient(cfg *config.Config, logger *slog.Logger) (*reddit.Client, error) {
	return reddit.NewClient(&reddit.Config{
		ClientID:     cfg.Reddit.ClientID,
		ClientSecret: cfg.Reddit.ClientSecret,
		Username:     cfg.Reddit.Username,
		Password:     cfg.Reddit.Password,
		RefreshToken: cfg.Reddit.RefreshToken,
		UserAgent:    cfg.Reddit.UserAgent,
		HTTPClient:   &http.Client{Timeout: cfg.HTTP.Timeout},
		RateLimit: &reddit.RateLimitConfig{
			RequestsPerMinute: cfg.RateLimit.PerMinute,
			Burst:             cfg.RateLimit.Burst,
		},
		Logger: logger,
	})
}

// checkCommand returns the check command.
func checkCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Verify Reddit credentials by authenticating and calling the API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "subreddit",
				Usage: "Also fetch metadata for `SUBREDDIT` (without the r/ prefix)",
			},
		},
		Action: runCheck,
	}
}

func runCheck(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	client, err := newRedditClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create Reddit client: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := client.Connect(ctx); err != nil {
		return fmt.Errorf("failed to authenticate with Reddit: %w", err)
	}
	fmt.Println("Authenticated with Reddit")

	// Application-only tokens authenticate fine but act as no user, so an
	// empty account name here is not a failure.
	account, err := client.Me(ctx)
	if err != nil {
		return fmt.Errorf("token was issued but the API rejected it: %w", err)
	}
	if account.Name != "" {
		fmt.Printf("Acting as u/%s (link karma %d, comment karma %d)\n",
			account.Name, account.LinkKarma, account.CommentKarma)
	} else {
		fmt.Println("Acting with an application-only token")
	}

	if name := c.String("subreddit"); name != "" {
		sub, err := client.GetSubreddit(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to fetch r/%s: %w", name, err)
		}
		fmt.Printf("r/%s: %d subscribers\n", sub.DisplayName, sub.Subscribers)
		if sub.PublicDescription != "" {
			fmt.Printf("    %s\n", sub.PublicDescription)
		}
	}

	return nil
}

// toolsCommand returns the tools command.
func toolsCommand() *cli.Command {
	return &cli.Command{
		Name:   "tools",
		Usage:  "List the tools the server exposes",
		Action: runTools,
	}
}

func runTools(c *cli.Context) error {
	for _, def := range tools.Definitions() {
		fmt.Printf("%s\n    %s\n\n", def.Name, def.Description)
	}
	return nil
}

// configCommand returns the config command.
func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage configuration",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Write a sample configuration file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
						Value:   "reddit-mcp.toml",
					},
				},
				Action: runConfigInit,
			},
			{
				Name:   "validate",
				Usage:  "Validate the configuration",
				Action: runConfigValidate,
			},
		},
	}
}

func runConfigInit(c *cli.Context) error {
	outputPath := c.String("output")

	if err := config.Init(outputPath); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	fmt.Printf("Created configuration file at %s\n", outputPath)
	return nil
}

func runConfigValidate(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	fmt.Println("Configuration is valid")
	return nil
}
