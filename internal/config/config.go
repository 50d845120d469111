// Package config loads server configuration from built-in defaults, an
// optional TOML file and environment variables, in that order. Later sources
// override earlier ones, so credentials exported in the environment always
// win over the file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	pkgerrs "github.com/redditmcp/reddit-mcp/pkg/errors"
)

// Transport names accepted in server.transport.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Environment prefixes. REDDIT_* carries the Reddit API credentials and maps
// into the [reddit] section; REDDITMCP_* carries server settings, with the
// first underscore separating section from key (REDDITMCP_LOG_LEVEL is
// log.level).
const (
	credentialPrefix = "REDDIT_"
	settingsPrefix   = "REDDITMCP_"
)

// Config represents the full server configuration.
type Config struct {
	Reddit struct {
		ClientID     string `koanf:"client_id"`
		ClientSecret string `koanf:"client_secret"`
		Username     string `koanf:"username"`
		Password     string `koanf:"password"`
		RefreshToken string `koanf:"refresh_token"`
		UserAgent    string `koanf:"user_agent"`
	} `koanf:"reddit"`

	Server struct {
		Transport string `koanf:"transport"`
		Listen    string `koanf:"listen"`
	} `koanf:"server"`

	Log struct {
		Level  string `koanf:"level"`
		Format string `koanf:"format"`
	} `koanf:"log"`

	HTTP struct {
		Timeout time.Duration `koanf:"timeout"`
	} `koanf:"http"`

	RateLimit struct {
		PerMinute float64 `koanf:"per_minute"`
		Burst     int     `koanf:"burst"`
	} `koanf:"ratelimit"`
}

// Load reads the configuration. configPath may be empty, in which case the
// default locations are tried and a missing file is not an error.
func Load(configPath string) (*Config, error) {
	var k = koanf.New(".")

	// Built-in defaults.
	k.Load(confmap.Provider(map[string]interface{}{
		"server.transport":     TransportStdio,
		"server.listen":        ":8080",
		"log.level":            "info",
		"log.format":           "text",
		"http.timeout":         "30s",
		"ratelimit.per_minute": 100.0,
		"ratelimit.burst":      10,
	}, "."), nil)

	// Load from TOML file if it exists.
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
	} else {
		defaultPaths := []string{"./reddit-mcp.toml", "$HOME/.reddit-mcp.toml"}
		for _, path := range defaultPaths {
			path = os.ExpandEnv(path)
			if _, err := os.Stat(path); err == nil {
				if err := k.Load(file.Provider(path), toml.Parser()); err == nil {
					break
				}
			}
		}
	}

	// Credentials: REDDIT_CLIENT_ID becomes reddit.client_id.
	k.Load(env.Provider(credentialPrefix, ".", func(s string) string {
		return "reddit." + strings.ToLower(strings.TrimPrefix(s, credentialPrefix))
	}), nil)

	// Settings: REDDITMCP_SERVER_TRANSPORT becomes server.transport.
	k.Load(env.Provider(settingsPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, settingsPrefix))
		return strings.Replace(s, "_", ".", 1)
	}), nil)

	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	return &config, nil
}

// Validate checks the configuration for values the server cannot start
// without or cannot interpret.
func Validate(config *Config) error {
	if config.Reddit.ClientID == "" || config.Reddit.ClientSecret == "" {
		return &pkgerrs.ConfigError{
			Field:   "reddit.client_id",
			Message: "Reddit API credentials are required; set REDDIT_CLIENT_ID and REDDIT_CLIENT_SECRET",
		}
	}

	switch config.Server.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return &pkgerrs.ConfigError{
			Field:   "server.transport",
			Message: fmt.Sprintf("unknown transport %q, expected %q or %q", config.Server.Transport, TransportStdio, TransportHTTP),
		}
	}
	if config.Server.Transport == TransportHTTP && config.Server.Listen == "" {
		return &pkgerrs.ConfigError{Field: "server.listen", Message: "a listen address is required for the http transport"}
	}

	switch config.Log.Format {
	case "text", "json":
	default:
		return &pkgerrs.ConfigError{
			Field:   "log.format",
			Message: fmt.Sprintf("unknown log format %q, expected \"text\" or \"json\"", config.Log.Format),
		}
	}
	if _, err := config.LogLevel(); err != nil {
		return err
	}

	if config.HTTP.Timeout <= 0 {
		return &pkgerrs.ConfigError{Field: "http.timeout", Message: "timeout must be positive"}
	}

	return nil
}

// LogLevel parses log.level into a slog level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, &pkgerrs.ConfigError{
			Field:   "log.level",
			Message: fmt.Sprintf("unknown log level %q, expected debug, info, warn or error", c.Log.Level),
		}
	}
	return level, nil
}

// Init writes a sample configuration file to the given path.
func Init(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists at %s", configPath)
	}

	sampleConfig := `# reddit-mcp configuration

[reddit]
client_id = "your-client-id"
client_secret = "your-client-secret"
# Optional. Username and password select the password grant; a refresh token
# selects the refresh_token grant; with neither the server runs app-only.
# username = "your-reddit-username"
# password = "your-reddit-password"
# refresh_token = ""
# user_agent = "golang:reddit-mcp:v0.1.0"

[server]
transport = "stdio"   # "stdio" or "http"
listen = ":8080"      # used by the http transport

[log]
level = "info"        # debug, info, warn or error
format = "text"       # "text" or "json"

[http]
timeout = "30s"

[ratelimit]
per_minute = 100.0
burst = 10
`

	return os.WriteFile(configPath, []byte(sampleConfig), 0644)
}
