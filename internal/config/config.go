// Package config loads service configuration from defaults, an optional
// YAML file and TRIAD_ environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. TRIAD_LOGGING_LEVEL.
const EnvPrefix = "TRIAD"

// Config is the full application configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Store   StoreConfig   `mapstructure:"store" yaml:"store"`
	Replay  ReplayConfig  `mapstructure:"replay" yaml:"replay"`
	Game    GameConfig    `mapstructure:"game" yaml:"game"`
}

// LoggingConfig selects level, encoding and destination of the logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"` // json or console
	File   string `mapstructure:"file" yaml:"file"`     // empty means stderr
}

// ServerConfig holds the WebSocket listener and session limits.
type ServerConfig struct {
	WebSocket       WebSocketConfig `mapstructure:"websocket" yaml:"websocket"`
	MaxSessions     int             `mapstructure:"max_sessions" yaml:"max_sessions"`
	SessionTTL      time.Duration   `mapstructure:"session_ttl" yaml:"session_ttl"`
	CleanupInterval time.Duration   `mapstructure:"cleanup_interval" yaml:"cleanup_interval"`
}

// WebSocketConfig configures the /ws endpoint.
type WebSocketConfig struct {
	Address      string        `mapstructure:"address" yaml:"address"`
	ReadLimit    int64         `mapstructure:"read_limit" yaml:"read_limit"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
}

// StoreConfig locates the SQLite results database.
type StoreConfig struct {
	Path string `mapstructure:"path" yaml:"path"` // empty disables the results store
}

// ReplayConfig controls where finished games are saved for replay.
type ReplayConfig struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
	Directory string `mapstructure:"directory" yaml:"directory"`
}

// GameConfig seeds the deck shuffle.
type GameConfig struct {
	Seed uint64 `mapstructure:"seed" yaml:"seed"` // 0 picks a random seed per game
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file", "")

	v.SetDefault("server.websocket.address", ":8080")
	v.SetDefault("server.websocket.read_limit", 4096)
	v.SetDefault("server.websocket.write_timeout", 10*time.Second)
	v.SetDefault("server.max_sessions", 1000)
	v.SetDefault("server.session_ttl", 30*time.Minute)
	v.SetDefault("server.cleanup_interval", time.Minute)

	v.SetDefault("store.path", "data/results.db")

	v.SetDefault("replay.enabled", false)
	v.SetDefault("replay.directory", "data/replays")

	v.SetDefault("game.seed", 0)
}

// Load reads configuration. path may be empty, in which case only defaults
// and the environment apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	var errs []error

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level: unknown level %q", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format: unknown format %q", c.Logging.Format))
	}

	if c.Server.WebSocket.Address == "" {
		errs = append(errs, errors.New("server.websocket.address must be set"))
	}
	if c.Server.WebSocket.ReadLimit <= 0 {
		errs = append(errs, errors.New("server.websocket.read_limit must be positive"))
	}
	if c.Server.WebSocket.WriteTimeout <= 0 {
		errs = append(errs, errors.New("server.websocket.write_timeout must be positive"))
	}
	if c.Server.MaxSessions < 0 {
		errs = append(errs, errors.New("server.max_sessions must not be negative"))
	}
	if c.Server.SessionTTL <= 0 {
		errs = append(errs, errors.New("server.session_ttl must be positive"))
	}
	if c.Server.CleanupInterval <= 0 {
		errs = append(errs, errors.New("server.cleanup_interval must be positive"))
	}

	if c.Replay.Enabled && c.Replay.Directory == "" {
		errs = append(errs, errors.New("replay.directory must be set when replays are enabled"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
