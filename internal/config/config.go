// Package config loads server configuration from a YAML file with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration document.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Game    GameConfig    `mapstructure:"game"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig controls the WebSocket gateway.
type ServerConfig struct {
	WebSocket    WebSocketConfig `mapstructure:"websocket"`
	MaxSessions  int             `mapstructure:"max_sessions"`
	WriteTimeout time.Duration   `mapstructure:"write_timeout"`
}

// WebSocketConfig is the listener configuration.
type WebSocketConfig struct {
	Address         string `mapstructure:"address"`
	Path            string `mapstructure:"path"`
	ReadBufferSize  int    `mapstructure:"read_buffer_size"`
	WriteBufferSize int    `mapstructure:"write_buffer_size"`
}

// GameConfig carries gameplay defaults.
type GameConfig struct {
	DefaultForceSize int   `mapstructure:"default_force_size"`
	ForceSizeOptions []int `mapstructure:"force_size_options"`
	MaxPlayers       int   `mapstructure:"max_players"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.websocket.address", ":8080")
	v.SetDefault("server.websocket.path", "/ws")
	v.SetDefault("server.websocket.read_buffer_size", 1024)
	v.SetDefault("server.websocket.write_buffer_size", 1024)
	v.SetDefault("server.max_sessions", 100)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("game.default_force_size", 24)
	v.SetDefault("game.force_size_options", []int{15, 24, 30, 36, 60})
	v.SetDefault("game.max_players", 4)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Load reads configuration from the given file path. A missing file is not
// an error; defaults and DRAGONDICE_* environment variables apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("DRAGONDICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			// With an explicit file path a missing file surfaces as a
			// path error, not viper.ConfigFileNotFoundError.
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read config %q: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.WebSocket.Address == "" {
		return fmt.Errorf("server.websocket.address must not be empty")
	}
	if c.Game.DefaultForceSize <= 0 {
		return fmt.Errorf("game.default_force_size must be positive")
	}
	if c.Game.MaxPlayers < 1 {
		return fmt.Errorf("game.max_players must be at least 1")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	return nil
}
