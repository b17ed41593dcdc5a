// Package config loads and validates the postbot configuration.
package config

import (
	"fmt"
	"time"
)

// DefaultAlbumWindow is the media-group debounce window used when the
// config does not set one.
const DefaultAlbumWindow = 1200 * time.Millisecond

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Bot: BotConfig{
			PollTimeout: 30,
		},
		Album: AlbumConfig{
			Window: "1200ms",
		},
		History: HistoryConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// AlbumWindow parses the configured debounce window, falling back to the
// default on empty or malformed values.
func (c *Config) AlbumWindow() time.Duration {
	if c.Album.Window == "" {
		return DefaultAlbumWindow
	}
	d, err := time.ParseDuration(c.Album.Window)
	if err != nil || d <= 0 {
		return DefaultAlbumWindow
	}
	return d
}
