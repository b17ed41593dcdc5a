package config

import (
	"fmt"
	"slices"
	"time"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	if cfg.Bot.Token == "" {
		issues = append(issues, ValidationIssue{
			Path:    "bot.token",
			Message: "bot token is required (set bot.token or BOT_TOKEN)",
		})
	}

	if cfg.Channel == "" {
		issues = append(issues, ValidationIssue{
			Path:    "channel",
			Message: "publish target is required (\"@username\" or numeric -100... id)",
		})
	}

	if cfg.Bot.PollTimeout < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "bot.pollTimeout",
			Message: fmt.Sprintf("must be non-negative, got %d", cfg.Bot.PollTimeout),
		})
	}

	if cfg.Album.Window != "" {
		d, err := time.ParseDuration(cfg.Album.Window)
		if err != nil {
			issues = append(issues, ValidationIssue{
				Path:    "album.window",
				Message: fmt.Sprintf("invalid duration %q", cfg.Album.Window),
			})
		} else if d <= 0 {
			issues = append(issues, ValidationIssue{
				Path:    "album.window",
				Message: "must be positive",
			})
		}
	}

	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}

	return issues
}
