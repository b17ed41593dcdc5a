package config

// Config is the root configuration for postbot.
type Config struct {
	Bot     BotConfig     `yaml:"bot,omitempty"`
	Channel string        `yaml:"channel,omitempty"` // publish target: "@username" or "-100..." numeric id
	Admins  []int64       `yaml:"admins,omitempty"`  // operator allow-set; empty = allow all
	Album   AlbumConfig   `yaml:"album,omitempty"`
	Format  FormatConfig  `yaml:"format,omitempty"`
	Links   LinksConfig   `yaml:"links,omitempty"`
	History HistoryConfig `yaml:"history,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
}

// BotConfig holds the Telegram connection settings.
type BotConfig struct {
	Token       string `yaml:"token,omitempty"`       // bot token; ${BOT_TOKEN} expansion supported
	PollTimeout int    `yaml:"pollTimeout,omitempty"` // long-poll timeout, seconds
}

// AlbumConfig controls media-group aggregation.
type AlbumConfig struct {
	// Window is the quiet period after the last item of a media group
	// before the group is considered complete. Duration string, e.g. "1200ms".
	Window string `yaml:"window,omitempty"`
}

// FormatConfig controls caption post-processing.
type FormatConfig struct {
	Autosign  string `yaml:"autosign,omitempty"`  // appended to every post on its own line
	AutoTitle bool   `yaml:"autoTitle,omitempty"` // promote the first short line to a bold title
}

// LinksConfig holds the promo buttons attached to published posts.
type LinksConfig struct {
	Subscribe string `yaml:"subscribe,omitempty"` // "Subscribe" button URL
	Suggest   string `yaml:"suggest,omitempty"`   // "Suggest a story" button URL
}

// HistoryConfig controls the publish-history log.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	Path    string `yaml:"path,omitempty"` // SQLite file; defaults under the data dir
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
}
